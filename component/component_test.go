package component

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierai/platform/logger"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() Description {
	return Description{Type: "redis", Details: "localhost:6379"}
}

func newRegistry() *Registry {
	return NewRegistry(logger.NewNop())
}

func TestRegisterDuplicate(t *testing.T) {
	r := newRegistry()
	if err := r.Register(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if r.Get("db") == nil {
		t.Error("expected to get registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
}

func TestStartStopOrder(t *testing.T) {
	var started, stopped []string
	r := newRegistry()
	for _, name := range []string{"database", "redis", "server"} {
		r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	wantStart := []string{"database", "redis", "server"}
	wantStop := []string{"server", "redis", "database"}
	for i := range wantStart {
		if started[i] != wantStart[i] {
			t.Errorf("start[%d] = %s, want %s", i, started[i], wantStart[i])
		}
		if stopped[i] != wantStop[i] {
			t.Errorf("stop[%d] = %s, want %s", i, stopped[i], wantStop[i])
		}
	}
}

func TestStartFailureStopsOnlyStarted(t *testing.T) {
	var started, stopped []string
	r := newRegistry()
	r.Register(&mockComponent{name: "database", startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "redis", startErr: errors.New("refused"), startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "server", startOrder: &started, stopOrder: &stopped})

	ctx := context.Background()
	if err := r.StartAll(ctx); err == nil {
		t.Fatal("expected start error")
	}
	if len(started) != 2 {
		t.Errorf("expected server not to start, got %v", started)
	}
	r.StopAll(ctx)
	if len(stopped) != 1 || stopped[0] != "database" {
		t.Errorf("expected only database to stop, got %v", stopped)
	}
}

func TestStartLate(t *testing.T) {
	var started, stopped []string
	r := newRegistry()
	r.Register(&mockComponent{name: "database", startOrder: &started, stopOrder: &stopped})

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.StartLate(ctx, &mockComponent{name: "server", startOrder: &started, stopOrder: &stopped}); err != nil {
		t.Fatalf("StartLate failed: %v", err)
	}
	if err := r.StartLate(ctx, &mockComponent{name: "server"}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	if err := r.StartLate(ctx, &mockComponent{name: "worker", startErr: errors.New("boom"), stopOrder: &stopped}); err == nil {
		t.Error("expected start error")
	}

	r.StopAll(ctx)
	if len(stopped) != 2 || stopped[0] != "server" || stopped[1] != "database" {
		t.Errorf("stop order = %v, want [server database]", stopped)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	r := newRegistry()
	r.Register(&mockComponent{name: "a", stopErr: errA})
	r.Register(&mockComponent{name: "b", stopErr: errB})

	ctx := context.Background()
	r.StartAll(ctx)
	err := r.StopAll(ctx)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		status []HealthStatus
		want   bool
	}{
		{"all healthy", []HealthStatus{StatusHealthy, StatusHealthy}, true},
		{"degraded cache", []HealthStatus{StatusHealthy, StatusDegraded}, true},
		{"unhealthy db", []HealthStatus{StatusUnhealthy, StatusHealthy}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry()
			for i, s := range tt.status {
				name := string(rune('a' + i))
				r.Register(&mockComponent{name: name, health: Health{Name: name, Status: s}})
			}
			if got := r.Ready(context.Background()); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescriptions(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{mockComponent{name: "redis"}})

	descs := r.Descriptions()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "redis" || descs[0].Type != "redis" {
		t.Errorf("unexpected description %+v", descs[0])
	}
}
