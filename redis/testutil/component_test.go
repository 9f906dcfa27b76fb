package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/atelierai/platform/component"
	"github.com/atelierai/platform/testutil"
)

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent()
	ctx := context.Background()

	if comp.Client() != nil {
		t.Error("Client() should be nil before Start")
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health Status = %q, want %q", h.Status, component.StatusHealthy)
	}
	if err := comp.Client().Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Errorf("second Stop() failed: %v", err)
	}
}

func TestComponent_SnapshotRestore(t *testing.T) {
	comp := NewComponent()
	h := testutil.T(t)
	h.Setup(comp)
	ctx := context.Background()

	if err := comp.Client().Set(ctx, "user:1", "a", 0); err != nil {
		t.Fatal(err)
	}
	snap := h.Snapshot(comp)

	h.Reset(comp)
	if n, _ := comp.Client().Exists(ctx, "user:1"); n != 0 {
		t.Fatal("key should be gone after Reset")
	}

	h.Restore(comp, snap)
	got, err := comp.Client().Get(ctx, "user:1")
	if err != nil || string(got) != "a" {
		t.Errorf("after Restore got %q, %v", got, err)
	}
}

func TestComponent_FastForward(t *testing.T) {
	comp := NewComponent()
	testutil.T(t).Setup(comp)
	ctx := context.Background()

	if err := comp.Client().Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	comp.FastForward(61 * time.Second)
	if n, _ := comp.Client().Exists(ctx, "k"); n != 0 {
		t.Error("key should expire after FastForward")
	}
}
