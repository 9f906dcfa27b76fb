package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got none")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestNew(t *testing.T) {
	cfg := &Config{Level: "debug", Format: "json", Output: "stdout"}
	l := New(cfg, "api")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "api" {
		t.Errorf("expected service 'api', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "loud", Format: "json"}, "api")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").WithComponent("cache")
	l.Info("hello")

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "cache" {
		t.Errorf("component = %v, want cache", m[FieldComponent])
	}
	if m["message"] != "hello" {
		t.Errorf("message = %v, want hello", m["message"])
	}
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")
	l.Warn("cache miss", Fields(FieldKey, "user:1", "attempt", 2))

	m := decodeLine(t, &buf)
	if m[FieldKey] != "user:1" {
		t.Errorf("key = %v, want user:1", m[FieldKey])
	}
	if m["level"] != "warn" {
		t.Errorf("level = %v, want warn", m["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "user-9")

	NewWithWriter(&buf, "debug").WithContext(ctx).Info("handled")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v", m[FieldRequestID])
	}
	if m[FieldUserID] != "user-9" {
		t.Errorf("user_id = %v", m[FieldUserID])
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	f := ErrorFields("set", errors.New("boom"))
	if f[FieldOperation] != "set" || f[FieldError] != "boom" {
		t.Errorf("unexpected error fields: %v", f)
	}

	d := DurationFields("get", 1500*time.Millisecond)
	if d[FieldDuration] != int64(1500) {
		t.Errorf("duration_ms = %v, want 1500", d[FieldDuration])
	}
}

func TestFieldsOddArgs(t *testing.T) {
	m := Fields("a", 1, "dangling")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("Fields() = %v", m)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Error("nothing", Fields("k", "v"))
	l.WithComponent("x").Info("still nothing")
}
