package testutil

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/component"
	"github.com/atelierai/platform/testutil"
)

func get(t *testing.T, comp *Component, path string) (int, string) {
	t.Helper()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, comp.BaseURL()+path, http.NoBody)
	resp, err := comp.Client().Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent()
	ctx := context.Background()

	if comp.BaseURL() != "" {
		t.Error("BaseURL() should be empty before Start")
	}
	if comp.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before Start")
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := comp.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if comp.Health(ctx).Status != component.StatusHealthy {
		t.Error("expected healthy after Start")
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestComponent_ServeRoutes(t *testing.T) {
	comp := NewComponent()
	comp.GinEngine().GET("/hello", func(c *gin.Context) {
		c.String(http.StatusOK, "world")
	})
	testutil.T(t).Setup(comp)

	status, body := get(t, comp, "/hello")
	if status != http.StatusOK || body != "world" {
		t.Errorf("GET /hello = %d %q", status, body)
	}

	status, body = get(t, comp, "/nope")
	if status != http.StatusNotFound {
		t.Errorf("unknown route status = %d", status)
	}
	if body == "" || body[0] != '{' {
		t.Errorf("unknown route should answer with the error envelope, got %q", body)
	}
}

func TestComponent_Reset(t *testing.T) {
	comp := NewComponent()
	comp.GinEngine().GET("/before", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	testutil.T(t).Setup(comp)

	if status, _ := get(t, comp, "/before"); status != http.StatusOK {
		t.Errorf("before Reset: status = %d", status)
	}
	testutil.T(t).Reset(comp)
	if status, _ := get(t, comp, "/before"); status != http.StatusNotFound {
		t.Errorf("after Reset: status = %d, want 404", status)
	}
}
