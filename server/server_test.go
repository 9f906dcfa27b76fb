package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/component"
	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/security"
	"github.com/atelierai/platform/security/tlstest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() Config {
	cfg := Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return cfg
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8000 || cfg.MaxBodySize != "1MB" || cfg.ReadTimeout != 15 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.TLSEnabled() {
		t.Error("TLS should be off by default")
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"negative timeout", func(c *Config) { c.WriteTimeout = -1 }, true},
		{"tls without key", func(c *Config) { c.TLS = &security.TLSConfig{CertFile: "cert.pem"} }, true},
		{"tls bad version", func(c *Config) {
			c.TLS = &security.TLSConfig{CertFile: "c", KeyFile: "k", MinVersion: "1.0"}
		}, true},
		{"client-only tls settings", func(c *Config) { c.TLS = &security.TLSConfig{ServerName: "x"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServer_StartStop(t *testing.T) {
	srv := New(testConfig(), logger.NewNop())
	srv.ApplyDefaults("platform", func(context.Context) []component.Health {
		return []component.Health{{Name: "redis", Status: component.StatusDegraded}}
	})
	comp := NewComponent(srv)
	ctx := context.Background()

	if comp.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("server should be unhealthy before Start")
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = comp.Stop(ctx) })

	if comp.Health(ctx).Status != component.StatusHealthy {
		t.Error("server should be healthy while listening")
	}
	if strings.HasSuffix(srv.Addr(), ":0") {
		t.Errorf("Addr should report the bound port, got %s", srv.Addr())
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Status string `json:"status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK || body.Status != "degraded" {
		t.Errorf("/health = %d %q", resp.StatusCode, body.Status)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("middleware stack should be installed")
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if comp.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("server should be unhealthy after Stop")
	}
}

func TestServer_TLS(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := testConfig()
	cfg.TLS = &security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}

	srv := New(cfg, logger.NewNop())
	srv.ApplyDefaults("platform", nil)
	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop(ctx) })

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{RootCAs: certs.CertPool},
		ForceAttemptHTTP2: true,
	}}
	resp, err := client.Get("https://" + srv.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET over TLS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.ProtoMajor != 2 {
		t.Errorf("expected HTTP/2 over TLS, got %s", resp.Proto)
	}
	if got := NewComponent(srv).Describe().Details; !strings.HasPrefix(got, "https://") {
		t.Errorf("Describe().Details = %q", got)
	}
}

func TestServer_TLSBadCertificate(t *testing.T) {
	cfg := testConfig()
	cfg.TLS = &security.TLSConfig{
		CertFile: tlstest.WriteInvalidPEM(t, "cert.pem"),
		KeyFile:  tlstest.WriteInvalidPEM(t, "key.pem"),
	}
	if err := New(cfg, logger.NewNop()).Start(context.Background()); err == nil {
		t.Error("Start should fail with an unusable certificate")
	}
}

func TestServer_HandlerMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodySize = "1KB"
	cfg.CORS.AllowedOrigins = []string{"https://studio.example.com"}
	srv := New(cfg, logger.NewNop())
	srv.ApplyMiddleware()
	srv.GinEngine().POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	big := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", 4096)))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: %d", rr.Code)
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/unknown", http.NoBody)
	preflight.Header.Set("Origin", "https://studio.example.com")
	preflight.Header.Set("Access-Control-Request-Method", "POST")
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, preflight)
	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight on any path should be answered, got %d", rr.Code)
	}

	wrongMethod := httptest.NewRequest(http.MethodGet, "/echo", http.NoBody)
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, wrongMethod)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method: %d", rr.Code)
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"sentinel", jwt.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"app error", apperrors.NotFound("user", "u1"), http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tt.err)

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			var env apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
				t.Fatal(err)
			}
			if string(env.Error.Code) != tt.code {
				t.Errorf("code = %s, want %s", env.Error.Code, tt.code)
			}
			if strings.Contains(rr.Body.String(), "boom") {
				t.Error("internal cause leaked")
			}
		})
	}
}

func TestRespondList(t *testing.T) {
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	RespondList(c, []string{"a"}, &Meta{Page: 1, PageSize: 20, Total: 1, TotalPages: 1})

	body, _ := io.ReadAll(rr.Body)
	want := `{"data":["a"],"meta":{"page":1,"page_size":20,"total":1,"total_pages":1}}`
	if string(body) != want {
		t.Errorf("body = %s", body)
	}
}

func TestComponent_Routes(t *testing.T) {
	srv := New(testConfig(), logger.NewNop())
	srv.RegisterDefaultEndpoints("platform", nil)
	srv.GinEngine().POST("/api/v1/auth/login", func(c *gin.Context) {})
	srv.GinEngine().GET("/api/v1/auth/me", func(c *gin.Context) {})

	routes := NewComponent(srv).Routes()
	if len(routes) != 6 {
		t.Fatalf("expected 6 routes, got %d", len(routes))
	}
	if routes[0].Path != "/api/v1/auth/login" || routes[1].Path != "/api/v1/auth/me" {
		t.Errorf("API routes should come first: %+v", routes[:2])
	}
	for _, r := range routes[2:] {
		if !probePaths[r.Path] {
			t.Errorf("unexpected route order: %+v", routes)
		}
	}
}

func TestHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/atelierai/platform/api.(*AuthHandler).Login-fm":       "AuthHandler.Login",
		"github.com/atelierai/platform/server/endpoint.Health.func1":      "Health",
		"github.com/atelierai/platform/server.TestComponent_Routes.func1": "TestComponent_Routes",
		"main.main": "main",
	}
	for in, want := range tests {
		if got := handlerName(in); got != want {
			t.Errorf("handlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
