package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ShippedDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("RATELIMIT_LOGIN_PER_MINUTE", "5")

	cfg, err := loadConfig("config.yml", "testdata/none.env")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("shipped config should validate: %v", err)
	}

	if cfg.Name != "api" || cfg.Server.Port != 8000 {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Auth.JWT.AccessTokenTTL != 30*time.Minute || cfg.Auth.JWT.Method != "HS256" {
		t.Errorf("unexpected jwt config %+v", cfg.Auth.JWT)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("redis url = %q", cfg.Redis.URL)
	}
	if opts, err := cfg.Redis.Options(); err != nil || opts.MaxRetries != -1 {
		t.Errorf("shipped redis config must not resend commands: %+v, %v", opts, err)
	}
	if cfg.Redis.Breaker.MaxFailures != 5 || cfg.Redis.Breaker.OpenTimeout != "10s" {
		t.Errorf("unexpected breaker config %+v", cfg.Redis.Breaker)
	}
	if cfg.RateLimit.LoginPerMinute != 5 {
		t.Errorf("env should override ratelimit, got %d", cfg.RateLimit.LoginPerMinute)
	}
}

func TestConfig_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	cfg, err := loadConfig("config.yml", "testdata/none.env")
	if err != nil {
		t.Fatal(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation to fail without a signing secret")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "api dev") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestMigrateCommands(t *testing.T) {
	root := rootCmd()
	migrate, _, err := root.Find([]string{"migrate"})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range migrate.Commands() {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "down,up,version" {
		t.Errorf("migrate subcommands = %s", got)
	}
}
