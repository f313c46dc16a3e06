package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"

	"GreetingServer/internal/auth"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 3000 {
		t.Fatalf("expected port 3000, got %d", cfg.Port)
	}
	if len(cfg.Routes) != 2 || cfg.Routes[0].Body != "Hello world" || cfg.Routes[1].Body != "Good evening" {
		t.Fatalf("expected built-in routes, got %+v", cfg.Routes)
	}
	if cfg.AdminEnabled {
		t.Fatal("expected admin API disabled by default")
	}
	if cfg.LogLevel != hclog.Info {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.ReloadInterval != DefaultReloadInterval {
		t.Fatalf("expected default reload interval, got %v", cfg.ReloadInterval)
	}
}

func TestPortOverride(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"PORT": "8081"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8081 {
		t.Fatalf("expected 8081, got %d", cfg.Port)
	}
}

func TestInvalidValues(t *testing.T) {
	cases := []map[string]string{
		{"PORT": "abc"},
		{"PORT": "70000"},
		{"PORT": "-1"},
		{"ADMIN_PORT": "x"},
		{"ROUTES_FILE": "/nonexistent/routes.yaml"},
		{"ROUTES_RELOAD_INTERVAL": "soon"},
		{"ROUTES_RELOAD_INTERVAL": "-5s"},
		{"ADMIN_JWT_PUBLIC_KEY": "/nonexistent.pub"},
		{"LOG_LEVEL": "loud"},
	}

	for _, vars := range cases {
		if _, err := FromEnv(env(vars)); err == nil {
			t.Fatalf("%v: expected error", vars)
		}
	}
}

func TestRoutesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	data := "routes:\n  - method: GET\n    path: /morning\n    body: Good morning\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := FromEnv(env(map[string]string{"ROUTES_FILE": path, "ROUTES_RELOAD_INTERVAL": "0"}))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.RoutesFile != path {
		t.Fatalf("expected routes file %q, got %q", path, cfg.RoutesFile)
	}
	if len(cfg.Routes) != 1 || cfg.Routes[0].Path != "/morning" {
		t.Fatalf("unexpected routes %+v", cfg.Routes)
	}
	if cfg.ReloadInterval != 0 {
		t.Fatalf("expected reload disabled, got %v", cfg.ReloadInterval)
	}
}

func TestAdminSettings(t *testing.T) {
	_, pubPEM, err := auth.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	pubPath := filepath.Join(t.TempDir(), "admin.pub")
	if err := os.WriteFile(pubPath, pubPEM, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := FromEnv(env(map[string]string{
		"ADMIN_PORT":           "9090",
		"ADMIN_JWT_PUBLIC_KEY": pubPath,
		"ADMIN_JWT_ISSUER":     "ops",
		"ADMIN_JWT_ROLE":       "admin",
		"LOG_LEVEL":            "debug",
	}))
	if err != nil {
		t.Fatal(err)
	}

	if !cfg.AdminEnabled || cfg.AdminPort != 9090 {
		t.Fatalf("expected admin on 9090, got %v %d", cfg.AdminEnabled, cfg.AdminPort)
	}
	if cfg.AdminAuth.PublicKey == nil {
		t.Fatal("expected public key loaded")
	}
	if cfg.AdminAuth.Issuer != "ops" || cfg.AdminAuth.Audience != DefaultAdminAudience || cfg.AdminAuth.RequiredRole != "admin" {
		t.Fatalf("unexpected admin auth %+v", cfg.AdminAuth)
	}
	if cfg.LogLevel != hclog.Debug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
}
