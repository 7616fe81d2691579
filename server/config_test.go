package server_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/listings-subgraph/server"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := server.LoadConfig(server.DefaultConfigPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SubgraphName != "listings" || cfg.SchemaFile != "./schema.graphql" || cfg.Port != 4003 || cfg.Endpoint != "/" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.BookingsDB.URL != "" {
		t.Errorf("expected no bookings database by default, got %q", cfg.BookingsDB.URL)
	}
	if cfg.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
	if diff := cmp.Diff([]string{"Content-Type", "Authorization", "userid", "userrole", "X-Request-Id"}, cfg.CORS.AllowHeaders); diff != "" {
		t.Errorf("CORS headers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_EnvironmentAndFile(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TEST_BOOKINGS_URL", "postgres://localhost:5432/bookings")

	path := writeConfig(t, `
endpoint: /graphql
listings_api:
  url: http://listings.internal/
  timeout: 2s
bookings_db:
  url: ${TEST_BOOKINGS_URL}
`)

	cfg, err := server.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	got := struct {
		Port        int
		Endpoint    string
		Level       string
		ListingsURL string
		Timeout     time.Duration
		BookingsURL string
	}{cfg.Port, cfg.Endpoint, cfg.Log.Level, cfg.ListingsAPI.URL, cfg.ListingsAPI.Timeout, cfg.BookingsDB.URL}
	want := struct {
		Port        int
		Endpoint    string
		Level       string
		ListingsURL string
		Timeout     time.Duration
		BookingsURL string
	}{5000, "/graphql", "debug", "http://listings.internal/", 2 * time.Second, "postgres://localhost:5432/bookings"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Addr() != ":5000" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing custom file", path: filepath.Join(t.TempDir(), "nope.yaml")},
		{name: "invalid yaml", path: writeConfig(t, "port: [")},
		{name: "invalid port", path: writeConfig(t, "port: 70000")},
		{name: "relative endpoint", path: writeConfig(t, "endpoint: graphql")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := server.LoadConfig(tt.path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
