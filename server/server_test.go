package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/n9te9/listings-subgraph/datasources/bookings"
	"github.com/n9te9/listings-subgraph/datasources/listings/listingstest"
	"github.com/n9te9/listings-subgraph/server"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *server.Config {
	t.Helper()

	upstream := listingstest.NewServer()
	t.Cleanup(upstream.Close)

	return &server.Config{
		SubgraphName:    "listings",
		SchemaFile:      "../schema.graphql",
		Host:            "127.0.0.1",
		Port:            0,
		Endpoint:        "/",
		HealthPath:      "/.well-known/apollo/server-health",
		ShutdownTimeout: time.Second,
		MaxParallelism:  10,
		ListingsAPI:     server.ListingsAPIConfig{URL: upstream.URL, Timeout: time.Second},
		CORS:            server.CORSConfig{Enabled: true, AllowOrigins: []string{"*"}, AllowHeaders: []string{"Content-Type", "userid", "userrole"}},
		Metrics:         server.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func startServer(t *testing.T, cfg *server.Config) *server.Server {
	t.Helper()

	s, err := server.New(t.Context(), cfg, zap.NewNop(), server.WithStore(bookings.NewMemoryStore()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	go s.Serve() //nolint:errcheck
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx) //nolint:errcheck
	})
	return s
}

func TestServer_AcceptsConnections(t *testing.T) {
	s := startServer(t, testConfig(t))

	req, err := http.NewRequest(http.MethodPost, s.URL(), strings.NewReader(`{"query":"{ listing(id: \"listing-1\") { id } }"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if !bytes.Contains(body, []byte(`"listing":{"id":"listing-1"}`)) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestNew_RealSchemaServesSDL(t *testing.T) {
	cfg := testConfig(t)
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("New panicked over %s: %v", cfg.SchemaFile, r)
		}
	}()
	s := startServer(t, cfg)

	want, err := os.ReadFile(cfg.SchemaFile)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(s.URL(), "application/json", strings.NewReader(`{"query":"{ _service { sdl } }"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var got struct {
		Data struct {
			Service struct {
				SDL string `json:"sdl"`
			} `json:"_service"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", got.Errors)
	}
	if got.Data.Service.SDL != string(want) {
		t.Errorf("_service.sdl must be the schema file verbatim, got:\n%s", got.Data.Service.SDL)
	}
}

func TestServer_AuxiliaryEndpoints(t *testing.T) {
	s := startServer(t, testConfig(t))
	base := strings.TrimSuffix(s.URL(), "/")

	tests := []struct {
		path     string
		contains string
	}{
		{path: "/.well-known/apollo/server-health", contains: `"pass"`},
		{path: "/metrics", contains: "go_goroutines"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(base + tt.path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(tt.contains)) {
				t.Errorf("unexpected response %d: %s", resp.StatusCode, body)
			}
		})
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := startServer(t, testConfig(t))

	req, _ := http.NewRequest(http.MethodOptions, s.URL(), nil)
	req.Header.Set("Origin", "https://studio.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "userid")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestNew_SchemaErrors(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "schema.graphql")
	if err := os.WriteFile(invalid, []byte("type Query {"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		schemaFile string
		notExist   bool
	}{
		{name: "missing", schemaFile: filepath.Join(t.TempDir(), "missing.graphql"), notExist: true},
		{name: "unparsable", schemaFile: invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.SchemaFile = tt.schemaFile

			_, err := server.New(t.Context(), cfg, zap.NewNop())
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, fs.ErrNotExist); got != tt.notExist {
				t.Errorf("errors.Is(err, fs.ErrNotExist) = %v, want %v (err: %v)", got, tt.notExist, err)
			}
		})
	}
}

func TestRun_MissingSchemaNeverListens(t *testing.T) {
	cfg := testConfig(t)
	cfg.SchemaFile = filepath.Join(t.TempDir(), "missing.graphql")

	previous := startServer(t, testConfig(t))
	cfg.Port = portOf(t, previous.URL())
	previous.Shutdown(context.Background()) //nolint:errcheck

	if err := server.Run(t.Context(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected Run to fail")
	}
	if _, err := http.Get(previous.URL()); err == nil {
		t.Error("expected nothing to listen on the configured port")
	}
}

func TestListen_PortInUse(t *testing.T) {
	first := startServer(t, testConfig(t))

	cfg := testConfig(t)
	cfg.Port = portOf(t, first.URL())
	second, err := server.New(t.Context(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer second.Shutdown(context.Background()) //nolint:errcheck

	if err := second.Listen(); err == nil {
		t.Fatal("expected the second instance to fail to bind")
	}

	if err := server.Run(t.Context(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected Run to fail on a bound port")
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx, cfg, zap.NewNop()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected a clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func portOf(t *testing.T, rawURL string) int {
	t.Helper()

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return port
}
