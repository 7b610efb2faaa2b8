package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/config"
	"github.com/upb/inventory-admin/routes"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Environment: "test",
		Database:    config.DatabaseConfig{Driver: config.DriverMemory},
		JWT: config.JWTConfig{
			Key:             "test-signing-key-0123456789abcdef",
			Issuer:          "inventory-api",
			Audience:        "inventory-admin",
			DurationMinutes: 60,
		},
		Seed:          config.SeedConfig{Enabled: true, AdminEmail: "admin@inventory.local", AdminPassword: "Admin123!"},
		Observability: config.ObservabilityConfig{LogLevel: "error"},
	}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Server.WriteTimeout = 5 * time.Second
	cfg.Server.ShutdownTimeout = 5 * time.Second
	return cfg
}

func TestApplicationStartup(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()

	deps, err := app.NewDependencies(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, deps.Seed(ctx))

	ts := httptest.NewServer(routes.SetupRoutes(deps))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Data.Status)
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	srv := newServer(cfg, http.NotFoundHandler())

	assert.Equal(t, "127.0.0.1:0", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 5*time.Second, srv.WriteTimeout)
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	srv := newServer(cfg, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, cfg, zaptest.NewLogger(t)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_ReportsListenErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "256.0.0.1"
	srv := newServer(cfg, http.NotFoundHandler())

	err := serve(context.Background(), srv, cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
