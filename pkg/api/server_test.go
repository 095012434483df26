package api

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartServer_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, nil, ServerConfig{Bind: "127.0.0.1", Port: 0}, nil, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartServer_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	err = StartServer(context.Background(), nil, ServerConfig{Bind: "127.0.0.1", Port: port}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed")
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := NewServer(nil, ServerConfig{}, NewMetrics(reg), nil)
	env := &testEnv{server: server, handler: NewRouter(server)}

	w, _ := env.do(t, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "fbx_http_requests_total")
	assert.Contains(t, body, "fbx_health_checks_total")
	assert.Contains(t, body, `endpoint="/api/v1/health"`)
}

func TestRouter_APIKey(t *testing.T) {
	env := setupTestServer(t, ServerConfig{APIKey: "secret"})

	w, _ := env.do(t, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health must not require a key")

	w, _ = env.do(t, "GET", "/api/v1/reports", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, err := http.NewRequest("GET", "/api/v1/reports", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	req, err := http.NewRequest("OPTIONS", "/api/v1/decode", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
