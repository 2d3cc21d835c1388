package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrasdas/sharelink/internal/cache"
	"github.com/xrasdas/sharelink/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Log:  config.LogConfig{Level: "error", Format: "text"},
		Convert: config.ConvertConfig{
			MaxBodyBytes: 4 * 1024 * 1024,
			CacheTTL:     time.Minute,
		},
	}
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := NewRouter(nil, testConfig(), cache.New(time.Minute))

	for _, path := range []string{"/healthz", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
	}
}

func TestRouterConvertEndpoint(t *testing.T) {
	router := NewRouter(nil, testConfig(), cache.New(time.Minute))

	body := `{
		"remarks": "A",
		"outbounds": [{
			"protocol": "trojan",
			"tag": "proxy",
			"settings": {"servers": [{"address": "1.2.3.4", "port": 443, "password": "pw"}]}
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.10:50000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var res struct {
		Links  []string `json:"links"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Links, 1)
	assert.Equal(t, "trojan://pw@1.2.3.4:443?type=tcp&security=none#A", res.Links[0])
}

func TestRouterBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Convert.MaxBodyBytes = 16
	router := NewRouter(nil, cfg, cache.New(time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/api/convert",
		strings.NewReader(`{"remarks": "way past the sixteen byte limit"}`))
	req.RemoteAddr = "203.0.113.10:50000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter(nil, testConfig(), cache.New(time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	router := NewRouter(nil, testConfig(), cache.New(time.Minute))

	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouterMetricsEndpoint(t *testing.T) {
	// Prometheus collectors register globally, so only this test enables
	// the metrics stack.
	cfg := testConfig()
	cfg.Metrics = config.MetricsConfig{Enabled: true, Namespace: "sharelink_test", Subsystem: "http"}
	router := NewRouter(nil, cfg, cache.New(time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
