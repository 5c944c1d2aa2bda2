package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/straye-as/project-tracker/internal/config"
	"github.com/straye-as/project-tracker/internal/http/middleware"
	"github.com/straye-as/project-tracker/internal/http/router"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T, enableSwagger bool) http.Handler {
	t.Helper()
	store, err := repository.OpenStore(filepath.Join(t.TempDir(), "project_tracker.json"), zap.NewNop())
	require.NoError(t, err)

	cfg := &config.Config{
		App:      config.AppConfig{Environment: "development"},
		Server:   config.ServerConfig{EnableSwagger: enableSwagger},
		Security: config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
	}
	rl := middleware.NewRateLimiter(&cfg.RateLimit, zap.NewNop())
	return router.NewRouter(cfg, zap.NewNop(), store, rl, router.Handlers{}).Setup()
}

func TestRouter_Health(t *testing.T) {
	r := setupRouter(t, false)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRouter_SwaggerToggle(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantStatus int
	}{
		{"disabled", false, http.StatusNotFound},
		{"enabled", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, tt.enabled)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := setupRouter(t, false)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
