package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/project-tracker/internal/config"
	"github.com/straye-as/project-tracker/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/projects", "192.168.1.1:1234").Code)
	}
	assert.Equal(t, 20, calls)
}

func TestRateLimiter_LimitsPerIP(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/projects", "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/projects", "10.0.0.1:2").Code)

	limited := doRequest(handler, "/api/v1/projects", "10.0.0.1:3")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "Too many requests")

	// Another client has its own budget
	assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/projects", "10.0.0.2:1").Code)
	assert.Equal(t, 3, calls)
}

func TestRateLimiter_Whitelists(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"127.0.0.1"},
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	tests := []struct {
		name       string
		path       string
		remoteAddr string
	}{
		{"whitelisted ip", "/api/v1/projects", "127.0.0.1:5000"},
		{"exact path", "/health", "10.1.1.1:5000"},
		{"prefix path", "/swagger/index.html", "10.1.1.1:5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				assert.Equal(t, http.StatusOK, doRequest(handler, tt.path, tt.remoteAddr).Code)
			}
		})
	}
}

func TestRateLimiter_ForwardedFor(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}, zap.NewNop())
	calls := 0
	handler := rl.LimitByIP(okHandler(&calls))

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
		req.RemoteAddr = "172.16.0.1:80"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7, 172.16.0.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.8"), "the proxy address is not the key")
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
}

func TestRateLimiter_ImportsHaveOwnBudget(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 100,
		ImportsPerMinute:  1,
	}, zap.NewNop())
	calls := 0
	imports := rl.LimitImports(okHandler(&calls))

	assert.Equal(t, http.StatusOK, doRequest(imports, "/api/v1/import/projects", "10.0.0.9:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(imports, "/api/v1/import/projects", "10.0.0.9:1").Code)
	assert.Equal(t, 1, calls)
}
