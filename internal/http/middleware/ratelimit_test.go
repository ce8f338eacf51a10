package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/http/middleware"
)

func limited(cfg *config.RateLimitConfig) http.Handler {
	return middleware.NewRateLimiter(cfg, zap.NewNop()).Limit(okHandler())
}

func hit(h http.Handler, path, remote string, header http.Header) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := limited(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1})
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/leads/search", "10.0.0.1:1234", nil))
	}
}

func TestRateLimiter_LimitsByIP(t *testing.T) {
	h := limited(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2})

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/leads/search", "10.0.0.1:1234", nil))
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/leads/search", "10.0.0.1:1234", nil))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/leads/search", "10.0.0.1:1234", nil))

	// Another client has its own budget
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/leads/search", "10.0.0.2:1234", nil))
}

func TestRateLimiter_KeysByUser(t *testing.T) {
	h := limited(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1})
	alice := http.Header{"User-Id": {"alice"}}
	bob := http.Header{"User-Id": {"bob"}}

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/views", "10.0.0.1:1234", alice))
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/views", "10.0.0.1:1234", bob))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/views", "10.0.0.1:1234", alice))
}

func TestRateLimiter_Whitelists(t *testing.T) {
	h := limited(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"127.0.0.1"},
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/leads", "127.0.0.1:1234", nil))
		assert.Equal(t, http.StatusOK, hit(h, "/health", "10.0.0.9:1234", nil))
		assert.Equal(t, http.StatusOK, hit(h, "/swagger/index.html", "10.0.0.9:1234", nil))
	}
}

func TestRateLimiter_ForwardedFor(t *testing.T) {
	h := limited(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, WhitelistIPs: []string{"203.0.113.7"}})
	xff := http.Header{"X-Forwarded-For": {"203.0.113.7, 10.0.0.1"}}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/leads", "10.0.0.1:1234", xff))
	}
}
