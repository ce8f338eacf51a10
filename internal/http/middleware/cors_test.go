package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/http/middleware"
)

func preflight(h http.Handler, origin string, headers string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/views", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	if headers != "" {
		req.Header.Set("Access-Control-Request-Headers", headers)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	base := config.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept"},
		MaxAge:         300,
	}

	tests := []struct {
		name    string
		origins []string
		env     string
		want    string
	}{
		{"development allows any origin", nil, "development", "http://localhost:3000"},
		{"production without origins denies", nil, "production", ""},
		{"explicit origin allowed", []string{"http://localhost:3000"}, "production", "http://localhost:3000"},
		{"explicit origin mismatch", []string{"https://crm.example.com"}, "production", ""},
		{"wildcard", []string{"*"}, "production", "http://localhost:3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.AllowedOrigins = tt.origins
			h := middleware.CORS(&cfg, tt.env, zap.NewNop())(okHandler())

			w := preflight(h, "http://localhost:3000", "")
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_AllowsUserHeader(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
	}
	h := middleware.CORS(&cfg, "production", zap.NewNop())(okHandler())

	w := preflight(h, "http://localhost:3000", "user-id")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "user-id")
}
