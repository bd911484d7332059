package event_processor

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/platform/health"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusServer_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Application: config.ApplicationConfig{Name: "event-processor"},
		Server:      config.ServerConfig{Port: 9090},
	}
	srv := NewStatusServer(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, health.NewChecker(cfg.Application.Name, nil))

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"up"`)
	assert.Contains(t, rr.Body.String(), `"service":"event-processor"`)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
