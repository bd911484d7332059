package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flight-booking-engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Metrics())
	router.GET("/api/bookings/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	req, _ := http.NewRequest(http.MethodGet, "/api/bookings/7c1f", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req, _ = http.NewRequest(http.MethodGet, "/nowhere", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_request_duration_seconds_count{method="GET",route="/api/bookings/:id",status="404"}`)
	assert.Contains(t, string(body), `http_request_duration_seconds_count{method="GET",route="unmatched",status="404"}`)
}
