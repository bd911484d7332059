package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		header   string
		incoming string
		want     string
	}{
		{name: "generated when absent"},
		{name: "propagated from caller", header: CorrelationIDHeader, incoming: "booking-retry-7f3a", want: "booking-retry-7f3a"},
		{name: "request id accepted", header: RequestIDHeader, incoming: "proxy-91c2", want: "proxy-91c2"},
		{name: "surrounding spaces trimmed", header: CorrelationIDHeader, incoming: "  cid-42 ", want: "cid-42"},
		{name: "oversized id replaced", header: CorrelationIDHeader, incoming: strings.Repeat("x", 129)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CorrelationID())

			var seen string
			router.POST("/api/bookings", func(c *gin.Context) {
				seen = GetCorrelationID(c)
				c.Status(http.StatusCreated)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.incoming)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusCreated, rr.Code)
			echoed := rr.Header().Get(CorrelationIDHeader)
			assert.Equal(t, echoed, seen)

			if tc.want != "" {
				assert.Equal(t, tc.want, echoed)
				return
			}
			_, err := uuid.Parse(echoed)
			assert.NoError(t, err)
		})
	}
}

func TestGetCorrelationID_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(CorrelationIDKey, 42)

	assert.Empty(t, GetCorrelationID(c))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))

	t.Run("prefers the stored request logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		stored := fallback.With("source", "stored")
		c.Set(LoggerKey, stored)

		assert.Same(t, stored, RequestLogger(c, fallback))
	})

	t.Run("tags the fallback with the correlation id", func(t *testing.T) {
		buf.Reset()
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(CorrelationIDKey, "cid-cancel-1")

		RequestLogger(c, fallback).Info("cancelling booking")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "cid-cancel-1", entry["correlation_id"])
	})

	t.Run("returns the fallback untouched without an id", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Same(t, fallback, RequestLogger(c, fallback))
	})
}
