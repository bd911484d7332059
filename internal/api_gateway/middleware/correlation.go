package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	// RequestIDHeader is accepted when a proxy sets it instead of CorrelationIDHeader
	RequestIDHeader = "X-Request-ID"

	CorrelationIDKey = "correlation_id"
	LoggerKey        = "request_logger"

	maxCorrelationIDLen = 128
)

// CorrelationID tags every request with an id that is echoed back and carried into
// outbox events and wallet ledger entries. Caller ids longer than 128 bytes are replaced.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := incomingCorrelationID(c)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

func incomingCorrelationID(c *gin.Context) string {
	for _, header := range []string{CorrelationIDHeader, RequestIDHeader} {
		id := strings.TrimSpace(c.GetHeader(header))
		if id != "" && len(id) <= maxCorrelationIDLen {
			return id
		}
	}
	return ""
}

// GetCorrelationID returns "" outside a CorrelationID-wrapped request
func GetCorrelationID(c *gin.Context) string {
	id, _ := c.Get(CorrelationIDKey)
	s, _ := id.(string)
	return s
}

// RequestLogger returns the logger tagged with the request's correlation id,
// or fallback when the Logger middleware did not run
func RequestLogger(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := c.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	if id := GetCorrelationID(c); id != "" {
		return fallback.With("correlation_id", id)
	}
	return fallback
}
