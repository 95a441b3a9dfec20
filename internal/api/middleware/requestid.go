package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/evalguard/internal/shared/id"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestID assigns every request a ULID-based ID. A well-formed incoming
// X-Request-ID is kept so callers can correlate logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if !id.IsValidRequestID(reqID) {
			reqID = id.NewRequestID().String()
		}
		c.Set(requestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or "" if the
// middleware is not installed.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
