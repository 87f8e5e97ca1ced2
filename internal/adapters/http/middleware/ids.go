package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

const (
	// HeaderRequestID identifies a single request.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID ties together every request of one user action,
	// including the calls the sync engine makes to the remote source.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin.Context key of the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin.Context key of the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds caller-supplied IDs; longer ones are replaced.
const maxIDLength = 128

type idSpec struct {
	header   string
	key      string
	store    func(context.Context, string) context.Context
	annotate func(context.Context, string) context.Context
}

func (s idSpec) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(s.header)
		if id == "" || len(id) > maxIDLength {
			id = uuid.NewString()
		}

		c.Set(s.key, id)
		c.Header(s.header, id)

		ctx := s.annotate(s.store(c.Request.Context(), id), id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ContextLogger puts logger into every request context so later middleware
// and handlers can enrich and retrieve it with logging.FromContext.
func ContextLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

// RequestID reuses the caller's X-Request-ID or generates a UUID. The ID is
// echoed in the response, stored in the request context and added to the
// context logger.
func RequestID() gin.HandlerFunc {
	return idSpec{
		header:   HeaderRequestID,
		key:      ContextKeyRequestID,
		store:    ContextWithRequestID,
		annotate: logging.WithRequestID,
	}.handler()
}

// CorrelationID works like RequestID for X-Correlation-ID.
func CorrelationID() gin.HandlerFunc {
	return idSpec{
		header:   HeaderCorrelationID,
		key:      ContextKeyCorrelationID,
		store:    ContextWithCorrelationID,
		annotate: logging.WithCorrelationID,
	}.handler()
}
