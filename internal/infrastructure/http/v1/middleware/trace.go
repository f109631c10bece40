package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	appctx "facturador/internal/core/context"
)

// RequestIDHeader carries the client-supplied request correlation id.
const RequestIDHeader = "X-Request-ID"

// Trace middleware populates the trace context for downstream logging.
// A client-supplied request id is propagated; otherwise one is generated.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := appctx.NewTraceContext()

		if requestID := c.GetHeader(RequestIDHeader); requestID != "" {
			tc.RequestID = requestID
		}

		// When an OTel span is active, prefer its ids
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			tc.TraceID = span.SpanContext().TraceID().String()
			tc.SpanID = span.SpanContext().SpanID().String()
		}

		ctx := appctx.WithTrace(c.Request.Context(), tc)
		c.Request = c.Request.WithContext(ctx)

		c.Writer.Header().Set(RequestIDHeader, tc.RequestID)
		c.Set("request_id", tc.RequestID)

		c.Next()
	}
}
