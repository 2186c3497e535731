package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"agri-api/internal/domain"
)

// quietPaths are polled by orchestrators and scrapers; they log at debug.
var quietPaths = map[string]struct{}{
	"/healthz": {},
	"/health":  {},
	"/readyz":  {},
	"/metrics": {},
}

// LoggingMiddleware writes one line per request once the handler returns.
// For run streams that is when the stream closes, so latency is the run length.
func LoggingMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case code >= 500:
			ev = logger.Error()
		case code >= 400:
			ev = logger.Warn()
		default:
			if _, quiet := quietPaths[c.Request.URL.Path]; quiet {
				ev = logger.Debug()
			} else {
				ev = logger.Info()
			}
		}
		if !ev.Enabled() {
			return
		}

		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
			ev = ev.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
		if id := RequestIDFromContext(c); id != "" {
			ev = ev.Str("request_id", id)
		}
		if p, ok := domain.PrincipalFromContext(c.Request.Context()); ok {
			ev = ev.Str("user_id", p.ID)
		}
		if threadID := c.Param("thread_id"); threadID != "" {
			ev = ev.Str("thread_id", threadID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			ev = ev.Str("error", errs.String())
		}

		msg := "request completed"
		if isEventStream(c) {
			msg = "stream closed"
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", code).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg(msg)
	}
}
