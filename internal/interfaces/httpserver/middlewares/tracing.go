package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// resourceParams are the route params copied onto request spans.
var resourceParams = []string{"thread_id", "farm_id", "zone_id", "alert_id", "task_id", "member_id"}

// TracingMiddleware opens a server span per request, continuing any incoming
// trace context. Run streams keep the span open until the last frame.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(serviceName)

	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			semconv.HTTPMethod(c.Request.Method),
			semconv.HTTPRoute(route),
			semconv.HTTPTarget(c.Request.URL.Path),
			semconv.HTTPUserAgent(c.Request.UserAgent()),
		}
		for _, name := range resourceParams {
			if v := c.Param(name); v != "" {
				attrs = append(attrs, attribute.String("agri."+name, v))
			}
		}

		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		if id := RequestIDFromContext(c); id != "" {
			span.SetAttributes(attribute.String("request.id", id))
		}

		c.Next()

		code := c.Writer.Status()
		span.SetAttributes(
			semconv.HTTPStatusCode(code),
			attribute.Bool("http.streaming", isEventStream(c)),
		)
		if code < 500 {
			return
		}
		span.SetStatus(codes.Error, c.Errors.String())
		if last := c.Errors.Last(); last != nil {
			span.RecordError(last)
		}
	}
}

func isEventStream(c *gin.Context) bool {
	return strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream")
}
