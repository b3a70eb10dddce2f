package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// routeClass buckets gateway paths by the engine surface they hit, so span
// names stay low-cardinality (sale ids in the path would otherwise explode
// them).
func routeClass(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/sales"):
		return "sales"
	case strings.HasPrefix(path, "/api/stock"):
		return "stock"
	case strings.HasPrefix(path, "/health"):
		return "health"
	default:
		return "gateway"
	}
}

// TracingMiddleware opens a server span per request and propagates the
// trace context to the engine so its repository spans join the same trace.
func TracingMiddleware() fiber.Handler {
	tracer := otel.Tracer("pos-gateway")

	return func(c *fiber.Ctx) error {
		ctx, span := tracer.Start(
			c.UserContext(),
			c.Method()+" "+routeClass(c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.Path()),
				attribute.String("gateway.route", routeClass(c.Path())),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		c.SetUserContext(ctx)

		carrier := propagation.HeaderCarrier{}
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		for key, values := range carrier {
			for _, value := range values {
				c.Request().Header.Set(key, value)
			}
		}

		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= 500:
			span.SetStatus(codes.Error, "engine error")
		default:
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
