package middleware

import (
	"errors"
	"strconv"
	"strings"

	"folio/internal/models"
	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// resourceOf names the collection an API path addresses, e.g. "books" for
// /api/books/4 or "comments" for /api/posts/4/comments.
func resourceOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return ""
	}
	if len(parts) >= 4 && parts[1] == "posts" && parts[3] == "comments" {
		return "comments"
	}
	return parts[1]
}

// statusOf resolves the status a handler error will be answered with.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	return fiber.StatusInternalServerError
}

// TracingMiddleware opens a server span per request. The span is renamed to
// the matched route once routing is done so spans group by endpoint. Only
// server errors mark the span as failed.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", c.OriginalURL()),
			attribute.String("http.client_ip", c.IP()),
		}
		if res := resourceOf(c.Path()); res != "" {
			attrs = append(attrs, attribute.String("folio.resource", res))
		}
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		if route := c.Route().Path; route != "" && route != "/" {
			span.SetName(c.Method() + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}

		status := statusOf(c, err)
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusInternalServerError {
			if err != nil {
				span.RecordError(err)
			}
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}

		if actor := ActorFrom(c); actor.Authenticated() {
			span.SetAttributes(
				attribute.Int64("enduser.id", int64(actor.UserID)),
				attribute.String("enduser.role", string(actor.Role)),
			)
		}
		return err
	}
}
