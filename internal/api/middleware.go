package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/marcodd23/go-todo-service/internal/metrics"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/marcodd23/go-todo-service/pkg/utilx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID - request correlation header, echoed on the response.
const HeaderRequestID = "X-Request-ID"

// unmatchedRoute labels requests no route accepted, keeping the path label bounded.
const unmatchedRoute = "unmatched"

var tracer = otel.Tracer("github.com/marcodd23/go-todo-service/internal/api")

// RequestID stores the caller's request id, or a new one, in the user context so every log line carries it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = utilx.GenerateUUID().String()
		}

		c.Set(HeaderRequestID, requestID)
		c.SetUserContext(logx.WithRequestID(c.UserContext(), requestID))

		return c.Next()
	}
}

// HTTPMetrics counts requests and observes their latency per route.
// Errors are rendered here so the recorded status is the one sent.
// It must run before recover so panics are counted too.
func HTTPMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := utils.CopyString(c.Method())

		err := c.Next()

		path := c.Route().Path
		if isUnmatched(err) || path == "" {
			path = unmatchedRoute
		}

		if err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Response().StatusCode())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return nil
	}
}

// isUnmatched reports whether err is the router's own not found or method not allowed.
func isUnmatched(err error) bool {
	fiberErr, ok := err.(*fiber.Error) //nolint:errorlint // the router returns it unwrapped
	if !ok {
		return false
	}

	return fiberErr.Code == fiber.StatusNotFound || fiberErr.Code == fiber.StatusMethodNotAllowed
}

// Tracing continues the caller's trace from the request headers and runs the route in a server span.
func Tracing(propagator propagation.TextMapPropagator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		carrier := propagation.HeaderCarrier(http.Header{})
		c.Request().Header.VisitAll(func(key, value []byte) {
			carrier.Set(string(key), string(value))
		})

		method := utils.CopyString(c.Method())
		ctx := propagator.Extract(c.UserContext(), carrier)
		ctx, span := tracer.Start(ctx, method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.request.method", method)))
		defer span.End()

		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route().Path
		if isUnmatched(err) || route == "" {
			route = unmatchedRoute
		}

		span.SetName(method + " " + route)
		span.SetAttributes(attribute.String("http.route", route))

		status := c.Response().StatusCode()
		if err != nil {
			status = toError(err).Status
			span.RecordError(err)
		}

		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		return err
	}
}
