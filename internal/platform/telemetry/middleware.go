package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TraceIDHeader carries the trace ID back to clients.
	TraceIDHeader = "X-Trace-ID"

	// probePrefix groups liveness, readiness and scrape routes, which are
	// neither traced nor counted.
	probePrefix = "/-/"

	unmatchedRoute = "unmatched"
)

type httpInstruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)

	if in.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of API requests"), metric.WithUnit("s")); err != nil {
		return nil, err
	}

	if in.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("API requests served")); err != nil {
		return nil, err
	}

	if in.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("API requests in progress")); err != nil {
		return nil, err
	}

	return &in, nil
}

func (in *httpInstruments) observe(c *gin.Context) {
	ctx := c.Request.Context()

	route := c.FullPath()
	if route == "" {
		route = unmatchedRoute
	}

	base := []attribute.KeyValue{
		attribute.String("http.request.method", c.Request.Method),
		attribute.String("http.route", route),
	}

	in.inFlight.Add(ctx, 1, metric.WithAttributes(base...))
	start := time.Now()

	c.Next()

	in.inFlight.Add(ctx, -1, metric.WithAttributes(base...))

	done := metric.WithAttributes(append(base, attribute.Int("http.response.status_code", c.Writer.Status()))...)
	in.duration.Record(ctx, time.Since(start).Seconds(), done)
	in.total.Add(ctx, 1, done)
}

func isProbe(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, probePrefix)
}

// Middleware returns otelgin tracing followed by a handler that echoes the
// trace ID and records request metrics. Probe routes under /-/ skip both.
// Register with engine.Use(telemetry.Middleware(name)...).
func Middleware(serviceName string) []gin.HandlerFunc {
	in, err := newHTTPInstruments(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	traced := otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool { return !isProbe(r) }),
	)

	return []gin.HandlerFunc{
		traced,
		func(c *gin.Context) {
			if isProbe(c.Request) {
				c.Next()
				return
			}

			if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
				c.Header(TraceIDHeader, sc.TraceID().String())
			}

			if in == nil {
				c.Next()
				return
			}

			in.observe(c)
		},
	}
}
