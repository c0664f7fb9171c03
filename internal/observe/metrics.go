// Package observe provides the metrics and request logging of the linse
// server: OpenTelemetry instruments, a Prometheus exporter bridge serving
// /metrics, and HTTP middleware that ties them to logrus.
//
// Tests should build their own Metrics with NewMetrics and a ManualReader
// backed provider to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope of all linse metrics.
const meterName = "github.com/lingpy/linse"

// Metrics holds the instruments recorded by the server.
// All fields are safe for concurrent use.
type Metrics struct {
	// HTTPRequestDuration tracks request processing time. Attributes:
	//   method, path, status
	HTTPRequestDuration metric.Float64Histogram

	// Words counts words processed per operation. Attribute: op
	Words metric.Int64Counter

	// Segments counts segments produced by the tokenizer.
	Segments metric.Int64Counter

	// Unresolved counts tokens classified as Replacement. Attribute: model
	Unresolved metric.Int64Counter

	// Errors counts failed operations. Attributes: op, kind
	Errors metric.Int64Counter
}

// latencyBuckets are histogram boundaries in seconds.
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.HTTPRequestDuration, err = m.Float64Histogram("linse.http.request.duration",
		metric.WithDescription("HTTP request latency by method, path and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Words, err = m.Int64Counter("linse.words",
		metric.WithDescription("Words processed by operation."),
	); err != nil {
		return nil, err
	}
	if met.Segments, err = m.Int64Counter("linse.segments",
		metric.WithDescription("Segments produced by the tokenizer."),
	); err != nil {
		return nil, err
	}
	if met.Unresolved, err = m.Int64Counter("linse.unresolved_tokens",
		metric.WithDescription("Tokens no sound-class model entry could resolve."),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("linse.errors",
		metric.WithDescription("Failed operations by operation and error kind."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level Metrics built on the global
// meter provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordWords adds n processed words for op.
func (m *Metrics) RecordWords(ctx context.Context, op string, n int) {
	m.Words.Add(ctx, int64(n), metric.WithAttributes(attribute.String("op", op)))
}

// RecordSegments adds n tokenizer segments.
func (m *Metrics) RecordSegments(ctx context.Context, n int) {
	m.Segments.Add(ctx, int64(n))
}

// RecordUnresolved adds n unresolved tokens for model.
func (m *Metrics) RecordUnresolved(ctx context.Context, model string, n int) {
	if n == 0 {
		return
	}
	m.Unresolved.Add(ctx, int64(n), metric.WithAttributes(attribute.String("model", model)))
}

// RecordError counts a failure of op with the given error kind.
func (m *Metrics) RecordError(ctx context.Context, op, kind string) {
	m.Errors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("kind", kind),
		),
	)
}
