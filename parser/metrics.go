package parser

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricParseTotal      = "zcss.parse.total"
	metricParseErrors     = "zcss.parse.errors.total"
	metricParseDuration   = "zcss.parse.duration.seconds"
	metricParseInputBytes = "zcss.parse.input.bytes"

	attrContext = "context"
)

// durationBucketBoundaries covers 10µs to 5s.
var durationBucketBoundaries = []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// sizeBucketBoundaries covers 1KiB to 16MiB.
var sizeBucketBoundaries = []float64{1 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 16 << 20}

// Metrics holds OTel instruments for parse calls.
type Metrics struct {
	total      metric.Int64Counter
	errors     metric.Int64Counter
	duration   metric.Float64Histogram
	inputBytes metric.Float64Histogram
}

// NewMetrics creates parser metric instruments from the given meter.
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	b := &metricBuilder{meter: mt}

	m := &Metrics{
		total:      b.counter(metricParseTotal, "Total parse calls", "{parse}"),
		errors:     b.counter(metricParseErrors, "Parse calls that returned an error", "{parse}"),
		duration:   b.histogram(metricParseDuration, "Parse duration in seconds", "s", durationBucketBoundaries...),
		inputBytes: b.histogram(metricParseInputBytes, "Parsed input size in bytes", "By", sizeBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return m, nil
}

// record records a completed parse call. Safe to call on a nil receiver.
// A negative size means the input size is unknown.
func (m *Metrics) record(ctx context.Context, kind string, size int, d time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrContext, kind))
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
	if size >= 0 {
		m.inputBytes.Record(ctx, float64(size), attrs)
	}
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// metricBuilder accumulates instrument creation errors so that a set of
// instruments needs a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	}

	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := b.meter.Float64Histogram(name, opts...)
	b.setErr(name, err)

	return h
}

// setErr records the first instrument creation error.
func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}
