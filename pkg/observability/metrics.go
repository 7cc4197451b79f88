package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricQueriesTotal    = "relations_sqlite.queries.total"
	metricQueryDuration   = "relations_sqlite.query.duration.seconds"
	metricErrorsTotal     = "relations_sqlite.errors.total"
	metricQueriesInflight = "relations_sqlite.queries.inflight"

	attrOp     = "op"
	attrTable  = "table"
	attrStatus = "status"

	// StatusOK and StatusError are the status attribute values.
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries covers 100µs to 10s. Most statements hit the
// prepared-statement cache and finish well under a millisecond; the top
// buckets catch migrations and large scans.
var durationBucketBoundaries = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// QueryMetrics holds the OTel instruments for model operation metrics.
type QueryMetrics struct {
	queriesTotal    metric.Int64Counter
	queryDuration   metric.Float64Histogram
	errorsTotal     metric.Int64Counter
	queriesInflight metric.Int64UpDownCounter
}

// NewQueryMetrics creates query metric instruments from the given meter.
func NewQueryMetrics(mt metric.Meter) (*QueryMetrics, error) {
	total, err := mt.Int64Counter(metricQueriesTotal,
		metric.WithDescription("Total number of model operations"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueriesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricQueryDuration,
		metric.WithDescription("Model operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueryDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed model operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricQueriesInflight,
		metric.WithDescription("Number of in-flight model operations"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueriesInflight, err)
	}

	return &QueryMetrics{
		queriesTotal:    total,
		queryDuration:   duration,
		errorsTotal:     errTotal,
		queriesInflight: inflight,
	}, nil
}

// RecordQuery records a completed operation with its table, status, and
// duration.
func (qm *QueryMetrics) RecordQuery(ctx context.Context, op, table, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrTable, table),
		attribute.String(attrStatus, status),
	)

	qm.queriesTotal.Add(ctx, 1, attrs)
	qm.queryDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		qm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
			attribute.String(attrTable, table),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to
// decrement it.
func (qm *QueryMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	qm.queriesInflight.Add(ctx, 1, attrs)

	return func() {
		qm.queriesInflight.Add(ctx, -1, attrs)
	}
}
