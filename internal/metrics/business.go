package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// validityBuckets spans one minute (health check) to seven days (maximum validity).
var validityBuckets = []float64{60, 300, 3600, 21600, 43200, 86400, 259200, 604800}

// BusinessMetrics defines the interface for recording business operation metrics.
type BusinessMetrics interface {
	// RecordOperation records a business operation with its status.
	// Domain example: "usersig"
	// Operation examples: "usersig_issue", "usersig_verify", "issuance_clean"
	// Status examples: "success", "error", "invalid"
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of a business operation with its status.
	// Duration is recorded in seconds as a histogram for percentile calculations.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordIssuance records the validity window of an issued credential by kind
	// ("user" or "agent").
	RecordIssuance(ctx context.Context, kind string, validity time.Duration)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	validityHisto    metric.Float64Histogram
}

// NewBusinessMetrics creates a BusinessMetrics using the provided meter provider.
// The namespace parameter prefixes all metric names (e.g., "rtcauth").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	validityHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_usersig_validity_seconds", namespace),
		metric.WithDescription("Validity window of issued UserSigs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(validityBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create validity histogram: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		validityHisto:    validityHisto,
	}, nil
}

// RecordOperation increments the operation counter with domain, operation, and status labels.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1, metric.WithAttributes(operationAttrs(domain, operation, status)...))
}

// RecordDuration records the operation duration in seconds with domain, operation, and status labels.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(operationAttrs(domain, operation, status)...),
	)
}

// RecordIssuance records the credential validity with a kind label.
func (b *businessMetrics) RecordIssuance(ctx context.Context, kind string, validity time.Duration) {
	b.validityHisto.Record(ctx, validity.Seconds(),
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

func operationAttrs(domain, operation, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	}
}

// NoOpBusinessMetrics is a no-op implementation of BusinessMetrics for when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordIssuance does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordIssuance(ctx context.Context, kind string, validity time.Duration) {}
