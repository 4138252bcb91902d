package qualificationmetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QualificationMetrics records instrumentation for qualification and reweight
// workflow operations.
type QualificationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operationName string, serviceName string)
	RecordOperationSuccess(ctx context.Context, operationName string, serviceName string)
	RecordOperationFailure(ctx context.Context, operationName string, serviceName string)
	RecordOperationDuration(ctx context.Context, operationName string, serviceName string, duration time.Duration)
	RecordStatusTransition(ctx context.Context, from string, to string)
}

// OtelMetrics implements QualificationMetrics using OpenTelemetry instruments.
type OtelMetrics struct {
	operationAttempts  metric.Int64Counter
	operationSuccesses metric.Int64Counter
	operationFailures  metric.Int64Counter
	operationDuration  metric.Float64Histogram
	statusTransitions  metric.Int64Counter
}

// NewQualificationMetrics creates the qualification instruments on the given meter.
func NewQualificationMetrics(meter metric.Meter, prefix string) (*OtelMetrics, error) {
	if prefix != "" {
		prefix += "_"
	}

	operationAttempts, err := meter.Int64Counter(prefix+"operation_attempts_total", metric.WithDescription("Number of operation attempts"))
	if err != nil {
		return nil, err
	}
	operationSuccesses, err := meter.Int64Counter(prefix+"operation_successes_total", metric.WithDescription("Number of successful operations"))
	if err != nil {
		return nil, err
	}
	operationFailures, err := meter.Int64Counter(prefix+"operation_failures_total", metric.WithDescription("Number of failed operations"))
	if err != nil {
		return nil, err
	}
	operationDuration, err := meter.Float64Histogram(prefix+"operation_duration_seconds", metric.WithDescription("Duration of operations in seconds"))
	if err != nil {
		return nil, err
	}
	statusTransitions, err := meter.Int64Counter(prefix+"status_transitions_total", metric.WithDescription("Difficulty status transitions"))
	if err != nil {
		return nil, err
	}

	return &OtelMetrics{
		operationAttempts:  operationAttempts,
		operationSuccesses: operationSuccesses,
		operationFailures:  operationFailures,
		operationDuration:  operationDuration,
		statusTransitions:  statusTransitions,
	}, nil
}

func operationAttrs(operationName, serviceName string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("service", serviceName),
	)
}

func (m *OtelMetrics) RecordOperationAttempt(ctx context.Context, operationName string, serviceName string) {
	m.operationAttempts.Add(ctx, 1, operationAttrs(operationName, serviceName))
}

func (m *OtelMetrics) RecordOperationSuccess(ctx context.Context, operationName string, serviceName string) {
	m.operationSuccesses.Add(ctx, 1, operationAttrs(operationName, serviceName))
}

func (m *OtelMetrics) RecordOperationFailure(ctx context.Context, operationName string, serviceName string) {
	m.operationFailures.Add(ctx, 1, operationAttrs(operationName, serviceName))
}

func (m *OtelMetrics) RecordOperationDuration(ctx context.Context, operationName string, serviceName string, duration time.Duration) {
	m.operationDuration.Record(ctx, duration.Seconds(), operationAttrs(operationName, serviceName))
}

func (m *OtelMetrics) RecordStatusTransition(ctx context.Context, from string, to string) {
	m.statusTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// NoOpMetrics is a QualificationMetrics that records nothing. Used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(ctx context.Context, operationName string, serviceName string) {
}

func (NoOpMetrics) RecordOperationSuccess(ctx context.Context, operationName string, serviceName string) {
}

func (NoOpMetrics) RecordOperationFailure(ctx context.Context, operationName string, serviceName string) {
}

func (NoOpMetrics) RecordOperationDuration(ctx context.Context, operationName string, serviceName string, duration time.Duration) {
}

func (NoOpMetrics) RecordStatusTransition(ctx context.Context, from string, to string) {}
