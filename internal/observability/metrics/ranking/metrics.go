package rankingmetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RankingMetrics records instrumentation for ranking operations.
type RankingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operationName string, serviceName string)
	RecordOperationSuccess(ctx context.Context, operationName string, serviceName string)
	RecordOperationFailure(ctx context.Context, operationName string, serviceName string)
	RecordOperationDuration(ctx context.Context, operationName string, serviceName string, duration time.Duration)
	RecordPlayerSkipped(ctx context.Context, serviceName string)
	RecordBatchCompleted(ctx context.Context, serviceName string, players int)
}

// OtelMetrics implements RankingMetrics using OpenTelemetry instruments.
type OtelMetrics struct {
	operationAttempts  metric.Int64Counter
	operationSuccesses metric.Int64Counter
	operationFailures  metric.Int64Counter
	operationDuration  metric.Float64Histogram
	playersSkipped     metric.Int64Counter
	batchesCompleted   metric.Int64Counter
	batchPlayers       metric.Int64Histogram
}

// NewRankingMetrics creates the ranking instruments on the given meter.
func NewRankingMetrics(meter metric.Meter, prefix string) (*OtelMetrics, error) {
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
	playersSkipped, err := meter.Int64Counter(prefix+"players_skipped_total", metric.WithDescription("Players skipped during batch refresh due to computation failures"))
	if err != nil {
		return nil, err
	}
	batchesCompleted, err := meter.Int64Counter(prefix+"batches_completed_total", metric.WithDescription("Completed refresh batches"))
	if err != nil {
		return nil, err
	}
	batchPlayers, err := meter.Int64Histogram(prefix+"batch_players", metric.WithDescription("Players processed per batch"))
	if err != nil {
		return nil, err
	}

	return &OtelMetrics{
		operationAttempts:  operationAttempts,
		operationSuccesses: operationSuccesses,
		operationFailures:  operationFailures,
		operationDuration:  operationDuration,
		playersSkipped:     playersSkipped,
		batchesCompleted:   batchesCompleted,
		batchPlayers:       batchPlayers,
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

func (m *OtelMetrics) RecordPlayerSkipped(ctx context.Context, serviceName string) {
	m.playersSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("service", serviceName)))
}

func (m *OtelMetrics) RecordBatchCompleted(ctx context.Context, serviceName string, players int) {
	attrs := metric.WithAttributes(attribute.String("service", serviceName))
	m.batchesCompleted.Add(ctx, 1, attrs)
	m.batchPlayers.Record(ctx, int64(players), attrs)
}

// NoOpMetrics is a RankingMetrics that records nothing. Used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(ctx context.Context, operationName string, serviceName string) {
}

func (NoOpMetrics) RecordOperationSuccess(ctx context.Context, operationName string, serviceName string) {
}

func (NoOpMetrics) RecordOperationFailure(ctx context.Context, operationName string, serviceName string) {
}

func (NoOpMetrics) RecordOperationDuration(ctx context.Context, operationName string, serviceName string, duration time.Duration) {
}

func (NoOpMetrics) RecordPlayerSkipped(ctx context.Context, serviceName string) {}

func (NoOpMetrics) RecordBatchCompleted(ctx context.Context, serviceName string, players int) {}
