// Package qualificationservice implements the qualification and reweight
// workflows.
package qualificationservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	qualificationmetrics "github.com/Cadence-Arcade/rankcore/internal/observability/metrics/qualification"
	"github.com/Cadence-Arcade/rankcore/internal/results"
)

// QualificationService implements the Service interface.
type QualificationService struct {
	DifficultyDB    qualificationdb.DifficultyRepository
	QualificationDB qualificationdb.QualificationRepository
	ReweightDB      qualificationdb.ReweightRepository
	db              *bun.DB
	logger          *slog.Logger
	metrics         qualificationmetrics.QualificationMetrics
	tracer          trace.Tracer

	// now is swapped out in tests to pin cooldown and audit timestamps.
	now func() time.Time

	serviceWrapper func(ctx context.Context, operationName string, serviceFunc operationFunc) (results.OperationResult, error)
}

var _ Service = (*QualificationService)(nil)

// NewQualificationService creates a new QualificationService.
func NewQualificationService(
	db *bun.DB,
	difficultyDB qualificationdb.DifficultyRepository,
	qualificationDB qualificationdb.QualificationRepository,
	reweightDB qualificationdb.ReweightRepository,
	logger *slog.Logger,
	metrics qualificationmetrics.QualificationMetrics,
	tracer trace.Tracer,
) *QualificationService {
	s := &QualificationService{
		DifficultyDB:    difficultyDB,
		QualificationDB: qualificationDB,
		ReweightDB:      reweightDB,
		db:              db,
		logger:          logger,
		metrics:         metrics,
		tracer:          tracer,
		now:             time.Now,
	}
	s.serviceWrapper = s.withTelemetry
	return s
}

// operationFunc is the signature for service operation functions.
type operationFunc func(ctx context.Context) (results.OperationResult, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery, standardizing observability across all service methods.
func (s *QualificationService) withTelemetry(ctx context.Context, operationName string, op operationFunc) (result results.OperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, "QualificationService")

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "QualificationService", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "QualificationService")
			span.RecordError(err)
			result = results.OperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, "QualificationService")
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.Any("failure_payload", result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, "QualificationService")
	}

	return result, nil
}

// runInTx runs fn inside a transaction on the service's primary connection.
// Workflow transitions on one leaderboard are serialized by the open-record
// unique indexes plus this transaction boundary.
func (s *QualificationService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// recordTransition emits the status-transition metric.
func (s *QualificationService) recordTransition(ctx context.Context, from, to string) {
	s.metrics.RecordStatusTransition(ctx, from, to)
}
