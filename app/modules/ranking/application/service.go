package rankingservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	rankingmetrics "github.com/Cadence-Arcade/rankcore/internal/observability/metrics/ranking"
	"github.com/Cadence-Arcade/rankcore/internal/results"
)

// Config tunes the batch pipeline and the weight curves.
type Config struct {
	// BatchSize is how many players one refresh batch covers.
	BatchSize int
	// Workers bounds how many batches run concurrently.
	Workers int
	// WeightCacheSize is the precomputed index range of each weight curve.
	WeightCacheSize int
	// PpCalculator converts ratings into score pp during leaderboard
	// recomputes. Defaults to rankingdomain.DefaultPpCalculator.
	PpCalculator rankingdomain.PpCalculator
	// RankScoreCurve converts a leaderboard rank into a top-1 equivalent
	// score for the stats aggregate. Optional.
	RankScoreCurve rankingdomain.RankScoreCurve
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 5000
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.WeightCacheSize <= 0 {
		c.WeightCacheSize = 10000
	}
	if c.PpCalculator == nil {
		c.PpCalculator = rankingdomain.DefaultPpCalculator
	}
}

// RankingService implements the Service interface.
type RankingService struct {
	PlayerDB     rankingdb.PlayerRepository
	ScoreDB      rankingdb.ScoreRepository
	db           *bun.DB
	difficulties DifficultyLookup
	logger       *slog.Logger
	metrics      rankingmetrics.RankingMetrics
	tracer       trace.Tracer

	curves    *rankingdomain.Curves
	ppCalc    rankingdomain.PpCalculator
	rankCurve rankingdomain.RankScoreCurve
	batchSize int
	workers   int

	serviceWrapper func(ctx context.Context, operationName string, serviceFunc operationFunc) (results.OperationResult, error)
}

var _ Service = (*RankingService)(nil)

// NewRankingService creates a new RankingService.
func NewRankingService(
	db *bun.DB,
	playerDB rankingdb.PlayerRepository,
	scoreDB rankingdb.ScoreRepository,
	difficulties DifficultyLookup,
	logger *slog.Logger,
	metrics rankingmetrics.RankingMetrics,
	tracer trace.Tracer,
	cfg Config,
) *RankingService {
	cfg.applyDefaults()

	s := &RankingService{
		PlayerDB:     playerDB,
		ScoreDB:      scoreDB,
		db:           db,
		difficulties: difficulties,
		logger:       logger,
		metrics:      metrics,
		tracer:       tracer,
		curves:       rankingdomain.NewCurves(cfg.WeightCacheSize),
		ppCalc:       cfg.PpCalculator,
		rankCurve:    cfg.RankScoreCurve,
		batchSize:    cfg.BatchSize,
		workers:      cfg.Workers,
	}
	s.serviceWrapper = s.withTelemetry
	return s
}

// operationFunc is the signature for service operation functions.
type operationFunc func(ctx context.Context) (results.OperationResult, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery, standardizing observability across all service methods.
func (s *RankingService) withTelemetry(ctx context.Context, operationName string, op operationFunc) (result results.OperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, "RankingService")

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "RankingService", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "RankingService")
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
		s.metrics.RecordOperationFailure(ctx, operationName, "RankingService")
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
		s.metrics.RecordOperationSuccess(ctx, operationName, "RankingService")
	}

	return result, nil
}

// runInTx runs fn inside a transaction on the service's primary connection.
func (s *RankingService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
