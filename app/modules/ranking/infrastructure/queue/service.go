package rankingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	rankingservice "github.com/Cadence-Arcade/rankcore/app/modules/ranking/application"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
)

const rankingQueueName = "ranking"

// Metrics is the slice of instrumentation the queue service needs.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService is the contract for durable ranking job scheduling. The
// cascading side effects of a status change ride on it: they may run after
// the triggering request completes, but they are never best-effort.
type QueueService interface {
	EnqueueLeaderboardRecompute(ctx context.Context, job LeaderboardRecomputeJob) error
	EnqueuePopulationRefresh(ctx context.Context, job PopulationRefreshJob) error
	EnqueuePopulationRerank(ctx context.Context, job PopulationRerankJob) error
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service schedules ranking jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics Metrics
}

// NewService creates a River-backed queue service for ranking jobs. River
// needs its own pgx pool; the bun connection is only shared with the workers
// for reads.
func NewService(
	ctx context.Context,
	dsn string,
	bunDB *bun.DB,
	rankingSvc rankingservice.Service,
	scoreDB rankingdb.ScoreRepository,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics Metrics,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewLeaderboardRecomputeWorker(rankingSvc, scoreDB, bunDB, bus, ctxLogger))
	river.AddWorker(workers, NewPopulationRefreshWorker(rankingSvc, bus, ctxLogger))
	river.AddWorker(workers, NewPopulationRerankWorker(rankingSvc, bus, ctxLogger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			// Population jobs are heavyweight; one at a time keeps the
			// rank pass serialized.
			rankingQueueName: {MaxWorkers: 1},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.InfoContext(ctx, "Ranking queue service initialized")
	return service, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.logger.InfoContext(ctx, "Ranking queue service started")
	return nil
}

// Stop drains and stops the River client, then closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.logger.InfoContext(ctx, "Ranking queue service stopped")
	return nil
}

// HealthCheck verifies the backing pool is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnqueueLeaderboardRecompute schedules a pp recompute for one leaderboard.
// Duplicate submissions for the same leaderboard collapse into one pending
// job.
func (s *Service) EnqueueLeaderboardRecompute(ctx context.Context, job LeaderboardRecomputeJob) error {
	return s.insert(ctx, "enqueue_leaderboard_recompute", job, &river.InsertOpts{
		Queue:      rankingQueueName,
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	})
}

// EnqueuePopulationRefresh schedules a full population refresh.
func (s *Service) EnqueuePopulationRefresh(ctx context.Context, job PopulationRefreshJob) error {
	return s.insert(ctx, "enqueue_population_refresh", job, &river.InsertOpts{
		Queue:      rankingQueueName,
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	})
}

// EnqueuePopulationRerank schedules a bounded refresh plus full rank pass.
func (s *Service) EnqueuePopulationRerank(ctx context.Context, job PopulationRerankJob) error {
	return s.insert(ctx, "enqueue_population_rerank", job, &river.InsertOpts{
		Queue: rankingQueueName,
	})
}

func (s *Service) insert(ctx context.Context, operation string, args river.JobArgs, opts *river.InsertOpts) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, "river")

	result, err := s.client.Insert(ctx, args, opts)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue job",
			attr.String("operation", operation),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operation, "river")
		return fmt.Errorf("failed to enqueue %s: %w", args.Kind(), err)
	}

	s.metrics.RecordOperationSuccess(ctx, operation, "river")
	s.metrics.RecordOperationDuration(ctx, operation, "river", time.Since(start))

	s.logger.InfoContext(ctx, "Job enqueued",
		attr.String("kind", args.Kind()),
		attr.Int64("job_id", result.Job.ID),
	)
	return nil
}
