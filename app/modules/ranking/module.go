// Package ranking assembles the ranking module: service, repositories, job
// queue, handlers, and router bindings.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	rankingservice "github.com/Cadence-Arcade/rankcore/app/modules/ranking/application"
	rankinghandlers "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/handlers"
	rankingqueue "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/queue"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	rankingrouter "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/router"
	"github.com/Cadence-Arcade/rankcore/config"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	rankingmetrics "github.com/Cadence-Arcade/rankcore/internal/observability/metrics/ranking"
)

// Module represents the ranking module.
type Module struct {
	EventBus      eventbus.EventBus
	Service       rankingservice.Service
	Queue         rankingqueue.QueueService
	RankingRouter *rankingrouter.RankingRouter
	config        *config.Config
	logger        *slog.Logger
	cancelFunc    context.CancelFunc
}

// NewRankingModule wires the ranking module together. The difficulty lookup
// is owned by the qualification module and injected here.
func NewRankingModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
	db *bun.DB,
	difficulties rankingservice.DifficultyLookup,
	bus eventbus.EventBus,
	router *message.Router,
	registry *prometheus.Registry,
) (*Module, error) {
	logger.InfoContext(ctx, "ranking.NewRankingModule called")

	metrics, err := rankingmetrics.NewRankingMetrics(meter, "ranking")
	if err != nil {
		return nil, fmt.Errorf("failed to create ranking metrics: %w", err)
	}
	playerDB := rankingdb.NewPlayerRepository()
	scoreDB := rankingdb.NewScoreRepository()

	service := rankingservice.NewRankingService(db, playerDB, scoreDB, difficulties, logger, metrics, tracer, rankingservice.Config{
		BatchSize:       cfg.Engine.BatchSize,
		Workers:         cfg.Engine.Workers,
		WeightCacheSize: cfg.Engine.WeightCacheSize,
	})

	queue, err := rankingqueue.NewService(ctx, cfg.Postgres.DSN, db, service, scoreDB, bus, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create ranking queue service: %w", err)
	}

	handlers := rankinghandlers.NewRankingHandlers(service, queue, bus, logger)

	moduleRouter := rankingrouter.NewRankingRouter(logger, router, bus, registry)
	if err := moduleRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure ranking router: %w", err)
	}

	return &Module{
		EventBus:      bus,
		Service:       service,
		Queue:         queue,
		RankingRouter: moduleRouter,
		config:        cfg,
		logger:        logger,
	}, nil
}

// Run starts the job queue and keeps the module alive until the context is
// canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting ranking module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.Queue.Start(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to start ranking queue", attr.Error(err))
		return
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Ranking module goroutine stopped")
}

// Close stops the ranking module and cleans up resources.
func (m *Module) Close() error {
	m.logger.Info("Stopping ranking module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if err := m.Queue.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop ranking queue: %w", err)
	}

	m.logger.Info("Ranking module stopped")
	return nil
}
