// Package qualification assembles the qualification module: workflows,
// repositories, handlers, playlist notifier, and router bindings.
package qualification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	qualificationservice "github.com/Cadence-Arcade/rankcore/app/modules/qualification/application"
	qualificationhandlers "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/handlers"
	qualificationlookup "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/lookup"
	"github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/playlist"
	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
	qualificationrouter "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/router"
	"github.com/Cadence-Arcade/rankcore/config"
	qualificationmetrics "github.com/Cadence-Arcade/rankcore/internal/observability/metrics/qualification"
)

// Module represents the qualification module.
type Module struct {
	EventBus            eventbus.EventBus
	Service             qualificationservice.Service
	DifficultyLookup    *qualificationlookup.DifficultyLookup
	QualificationRouter *qualificationrouter.QualificationRouter
	config              *config.Config
	logger              *slog.Logger
	cancelFunc          context.CancelFunc
}

// NewQualificationModule wires the qualification module together. The
// returned module exposes the difficulty lookup the ranking module reads
// through.
func NewQualificationModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
	db *bun.DB,
	bus eventbus.EventBus,
	router *message.Router,
	registry *prometheus.Registry,
) (*Module, error) {
	logger.InfoContext(ctx, "qualification.NewQualificationModule called")

	metrics, err := qualificationmetrics.NewQualificationMetrics(meter, "qualification")
	if err != nil {
		return nil, fmt.Errorf("failed to create qualification metrics: %w", err)
	}
	difficultyDB := qualificationdb.NewDifficultyRepository()
	qualificationDB := qualificationdb.NewQualificationRepository()
	reweightDB := qualificationdb.NewReweightRepository()

	service := qualificationservice.NewQualificationService(db, difficultyDB, qualificationDB, reweightDB, logger, metrics, tracer)

	window := time.Duration(float64(time.Second) / cfg.Engine.PlaylistRefreshPerSecond)
	notifier := playlist.NewNotifier(bus, logger, window)

	handlers := qualificationhandlers.NewQualificationHandlers(service, bus, notifier, logger)

	moduleRouter := qualificationrouter.NewQualificationRouter(logger, router, bus, registry)
	if err := moduleRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure qualification router: %w", err)
	}

	return &Module{
		EventBus:            bus,
		Service:             service,
		DifficultyLookup:    qualificationlookup.NewDifficultyLookup(db, difficultyDB),
		QualificationRouter: moduleRouter,
		config:              cfg,
		logger:              logger,
	}, nil
}

// Run keeps the module alive until the context is canceled. The router the
// module registered on is run by the application.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting qualification module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Qualification module goroutine stopped")
}

// Close stops the qualification module.
func (m *Module) Close() error {
	m.logger.Info("Stopping qualification module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Qualification module stopped")
	return nil
}
