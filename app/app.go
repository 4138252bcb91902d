// Package app assembles the engine: database, event bus, watermill router,
// and the ranking and qualification modules.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	"github.com/Cadence-Arcade/rankcore/app/modules/qualification"
	"github.com/Cadence-Arcade/rankcore/app/modules/ranking"
	"github.com/Cadence-Arcade/rankcore/config"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
)

// App is the assembled engine.
type App struct {
	Config              *config.Config
	Logger              *slog.Logger
	DB                  *bun.DB
	EventBus            eventbus.EventBus
	Router              *message.Router
	RankingModule       *ranking.Module
	QualificationModule *qualification.Module

	registry  *prometheus.Registry
	opsServer *http.Server
}

// NewApp wires everything together. The qualification module is built first
// so its difficulty lookup can be handed to the ranking module.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.InfoContext(ctx, "Initializing application")

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	if err := createStreams(ctx, bus); err != nil {
		bus.Close()
		db.Close()
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	meter := otel.GetMeterProvider().Meter("rankcore")
	tracer := otel.GetTracerProvider().Tracer("rankcore")

	qualificationModule, err := qualification.NewQualificationModule(ctx, cfg, logger, meter, tracer, db, bus, router, registry)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create qualification module: %w", err)
	}

	rankingModule, err := ranking.NewRankingModule(ctx, cfg, logger, meter, tracer, db, qualificationModule.DifficultyLookup, bus, router, registry)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create ranking module: %w", err)
	}

	return &App{
		Config:              cfg,
		Logger:              logger,
		DB:                  db,
		EventBus:            bus,
		Router:              router,
		RankingModule:       rankingModule,
		QualificationModule: qualificationModule,
		registry:            registry,
	}, nil
}

// createStreams ensures the JetStream streams backing the engine's topics
// exist before any subscription starts.
func createStreams(ctx context.Context, bus eventbus.EventBus) error {
	streams := map[string][]string{
		"ranking":       {"ranking.>"},
		"qualification": {"qualification.>"},
		"playlist":      {"playlist.>"},
	}
	for name, subjects := range streams {
		if err := bus.CreateStream(ctx, name, subjects...); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
	}
	return nil
}

// Run starts the modules, the ops listener, and the watermill router, then
// blocks until the context is canceled or the router stops.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go a.RankingModule.Run(ctx, &wg)
	go a.QualificationModule.Run(ctx, &wg)

	a.startOpsServer()

	a.Logger.InfoContext(ctx, "Starting watermill router")
	if err := a.Router.Run(ctx); err != nil {
		cancel()
		wg.Wait()
		return fmt.Errorf("watermill router stopped: %w", err)
	}

	cancel()
	wg.Wait()
	return nil
}

// startOpsServer serves /healthz and /metrics on the configured address.
func (a *App) startOpsServer() {
	addr := a.Config.Observability.MetricsAddress
	if addr == "" {
		return
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := a.DB.PingContext(req.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.opsServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.Logger.Info("Ops listener started", attr.String("address", addr))
		if err := a.opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("Ops listener failed", attr.Error(err))
		}
	}()
}

// Close shuts the application down in reverse dependency order.
func (a *App) Close() error {
	a.Logger.Info("Shutting down application")

	if a.opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.opsServer.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("Failed to shut down ops listener", attr.Error(err))
		}
	}

	if err := a.RankingModule.Close(); err != nil {
		a.Logger.Error("Failed to close ranking module", attr.Error(err))
	}
	if err := a.QualificationModule.Close(); err != nil {
		a.Logger.Error("Failed to close qualification module", attr.Error(err))
	}

	if err := a.Router.Close(); err != nil {
		a.Logger.Error("Failed to close watermill router", attr.Error(err))
	}
	if err := a.EventBus.Close(); err != nil {
		a.Logger.Error("Failed to close event bus", attr.Error(err))
	}
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	a.Logger.Info("Application shut down")
	return nil
}
