// Package rankingrouter subscribes the ranking handlers to their topics.
package rankingrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	rankinghandlers "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/handlers"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

type RankingRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	eventBus       eventbus.EventBus
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewRankingRouter creates the router for ranking subscriptions. Prometheus
// router metrics are skipped in the test environment.
func NewRankingRouter(
	logger *slog.Logger,
	router *message.Router,
	bus eventbus.EventBus,
	prometheusRegistry *prometheus.Registry,
) *RankingRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &RankingRouter{
		logger:         logger,
		Router:         router,
		eventBus:       bus,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the middlewares and registers all ranking handlers.
func (r *RankingRouter) Configure(ctx context.Context, handlers rankinghandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.InfoContext(ctx, "Adding Prometheus router metrics middleware for Ranking")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(ctx, handlers)
}

// RegisterHandlers binds each subscribed topic to its handler. The handlers
// publish their own results through the event bus, so no publisher is wired
// into the router.
func (r *RankingRouter) RegisterHandlers(ctx context.Context, handlers rankinghandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Ranking Event Handlers")

	bindings := map[string]message.NoPublishHandlerFunc{
		rankingevents.ScoreSubmitted:             handlers.HandleScoreSubmitted,
		rankingevents.ScoreDeleted:               handlers.HandleScoreDeleted,
		rankingevents.PlayerRefreshRequested:     handlers.HandlePlayerRefreshRequested,
		rankingevents.PopulationRefreshRequested: handlers.HandlePopulationRefreshRequested,
		rankingevents.StatsRefreshRequested:      handlers.HandleStatsRefreshRequested,
		rankingevents.LeaderboardRecompute:       handlers.HandleLeaderboardRecomputeRequested,
		rankingevents.PlayersRerankRequested:     handlers.HandlePlayersRerankRequested,
		rankingevents.StandingsExportRequested:   handlers.HandleStandingsExportRequested,
	}

	for topic, handler := range bindings {
		r.Router.AddNoPublisherHandler(
			"ranking."+topic,
			topic,
			r.eventBus.Subscriber(),
			handler,
		)
	}
	return nil
}

// Close stops the router.
func (r *RankingRouter) Close() error {
	return r.Router.Close()
}
