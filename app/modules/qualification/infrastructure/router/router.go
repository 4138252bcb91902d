// Package qualificationrouter subscribes the qualification handlers to their
// topics.
package qualificationrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	qualificationhandlers "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/handlers"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

type QualificationRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	eventBus       eventbus.EventBus
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewQualificationRouter creates the router for qualification subscriptions.
// Prometheus router metrics are skipped in the test environment.
func NewQualificationRouter(
	logger *slog.Logger,
	router *message.Router,
	bus eventbus.EventBus,
	prometheusRegistry *prometheus.Registry,
) *QualificationRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &QualificationRouter{
		logger:         logger,
		Router:         router,
		eventBus:       bus,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the middlewares and registers all qualification handlers.
func (r *QualificationRouter) Configure(ctx context.Context, handlers qualificationhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.InfoContext(ctx, "Adding Prometheus router metrics middleware for Qualification")
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
func (r *QualificationRouter) RegisterHandlers(ctx context.Context, handlers qualificationhandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Qualification Event Handlers")

	bindings := map[string]message.NoPublishHandlerFunc{
		qualificationevents.NominateRequested:        handlers.HandleNominateRequested,
		qualificationevents.UpdateRequested:          handlers.HandleUpdateRequested,
		qualificationevents.ApproveRequested:         handlers.HandleApproveRequested,
		qualificationevents.MapperAllowRequested:     handlers.HandleMapperAllowRequested,
		qualificationevents.ReweightOpenRequested:    handlers.HandleReweightOpenRequested,
		qualificationevents.ReweightApproveRequested: handlers.HandleReweightApproveRequested,
		qualificationevents.RankSetRequested:         handlers.HandleRankSetRequested,
	}

	for topic, handler := range bindings {
		r.Router.AddNoPublisherHandler(
			"qualification."+topic,
			topic,
			r.eventBus.Subscriber(),
			handler,
		)
	}
	return nil
}

// Close stops the router.
func (r *QualificationRouter) Close() error {
	return r.Router.Close()
}
