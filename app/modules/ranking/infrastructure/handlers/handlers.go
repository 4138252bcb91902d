// Package rankinghandlers binds ranking topics to the application service
// and the durable job queue.
package rankinghandlers

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	rankingservice "github.com/Cadence-Arcade/rankcore/app/modules/ranking/application"
	rankingqueue "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/queue"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// Handlers is the set of subscriptions the ranking module serves.
type Handlers interface {
	HandleScoreSubmitted(msg *message.Message) error
	HandleScoreDeleted(msg *message.Message) error
	HandlePlayerRefreshRequested(msg *message.Message) error
	HandlePopulationRefreshRequested(msg *message.Message) error
	HandleStatsRefreshRequested(msg *message.Message) error
	HandleLeaderboardRecomputeRequested(msg *message.Message) error
	HandlePlayersRerankRequested(msg *message.Message) error
	HandleStandingsExportRequested(msg *message.Message) error
}

// RankingHandlers handles ranking-related events.
type RankingHandlers struct {
	service  rankingservice.Service
	queue    rankingqueue.QueueService
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

// NewRankingHandlers creates a new instance of RankingHandlers.
func NewRankingHandlers(service rankingservice.Service, queue rankingqueue.QueueService, bus eventbus.EventBus, logger *slog.Logger) Handlers {
	return &RankingHandlers{
		service:  service,
		queue:    queue,
		eventBus: bus,
		logger:   logger,
	}
}

// publishResult sends the success or failure side of an operation result to
// the matching topic, propagating the correlation ID of the inbound message.
func (h *RankingHandlers) publishResult(msg *message.Message, successTopic, failureTopic string, success, failure any) error {
	topic := successTopic
	payload := success
	if success == nil {
		topic = failureTopic
		payload = failure
	}
	if payload == nil {
		return nil
	}

	out, err := eventutil.NewMessage(watermill.NewUUID(), payload, msg)
	if err != nil {
		return err
	}
	return h.eventBus.Publish(topic, out)
}
