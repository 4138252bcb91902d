// Package qualificationhandlers binds the qualification command topics to
// the workflow service and fans out the resulting cascades.
package qualificationhandlers

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	qualificationservice "github.com/Cadence-Arcade/rankcore/app/modules/qualification/application"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Handlers is the set of subscriptions the qualification module serves.
type Handlers interface {
	HandleNominateRequested(msg *message.Message) error
	HandleUpdateRequested(msg *message.Message) error
	HandleApproveRequested(msg *message.Message) error
	HandleMapperAllowRequested(msg *message.Message) error
	HandleReweightOpenRequested(msg *message.Message) error
	HandleReweightApproveRequested(msg *message.Message) error
	HandleRankSetRequested(msg *message.Message) error
}

// PlaylistNotifier throttles playlist refresh notifications.
type PlaylistNotifier interface {
	Notify(topic string, origin *message.Message) error
}

// QualificationHandlers handles qualification-related events.
type QualificationHandlers struct {
	service   qualificationservice.Service
	eventBus  eventbus.EventBus
	playlists PlaylistNotifier
	logger    *slog.Logger
}

// NewQualificationHandlers creates a new instance of QualificationHandlers.
func NewQualificationHandlers(service qualificationservice.Service, bus eventbus.EventBus, playlists PlaylistNotifier, logger *slog.Logger) Handlers {
	return &QualificationHandlers{
		service:   service,
		eventBus:  bus,
		playlists: playlists,
		logger:    logger,
	}
}

// publishResult sends the success or failure side of an operation result to
// the matching topic, propagating the correlation ID of the inbound message.
func (h *QualificationHandlers) publishResult(msg *message.Message, successTopic, failureTopic string, success, failure any) error {
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

// dispatchCascade fans a mutation's side effects out as events. The ranking
// module owns the actual recompute and re-rank work; playlist refreshes go
// through the rate-limited notifier.
func (h *QualificationHandlers) dispatchCascade(msg *message.Message, leaderboardID sharedtypes.LeaderboardID, cascade qualificationevents.Cascade) error {
	if cascade.RecomputeLeaderboard {
		out, err := eventutil.NewMessage(watermill.NewUUID(), &rankingevents.LeaderboardRecomputePayload{
			LeaderboardID: leaderboardID,
			Rerank:        cascade.RerankPopulation,
		}, msg)
		if err != nil {
			return err
		}
		if err := h.eventBus.Publish(rankingevents.LeaderboardRecompute, out); err != nil {
			return err
		}
	}

	for _, topic := range cascade.PlaylistRefreshes {
		if err := h.playlists.Notify(topic, msg); err != nil {
			h.logger.Error("Failed to notify playlist refresh",
				attr.String("topic", topic),
				attr.Error(err),
			)
			return err
		}
	}
	return nil
}
