package rankinghandlers

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	rankingqueue "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/queue"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// HandlePlayerRefreshRequested recomputes one player inline and publishes the
// outcome.
func (h *RankingHandlers) HandlePlayerRefreshRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.PlayerRefreshRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal PlayerRefreshRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received PlayerRefreshRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("player_id", payload.PlayerID),
	)

	result, err := h.service.RefreshPlayer(ctx, payload.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to refresh player: %w", err)
	}

	return h.publishResult(msg,
		rankingevents.PlayerRefreshed, rankingevents.PlayerRefreshFailed,
		result.Success, result.Failure,
	)
}

// HandlePopulationRefreshRequested checks the caller's role and schedules a
// durable population refresh. The refresh itself runs on the job queue; the
// completion event is published by the worker.
func (h *RankingHandlers) HandlePopulationRefreshRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.PopulationRefreshRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal PopulationRefreshRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received PopulationRefreshRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.Bool("stats_only", payload.StatsOnly),
	)

	if !payload.Caller.IsReviewer() {
		return h.publishResult(msg,
			"", rankingevents.PopulationRefreshFailed,
			nil, &rankingevents.PopulationRefreshFailedPayload{Reason: "caller is not a reviewer"},
		)
	}

	if err := h.queue.EnqueuePopulationRefresh(ctx, rankingqueue.PopulationRefreshJob{
		StatsOnly: payload.StatsOnly,
	}); err != nil {
		return fmt.Errorf("failed to enqueue population refresh: %w", err)
	}
	return nil
}

// HandleStatsRefreshRequested schedules a stats-only refresh. Snapshots are
// rebuilt; pp and rank stay untouched.
func (h *RankingHandlers) HandleStatsRefreshRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.StatsRefreshRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal StatsRefreshRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received StatsRefreshRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
	)

	if !payload.Caller.IsReviewer() {
		return h.publishResult(msg,
			"", rankingevents.PopulationRefreshFailed,
			nil, &rankingevents.PopulationRefreshFailedPayload{Reason: "caller is not a reviewer"},
		)
	}

	if err := h.queue.EnqueuePopulationRefresh(ctx, rankingqueue.PopulationRefreshJob{
		StatsOnly: true,
	}); err != nil {
		return fmt.Errorf("failed to enqueue stats refresh: %w", err)
	}
	return nil
}

// HandlePlayersRerankRequested schedules a bounded refresh plus a full rank
// pass for the named players.
func (h *RankingHandlers) HandlePlayersRerankRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.PlayersRerankRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal PlayersRerankRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received PlayersRerankRequested event",
		attr.String("correlation_id", correlationID),
		attr.Int("players", len(payload.PlayerIDs)),
	)

	if len(payload.PlayerIDs) == 0 {
		return nil
	}

	if err := h.queue.EnqueuePopulationRerank(ctx, rankingqueue.PopulationRerankJob{
		PlayerIDs: payload.PlayerIDs,
	}); err != nil {
		return fmt.Errorf("failed to enqueue population re-rank: %w", err)
	}
	return nil
}
