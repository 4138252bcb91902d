package rankinghandlers

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	rankingqueue "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/queue"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// HandleLeaderboardRecomputeRequested schedules a durable pp recompute for
// one leaderboard. Duplicate requests for the same board collapse into a
// single pending job.
func (h *RankingHandlers) HandleLeaderboardRecomputeRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.LeaderboardRecomputePayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal LeaderboardRecomputePayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received LeaderboardRecompute event",
		attr.String("correlation_id", correlationID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
		attr.Bool("rerank", payload.Rerank),
	)

	if err := h.queue.EnqueueLeaderboardRecompute(ctx, rankingqueue.LeaderboardRecomputeJob{
		LeaderboardID: payload.LeaderboardID,
		Rerank:        payload.Rerank,
	}); err != nil {
		return fmt.Errorf("failed to enqueue leaderboard recompute: %w", err)
	}
	return nil
}
