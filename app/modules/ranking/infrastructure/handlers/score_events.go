package rankinghandlers

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// HandleScoreSubmitted refreshes the submitting player's totals after a new
// score lands.
func (h *RankingHandlers) HandleScoreSubmitted(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.ScoreSubmittedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal ScoreSubmittedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received ScoreSubmitted event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("player_id", payload.PlayerID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.RefreshPlayer(ctx, payload.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to refresh player after score submission: %w", err)
	}

	return h.publishResult(msg,
		rankingevents.PlayerRefreshed, rankingevents.PlayerRefreshFailed,
		result.Success, result.Failure,
	)
}

// HandleScoreDeleted removes the score from its leaderboard, then refreshes
// the former owner's totals so the deleted pp stops counting.
func (h *RankingHandlers) HandleScoreDeleted(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.ScoreDeletedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal ScoreDeletedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received ScoreDeleted event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("player_id", payload.PlayerID),
		attr.Int64("score_id", payload.ScoreID),
	)

	removal, err := h.service.RemoveScore(ctx, payload.ScoreID, payload.LeaderboardID)
	if err != nil {
		return fmt.Errorf("failed to remove score: %w", err)
	}
	if removal.IsFailure() {
		h.logger.WarnContext(ctx, "Score removal rejected",
			attr.String("correlation_id", correlationID),
			attr.Int64("score_id", payload.ScoreID),
			attr.Error(removal.Error),
		)
		return nil
	}

	result, err := h.service.RefreshPlayer(ctx, payload.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to refresh player after score deletion: %w", err)
	}

	return h.publishResult(msg,
		rankingevents.PlayerRefreshed, rankingevents.PlayerRefreshFailed,
		result.Success, result.Failure,
	)
}
