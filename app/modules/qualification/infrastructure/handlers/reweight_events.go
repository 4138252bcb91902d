package qualificationhandlers

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	qualificationservice "github.com/Cadence-Arcade/rankcore/app/modules/qualification/application"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// HandleReweightOpenRequested opens or edits a reweight on a ranked
// difficulty.
func (h *QualificationHandlers) HandleReweightOpenRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[qualificationevents.ReweightOpenRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal ReweightOpenRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received ReweightOpenRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.OpenReweight(ctx, payload.Caller, qualificationservice.ReweightProposal{
		LeaderboardID: payload.LeaderboardID,
		Keep:          payload.Keep,
		Stars:         payload.Stars,
		Type:          payload.Type,
		Modifiers:     payload.Modifiers,
		Criteria:      payload.Criteria,
		Commentary:    payload.Commentary,
	})
	if err != nil {
		return fmt.Errorf("failed to open reweight: %w", err)
	}

	return h.publishResult(msg,
		qualificationevents.ReweightOpened, qualificationevents.ReweightOpenFailed,
		result.Success, result.Failure,
	)
}

// HandleReweightApproveRequested finalizes the open reweight.
func (h *QualificationHandlers) HandleReweightApproveRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[qualificationevents.ReweightApproveRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal ReweightApproveRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received ReweightApproveRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.ApproveReweight(ctx, payload.Caller, payload.LeaderboardID)
	if err != nil {
		return fmt.Errorf("failed to approve reweight: %w", err)
	}

	if err := h.publishResult(msg,
		qualificationevents.ReweightApproved, qualificationevents.ReweightApproveFailed,
		result.Success, result.Failure,
	); err != nil {
		return err
	}

	if success, ok := result.Success.(*qualificationevents.ReweightApprovedPayload); ok {
		return h.dispatchCascade(msg, success.LeaderboardID, success.Cascade)
	}
	return nil
}

// HandleRankSetRequested applies a direct admin rank decision.
func (h *QualificationHandlers) HandleRankSetRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[qualificationevents.RankSetRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal RankSetRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received RankSetRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.SetRankedStatus(ctx, payload.Caller, qualificationservice.RankSet{
		LeaderboardID: payload.LeaderboardID,
		Rankable:      payload.Rankable,
		Stars:         payload.Stars,
		Type:          payload.Type,
		Modifiers:     payload.Modifiers,
	})
	if err != nil {
		return fmt.Errorf("failed to set ranked status: %w", err)
	}

	if err := h.publishResult(msg,
		qualificationevents.RankSet, qualificationevents.RankSetFailed,
		result.Success, result.Failure,
	); err != nil {
		return err
	}

	if success, ok := result.Success.(*qualificationevents.RankSetPayload); ok {
		return h.dispatchCascade(msg, success.LeaderboardID, success.Cascade)
	}
	return nil
}
