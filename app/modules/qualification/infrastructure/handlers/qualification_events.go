package qualificationhandlers

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// HandleNominateRequested opens a qualification for the requested difficulty.
func (h *QualificationHandlers) HandleNominateRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[qualificationevents.NominateRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal NominateRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received NominateRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.Nominate(ctx, payload.Caller, payload.LeaderboardID)
	if err != nil {
		return fmt.Errorf("failed to nominate difficulty: %w", err)
	}

	if err := h.publishResult(msg,
		qualificationevents.Nominated, qualificationevents.NominateFailed,
		result.Success, result.Failure,
	); err != nil {
		return err
	}

	if success, ok := result.Success.(*qualificationevents.NominatedPayload); ok {
		return h.dispatchCascade(msg, success.LeaderboardID, success.Cascade)
	}
	return nil
}

// HandleUpdateRequested applies a reviewer edit to the open qualification.
func (h *QualificationHandlers) HandleUpdateRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[qualificationevents.UpdateRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal UpdateRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received UpdateRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.UpdateQualification(ctx, payload.Caller, payload.LeaderboardID, payload.Update)
	if err != nil {
		return fmt.Errorf("failed to update qualification: %w", err)
	}

	if err := h.publishResult(msg,
		qualificationevents.Updated, qualificationevents.UpdateFailed,
		result.Success, result.Failure,
	); err != nil {
		return err
	}

	if success, ok := result.Success.(*qualificationevents.UpdatedPayload); ok {
		return h.dispatchCascade(msg, success.LeaderboardID, success.Cascade)
	}
	return nil
}

// HandleApproveRequested records an approval on the open qualification.
func (h *QualificationHandlers) HandleApproveRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[qualificationevents.ApproveRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal ApproveRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received ApproveRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.ApproveQualification(ctx, payload.Caller, payload.LeaderboardID, payload.SeenStars, payload.SeenType)
	if err != nil {
		return fmt.Errorf("failed to approve qualification: %w", err)
	}

	if err := h.publishResult(msg,
		qualificationevents.Approved, qualificationevents.ApproveFailed,
		result.Success, result.Failure,
	); err != nil {
		return err
	}

	if success, ok := result.Success.(*qualificationevents.ApprovedPayload); ok {
		return h.dispatchCascade(msg, success.LeaderboardID, success.Cascade)
	}
	return nil
}

// HandleMapperAllowRequested records the mapper's consent.
func (h *QualificationHandlers) HandleMapperAllowRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[qualificationevents.MapperAllowRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal MapperAllowRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received MapperAllowRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.LeaderboardID("leaderboard_id", payload.LeaderboardID),
	)

	result, err := h.service.AllowQualification(ctx, payload.Caller, payload.LeaderboardID)
	if err != nil {
		return fmt.Errorf("failed to record mapper consent: %w", err)
	}

	return h.publishResult(msg,
		qualificationevents.MapperAllowed, qualificationevents.MapperAllowFailed,
		result.Success, result.Failure,
	)
}
