package rankinghandlers

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingservice "github.com/Cadence-Arcade/rankcore/app/modules/ranking/application"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// HandleStandingsExportRequested builds the standings workbook inline. The
// published event carries only the export metadata; the workbook bytes are
// returned to whoever invoked the service directly.
func (h *RankingHandlers) HandleStandingsExportRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.StandingsExportRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal StandingsExportRequestedPayload: %w", err)
	}

	ctx := attr.WithCorrelationID(msg.Context(), correlationID)
	h.logger.InfoContext(ctx, "Received StandingsExportRequested event",
		attr.String("correlation_id", correlationID),
		attr.PlayerID("caller_id", payload.Caller.ID),
		attr.Int("top", payload.Top),
	)

	result, err := h.service.ExportStandings(ctx, payload.Caller, payload.Top)
	if err != nil {
		return fmt.Errorf("failed to export standings: %w", err)
	}

	var success any
	if export, ok := result.Success.(*rankingservice.StandingsExport); ok {
		success = &rankingevents.StandingsExportedPayload{
			Rows:     export.Rows,
			Filename: export.Filename,
		}
	}

	return h.publishResult(msg,
		rankingevents.StandingsExported, rankingevents.StandingsExportFailed,
		success, result.Failure,
	)
}
