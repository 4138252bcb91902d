package rankingservice

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

const (
	defaultExportTop = 100
	maxExportTop     = 10000

	exportSheet = "Standings"
)

// StandingsExport is the rendered spreadsheet handed back to the caller.
type StandingsExport struct {
	Filename string
	Rows     int
	Data     []byte
}

// ExportStandings renders the top of the global standings as an xlsx
// workbook. Restricted to ranking-team callers.
func (s *RankingService) ExportStandings(ctx context.Context, caller sharedtypes.Caller, top int) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "ExportStandings", func(ctx context.Context) (results.OperationResult, error) {
		if !caller.IsReviewer() {
			return results.FailureResult(&rankingevents.StandingsExportFailedPayload{
				Reason: "caller may not export standings",
			}, ErrUnauthorized), nil
		}

		if top <= 0 {
			top = defaultExportTop
		}
		if top > maxExportTop {
			top = maxExportTop
		}

		players, err := s.PlayerDB.TopPlayers(ctx, s.db, top)
		if err != nil {
			return results.FailureResult(&rankingevents.StandingsExportFailedPayload{
				Reason: "failed to load standings",
			}, err), err
		}

		f := excelize.NewFile()
		defer f.Close()

		if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
			return results.FailureResult(&rankingevents.StandingsExportFailedPayload{
				Reason: "failed to build workbook",
			}, err), err
		}

		headers := []string{"Rank", "Player", "Country", "Country Rank", "PP", "Acc PP", "Pass PP", "Tech PP"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(exportSheet, cell, h); err != nil {
				return results.FailureResult(&rankingevents.StandingsExportFailedPayload{
					Reason: "failed to build workbook",
				}, err), err
			}
		}

		for row, p := range players {
			values := []any{p.Rank, p.ID.String(), string(p.Country), p.CountryRank, p.Pp, p.AccPp, p.PassPp, p.TechPp}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				if err := f.SetCellValue(exportSheet, cell, v); err != nil {
					return results.FailureResult(&rankingevents.StandingsExportFailedPayload{
						Reason: "failed to build workbook",
					}, err), err
				}
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return results.FailureResult(&rankingevents.StandingsExportFailedPayload{
				Reason: "failed to serialize workbook",
			}, err), err
		}

		return results.SuccessResult(&StandingsExport{
			Filename: fmt.Sprintf("standings-top%d.xlsx", top),
			Rows:     len(players),
			Data:     buf.Bytes(),
		}), nil
	})
}
