package rankingdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// ScoreDBImpl implements ScoreRepository on bun.
type ScoreDBImpl struct{}

var _ ScoreRepository = (*ScoreDBImpl)(nil)

func NewScoreRepository() *ScoreDBImpl {
	return &ScoreDBImpl{}
}

func (r *ScoreDBImpl) ListEligibleByPlayer(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) ([]*Score, error) {
	var scores []*Score
	err := db.NewSelect().
		Model(&scores).
		Where("player_id = ?", id).
		Where("valid_for_general = ?", true).
		Where("exclude_from_stats = ?", false).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for player %s: %w", id, err)
	}
	return scores, nil
}

func (r *ScoreDBImpl) ListByLeaderboard(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]*Score, error) {
	var scores []*Score
	err := db.NewSelect().
		Model(&scores).
		Where("leaderboard_id = ?", id).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for leaderboard %s: %w", id, err)
	}
	return scores, nil
}

func (r *ScoreDBImpl) ListPlayerIDsOnLeaderboard(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]sharedtypes.PlayerID, error) {
	var ids []sharedtypes.PlayerID
	err := db.NewSelect().
		Model((*Score)(nil)).
		ColumnExpr("DISTINCT player_id").
		Where("leaderboard_id = ?", id).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list player ids for leaderboard %s: %w", id, err)
	}
	return ids, nil
}

// weightRow is the VALUES shape for the bulk weight update.
type weightRow struct {
	ID     int64   `bun:"id"`
	Weight float64 `bun:"weight"`
}

func (r *ScoreDBImpl) UpdateWeights(ctx context.Context, db bun.IDB, weights map[int64]float64) error {
	if len(weights) == 0 {
		return nil
	}

	rows := make([]weightRow, 0, len(weights))
	for id, w := range weights {
		rows = append(rows, weightRow{ID: id, Weight: w})
	}

	values := db.NewValues(&rows)
	_, err := db.NewUpdate().
		With("_data", values).
		Model((*Score)(nil)).
		TableExpr("_data").
		Set("weight = _data.weight").
		Where("s.id = _data.id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to bulk update score weights: %w", err)
	}
	return nil
}

// ppRow is the VALUES shape for the bulk pp rewrite after a leaderboard
// recompute.
type ppRow struct {
	ID            int64   `bun:"id"`
	Pp            float64 `bun:"pp"`
	AccPp         float64 `bun:"acc_pp"`
	PassPp        float64 `bun:"pass_pp"`
	TechPp        float64 `bun:"tech_pp"`
	BonusPp       float64 `bun:"bonus_pp"`
	Rank          int     `bun:"rank"`
	Qualification bool    `bun:"qualification"`
}

func (r *ScoreDBImpl) BulkUpdatePp(ctx context.Context, db bun.IDB, scores []*Score) error {
	if len(scores) == 0 {
		return nil
	}

	rows := make([]ppRow, len(scores))
	for i, s := range scores {
		rows[i] = ppRow{
			ID:            s.ID,
			Pp:            s.Pp,
			AccPp:         s.AccPp,
			PassPp:        s.PassPp,
			TechPp:        s.TechPp,
			BonusPp:       s.BonusPp,
			Rank:          s.Rank,
			Qualification: s.Qualification,
		}
	}

	values := db.NewValues(&rows)
	_, err := db.NewUpdate().
		With("_data", values).
		Model((*Score)(nil)).
		TableExpr("_data").
		Set("pp = _data.pp").
		Set("acc_pp = _data.acc_pp").
		Set("pass_pp = _data.pass_pp").
		Set("tech_pp = _data.tech_pp").
		Set("bonus_pp = _data.bonus_pp").
		Set("rank = _data.rank").
		Set("qualification = _data.qualification").
		Where("s.id = _data.id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to bulk update score pp: %w", err)
	}
	return nil
}

func (r *ScoreDBImpl) Delete(ctx context.Context, db bun.IDB, scoreID int64) error {
	res, err := db.NewDelete().
		Model((*Score)(nil)).
		Where("id = ?", scoreID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete score %d: %w", scoreID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
