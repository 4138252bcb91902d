package qualificationdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// ReweightDBImpl implements ReweightRepository on bun.
type ReweightDBImpl struct{}

var _ ReweightRepository = (*ReweightDBImpl)(nil)

func NewReweightRepository() *ReweightDBImpl {
	return &ReweightDBImpl{}
}

func (r *ReweightDBImpl) GetUnfinished(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*Reweight, error) {
	reweight := new(Reweight)
	err := db.NewSelect().
		Model(reweight).
		Where("rw.leaderboard_id = ?", leaderboardID).
		Where("rw.finished = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get unfinished reweight: %w", err)
	}
	return reweight, nil
}

func (r *ReweightDBImpl) Insert(ctx context.Context, db bun.IDB, reweight *Reweight) error {
	if _, err := db.NewInsert().Model(reweight).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert reweight: %w", err)
	}
	return nil
}

func (r *ReweightDBImpl) Update(ctx context.Context, db bun.IDB, reweight *Reweight) error {
	res, err := db.NewUpdate().
		Model(reweight).
		WherePK().
		// Finished rows are immutable.
		Where("rw.finished = ?", false).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update reweight: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *ReweightDBImpl) InsertRankChange(ctx context.Context, db bun.IDB, change *RankChange) error {
	if _, err := db.NewInsert().Model(change).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert rank change: %w", err)
	}
	return nil
}
