package qualificationdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// DifficultyDBImpl implements DifficultyRepository on bun.
type DifficultyDBImpl struct{}

var _ DifficultyRepository = (*DifficultyDBImpl)(nil)

func NewDifficultyRepository() *DifficultyDBImpl {
	return &DifficultyDBImpl{}
}

func (r *DifficultyDBImpl) Get(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*Difficulty, error) {
	difficulty := new(Difficulty)
	err := db.NewSelect().
		Model(difficulty).
		Where("d.leaderboard_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get difficulty: %w", err)
	}
	return difficulty, nil
}

func (r *DifficultyDBImpl) Update(ctx context.Context, db bun.IDB, difficulty *Difficulty) error {
	res, err := db.NewUpdate().
		Model(difficulty).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update difficulty: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
