package qualificationdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// QualificationDBImpl implements QualificationRepository on bun.
type QualificationDBImpl struct{}

var _ QualificationRepository = (*QualificationDBImpl)(nil)

func NewQualificationRepository() *QualificationDBImpl {
	return &QualificationDBImpl{}
}

func (r *QualificationDBImpl) GetOpen(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*Qualification, error) {
	qualification := new(Qualification)
	err := db.NewSelect().
		Model(qualification).
		Where("q.leaderboard_id = ?", leaderboardID).
		Where("q.open = ?", true).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get open qualification: %w", err)
	}
	return qualification, nil
}

func (r *QualificationDBImpl) Insert(ctx context.Context, db bun.IDB, qualification *Qualification) error {
	if _, err := db.NewInsert().Model(qualification).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert qualification: %w", err)
	}
	return nil
}

func (r *QualificationDBImpl) Update(ctx context.Context, db bun.IDB, qualification *Qualification) error {
	res, err := db.NewUpdate().
		Model(qualification).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update qualification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *QualificationDBImpl) LastNomination(ctx context.Context, db bun.IDB, nominator sharedtypes.PlayerID, hash sharedtypes.ContentHash) (time.Time, error) {
	var nominatedAt time.Time
	err := db.NewSelect().
		Model((*Qualification)(nil)).
		Column("q.nominated_at").
		Join("JOIN leaderboard_difficulties AS d ON d.leaderboard_id = q.leaderboard_id").
		Where("q.nominator = ?", nominator).
		Where("d.content_hash = ?", hash).
		Order("q.nominated_at DESC").
		Limit(1).
		Scan(ctx, &nominatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to find last nomination: %w", err)
	}
	return nominatedAt, nil
}

// reviewerNominationQuery matches live reviewer nominations for a song.
// Closed rows stay for history and must not block mapper self-nomination.
func (r *QualificationDBImpl) reviewerNominationQuery(db bun.IDB, songID sharedtypes.SongID) *bun.SelectQuery {
	return db.NewSelect().
		Model((*Qualification)(nil)).
		Join("JOIN leaderboard_difficulties AS d ON d.leaderboard_id = q.leaderboard_id").
		Where("d.song_id = ?", songID).
		Where("q.self_nomination = ?", false).
		Where("q.open = ?", true)
}

func (r *QualificationDBImpl) HasReviewerNomination(ctx context.Context, db bun.IDB, songID sharedtypes.SongID) (bool, error) {
	exists, err := r.reviewerNominationQuery(db, songID).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check reviewer nominations for song: %w", err)
	}
	return exists, nil
}
