// Package qualificationdb persists difficulties, qualifications, reweights,
// and the permanent rank-change audit.
package qualificationdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// DifficultyRepository reads and writes the moderation state of a
// leaderboard's difficulty.
type DifficultyRepository interface {
	Get(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*Difficulty, error)
	Update(ctx context.Context, db bun.IDB, difficulty *Difficulty) error
}

// QualificationRepository manages the open review records.
type QualificationRepository interface {
	// GetOpen returns the single open qualification for a leaderboard, or
	// ErrNotFound.
	GetOpen(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*Qualification, error)
	Insert(ctx context.Context, db bun.IDB, qualification *Qualification) error
	Update(ctx context.Context, db bun.IDB, qualification *Qualification) error
	// LastNomination returns when the given player last nominated any
	// difficulty sharing the content hash, or ErrNotFound.
	LastNomination(ctx context.Context, db bun.IDB, nominator sharedtypes.PlayerID, hash sharedtypes.ContentHash) (time.Time, error)
	// HasReviewerNomination reports whether any difficulty of the song has a
	// reviewer-originated qualification on record.
	HasReviewerNomination(ctx context.Context, db bun.IDB, songID sharedtypes.SongID) (bool, error)
}

// ReweightRepository manages RankUpdate records and the permanent RankChange
// audit rows.
type ReweightRepository interface {
	// GetUnfinished returns the open reweight for a leaderboard, or
	// ErrNotFound.
	GetUnfinished(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*Reweight, error)
	Insert(ctx context.Context, db bun.IDB, reweight *Reweight) error
	Update(ctx context.Context, db bun.IDB, reweight *Reweight) error
	InsertRankChange(ctx context.Context, db bun.IDB, change *RankChange) error
}
