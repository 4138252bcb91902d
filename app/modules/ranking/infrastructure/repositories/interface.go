package rankingdb

import (
	"context"

	"github.com/uptrace/bun"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// PlayerRepository is the player store contract. Methods take a bun.IDB so
// batch runs can supply isolated transactions.
type PlayerRepository interface {
	GetPlayer(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) (*Player, error)
	// ListEligibleIDs returns non-banned player IDs in storage order
	// (ascending ID), the order that breaks exact pp ties.
	ListEligibleIDs(ctx context.Context, db bun.IDB) ([]sharedtypes.PlayerID, error)
	// ListRankable returns the rank pass input for the whole population,
	// in storage order.
	ListRankable(ctx context.Context, db bun.IDB) ([]*rankingdomain.RankedPlayer, error)
	UpdateTotals(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, totals rankingdomain.PpTotals) error
	// BulkUpdateRanks writes rank and country rank for every row in one
	// statement; this is the phase-2 write of a population refresh.
	BulkUpdateRanks(ctx context.Context, db bun.IDB, players []*rankingdomain.RankedPlayer) error
	UpsertStats(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, snapshot rankingdomain.StatsSnapshot) error
	CountByCountry(ctx context.Context, db bun.IDB, country sharedtypes.Country) (int, error)
	CountRanked(ctx context.Context, db bun.IDB) (int, error)
	// TopPlayers returns the best n players by rank for exports.
	TopPlayers(ctx context.Context, db bun.IDB, n int) ([]*Player, error)
}

// ScoreRepository is the score store contract.
type ScoreRepository interface {
	// ListEligibleByPlayer returns the player's scores that count toward
	// stats: valid-for-general and not excluded.
	ListEligibleByPlayer(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) ([]*Score, error)
	ListByLeaderboard(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]*Score, error)
	ListPlayerIDsOnLeaderboard(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]sharedtypes.PlayerID, error)
	// UpdateWeights persists the decay weights assigned during a player's
	// total recompute, keyed by score ID.
	UpdateWeights(ctx context.Context, db bun.IDB, weights map[int64]float64) error
	// BulkUpdatePp rewrites pp, sub-components, rank, and the
	// qualification flag after a leaderboard recompute.
	BulkUpdatePp(ctx context.Context, db bun.IDB, scores []*Score) error
	Delete(ctx context.Context, db bun.IDB, scoreID int64) error
}
