package rankingservice

import (
	"context"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// DifficultyInfo is the ranking-side view of a leaderboard's difficulty.
type DifficultyInfo struct {
	Rating rankingdomain.DifficultyRating
	Status sharedtypes.DifficultyStatus
}

// DifficultyLookup is the port through which the ranking module reads
// difficulty state owned elsewhere.
type DifficultyLookup interface {
	GetDifficulty(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (DifficultyInfo, error)
}

// Service defines the interface for ranking operations.
type Service interface {
	// RefreshPlayer recomputes one player's weighted totals, score weights,
	// and stats snapshot.
	RefreshPlayer(ctx context.Context, playerID sharedtypes.PlayerID) (results.OperationResult, error)
	// RefreshPopulation recomputes every eligible player's totals in
	// batches, then reassigns global and country ranks. With statsOnly the
	// pp and rank writes are skipped.
	RefreshPopulation(ctx context.Context, statsOnly bool) (results.OperationResult, error)
	// RerankPlayers refreshes the named players, then reassigns ranks for
	// the whole population.
	RerankPlayers(ctx context.Context, playerIDs []sharedtypes.PlayerID) (results.OperationResult, error)
	// RecomputeLeaderboard rewrites every score's pp on a leaderboard from
	// the current difficulty rating and status, then re-ranks the board.
	RecomputeLeaderboard(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	// RemoveScore deletes a score and re-ranks its leaderboard.
	RemoveScore(ctx context.Context, scoreID int64, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	// ExportStandings renders the top of the global standings as a
	// spreadsheet.
	ExportStandings(ctx context.Context, caller sharedtypes.Caller, top int) (results.OperationResult, error)
}
