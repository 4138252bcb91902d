package rankingqueue

import (
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// LeaderboardRecomputeJob rewrites every score's pp on one leaderboard.
// Enqueued whenever a difficulty's status or modifier curve changes.
type LeaderboardRecomputeJob struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	// Rerank triggers a full population re-rank for the leaderboard's
	// players once the recompute lands.
	Rerank bool `json:"rerank"`
}

// Kind returns the job type identifier for River.
func (LeaderboardRecomputeJob) Kind() string { return "leaderboard_pp_recompute" }

// PopulationRefreshJob recomputes the whole population's totals and ranks.
type PopulationRefreshJob struct {
	// StatsOnly rebuilds stats snapshots without touching pp or rank.
	StatsOnly bool `json:"stats_only"`
}

// Kind returns the job type identifier for River.
func (PopulationRefreshJob) Kind() string { return "population_refresh" }

// PopulationRerankJob refreshes the named players and reassigns ranks for
// the whole population.
type PopulationRerankJob struct {
	PlayerIDs []sharedtypes.PlayerID `json:"player_ids"`
}

// Kind returns the job type identifier for River.
func (PopulationRerankJob) Kind() string { return "population_rerank" }
