// Package rankingevents defines the topics and payloads the ranking module
// consumes and emits.
package rankingevents

import (
	"time"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Subscribed topics.
const (
	ScoreSubmitted             = "ranking.score.submitted"
	ScoreDeleted               = "ranking.score.deleted"
	PlayerRefreshRequested     = "ranking.player.refresh.requested"
	PopulationRefreshRequested = "ranking.population.refresh.requested"
	StatsRefreshRequested      = "ranking.stats.refresh.requested"
	LeaderboardRecompute       = "ranking.leaderboard.recompute.requested"
	PlayersRerankRequested     = "ranking.players.rerank.requested"
	StandingsExportRequested   = "ranking.standings.export.requested"
)

// Published topics.
const (
	PlayerRefreshed            = "ranking.player.refreshed"
	PlayerRefreshFailed        = "ranking.player.refresh.failed"
	PopulationRefreshed        = "ranking.population.refreshed"
	PopulationRefreshFailed    = "ranking.population.refresh.failed"
	LeaderboardRecomputed      = "ranking.leaderboard.recomputed"
	LeaderboardRecomputeFailed = "ranking.leaderboard.recompute.failed"
	StandingsExported          = "ranking.standings.exported"
	StandingsExportFailed      = "ranking.standings.export.failed"
)

type ScoreSubmittedPayload struct {
	PlayerID      sharedtypes.PlayerID      `json:"player_id"`
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	ScoreID       int64                     `json:"score_id"`
}

type ScoreDeletedPayload struct {
	PlayerID      sharedtypes.PlayerID      `json:"player_id"`
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	ScoreID       int64                     `json:"score_id"`
}

type PlayerRefreshRequestedPayload struct {
	PlayerID sharedtypes.PlayerID `json:"player_id"`
}

type PlayerRefreshedPayload struct {
	PlayerID sharedtypes.PlayerID `json:"player_id"`
	Pp       float64              `json:"pp"`
	Rank     int                  `json:"rank"`
}

type PlayerRefreshFailedPayload struct {
	PlayerID sharedtypes.PlayerID `json:"player_id"`
	Reason   string               `json:"reason"`
}

type PopulationRefreshRequestedPayload struct {
	Caller sharedtypes.Caller `json:"caller"`
	// StatsOnly refreshes ScoreStats snapshots without touching pp or rank.
	StatsOnly bool `json:"stats_only"`
}

type StatsRefreshRequestedPayload struct {
	Caller sharedtypes.Caller `json:"caller"`
}

type PopulationRefreshedPayload struct {
	Players   int           `json:"players"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	StatsOnly bool          `json:"stats_only"`
}

type PopulationRefreshFailedPayload struct {
	Reason string `json:"reason"`
}

type LeaderboardRecomputePayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	// Rerank chains a population re-rank for the board's players once the
	// recompute lands.
	Rerank bool `json:"rerank"`
}

type LeaderboardRecomputedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Scores        int                       `json:"scores"`
}

type LeaderboardRecomputeFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}

type PlayersRerankRequestedPayload struct {
	// PlayerIDs limits the refresh to the given players before the rank
	// pass; the rank pass itself always covers the whole population.
	PlayerIDs []sharedtypes.PlayerID `json:"player_ids"`
}

type StandingsExportRequestedPayload struct {
	Caller sharedtypes.Caller `json:"caller"`
	Top    int                `json:"top"`
}

type StandingsExportedPayload struct {
	Rows     int    `json:"rows"`
	Filename string `json:"filename"`
}

type StandingsExportFailedPayload struct {
	Reason string `json:"reason"`
}
