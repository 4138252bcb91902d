package rankingdb

import (
	"time"

	"github.com/uptrace/bun"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Player holds the derived ranking state for one account. Pp and rank are
// never authoritative on their own; they are recomputed from scores.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID      sharedtypes.PlayerID `bun:"id,pk"`
	Country sharedtypes.Country  `bun:"country,notnull,default:''"`

	Pp      float64 `bun:"pp,notnull,default:0"`
	AccPp   float64 `bun:"acc_pp,notnull,default:0"`
	PassPp  float64 `bun:"pass_pp,notnull,default:0"`
	TechPp  float64 `bun:"tech_pp,notnull,default:0"`
	BonusPp float64 `bun:"bonus_pp,notnull,default:0"`

	Rank        int `bun:"rank,notnull,default:0"`
	CountryRank int `bun:"country_rank,notnull,default:0"`

	Banned bool `bun:"banned,notnull,default:false"`
	Bot    bool `bun:"bot,notnull,default:false"`

	Stats *ScoreStats `bun:"rel:has-one,join:id=player_id"`
}

// ScoreStats is the 1:1 aggregate snapshot owned by a player, replaced
// wholesale on every aggregation run.
type ScoreStats struct {
	bun.BaseModel `bun:"table:player_score_stats,alias:pss"`

	PlayerID  sharedtypes.PlayerID        `bun:"player_id,pk"`
	Snapshot  rankingdomain.StatsSnapshot `bun:"snapshot,type:jsonb,notnull"`
	UpdatedAt time.Time                   `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Score belongs to exactly one player and one leaderboard.
type Score struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	ID            int64                     `bun:"id,pk,autoincrement"`
	PlayerID      sharedtypes.PlayerID      `bun:"player_id,notnull"`
	LeaderboardID sharedtypes.LeaderboardID `bun:"leaderboard_id,notnull"`

	BaseScore     int64   `bun:"base_score,notnull"`
	ModifiedScore int64   `bun:"modified_score,notnull"`
	Accuracy      float64 `bun:"accuracy,notnull"`

	Pp      float64 `bun:"pp,notnull,default:0"`
	AccPp   float64 `bun:"acc_pp,notnull,default:0"`
	PassPp  float64 `bun:"pass_pp,notnull,default:0"`
	TechPp  float64 `bun:"tech_pp,notnull,default:0"`
	BonusPp float64 `bun:"bonus_pp,notnull,default:0"`

	// Rank is the score's 1-based dense position on its leaderboard.
	Rank int `bun:"rank,notnull,default:0"`
	// Weight is the decay factor last applied when this score entered its
	// owner's totals.
	Weight float64 `bun:"weight,notnull,default:0"`
	// Qualification marks scores set while the map was mid-review; those
	// are excluded from ranked stats.
	Qualification bool `bun:"qualification,notnull,default:false"`

	MaxStreak int    `bun:"max_streak,notnull,default:0"`
	Modifiers string `bun:"modifiers,notnull,default:''"`
	Platform  string `bun:"platform,notnull,default:''"`
	HMD       string `bun:"hmd,notnull,default:''"`

	ValidForGeneral  bool `bun:"valid_for_general,notnull,default:true"`
	ExcludeFromStats bool `bun:"exclude_from_stats,notnull,default:false"`

	Timestamp time.Time `bun:"timestamp,nullzero,notnull"`
}

// Eligible converts a score row into the aggregator's input shape.
func (s *Score) Eligible() rankingdomain.EligibleScore {
	return rankingdomain.EligibleScore{
		ID:            s.ID,
		Pp:            s.Pp,
		AccPp:         s.AccPp,
		PassPp:        s.PassPp,
		TechPp:        s.TechPp,
		BonusPp:       s.BonusPp,
		Accuracy:      s.Accuracy,
		BaseScore:     s.BaseScore,
		ModifiedScore: s.ModifiedScore,
		Rank:          s.Rank,
		MaxStreak:     s.MaxStreak,
		Qualification: s.Qualification,
		Platform:      s.Platform,
		HMD:           s.HMD,
		Timestamp:     s.Timestamp,
	}
}
