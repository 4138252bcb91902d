package qualificationdb

import (
	"time"

	"github.com/uptrace/bun"

	qualificationdomain "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Difficulty is the moderation-side view of a leaderboard: status, rating,
// and modifier curve. One row per (song, difficulty, mode) tuple.
type Difficulty struct {
	bun.BaseModel `bun:"table:leaderboard_difficulties,alias:d"`

	LeaderboardID sharedtypes.LeaderboardID `bun:"leaderboard_id,pk"`
	SongID        sharedtypes.SongID        `bun:"song_id,notnull"`
	ContentHash   sharedtypes.ContentHash   `bun:"content_hash,notnull,default:''"`
	MapperID      sharedtypes.PlayerID      `bun:"mapper_id,notnull,default:''"`

	Status sharedtypes.DifficultyStatus `bun:"status,notnull,default:'unranked'"`

	Stars      float64 `bun:"stars,notnull,default:0"`
	AccRating  float64 `bun:"acc_rating,notnull,default:0"`
	PassRating float64 `bun:"pass_rating,notnull,default:0"`
	TechRating float64 `bun:"tech_rating,notnull,default:0"`
	Type       string  `bun:"type,notnull,default:''"`

	Modifiers qualificationdomain.ModifierCurve `bun:"modifiers,type:jsonb,notnull"`

	NominatedAt time.Time `bun:"nominated_at,nullzero"`
	QualifiedAt time.Time `bun:"qualified_at,nullzero"`
	RankedAt    time.Time `bun:"ranked_at,nullzero"`
}

// Qualification is the persisted review record. Open is cleared when the
// review concludes (ranked or unrankable); the row stays for history.
type Qualification struct {
	bun.BaseModel `bun:"table:rank_qualifications,alias:q"`

	ID            sharedtypes.ReviewID      `bun:"id,pk,type:uuid"`
	LeaderboardID sharedtypes.LeaderboardID `bun:"leaderboard_id,notnull"`
	Open          bool                      `bun:"open,notnull,default:true"`

	Nominator       sharedtypes.PlayerID              `bun:"nominator,notnull"`
	SelfNomination  bool                              `bun:"self_nomination,notnull,default:false"`
	MapperID        sharedtypes.PlayerID              `bun:"mapper_id,notnull,default:''"`
	MapperAllowed   bool                              `bun:"mapper_allowed,notnull,default:false"`
	CriteriaChecker sharedtypes.PlayerID              `bun:"criteria_checker,notnull,default:''"`
	CriteriaVerdict qualificationdomain.CriteriaState `bun:"criteria_verdict,notnull,default:0"`
	Commentary      string                            `bun:"commentary,notnull,default:''"`

	Approvers       []sharedtypes.PlayerID `bun:"approvers,type:jsonb,notnull,default:'[]'"`
	ApprovalStamped bool                   `bun:"approval_stamped,notnull,default:false"`
	ApprovedAt      time.Time              `bun:"approved_at,nullzero"`
	NominatedAt     time.Time              `bun:"nominated_at,nullzero,notnull"`

	Changes []qualificationdomain.Change `bun:"changes,type:jsonb,notnull,default:'[]'"`
}

// Domain converts the row into the workflow's shape.
func (q *Qualification) Domain() *qualificationdomain.Qualification {
	return &qualificationdomain.Qualification{
		ID:              q.ID,
		LeaderboardID:   q.LeaderboardID,
		Nominator:       q.Nominator,
		SelfNomination:  q.SelfNomination,
		MapperID:        q.MapperID,
		MapperAllowed:   q.MapperAllowed,
		CriteriaChecker: q.CriteriaChecker,
		CriteriaVerdict: q.CriteriaVerdict,
		Approvers:       q.Approvers,
		ApprovalStamped: q.ApprovalStamped,
		ApprovedAt:      q.ApprovedAt,
		NominatedAt:     q.NominatedAt,
		Commentary:      q.Commentary,
		Changes:         q.Changes,
	}
}

// Apply writes the workflow state back onto the row.
func (q *Qualification) Apply(d *qualificationdomain.Qualification) {
	q.MapperAllowed = d.MapperAllowed
	q.CriteriaChecker = d.CriteriaChecker
	q.CriteriaVerdict = d.CriteriaVerdict
	q.Approvers = d.Approvers
	q.ApprovalStamped = d.ApprovalStamped
	q.ApprovedAt = d.ApprovedAt
	q.Commentary = d.Commentary
	q.Changes = d.Changes
}

// Reweight is the persisted RankUpdate. Finished rows are immutable.
type Reweight struct {
	bun.BaseModel `bun:"table:rank_updates,alias:rw"`

	ID            sharedtypes.ReviewID      `bun:"id,pk,type:uuid"`
	LeaderboardID sharedtypes.LeaderboardID `bun:"leaderboard_id,notnull"`

	Author     sharedtypes.PlayerID              `bun:"author,notnull"`
	Keep       bool                              `bun:"keep,notnull,default:true"`
	Stars      float64                           `bun:"stars,notnull,default:0"`
	Type       string                            `bun:"type,notnull,default:''"`
	Modifiers  qualificationdomain.ModifierCurve `bun:"modifiers,type:jsonb,notnull"`
	Criteria   qualificationdomain.CriteriaState `bun:"criteria,notnull,default:0"`
	Commentary string                            `bun:"commentary,notnull,default:''"`
	Finished   bool                              `bun:"finished,notnull,default:false"`
	OpenedAt   time.Time                         `bun:"opened_at,nullzero,notnull"`

	Changes []qualificationdomain.Change `bun:"changes,type:jsonb,notnull,default:'[]'"`
}

// Domain converts the row into the workflow's shape.
func (r *Reweight) Domain() *qualificationdomain.Reweight {
	return &qualificationdomain.Reweight{
		ID:            r.ID,
		LeaderboardID: r.LeaderboardID,
		Author:        r.Author,
		Keep:          r.Keep,
		Stars:         r.Stars,
		Type:          r.Type,
		Modifiers:     r.Modifiers,
		Criteria:      r.Criteria,
		Commentary:    r.Commentary,
		Finished:      r.Finished,
		OpenedAt:      r.OpenedAt,
		Changes:       r.Changes,
	}
}

// Apply writes the workflow state back onto the row.
func (r *Reweight) Apply(d *qualificationdomain.Reweight) {
	r.Keep = d.Keep
	r.Stars = d.Stars
	r.Type = d.Type
	r.Modifiers = d.Modifiers
	r.Criteria = d.Criteria
	r.Commentary = d.Commentary
	r.Finished = d.Finished
	r.Changes = d.Changes
}

// RankChange is the permanent audit row for a finalized reweight or direct
// admin rank-set.
type RankChange struct {
	bun.BaseModel `bun:"table:rank_changes,alias:rc"`

	ID            sharedtypes.ReviewID      `bun:"id,pk,type:uuid"`
	LeaderboardID sharedtypes.LeaderboardID `bun:"leaderboard_id,notnull"`
	Timestamp     time.Time                 `bun:"timestamp,nullzero,notnull"`
	Author        sharedtypes.PlayerID      `bun:"author,notnull"`

	OldRankable bool    `bun:"old_rankable,notnull"`
	NewRankable bool    `bun:"new_rankable,notnull"`
	OldStars    float64 `bun:"old_stars,notnull"`
	NewStars    float64 `bun:"new_stars,notnull"`
	OldType     string  `bun:"old_type,notnull,default:''"`
	NewType     string  `bun:"new_type,notnull,default:''"`

	OldModifiers qualificationdomain.ModifierCurve `bun:"old_modifiers,type:jsonb,notnull"`
	NewModifiers qualificationdomain.ModifierCurve `bun:"new_modifiers,type:jsonb,notnull"`
}
