package qualificationdomain

import (
	"time"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Reweight is the re-evaluation record for an already-ranked difficulty.
// Once Finished it is immutable; re-reweighting opens a fresh record.
type Reweight struct {
	ID            sharedtypes.ReviewID
	LeaderboardID sharedtypes.LeaderboardID

	Author sharedtypes.PlayerID
	// Keep retains ranked status on approval; false reverts to unranked.
	Keep       bool
	Stars      float64
	Type       string
	Modifiers  ModifierCurve
	Criteria   CriteriaState
	Commentary string
	Finished   bool
	OpenedAt   time.Time

	Changes []Change
}

// State projects the reweight onto the audit-tracked fields.
func (r *Reweight) State() ReviewState {
	return ReviewState{
		Rankable:   r.Keep,
		Stars:      r.Stars,
		Type:       r.Type,
		Criteria:   r.Criteria,
		Commentary: r.Commentary,
	}
}

// ReweightRejection names the rule a failed reweight approval broke.
type ReweightRejection string

const (
	ReweightRejectionNone        ReweightRejection = ""
	ReweightRejectionNotReviewer ReweightRejection = "caller is not a reviewer"
	ReweightRejectionJuniorRole  ReweightRejection = "approver holds only the junior reviewer role"
	ReweightRejectionOwnReweight ReweightRejection = "approver authored this reweight"
	ReweightRejectionFinished    ReweightRejection = "reweight is already finalized"
)

// CheckApproval applies the reweight approval restrictions.
func (r *Reweight) CheckApproval(approver sharedtypes.Caller) ReweightRejection {
	if r.Finished {
		return ReweightRejectionFinished
	}
	if !approver.IsReviewer() {
		return ReweightRejectionNotReviewer
	}
	if approver.JuniorRestricted() {
		return ReweightRejectionJuniorRole
	}
	if approver.ID == r.Author {
		return ReweightRejectionOwnReweight
	}
	return ReweightRejectionNone
}

// RankChange is the permanent audit row written exactly once when a reweight
// or direct admin rank-set is finalized.
type RankChange struct {
	ID            sharedtypes.ReviewID
	LeaderboardID sharedtypes.LeaderboardID
	Timestamp     time.Time
	Author        sharedtypes.PlayerID

	OldRankable  bool
	NewRankable  bool
	OldStars     float64
	NewStars     float64
	OldType      string
	NewType      string
	OldModifiers ModifierCurve
	NewModifiers ModifierCurve
}
