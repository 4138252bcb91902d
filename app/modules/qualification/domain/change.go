package qualificationdomain

import (
	"time"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// CriteriaState is the criteria reviewer's tri-state verdict.
type CriteriaState int

const (
	CriteriaUnchecked CriteriaState = 0
	CriteriaMet       CriteriaState = 1
	CriteriaFailed    CriteriaState = 2
)

// ReviewState is the subset of a review that the audit log tracks.
type ReviewState struct {
	Rankable   bool
	Stars      float64
	Type       string
	Criteria   CriteriaState
	Commentary string
}

// Change is one append-only audit entry: a before/after snapshot of the
// tracked review fields.
type Change struct {
	Timestamp time.Time            `json:"timestamp"`
	EditorID  sharedtypes.PlayerID `json:"editor_id"`

	OldRankable   bool          `json:"old_rankable"`
	NewRankable   bool          `json:"new_rankable"`
	OldStars      float64       `json:"old_stars"`
	NewStars      float64       `json:"new_stars"`
	OldType       string        `json:"old_type"`
	NewType       string        `json:"new_type"`
	OldCriteria   CriteriaState `json:"old_criteria"`
	NewCriteria   CriteriaState `json:"new_criteria"`
	OldCommentary string        `json:"old_commentary"`
	NewCommentary string        `json:"new_commentary"`
}

// DiffChange builds an audit entry from two review states. The second return
// is false when no tracked field differs; callers must not append in that
// case.
func DiffChange(editorID sharedtypes.PlayerID, at time.Time, before, after ReviewState) (Change, bool) {
	if before == after {
		return Change{}, false
	}
	return Change{
		Timestamp:     at,
		EditorID:      editorID,
		OldRankable:   before.Rankable,
		NewRankable:   after.Rankable,
		OldStars:      before.Stars,
		NewStars:      after.Stars,
		OldType:       before.Type,
		NewType:       after.Type,
		OldCriteria:   before.Criteria,
		NewCriteria:   after.Criteria,
		OldCommentary: before.Commentary,
		NewCommentary: after.Commentary,
	}, true
}
