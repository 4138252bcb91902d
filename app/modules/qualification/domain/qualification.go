package qualificationdomain

import (
	"time"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Qualification is the open review record a difficulty carries while its
// status is nominated or qualified. At most one open qualification exists per
// leaderboard.
type Qualification struct {
	ID            sharedtypes.ReviewID
	LeaderboardID sharedtypes.LeaderboardID

	// Nominator proposed the map. Approval rules exclude them from
	// approving their own nomination.
	Nominator       sharedtypes.PlayerID
	SelfNomination  bool
	MapperID        sharedtypes.PlayerID
	MapperAllowed   bool
	CriteriaChecker sharedtypes.PlayerID
	CriteriaVerdict CriteriaState
	Approvers       []sharedtypes.PlayerID
	ApprovalStamped bool
	ApprovedAt      time.Time
	NominatedAt     time.Time
	Commentary      string

	Changes []Change
}

// HasApprover reports whether the given reviewer already approved.
func (q *Qualification) HasApprover(id sharedtypes.PlayerID) bool {
	for _, a := range q.Approvers {
		if a == id {
			return true
		}
	}
	return false
}

// AddApprover appends with set semantics.
func (q *Qualification) AddApprover(id sharedtypes.PlayerID) {
	if !q.HasApprover(id) {
		q.Approvers = append(q.Approvers, id)
	}
}

// StampApproval records the qualification moment exactly once. Later
// approvals only extend the approver set.
func (q *Qualification) StampApproval(at time.Time) {
	if q.ApprovalStamped {
		return
	}
	q.ApprovalStamped = true
	q.ApprovedAt = at
}

// ApprovalGuard is the evidence an approver presents. Stars and type are the
// values the approver saw; a mismatch against the difficulty's current values
// means the approver is acting on stale data.
type ApprovalGuard struct {
	Approver     sharedtypes.Caller
	SeenStars    float64
	SeenType     string
	ActualStars  float64
	ActualType   string
	SeniorBypass bool
}

// ApprovalRejection names the rule a failed approval attempt broke.
type ApprovalRejection string

const (
	RejectionNone           ApprovalRejection = ""
	RejectionJuniorRole     ApprovalRejection = "approver holds only the junior reviewer role"
	RejectionMapperConsent  ApprovalRejection = "mapper has not allowed qualification"
	RejectionStaleData      ApprovalRejection = "stars or type changed since the approver reviewed the map"
	RejectionCriteriaUnmet  ApprovalRejection = "criteria review is not marked as met"
	RejectionSelfApproval   ApprovalRejection = "approver nominated this map"
	RejectionCriteriaAuthor ApprovalRejection = "approver performed the criteria check"
	RejectionNotReviewer    ApprovalRejection = "caller is not a reviewer"
)

// CheckApproval applies the nominated → qualified preconditions and returns
// the first rule violated, or RejectionNone when the approval is clean.
func (q *Qualification) CheckApproval(guard ApprovalGuard) ApprovalRejection {
	if !guard.Approver.IsReviewer() {
		return RejectionNotReviewer
	}
	if guard.Approver.JuniorRestricted() {
		return RejectionJuniorRole
	}
	if !q.MapperAllowed && !guard.SeniorBypass {
		return RejectionMapperConsent
	}
	if guard.SeenStars != guard.ActualStars || guard.SeenType != guard.ActualType {
		return RejectionStaleData
	}
	if q.CriteriaVerdict != CriteriaMet {
		return RejectionCriteriaUnmet
	}
	if guard.Approver.ID == q.Nominator {
		return RejectionSelfApproval
	}
	if guard.Approver.ID == q.CriteriaChecker && q.CriteriaChecker != "" {
		return RejectionCriteriaAuthor
	}
	return RejectionNone
}
