// Package qualificationevents defines the topics and payloads the
// qualification module consumes and emits.
package qualificationevents

import (
	"time"

	qualificationdomain "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Subscribed topics. The HTTP layer is an external collaborator that
// publishes these commands.
const (
	NominateRequested        = "qualification.nominate.requested"
	UpdateRequested          = "qualification.update.requested"
	ApproveRequested         = "qualification.approve.requested"
	MapperAllowRequested     = "qualification.mapper.allow.requested"
	ReweightOpenRequested    = "qualification.reweight.open.requested"
	ReweightApproveRequested = "qualification.reweight.approve.requested"
	RankSetRequested         = "qualification.rank.set.requested"
)

// Published topics.
const (
	Nominated             = "qualification.nominated"
	NominateFailed        = "qualification.nominate.failed"
	Updated               = "qualification.updated"
	UpdateFailed          = "qualification.update.failed"
	Approved              = "qualification.approved"
	ApproveFailed         = "qualification.approve.failed"
	MapperAllowed         = "qualification.mapper.allowed"
	MapperAllowFailed     = "qualification.mapper.allow.failed"
	ReweightOpened        = "qualification.reweight.opened"
	ReweightOpenFailed    = "qualification.reweight.open.failed"
	ReweightApproved      = "qualification.reweight.approved"
	ReweightApproveFailed = "qualification.reweight.approve.failed"
	RankSet               = "qualification.rank.set"
	RankSetFailed         = "qualification.rank.set.failed"
)

// Playlist refresh topics, one per category.
const (
	PlaylistNominatedRefresh = "playlist.nominated.refresh"
	PlaylistQualifiedRefresh = "playlist.qualified.refresh"
	PlaylistRankedRefresh    = "playlist.ranked.refresh"
)

// PlaylistRefreshPayload asks the playlist generator to rebuild one
// category's playlist.
type PlaylistRefreshPayload struct {
	Category    string    `json:"category"`
	RequestedAt time.Time `json:"requested_at"`
}

// Cascade names the side effects a status-affecting mutation requires. They
// run after the triggering command completes but are never best-effort.
type Cascade struct {
	RecomputeLeaderboard bool     `json:"recompute_leaderboard"`
	RerankPopulation     bool     `json:"rerank_population"`
	PlaylistRefreshes    []string `json:"playlist_refreshes"`
}

type NominateRequestedPayload struct {
	Caller        sharedtypes.Caller        `json:"caller"`
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
}

type NominatedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID    `json:"leaderboard_id"`
	Status        sharedtypes.DifficultyStatus `json:"status"`
	Cascade       Cascade                      `json:"cascade"`
}

type NominateFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}

// ReviewUpdate carries the fields a reviewer may edit on an open
// qualification.
type ReviewUpdate struct {
	Rankable   bool                              `json:"rankable"`
	Stars      float64                           `json:"stars"`
	Type       string                            `json:"type"`
	Criteria   qualificationdomain.CriteriaState `json:"criteria"`
	Commentary string                            `json:"commentary"`
}

type UpdateRequestedPayload struct {
	Caller        sharedtypes.Caller        `json:"caller"`
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Update        ReviewUpdate              `json:"update"`
}

type UpdatedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID    `json:"leaderboard_id"`
	Status        sharedtypes.DifficultyStatus `json:"status"`
	ChangeLogged  bool                         `json:"change_logged"`
	Cascade       Cascade                      `json:"cascade"`
}

type UpdateFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}

type ApproveRequestedPayload struct {
	Caller        sharedtypes.Caller        `json:"caller"`
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	// SeenStars and SeenType are the values the approver reviewed; a
	// mismatch against current state rejects the approval as stale.
	SeenStars float64 `json:"seen_stars"`
	SeenType  string  `json:"seen_type"`
}

type ApprovedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID    `json:"leaderboard_id"`
	Status        sharedtypes.DifficultyStatus `json:"status"`
	FirstApproval bool                         `json:"first_approval"`
	Cascade       Cascade                      `json:"cascade"`
}

type ApproveFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}

type MapperAllowRequestedPayload struct {
	Caller        sharedtypes.Caller        `json:"caller"`
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
}

type MapperAllowedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
}

type MapperAllowFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}

type ReweightOpenRequestedPayload struct {
	Caller        sharedtypes.Caller                `json:"caller"`
	LeaderboardID sharedtypes.LeaderboardID         `json:"leaderboard_id"`
	Keep          bool                              `json:"keep"`
	Stars         float64                           `json:"stars"`
	Type          string                            `json:"type"`
	Modifiers     qualificationdomain.ModifierCurve `json:"modifiers"`
	Criteria      qualificationdomain.CriteriaState `json:"criteria"`
	Commentary    string                            `json:"commentary"`
}

type ReweightOpenedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	ReweightID    sharedtypes.ReviewID      `json:"reweight_id"`
	Reopened      bool                      `json:"reopened"`
	ChangeLogged  bool                      `json:"change_logged"`
}

type ReweightOpenFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}

type ReweightApproveRequestedPayload struct {
	Caller        sharedtypes.Caller        `json:"caller"`
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
}

type ReweightApprovedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID    `json:"leaderboard_id"`
	Status        sharedtypes.DifficultyStatus `json:"status"`
	Kept          bool                         `json:"kept"`
	Cascade       Cascade                      `json:"cascade"`
}

type ReweightApproveFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}

type RankSetRequestedPayload struct {
	Caller        sharedtypes.Caller                `json:"caller"`
	LeaderboardID sharedtypes.LeaderboardID         `json:"leaderboard_id"`
	Rankable      bool                              `json:"rankable"`
	Stars         float64                           `json:"stars"`
	Type          string                            `json:"type"`
	Modifiers     qualificationdomain.ModifierCurve `json:"modifiers"`
}

type RankSetPayload struct {
	LeaderboardID sharedtypes.LeaderboardID    `json:"leaderboard_id"`
	Status        sharedtypes.DifficultyStatus `json:"status"`
	Cascade       Cascade                      `json:"cascade"`
}

type RankSetFailedPayload struct {
	LeaderboardID sharedtypes.LeaderboardID `json:"leaderboard_id"`
	Reason        string                    `json:"reason"`
}
