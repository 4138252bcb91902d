package qualificationservice

import (
	"context"

	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// Service defines the interface for qualification and reweight operations.
// Every operation takes the caller identity with roles already resolved; the
// engine never authenticates anyone.
type Service interface {
	// Nominate proposes a difficulty for ranking (unranked → nominated).
	Nominate(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	// UpdateQualification applies a reviewer edit to an open qualification,
	// appending an audit Change when tracked fields differ. Setting the
	// update unrankable rejects the map.
	UpdateQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, update qualificationevents.ReviewUpdate) (results.OperationResult, error)
	// ApproveQualification moves nominated → qualified when every approval
	// precondition holds. The first clean approval stamps the timestamp;
	// later ones extend the approver set.
	ApproveQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, seenStars float64, seenType string) (results.OperationResult, error)
	// AllowQualification records the mapper's consent on the open
	// qualification.
	AllowQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	// OpenReweight opens a re-evaluation of a ranked difficulty, or edits
	// the unfinished one.
	OpenReweight(ctx context.Context, caller sharedtypes.Caller, proposal ReweightProposal) (results.OperationResult, error)
	// ApproveReweight finalizes the open reweight: permanent RankChange,
	// Finished flag, status flip per the keep decision.
	ApproveReweight(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	// SetRankedStatus is the direct admin rank-set: applies rankability,
	// stars, type, and modifiers immediately and writes a RankChange.
	SetRankedStatus(ctx context.Context, caller sharedtypes.Caller, change RankSet) (results.OperationResult, error)
}
