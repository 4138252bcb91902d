package qualificationservice

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	qualificationdomain "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// ApproveQualification moves nominated → qualified when every precondition
// holds. Idempotent for later approvers: they only extend the approver set.
func (s *QualificationService) ApproveQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, seenStars float64, seenType string) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "ApproveQualification", func(ctx context.Context) (results.OperationResult, error) {
		var success *qualificationevents.ApprovedPayload
		var rejection *qualificationevents.ApproveFailedPayload
		var rejectionErr error

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			difficulty, err := s.DifficultyDB.Get(ctx, db, leaderboardID)
			if err != nil {
				return err
			}
			row, err := s.QualificationDB.GetOpen(ctx, db, leaderboardID)
			if err != nil {
				return err
			}
			if !difficulty.Status.InReview() {
				rejection = &qualificationevents.ApproveFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "difficulty is not under review",
				}
				rejectionErr = ErrConflict
				return nil
			}

			qualification := row.Domain()
			guard := qualificationdomain.ApprovalGuard{
				Approver:    caller,
				SeenStars:   seenStars,
				SeenType:    seenType,
				ActualStars: difficulty.Stars,
				ActualType:  difficulty.Type,
				// Admins may qualify without mapper consent.
				SeniorBypass: caller.HasRole(sharedtypes.RoleAdmin),
			}
			if verdict := qualification.CheckApproval(guard); verdict != qualificationdomain.RejectionNone {
				rejection = &qualificationevents.ApproveFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        string(verdict),
				}
				rejectionErr = ErrConflict
				if verdict == qualificationdomain.RejectionJuniorRole || verdict == qualificationdomain.RejectionNotReviewer {
					rejectionErr = ErrUnauthorized
				}
				return nil
			}

			first := !qualification.ApprovalStamped
			now := s.now()
			qualification.StampApproval(now)
			qualification.AddApprover(caller.ID)

			cascade := qualificationevents.Cascade{}
			if first {
				previous := difficulty.Status
				difficulty.Status = sharedtypes.StatusQualified
				difficulty.QualifiedAt = now
				if err := s.DifficultyDB.Update(ctx, db, difficulty); err != nil {
					return err
				}
				s.recordTransition(ctx, string(previous), string(difficulty.Status))
				cascade.RecomputeLeaderboard = true
				cascade.PlaylistRefreshes = []string{
					qualificationevents.PlaylistNominatedRefresh,
					qualificationevents.PlaylistQualifiedRefresh,
				}
			}

			row.Apply(qualification)
			if err := s.QualificationDB.Update(ctx, db, row); err != nil {
				return err
			}

			success = &qualificationevents.ApprovedPayload{
				LeaderboardID: leaderboardID,
				Status:        difficulty.Status,
				FirstApproval: first,
				Cascade:       cascade,
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, qualificationdb.ErrNotFound) {
				return results.FailureResult(&qualificationevents.ApproveFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "no open qualification for this leaderboard",
				}, ErrNotFound), nil
			}
			return results.FailureResult(&qualificationevents.ApproveFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to approve qualification",
			}, err), err
		}
		if rejection != nil {
			return results.FailureResult(rejection, rejectionErr), nil
		}

		return results.SuccessResult(success), nil
	})
}
