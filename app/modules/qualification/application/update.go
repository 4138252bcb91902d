package qualificationservice

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"

	qualificationdomain "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// UpdateQualification applies a reviewer edit to an open qualification.
func (s *QualificationService) UpdateQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, update qualificationevents.ReviewUpdate) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateQualification", func(ctx context.Context) (results.OperationResult, error) {
		if !caller.IsReviewer() {
			return results.FailureResult(&qualificationevents.UpdateFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "caller is not a reviewer",
			}, ErrUnauthorized), nil
		}

		var success *qualificationevents.UpdatedPayload
		var rejection *qualificationevents.UpdateFailedPayload
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

			if caller.JuniorRestricted() && difficulty.Status == sharedtypes.StatusQualified {
				rejection = &qualificationevents.UpdateFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "junior reviewers may not modify a qualified difficulty",
				}
				rejectionErr = ErrUnauthorized
				return nil
			}

			qualification := row.Domain()
			now := s.now()

			before := qualificationdomain.ReviewState{
				Rankable:   difficulty.Status != sharedtypes.StatusUnrankable,
				Stars:      difficulty.Stars,
				Type:       difficulty.Type,
				Criteria:   qualification.CriteriaVerdict,
				Commentary: qualification.Commentary,
			}
			after := qualificationdomain.ReviewState{
				Rankable:   update.Rankable,
				Stars:      update.Stars,
				Type:       update.Type,
				Criteria:   update.Criteria,
				Commentary: update.Commentary,
			}

			change, changed := qualificationdomain.DiffChange(caller.ID, now, before, after)
			if changed {
				qualification.Changes = append(qualification.Changes, change)
			}

			if update.Criteria != qualification.CriteriaVerdict {
				qualification.CriteriaChecker = caller.ID
			}
			qualification.CriteriaVerdict = update.Criteria
			qualification.Commentary = update.Commentary

			cascade := qualificationevents.Cascade{}
			previous := difficulty.Status

			if !update.Rankable {
				// Explicit rejection.
				difficulty.Status = sharedtypes.StatusUnrankable
				difficulty.Stars = 0
				difficulty.NominatedAt = time.Time{}
				difficulty.QualifiedAt = time.Time{}
				difficulty.Modifiers = difficulty.Modifiers.Withdrawn()
				row.Open = false

				cascade.RecomputeLeaderboard = true
				cascade.PlaylistRefreshes = []string{
					qualificationevents.PlaylistNominatedRefresh,
					qualificationevents.PlaylistQualifiedRefresh,
				}
				s.recordTransition(ctx, string(previous), string(difficulty.Status))
			} else {
				difficulty.Stars = update.Stars
				difficulty.Type = update.Type
				if changed {
					// Stars and type feed the pp formula.
					cascade.RecomputeLeaderboard = true
					cascade.PlaylistRefreshes = []string{playlistForStatus(difficulty.Status)}
				}
			}

			row.Apply(qualification)
			if err := s.QualificationDB.Update(ctx, db, row); err != nil {
				return err
			}
			if err := s.DifficultyDB.Update(ctx, db, difficulty); err != nil {
				return err
			}

			success = &qualificationevents.UpdatedPayload{
				LeaderboardID: leaderboardID,
				Status:        difficulty.Status,
				ChangeLogged:  changed,
				Cascade:       cascade,
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, qualificationdb.ErrNotFound) {
				return results.FailureResult(&qualificationevents.UpdateFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "no open qualification for this leaderboard",
				}, ErrNotFound), nil
			}
			return results.FailureResult(&qualificationevents.UpdateFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to update qualification",
			}, err), err
		}
		if rejection != nil {
			return results.FailureResult(rejection, rejectionErr), nil
		}

		return results.SuccessResult(success), nil
	})
}

// AllowQualification records the mapper's consent on the open qualification.
func (s *QualificationService) AllowQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "AllowQualification", func(ctx context.Context) (results.OperationResult, error) {
		var rejection *qualificationevents.MapperAllowFailedPayload
		var rejectionErr error

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			row, err := s.QualificationDB.GetOpen(ctx, db, leaderboardID)
			if err != nil {
				return err
			}
			if caller.ID != row.MapperID {
				rejection = &qualificationevents.MapperAllowFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "only the mapper may allow qualification",
				}
				rejectionErr = ErrUnauthorized
				return nil
			}
			row.MapperAllowed = true
			return s.QualificationDB.Update(ctx, db, row)
		})
		if err != nil {
			if errors.Is(err, qualificationdb.ErrNotFound) {
				return results.FailureResult(&qualificationevents.MapperAllowFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "no open qualification for this leaderboard",
				}, ErrNotFound), nil
			}
			return results.FailureResult(&qualificationevents.MapperAllowFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to record mapper consent",
			}, err), err
		}
		if rejection != nil {
			return results.FailureResult(rejection, rejectionErr), nil
		}

		return results.SuccessResult(&qualificationevents.MapperAllowedPayload{
			LeaderboardID: leaderboardID,
		}), nil
	})
}

// playlistForStatus maps a status to the playlist refresh topic it affects.
func playlistForStatus(status sharedtypes.DifficultyStatus) string {
	switch status {
	case sharedtypes.StatusQualified:
		return qualificationevents.PlaylistQualifiedRefresh
	case sharedtypes.StatusRanked:
		return qualificationevents.PlaylistRankedRefresh
	default:
		return qualificationevents.PlaylistNominatedRefresh
	}
}
