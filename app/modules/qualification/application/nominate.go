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

// Nominate proposes a difficulty for ranking.
func (s *QualificationService) Nominate(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "Nominate", func(ctx context.Context) (results.OperationResult, error) {
		var success *qualificationevents.NominatedPayload
		var rejection *qualificationevents.NominateFailedPayload
		var rejectionErr error

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			difficulty, err := s.DifficultyDB.Get(ctx, db, leaderboardID)
			if err != nil {
				return err
			}

			if !qualificationdomain.CanTransition(difficulty.Status, sharedtypes.StatusNominated) {
				rejection = &qualificationevents.NominateFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "difficulty is not eligible for nomination in its current status",
				}
				rejectionErr = ErrConflict
				return nil
			}

			if _, err := s.QualificationDB.GetOpen(ctx, db, leaderboardID); err == nil {
				rejection = &qualificationevents.NominateFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "a qualification is already open for this difficulty",
				}
				rejectionErr = ErrConflict
				return nil
			} else if !errors.Is(err, qualificationdb.ErrNotFound) {
				return err
			}

			// The rating producer is external; nomination fails softly when
			// it has not supplied stars yet.
			if difficulty.Stars <= 0 {
				rejection = &qualificationevents.NominateFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "star rating is not available for this difficulty",
				}
				rejectionErr = ErrConflict
				return nil
			}

			selfNomination := !caller.IsReviewer()
			if selfNomination {
				if caller.ID != difficulty.MapperID {
					rejection = &qualificationevents.NominateFailedPayload{
						LeaderboardID: leaderboardID,
						Reason:        "only the mapper or a reviewer may nominate this difficulty",
					}
					rejectionErr = ErrUnauthorized
					return nil
				}

				taken, err := s.QualificationDB.HasReviewerNomination(ctx, db, difficulty.SongID)
				if err != nil {
					return err
				}
				if taken {
					rejection = &qualificationevents.NominateFailedPayload{
						LeaderboardID: leaderboardID,
						Reason:        "a reviewer nomination already exists for this song",
					}
					rejectionErr = ErrConflict
					return nil
				}

				last, err := s.QualificationDB.LastNomination(ctx, db, caller.ID, difficulty.ContentHash)
				if err != nil && !errors.Is(err, qualificationdb.ErrNotFound) {
					return err
				}
				if err == nil {
					if remaining := qualificationdomain.CooldownRemaining(last, s.now()); remaining > 0 {
						rejection = &qualificationevents.NominateFailedPayload{
							LeaderboardID: leaderboardID,
							Reason:        qualificationdomain.CooldownMessage(remaining),
						}
						rejectionErr = ErrConflict
						return nil
					}
				}
			}

			now := s.now()
			previous := difficulty.Status
			difficulty.Status = sharedtypes.StatusNominated
			difficulty.NominatedAt = now
			difficulty.Modifiers = difficulty.Modifiers.Nominated()
			if err := s.DifficultyDB.Update(ctx, db, difficulty); err != nil {
				return err
			}

			qualification := &qualificationdb.Qualification{
				ID:             sharedtypes.NewReviewID(),
				LeaderboardID:  leaderboardID,
				Open:           true,
				Nominator:      caller.ID,
				SelfNomination: selfNomination,
				MapperID:       difficulty.MapperID,
				NominatedAt:    now,
			}
			if err := s.QualificationDB.Insert(ctx, db, qualification); err != nil {
				return err
			}

			s.recordTransition(ctx, string(previous), string(difficulty.Status))
			success = &qualificationevents.NominatedPayload{
				LeaderboardID: leaderboardID,
				Status:        difficulty.Status,
				Cascade: qualificationevents.Cascade{
					RecomputeLeaderboard: true,
					PlaylistRefreshes:    []string{qualificationevents.PlaylistNominatedRefresh},
				},
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, qualificationdb.ErrNotFound) {
				return results.FailureResult(&qualificationevents.NominateFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "leaderboard not found",
				}, ErrNotFound), nil
			}
			return results.FailureResult(&qualificationevents.NominateFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to nominate difficulty",
			}, err), err
		}
		if rejection != nil {
			return results.FailureResult(rejection, rejectionErr), nil
		}

		return results.SuccessResult(success), nil
	})
}
