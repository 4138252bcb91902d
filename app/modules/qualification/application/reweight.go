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

// ReweightProposal is the reviewer's proposed outcome for a ranked
// difficulty.
type ReweightProposal struct {
	LeaderboardID sharedtypes.LeaderboardID
	// Keep retains ranked status; false proposes reverting to unranked.
	Keep       bool
	Stars      float64
	Type       string
	Modifiers  qualificationdomain.ModifierCurve
	Criteria   qualificationdomain.CriteriaState
	Commentary string
}

// OpenReweight opens a re-evaluation of a ranked difficulty, or edits the
// unfinished one. Finished reweights are never touched; a fresh record is
// opened instead.
func (s *QualificationService) OpenReweight(ctx context.Context, caller sharedtypes.Caller, proposal ReweightProposal) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "OpenReweight", func(ctx context.Context) (results.OperationResult, error) {
		if !caller.IsReviewer() {
			return results.FailureResult(&qualificationevents.ReweightOpenFailedPayload{
				LeaderboardID: proposal.LeaderboardID,
				Reason:        "caller is not a reviewer",
			}, ErrUnauthorized), nil
		}

		var success *qualificationevents.ReweightOpenedPayload
		var rejection *qualificationevents.ReweightOpenFailedPayload
		var rejectionErr error

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			difficulty, err := s.DifficultyDB.Get(ctx, db, proposal.LeaderboardID)
			if err != nil {
				return err
			}
			if difficulty.Status != sharedtypes.StatusRanked {
				rejection = &qualificationevents.ReweightOpenFailedPayload{
					LeaderboardID: proposal.LeaderboardID,
					Reason:        "only ranked difficulties can be reweighted",
				}
				rejectionErr = ErrConflict
				return nil
			}

			now := s.now()
			row, err := s.ReweightDB.GetUnfinished(ctx, db, proposal.LeaderboardID)
			if err != nil {
				if !errors.Is(err, qualificationdb.ErrNotFound) {
					return err
				}

				fresh := &qualificationdb.Reweight{
					ID:            sharedtypes.NewReviewID(),
					LeaderboardID: proposal.LeaderboardID,
					Author:        caller.ID,
					Keep:          proposal.Keep,
					Stars:         proposal.Stars,
					Type:          proposal.Type,
					Modifiers:     proposal.Modifiers,
					Criteria:      proposal.Criteria,
					Commentary:    proposal.Commentary,
					OpenedAt:      now,
				}
				if err := s.ReweightDB.Insert(ctx, db, fresh); err != nil {
					return err
				}
				success = &qualificationevents.ReweightOpenedPayload{
					LeaderboardID: proposal.LeaderboardID,
					ReweightID:    fresh.ID,
				}
				return nil
			}

			reweight := row.Domain()
			before := reweight.State()
			reweight.Keep = proposal.Keep
			reweight.Stars = proposal.Stars
			reweight.Type = proposal.Type
			reweight.Modifiers = proposal.Modifiers
			reweight.Criteria = proposal.Criteria
			reweight.Commentary = proposal.Commentary

			change, changed := qualificationdomain.DiffChange(caller.ID, now, before, reweight.State())
			if changed {
				reweight.Changes = append(reweight.Changes, change)
			}

			row.Apply(reweight)
			if err := s.ReweightDB.Update(ctx, db, row); err != nil {
				return err
			}

			success = &qualificationevents.ReweightOpenedPayload{
				LeaderboardID: proposal.LeaderboardID,
				ReweightID:    row.ID,
				Reopened:      true,
				ChangeLogged:  changed,
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, qualificationdb.ErrNotFound) {
				return results.FailureResult(&qualificationevents.ReweightOpenFailedPayload{
					LeaderboardID: proposal.LeaderboardID,
					Reason:        "leaderboard not found",
				}, ErrNotFound), nil
			}
			return results.FailureResult(&qualificationevents.ReweightOpenFailedPayload{
				LeaderboardID: proposal.LeaderboardID,
				Reason:        "failed to open reweight",
			}, err), err
		}
		if rejection != nil {
			return results.FailureResult(rejection, rejectionErr), nil
		}

		return results.SuccessResult(success), nil
	})
}

// ApproveReweight finalizes the open reweight.
func (s *QualificationService) ApproveReweight(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "ApproveReweight", func(ctx context.Context) (results.OperationResult, error) {
		var success *qualificationevents.ReweightApprovedPayload
		var rejection *qualificationevents.ReweightApproveFailedPayload
		var rejectionErr error

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			difficulty, err := s.DifficultyDB.Get(ctx, db, leaderboardID)
			if err != nil {
				return err
			}
			row, err := s.ReweightDB.GetUnfinished(ctx, db, leaderboardID)
			if err != nil {
				return err
			}

			reweight := row.Domain()
			if verdict := reweight.CheckApproval(caller); verdict != qualificationdomain.ReweightRejectionNone {
				rejection = &qualificationevents.ReweightApproveFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        string(verdict),
				}
				rejectionErr = ErrConflict
				if verdict == qualificationdomain.ReweightRejectionJuniorRole || verdict == qualificationdomain.ReweightRejectionNotReviewer {
					rejectionErr = ErrUnauthorized
				}
				return nil
			}

			now := s.now()
			previous := difficulty.Status

			rankChange := &qualificationdb.RankChange{
				ID:            sharedtypes.NewReviewID(),
				LeaderboardID: leaderboardID,
				Timestamp:     now,
				Author:        reweight.Author,
				OldRankable:   previous == sharedtypes.StatusRanked,
				NewRankable:   reweight.Keep,
				OldStars:      difficulty.Stars,
				NewStars:      reweight.Stars,
				OldType:       difficulty.Type,
				NewType:       reweight.Type,
				OldModifiers:  difficulty.Modifiers,
				NewModifiers:  reweight.Modifiers,
			}
			if err := s.ReweightDB.InsertRankChange(ctx, db, rankChange); err != nil {
				return err
			}

			if reweight.Keep {
				difficulty.Stars = reweight.Stars
				difficulty.Type = reweight.Type
				difficulty.Modifiers = reweight.Modifiers
			} else {
				difficulty.Status = sharedtypes.StatusUnranked
				difficulty.Modifiers = difficulty.Modifiers.Withdrawn()
			}
			if err := s.DifficultyDB.Update(ctx, db, difficulty); err != nil {
				return err
			}

			reweight.Finished = true
			row.Apply(reweight)
			if err := s.ReweightDB.Update(ctx, db, row); err != nil {
				return err
			}

			if previous != difficulty.Status {
				s.recordTransition(ctx, string(previous), string(difficulty.Status))
			}

			success = &qualificationevents.ReweightApprovedPayload{
				LeaderboardID: leaderboardID,
				Status:        difficulty.Status,
				Kept:          reweight.Keep,
				Cascade: qualificationevents.Cascade{
					RecomputeLeaderboard: true,
					RerankPopulation:     true,
					PlaylistRefreshes: []string{
						qualificationevents.PlaylistNominatedRefresh,
						qualificationevents.PlaylistQualifiedRefresh,
						qualificationevents.PlaylistRankedRefresh,
					},
				},
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, qualificationdb.ErrNotFound) {
				return results.FailureResult(&qualificationevents.ReweightApproveFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "no open reweight for this leaderboard",
				}, ErrNotFound), nil
			}
			return results.FailureResult(&qualificationevents.ReweightApproveFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to approve reweight",
			}, err), err
		}
		if rejection != nil {
			return results.FailureResult(rejection, rejectionErr), nil
		}

		return results.SuccessResult(success), nil
	})
}

// RankSet is the direct admin rank-set input.
type RankSet struct {
	LeaderboardID sharedtypes.LeaderboardID
	Rankable      bool
	Stars         float64
	Type          string
	Modifiers     qualificationdomain.ModifierCurve
}

// SetRankedStatus applies rankability directly, bypassing the workflows. The
// permanent RankChange row is written immediately.
func (s *QualificationService) SetRankedStatus(ctx context.Context, caller sharedtypes.Caller, change RankSet) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "SetRankedStatus", func(ctx context.Context) (results.OperationResult, error) {
		if !caller.HasRole(sharedtypes.RoleAdmin) {
			return results.FailureResult(&qualificationevents.RankSetFailedPayload{
				LeaderboardID: change.LeaderboardID,
				Reason:        "only admins may set ranked status directly",
			}, ErrUnauthorized), nil
		}

		var success *qualificationevents.RankSetPayload

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			difficulty, err := s.DifficultyDB.Get(ctx, db, change.LeaderboardID)
			if err != nil {
				return err
			}

			now := s.now()
			previous := difficulty.Status

			rankChange := &qualificationdb.RankChange{
				ID:            sharedtypes.NewReviewID(),
				LeaderboardID: change.LeaderboardID,
				Timestamp:     now,
				Author:        caller.ID,
				OldRankable:   previous == sharedtypes.StatusRanked,
				NewRankable:   change.Rankable,
				OldStars:      difficulty.Stars,
				NewStars:      change.Stars,
				OldType:       difficulty.Type,
				NewType:       change.Type,
				OldModifiers:  difficulty.Modifiers,
				NewModifiers:  change.Modifiers,
			}
			if err := s.ReweightDB.InsertRankChange(ctx, db, rankChange); err != nil {
				return err
			}

			difficulty.Stars = change.Stars
			difficulty.Type = change.Type
			difficulty.Modifiers = change.Modifiers
			if change.Rankable {
				difficulty.Status = sharedtypes.StatusRanked
				difficulty.RankedAt = now
			} else {
				difficulty.Status = sharedtypes.StatusUnranked
			}
			if err := s.DifficultyDB.Update(ctx, db, difficulty); err != nil {
				return err
			}

			// Close any open qualification; the decision supersedes it.
			if row, err := s.QualificationDB.GetOpen(ctx, db, change.LeaderboardID); err == nil {
				row.Open = false
				if err := s.QualificationDB.Update(ctx, db, row); err != nil {
					return err
				}
			} else if !errors.Is(err, qualificationdb.ErrNotFound) {
				return err
			}

			if previous != difficulty.Status {
				s.recordTransition(ctx, string(previous), string(difficulty.Status))
			}

			success = &qualificationevents.RankSetPayload{
				LeaderboardID: change.LeaderboardID,
				Status:        difficulty.Status,
				Cascade: qualificationevents.Cascade{
					RecomputeLeaderboard: true,
					RerankPopulation:     true,
					PlaylistRefreshes: []string{
						qualificationevents.PlaylistNominatedRefresh,
						qualificationevents.PlaylistQualifiedRefresh,
						qualificationevents.PlaylistRankedRefresh,
					},
				},
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, qualificationdb.ErrNotFound) {
				return results.FailureResult(&qualificationevents.RankSetFailedPayload{
					LeaderboardID: change.LeaderboardID,
					Reason:        "leaderboard not found",
				}, ErrNotFound), nil
			}
			return results.FailureResult(&qualificationevents.RankSetFailedPayload{
				LeaderboardID: change.LeaderboardID,
				Reason:        "failed to set ranked status",
			}, err), err
		}

		return results.SuccessResult(success), nil
	})
}
