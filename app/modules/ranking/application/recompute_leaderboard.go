package rankingservice

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// RecomputeLeaderboard rewrites every score's pp on one leaderboard from the
// difficulty's current rating and status, then re-ranks the board. Invoked
// whenever the difficulty's status or modifier curve changes, and safe to
// re-run: the same rating and scores converge to the same result.
func (s *RankingService) RecomputeLeaderboard(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "RecomputeLeaderboard", func(ctx context.Context) (results.OperationResult, error) {
		info, err := s.difficulties.GetDifficulty(ctx, leaderboardID)
		if err != nil {
			if errors.Is(err, rankingdb.ErrNotFound) {
				return results.FailureResult(&rankingevents.LeaderboardRecomputeFailedPayload{
					LeaderboardID: leaderboardID,
					Reason:        "leaderboard not found",
				}, ErrLeaderboardNotFound), nil
			}
			return results.FailureResult(&rankingevents.LeaderboardRecomputeFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to resolve difficulty",
			}, err), err
		}

		var count int
		err = s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			scores, err := s.ScoreDB.ListByLeaderboard(ctx, db, leaderboardID)
			if err != nil {
				return err
			}
			count = len(scores)
			if count == 0 {
				return nil
			}

			s.applyPp(scores, info)
			rankScores(scores)

			return s.ScoreDB.BulkUpdatePp(ctx, db, scores)
		})
		if err != nil {
			return results.FailureResult(&rankingevents.LeaderboardRecomputeFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to rewrite scores",
			}, err), err
		}

		return results.SuccessResult(&rankingevents.LeaderboardRecomputedPayload{
			LeaderboardID: leaderboardID,
			Scores:        count,
		}), nil
	})
}

// RemoveScore deletes one score and re-ranks the remaining scores on its
// leaderboard. Deleting an already-deleted score is not an error; the
// re-rank still runs.
func (s *RankingService) RemoveScore(ctx context.Context, scoreID int64, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "RemoveScore", func(ctx context.Context) (results.OperationResult, error) {
		var remaining int
		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			if err := s.ScoreDB.Delete(ctx, db, scoreID); err != nil {
				if !errors.Is(err, rankingdb.ErrNoRowsAffected) {
					return err
				}
				s.logger.WarnContext(ctx, "Score already deleted",
					attr.Int64("score_id", scoreID),
					attr.LeaderboardID("leaderboard_id", leaderboardID),
				)
			}

			scores, err := s.ScoreDB.ListByLeaderboard(ctx, db, leaderboardID)
			if err != nil {
				return err
			}
			remaining = len(scores)
			if remaining == 0 {
				return nil
			}

			rankScores(scores)
			return s.ScoreDB.BulkUpdatePp(ctx, db, scores)
		})
		if err != nil {
			return results.FailureResult(&rankingevents.LeaderboardRecomputeFailedPayload{
				LeaderboardID: leaderboardID,
				Reason:        "failed to re-rank leaderboard after deletion",
			}, err), err
		}

		return results.SuccessResult(&rankingevents.LeaderboardRecomputedPayload{
			LeaderboardID: leaderboardID,
			Scores:        remaining,
		}), nil
	})
}

// applyPp rewrites each score's pp from the difficulty state. Ranked maps
// earn clean pp; maps mid-review earn pp flagged as qualification; everything
// else earns none.
func (s *RankingService) applyPp(scores []*rankingdb.Score, info DifficultyInfo) {
	earnsPp := info.Status == sharedtypes.StatusRanked || info.Status.InReview()
	inReview := info.Status.InReview()

	for _, sc := range scores {
		var b rankingdomain.PpBreakdown
		if earnsPp {
			b = s.ppCalc(info.Rating, sc.Accuracy, sc.Modifiers)
		}
		sc.Pp = b.Pp
		sc.AccPp = b.AccPp
		sc.PassPp = b.PassPp
		sc.TechPp = b.TechPp
		sc.BonusPp = b.BonusPp
		sc.Qualification = inReview
	}
}

// rankScores assigns dense leaderboard ranks back onto the score rows.
func rankScores(scores []*rankingdb.Score) {
	ranked := make([]*rankingdomain.LeaderboardScore, len(scores))
	for i, sc := range scores {
		ranked[i] = &rankingdomain.LeaderboardScore{
			ID:            sc.ID,
			Pp:            sc.Pp,
			ModifiedScore: sc.ModifiedScore,
			Timestamp:     sc.Timestamp.Unix(),
		}
	}
	rankingdomain.AssignScoreRanks(ranked)

	rankByID := make(map[int64]int, len(ranked))
	for _, r := range ranked {
		rankByID[r.ID] = r.Rank
	}
	for _, sc := range scores {
		sc.Rank = rankByID[sc.ID]
	}
}
