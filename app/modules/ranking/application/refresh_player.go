package rankingservice

import (
	"context"
	"errors"
	"sync"

	"github.com/uptrace/bun"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// RefreshPlayer recomputes one player's weighted totals, per-score weights,
// and stats snapshot. This is the incremental path used after a single score
// submission; a full population refresh supersedes whatever it wrote.
func (s *RankingService) RefreshPlayer(ctx context.Context, playerID sharedtypes.PlayerID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "RefreshPlayer", func(ctx context.Context) (results.OperationResult, error) {
		var refreshed *rankingevents.PlayerRefreshedPayload

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			player, totals, err := s.refreshOne(ctx, db, playerID, false, nil)
			if err != nil {
				return err
			}
			refreshed = &rankingevents.PlayerRefreshedPayload{
				PlayerID: playerID,
				Pp:       totals.Pp,
				Rank:     player.Rank,
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, rankingdb.ErrNotFound) {
				return results.FailureResult(&rankingevents.PlayerRefreshFailedPayload{
					PlayerID: playerID,
					Reason:   "player not found",
				}, ErrPlayerNotFound), nil
			}
			return results.FailureResult(&rankingevents.PlayerRefreshFailedPayload{
				PlayerID: playerID,
				Reason:   "failed to refresh player",
			}, err), err
		}

		return results.SuccessResult(refreshed), nil
	})
}

// populationCounts caches the denominators for percentile statistics so a
// batch run does not re-count the population per player. Safe for concurrent
// use by batch workers.
type populationCounts struct {
	global int

	mu        sync.Mutex
	byCountry map[sharedtypes.Country]int
}

func (s *RankingService) loadPopulationCounts(ctx context.Context) (*populationCounts, error) {
	global, err := s.PlayerDB.CountRanked(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &populationCounts{
		global:    global,
		byCountry: make(map[sharedtypes.Country]int),
	}, nil
}

func (s *RankingService) countryCount(ctx context.Context, counts *populationCounts, country sharedtypes.Country) (int, error) {
	counts.mu.Lock()
	n, ok := counts.byCountry[country]
	counts.mu.Unlock()
	if ok {
		return n, nil
	}

	n, err := s.PlayerDB.CountByCountry(ctx, s.db, country)
	if err != nil {
		return 0, err
	}

	counts.mu.Lock()
	counts.byCountry[country] = n
	counts.mu.Unlock()
	return n, nil
}

// refreshOne is the per-player unit of work shared by the single refresh and
// the batch pipeline. With statsOnly it rebuilds the stats snapshot without
// touching pp totals or score weights. Percentiles use the ranks from the
// last rank pass; the next rank pass trues them up.
func (s *RankingService) refreshOne(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID, statsOnly bool, counts *populationCounts) (*rankingdb.Player, rankingdomain.PpTotals, error) {
	var totals rankingdomain.PpTotals

	player, err := s.PlayerDB.GetPlayer(ctx, db, playerID)
	if err != nil {
		return nil, totals, err
	}

	rows, err := s.ScoreDB.ListEligibleByPlayer(ctx, db, playerID)
	if err != nil {
		return nil, totals, err
	}

	eligible := make([]rankingdomain.EligibleScore, len(rows))
	var ranked []rankingdomain.EligibleScore
	for i, row := range rows {
		eligible[i] = row.Eligible()
		if eligible[i].Ranked() {
			ranked = append(ranked, eligible[i])
		}
	}

	var weights []rankingdomain.ScoreWeight
	totals, weights = rankingdomain.WeightedTotals(ranked, s.curves.PlayerTotal)

	if !statsOnly {
		weightByID := make(map[int64]float64, len(weights))
		for _, w := range weights {
			weightByID[w.ID] = w.Weight
		}
		if err := s.ScoreDB.UpdateWeights(ctx, db, weightByID); err != nil {
			return nil, totals, err
		}
		if err := s.PlayerDB.UpdateTotals(ctx, db, playerID, totals); err != nil {
			return nil, totals, err
		}
	}

	if counts == nil {
		counts, err = s.loadPopulationCounts(ctx)
		if err != nil {
			return nil, totals, err
		}
	}
	countryTotal, err := s.countryCount(ctx, counts, player.Country)
	if err != nil {
		return nil, totals, err
	}

	pctx := rankingdomain.PercentileContext{
		GlobalRank:   player.Rank,
		GlobalTotal:  counts.global,
		CountryRank:  player.CountryRank,
		CountryTotal: countryTotal,
	}

	snapshot := rankingdomain.Aggregate(eligible, s.curves, s.rankCurve, &pctx)
	if err := s.PlayerDB.UpsertStats(ctx, db, playerID, snapshot); err != nil {
		return nil, totals, err
	}

	return player, totals, nil
}
