package rankingservice

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uptrace/bun"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// RefreshPopulation recomputes the whole population in two strictly ordered
// phases: batched pp and stats recompute first, then a single rank pass over
// the freshly written totals. The rank pass never starts until every batch
// has committed.
func (s *RankingService) RefreshPopulation(ctx context.Context, statsOnly bool) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "RefreshPopulation", func(ctx context.Context) (results.OperationResult, error) {
		start := time.Now()

		ids, err := s.PlayerDB.ListEligibleIDs(ctx, s.db)
		if err != nil {
			return results.FailureResult(&rankingevents.PopulationRefreshFailedPayload{
				Reason: "failed to list eligible players",
			}, err), err
		}

		processed, skipped, err := s.refreshMany(ctx, ids, statsOnly)
		if err != nil {
			return results.FailureResult(&rankingevents.PopulationRefreshFailedPayload{
				Reason: "population refresh aborted",
			}, err), err
		}

		if !statsOnly {
			if err := s.rankPass(ctx); err != nil {
				return results.FailureResult(&rankingevents.PopulationRefreshFailedPayload{
					Reason: "rank assignment failed",
				}, err), err
			}
		}

		return results.SuccessResult(&rankingevents.PopulationRefreshedPayload{
			Players:   processed,
			Skipped:   skipped,
			Duration:  time.Since(start),
			StatsOnly: statsOnly,
		}), nil
	})
}

// RerankPlayers refreshes the named players' totals, then runs the full rank
// pass. Used when a leaderboard recompute invalidated a bounded set of
// players but ranks must stay globally contiguous.
func (s *RankingService) RerankPlayers(ctx context.Context, playerIDs []sharedtypes.PlayerID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "RerankPlayers", func(ctx context.Context) (results.OperationResult, error) {
		start := time.Now()

		processed, skipped, err := s.refreshMany(ctx, playerIDs, false)
		if err != nil {
			return results.FailureResult(&rankingevents.PopulationRefreshFailedPayload{
				Reason: "player refresh aborted",
			}, err), err
		}

		if err := s.rankPass(ctx); err != nil {
			return results.FailureResult(&rankingevents.PopulationRefreshFailedPayload{
				Reason: "rank assignment failed",
			}, err), err
		}

		return results.SuccessResult(&rankingevents.PopulationRefreshedPayload{
			Players:  processed,
			Skipped:  skipped,
			Duration: time.Since(start),
		}), nil
	})
}

// refreshMany splits the players into batches and fans them out to a bounded
// worker pool. Each batch commits in its own transaction so batches never
// contend on a shared write session. A failure inside one player's
// computation is logged and skipped; it does not abort the batch.
func (s *RankingService) refreshMany(ctx context.Context, ids []sharedtypes.PlayerID, statsOnly bool) (int, int, error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}

	counts, err := s.loadPopulationCounts(ctx)
	if err != nil {
		return 0, 0, err
	}

	var processed, skipped atomic.Int64

	batches := make(chan []sharedtypes.PlayerID)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				s.runBatch(ctx, batch, statsOnly, counts, &processed, &skipped)
			}
		}()
	}

	for from := 0; from < len(ids); from += s.batchSize {
		to := from + s.batchSize
		if to > len(ids) {
			to = len(ids)
		}
		batches <- ids[from:to]
	}
	close(batches)

	// Hard barrier: every batch's totals are committed before the caller
	// may read them for rank assignment.
	wg.Wait()

	return int(processed.Load()), int(skipped.Load()), nil
}

func (s *RankingService) runBatch(ctx context.Context, batch []sharedtypes.PlayerID, statsOnly bool, counts *populationCounts, processed, skipped *atomic.Int64) {
	err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
		for _, id := range batch {
			if _, _, err := s.refreshOne(ctx, db, id, statsOnly, counts); err != nil {
				s.logger.WarnContext(ctx, "Skipping player after computation failure",
					attr.PlayerID("player_id", id),
					attr.Error(err),
				)
				s.metrics.RecordPlayerSkipped(ctx, "RankingService")
				skipped.Add(1)
				continue
			}
			processed.Add(1)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Batch commit failed",
			attr.Int("batch_size", len(batch)),
			attr.Error(err),
		)
		skipped.Add(int64(len(batch)))
		return
	}

	s.metrics.RecordBatchCompleted(ctx, "RankingService", len(batch))
}

// rankPass assigns global and country ranks over the whole population in one
// transaction. Single-threaded on purpose: contiguity of 1..N depends on one
// ordered pass over the fresh pp values.
func (s *RankingService) rankPass(ctx context.Context) error {
	return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
		players, err := s.PlayerDB.ListRankable(ctx, db)
		if err != nil {
			return err
		}
		rankingdomain.AssignRanks(players)
		return s.PlayerDB.BulkUpdateRanks(ctx, db, players)
	})
}
