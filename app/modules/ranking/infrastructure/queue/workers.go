package rankingqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/uptrace/bun"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	rankingservice "github.com/Cadence-Arcade/rankcore/app/modules/ranking/application"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// publishPayload emits a completion event for a finished job.
func publishPayload(bus eventbus.EventBus, topic string, payload any) error {
	msg, err := eventutil.NewMessage(watermill.NewUUID(), payload, nil)
	if err != nil {
		return err
	}
	return bus.Publish(topic, msg)
}

// LeaderboardRecomputeWorker runs the pp recompute for one leaderboard and,
// when the job asks for it, chains a population re-rank for the players who
// have a score on that board.
type LeaderboardRecomputeWorker struct {
	river.WorkerDefaults[LeaderboardRecomputeJob]

	service  rankingservice.Service
	scoreDB  rankingdb.ScoreRepository
	db       *bun.DB
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewLeaderboardRecomputeWorker(service rankingservice.Service, scoreDB rankingdb.ScoreRepository, db *bun.DB, bus eventbus.EventBus, logger *slog.Logger) *LeaderboardRecomputeWorker {
	return &LeaderboardRecomputeWorker{
		service:  service,
		scoreDB:  scoreDB,
		db:       db,
		eventBus: bus,
		logger:   logger,
	}
}

func (w *LeaderboardRecomputeWorker) Work(ctx context.Context, job *river.Job[LeaderboardRecomputeJob]) error {
	w.logger.InfoContext(ctx, "Running leaderboard pp recompute",
		attr.LeaderboardID("leaderboard_id", job.Args.LeaderboardID),
		attr.Bool("rerank", job.Args.Rerank),
	)

	result, err := w.service.RecomputeLeaderboard(ctx, job.Args.LeaderboardID)
	if err != nil {
		return fmt.Errorf("leaderboard recompute failed: %w", err)
	}
	if result.IsFailure() {
		// Business failures (unknown leaderboard) are terminal; retrying
		// cannot fix them.
		w.logger.WarnContext(ctx, "Leaderboard recompute rejected",
			attr.LeaderboardID("leaderboard_id", job.Args.LeaderboardID),
			attr.Error(result.Error),
		)
		if w.eventBus != nil {
			return publishPayload(w.eventBus, rankingevents.LeaderboardRecomputeFailed, result.Failure)
		}
		return nil
	}

	if w.eventBus != nil {
		if err := publishPayload(w.eventBus, rankingevents.LeaderboardRecomputed, result.Success); err != nil {
			return err
		}
	}

	if !job.Args.Rerank {
		return nil
	}

	playerIDs, err := w.scoreDB.ListPlayerIDsOnLeaderboard(ctx, w.db, job.Args.LeaderboardID)
	if err != nil {
		return fmt.Errorf("failed to list players for re-rank: %w", err)
	}
	if len(playerIDs) == 0 {
		return nil
	}

	client := river.ClientFromContext[pgx.Tx](ctx)
	if _, err := client.Insert(ctx, PopulationRerankJob{PlayerIDs: playerIDs}, &river.InsertOpts{
		Queue: rankingQueueName,
	}); err != nil {
		return fmt.Errorf("failed to chain population re-rank: %w", err)
	}
	return nil
}

// PopulationRefreshWorker runs the full two-phase population refresh.
type PopulationRefreshWorker struct {
	river.WorkerDefaults[PopulationRefreshJob]

	service  rankingservice.Service
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewPopulationRefreshWorker(service rankingservice.Service, bus eventbus.EventBus, logger *slog.Logger) *PopulationRefreshWorker {
	return &PopulationRefreshWorker{service: service, eventBus: bus, logger: logger}
}

func (w *PopulationRefreshWorker) Work(ctx context.Context, job *river.Job[PopulationRefreshJob]) error {
	w.logger.InfoContext(ctx, "Running population refresh",
		attr.Bool("stats_only", job.Args.StatsOnly),
	)

	result, err := w.service.RefreshPopulation(ctx, job.Args.StatsOnly)
	if err != nil {
		return fmt.Errorf("population refresh failed: %w", err)
	}

	if w.eventBus != nil && result.IsSuccess() {
		return publishPayload(w.eventBus, rankingevents.PopulationRefreshed, result.Success)
	}
	return nil
}

// PopulationRerankWorker refreshes a bounded player set and reassigns ranks
// for everyone.
type PopulationRerankWorker struct {
	river.WorkerDefaults[PopulationRerankJob]

	service  rankingservice.Service
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewPopulationRerankWorker(service rankingservice.Service, bus eventbus.EventBus, logger *slog.Logger) *PopulationRerankWorker {
	return &PopulationRerankWorker{service: service, eventBus: bus, logger: logger}
}

func (w *PopulationRerankWorker) Work(ctx context.Context, job *river.Job[PopulationRerankJob]) error {
	w.logger.InfoContext(ctx, "Running population re-rank",
		attr.Int("players", len(job.Args.PlayerIDs)),
	)

	result, err := w.service.RerankPlayers(ctx, job.Args.PlayerIDs)
	if err != nil {
		return fmt.Errorf("population re-rank failed: %w", err)
	}

	if w.eventBus != nil && result.IsSuccess() {
		return publishPayload(w.eventBus, rankingevents.PopulationRefreshed, result.Success)
	}
	return nil
}
