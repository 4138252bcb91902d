package rankingservice

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	rankingmetrics "github.com/Cadence-Arcade/rankcore/internal/observability/metrics/ranking"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// ------------------------
// Fake Player Repo
// ------------------------

// FakePlayerRepository provides a programmable stub for the
// rankingdb.PlayerRepository interface. Safe for concurrent use so batch
// pipeline tests can run with multiple workers.
type FakePlayerRepository struct {
	mu    sync.Mutex
	trace []string

	GetPlayerFunc       func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) (*rankingdb.Player, error)
	ListEligibleIDsFunc func(ctx context.Context, db bun.IDB) ([]sharedtypes.PlayerID, error)
	ListRankableFunc    func(ctx context.Context, db bun.IDB) ([]*rankingdomain.RankedPlayer, error)
	UpdateTotalsFunc    func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, totals rankingdomain.PpTotals) error
	BulkUpdateRanksFunc func(ctx context.Context, db bun.IDB, players []*rankingdomain.RankedPlayer) error
	UpsertStatsFunc     func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, snapshot rankingdomain.StatsSnapshot) error
	CountByCountryFunc  func(ctx context.Context, db bun.IDB, country sharedtypes.Country) (int, error)
	CountRankedFunc     func(ctx context.Context, db bun.IDB) (int, error)
	TopPlayersFunc      func(ctx context.Context, db bun.IDB, n int) ([]*rankingdb.Player, error)
}

func NewFakePlayerRepository() *FakePlayerRepository {
	return &FakePlayerRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakePlayerRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePlayerRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakePlayerRepository) GetPlayer(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) (*rankingdb.Player, error) {
	f.record("GetPlayer")
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, db, id)
	}
	return nil, rankingdb.ErrNotFound
}

func (f *FakePlayerRepository) ListEligibleIDs(ctx context.Context, db bun.IDB) ([]sharedtypes.PlayerID, error) {
	f.record("ListEligibleIDs")
	if f.ListEligibleIDsFunc != nil {
		return f.ListEligibleIDsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakePlayerRepository) ListRankable(ctx context.Context, db bun.IDB) ([]*rankingdomain.RankedPlayer, error) {
	f.record("ListRankable")
	if f.ListRankableFunc != nil {
		return f.ListRankableFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakePlayerRepository) UpdateTotals(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, totals rankingdomain.PpTotals) error {
	f.record("UpdateTotals")
	if f.UpdateTotalsFunc != nil {
		return f.UpdateTotalsFunc(ctx, db, id, totals)
	}
	return nil
}

func (f *FakePlayerRepository) BulkUpdateRanks(ctx context.Context, db bun.IDB, players []*rankingdomain.RankedPlayer) error {
	f.record("BulkUpdateRanks")
	if f.BulkUpdateRanksFunc != nil {
		return f.BulkUpdateRanksFunc(ctx, db, players)
	}
	return nil
}

func (f *FakePlayerRepository) UpsertStats(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, snapshot rankingdomain.StatsSnapshot) error {
	f.record("UpsertStats")
	if f.UpsertStatsFunc != nil {
		return f.UpsertStatsFunc(ctx, db, id, snapshot)
	}
	return nil
}

func (f *FakePlayerRepository) CountByCountry(ctx context.Context, db bun.IDB, country sharedtypes.Country) (int, error) {
	f.record("CountByCountry")
	if f.CountByCountryFunc != nil {
		return f.CountByCountryFunc(ctx, db, country)
	}
	return 0, nil
}

func (f *FakePlayerRepository) CountRanked(ctx context.Context, db bun.IDB) (int, error) {
	f.record("CountRanked")
	if f.CountRankedFunc != nil {
		return f.CountRankedFunc(ctx, db)
	}
	return 0, nil
}

func (f *FakePlayerRepository) TopPlayers(ctx context.Context, db bun.IDB, n int) ([]*rankingdb.Player, error) {
	f.record("TopPlayers")
	if f.TopPlayersFunc != nil {
		return f.TopPlayersFunc(ctx, db, n)
	}
	return nil, nil
}

var _ rankingdb.PlayerRepository = (*FakePlayerRepository)(nil)

// ------------------------
// Fake Score Repo
// ------------------------

// FakeScoreRepository provides a programmable stub for the
// rankingdb.ScoreRepository interface.
type FakeScoreRepository struct {
	mu    sync.Mutex
	trace []string

	ListEligibleByPlayerFunc       func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) ([]*rankingdb.Score, error)
	ListByLeaderboardFunc          func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]*rankingdb.Score, error)
	ListPlayerIDsOnLeaderboardFunc func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]sharedtypes.PlayerID, error)
	UpdateWeightsFunc              func(ctx context.Context, db bun.IDB, weights map[int64]float64) error
	BulkUpdatePpFunc               func(ctx context.Context, db bun.IDB, scores []*rankingdb.Score) error
	DeleteFunc                     func(ctx context.Context, db bun.IDB, scoreID int64) error
}

func NewFakeScoreRepository() *FakeScoreRepository {
	return &FakeScoreRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeScoreRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScoreRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakeScoreRepository) ListEligibleByPlayer(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) ([]*rankingdb.Score, error) {
	f.record("ListEligibleByPlayer")
	if f.ListEligibleByPlayerFunc != nil {
		return f.ListEligibleByPlayerFunc(ctx, db, id)
	}
	return nil, nil
}

func (f *FakeScoreRepository) ListByLeaderboard(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]*rankingdb.Score, error) {
	f.record("ListByLeaderboard")
	if f.ListByLeaderboardFunc != nil {
		return f.ListByLeaderboardFunc(ctx, db, id)
	}
	return nil, nil
}

func (f *FakeScoreRepository) ListPlayerIDsOnLeaderboard(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) ([]sharedtypes.PlayerID, error) {
	f.record("ListPlayerIDsOnLeaderboard")
	if f.ListPlayerIDsOnLeaderboardFunc != nil {
		return f.ListPlayerIDsOnLeaderboardFunc(ctx, db, id)
	}
	return nil, nil
}

func (f *FakeScoreRepository) UpdateWeights(ctx context.Context, db bun.IDB, weights map[int64]float64) error {
	f.record("UpdateWeights")
	if f.UpdateWeightsFunc != nil {
		return f.UpdateWeightsFunc(ctx, db, weights)
	}
	return nil
}

func (f *FakeScoreRepository) BulkUpdatePp(ctx context.Context, db bun.IDB, scores []*rankingdb.Score) error {
	f.record("BulkUpdatePp")
	if f.BulkUpdatePpFunc != nil {
		return f.BulkUpdatePpFunc(ctx, db, scores)
	}
	return nil
}

func (f *FakeScoreRepository) Delete(ctx context.Context, db bun.IDB, scoreID int64) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, scoreID)
	}
	return nil
}

var _ rankingdb.ScoreRepository = (*FakeScoreRepository)(nil)

// ------------------------
// Fake Difficulty Lookup
// ------------------------

type FakeDifficultyLookup struct {
	GetDifficultyFunc func(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (DifficultyInfo, error)
}

func (f *FakeDifficultyLookup) GetDifficulty(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (DifficultyInfo, error) {
	if f.GetDifficultyFunc != nil {
		return f.GetDifficultyFunc(ctx, leaderboardID)
	}
	return DifficultyInfo{}, rankingdb.ErrNotFound
}

var _ DifficultyLookup = (*FakeDifficultyLookup)(nil)

// ------------------------
// Test Service
// ------------------------

func newTestService(playerDB *FakePlayerRepository, scoreDB *FakeScoreRepository, difficulties DifficultyLookup, cfg Config) *RankingService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewRankingService(nil, playerDB, scoreDB, difficulties, logger, rankingmetrics.NoOpMetrics{}, tracer, cfg)
}
