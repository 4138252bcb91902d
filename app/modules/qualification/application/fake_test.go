package qualificationservice

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
	qualificationmetrics "github.com/Cadence-Arcade/rankcore/internal/observability/metrics/qualification"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// ------------------------
// Fake Difficulty Repo
// ------------------------

// FakeDifficultyRepository provides a programmable stub for the
// qualificationdb.DifficultyRepository interface.
type FakeDifficultyRepository struct {
	mu    sync.Mutex
	trace []string

	GetFunc    func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error)
	UpdateFunc func(ctx context.Context, db bun.IDB, difficulty *qualificationdb.Difficulty) error

	// Updated captures the last difficulty passed to Update.
	Updated *qualificationdb.Difficulty
}

func NewFakeDifficultyRepository() *FakeDifficultyRepository {
	return &FakeDifficultyRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeDifficultyRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeDifficultyRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakeDifficultyRepository) Get(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, id)
	}
	return nil, qualificationdb.ErrNotFound
}

func (f *FakeDifficultyRepository) Update(ctx context.Context, db bun.IDB, difficulty *qualificationdb.Difficulty) error {
	f.record("Update")
	f.mu.Lock()
	f.Updated = difficulty
	f.mu.Unlock()
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, difficulty)
	}
	return nil
}

var _ qualificationdb.DifficultyRepository = (*FakeDifficultyRepository)(nil)

// ------------------------
// Fake Qualification Repo
// ------------------------

// FakeQualificationRepository provides a programmable stub for the
// qualificationdb.QualificationRepository interface.
type FakeQualificationRepository struct {
	mu    sync.Mutex
	trace []string

	GetOpenFunc               func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error)
	InsertFunc                func(ctx context.Context, db bun.IDB, qualification *qualificationdb.Qualification) error
	UpdateFunc                func(ctx context.Context, db bun.IDB, qualification *qualificationdb.Qualification) error
	LastNominationFunc        func(ctx context.Context, db bun.IDB, nominator sharedtypes.PlayerID, hash sharedtypes.ContentHash) (time.Time, error)
	HasReviewerNominationFunc func(ctx context.Context, db bun.IDB, songID sharedtypes.SongID) (bool, error)

	// Inserted and Updated capture the last rows passed to Insert and Update.
	Inserted *qualificationdb.Qualification
	Updated  *qualificationdb.Qualification
}

func NewFakeQualificationRepository() *FakeQualificationRepository {
	return &FakeQualificationRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeQualificationRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeQualificationRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakeQualificationRepository) GetOpen(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error) {
	f.record("GetOpen")
	if f.GetOpenFunc != nil {
		return f.GetOpenFunc(ctx, db, leaderboardID)
	}
	return nil, qualificationdb.ErrNotFound
}

func (f *FakeQualificationRepository) Insert(ctx context.Context, db bun.IDB, qualification *qualificationdb.Qualification) error {
	f.record("Insert")
	f.mu.Lock()
	f.Inserted = qualification
	f.mu.Unlock()
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, qualification)
	}
	return nil
}

func (f *FakeQualificationRepository) Update(ctx context.Context, db bun.IDB, qualification *qualificationdb.Qualification) error {
	f.record("Update")
	f.mu.Lock()
	f.Updated = qualification
	f.mu.Unlock()
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, qualification)
	}
	return nil
}

func (f *FakeQualificationRepository) LastNomination(ctx context.Context, db bun.IDB, nominator sharedtypes.PlayerID, hash sharedtypes.ContentHash) (time.Time, error) {
	f.record("LastNomination")
	if f.LastNominationFunc != nil {
		return f.LastNominationFunc(ctx, db, nominator, hash)
	}
	return time.Time{}, qualificationdb.ErrNotFound
}

func (f *FakeQualificationRepository) HasReviewerNomination(ctx context.Context, db bun.IDB, songID sharedtypes.SongID) (bool, error) {
	f.record("HasReviewerNomination")
	if f.HasReviewerNominationFunc != nil {
		return f.HasReviewerNominationFunc(ctx, db, songID)
	}
	return false, nil
}

var _ qualificationdb.QualificationRepository = (*FakeQualificationRepository)(nil)

// ------------------------
// Fake Reweight Repo
// ------------------------

// FakeReweightRepository provides a programmable stub for the
// qualificationdb.ReweightRepository interface.
type FakeReweightRepository struct {
	mu    sync.Mutex
	trace []string

	GetUnfinishedFunc    func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Reweight, error)
	InsertFunc           func(ctx context.Context, db bun.IDB, reweight *qualificationdb.Reweight) error
	UpdateFunc           func(ctx context.Context, db bun.IDB, reweight *qualificationdb.Reweight) error
	InsertRankChangeFunc func(ctx context.Context, db bun.IDB, change *qualificationdb.RankChange) error

	// Inserted, Updated, and RankChanges capture the writes made to the fake.
	Inserted    *qualificationdb.Reweight
	Updated     *qualificationdb.Reweight
	RankChanges []*qualificationdb.RankChange
}

func NewFakeReweightRepository() *FakeReweightRepository {
	return &FakeReweightRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeReweightRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeReweightRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakeReweightRepository) GetUnfinished(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Reweight, error) {
	f.record("GetUnfinished")
	if f.GetUnfinishedFunc != nil {
		return f.GetUnfinishedFunc(ctx, db, leaderboardID)
	}
	return nil, qualificationdb.ErrNotFound
}

func (f *FakeReweightRepository) Insert(ctx context.Context, db bun.IDB, reweight *qualificationdb.Reweight) error {
	f.record("Insert")
	f.mu.Lock()
	f.Inserted = reweight
	f.mu.Unlock()
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, reweight)
	}
	return nil
}

func (f *FakeReweightRepository) Update(ctx context.Context, db bun.IDB, reweight *qualificationdb.Reweight) error {
	f.record("Update")
	f.mu.Lock()
	f.Updated = reweight
	f.mu.Unlock()
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, reweight)
	}
	return nil
}

func (f *FakeReweightRepository) InsertRankChange(ctx context.Context, db bun.IDB, change *qualificationdb.RankChange) error {
	f.record("InsertRankChange")
	f.mu.Lock()
	f.RankChanges = append(f.RankChanges, change)
	f.mu.Unlock()
	if f.InsertRankChangeFunc != nil {
		return f.InsertRankChangeFunc(ctx, db, change)
	}
	return nil
}

var _ qualificationdb.ReweightRepository = (*FakeReweightRepository)(nil)

// ------------------------
// Test Service
// ------------------------

// testNow pins the workflow clock so cooldown and audit assertions are
// deterministic.
var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestService(difficultyDB *FakeDifficultyRepository, qualificationDB *FakeQualificationRepository, reweightDB *FakeReweightRepository) *QualificationService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	s := NewQualificationService(nil, difficultyDB, qualificationDB, reweightDB, logger, qualificationmetrics.NoOpMetrics{}, tracer)
	s.now = func() time.Time { return testNow }
	return s
}
