package rankinghandlers

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	rankingservice "github.com/Cadence-Arcade/rankcore/app/modules/ranking/application"
	rankingqueue "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/queue"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// FakeService implements rankingservice.Service for handler testing.
type FakeService struct {
	trace []string

	RefreshPlayerFunc        func(ctx context.Context, playerID sharedtypes.PlayerID) (results.OperationResult, error)
	RefreshPopulationFunc    func(ctx context.Context, statsOnly bool) (results.OperationResult, error)
	RerankPlayersFunc        func(ctx context.Context, playerIDs []sharedtypes.PlayerID) (results.OperationResult, error)
	RecomputeLeaderboardFunc func(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	RemoveScoreFunc          func(ctx context.Context, scoreID int64, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	ExportStandingsFunc      func(ctx context.Context, caller sharedtypes.Caller, top int) (results.OperationResult, error)
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) RefreshPlayer(ctx context.Context, playerID sharedtypes.PlayerID) (results.OperationResult, error) {
	f.record("RefreshPlayer")
	if f.RefreshPlayerFunc != nil {
		return f.RefreshPlayerFunc(ctx, playerID)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) RefreshPopulation(ctx context.Context, statsOnly bool) (results.OperationResult, error) {
	f.record("RefreshPopulation")
	if f.RefreshPopulationFunc != nil {
		return f.RefreshPopulationFunc(ctx, statsOnly)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) RerankPlayers(ctx context.Context, playerIDs []sharedtypes.PlayerID) (results.OperationResult, error) {
	f.record("RerankPlayers")
	if f.RerankPlayersFunc != nil {
		return f.RerankPlayersFunc(ctx, playerIDs)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) RecomputeLeaderboard(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	f.record("RecomputeLeaderboard")
	if f.RecomputeLeaderboardFunc != nil {
		return f.RecomputeLeaderboardFunc(ctx, leaderboardID)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) RemoveScore(ctx context.Context, scoreID int64, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	f.record("RemoveScore")
	if f.RemoveScoreFunc != nil {
		return f.RemoveScoreFunc(ctx, scoreID, leaderboardID)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) ExportStandings(ctx context.Context, caller sharedtypes.Caller, top int) (results.OperationResult, error) {
	f.record("ExportStandings")
	if f.ExportStandingsFunc != nil {
		return f.ExportStandingsFunc(ctx, caller, top)
	}
	return results.OperationResult{}, nil
}

// FakeQueueService records enqueued jobs.
type FakeQueueService struct {
	trace []string

	RecomputeJobs []rankingqueue.LeaderboardRecomputeJob
	RefreshJobs   []rankingqueue.PopulationRefreshJob
	RerankJobs    []rankingqueue.PopulationRerankJob

	EnqueueLeaderboardRecomputeFunc func(ctx context.Context, job rankingqueue.LeaderboardRecomputeJob) error
	EnqueuePopulationRefreshFunc    func(ctx context.Context, job rankingqueue.PopulationRefreshJob) error
	EnqueuePopulationRerankFunc     func(ctx context.Context, job rankingqueue.PopulationRerankJob) error
}

func NewFakeQueueService() *FakeQueueService {
	return &FakeQueueService{trace: []string{}}
}

func (f *FakeQueueService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeQueueService) Trace() []string {
	return f.trace
}

func (f *FakeQueueService) EnqueueLeaderboardRecompute(ctx context.Context, job rankingqueue.LeaderboardRecomputeJob) error {
	f.record("EnqueueLeaderboardRecompute")
	f.RecomputeJobs = append(f.RecomputeJobs, job)
	if f.EnqueueLeaderboardRecomputeFunc != nil {
		return f.EnqueueLeaderboardRecomputeFunc(ctx, job)
	}
	return nil
}

func (f *FakeQueueService) EnqueuePopulationRefresh(ctx context.Context, job rankingqueue.PopulationRefreshJob) error {
	f.record("EnqueuePopulationRefresh")
	f.RefreshJobs = append(f.RefreshJobs, job)
	if f.EnqueuePopulationRefreshFunc != nil {
		return f.EnqueuePopulationRefreshFunc(ctx, job)
	}
	return nil
}

func (f *FakeQueueService) EnqueuePopulationRerank(ctx context.Context, job rankingqueue.PopulationRerankJob) error {
	f.record("EnqueuePopulationRerank")
	f.RerankJobs = append(f.RerankJobs, job)
	if f.EnqueuePopulationRerankFunc != nil {
		return f.EnqueuePopulationRerankFunc(ctx, job)
	}
	return nil
}

func (f *FakeQueueService) HealthCheck(ctx context.Context) error { return nil }
func (f *FakeQueueService) Start(ctx context.Context) error       { return nil }
func (f *FakeQueueService) Stop(ctx context.Context) error        { return nil }

// FakeEventBus captures published messages per topic.
type FakeEventBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message

	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: make(map[string][]*message.Message)}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	f.Published[topic] = append(f.Published[topic], messages...)
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	return nil
}

func (f *FakeEventBus) Subscriber() message.Subscriber { return nil }
func (f *FakeEventBus) Publisher() message.Publisher   { return nil }
func (f *FakeEventBus) CreateStream(ctx context.Context, streamName string, subjects ...string) error {
	return nil
}
func (f *FakeEventBus) Close() error { return nil }

var _ rankingservice.Service = (*FakeService)(nil)
var _ rankingqueue.QueueService = (*FakeQueueService)(nil)
var _ eventbus.EventBus = (*FakeEventBus)(nil)
