package qualificationhandlers

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	qualificationservice "github.com/Cadence-Arcade/rankcore/app/modules/qualification/application"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/results"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// ------------------------
// Fake Service
// ------------------------

// FakeService provides a programmable stub for the qualification service.
type FakeService struct {
	mu    sync.Mutex
	trace []string

	NominateFunc             func(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	UpdateQualificationFunc  func(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, update qualificationevents.ReviewUpdate) (results.OperationResult, error)
	ApproveQualificationFunc func(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, seenStars float64, seenType string) (results.OperationResult, error)
	AllowQualificationFunc   func(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	OpenReweightFunc         func(ctx context.Context, caller sharedtypes.Caller, proposal qualificationservice.ReweightProposal) (results.OperationResult, error)
	ApproveReweightFunc      func(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error)
	SetRankedStatusFunc      func(ctx context.Context, caller sharedtypes.Caller, change qualificationservice.RankSet) (results.OperationResult, error)
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakeService) Nominate(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	f.record("Nominate")
	if f.NominateFunc != nil {
		return f.NominateFunc(ctx, caller, leaderboardID)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) UpdateQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, update qualificationevents.ReviewUpdate) (results.OperationResult, error) {
	f.record("UpdateQualification")
	if f.UpdateQualificationFunc != nil {
		return f.UpdateQualificationFunc(ctx, caller, leaderboardID, update)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) ApproveQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID, seenStars float64, seenType string) (results.OperationResult, error) {
	f.record("ApproveQualification")
	if f.ApproveQualificationFunc != nil {
		return f.ApproveQualificationFunc(ctx, caller, leaderboardID, seenStars, seenType)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) AllowQualification(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	f.record("AllowQualification")
	if f.AllowQualificationFunc != nil {
		return f.AllowQualificationFunc(ctx, caller, leaderboardID)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) OpenReweight(ctx context.Context, caller sharedtypes.Caller, proposal qualificationservice.ReweightProposal) (results.OperationResult, error) {
	f.record("OpenReweight")
	if f.OpenReweightFunc != nil {
		return f.OpenReweightFunc(ctx, caller, proposal)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) ApproveReweight(ctx context.Context, caller sharedtypes.Caller, leaderboardID sharedtypes.LeaderboardID) (results.OperationResult, error) {
	f.record("ApproveReweight")
	if f.ApproveReweightFunc != nil {
		return f.ApproveReweightFunc(ctx, caller, leaderboardID)
	}
	return results.OperationResult{}, nil
}

func (f *FakeService) SetRankedStatus(ctx context.Context, caller sharedtypes.Caller, change qualificationservice.RankSet) (results.OperationResult, error) {
	f.record("SetRankedStatus")
	if f.SetRankedStatusFunc != nil {
		return f.SetRankedStatusFunc(ctx, caller, change)
	}
	return results.OperationResult{}, nil
}

var _ qualificationservice.Service = (*FakeService)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

// FakeEventBus records published messages per topic.
type FakeEventBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message

	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: make(map[string][]*message.Message)}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published[topic] = append(f.Published[topic], messages...)
	return nil
}

func (f *FakeEventBus) Messages(topic string) []*message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Published[topic]
}

func (f *FakeEventBus) Subscriber() message.Subscriber { return nil }
func (f *FakeEventBus) Publisher() message.Publisher   { return nil }
func (f *FakeEventBus) CreateStream(ctx context.Context, streamName string, subjects ...string) error {
	return nil
}
func (f *FakeEventBus) Close() error { return nil }

var _ eventbus.EventBus = (*FakeEventBus)(nil)

// ------------------------
// Fake Playlist Notifier
// ------------------------

// FakeNotifier records playlist refresh notifications.
type FakeNotifier struct {
	mu     sync.Mutex
	Topics []string

	NotifyFunc func(topic string, origin *message.Message) error
}

func (f *FakeNotifier) Notify(topic string, origin *message.Message) error {
	if f.NotifyFunc != nil {
		return f.NotifyFunc(topic, origin)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Topics = append(f.Topics, topic)
	return nil
}

var _ PlaylistNotifier = (*FakeNotifier)(nil)
