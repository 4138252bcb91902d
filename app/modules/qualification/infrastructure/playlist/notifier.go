// Package playlist throttles the playlist refresh notifications the
// qualification workflows trigger. Refreshes are expensive downstream and
// idempotent, so bursts within the refresh window collapse into one, but the
// last change in a window always gets a refresh.
package playlist

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/time/rate"

	"github.com/Cadence-Arcade/rankcore/app/eventbus"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	"github.com/Cadence-Arcade/rankcore/internal/attr"
	"github.com/Cadence-Arcade/rankcore/internal/eventutil"
)

// DefaultRefreshWindow is the minimum spacing between refreshes of the same
// playlist category.
const DefaultRefreshWindow = 30 * time.Second

// topicState tracks the limiter and any refresh deferred to the end of the
// current window for one category.
type topicState struct {
	limiter *rate.Limiter
	pending *message.Message
	timer   *time.Timer
}

// Notifier publishes playlist refresh events, at most one per category per
// window. A refresh that lands inside the window is not dropped: it is held
// and published when the window reopens, so a status change committed after
// an in-flight rebuild still produces one.
type Notifier struct {
	eventBus eventbus.EventBus
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	states map[string]*topicState
	window time.Duration
}

func NewNotifier(eventBus eventbus.EventBus, logger *slog.Logger, window time.Duration) *Notifier {
	if window <= 0 {
		window = DefaultRefreshWindow
	}
	return &Notifier{
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
		states:   make(map[string]*topicState),
		window:   window,
	}
}

// state returns the per-topic state. Callers must hold n.mu.
func (n *Notifier) state(topic string) *topicState {
	st, ok := n.states[topic]
	if !ok {
		st = &topicState{limiter: rate.NewLimiter(rate.Every(n.window), 1)}
		n.states[topic] = st
	}
	return st
}

// Notify publishes a refresh for the given playlist topic. Inside the window
// the refresh is deferred, not dropped: only the newest one needs to survive,
// since a refresh rebuilds from current state.
func (n *Notifier) Notify(topic string, origin *message.Message) error {
	msg, err := eventutil.NewMessage(watermill.NewUUID(), &qualificationevents.PlaylistRefreshPayload{
		Category:    topic,
		RequestedAt: n.now(),
	}, origin)
	if err != nil {
		return err
	}

	n.mu.Lock()
	st := n.state(topic)
	if st.timer != nil {
		st.pending = msg
		n.mu.Unlock()
		n.logger.Debug("Playlist refresh folded into pending window",
			attr.String("topic", topic),
		)
		return nil
	}
	delay := st.limiter.Reserve().Delay()
	if delay > 0 {
		st.pending = msg
		st.timer = time.AfterFunc(delay, func() { n.flush(topic) })
		n.mu.Unlock()
		n.logger.Debug("Playlist refresh deferred until the window reopens",
			attr.String("topic", topic),
			attr.Duration("delay", delay),
		)
		return nil
	}
	n.mu.Unlock()
	return n.eventBus.Publish(topic, msg)
}

// flush publishes the refresh held for topic, if any.
func (n *Notifier) flush(topic string) {
	n.mu.Lock()
	st := n.states[topic]
	msg := st.pending
	st.pending = nil
	st.timer = nil
	n.mu.Unlock()

	if msg == nil {
		return
	}
	if err := n.eventBus.Publish(topic, msg); err != nil {
		n.logger.Error("Deferred playlist refresh failed",
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}
