package track

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/openjudge/arena/api"
)

// VerdictBus is the slice of *nats.Conn the push tracker needs.
type VerdictBus interface {
	Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error)
}

// PushTracker is a push-channel alternative to the Poller: instead of
// polling it subscribes to the judge's per-submission NATS subject and
// feeds the same Sink. The contract is identical — exactly one ending
// event, cancel-safe, and bounded: a verdict that never arrives (the
// judge stays silent, or publishes it during a reconnect window where a
// plain subscription replays nothing) is reported as lost once the wait
// bound elapses.
type PushTracker struct {
	bus  VerdictBus
	sink Sink
	log  *slog.Logger

	submissionID int64
	initial      *api.Submission
	maxWait      time.Duration

	mu    sync.Mutex
	prog  progress
	sub   *nats.Subscription
	timer *time.Timer
	over  bool

	done chan struct{}
}

func submissionSubject(submissionID int64) string {
	return fmt.Sprintf("submissions.%d", submissionID)
}

func NewPushTracker(bus VerdictBus, sink Sink, log *slog.Logger, initial *api.Submission) *PushTracker {
	return &PushTracker{
		bus:          bus,
		sink:         sink,
		log:          log,
		submissionID: initial.ID,
		initial:      initial,
		maxWait:      DefaultMaxWait,
		done:         make(chan struct{}),
	}
}

// WithMaxWait overrides the wait bound. Call before Start.
func (t *PushTracker) WithMaxWait(maxWait time.Duration) *PushTracker {
	t.maxWait = maxWait
	return t
}

// Start seeds the lifecycle from the submit response and subscribes to
// the submission's subject. If that response already carries a terminal
// status the tracker resolves immediately and never subscribes. Start
// must be called at most once.
func (t *PushTracker) Start() error {
	t.mu.Lock()
	if t.over {
		// Stopped before Start; stay silent.
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if t.prog.observe(t.initial.Status) {
		if t.initial.Status.IsTerminal() {
			t.sink.Resolved(t.initial)
			t.mu.Lock()
			t.finishLocked()
			t.mu.Unlock()
			return nil
		}
		t.sink.StatusChange(t.initial)
	}

	sub, err := t.bus.Subscribe(submissionSubject(t.submissionID), t.onMessage)
	if err != nil {
		t.mu.Lock()
		t.finishLocked()
		t.mu.Unlock()
		return fmt.Errorf("subscribe to submission %d: %w", t.submissionID, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.over {
		// Finished between Subscribe returning and the handle landing.
		sub.Unsubscribe()
		return nil
	}
	t.sub = sub
	t.timer = time.AfterFunc(t.maxWait, t.expire)
	return nil
}

func (t *PushTracker) onMessage(msg *nats.Msg) {
	var subm api.Submission
	if err := json.Unmarshal(msg.Data, &subm); err != nil {
		t.log.Warn("bad submission event", slog.Int64("submission", t.submissionID), slog.Any("error", err))
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.over || !t.prog.observe(subm.Status) {
		return
	}
	if subm.Status.IsTerminal() {
		t.finishLocked()
		t.sink.Resolved(&subm)
		return
	}
	t.sink.StatusChange(&subm)
}

func (t *PushTracker) expire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.over {
		return
	}
	t.finishLocked()
	t.sink.TrackingLost(t.submissionID,
		fmt.Errorf("no terminal verdict within %s", t.maxWait))
}

// Stop unsubscribes and guarantees no further sink calls. Idempotent.
func (t *PushTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.over {
		t.finishLocked()
	}
}

func (t *PushTracker) Done() <-chan struct{} {
	return t.done
}

func (t *PushTracker) finishLocked() {
	t.over = true
	if t.sub != nil {
		t.sub.Unsubscribe()
		t.sub = nil
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	close(t.done)
}
