package track

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openjudge/arena/api"
)

const (
	DefaultInterval = 2 * time.Second

	// DefaultMaxWait bounds how long an unresolved submission is
	// tracked before the outcome is reported as unknown. The judge
	// API specifies no bound; polling forever would leak a timer per
	// abandoned submission.
	DefaultMaxWait = 5 * time.Minute
)

// SubmissionFetcher is the single judge operation the poller needs.
type SubmissionFetcher interface {
	Submission(ctx context.Context, submissionID int64) (*api.Submission, error)
}

// Poller re-fetches one submission on a fixed cadence until its status
// turns terminal, the wait bound elapses, a fetch fails, or Stop is
// called. Polls are strictly sequential: the next one is not issued
// before the previous response has been handled. Each Poller tracks
// exactly one submission id and is independent of every other Poller.
type Poller struct {
	fetch    SubmissionFetcher
	sink     Sink
	log      *slog.Logger
	interval time.Duration
	maxWait  time.Duration

	submissionID int64
	prog         progress

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(fetch SubmissionFetcher, sink Sink, log *slog.Logger, submissionID int64) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		fetch:        fetch,
		sink:         sink,
		log:          log,
		interval:     DefaultInterval,
		maxWait:      DefaultMaxWait,
		submissionID: submissionID,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// WithCadence overrides the poll interval and wait bound. Call before
// Start.
func (p *Poller) WithCadence(interval, maxWait time.Duration) *Poller {
	p.interval = interval
	p.maxWait = maxWait
	return p
}

// Start begins tracking from the submit response. If that response
// already carries a terminal status the poller resolves immediately and
// never ticks. Start must be called at most once; a poller stopped
// before Start stays silent.
func (p *Poller) Start(initial *api.Submission) {
	if p.ctx.Err() != nil {
		close(p.done)
		return
	}

	if p.prog.observe(initial.Status) {
		if initial.Status.IsTerminal() {
			p.sink.Resolved(initial)
			p.cancel()
			close(p.done)
			return
		}
		p.sink.StatusChange(initial)
	}

	go p.run(p.ctx)
}

// Stop cancels tracking. It is effective from construction, safe to
// call any number of times and after resolution; a resolved poller has
// already stopped itself.
func (p *Poller) Stop() {
	p.cancel()
}

// Done is closed once the poller has emitted its ending event or been
// stopped, and will never touch the sink again.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	defer p.cancel()

	deadline := time.Now().Add(p.maxWait)
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("submission tracking cancelled", slog.Int64("submission", p.submissionID))
			return
		case <-timer.C:
		}

		subm, err := p.fetch.Submission(ctx, p.submissionID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// The judge is assumed reachable; a failed poll means the
			// outcome cannot be confirmed, not that it should be guessed.
			p.sink.TrackingLost(p.submissionID, err)
			return
		}

		if p.prog.observe(subm.Status) {
			if subm.Status.IsTerminal() {
				p.sink.Resolved(subm)
				return
			}
			p.sink.StatusChange(subm)
		}

		if time.Now().After(deadline) {
			p.sink.TrackingLost(p.submissionID,
				fmt.Errorf("no terminal verdict within %s", p.maxWait))
			return
		}

		timer.Reset(p.interval)
	}
}
