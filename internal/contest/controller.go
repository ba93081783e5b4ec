// Package contest orchestrates one participant's contest session: the
// loaded contest, the selected problem, the editor buffer, submission
// history, and the lifetimes of verdict trackers and the leaderboard
// synchronizer. All shared state lives here and is mutated only by the
// controller itself, whether the trigger was a user action or a timer
// event.
package contest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/openjudge/arena/api"
	"github.com/openjudge/arena/internal/board"
	"github.com/openjudge/arena/internal/session"
	"github.com/openjudge/arena/internal/track"
)

// JudgeAPI is the judge surface the controller needs. *judge.Client
// satisfies it.
type JudgeAPI interface {
	Contest(ctx context.Context, contestID int64) (*api.Contest, error)
	Leaderboard(ctx context.Context, contestID int64) ([]api.LeaderboardEntry, error)
	Submit(ctx context.Context, req api.SubmissionRequest) (*api.Submission, error)
	Submission(ctx context.Context, submissionID int64) (*api.Submission, error)
	UserSubmissions(ctx context.Context, contestID int64, username string) ([]api.Submission, error)
}

// Observer receives the user-visible half of every event after the
// controller has applied it to its own state.
type Observer interface {
	track.Sink
	board.Sink
}

// tracker is what the controller keeps per in-flight submission,
// whether it polls or listens on a push channel.
type tracker interface {
	Stop()
	Done() <-chan struct{}
}

const refreshTimeout = 15 * time.Second

type Controller struct {
	judge    JudgeAPI
	identity session.Identity
	observer Observer
	log      *slog.Logger

	pollInterval  time.Duration
	pollMaxWait   time.Duration
	boardInterval time.Duration
	pushConn      *nats.Conn

	// trackers holds at most one live tracker per submission id.
	trackers *xsync.MapOf[int64, tracker]

	mu       sync.RWMutex
	contest  *api.Contest
	selected *api.Problem
	language Language
	code     string
	history  []api.Submission
	snapshot []api.LeaderboardEntry
	sync     *board.Synchronizer
}

func NewController(j JudgeAPI, id session.Identity, obs Observer, log *slog.Logger) *Controller {
	return &Controller{
		judge:         j,
		identity:      id,
		observer:      obs,
		log:           log,
		pollInterval:  track.DefaultInterval,
		pollMaxWait:   track.DefaultMaxWait,
		boardInterval: board.DefaultInterval,
		trackers:      xsync.NewMapOf[int64, tracker](),
		language:      LangJava,
		code:          LangJava.Template(),
	}
}

// WithCadence overrides the poll and leaderboard refresh timings.
func (c *Controller) WithCadence(poll, maxWait, boardRefresh time.Duration) *Controller {
	c.pollInterval = poll
	c.pollMaxWait = maxWait
	c.boardInterval = boardRefresh
	return c
}

// WithPush switches verdict tracking from polling to the judge's NATS
// stream. The tracking contract is unchanged.
func (c *Controller) WithPush(nc *nats.Conn) *Controller {
	c.pushConn = nc
	return c
}

func (c *Controller) Identity() session.Identity { return c.identity }

// LoadContest fetches the session's contest, selects its first problem,
// loads that problem's submission history, and (re)starts the
// leaderboard synchronizer. On failure the session state stays empty
// and no synchronizer runs.
func (c *Controller) LoadContest(ctx context.Context) error {
	contest, err := c.judge.Contest(ctx, c.identity.ContestID)
	if err != nil {
		return fmt.Errorf("load contest: %w", err)
	}

	c.mu.Lock()
	c.contest = contest
	c.selected = nil
	c.history = nil
	if len(contest.Problems) > 0 {
		c.selected = &contest.Problems[0]
		c.code = c.language.Template()
	}
	selected := c.selected
	c.mu.Unlock()

	if selected != nil {
		if err := c.reloadHistory(ctx, selected.ID); err != nil {
			c.log.Warn("submission history unavailable", slog.Any("error", err))
		}
	}

	c.restartSynchronizer(contest.ID)
	return nil
}

// restartSynchronizer tears the previous synchronizer down completely
// before starting one for the given contest, so a stale timer can never
// deliver a snapshot across a contest switch.
func (c *Controller) restartSynchronizer(contestID int64) {
	c.mu.Lock()
	prev := c.sync
	c.mu.Unlock()
	if prev != nil {
		prev.Stop()
		<-prev.Done()
	}

	s := board.NewSynchronizer(c.judge, boardSink{c}, c.log, contestID).
		WithInterval(c.boardInterval)

	c.mu.Lock()
	c.sync = s
	c.mu.Unlock()
	s.Start()
}

// SelectProblem switches to a problem of the loaded contest, reloads
// its submission history, and reseeds the editor buffer from the
// current language template. An unsaved edit is discarded; there is no
// per-problem draft. A problem outside the contest is rejected and the
// previous selection stands.
func (c *Controller) SelectProblem(ctx context.Context, problemID int64) error {
	c.mu.Lock()
	if c.contest == nil {
		c.mu.Unlock()
		return ErrNoContest
	}
	p := c.contest.ProblemByID(problemID)
	if p == nil {
		c.mu.Unlock()
		return fmt.Errorf("problem %d: %w", problemID, ErrProblemNotInContest)
	}
	c.selected = p
	c.code = c.language.Template()
	c.mu.Unlock()

	if err := c.reloadHistory(ctx, problemID); err != nil {
		c.log.Warn("submission history unavailable", slog.Any("error", err))
	}
	return nil
}

// SetLanguage replaces the editor buffer with the language's template,
// discarding any unsaved edit.
func (c *Controller) SetLanguage(lang Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%q: %w", lang, ErrUnknownLanguage)
	}
	c.mu.Lock()
	c.language = lang
	c.code = lang.Template()
	c.mu.Unlock()
	return nil
}

// SetCode replaces the editor buffer with the user's edit.
func (c *Controller) SetCode(code string) {
	c.mu.Lock()
	c.code = code
	c.mu.Unlock()
}

// Submit validates local state, sends the submission, and starts
// tracking the verdict. Validation failures are returned before any
// network call. When the verdict turns terminal the controller reloads
// both submission history and leaderboard.
func (c *Controller) Submit(ctx context.Context) (*api.Submission, error) {
	c.mu.RLock()
	selected := c.selected
	code := c.code
	lang := c.language
	c.mu.RUnlock()

	if selected == nil {
		return nil, ErrNoProblemSelected
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}

	subm, err := c.judge.Submit(ctx, api.SubmissionRequest{
		Code:      code,
		Language:  string(lang),
		ProblemID: selected.ID,
		ContestID: c.identity.ContestID,
		Username:  c.identity.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	c.log.Info("submitted",
		slog.Int64("submission", subm.ID),
		slog.Int64("problem", selected.ID),
		slog.String("language", string(lang)))

	if err := c.startTracking(subm); err != nil {
		return subm, fmt.Errorf("submission %d created but not tracked: %w", subm.ID, err)
	}
	return subm, nil
}

func (c *Controller) startTracking(subm *api.Submission) error {
	sink := &resolveSink{c: c, problemID: subm.ProblemID}

	if c.pushConn != nil {
		pt := track.NewPushTracker(c.pushConn, sink, c.log, subm).
			WithMaxWait(c.pollMaxWait)
		c.register(subm.ID, pt)
		return pt.Start()
	}

	p := track.NewPoller(c.judge, sink, c.log, subm.ID).
		WithCadence(c.pollInterval, c.pollMaxWait)
	c.register(subm.ID, p)
	p.Start(subm)
	return nil
}

func (c *Controller) register(submissionID int64, t tracker) {
	// Distinct submission ids are independent verdict streams, but one
	// id gets one tracker: a duplicate replaces the old one only after
	// stopping it.
	if prev, loaded := c.trackers.LoadAndStore(submissionID, t); loaded {
		prev.Stop()
	}
}

// History returns the current user's submissions for the selected
// problem, newest first.
func (c *Controller) History() []api.Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]api.Submission, len(c.history))
	copy(out, c.history)
	return out
}

// Leaderboard returns the most recent snapshot in server rank order.
func (c *Controller) Leaderboard() []api.LeaderboardEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]api.LeaderboardEntry, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

func (c *Controller) Contest() *api.Contest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contest
}

func (c *Controller) SelectedProblem() *api.Problem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

func (c *Controller) Language() Language {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

func (c *Controller) Code() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.code
}

// UserSubmissionsForProblem fetches all of the user's submissions in
// the contest and filters them to one problem client-side; the server
// only scopes by contest and user.
func (c *Controller) UserSubmissionsForProblem(ctx context.Context, problemID int64) ([]api.Submission, error) {
	all, err := c.judge.UserSubmissions(ctx, c.identity.ContestID, c.identity.Username)
	if err != nil {
		return nil, err
	}
	subms := make([]api.Submission, 0, len(all))
	for _, s := range all {
		if s.ProblemID == problemID {
			subms = append(subms, s)
		}
	}
	sort.Slice(subms, func(i, j int) bool { return subms[i].ID > subms[j].ID })
	return subms, nil
}

// Close tears the session view down: the synchronizer and every live
// tracker are cancelled so no timer or late callback outlives it.
func (c *Controller) Close() {
	c.mu.Lock()
	s := c.sync
	c.sync = nil
	c.mu.Unlock()
	if s != nil {
		s.Stop()
		<-s.Done()
	}

	c.trackers.Range(func(id int64, t tracker) bool {
		t.Stop()
		c.trackers.Delete(id)
		return true
	})
}

func (c *Controller) reloadHistory(ctx context.Context, problemID int64) error {
	subms, err := c.UserSubmissionsForProblem(ctx, problemID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	// The selection may have moved while the fetch was in flight;
	// stale history must not overwrite the new problem's.
	if c.selected != nil && c.selected.ID == problemID {
		c.history = subms
	}
	c.mu.Unlock()
	return nil
}

// refreshAfterVerdict reloads submission history and leaderboard in
// parallel once a tracked submission reached a terminal state.
func (c *Controller) refreshAfterVerdict(problemID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.reloadHistory(ctx, problemID) })
	g.Go(func() error {
		entries, err := c.judge.Leaderboard(ctx, c.identity.ContestID)
		if err != nil {
			return err
		}
		c.applySnapshot(c.identity.ContestID, entries)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.log.Warn("post-verdict refresh incomplete", slog.Any("error", err))
	}
}

func (c *Controller) applySnapshot(contestID int64, entries []api.LeaderboardEntry) {
	c.mu.Lock()
	if c.contest == nil || c.contest.ID != contestID {
		c.mu.Unlock()
		return
	}
	c.snapshot = entries
	c.mu.Unlock()
	c.observer.Snapshot(contestID, entries)
}

// boardSink routes synchronizer snapshots through the controller so
// the timer goroutine never writes shared state itself.
type boardSink struct{ c *Controller }

func (b boardSink) Snapshot(contestID int64, entries []api.LeaderboardEntry) {
	b.c.applySnapshot(contestID, entries)
}

// resolveSink applies tracker events to the controller and then
// forwards them to the observer.
type resolveSink struct {
	c         *Controller
	problemID int64
}

func (r *resolveSink) StatusChange(subm *api.Submission) {
	r.c.observer.StatusChange(subm)
}

func (r *resolveSink) Resolved(subm *api.Submission) {
	r.c.trackers.Delete(subm.ID)
	r.c.refreshAfterVerdict(r.problemID)
	r.c.observer.Resolved(subm)
}

func (r *resolveSink) TrackingLost(submissionID int64, err error) {
	r.c.trackers.Delete(submissionID)
	r.c.log.Warn("verdict unconfirmed",
		slog.Int64("submission", submissionID), slog.Any("error", err))
	r.c.observer.TrackingLost(submissionID, err)
}
