// Package termview renders session events on the terminal. It is the
// CLI's Observer: verdicts, tracking failures, and leaderboard
// snapshots all pass through here after the controller applied them.
package termview

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/openjudge/arena/api"
)

var (
	okColor     = color.New(color.FgGreen, color.Bold)
	badColor    = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.Faint)
	headColor   = color.New(color.FgCyan, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	statusColor = color.New(color.FgBlue)
)

type View struct {
	StartedAt time.Time
}

func New() *View { return &View{StartedAt: time.Now()} }

func (v *View) StatusChange(subm *api.Submission) {
	statusColor.Printf("  [%s] ", subm.Status)
	dimColor.Printf("submission %d\n", subm.ID)
}

func (v *View) Resolved(subm *api.Submission) {
	dur := time.Since(v.StartedAt).Round(time.Millisecond)
	if subm.Status == api.Accepted {
		okColor.Printf("== %s ==", subm.Status)
	} else {
		badColor.Printf("== %s ==", subm.Status)
	}
	dimColor.Printf(" submission %d, judged after %s\n", subm.ID, dur)
	if subm.Result != "" {
		fmt.Printf("   %s\n", subm.Result)
	}
	if subm.ErrorMessage != "" {
		fmt.Printf("   %s\n", subm.ErrorMessage)
	}
	if subm.Status.IsTerminal() && subm.Status != api.CompilationError {
		dimColor.Printf("   time=%dms mem=%dMB\n", subm.ExecutionTime, subm.MemoryUsed)
	}
}

// TrackingLost is deliberately rendered unlike any verdict: the
// submission was judged or will be, the client just could not confirm
// the outcome.
func (v *View) TrackingLost(submissionID int64, err error) {
	warnColor.Printf("?? status unknown ??")
	dimColor.Printf(" submission %d: %v\n", submissionID, err)
}

// Snapshot prints the leaderboard exactly in server rank order.
func (v *View) Snapshot(contestID int64, entries []api.LeaderboardEntry) {
	headColor.Printf("-- leaderboard, contest %d --\n", contestID)
	if len(entries) == 0 {
		dimColor.Println("   (empty)")
		return
	}
	for i, e := range entries {
		fmt.Printf("%4d. %-20s solved=%d acc=%d/%d time=%d\n",
			i+1, e.Username, e.SolvedProblems,
			e.AcceptedSubmissions, e.TotalSubmissions, e.TotalTime)
	}
}

// Problems prints the contest's problem list in contest order.
func (v *View) Problems(contest *api.Contest) {
	headColor.Printf("== %s ==\n", contest.Name)
	if contest.Description != "" {
		fmt.Println(contest.Description)
	}
	for _, p := range contest.Problems {
		fmt.Printf("%4d. %-30s difficulty=%d tl=%ds ml=%dMB\n",
			p.ID, p.Title, p.Difficulty, p.TimeLimit, p.MemoryLimit)
	}
}

// History prints a user's submissions for one problem, newest first.
func (v *View) History(subms []api.Submission) {
	headColor.Println("-- submission history --")
	if len(subms) == 0 {
		dimColor.Println("   (none)")
		return
	}
	for _, s := range subms {
		if s.Status == api.Accepted {
			okColor.Printf("  %-22s", s.Status)
		} else if s.Status.IsTerminal() {
			badColor.Printf("  %-22s", s.Status)
		} else {
			statusColor.Printf("  %-22s", s.Status)
		}
		fmt.Printf(" id=%d lang=%s at=%s\n", s.ID, s.Language, s.SubmittedAt)
	}
}
