// Package track follows a single submission from creation to a terminal
// verdict. The default source polls the judge; a push source over NATS
// implements the same contract. Either way the consumer sees one
// lifecycle event per observed state and exactly one ending event.
package track

import "github.com/openjudge/arena/api"

// Sink receives submission lifecycle events. Implementations must not
// block for long; events for one submission arrive strictly in order
// from a single goroutine.
type Sink interface {
	// StatusChange reports a newly observed non-terminal status,
	// including the initial one.
	StatusChange(subm *api.Submission)

	// Resolved reports the terminal verdict. It fires at most once;
	// no event for this submission follows it.
	Resolved(subm *api.Submission)

	// TrackingLost reports that the verdict could not be confirmed:
	// a fetch failed or the wait bound elapsed. It is not a verdict.
	TrackingLost(submissionID int64, err error)
}

// progress enforces the forward-only lifecycle order on observed
// statuses. A response ranking below what was already seen is dropped
// so the reported sequence stays non-decreasing.
type progress struct {
	lastStatus api.Status
	lastRank   int
}

func (p *progress) observe(s api.Status) (report bool) {
	r := s.Rank()
	if r < p.lastRank {
		return false
	}
	if r == p.lastRank && s == p.lastStatus {
		return false
	}
	p.lastStatus = s
	p.lastRank = r
	return true
}
