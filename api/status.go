package api

import mapset "github.com/deckarep/golang-set/v2"

// Status is a submission verdict state as reported by the judge.
// Wire values are case-sensitive.
type Status string

const (
	Pending             Status = "PENDING"
	Running             Status = "RUNNING"
	Accepted            Status = "ACCEPTED"
	WrongAnswer         Status = "WRONG_ANSWER"
	TimeLimitExceeded   Status = "TIME_LIMIT_EXCEEDED"
	MemoryLimitExceeded Status = "MEMORY_LIMIT_EXCEEDED"
	RuntimeError        Status = "RUNTIME_ERROR"
	CompilationError    Status = "COMPILATION_ERROR"
)

var terminalStatuses = mapset.NewSet(
	Accepted,
	WrongAnswer,
	TimeLimitExceeded,
	MemoryLimitExceeded,
	RuntimeError,
	CompilationError,
)

// IsTerminal reports whether no further status change is expected
// without a resubmission.
func (s Status) IsTerminal() bool {
	return terminalStatuses.Contains(s)
}

// Rank orders statuses along the submission lifecycle. All terminal
// statuses share the same rank; an unknown status ranks below PENDING
// so that it never masks a real observation.
func (s Status) Rank() int {
	switch s {
	case Pending:
		return 1
	case Running:
		return 2
	}
	if s.IsTerminal() {
		return 3
	}
	return 0
}
