package judge

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a contest or submission id unknown to the judge.
// Non-2xx responses other than 404 surface as *StatusError; transport
// failures come back wrapped from net/http and match neither.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx judge response with its body retained for
// reporting.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("judge responded %d: %s", e.Code, e.Body)
}
