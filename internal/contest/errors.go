package contest

import "errors"

// Validation failures are raised before any network call is made.
var (
	ErrNoContest           = errors.New("no contest loaded")
	ErrNoProblemSelected   = errors.New("no problem selected")
	ErrEmptyCode           = errors.New("code is empty")
	ErrUnknownLanguage     = errors.New("unsupported language")
	ErrProblemNotInContest = errors.New("problem is not part of the loaded contest")
)
