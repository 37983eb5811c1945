package results

import "errors"

var (
	ErrLookupRequired  = errors.New("results: lookup collaborator required")
	ErrBoardRequired   = errors.New("results: board required")
	ErrBaseURLRequired = errors.New("results: lookup base url required")
	ErrLookupFailed    = errors.New("results: lookup failed")
)
