package feed

import "errors"

var (
	ErrParse      = errors.New("feed: parse error")
	ErrValidation = errors.New("feed: validation error")
	ErrBadClock   = errors.New("feed: bad clock value")
)

// Code classifies a non-fatal failure surfaced to the display layer.
type Code string

const (
	CodeParse      Code = "parse_error"
	CodeValidation Code = "validation_error"
	CodeConnection Code = "connection_error"
	CodeLookup     Code = "lookup_error"
)

// CodeFor maps a decode error onto its display code.
func CodeFor(err error) Code {
	if errors.Is(err, ErrValidation) {
		return CodeValidation
	}
	return CodeParse
}
