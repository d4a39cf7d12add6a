package ranking

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCandidates  = errors.New("no candidates to match against")
	ErrInvalidReference = errors.New("invalid reference image")
)

// CandidateError reports which candidate made a ranking call fail.
type CandidateError struct {
	Index int    // position in the input slice
	ID    string // caller supplied identifier
	Err   error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate #%d (%q): %v", e.Index, e.ID, e.Err)
}

func (e *CandidateError) Unwrap() error {
	return e.Err
}
