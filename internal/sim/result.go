package sim

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced alongside a failed Result. None of them is fatal:
// the caller always gets text and an outcome.
var (
	ErrMissingArgument = errors.New("missing argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPullDenied      = errors.New("pull access denied")
	ErrUnrecognized    = errors.New("unrecognized command")
)

// Outcome is the tri-state success flag of a command
type Outcome int

const (
	// OutcomeNone marks results that are not notifiable, such as clear
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "none"
	}
}

// Result is what Execute hands back to the caller
type Result struct {
	Output  string
	Outcome Outcome
	Err     error

	// Clear asks the caller to truncate its transcript
	Clear bool
}

// Success reports whether the command succeeded
func (r Result) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// Actionable reports whether the outcome is defined and therefore notifiable
func (r Result) Actionable() bool {
	return r.Outcome != OutcomeNone
}

func succeed(output string) Result {
	return Result{Output: output, Outcome: OutcomeSuccess}
}

func fail(kind error, detail, output string) Result {
	err := kind
	if detail != "" {
		err = fmt.Errorf("%w: %s", kind, detail)
	}
	return Result{Output: output, Outcome: OutcomeFailure, Err: err}
}
