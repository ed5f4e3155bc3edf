package dispatch

import (
	"errors"
	"fmt"
)

// UserNotice is the only failure text shown to the operator. Details go to the log.
const UserNotice = "Failed to process the request. Please try again."

// ErrInFlight is returned when a dispatch is attempted while another one
// is still outstanding. Nothing is done.
var ErrInFlight = errors.New("a request is already being processed")

// Step identifies the pipeline step that failed.
type Step string

const (
	StepCompose Step = "COMPOSE"
	StepRender  Step = "RENDER"
	StepSpool   Step = "SPOOL"
	StepSave    Step = "SAVE"
	StepUpload  Step = "UPLOAD"
	StepLink    Step = "LINK"
	StepSummary Step = "SUMMARY"
	StepOpen    Step = "OPEN"
)

// Error reports the failing step of a dispatch together with its cause.
type Error struct {
	Step Step
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FailedStep returns the step an error occurred in, if err is or wraps an *Error.
func FailedStep(err error) (Step, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Step, true
	}
	return "", false
}

func stepError(step Step, err error) *Error {
	return &Error{Step: step, Err: err}
}
