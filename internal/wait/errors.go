package wait

import (
	"errors"
	"fmt"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrTerminalFailure   = errors.New("resource reported a terminal failure")
	ErrTimeout           = errors.New("timed out waiting for resource")
	ErrQueryRequired     = errors.New("status query is required")
	ErrSuccessRequired   = errors.New("success predicate is required")
	ErrNegativeTimeout   = errors.New("timeout must not be negative")
	ErrNegativeInterval  = errors.New("poll interval must not be negative")
	ErrUnexpectedNilTask = errors.New("task query returned no task")
	ErrTaskIDRequired    = errors.New("task id is required")
	ErrIncompleteAppRef  = errors.New("application reference needs org, space, instance and app")
)

// QueryError reports that fetching the status of the polled resource failed.
// The underlying error is kept as is so callers can still inspect it with
// errors.As (for example to reach a *nuvolos.APIError).
type QueryError struct {
	Target string
	Tick   int
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("querying status of %s: %v", e.Target, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// TerminalFailureError reports that the polled resource itself ended in a
// failed, cancelled or unexpected state. Reason is the resource's own
// diagnostic.
type TerminalFailureError struct {
	Target string
	Status string
	Reason string
}

func (e *TerminalFailureError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Target, e.Reason)
}

func (e *TerminalFailureError) Is(target error) bool {
	return target == ErrTerminalFailure
}

// TimeoutError reports that the time budget ran out while the resource was
// still pending. Phase is set when a phase-specific budget applied.
type TimeoutError struct {
	Target     string
	Phase      string
	LastStatus string
	Timeout    time.Duration
	Elapsed    time.Duration
}

func (e *TimeoutError) Error() string {
	budget := "timeout"
	if e.Phase != "" {
		budget = e.Phase + " timeout"
	}

	return fmt.Sprintf("timed out waiting for %s after %s (%s %s exceeded, last status: %s)",
		e.Target, e.Elapsed.Round(time.Second), budget, e.Timeout, e.LastStatus)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
