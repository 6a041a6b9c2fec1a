package wait

import (
	"context"
	"time"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
)

// Kind classifies how a poll ended.
type Kind int

const (
	// Succeeded means the success predicate matched.
	Succeeded Kind = iota + 1
	// Failed means the failure predicate matched.
	Failed
	// TimedOut means the resource was still pending when the budget ran out.
	TimedOut
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Phase is a named time budget. An empty Name denotes the overall timeout.
type Phase struct {
	Name    string
	Timeout time.Duration
}

// Tick describes one completed status query.
type Tick struct {
	Number  int
	Status  string
	Elapsed time.Duration
}

// Outcome is the single terminal result of a poll.
type Outcome[S any] struct {
	Kind Kind
	// Snapshot is the last status returned by the query, verbatim.
	Snapshot S
	// Reason is the failure reason when Kind is Failed.
	Reason string
	// Phase is the budget that ran out when Kind is TimedOut.
	Phase   Phase
	Elapsed time.Duration
	Ticks   int
}

// Sleeps returns how many times the poll slept between ticks.
func (o Outcome[S]) Sleeps() int {
	if o.Ticks == 0 {
		return 0
	}

	return o.Ticks - 1
}

// Spec describes a single poll. Query and IsSuccess are required.
type Spec[S any] struct {
	// Target names the polled resource in errors and logs.
	Target string
	// Query fetches a fresh status snapshot. Its errors end the poll.
	Query func(ctx context.Context) (S, error)
	// IsSuccess reports whether the snapshot is the desired terminal state.
	IsSuccess func(S) bool
	// IsFailure reports whether the snapshot is a terminal failure and why.
	IsFailure func(S) (bool, string)
	// Timeout is the overall budget, measured from Start. A zero budget
	// times out on the first pending tick.
	Timeout time.Duration
	// Interval is the fixed delay between ticks (default 5s).
	Interval time.Duration
	// Start defaults to Clock.Now() at invocation.
	Start time.Time
	// Clock defaults to RealClock().
	Clock Clock
	// PhaseTimeout may impose a shorter budget for the current snapshot. A
	// phase budget longer than Timeout is ignored.
	PhaseTimeout func(S) (Phase, bool)
	// Describe renders the status of a snapshot for errors and logs.
	Describe func(S) string
	// Observe is called after every successful query.
	Observe func(Tick)
}

func (s *Spec[S]) validate() error {
	if s.Query == nil {
		return ErrQueryRequired
	}

	if s.IsSuccess == nil {
		return ErrSuccessRequired
	}

	if s.Timeout < 0 {
		return ErrNegativeTimeout
	}

	if s.Interval < 0 {
		return ErrNegativeInterval
	}

	return nil
}

func (s *Spec[S]) describe(snapshot S) string {
	if s.Describe == nil {
		return "pending"
	}

	return s.Describe(snapshot)
}

// Poll queries the resource until it succeeds, fails or runs out of time.
// The returned error is non-nil only when the spec is invalid, the query
// failed (*QueryError) or ctx was cancelled while sleeping.
func Poll[S any](ctx context.Context, spec Spec[S]) (Outcome[S], error) {
	err := spec.validate()
	if err != nil {
		return Outcome[S]{}, err
	}

	clock := spec.Clock
	if clock == nil {
		clock = RealClock()
	}

	interval := spec.Interval
	if interval == 0 {
		interval = constants.DefaultPollInterval
	}

	start := spec.Start
	if start.IsZero() {
		start = clock.Now()
	}

	var outcome Outcome[S]

	for tick := 1; ; tick++ {
		outcome.Ticks = tick

		snapshot, err := spec.Query(ctx)
		if err != nil {
			outcome.Elapsed = elapsedSince(clock, start)

			return outcome, &QueryError{Target: spec.Target, Tick: tick, Err: err}
		}

		outcome.Snapshot = snapshot
		outcome.Elapsed = elapsedSince(clock, start)

		if spec.Observe != nil {
			spec.Observe(Tick{Number: tick, Status: spec.describe(snapshot), Elapsed: outcome.Elapsed})
		}

		if spec.IsSuccess(snapshot) {
			outcome.Kind = Succeeded

			return outcome, nil
		}

		if spec.IsFailure != nil {
			if failed, reason := spec.IsFailure(snapshot); failed {
				outcome.Kind = Failed
				outcome.Reason = reason

				return outcome, nil
			}
		}

		budget := Phase{Timeout: spec.Timeout}
		if spec.PhaseTimeout != nil {
			if phase, ok := spec.PhaseTimeout(snapshot); ok && phase.Timeout < budget.Timeout {
				budget = phase
			}
		}

		// Strictly greater: a pending resource gets one more tick when the
		// elapsed time equals the budget exactly.
		if budget.Timeout == 0 || outcome.Elapsed > budget.Timeout {
			outcome.Kind = TimedOut
			outcome.Phase = budget

			return outcome, nil
		}

		err = clock.Sleep(ctx, interval)
		if err != nil {
			return outcome, err
		}
	}
}

// Wait runs Poll and converts failed and timed out outcomes into errors. The
// last snapshot is returned in every case where one was obtained.
func Wait[S any](ctx context.Context, spec Spec[S]) (S, error) {
	outcome, err := Poll(ctx, spec)
	if err != nil {
		return outcome.Snapshot, err
	}

	switch outcome.Kind {
	case Succeeded:
		return outcome.Snapshot, nil
	case Failed:
		return outcome.Snapshot, &TerminalFailureError{
			Target: spec.Target,
			Status: spec.describe(outcome.Snapshot),
			Reason: outcome.Reason,
		}
	default:
		return outcome.Snapshot, &TimeoutError{
			Target:     spec.Target,
			Phase:      outcome.Phase.Name,
			LastStatus: spec.describe(outcome.Snapshot),
			Timeout:    outcome.Phase.Timeout,
			Elapsed:    outcome.Elapsed,
		}
	}
}

func elapsedSince(clock Clock, start time.Time) time.Duration {
	elapsed := clock.Now().Sub(start)
	if elapsed < 0 {
		return 0
	}

	return elapsed
}
