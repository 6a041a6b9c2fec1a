// Package wait polls remote resources until they reach a terminal state.
//
// Poll drives a fixed-interval loop around a caller-supplied status query and
// resolves to exactly one Outcome: Succeeded, Failed or TimedOut. Query
// errors are never retried; they end the poll immediately as a *QueryError.
// Wait turns non-success outcomes into *TerminalFailureError and
// *TimeoutError values suitable for showing to a user.
//
// ForWorkload and ForTask are the two instantiations used by the CLI: the
// first waits for an application workload to report RUNNING, the second
// waits for an asynchronous platform task to finish. The API client answers
// their status queries with a single HTTP attempt, so a tick is one request
// and a wait overruns its budget by at most one query plus the HTTP timeout.
package wait
