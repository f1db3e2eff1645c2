package agentexec

import (
	"context"
	"time"
)

// CompletionEvent describes the terminal outcome of one run, successful
// or failed. Failure is nil on success; Answer is empty on failure.
// Trace carries the full step transcript in execution order.
type CompletionEvent struct {
	RunID      RunID
	Agent      string
	Requester  string
	Trace      []Step
	Answer     string
	Failure    error
	Iterations int
	At         time.Time
}

// EventSink receives completion events. Emission is best-effort: a sink
// error never alters the outcome of the run that produced the event.
type EventSink interface {
	Completed(ctx context.Context, ev CompletionEvent) error
}
