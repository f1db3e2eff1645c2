package runstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when no state exists for the run.
var ErrNotFound = errors.New("run state not found")

// Step mirrors one transcript entry of a suspended run.
type Step struct {
	Reasoning   string `json:"reasoning"`
	Observation string `json:"observation"`
}

// RunState is the serializable snapshot of a suspended run: everything
// the loop needs to re-enter iteration Iteration+1 once the pending
// tool's result arrives. It deliberately carries data, not captured
// call-stack state, so an external scheduler can persist and resume it.
type RunState struct {
	RunID         int64     `json:"run_id"`
	Agent         string    `json:"agent"`
	Prompt        string    `json:"prompt"`
	Steps         []Step    `json:"steps,omitempty"`
	Iteration     int       `json:"iteration"`
	MaxIterations int       `json:"max_iterations"`
	PendingTool   string    `json:"pending_tool,omitempty"`
	PendingRunID  int64     `json:"pending_run_id"`
	Reasoning     string    `json:"reasoning,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe to hand across goroutines.
func (s RunState) Clone() RunState {
	out := s
	out.Steps = append([]Step(nil), s.Steps...)
	return out
}

// Store persists suspended run state between the suspension point and
// the callback that resumes it. Save overwrites any previous snapshot
// for the same (agent, run) pair.
type Store interface {
	Save(ctx context.Context, state RunState) error
	Load(ctx context.Context, agent string, runID int64) (RunState, error)
	Delete(ctx context.Context, agent string, runID int64) error
}
