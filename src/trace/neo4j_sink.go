package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lattice-agents/agentexec"
)

// neo4jExecutor abstracts the slice of the Neo4j driver the sink uses.
// Tests supply fakes; production code wraps the official driver via
// WrapNeo4jDriver (guarded behind the neo4j build tag).
type neo4jExecutor interface {
	Run(ctx context.Context, query string, params map[string]any) error
	Close(ctx context.Context) error
}

// ErrNeo4jUnavailable is returned when the sink is used without a
// configured executor.
var ErrNeo4jUnavailable = errors.New("neo4j executor not configured")

// Neo4jSink writes each completion event as a Run node linked to
// ordered Iteration nodes, so transcripts can be walked as a graph.
type Neo4jSink struct {
	exec     neo4jExecutor
	database string
}

var _ agentexec.EventSink = (*Neo4jSink)(nil)

func NewNeo4jSink(exec neo4jExecutor, database string) (*Neo4jSink, error) {
	if exec == nil {
		return nil, ErrNeo4jUnavailable
	}
	return &Neo4jSink{exec: exec, database: database}, nil
}

// CreateSchema ensures the uniqueness constraint the sink relies on.
func (s *Neo4jSink) CreateSchema(ctx context.Context) error {
	if s.exec == nil {
		return ErrNeo4jUnavailable
	}
	queries := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Run) REQUIRE (r.agent, r.run_id) IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (r:Run) ON (r.requester)",
	}
	for _, query := range queries {
		if err := s.exec.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("neo4j schema query: %w", err)
		}
	}
	return nil
}

func (s *Neo4jSink) Completed(ctx context.Context, ev agentexec.CompletionEvent) error {
	if s.exec == nil {
		return ErrNeo4jUnavailable
	}
	failure := ""
	reason := ""
	if ev.Failure != nil {
		failure = ev.Failure.Error()
		reason = agentexec.FailureReason(ev.Failure)
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	params := map[string]any{
		"agent":      ev.Agent,
		"run_id":     int64(ev.RunID),
		"requester":  ev.Requester,
		"answer":     ev.Answer,
		"failure":    failure,
		"reason":     reason,
		"iterations": ev.Iterations,
		"at":         at.UTC().Format(time.RFC3339Nano),
	}
	if err := s.exec.Run(ctx, neo4jUpsertRunCypher, params); err != nil {
		return fmt.Errorf("neo4j upsert run: %w", err)
	}
	for i, step := range ev.Trace {
		stepParams := map[string]any{
			"agent":       ev.Agent,
			"run_id":      int64(ev.RunID),
			"index":       i,
			"reasoning":   step.Reasoning,
			"observation": step.Observation,
		}
		if err := s.exec.Run(ctx, neo4jUpsertStepCypher, stepParams); err != nil {
			return fmt.Errorf("neo4j upsert step %d: %w", i, err)
		}
	}
	return nil
}

func (s *Neo4jSink) Close(ctx context.Context) error {
	if s.exec == nil {
		return nil
	}
	return s.exec.Close(ctx)
}

const (
	neo4jUpsertRunCypher = `
MERGE (r:Run {agent: $agent, run_id: $run_id})
SET r.requester = $requester,
    r.answer = $answer,
    r.failure = $failure,
    r.reason = $reason,
    r.iterations = $iterations,
    r.completed_at = $at
`
	neo4jUpsertStepCypher = `
MATCH (r:Run {agent: $agent, run_id: $run_id})
MERGE (s:Iteration {agent: $agent, run_id: $run_id, index: $index})
SET s.reasoning = $reasoning,
    s.observation = $observation
MERGE (r)-[:STEPPED {index: $index}]->(s)
`
)
