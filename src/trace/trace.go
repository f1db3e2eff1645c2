// Package trace persists run completion events so finished runs can be
// audited after the fact.
package trace

import (
	"context"
	"sync"

	"github.com/lattice-agents/agentexec"
)

// InMemorySink retains completion events in arrival order. Intended for
// tests and single-process deployments.
type InMemorySink struct {
	mu     sync.Mutex
	events []agentexec.CompletionEvent
}

var _ agentexec.EventSink = (*InMemorySink)(nil)

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Completed(_ context.Context, ev agentexec.CompletionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *InMemorySink) Events() []agentexec.CompletionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]agentexec.CompletionEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *InMemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
