package runstore

import (
	"context"
	"sync"
	"time"
)

type stateKey struct {
	agent string
	runID int64
}

// InMemoryStore keeps suspended run state in process memory. It is the
// default backend for hosts that only need resumption within a single
// process lifetime.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[stateKey]RunState
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[stateKey]RunState)}
}

func (s *InMemoryStore) Save(_ context.Context, state RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.UpdatedAt = time.Now().UTC()
	s.states[stateKey{state.Agent, state.RunID}] = state.Clone()
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, agent string, runID int64) (RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[stateKey{agent, runID}]
	if !ok {
		return RunState{}, ErrNotFound
	}
	return state.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, agent string, runID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, stateKey{agent, runID})
	return nil
}

// Len reports how many runs are currently suspended.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

var _ Store = (*InMemoryStore)(nil)
