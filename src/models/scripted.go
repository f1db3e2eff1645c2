package models

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedProvider replays a fixed sequence of decisions. It is the
// deterministic stand-in used by tests and demos, where real model
// calls would be slow, costly, and flaky.
type ScriptedProvider struct {
	mu        sync.Mutex
	decisions []Decision
	calls     int

	// LastRequest keeps the most recent request for assertions.
	LastRequest Request
}

func NewScriptedProvider(decisions ...Decision) *ScriptedProvider {
	return &ScriptedProvider{decisions: decisions}
}

func (p *ScriptedProvider) Decide(_ context.Context, req Request) (Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LastRequest = req
	if p.calls >= len(p.decisions) {
		return Decision{}, fmt.Errorf("scripted provider exhausted after %d decisions", len(p.decisions))
	}
	d := p.decisions[p.calls]
	p.calls++
	return d, nil
}

// Calls reports how many decisions have been consumed.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var _ Provider = (*ScriptedProvider)(nil)
