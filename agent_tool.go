package agentexec

import (
	"context"
	"fmt"

	"github.com/lattice-agents/agentexec/src/params"
)

// AgentTool exposes an Agent as a Tool so agents compose: a parent
// agent invokes the child through the same catalog contract as any
// other tool. The child's single input slot is the prompt text.
//
// By default the child runs synchronously inside the parent's
// iteration. With Async set, Run starts a background child run and
// delivers the answer through the caller's ResultCallback, identifying
// the AgentTool itself as the delivery origin.
type AgentTool struct {
	agent       *Agent
	name        string
	description string

	Async bool
}

var _ Tool = (*AgentTool)(nil)

func NewAgentTool(agent *Agent, name, description string) (*AgentTool, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent tool requires an agent")
	}
	if name == "" {
		name = agent.Name()
	}
	if description == "" {
		description = agent.Description()
	}
	return &AgentTool{agent: agent, name: name, description: description}, nil
}

// AsTool wraps the agent as a synchronous tool.
func (a *Agent) AsTool(name, description string) (*AgentTool, error) {
	return NewAgentTool(a, name, description)
}

func (t *AgentTool) Name() string        { return t.name }
func (t *AgentTool) Description() string { return t.description }

func (t *AgentTool) InputDescription() params.InputDescription {
	return params.InputDescription{
		{Type: params.TypeString, Name: "prompt", Description: "task for the delegated agent"},
	}
}

func (t *AgentTool) Run(ctx context.Context, input params.Input, cb ResultCallback) (RunID, string, error) {
	args, err := input.Arguments(t.InputDescription())
	if err != nil {
		return SentinelRunID, "", err
	}
	prompt, _ := args["prompt"].(string)

	if !t.Async || cb == nil {
		_, answer, err := t.agent.Run(ctx, prompt, nil)
		if err != nil {
			return SentinelRunID, "", err
		}
		return SentinelRunID, answer, nil
	}

	// The child's handler needs the run id allocated by Run, which is
	// only known after Run returns; hand it over through a buffered
	// channel so an early delivery does not race the assignment.
	ready := make(chan RunID, 1)
	id, _, err := t.agent.Run(ctx, prompt, func(dctx context.Context, result string, failure error) {
		rid := <-ready
		if failure != nil {
			_ = cb.DeliverFailure(dctx, t, rid, failure)
			return
		}
		_ = cb.DeliverResult(dctx, t, rid, result)
	})
	if err != nil {
		return SentinelRunID, "", err
	}
	ready <- id
	return id, "", nil
}
