package agentexec

import (
	"context"
	"errors"
	"fmt"

	"github.com/lattice-agents/agentexec/src/models"
	"github.com/lattice-agents/agentexec/src/params"
)

// Step is one completed iteration of a run: the reasoning that chose an
// action and the observation the action produced.
type Step struct {
	Reasoning   string
	Observation string
}

// EngineInput is the task state one iteration decides on. The catalog
// and the identity fields are immutable for the life of the run; Steps
// grows by one per iteration.
type EngineInput struct {
	Model        string
	Instructions string
	Catalog      ToolCatalog
	Steps        []Step
	Prompt       string
}

// IterationResult is the outcome of one iteration. Done selects the
// variant: a final answer, or a tool invocation with its marshalled
// input. Consumers branch on Done and never read the other variant's
// fields.
type IterationResult struct {
	Done      bool
	Answer    string
	Tool      Tool
	Input     params.Input
	Reasoning string
}

// IterationEngine produces one IterationResult per call. It owns the
// single trust boundary between the provider's untyped text output and
// the typed invocation contract: every decision is validated and
// marshalled here, never downstream. Beyond consulting the provider it
// is pure; it holds no run state.
type IterationEngine struct {
	provider models.Provider
}

func NewIterationEngine(provider models.Provider) (*IterationEngine, error) {
	if provider == nil {
		return nil, errors.New("engine requires a reasoning provider")
	}
	return &IterationEngine{provider: provider}, nil
}

// Step runs one reasoning cycle and, for tool decisions, marshals the
// provider's text arguments into the tool's typed input.
func (e *IterationEngine) Step(ctx context.Context, in EngineInput) (IterationResult, error) {
	req := models.Request{
		Model:        in.Model,
		Instructions: in.Instructions,
		Prompt:       in.Prompt,
	}
	if in.Catalog != nil {
		req.Tools = in.Catalog.Descriptors()
	}
	for _, step := range in.Steps {
		req.Steps = append(req.Steps, models.Step{
			Reasoning:   step.Reasoning,
			Observation: step.Observation,
		})
	}

	decision, err := e.provider.Decide(ctx, req)
	if err != nil {
		return IterationResult{}, fmt.Errorf("reasoning provider: %w", err)
	}

	switch decision.Kind {
	case models.DecisionFinish:
		// Explicit final-answer framing is authoritative even when the
		// decision also carries tool-like fields.
		return IterationResult{
			Done:      true,
			Answer:    decision.Answer,
			Reasoning: decision.Reasoning,
		}, nil

	case models.DecisionInvoke:
		if in.Catalog == nil {
			return IterationResult{}, fmt.Errorf("%w: %q (no catalog)", ErrUnknownTool, decision.Tool)
		}
		tool, ok := in.Catalog.Lookup(decision.Tool)
		if !ok {
			return IterationResult{}, fmt.Errorf("%w: %q", ErrUnknownTool, decision.Tool)
		}
		input, err := MarshalArguments(tool.InputDescription(), decision.Arguments)
		if err != nil {
			return IterationResult{}, fmt.Errorf("tool %q: %w", tool.Name(), err)
		}
		return IterationResult{
			Tool:      tool,
			Input:     input,
			Reasoning: decision.Reasoning,
		}, nil

	default:
		// Never guess between completion and invocation.
		return IterationResult{}, fmt.Errorf("%w: provider output named no recognizable action", ErrAmbiguousDecision)
	}
}

// MarshalArguments binds an untyped name→text argument map to a tool's
// declared input, producing both the ordered value sequence and the
// combined blob. Slot order follows the declaration regardless of map
// order: downstream callees may bind positionally, so the ordering is
// load-bearing.
func MarshalArguments(desc params.InputDescription, args map[string]string) (params.Input, error) {
	values := make([]params.ParamValue, 0, len(desc))
	for _, pd := range desc {
		text, ok := args[pd.Name]
		if !ok {
			return params.Input{}, fmt.Errorf("%w: %q", ErrMissingParameter, pd.Name)
		}
		value, err := params.EncodeText(pd.Type, text)
		if err != nil {
			return params.Input{}, fmt.Errorf("%w: %q: %v", ErrParameterEncoding, pd.Name, err)
		}
		values = append(values, value)
	}
	return params.NewInput(values), nil
}
