package models

import "context"

// DecisionKind tags the two legal outcomes of one reasoning step.
type DecisionKind int

const (
	// DecisionUnknown marks output that could not be classified as
	// either outcome. Consumers must not guess; they fail the step.
	DecisionUnknown DecisionKind = iota
	DecisionFinish
	DecisionInvoke
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionFinish:
		return "finish"
	case DecisionInvoke:
		return "invoke"
	default:
		return "unknown"
	}
}

// Decision is the untrusted, untyped record a reasoning provider
// produces for one step. Exactly one of the finish or invoke payloads
// is meaningful, selected by Kind; Arguments are raw text values keyed
// by parameter name and are validated downstream.
type Decision struct {
	Kind      DecisionKind
	Answer    string
	Tool      string
	Arguments map[string]string
	Reasoning string
}

// ParamSpec is the provider-facing rendering of one tool parameter.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ToolDescriptor is the provider-facing rendering of one tool.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Inputs      []ParamSpec `json:"inputs,omitempty"`
}

// Step is one prior iteration of a run: what the provider reasoned and
// what the invoked tool observed back.
type Step struct {
	Reasoning   string `json:"reasoning"`
	Observation string `json:"observation"`
}

// Request carries the task state a provider decides on.
type Request struct {
	Model        string
	Instructions string
	Tools        []ToolDescriptor
	Steps        []Step
	Prompt       string
}

// Provider proposes the next action for a run: finish with an answer,
// or invoke a named tool with text arguments. Implementations may be
// non-deterministic; callers treat the returned Decision as untrusted
// input and validate it at the engine boundary.
type Provider interface {
	Decide(ctx context.Context, req Request) (Decision, error)
}
