package agentexec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lattice-agents/agentexec/src/params"
)

// RunID correlates an asynchronous invocation with its eventual
// callback delivery. Non-negative ids mean "pending; a delivery with
// this id will follow".
type RunID int64

// SentinelRunID is the reserved id meaning "already completed
// synchronously; do not expect a callback".
const SentinelRunID RunID = -1

// Origin identifies the capability that produced a result delivery.
// Receivers compare origins by identity, not by name.
type Origin interface {
	Name() string
}

// ResultCallback is the asynchronous completion path. A holder of a
// non-negative RunID receives exactly one terminal delivery for it,
// either a result or a failure, and must verify the delivery's origin
// matches the capability it invoked before trusting the payload.
type ResultCallback interface {
	DeliverResult(ctx context.Context, origin Origin, id RunID, result string) error
	DeliverFailure(ctx context.Context, origin Origin, id RunID, failure error) error
}

// Tool is any callable capability, including a wrapped agent. Run picks
// exactly one completion mode per call: complete before returning with
// (SentinelRunID, text), or return a non-negative RunID immediately and
// later deliver the result to handler. Implementations must not mix
// the two.
//
// Name, Description and InputDescription are static metadata: repeated
// calls without intervening mutation return identical values.
type Tool interface {
	Name() string
	Description() string
	InputDescription() params.InputDescription
	Run(ctx context.Context, input params.Input, handler ResultCallback) (RunID, string, error)
}

// ImplementsTool probes whether a handle satisfies the Tool contract.
// It returns ErrNotSupported for handles that do not, which callers
// must treat as distinct from a failed invocation.
func ImplementsTool(v any) error {
	if v == nil {
		return fmt.Errorf("%w: nil handle", ErrNotSupported)
	}
	if _, ok := v.(Tool); !ok {
		return fmt.Errorf("%w: %T", ErrNotSupported, v)
	}
	return nil
}

// Invoker is the external callable a DelegatingTool forwards to. The
// selector is fixed per tool; the payload is the input's combined
// binary blob (the fast path: callees that bind positionally never
// need the per-slot values).
type Invoker interface {
	Invoke(ctx context.Context, selector string, payload []byte) (any, error)
}

// ResultConverter renders a raw return value into the human-readable
// observation fed back into the transcript.
type ResultConverter func(any) (string, error)

// StaticResult ignores the raw return value and always reports the
// given text. Useful when the side effect itself is the only meaningful
// outcome ("successfully deposited").
func StaticResult(text string) ResultConverter {
	return func(any) (string, error) { return text, nil }
}

func sprintResult(v any) (string, error) {
	return fmt.Sprint(v), nil
}

// DelegatingTool forwards invocations to an external callable using a
// fixed selector and converts the raw return into observation text.
// Failure of the underlying call is the tool's own failure; it is never
// swallowed into a fake observation.
type DelegatingTool struct {
	name        string
	description string
	inputs      params.InputDescription
	invoker     Invoker
	selector    string
	convert     ResultConverter
}

func NewDelegatingTool(name, description string, inputs params.InputDescription, invoker Invoker, selector string, convert ResultConverter) (*DelegatingTool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("tool name is empty")
	}
	if invoker == nil {
		return nil, errors.New("tool requires an invoker")
	}
	if err := inputs.Validate(); err != nil {
		return nil, fmt.Errorf("tool %q: %w", name, err)
	}
	if convert == nil {
		convert = sprintResult
	}
	return &DelegatingTool{
		name:        name,
		description: description,
		inputs:      inputs,
		invoker:     invoker,
		selector:    selector,
		convert:     convert,
	}, nil
}

func (t *DelegatingTool) Name() string                              { return t.name }
func (t *DelegatingTool) Description() string                       { return t.description }
func (t *DelegatingTool) InputDescription() params.InputDescription { return t.inputs }

func (t *DelegatingTool) Run(ctx context.Context, input params.Input, _ ResultCallback) (RunID, string, error) {
	raw, err := t.invoker.Invoke(ctx, t.selector, input.Blob)
	if err != nil {
		return SentinelRunID, "", fmt.Errorf("invoke %q: %w", t.selector, err)
	}
	text, err := t.convert(raw)
	if err != nil {
		return SentinelRunID, "", fmt.Errorf("convert result of %q: %w", t.selector, err)
	}
	return SentinelRunID, text, nil
}

var _ Tool = (*DelegatingTool)(nil)
