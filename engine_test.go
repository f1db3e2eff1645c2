package agentexec

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lattice-agents/agentexec/src/models"
	"github.com/lattice-agents/agentexec/src/params"
)

// echoTool is a synchronous stub recording every invocation.
type echoTool struct {
	mu     sync.Mutex
	name   string
	inputs params.InputDescription
	result string
	err    error
	calls  []params.Input
}

func (t *echoTool) Name() string                              { return t.name }
func (t *echoTool) Description() string                       { return "stub tool " + t.name }
func (t *echoTool) InputDescription() params.InputDescription { return t.inputs }

func (t *echoTool) Run(_ context.Context, input params.Input, _ ResultCallback) (RunID, string, error) {
	t.mu.Lock()
	t.calls = append(t.calls, input)
	t.mu.Unlock()
	if t.err != nil {
		return SentinelRunID, "", t.err
	}
	return SentinelRunID, t.result, nil
}

func (t *echoTool) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

func (t *echoTool) lastInput(tb testing.TB) params.Input {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		tb.Fatal("tool was never invoked")
	}
	return t.calls[len(t.calls)-1]
}

func lookupDesc() params.InputDescription {
	return params.InputDescription{
		{Type: params.TypeString, Name: "symbol", Description: "asset symbol"},
		{Type: params.TypeUint, Name: "amount", Description: "quantity"},
	}
}

func newTestEngine(t *testing.T, decisions ...models.Decision) (*IterationEngine, ToolCatalog, *echoTool) {
	t.Helper()
	tool := &echoTool{name: "lookup", inputs: lookupDesc(), result: "price=42"}
	catalog, err := NewStaticToolCatalog([]Tool{tool})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	engine, err := NewIterationEngine(models.NewScriptedProvider(decisions...))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return engine, catalog, tool
}

func TestEngineStepFinish(t *testing.T) {
	engine, catalog, _ := newTestEngine(t, models.Decision{
		Kind:   models.DecisionFinish,
		Answer: "done",
	})

	res, err := engine.Step(context.Background(), EngineInput{Catalog: catalog, Prompt: "task"})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !res.Done || res.Answer != "done" {
		t.Fatalf("got %+v, want finished with answer %q", res, "done")
	}
	if res.Tool != nil {
		t.Fatalf("finish result carries a tool: %v", res.Tool.Name())
	}
}

func TestEngineStepMarshalsArguments(t *testing.T) {
	engine, catalog, tool := newTestEngine(t, models.Decision{
		Kind:      models.DecisionInvoke,
		Tool:      "lookup",
		Arguments: map[string]string{"amount": "7", "symbol": "ETH"},
		Reasoning: "need a quote",
	})

	res, err := engine.Step(context.Background(), EngineInput{Catalog: catalog, Prompt: "task"})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Done {
		t.Fatal("expected an invocation, got a final answer")
	}
	if res.Tool != Tool(tool) {
		t.Fatalf("resolved wrong tool %q", res.Tool.Name())
	}
	if res.Reasoning != "need a quote" {
		t.Fatalf("reasoning = %q", res.Reasoning)
	}

	// Slot order follows the declaration, not the argument map.
	args, err := res.Input.Arguments(tool.InputDescription())
	if err != nil {
		t.Fatalf("Arguments: %v", err)
	}
	if got := args["symbol"]; got != "ETH" {
		t.Fatalf("symbol = %v", got)
	}
	if got := args["amount"]; got != uint64(7) {
		t.Fatalf("amount = %v", got)
	}
	if res.Input.Values[0].Type != params.TypeString || res.Input.Values[1].Type != params.TypeUint {
		t.Fatalf("values out of declaration order: %+v", res.Input.Values)
	}
}

func TestEngineStepUnknownTool(t *testing.T) {
	engine, catalog, _ := newTestEngine(t, models.Decision{
		Kind:      models.DecisionInvoke,
		Tool:      "teleport",
		Arguments: map[string]string{},
	})

	_, err := engine.Step(context.Background(), EngineInput{Catalog: catalog})
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("err = %v, want ErrUnknownTool", err)
	}
}

func TestEngineStepMissingParameter(t *testing.T) {
	engine, catalog, tool := newTestEngine(t, models.Decision{
		Kind:      models.DecisionInvoke,
		Tool:      "lookup",
		Arguments: map[string]string{"symbol": "ETH"},
	})

	_, err := engine.Step(context.Background(), EngineInput{Catalog: catalog})
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("err = %v, want ErrMissingParameter", err)
	}
	if tool.callCount() != 0 {
		t.Fatal("tool was invoked despite marshalling failure")
	}
}

func TestEngineStepParameterEncodingError(t *testing.T) {
	engine, catalog, _ := newTestEngine(t, models.Decision{
		Kind:      models.DecisionInvoke,
		Tool:      "lookup",
		Arguments: map[string]string{"symbol": "ETH", "amount": "not-a-number"},
	})

	_, err := engine.Step(context.Background(), EngineInput{Catalog: catalog})
	if !errors.Is(err, ErrParameterEncoding) {
		t.Fatalf("err = %v, want ErrParameterEncoding", err)
	}
}

func TestEngineStepAmbiguousDecision(t *testing.T) {
	engine, catalog, _ := newTestEngine(t, models.Decision{Kind: models.DecisionUnknown})

	_, err := engine.Step(context.Background(), EngineInput{Catalog: catalog})
	if !errors.Is(err, ErrAmbiguousDecision) {
		t.Fatalf("err = %v, want ErrAmbiguousDecision", err)
	}
}

func TestEngineStepProviderError(t *testing.T) {
	engine, err := NewIterationEngine(models.NewScriptedProvider())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if _, err := engine.Step(context.Background(), EngineInput{}); err == nil {
		t.Fatal("expected error from exhausted provider")
	}
}

func TestMarshalArgumentsOrderIndependence(t *testing.T) {
	desc := lookupDesc()
	a, err := MarshalArguments(desc, map[string]string{"symbol": "BTC", "amount": "3"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := MarshalArguments(desc, map[string]string{"amount": "3", "symbol": "BTC"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a.Blob) != string(b.Blob) {
		t.Fatal("blob depends on argument map order")
	}
}
