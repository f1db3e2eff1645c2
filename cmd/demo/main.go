// Command demo runs one agent loop end to end. With the default
// scripted provider it needs no credentials; pass -provider to drive a
// real model instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lattice-agents/agentexec"
	"github.com/lattice-agents/agentexec/src/models"
	"github.com/lattice-agents/agentexec/src/params"
	"github.com/lattice-agents/agentexec/src/trace"
)

func main() {
	var (
		providerName = flag.String("provider", "scripted", "Reasoning provider: scripted, ollama, openai, anthropic or gemini")
		modelName    = flag.String("model", "", "Model identifier passed to the provider")
		prompt       = flag.String("prompt", "What is 6 times 7?", "Task for the agent")
		iterations   = flag.Int("iterations", agentexec.DefaultMaxIterations, "Iteration budget for the run")
		timeout      = flag.Duration("step-timeout", 30*time.Second, "Wall-clock budget per iteration")
	)
	flag.Parse()

	ctx := context.Background()

	provider, err := buildProvider(ctx, *providerName, *modelName)
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}

	sink := trace.NewInMemorySink()
	agent, err := agentexec.New(agentexec.Options{
		Name:             "demo",
		Instructions:     "Answer the user's question, using the calculator for arithmetic.",
		Model:            *modelName,
		Provider:         provider,
		Tools:            []agentexec.Tool{newCalculator()},
		MaxIterations:    *iterations,
		IterationTimeout: *timeout,
		Sink:             sink,
		Requester:        "demo-cli",
	})
	if err != nil {
		log.Fatalf("failed to create agent: %v", err)
	}

	_, answer, err := agent.Run(ctx, *prompt, nil)
	if err != nil {
		log.Fatalf("run failed (%s): %v", agentexec.FailureReason(err), err)
	}

	for _, ev := range sink.Events() {
		for i, step := range ev.Trace {
			fmt.Printf("iteration %d\n  thought: %s\n  observation: %s\n", i+1, step.Reasoning, step.Observation)
		}
	}
	fmt.Printf("answer: %s\n", answer)
}

func buildProvider(ctx context.Context, name, model string) (models.Provider, error) {
	switch strings.ToLower(name) {
	case "scripted":
		return models.NewScriptedProvider(
			models.Decision{
				Kind:      models.DecisionInvoke,
				Tool:      "calculator",
				Arguments: map[string]string{"a": "6", "b": "7", "op": "mul"},
				Reasoning: "The question is arithmetic, so I should multiply.",
			},
			models.Decision{
				Kind:   models.DecisionFinish,
				Answer: "6 times 7 is 42.",
			},
		), nil
	case "ollama":
		return models.NewOllamaProvider(model)
	case "openai":
		return models.NewOpenAIProvider(model), nil
	case "anthropic":
		return models.NewAnthropicProvider(model), nil
	case "gemini":
		return models.NewGeminiProvider(ctx, model)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

type calcInvoker struct{}

func (calcInvoker) Invoke(_ context.Context, _ string, payload []byte) (any, error) {
	desc := calcInputs()
	values, err := params.DecodeBlob(desc, payload)
	if err != nil {
		return nil, err
	}
	args, err := params.NewInput(values).Arguments(desc)
	if err != nil {
		return nil, err
	}
	a := args["a"].(int64)
	b := args["b"].(int64)
	switch args["op"].(string) {
	case "add":
		return strconv.FormatInt(a+b, 10), nil
	case "sub":
		return strconv.FormatInt(a-b, 10), nil
	case "mul":
		return strconv.FormatInt(a*b, 10), nil
	default:
		return nil, fmt.Errorf("unknown operation %q", args["op"])
	}
}

func calcInputs() params.InputDescription {
	return params.InputDescription{
		{Type: params.TypeInt, Name: "a", Description: "left operand"},
		{Type: params.TypeInt, Name: "b", Description: "right operand"},
		{Type: params.TypeString, Name: "op", Description: "add, sub or mul"},
	}
}

func newCalculator() agentexec.Tool {
	tool, err := agentexec.NewDelegatingTool(
		"calculator",
		"Integer arithmetic over two operands.",
		calcInputs(),
		calcInvoker{},
		"calc.v1",
		nil,
	)
	if err != nil {
		log.Fatalf("failed to create calculator: %v", err)
	}
	return tool
}
