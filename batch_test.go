package agentexec

import (
	"context"
	"testing"

	"github.com/lattice-agents/agentexec/src/models"
)

func TestRunBatchPreservesPromptOrder(t *testing.T) {
	agent, err := New(Options{
		Provider: models.NewScriptedProvider(finish("a"), finish("b"), finish("c")),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prompts := []string{"one", "two", "three"}
	results := RunBatch(context.Background(), agent, prompts, 2)
	if len(results) != 3 {
		t.Fatalf("len = %d", len(results))
	}
	answers := map[string]bool{}
	for i, res := range results {
		if res.Prompt != prompts[i] {
			t.Fatalf("result %d has prompt %q", i, res.Prompt)
		}
		if res.Err != nil {
			t.Fatalf("result %d failed: %v", i, res.Err)
		}
		answers[res.Answer] = true
	}
	// The scripted decisions are handed out in call order, which is
	// nondeterministic under concurrency; all three must still land.
	for _, want := range []string{"a", "b", "c"} {
		if !answers[want] {
			t.Fatalf("answer %q missing from %v", want, answers)
		}
	}
}

func TestRunBatchRecordsPerPromptFailures(t *testing.T) {
	agent, err := New(Options{
		Provider: models.NewScriptedProvider(finish("only one")),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := RunBatch(context.Background(), agent, []string{"first", "second"}, 1)
	var ok, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	if ok != 1 || failed != 1 {
		t.Fatalf("ok=%d failed=%d", ok, failed)
	}
}
