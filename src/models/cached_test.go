package models

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestCachedProviderMemoisesDecisions(t *testing.T) {
	inner := NewScriptedProvider(
		Decision{Kind: DecisionFinish, Answer: "first"},
		Decision{Kind: DecisionFinish, Answer: "second"},
	)
	cached := NewCachedProvider(inner, 8, time.Minute, "")
	req := Request{Prompt: "same question"}

	a, err := cached.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	b, err := cached.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if a.Answer != "first" || b.Answer != "first" {
		t.Fatalf("answers = %q, %q", a.Answer, b.Answer)
	}
	if inner.Calls() != 1 {
		t.Fatalf("inner called %d times", inner.Calls())
	}

	// A different prompt misses the cache.
	c, err := cached.Decide(context.Background(), Request{Prompt: "other question"})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if c.Answer != "second" {
		t.Fatalf("answer = %q", c.Answer)
	}
}

func TestCachedProviderPersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")
	req := Request{Prompt: "persisted question"}

	first := NewCachedProvider(
		NewScriptedProvider(Decision{Kind: DecisionFinish, Answer: "kept"}),
		8, time.Minute, path,
	)
	if _, err := first.Decide(context.Background(), req); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	// A fresh provider with an empty script must answer from disk.
	second := NewCachedProvider(NewScriptedProvider(), 8, time.Minute, path)
	d, err := second.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide after restart: %v", err)
	}
	if d.Answer != "kept" {
		t.Fatalf("answer = %q", d.Answer)
	}
}
