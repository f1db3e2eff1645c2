package agentexec

import (
	"context"
	"sync"
)

// BatchResult is the outcome of one prompt in a batch.
type BatchResult struct {
	Prompt string
	Answer string
	Err    error
}

// RunBatch executes one synchronous run per prompt with at most
// maxConcurrency runs in flight. Results come back in prompt order;
// individual failures are recorded per result, not returned, so one bad
// prompt does not cost the rest of the batch.
func RunBatch(ctx context.Context, agent *Agent, prompts []string, maxConcurrency int) []BatchResult {
	if len(prompts) == 0 {
		return nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}

	results := make([]BatchResult, len(prompts))
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, prompt := range prompts {
		wg.Add(1)
		go func(idx int, prompt string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				results[idx] = BatchResult{Prompt: prompt, Err: ctx.Err()}
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()
			_, answer, err := agent.Run(ctx, prompt, nil)
			results[idx] = BatchResult{Prompt: prompt, Answer: answer, Err: err}
		}(i, prompt)
	}
	wg.Wait()
	return results
}
