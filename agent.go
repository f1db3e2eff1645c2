package agentexec

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lattice-agents/agentexec/src/models"
	"github.com/lattice-agents/agentexec/src/runstore"
)

// DefaultMaxIterations caps a run when Options leaves the budget unset.
const DefaultMaxIterations = 8

// Options configures an Agent. Provider is the only required field;
// everything else has a workable default. Tools given here are
// registered into the catalog at construction time.
type Options struct {
	Name         string
	Description  string
	Instructions string
	Model        string
	Provider     models.Provider

	Tools   []Tool
	Catalog ToolCatalog

	// MaxIterations bounds the run loop; zero means DefaultMaxIterations.
	MaxIterations int

	// IterationTimeout bounds a single reasoning step. Zero disables
	// the per-step deadline (the caller's context still applies).
	IterationTimeout time.Duration

	// Sink receives completion events, best-effort.
	Sink EventSink

	// Requester labels completion events with the party the run was
	// performed for.
	Requester string

	// RunStore enables resumable suspension across asynchronous tool
	// invocations. Without it, async tools are rejected outright.
	RunStore runstore.Store
}

// Agent drives bounded iterative runs: each iteration asks the engine
// for one decision and either finishes with an answer or invokes a tool
// and feeds the observation back in. Safe for concurrent runs.
type Agent struct {
	name         string
	description  string
	instructions string
	model        string

	engine  *IterationEngine
	catalog ToolCatalog

	maxIterations    int
	iterationTimeout time.Duration

	sink      EventSink
	requester string
	store     runstore.Store

	callbacks *CallbackRegistry
	runs      atomic.Int64
}

func New(opts Options) (*Agent, error) {
	if opts.Provider == nil {
		return nil, errors.New("agent requires a reasoning provider")
	}
	if opts.Name == "" {
		opts.Name = "agent"
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	catalog := opts.Catalog
	if catalog == nil {
		var err error
		catalog, err = NewStaticToolCatalog(opts.Tools)
		if err != nil {
			return nil, err
		}
	} else {
		for _, tool := range opts.Tools {
			if err := catalog.Register(tool); err != nil {
				return nil, err
			}
		}
	}

	engine, err := NewIterationEngine(opts.Provider)
	if err != nil {
		return nil, err
	}

	return &Agent{
		name:             opts.Name,
		description:      opts.Description,
		instructions:     opts.Instructions,
		model:            opts.Model,
		engine:           engine,
		catalog:          catalog,
		maxIterations:    opts.MaxIterations,
		iterationTimeout: opts.IterationTimeout,
		sink:             opts.Sink,
		requester:        opts.Requester,
		store:            opts.RunStore,
		callbacks:        NewCallbackRegistry(),
	}, nil
}

func (a *Agent) Name() string        { return a.name }
func (a *Agent) Description() string { return a.description }

// Catalog exposes the agent's tool catalog for registration after
// construction.
func (a *Agent) Catalog() ToolCatalog { return a.catalog }

// Callbacks exposes the registry asynchronous tools deliver through.
func (a *Agent) Callbacks() *CallbackRegistry { return a.callbacks }

// errSuspended marks a loop that parked on an asynchronous tool; the
// run is not finished and no completion event may be emitted yet.
var errSuspended = errors.New("run suspended")

// Run executes one bounded run over prompt.
//
// With a nil handler the run is synchronous: Run blocks until the loop
// finishes, returns (SentinelRunID, answer, nil) on success, and any
// asynchronous tool invocation fails the run. With a handler the run
// executes in the background: Run returns the allocated run id
// immediately and the handler receives the final answer or failure
// exactly once, possibly after suspending across asynchronous tools.
func (a *Agent) Run(ctx context.Context, prompt string, handler DeliveryFunc) (RunID, string, error) {
	id := RunID(a.runs.Add(1) - 1)

	if handler == nil {
		answer, steps, err := a.loop(ctx, id, prompt, nil, 0, nil)
		a.emit(ctx, id, steps, answer, err)
		if err != nil {
			return SentinelRunID, "", err
		}
		return SentinelRunID, answer, nil
	}

	go func() {
		answer, steps, err := a.loop(ctx, id, prompt, nil, 0, handler)
		if errors.Is(err, errSuspended) {
			return
		}
		a.emit(ctx, id, steps, answer, err)
		handler(ctx, answer, err)
	}()
	return id, "", nil
}

func (a *Agent) loop(ctx context.Context, id RunID, prompt string, steps []Step, start int, handler DeliveryFunc) (string, []Step, error) {
	for it := start; it < a.maxIterations; it++ {
		res, err := a.step(ctx, steps, prompt)
		if err != nil {
			return "", steps, err
		}
		if res.Done {
			return res.Answer, steps, nil
		}

		rid, out, err := res.Tool.Run(ctx, res.Input, a.callbacks)
		if err != nil {
			return "", steps, fmt.Errorf("%w: %q: %v", ErrToolInvocationFailed, res.Tool.Name(), err)
		}
		if rid != SentinelRunID {
			if handler == nil || a.store == nil {
				return "", steps, fmt.Errorf("%w: %q", ErrAsynchronousToolUnsupported, res.Tool.Name())
			}
			if err := a.suspend(ctx, id, prompt, steps, it, res, rid, handler); err != nil {
				return "", steps, err
			}
			return "", steps, errSuspended
		}
		steps = append(steps, Step{Reasoning: res.Reasoning, Observation: out})
	}
	return "", steps, fmt.Errorf("%w: %d iterations", ErrIterationBudgetExhausted, a.maxIterations)
}

func (a *Agent) step(ctx context.Context, steps []Step, prompt string) (IterationResult, error) {
	if a.iterationTimeout > 0 {
		// The cause marks expiry of this step's own deadline, so a
		// caller deadline inherited from ctx is not misreported as an
		// iteration timeout.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, a.iterationTimeout, ErrIterationTimedOut)
		defer cancel()
	}
	res, err := a.engine.Step(ctx, EngineInput{
		Model:        a.model,
		Instructions: a.instructions,
		Catalog:      a.catalog,
		Steps:        steps,
		Prompt:       prompt,
	})
	if err != nil && errors.Is(context.Cause(ctx), ErrIterationTimedOut) {
		return IterationResult{}, fmt.Errorf("%w after %s", ErrIterationTimedOut, a.iterationTimeout)
	}
	return res, err
}

// suspend persists the run and arms the callback registry so the
// pending tool's delivery resumes the loop where it parked.
func (a *Agent) suspend(ctx context.Context, id RunID, prompt string, steps []Step, it int, res IterationResult, rid RunID, handler DeliveryFunc) error {
	state := runstore.RunState{
		RunID:         int64(id),
		Agent:         a.name,
		Prompt:        prompt,
		Steps:         toStoreSteps(steps),
		Iteration:     it,
		MaxIterations: a.maxIterations,
		PendingTool:   res.Tool.Name(),
		PendingRunID:  int64(rid),
		Reasoning:     res.Reasoning,
		UpdatedAt:     time.Now(),
	}
	if err := a.store.Save(ctx, state); err != nil {
		return fmt.Errorf("persist suspended run: %w", err)
	}
	return a.callbacks.Expect(res.Tool, rid, func(dctx context.Context, result string, failure error) {
		a.resume(dctx, id, result, failure, handler)
	})
}

func (a *Agent) resume(ctx context.Context, id RunID, result string, failure error, handler DeliveryFunc) {
	state, err := a.store.Load(ctx, a.name, int64(id))
	if err != nil {
		err = fmt.Errorf("load suspended run %d: %w", id, err)
		a.emit(ctx, id, nil, "", err)
		handler(ctx, "", err)
		return
	}
	_ = a.store.Delete(ctx, a.name, int64(id))

	steps := fromStoreSteps(state.Steps)
	if failure != nil {
		err := fmt.Errorf("%w: %q: %v", ErrToolInvocationFailed, state.PendingTool, failure)
		a.emit(ctx, id, steps, "", err)
		handler(ctx, "", err)
		return
	}

	steps = append(steps, Step{Reasoning: state.Reasoning, Observation: result})
	answer, steps, err := a.loop(ctx, id, state.Prompt, steps, state.Iteration+1, handler)
	if errors.Is(err, errSuspended) {
		return
	}
	a.emit(ctx, id, steps, answer, err)
	handler(ctx, answer, err)
}

func (a *Agent) emit(ctx context.Context, id RunID, steps []Step, answer string, failure error) {
	if a.sink == nil {
		return
	}
	_ = a.sink.Completed(ctx, CompletionEvent{
		RunID:      id,
		Agent:      a.name,
		Requester:  a.requester,
		Trace:      steps,
		Answer:     answer,
		Failure:    failure,
		Iterations: len(steps),
		At:         time.Now(),
	})
}

func toStoreSteps(steps []Step) []runstore.Step {
	out := make([]runstore.Step, len(steps))
	for i, s := range steps {
		out[i] = runstore.Step{Reasoning: s.Reasoning, Observation: s.Observation}
	}
	return out
}

func fromStoreSteps(steps []runstore.Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = Step{Reasoning: s.Reasoning, Observation: s.Observation}
	}
	return out
}
