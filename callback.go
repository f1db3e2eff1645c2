package agentexec

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DeliveryFunc consumes the terminal outcome of one pending run.
// Exactly one of result or failure is meaningful.
type DeliveryFunc func(ctx context.Context, result string, failure error)

// deliveryKey identifies one pending delivery. Run ids are scoped to
// the invoked capability, so two tools may both hand out id 0; the
// origin in the key keeps their deliveries apart.
type deliveryKey struct {
	origin Origin
	id     RunID
}

type expectation struct {
	fn DeliveryFunc
}

type parkedDelivery struct {
	result  string
	failure error
	at      time.Time
}

// defaultRetention bounds how long parked deliveries and finished-run
// tombstones are kept. A duplicate arriving after retention can no
// longer be detected; the window trades that off against unbounded
// growth from tools that deliver for runs nobody resumes.
const defaultRetention = time.Hour

// CallbackRegistry implements the ResultCallback contract on the
// receiving side: it routes each delivery to the expectation registered
// for the (origin, run id) pair, enforcing exactly-once delivery.
// Origin is compared by identity, so a delivery can only satisfy an
// expectation registered against the same capability handle — a forged
// delivery under a different handle never reaches the handler.
//
// A tool may deliver before its invoker had a chance to register the
// expectation (Run returns the id and the result races in on another
// goroutine). Such deliveries are parked and consumed when Expect
// arrives for the same (origin, run id).
type CallbackRegistry struct {
	mu        sync.Mutex
	pending   map[deliveryKey]expectation
	parked    map[deliveryKey]parkedDelivery
	done      map[deliveryKey]time.Time
	retention time.Duration
	nowFn     func() time.Time
}

func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{
		pending:   make(map[deliveryKey]expectation),
		parked:    make(map[deliveryKey]parkedDelivery),
		done:      make(map[deliveryKey]time.Time),
		retention: defaultRetention,
		nowFn:     time.Now,
	}
}

// Expect registers the handler for a pending run id, bound to the
// origin whose delivery alone may satisfy it.
func (r *CallbackRegistry) Expect(origin Origin, id RunID, fn DeliveryFunc) error {
	if origin == nil {
		return fmt.Errorf("expectation for run %d: origin is nil", id)
	}
	if fn == nil {
		return fmt.Errorf("expectation for run %d: delivery func is nil", id)
	}
	if id == SentinelRunID || id < 0 {
		return fmt.Errorf("expectation for run %d: id is not a pending run id", id)
	}
	key := deliveryKey{origin: origin, id: id}

	r.mu.Lock()
	r.pruneLocked()
	if _, dup := r.pending[key]; dup {
		r.mu.Unlock()
		return fmt.Errorf("run %d of %q already has a pending expectation", id, origin.Name())
	}
	if _, finished := r.done[key]; finished {
		r.mu.Unlock()
		return fmt.Errorf("run %d of %q already delivered", id, origin.Name())
	}
	if early, ok := r.parked[key]; ok {
		delete(r.parked, key)
		r.done[key] = r.nowFn()
		r.mu.Unlock()
		fn(context.Background(), early.result, early.failure)
		return nil
	}
	r.pending[key] = expectation{fn: fn}
	r.mu.Unlock()
	return nil
}

func (r *CallbackRegistry) DeliverResult(ctx context.Context, origin Origin, id RunID, result string) error {
	return r.deliver(ctx, origin, id, result, nil)
}

func (r *CallbackRegistry) DeliverFailure(ctx context.Context, origin Origin, id RunID, failure error) error {
	if failure == nil {
		return fmt.Errorf("failure delivery for run %d carries no error", id)
	}
	return r.deliver(ctx, origin, id, "", failure)
}

func (r *CallbackRegistry) deliver(ctx context.Context, origin Origin, id RunID, result string, failure error) error {
	if origin == nil {
		return fmt.Errorf("%w: run %d: origin is nil", ErrUnexpectedDelivery, id)
	}
	key := deliveryKey{origin: origin, id: id}

	r.mu.Lock()
	r.pruneLocked()
	if _, finished := r.done[key]; finished {
		r.mu.Unlock()
		return fmt.Errorf("%w: run %d of %q already delivered", ErrUnexpectedDelivery, id, origin.Name())
	}
	exp, ok := r.pending[key]
	if !ok {
		// Distinct capabilities sharing a numeric id is normal; the
		// same advertised name under a different handle is not: the
		// legitimate expectation stays armed and the impostor's
		// delivery is refused outright.
		for other := range r.pending {
			if other.id == id && other.origin != origin && other.origin.Name() == origin.Name() {
				r.mu.Unlock()
				return fmt.Errorf("%w: run %d of %q delivered by a different handle", ErrOriginMismatch, id, origin.Name())
			}
		}
		if _, already := r.parked[key]; already {
			r.mu.Unlock()
			return fmt.Errorf("%w: run %d of %q already has a parked delivery", ErrUnexpectedDelivery, id, origin.Name())
		}
		r.parked[key] = parkedDelivery{result: result, failure: failure, at: r.nowFn()}
		r.mu.Unlock()
		return nil
	}
	delete(r.pending, key)
	r.done[key] = r.nowFn()
	r.mu.Unlock()

	exp.fn(ctx, result, failure)
	return nil
}

// pruneLocked drops parked deliveries and tombstones older than the
// retention window. Caller holds r.mu.
func (r *CallbackRegistry) pruneLocked() {
	cutoff := r.nowFn().Add(-r.retention)
	for key, parked := range r.parked {
		if parked.at.Before(cutoff) {
			delete(r.parked, key)
		}
	}
	for key, finished := range r.done {
		if finished.Before(cutoff) {
			delete(r.done, key)
		}
	}
}

// Pending reports how many expectations are currently armed.
func (r *CallbackRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

var _ ResultCallback = (*CallbackRegistry)(nil)
