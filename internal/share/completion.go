package share

import (
	"context"
	"sync"
	"sync/atomic"
)

// OutcomeKind describes how a presentation ended.
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeCancelled
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result delivered by a Completion.
type Outcome struct {
	Kind OutcomeKind
	// Target names what the user picked, e.g. "clipboard" or "open".
	Target string
	Err    error
}

// Completed returns an Outcome for a finished share.
func Completed(target string) Outcome {
	return Outcome{Kind: OutcomeCompleted, Target: target}
}

// Cancelled returns an Outcome for a share the user dismissed.
func Cancelled() Outcome {
	return Outcome{Kind: OutcomeCancelled}
}

// Failed returns an Outcome for a presentation that could not be shown.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// Completion is a one-shot future resolved by a Presenter when the share UI
// goes away. Resolve may be called from any goroutine; only the first call
// counts.
type Completion struct {
	mu        sync.Mutex
	resolved  atomic.Bool
	outcome   Outcome
	done      chan struct{}
	callbacks []func(Outcome)
}

// NewCompletion returns an unresolved Completion.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Resolved returns a Completion that is already resolved with o.
func Resolved(o Outcome) *Completion {
	c := NewCompletion()
	c.Resolve(o)
	return c
}

// Resolve records o and runs registered callbacks. It reports whether this
// call resolved the Completion.
func (c *Completion) Resolve(o Outcome) bool {
	if c.resolved.Swap(true) {
		return false
	}

	c.mu.Lock()
	c.outcome = o
	callbacks := c.callbacks
	c.callbacks = nil
	close(c.done)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(o)
	}
	return true
}

// OnResolve registers cb. If the Completion is already resolved, cb runs
// immediately on the calling goroutine.
func (c *Completion) OnResolve(cb func(Outcome)) {
	c.mu.Lock()
	select {
	case <-c.done:
		o := c.outcome
		c.mu.Unlock()
		cb(o)
		return
	default:
	}
	c.callbacks = append(c.callbacks, cb)
	c.mu.Unlock()
}

// Done is closed once the Completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// IsResolved reports whether Resolve has been called.
func (c *Completion) IsResolved() bool {
	return c.resolved.Load()
}

// Wait blocks until the Completion resolves or ctx ends.
func (c *Completion) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
