package presenter

import (
	"context"

	"github.com/example/sharesheet/internal/share"
)

// System shares without asking: it picks the first available target for a
// request (see Actions.Targets) and resolves once that target is done.
type System struct {
	actions Actions
}

func NewSystem(actions Actions) *System {
	return &System{actions: actions}
}

func (s *System) Present(ctx context.Context, req share.Request) *share.Completion {
	c := share.NewCompletion()
	targets := s.actions.Targets(req)
	if len(targets) == 0 {
		c.Resolve(share.Failed(errNoTarget))
		return c
	}

	go func() {
		c.Resolve(s.actions.Perform(ctx, targets[0], req))
	}()
	return c
}

func (s *System) CanShare(req share.Request) bool {
	return s.actions.CanShare(req)
}
