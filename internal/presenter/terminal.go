package presenter

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/sharesheet/internal/share"
	"github.com/example/sharesheet/internal/ui"
)

// Terminal asks the user to pick a target in a bubbletea chooser.
type Terminal struct {
	actions Actions
	in      io.Reader
	out     io.Writer
}

// TerminalOption configures a Terminal presenter.
type TerminalOption func(*Terminal)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.in = in
		t.out = out
	}
}

func NewTerminal(actions Actions, opts ...TerminalOption) *Terminal {
	t := &Terminal{actions: actions, in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) Present(ctx context.Context, req share.Request) *share.Completion {
	c := share.NewCompletion()
	ids := t.actions.Targets(req)
	if len(ids) == 0 {
		c.Resolve(share.Failed(errNoTarget))
		return c
	}

	targets := make([]ui.Target, 0, len(ids))
	for _, id := range ids {
		label, detail := Describe(id, req)
		targets = append(targets, ui.Target{ID: id, Label: label, Detail: detail})
	}

	go func() {
		var outcome share.Outcome
		model := ui.NewChooserModel(req.Title, targets, func(target ui.Target) error {
			outcome = t.actions.Perform(ctx, target.ID, req)
			return outcome.Err
		})

		p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(t.in), tea.WithOutput(t.out))
		final, err := p.Run()
		if err != nil {
			c.Resolve(share.Failed(fmt.Errorf("share chooser: %w", err)))
			return
		}

		fm, ok := final.(ui.ChooserModel)
		if !ok {
			c.Resolve(share.Cancelled())
			return
		}
		if _, chosen, _ := fm.Result(); !chosen {
			c.Resolve(share.Cancelled())
			return
		}
		c.Resolve(outcome)
	}()
	return c
}

func (t *Terminal) CanShare(req share.Request) bool {
	return t.actions.CanShare(req)
}
