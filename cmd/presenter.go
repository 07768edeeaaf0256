package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/example/sharesheet/internal/presenter"
	"github.com/example/sharesheet/internal/share"
	"github.com/example/sharesheet/pkg/ui"
)

var presenterFlag string

func cliLogger() *slog.Logger {
	level := cfg.Level()
	if level < slog.LevelWarn && !verboseFlag {
		// Keep the terminal for the chooser and status badges.
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newPresenter picks the presenter named by the flag or, failing that, the
// configuration. "auto" uses the chooser when stdin is a terminal.
func newPresenter(logger *slog.Logger) (share.Presenter, error) {
	name := presenterFlag
	if name == "" {
		name = cfg.Presenter
	}

	actions := presenter.DefaultActions(cfg.OpenHold(), logger)
	switch name {
	case "auto", "":
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return presenter.NewTerminal(actions), nil
		}
		return presenter.NewSystem(actions), nil
	case "terminal":
		return presenter.NewTerminal(actions), nil
	case "system":
		return presenter.NewSystem(actions), nil
	case "dialog":
		return nil, fmt.Errorf("presenter %q is only available in the window", name)
	default:
		return nil, fmt.Errorf("unknown presenter %q", name)
	}
}

func newSharer() (*share.Sharer, error) {
	logger := cliLogger()
	p, err := newPresenter(logger)
	if err != nil {
		return nil, err
	}
	mgr := share.NewManager(cfg.ManagerOptions(logger)...)
	return share.NewSharer(mgr, p, append(cfg.SharerOptions(logger), share.WithObserver(reportEvent))...), nil
}

// runShare runs fn and waits for the pending releases, so staged files are
// gone before the process exits. A failed presentation comes back from fn and
// is reported by Execute.
func runShare(ctx context.Context, fn func(context.Context, *share.Sharer) error) error {
	s, err := newSharer()
	if err != nil {
		return err
	}
	return shareAndWait(ctx, s, fn)
}

func shareAndWait(ctx context.Context, s *share.Sharer, fn func(context.Context, *share.Sharer) error) error {
	shareErr := fn(ctx, s)
	if err := s.Close(context.Background()); err != nil {
		return err
	}
	return shareErr
}

func reportEvent(ev share.Event) {
	switch ev.Type {
	case share.EventStaged:
		ui.Info("Staged %d file(s)", len(ev.Files))
	case share.EventPresented:
		if len(ev.Files) > 0 {
			ui.Info("Waiting for the share to finish before removing staged files...")
		}
	case share.EventReleased:
		switch ev.Outcome {
		case share.OutcomeCompleted.String():
			ui.Success("Shared via %s", ev.Target)
		case share.OutcomeCancelled.String():
			ui.Warn("Share cancelled")
		}
	}
}
