// Package presenter holds the share presenters available outside the
// webview: a non-interactive system presenter and a terminal chooser.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"

	"github.com/example/sharesheet/internal/share"
)

// Share targets.
const (
	TargetClipboard = "clipboard"
	TargetOpen      = "open"
)

var errNoTarget = errors.New("no share target for request")

// Actions are the OS operations a presenter can route a share to.
type Actions struct {
	CopyText func(text string) error
	OpenURL  func(url string) error
	OpenFile func(path string) error

	// CanCopy and CanOpen report whether the targets work on this machine.
	CanCopy func() bool
	CanOpen func() bool

	// Hold delays completion after files were handed to an opener, which
	// reads them asynchronously.
	Hold time.Duration

	Logger *slog.Logger
}

// DefaultActions uses the system clipboard and the desktop opener.
func DefaultActions(hold time.Duration, logger *slog.Logger) Actions {
	if logger == nil {
		logger = slog.Default()
	}
	return Actions{
		CopyText: clipboard.WriteAll,
		OpenURL:  browser.OpenURL,
		OpenFile: browser.OpenFile,
		CanCopy:  func() bool { return !clipboard.Unsupported },
		CanOpen:  openerAvailable,
		Hold:     hold,
		Logger:   logger,
	}
}

// Targets lists the targets able to handle req, in preference order. Files
// are opened first. Otherwise text comes first when present, since the
// clipboard carries text and URL together while opening keeps only the URL.
func (a Actions) Targets(req share.Request) []string {
	hasText := req.Has(share.ItemText)
	hasURL := req.Has(share.ItemURL)
	hasFiles := req.Has(share.ItemFile)

	var open, copyText []string
	if (hasURL || hasFiles) && a.canOpen() {
		open = []string{TargetOpen}
	}
	if (hasText || hasURL) && a.canCopy() {
		copyText = []string{TargetClipboard}
	}
	if hasText && !hasFiles {
		return append(copyText, open...)
	}
	return append(open, copyText...)
}

// CanShare reports whether any target can handle req. An empty request asks
// whether sharing works at all.
func (a Actions) CanShare(req share.Request) bool {
	if len(req.Items) == 0 {
		return a.canCopy() || a.canOpen()
	}
	return len(a.Targets(req)) > 0
}

// Perform routes req to target and blocks until it is safe to release any
// staged files.
func (a Actions) Perform(ctx context.Context, target string, req share.Request) share.Outcome {
	switch target {
	case TargetClipboard:
		if err := a.CopyText(req.CombinedText()); err != nil {
			return share.Failed(fmt.Errorf("copy to clipboard: %w", err))
		}
		return share.Completed(TargetClipboard)

	case TargetOpen:
		files := req.Files()
		if len(files) == 0 {
			u, _ := req.URL()
			if err := a.OpenURL(u); err != nil {
				return share.Failed(fmt.Errorf("open %s: %w", u, err))
			}
			return share.Completed(TargetOpen)
		}
		for _, f := range files {
			if err := a.OpenFile(f.Value); err != nil {
				return share.Failed(fmt.Errorf("open %s: %w", f.Name, err))
			}
		}
		a.wait(ctx)
		return share.Completed(TargetOpen)
	}
	return share.Failed(fmt.Errorf("%w: %q", errNoTarget, target))
}

func (a Actions) wait(ctx context.Context) {
	if a.Hold <= 0 {
		return
	}
	a.logger().Debug("holding staged files for opener", "hold", a.Hold)
	t := time.NewTimer(a.Hold)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (a Actions) canCopy() bool {
	return a.CopyText != nil && (a.CanCopy == nil || a.CanCopy())
}

func (a Actions) canOpen() bool {
	return a.OpenURL != nil && a.OpenFile != nil && (a.CanOpen == nil || a.CanOpen())
}

func (a Actions) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Describe returns a short human label for a target.
func Describe(target string, req share.Request) (label, detail string) {
	switch target {
	case TargetClipboard:
		return "Copy to clipboard", truncate(req.CombinedText(), 60)
	case TargetOpen:
		if files := req.Files(); len(files) > 0 {
			names := make([]string, 0, len(files))
			for _, f := range files {
				names = append(names, f.Name)
			}
			return "Open with default app", strings.Join(names, ", ")
		}
		u, _ := req.URL()
		return "Open in browser", u
	}
	return target, ""
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
