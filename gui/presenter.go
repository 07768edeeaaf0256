package gui

import (
	"context"
	"errors"
	"runtime"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/example/sharesheet/internal/presenter"
	"github.com/example/sharesheet/internal/share"
)

const cancelButton = "Cancel"

var (
	errNotStarted = errors.New("window not ready")
	errNoTarget   = errors.New("no share target for request")
)

// dialogFunc shows a message dialog and returns the raw button result.
type dialogFunc func(wailsRuntime.MessageDialogOptions) (string, error)

// dialogChooser asks the user for a share target with native message boxes.
// Only macOS honours custom buttons; elsewhere the dialog answers with the
// platform's own Yes/No/Ok/Cancel strings, so each target is offered as a
// separate yes/no question.
type dialogChooser struct {
	show dialogFunc
	goos string
}

type answer int

const (
	answerCancel answer = iota
	answerYes
	answerNo
)

// parseAnswer maps a yes/no dialog result to an answer. GTK returns
// "Yes"/"No"; Windows returns the MessageBox names.
func parseAnswer(choice string) answer {
	switch strings.ToLower(choice) {
	case "yes", "ok":
		return answerYes
	case "no":
		return answerNo
	default:
		return answerCancel
	}
}

// targetForButton maps a custom-button result back to its target.
func targetForButton(choice string, byLabel map[string]string) (string, bool) {
	if choice == cancelButton {
		return "", false
	}
	t, ok := byLabel[choice]
	return t, ok
}

// choose returns the picked target, or ok == false when the user declined.
func (c dialogChooser) choose(targets []string, req share.Request) (target string, ok bool, err error) {
	title := req.Title
	if title == "" {
		title = "Share"
	}

	if c.goos == "darwin" {
		buttons := make([]string, 0, len(targets)+1)
		byLabel := make(map[string]string, len(targets))
		message := ""
		for _, t := range targets {
			label, detail := presenter.Describe(t, req)
			buttons = append(buttons, label)
			byLabel[label] = t
			if message == "" {
				message = detail
			}
		}
		buttons = append(buttons, cancelButton)

		choice, err := c.show(wailsRuntime.MessageDialogOptions{
			Type:          wailsRuntime.QuestionDialog,
			Title:         title,
			Message:       message,
			Buttons:       buttons,
			DefaultButton: buttons[0],
			CancelButton:  cancelButton,
		})
		if err != nil {
			return "", false, err
		}
		target, ok = targetForButton(choice, byLabel)
		return target, ok, nil
	}

	for _, t := range targets {
		label, detail := presenter.Describe(t, req)
		message := label + "?"
		if detail != "" {
			message += "\n\n" + detail
		}
		choice, err := c.show(wailsRuntime.MessageDialogOptions{
			Type:    wailsRuntime.QuestionDialog,
			Title:   title,
			Message: message,
		})
		if err != nil {
			return "", false, err
		}
		switch parseAnswer(choice) {
		case answerYes:
			return t, true, nil
		case answerCancel:
			return "", false, nil
		}
	}
	return "", false, nil
}

// appPresenter shows a share through the window, honouring the presenter
// picked in Settings at the time of each request.
type appPresenter struct {
	app        *App
	chooser    dialogChooser
	newActions func() presenter.Actions
}

func newAppPresenter(a *App) *appPresenter {
	p := &appPresenter{app: a}
	p.chooser = dialogChooser{
		show: func(opts wailsRuntime.MessageDialogOptions) (string, error) {
			return wailsRuntime.MessageDialog(a.ctx, opts)
		},
		goos: runtime.GOOS,
	}
	p.newActions = p.windowActions
	return p
}

func (p *appPresenter) windowActions() presenter.Actions {
	a := presenter.DefaultActions(p.app.cfg.OpenHold(), p.app.logger)
	ctx := p.app.ctx
	a.CopyText = func(text string) error {
		return wailsRuntime.ClipboardSetText(ctx, text)
	}
	a.CanCopy = nil
	a.OpenURL = func(url string) error {
		wailsRuntime.BrowserOpenURL(ctx, url)
		return nil
	}
	return a
}

func (p *appPresenter) Present(ctx context.Context, req share.Request) *share.Completion {
	if p.app.ctx == nil {
		return share.Resolved(share.Failed(errNotStarted))
	}

	actions := p.newActions()
	if p.app.GetSettings().Presenter == PresenterSystem {
		return presenter.NewSystem(actions).Present(ctx, req)
	}

	targets := actions.Targets(req)
	if len(targets) == 0 {
		return share.Resolved(share.Failed(errNoTarget))
	}

	c := share.NewCompletion()
	go func() {
		target, ok, err := p.chooser.choose(targets, req)
		switch {
		case err != nil:
			c.Resolve(share.Failed(err))
		case !ok:
			c.Resolve(share.Cancelled())
		default:
			c.Resolve(actions.Perform(ctx, target, req))
		}
	}()
	return c
}

func (p *appPresenter) CanShare(req share.Request) bool {
	if p.app.ctx == nil {
		return false
	}
	return p.newActions().CanShare(req)
}
