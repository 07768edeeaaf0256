package gui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/example/sharesheet/internal/share"
)

const shutdownTimeout = 3 * time.Second

// Events emitted to the frontend besides the share lifecycle events.
const (
	EventStagingChanged = "staging:changed"
)

// App struct is the main GUI application
type App struct {
	ctx    context.Context
	cfg    *share.Config
	logger *slog.Logger

	manager *share.Manager
	sharer  *share.Sharer
	history *historyStore
	watcher *stagingWatcher

	// Settings
	settingsMu sync.RWMutex
	settings   Settings
}

// NewApp creates a new App instance
func NewApp(cfg *share.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	settings := loadSettings()

	a := &App{
		cfg:      cfg,
		logger:   logger,
		settings: settings,
		history:  newHistoryStore(settings.HistoryLimit),
	}
	a.manager = share.NewManager(cfg.ManagerOptions(logger)...)
	a.sharer = share.NewSharer(a.manager, newAppPresenter(a),
		append(cfg.SharerOptions(logger), share.WithObserver(a.onShareEvent))...)
	return a
}

// Startup is called when the Wails app starts
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.history.load()

	if a.cfg.CleanupOnStart && a.GetSettings().CleanupOnStart {
		if err := a.manager.CleanupAll(); err != nil {
			a.logger.Warn("startup cleanup failed", "error", err)
		}
	}

	w, err := newStagingWatcher(a.manager.Dir(), func(n int) {
		a.emit(EventStagingChanged, n)
	}, a.logger)
	if err != nil {
		a.logger.Warn("staging watcher disabled", "error", err)
		return
	}
	a.watcher = w
}

// Shutdown releases every staged file and removes the staging directory.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := a.sharer.Close(ctx); err != nil {
		a.logger.Warn("shares still open at shutdown", "error", err)
	}
	if err := a.manager.CleanupAll(); err != nil {
		a.logger.Error("shutdown cleanup failed", "error", err)
	}
}

// Share shares text, a URL and base64 files in one request
func (a *App) Share(opts share.Options) error {
	return a.sharer.Share(a.context(), opts)
}

// ShareText shares plain text
func (a *App) ShareText(text, title string) error {
	return a.sharer.ShareText(a.context(), text, title)
}

// ShareData shares one base64 payload as a file named name
func (a *App) ShareData(data, name, title string) error {
	return a.sharer.ShareData(a.context(), data, name, title)
}

// ShareFile shares a file already on disk
func (a *App) ShareFile(path, title string) error {
	return a.sharer.ShareFile(a.context(), path, title)
}

// SelectFile opens a file picker dialog and returns the chosen path
func (a *App) SelectFile() string {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select File to Share",
	})
	if err != nil {
		return ""
	}
	return path
}

// CanShare reports whether opts (or anything, when nil) can be shared
func (a *App) CanShare(opts *share.Options) bool {
	return a.sharer.CanShare(opts)
}

// Cleanup removes every staged file
func (a *App) Cleanup() error {
	return a.sharer.Cleanup()
}

// StagingInfo describes the staging directory
type StagingInfo struct {
	Dir      string `json:"dir"`
	Staged   int    `json:"staged"`
	InFlight int    `json:"in_flight"`
}

// GetStagingInfo returns the staging directory and its current usage
func (a *App) GetStagingInfo() StagingInfo {
	return StagingInfo{
		Dir:      a.manager.Dir(),
		Staged:   len(a.manager.Tracked()),
		InFlight: a.sharer.InFlight(),
	}
}

// GetShareHistory returns the share history
func (a *App) GetShareHistory() []HistoryEntry {
	return a.history.list()
}

// ClearShareHistory deletes every history entry
func (a *App) ClearShareHistory() error {
	return a.history.clear()
}

// GetSettings returns current settings
func (a *App) GetSettings() Settings {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.settings
}

// SaveSettings saves settings
func (a *App) SaveSettings(s Settings) error {
	s = s.normalize()
	if err := saveSettings(s); err != nil {
		return err
	}
	a.settingsMu.Lock()
	a.settings = s
	a.settingsMu.Unlock()
	a.history.setLimit(s.HistoryLimit)
	return nil
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func (a *App) onShareEvent(ev share.Event) {
	switch ev.Type {
	case share.EventReleased, share.EventError:
		outcome := ev.Outcome
		if ev.Type == share.EventError {
			outcome = share.OutcomeFailed.String()
		}
		if err := a.history.add(HistoryEntry{
			Title:   ev.Title,
			Kinds:   ev.Kinds,
			Files:   len(ev.Files),
			Outcome: outcome,
			Target:  ev.Target,
			Error:   ev.Error,
		}); err != nil {
			a.logger.Warn("failed to save share history", "error", err)
		}
	}
	a.emit(string(ev.Type), ev)
}

func (a *App) emit(name string, data ...interface{}) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, name, data...)
}
