package gui

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// stagingWatcher reports the number of staged files whenever the staging
// directory changes. The directory comes and goes, so its parent is watched
// as well.
type stagingWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	onChange func(count int)
	logger   *slog.Logger
	done     chan struct{}
}

func newStagingWatcher(dir string, onChange func(int), logger *slog.Logger) (*stagingWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(dir)); err != nil {
		w.Close()
		return nil, err
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	sw := &stagingWatcher{
		dir:      dir,
		watcher:  w,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

func (sw *stagingWatcher) run() {
	defer close(sw.done)
	for {
		select {
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handle(ev)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("staging watcher error", "error", err)
		}
	}
}

func (sw *stagingWatcher) handle(ev fsnotify.Event) {
	switch {
	case ev.Name == sw.dir:
		if ev.Has(fsnotify.Create) {
			if err := sw.watcher.Add(sw.dir); err != nil {
				sw.logger.Warn("failed to watch staging directory", "dir", sw.dir, "error", err)
			}
		}
	case filepath.Dir(ev.Name) == sw.dir:
		if isTempName(filepath.Base(ev.Name)) {
			return
		}
	default:
		return
	}
	sw.onChange(countStaged(sw.dir))
}

func (sw *stagingWatcher) Close() error {
	err := sw.watcher.Close()
	<-sw.done
	return err
}

// countStaged counts finished staged files, skipping in-progress writes.
func countStaged(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("failed to read staging directory", "dir", dir, "error", err)
		}
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() && !isTempName(e.Name()) {
			n++
		}
	}
	return n
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".staging-")
}
