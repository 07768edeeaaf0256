package gui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "sharesheet.log"

// NewLogger returns a JSON logger writing to a rotated file in the config
// directory. If the directory is unavailable it logs to stderr instead.
func NewLogger(level slog.Level) (*slog.Logger, io.Closer) {
	dir, err := configDir()
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), io.NopCloser(nil)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "logs", logFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), w
}
