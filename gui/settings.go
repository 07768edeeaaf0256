package gui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const configFileName = "config.json"

// Presenter names accepted in Settings.
const (
	PresenterDialog = "dialog"
	PresenterSystem = "system"
)

// Settings holds GUI configuration
type Settings struct {
	Presenter      string `json:"presenter"`
	CleanupOnStart bool   `json:"cleanup_on_start"`
	HistoryLimit   int    `json:"history_limit"`
}

func defaultSettings() Settings {
	return Settings{
		Presenter:      PresenterDialog,
		CleanupOnStart: true,
		HistoryLimit:   100,
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "sharesheet")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// loadSettings reads the settings file, falling back to defaults for a
// missing or unreadable file and for empty fields.
func loadSettings() Settings {
	dir, err := configDir()
	if err != nil {
		return defaultSettings()
	}

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		return defaultSettings()
	}

	s := defaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return defaultSettings()
	}
	return s.normalize()
}

func (s Settings) normalize() Settings {
	switch s.Presenter {
	case PresenterDialog, PresenterSystem:
	default:
		s.Presenter = PresenterDialog
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = defaultSettings().HistoryLimit
	}
	return s
}

func saveSettings(s Settings) error {
	dir, err := configDir()
	if err != nil {
		return fmt.Errorf("failed to get config dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, configFileName), data, 0644)
}
