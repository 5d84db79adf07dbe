package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preferences are the user settings that survive restarts: a manual
// location override and the progress-panel toggle. They are loaded once
// at startup and written through on every change; nothing reads the file
// mid-session.
type Preferences struct {
	ManualLocation string `yaml:"manual_location,omitempty"`
	ShowProgress   bool   `yaml:"show_progress"`
}

// DefaultPreferences returns the preferences used when no file exists.
func DefaultPreferences() Preferences {
	return Preferences{ShowProgress: true}
}

// LoadPreferences reads the preferences file, falling back to defaults
// when the file is missing or unreadable.
func LoadPreferences(path string) Preferences {
	prefs := DefaultPreferences()

	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		// Corrupted file - keep it aside and start over
		os.Rename(path, path+".backup")
		return DefaultPreferences()
	}
	return prefs
}

// SavePreferences persists preferences with a temp-file write and an
// atomic rename.
func SavePreferences(path string, prefs Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
