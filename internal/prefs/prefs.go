// Package prefs handles local stash preferences that live outside the user's
// server-side settings: the terminal theme and the last username typed at
// the login prompt. Preferences are stored in ~/.config/stash/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds local preferences. DarkTheme and LightTheme name the palettes
// used when the server-side dark mode setting is on or off.
type Prefs struct {
	DarkTheme    string `toml:"dark_theme"`
	LightTheme   string `toml:"light_theme"`
	LastUsername string `toml:"last_username,omitempty"`
}

const (
	defaultPrefsPath  = "~/.config/stash/prefs.toml"
	defaultDarkTheme  = "Dracula"
	defaultLightTheme = "Paper"
)

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{DarkTheme: defaultDarkTheme, LightTheme: defaultLightTheme}
}

// Theme returns the palette name for the given mode.
func (p Prefs) Theme(dark bool) string {
	if dark {
		return p.DarkTheme
	}
	return p.LightTheme
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}

	prefs := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Defaults(), nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.DarkTheme) == "" {
		prefs.DarkTheme = defaultDarkTheme
	}
	if strings.TrimSpace(prefs.LightTheme) == "" {
		prefs.LightTheme = defaultLightTheme
	}
	prefs.LastUsername = strings.TrimSpace(prefs.LastUsername)

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
