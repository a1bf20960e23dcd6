package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Preferences is state remembered between local runs.
type Preferences struct {
	Windows  map[string]WindowPreference `toml:"windows"`
	Settings SettingsPreference          `toml:"settings"`
}

// WindowPreference is the last floating size of a window.
type WindowPreference struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// SettingsPreference mirrors the action center toggles.
type SettingsPreference struct {
	Wifi     bool `toml:"wifi"`
	Mute     bool `toml:"mute"`
	Airplane bool `toml:"airplane"`
}

// NewPreferences returns empty preferences with wifi on.
func NewPreferences() *Preferences {
	return &Preferences{
		Windows:  map[string]WindowPreference{},
		Settings: SettingsPreference{Wifi: true},
	}
}

// LoadPreferences reads preferences from path. A missing file is not an error.
func LoadPreferences(path string) (*Preferences, error) {
	p := NewPreferences()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	if p.Windows == nil {
		p.Windows = map[string]WindowPreference{}
	}
	return p, nil
}

// Save writes the preferences to path.
func (p *Preferences) Save(path string) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// WindowSize returns the remembered size for app.
func (p *Preferences) WindowSize(app string) (WindowPreference, bool) {
	w, ok := p.Windows[app]
	if !ok || w.Width <= 0 || w.Height <= 0 {
		return WindowPreference{}, false
	}
	return w, true
}

// SetWindowSize remembers the size for app.
func (p *Preferences) SetWindowSize(app string, width, height int) {
	if p.Windows == nil {
		p.Windows = map[string]WindowPreference{}
	}
	p.Windows[app] = WindowPreference{Width: width, Height: height}
}
