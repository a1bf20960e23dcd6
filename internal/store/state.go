// Package store holds the desktop's application state and the pure reducer
// that transitions it.
package store

import (
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
)

// ApplicationRecord is the runtime state of one application.
type ApplicationRecord struct {
	ID            registry.AppID
	Name          string
	Icon          string
	Order         int
	ShowInDesktop bool
	ShowLinks     bool
	IsApplication bool
	SubComponents []registry.SubComponent

	IsOpened    bool
	IsMinimized bool
	IsMaximized bool

	// ActiveSubComponentIndex is meaningful only when HasActiveIndex is set.
	ActiveSubComponentIndex int
	HasActiveIndex          bool
}

// ActiveIndex returns the sub-view to display, clamped to the valid range.
// An unset index selects the first view.
func (r ApplicationRecord) ActiveIndex() int {
	if !r.HasActiveIndex || len(r.SubComponents) == 0 {
		return 0
	}
	return min(max(r.ActiveSubComponentIndex, 0), len(r.SubComponents)-1)
}

// Visible reports whether the window is on screen.
func (r ApplicationRecord) Visible() bool {
	return r.IsOpened && !r.IsMinimized
}

// Settings are the quick toggles shown in the action center.
type Settings struct {
	Wifi     bool
	Mute     bool
	Airplane bool
}

// Setting names a single toggle.
type Setting string

const (
	SettingWifi     Setting = "wifi"
	SettingMute     Setting = "mute"
	SettingAirplane Setting = "airplane"
)

// System is session-level state outside any application.
type System struct {
	Locked bool
}

// State is the full store snapshot.
type State struct {
	Apps     []ApplicationRecord
	Settings Settings
	System   System
}

// App returns the record for id.
func (s State) App(id registry.AppID) (ApplicationRecord, bool) {
	for _, r := range s.Apps {
		if r.ID == id {
			return r, true
		}
	}
	return ApplicationRecord{}, false
}

// DefaultSettings is the state of the toggles for a new session.
func DefaultSettings() Settings {
	return Settings{Wifi: true}
}
