package store

import (
	"fmt"
	"slices"

	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
)

// ActionKind tags an Action.
type ActionKind int

const (
	ActionInit ActionKind = iota
	ActionAppClick
	ActionMinimize
	ActionMaximize
	ActionClose
	ActionLock
	ActionUnlock
	ActionToggleSetting
	ActionSetSettings
)

func (k ActionKind) String() string {
	switch k {
	case ActionInit:
		return "INIT"
	case ActionAppClick:
		return "APP_CLICK"
	case ActionMinimize:
		return "MINIMIZE"
	case ActionMaximize:
		return "MAXIMIZE"
	case ActionClose:
		return "CLOSE"
	case ActionLock:
		return "LOCK"
	case ActionUnlock:
		return "UNLOCK"
	case ActionToggleSetting:
		return "TOGGLE_SETTING"
	case ActionSetSettings:
		return "SET_SETTINGS"
	default:
		return fmt.Sprintf("ACTION(%d)", int(k))
	}
}

// Action is a request to transition the state.
type Action struct {
	Kind     ActionKind
	AppID    registry.AppID
	Index    *int
	Configs  []registry.AppConfig
	Setting  Setting
	Settings Settings
}

func (a Action) String() string {
	switch {
	case a.Kind == ActionAppClick && a.Index != nil:
		return fmt.Sprintf("%s %s[%d]", a.Kind, a.AppID, *a.Index)
	case a.AppID != "":
		return fmt.Sprintf("%s %s", a.Kind, a.AppID)
	case a.Setting != "":
		return fmt.Sprintf("%s %s", a.Kind, a.Setting)
	default:
		return a.Kind.String()
	}
}

// Init builds the initial records from configs.
func Init(configs []registry.AppConfig) Action {
	return Action{Kind: ActionInit, Configs: configs}
}

// AppClick toggles or opens an application without choosing a view.
func AppClick(id registry.AppID) Action {
	return Action{Kind: ActionAppClick, AppID: id}
}

// AppClickAt opens an application on a specific view.
func AppClickAt(id registry.AppID, index int) Action {
	return Action{Kind: ActionAppClick, AppID: id, Index: &index}
}

// Minimize hides a window.
func Minimize(id registry.AppID) Action {
	return Action{Kind: ActionMinimize, AppID: id}
}

// Maximize toggles a window between maximized and floating.
func Maximize(id registry.AppID) Action {
	return Action{Kind: ActionMaximize, AppID: id}
}

// Close closes a window.
func Close(id registry.AppID) Action {
	return Action{Kind: ActionClose, AppID: id}
}

// Lock shows the lock screen.
func Lock() Action { return Action{Kind: ActionLock} }

// Unlock dismisses the lock screen.
func Unlock() Action { return Action{Kind: ActionUnlock} }

// ToggleSetting flips one action center toggle.
func ToggleSetting(s Setting) Action {
	return Action{Kind: ActionToggleSetting, Setting: s}
}

// SetSettings replaces all toggles, used when restoring preferences.
func SetSettings(s Settings) Action {
	return Action{Kind: ActionSetSettings, Settings: s}
}

// Reduce applies action to state. It never mutates state; every handled
// transition yields a fresh Apps slice, and an action that changes nothing
// returns state as given.
func Reduce(state State, action Action) State {
	switch action.Kind {
	case ActionInit:
		state.Apps = initRecords(action.Configs)
		return state
	case ActionAppClick, ActionMinimize, ActionMaximize, ActionClose:
		state.Apps = reduceApps(state.Apps, action)
		return state
	case ActionLock:
		state.System.Locked = true
		return state
	case ActionUnlock:
		state.System.Locked = false
		return state
	case ActionToggleSetting:
		state.Settings = toggle(state.Settings, action.Setting)
		return state
	case ActionSetSettings:
		state.Settings = action.Settings
		if state.Settings.Airplane {
			state.Settings.Wifi = false
		}
		return state
	default:
		return state
	}
}

func initRecords(configs []registry.AppConfig) []ApplicationRecord {
	records := make([]ApplicationRecord, 0, len(configs))
	for _, c := range configs {
		records = append(records, ApplicationRecord{
			ID:            c.ID,
			Name:          c.Name,
			Icon:          c.Icon,
			Order:         c.Order,
			ShowInDesktop: c.ShowInDesktop,
			ShowLinks:     c.ShowLinks,
			IsApplication: c.IsApplication,
			SubComponents: slices.Clone(c.SubComponents),
		})
	}
	slices.SortStableFunc(records, func(a, b ApplicationRecord) int { return a.Order - b.Order })
	return records
}

func reduceApps(apps []ApplicationRecord, action Action) []ApplicationRecord {
	i := slices.IndexFunc(apps, func(r ApplicationRecord) bool { return r.ID == action.AppID })
	if i < 0 {
		return apps
	}

	next := slices.Clone(apps)
	r := &next[i]

	switch action.Kind {
	case ActionAppClick:
		switch {
		case r.IsOpened && action.Index != nil:
			r.IsMinimized = false
			r.IsMaximized = false
			r.ActiveSubComponentIndex = *action.Index
			r.HasActiveIndex = true
		case r.IsOpened:
			r.IsMinimized = !r.IsMinimized
		default:
			r.IsOpened = true
			r.IsMinimized = false
			r.IsMaximized = false
			if action.Index != nil {
				r.ActiveSubComponentIndex = *action.Index
				r.HasActiveIndex = true
			}
		}

	case ActionMinimize:
		// closed records are never minimized
		if !r.IsOpened {
			return apps
		}
		r.IsMinimized = true

	case ActionMaximize:
		if !r.IsOpened {
			return apps
		}
		r.IsMaximized = !r.IsMaximized

	case ActionClose:
		r.IsOpened = false
		r.IsMinimized = false
		r.IsMaximized = false
	}

	return next
}

func toggle(s Settings, which Setting) Settings {
	switch which {
	case SettingWifi:
		s.Wifi = !s.Wifi
		if s.Wifi {
			s.Airplane = false
		}
	case SettingMute:
		s.Mute = !s.Mute
	case SettingAirplane:
		s.Airplane = !s.Airplane
		if s.Airplane {
			s.Wifi = false
		}
	}
	return s
}
