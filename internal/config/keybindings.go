package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Keybinding represents a single keybinding entry
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

// ActionDescriptions describes every bindable desktop action.
var ActionDescriptions = map[string]string{
	"quit":                 "Quit",
	"lock":                 "Lock screen",
	"toggle_action_center": "Toggle action center",
	"toggle_help":          "Toggle help",
	"toggle_logs":          "Toggle log viewer",
	"open_run":             "Open a path",
	"next_window":          "Next window",
	"prev_window":          "Previous window",
	"close_window":         "Close window",
	"minimize_window":      "Minimize window",
	"maximize_window":      "Maximize / restore window",
	"next_view":            "Next view in window",
	"prev_view":            "Previous view in window",
	"open_app_1":           "Open About Me",
	"open_app_2":           "Open Chrome",
	"open_app_3":           "Open VS Code",
	"open_app_4":           "Open JioSaavn",
	"open_app_5":           "Open Mail",
}

func defaultDesktopKeys() map[string][]string {
	keys := map[string][]string{
		"quit":                 {"ctrl+c"},
		"lock":                 {"ctrl+l"},
		"toggle_action_center": {"ctrl+a"},
		"toggle_help":          {"f1"},
		"toggle_logs":          {"f2"},
		"open_run":             {"ctrl+g"},
		"next_window":          {"ctrl+n"},
		"prev_window":          {"ctrl+p"},
		"close_window":         {"ctrl+w"},
		"minimize_window":      {"alt+down"},
		"maximize_window":      {"alt+up"},
		"next_view":            {"alt+right"},
		"prev_view":            {"alt+left"},
	}
	for i := 1; i <= 5; i++ {
		keys[fmt.Sprintf("open_app_%d", i)] = []string{fmt.Sprintf("alt+%d", i)}
	}
	return keys
}

// KeybindRegistry resolves keys to actions and back.
type KeybindRegistry struct {
	actionToKeys map[string][]string
	keyToAction  map[string]string
	normalizer   *KeyNormalizer
}

// NewKeybindRegistry builds a registry from cfg. When two actions claim the
// same key the first in sorted action order wins.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		actionToKeys: map[string][]string{},
		keyToAction:  map[string]string{},
		normalizer:   NewKeyNormalizer(),
	}

	bindings := cfg.Keybindings.Desktop
	if bindings == nil {
		bindings = defaultDesktopKeys()
	}

	actions := make([]string, 0, len(bindings))
	for a := range bindings {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	for _, action := range actions {
		for _, key := range bindings[action] {
			if key == "" {
				continue
			}
			r.actionToKeys[action] = append(r.actionToKeys[action], key)
			for _, variant := range r.normalizer.NormalizeKey(key) {
				if _, taken := r.keyToAction[variant]; !taken {
					r.keyToAction[variant] = action
				}
			}
		}
	}
	return r
}

// GetKeys returns the keys bound to action.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return slices.Clone(r.actionToKeys[action])
}

// GetAction returns the action bound to key, or "".
func (r *KeybindRegistry) GetAction(key string) string {
	for _, variant := range r.normalizer.NormalizeKey(key) {
		if action, ok := r.keyToAction[variant]; ok {
			return action
		}
	}
	return ""
}

// GetKeysForDisplay formats the keys for action for the help overlay.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	keys := r.actionToKeys[action]
	if len(keys) == 0 {
		return ""
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = displayKey(k)
	}
	return strings.Join(out, ", ")
}

func displayKey(k string) string {
	parts := strings.Split(k, "+")
	for i, p := range parts {
		switch p {
		case "up":
			parts[i] = "↑"
		case "down":
			parts[i] = "↓"
		case "left":
			parts[i] = "←"
		case "right":
			parts[i] = "→"
		default:
			if len(p) > 0 {
				parts[i] = strings.ToUpper(p[:1]) + p[1:]
			}
		}
	}
	return strings.Join(parts, "+")
}

// KeyNormalizer canonicalises key strings so config spellings match what the
// terminal reports.
type KeyNormalizer struct {
	aliases   map[string][]string
	modifiers map[string]bool
}

// NewKeyNormalizer returns a normalizer with the standard aliases.
func NewKeyNormalizer() *KeyNormalizer {
	return &KeyNormalizer{
		aliases: map[string][]string{
			"return": {"enter"},
			"enter":  {"return"},
			"escape": {"esc"},
			"esc":    {"escape"},
			"del":    {"delete"},
			"delete": {"del"},
			"spc":    {"space"},
			"space":  {"spc"},
		},
		modifiers: map[string]bool{
			"ctrl": true, "alt": true, "shift": true, "super": true, "hyper": true, "meta": true,
		},
	}
}

// NormalizeKey lowercases key and returns it together with its aliases.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil
	}
	parts := strings.Split(key, "+")
	last := parts[len(parts)-1]
	prefix := strings.Join(parts[:len(parts)-1], "+")
	if prefix != "" {
		prefix += "+"
	}

	out := []string{key}
	for _, alias := range n.aliases[last] {
		out = append(out, prefix+alias)
	}
	return out
}

// ValidateKey reports whether key is well formed, and why not.
func (n *KeyNormalizer) ValidateKey(key string) (bool, string) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false, "empty key"
	}
	if key == "+" {
		return true, ""
	}
	parts := strings.Split(key, "+")
	if parts[len(parts)-1] == "" {
		return false, "missing key after modifier"
	}
	for _, p := range parts[:len(parts)-1] {
		if !n.modifiers[p] {
			return false, fmt.Sprintf("unknown modifier %q", p)
		}
	}
	return true, ""
}

// GetKeybindings returns the sections shown in the help overlay.
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	windows := KeybindingSection{Title: "WINDOWS"}
	addBinding(&windows, registry, "next_window")
	addBinding(&windows, registry, "prev_window")
	addBinding(&windows, registry, "minimize_window")
	addBinding(&windows, registry, "maximize_window")
	addBinding(&windows, registry, "close_window")
	addBinding(&windows, registry, "next_view")
	addBinding(&windows, registry, "prev_view")

	apps := KeybindingSection{Title: "APPS"}
	for i := 1; i <= 5; i++ {
		addBinding(&apps, registry, fmt.Sprintf("open_app_%d", i))
	}

	system := KeybindingSection{Title: "SYSTEM"}
	addBinding(&system, registry, "open_run")
	addBinding(&system, registry, "toggle_action_center")
	addBinding(&system, registry, "lock")
	addBinding(&system, registry, "toggle_logs")
	addBinding(&system, registry, "toggle_help")
	addBinding(&system, registry, "quit")

	mouse := KeybindingSection{
		Title: "MOUSE",
		Bindings: []Keybinding{
			{"Drag title", "Move window"},
			{"Drag ◢", "Resize window"},
			{"─ □ ×", "Minimize, maximize, close"},
			{"Taskbar pill", "Minimize / restore"},
		},
	}

	var sections []KeybindingSection
	for _, s := range []KeybindingSection{windows, apps, system, mouse} {
		if len(s.Bindings) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

// addBinding adds a keybinding to a section if the action has keys configured
func addBinding(section *KeybindingSection, registry *KeybindRegistry, action string) {
	keys := registry.GetKeysForDisplay(action)
	if keys != "" {
		section.Bindings = append(section.Bindings, Keybinding{
			Key:         keys,
			Description: ActionDescriptions[action],
		})
	}
}
