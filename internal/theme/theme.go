// Package theme provides the desktop colour palette, optionally sourced from a bubbletint theme.
package theme

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
	tint "github.com/lrstanley/bubbletint/v2"
)

var (
	mu       sync.RWMutex
	enabled  bool
	registry bool
	themeID  string
)

// Initialize selects the theme by bubbletint id. An empty name disables
// theming and the built-in palette is used. Unknown ids fall back to "default".
// It is safe to call again to switch themes at runtime.
func Initialize(themeName string) error {
	mu.Lock()
	defer mu.Unlock()

	if themeName == "" {
		enabled = false
		themeID = ""
		return nil
	}

	if !registry {
		tint.NewDefaultRegistry()
		registry = true
	}

	enabled = true
	themeID = themeName
	if ok := tint.SetTintID(themeName); !ok {
		tint.SetTintID("default")
		themeID = "default"
	}
	return nil
}

// IsEnabled returns true if theming is enabled
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Name returns the active theme id, or "" for the built-in palette.
func Name() string {
	mu.RLock()
	defer mu.RUnlock()
	return themeID
}

// Current returns the currently active theme.
// Returns nil if theming is disabled.
func Current() *tint.Tint {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return nil
	}
	return tint.Current()
}

func pick(fallback string, fromTheme func(*tint.Tint) color.Color) color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color(fallback)
	}
	return fromTheme(t)
}

// Desktop background
func DesktopBg() color.Color {
	return pick("#0b3a66", func(t *tint.Tint) color.Color { return t.Bg })
}

func DesktopFg() color.Color {
	return pick("#e5e5e5", func(t *tint.Tint) color.Color { return t.Fg })
}

// Taskbar colors
func TaskbarBg() color.Color {
	return pick("#1b1b24", func(t *tint.Tint) color.Color { return t.Black })
}

func TaskbarFg() color.Color {
	return pick("#d0d0d8", func(t *tint.Tint) color.Color { return t.White })
}

func PillActiveBg() color.Color {
	return pick("#3a6ea5", func(t *tint.Tint) color.Color { return t.Blue })
}

func PillMinimizedBg() color.Color {
	return pick("#3a3a48", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// Window chrome
func TitleFocusedBg() color.Color {
	return pick("#2d5f99", func(t *tint.Tint) color.Color { return t.Blue })
}

func TitleUnfocusedBg() color.Color {
	return pick("#44475a", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

func TitleFg() color.Color {
	return pick("#ffffff", func(t *tint.Tint) color.Color { return t.BrightWhite })
}

func BorderFocused() color.Color {
	return pick("#AFFFFF", func(t *tint.Tint) color.Color { return t.BrightCyan })
}

func BorderUnfocused() color.Color {
	return pick("#6c6c80", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

func WindowBg() color.Color {
	return pick("#1e1e2a", func(t *tint.Tint) color.Color { return t.Bg })
}

func WindowFg() color.Color {
	return pick("#e5e5e5", func(t *tint.Tint) color.Color { return t.Fg })
}

func CloseButton() color.Color {
	return pick("#ff5f57", func(t *tint.Tint) color.Color { return t.BrightRed })
}

// Content accents
func Accent() color.Color {
	return pick("#5fd7ff", func(t *tint.Tint) color.Color { return t.BrightCyan })
}

func Highlight() color.Color {
	return pick("#ffd75f", func(t *tint.Tint) color.Color { return t.BrightYellow })
}

func Muted() color.Color {
	return pick("#8a8a9a", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

func Success() color.Color {
	return pick("#5fd75f", func(t *tint.Tint) color.Color { return t.BrightGreen })
}

func Danger() color.Color {
	return pick("#ff5f5f", func(t *tint.Tint) color.Color { return t.BrightRed })
}

// The not-found screen keeps its blue regardless of theme.
func BlueScreenBg() color.Color {
	return lipgloss.Color("#0078d7")
}

func BlueScreenFg() color.Color {
	return lipgloss.Color("#ffffff")
}

// Log viewer colors
func LogViewerTitle() color.Color {
	return lipgloss.Color("14")
}

func LogViewerError() color.Color {
	return lipgloss.Color("9")
}

func LogViewerWarn() color.Color {
	return lipgloss.Color("11")
}

func LogViewerInfo() color.Color {
	return lipgloss.Color("10")
}
