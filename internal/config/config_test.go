package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/deskfolio/internal/config"
)

// =============================================================================
// Default Configuration Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Window.DefaultWidth < cfg.Window.MinWidth {
		t.Error("Expected default width >= minimum width")
	}
	if cfg.SSH.Port == "" {
		t.Error("Expected default SSH port to be set")
	}
}

func TestDefaultKeybindings(t *testing.T) {
	cfg := config.DefaultConfig()

	desktop := cfg.Keybindings.Desktop
	if desktop == nil {
		t.Fatal("Desktop keybindings are nil")
	}

	requiredActions := []string{
		"quit",
		"close_window",
		"next_window",
		"prev_window",
		"open_run",
	}

	for _, action := range requiredActions {
		keys, ok := desktop[action]
		if !ok {
			t.Errorf("Expected %s keybinding to exist", action)
			continue
		}
		if len(keys) == 0 {
			t.Errorf("Expected %s to have at least one key bound", action)
		}
	}
}

// =============================================================================
// Load / Save Tests
// =============================================================================

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := config.DefaultConfig()
	cfg.Appearance.Theme = "dracula"
	cfg.Window.DefaultWidth = 90
	if err := config.SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# deskfolio configuration") {
		t.Error("Expected header comment at top of file")
	}

	got, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if got.Appearance.Theme != "dracula" || got.Window.DefaultWidth != 90 {
		t.Errorf("round trip lost values: %+v", got.Appearance)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[appearance]\ntheme = \"nord\"\n\n[keybindings.desktop]\nclose_window = [\"ctrl+q\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Appearance.Theme != "nord" {
		t.Errorf("theme = %q", cfg.Appearance.Theme)
	}
	if cfg.Window.MinVisible != config.DefaultMinVisible {
		t.Errorf("MinVisible = %d, want default", cfg.Window.MinVisible)
	}

	registry := config.NewKeybindRegistry(cfg)
	if got := registry.GetAction("ctrl+q"); got != "close_window" {
		t.Errorf("ctrl+q -> %q, want close_window", got)
	}
	if got := registry.GetAction("ctrl+w"); got != "" {
		t.Errorf("ctrl+w should be unbound after override, got %q", got)
	}
	if got := registry.GetAction("ctrl+n"); got != "next_window" {
		t.Errorf("missing actions should fall back to defaults, got %q", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[appearance\n"},
		{"tiny window", "[window]\nmin_width = 2\nmin_height = 1\n"},
		{"unknown action", "[keybindings.desktop]\nlaunch_rockets = [\"x\"]\n"},
		{"bad modifier", "[keybindings.desktop]\nquit = [\"hyperdrive+q\"]\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := config.LoadFromPath(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DESKFOLIO_SSH_PORT", "2323")
	t.Setenv("DESKFOLIO_THEME", "gruvbox")
	t.Setenv("DESKFOLIO_ANIMATIONS", "false")

	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.SSH.Port != "2323" {
		t.Errorf("SSH.Port = %q", cfg.SSH.Port)
	}
	if cfg.Appearance.Theme != "gruvbox" {
		t.Errorf("Theme = %q", cfg.Appearance.Theme)
	}
	if cfg.Appearance.Animations {
		t.Error("Expected animations disabled by env")
	}
	if cfg.SSH.Host != "localhost" {
		t.Errorf("unset env var changed SSH.Host to %q", cfg.SSH.Host)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.SaveToPath(config.DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.UserConfig, 4)
	ready := make(chan struct{})
	go func() {
		close(ready)
		_ = config.Watch(ctx, path, func(cfg *config.UserConfig, err error) {
			if err != nil {
				return
			}
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()
	<-ready
	// give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)

	cfg := config.DefaultConfig()
	cfg.Appearance.Theme = "solarized"
	if err := config.SaveToPath(cfg, path); err != nil {
		t.Fatal(err)
	}

	// a truncate may be observed before the final write, so wait for the new value
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-reloaded:
			if got.Appearance.Theme == "solarized" {
				return
			}
		case <-deadline:
			t.Fatal("no reload with the new theme observed")
		}
	}
}

// =============================================================================
// Preferences Tests
// =============================================================================

func TestPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.toml")

	p, err := config.LoadPreferences(path)
	if err != nil {
		t.Fatalf("LoadPreferences on missing file: %v", err)
	}
	if !p.Settings.Wifi {
		t.Error("Expected wifi on by default")
	}
	if _, ok := p.WindowSize("mail"); ok {
		t.Error("Expected no remembered size")
	}

	p.SetWindowSize("mail", 80, 24)
	p.Settings.Mute = true
	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := config.LoadPreferences(path)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	w, ok := got.WindowSize("mail")
	if !ok || w.Width != 80 || w.Height != 24 {
		t.Errorf("WindowSize = %+v, %v", w, ok)
	}
	if !got.Settings.Mute {
		t.Error("Expected mute to persist")
	}
}

// =============================================================================
// KeybindRegistry Tests
// =============================================================================

func TestKeybindRegistry_GetKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	registry := config.NewKeybindRegistry(cfg)

	keys := registry.GetKeys("close_window")
	if len(keys) == 0 {
		t.Error("Expected close_window to have keys")
	}
}

func TestKeybindRegistry_GetAction(t *testing.T) {
	cfg := config.DefaultConfig()
	registry := config.NewKeybindRegistry(cfg)

	keys := registry.GetKeys("open_app_3")
	if len(keys) == 0 {
		t.Skip("No keys bound to open_app_3")
	}

	action := registry.GetAction(keys[0])
	if action != "open_app_3" {
		t.Errorf("Expected action 'open_app_3', got %q", action)
	}

	// lookups are case-insensitive
	if got := registry.GetAction(strings.ToUpper(keys[0])); got != "open_app_3" {
		t.Errorf("Expected case-insensitive match, got %q", got)
	}
}

func TestKeybindRegistry_GetKeysForDisplay(t *testing.T) {
	cfg := config.DefaultConfig()
	registry := config.NewKeybindRegistry(cfg)

	display := registry.GetKeysForDisplay("maximize_window")
	if display != "Alt+↑" {
		t.Errorf("GetKeysForDisplay(maximize_window) = %q", display)
	}
}

func TestKeybindRegistry_UnknownAction(t *testing.T) {
	cfg := config.DefaultConfig()
	registry := config.NewKeybindRegistry(cfg)

	keys := registry.GetKeys("nonexistent_action")
	if len(keys) != 0 {
		t.Errorf("Expected empty keys for nonexistent action, got %v", keys)
	}
}

func TestKeybindRegistry_UnknownKey(t *testing.T) {
	cfg := config.DefaultConfig()
	registry := config.NewKeybindRegistry(cfg)

	action := registry.GetAction("ctrl+shift+alt+super+hyper+x")
	if action != "" {
		t.Errorf("Expected empty action for unbound key, got %q", action)
	}
}

// =============================================================================
// Key Normalizer Tests
// =============================================================================

func TestKeyNormalizer(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		{"ctrl+a", "ctrl+a"},
		{"Ctrl+A", "ctrl+a"},
		{"CTRL+A", "ctrl+a"},
		{"return", "return"},
		{"return", "enter"},
		{"escape", "esc"},
		{"alt+escape", "alt+esc"},
	}

	for _, tc := range tests {
		t.Run(tc.input+"->"+tc.expected, func(t *testing.T) {
			got := normalizer.NormalizeKey(tc.input)
			if len(got) == 0 {
				t.Errorf("NormalizeKey(%q) returned empty slice", tc.input)
				return
			}
			found := false
			for _, k := range got {
				if k == tc.expected {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("NormalizeKey(%q) = %v, want to contain %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestKeyNormalizer_ValidateKey(t *testing.T) {
	normalizer := config.NewKeyNormalizer()

	tests := []struct {
		input   string
		isValid bool
	}{
		{"ctrl+a", true},
		{"n", true},
		{"enter", true},
		{"alt+down", true},
		{"f1", true},
		{"", false},
		{"ctrl+", false},
		{"wibble+x", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			valid, _ := normalizer.ValidateKey(tc.input)
			if valid != tc.isValid {
				t.Errorf("ValidateKey(%q) = %v, want %v", tc.input, valid, tc.isValid)
			}
		})
	}
}

// =============================================================================
// Animation Configuration Tests
// =============================================================================

func TestAnimationConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	duration := cfg.AnimationDuration()
	if duration <= 0 {
		t.Error("Expected positive animation duration when enabled")
	}

	fastDuration := cfg.FastAnimationDuration()
	if fastDuration <= 0 {
		t.Error("Expected positive fast animation duration when enabled")
	}
	if fastDuration >= duration {
		t.Error("Fast animation should be shorter than normal")
	}

	cfg.Appearance.Animations = false
	if cfg.AnimationDuration() >= 0 {
		t.Errorf("Expected negative duration when disabled, got %v", cfg.AnimationDuration())
	}
	if cfg.FastAnimationDuration() >= 0 {
		t.Errorf("Expected negative fast duration when disabled, got %v", cfg.FastAnimationDuration())
	}
}

// =============================================================================
// Action Descriptions Tests
// =============================================================================

func TestActionDescriptions(t *testing.T) {
	for action := range config.DefaultConfig().Keybindings.Desktop {
		desc, ok := config.ActionDescriptions[action]
		if !ok {
			t.Errorf("Expected description for action %q", action)
			continue
		}
		if desc == "" {
			t.Errorf("Description for %q should not be empty", action)
		}
	}
}

func TestGetKeybindingsSections(t *testing.T) {
	sections := config.GetKeybindings(config.NewKeybindRegistry(config.DefaultConfig()))
	if len(sections) < 3 {
		t.Fatalf("Expected at least 3 help sections, got %d", len(sections))
	}
	for _, s := range sections {
		if len(s.Bindings) == 0 {
			t.Errorf("section %q is empty", s.Title)
		}
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkKeybindRegistry_GetAction(b *testing.B) {
	cfg := config.DefaultConfig()
	registry := config.NewKeybindRegistry(cfg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = registry.GetAction("ctrl+w")
	}
}

func BenchmarkNormalizeKey(b *testing.B) {
	normalizer := config.NewKeyNormalizer()
	keys := []string{"ctrl+a", "Ctrl+Shift+B", "alt+1", "return"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = normalizer.NormalizeKey(keys[i%len(keys)])
	}
}
