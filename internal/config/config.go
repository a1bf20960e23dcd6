// Package config loads and saves deskfolio's user configuration and preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

const (
	// NormalFPS is the UI tick rate.
	NormalFPS = 30
	// TaskbarHeight is the number of rows reserved at the bottom of the screen.
	TaskbarHeight = 1
	// IconColumnWidth is the width of the desktop icon column.
	IconColumnWidth = 14

	// DefaultAnimationMS is the launch/restore animation length in milliseconds.
	DefaultAnimationMS = 250
	// FastAnimationMS is used for the snappier taskbar restore.
	FastAnimationMS = 120

	DefaultWindowWidth  = 72
	DefaultWindowHeight = 22
	DefaultMinWidth     = 28
	DefaultMinHeight    = 8
	DefaultMinVisible   = 12

	// Layer z-indexes. Windows stack upwards from ZIndexWindows in z-order.
	ZIndexDesktop      = 0
	ZIndexIcons        = 1
	ZIndexWindows      = 10
	ZIndexActionCenter = 1000
	ZIndexOverlay      = 1001
	ZIndexTaskbar      = 1002

	// EnvPrefix is prepended to every environment override.
	EnvPrefix = "DESKFOLIO"

	appDir = "deskfolio"
)

// UserConfig is the on-disk configuration.
type UserConfig struct {
	Appearance  AppearanceConfig  `toml:"appearance"`
	Window      WindowConfig      `toml:"window"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
	SSH         SSHConfig         `toml:"ssh"`
	Web         WebConfig         `toml:"web"`
	Mail        MailConfig        `toml:"mail"`
	Profile     ProfileConfig     `toml:"profile"`
}

// AppearanceConfig controls look and feel. It is the only section reloaded live.
type AppearanceConfig struct {
	Theme       string `toml:"theme" comment:"bubbletint theme id, empty for the built-in palette"`
	Animations  bool   `toml:"animations"`
	AnimationMS int    `toml:"animation_ms"`
	Clock24h    bool   `toml:"clock_24h"`
	ShowTray    bool   `toml:"show_tray" comment:"show CPU/RAM usage in the taskbar"`
}

// WindowConfig sets default and minimum window geometry, in cells.
type WindowConfig struct {
	DefaultWidth  int `toml:"default_width"`
	DefaultHeight int `toml:"default_height"`
	MinWidth      int `toml:"min_width"`
	MinHeight     int `toml:"min_height"`
	MinVisible    int `toml:"min_visible" comment:"title bar columns that must stay on screen"`
}

// KeybindingsConfig maps action names to key lists.
type KeybindingsConfig struct {
	Desktop map[string][]string `toml:"desktop"`
}

type SSHConfig struct {
	Host    string `toml:"host"`
	Port    string `toml:"port"`
	KeyPath string `toml:"key_path" comment:"defaults to ~/.ssh/deskfolio_host_key"`
}

type WebConfig struct {
	Address string `toml:"address"`
	SSHHost string `toml:"ssh_host" comment:"host shown in the ssh command the gateway hands out"`
}

type MailConfig struct {
	Database      string `toml:"database" comment:"defaults to the XDG data directory"`
	RatePerMinute int    `toml:"rate_per_minute"`
	Burst         int    `toml:"burst"`
}

type ProfileConfig struct {
	Path string `toml:"path" comment:"YAML profile, empty for the bundled one"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Appearance: AppearanceConfig{
			Animations:  true,
			AnimationMS: DefaultAnimationMS,
			ShowTray:    true,
		},
		Window: WindowConfig{
			DefaultWidth:  DefaultWindowWidth,
			DefaultHeight: DefaultWindowHeight,
			MinWidth:      DefaultMinWidth,
			MinHeight:     DefaultMinHeight,
			MinVisible:    DefaultMinVisible,
		},
		Keybindings: KeybindingsConfig{
			Desktop: defaultDesktopKeys(),
		},
		SSH: SSHConfig{
			Host: "localhost",
			Port: "2222",
		},
		Web: WebConfig{
			Address: "localhost:8080",
			SSHHost: "localhost",
		},
		Mail: MailConfig{
			RatePerMinute: 2,
			Burst:         3,
		},
	}
}

// AnimationDuration returns the launch/restore animation length. A negative
// value means animations are disabled.
func (c *UserConfig) AnimationDuration() time.Duration {
	if !c.Appearance.Animations {
		return -1
	}
	ms := c.Appearance.AnimationMS
	if ms <= 0 {
		ms = DefaultAnimationMS
	}
	return time.Duration(ms) * time.Millisecond
}

// FastAnimationDuration is the shorter animation used for taskbar restores.
func (c *UserConfig) FastAnimationDuration() time.Duration {
	d := c.AnimationDuration()
	if d < 0 {
		return d
	}
	return min(d, FastAnimationMS*time.Millisecond)
}

// Validate rejects configurations the desktop cannot work with.
func (c *UserConfig) Validate() error {
	var errs []error
	if c.Window.MinWidth < 12 || c.Window.MinHeight < 3 {
		errs = append(errs, fmt.Errorf("window minimum %dx%d is too small (need at least 12x3)", c.Window.MinWidth, c.Window.MinHeight))
	}
	if c.Window.DefaultWidth < c.Window.MinWidth || c.Window.DefaultHeight < c.Window.MinHeight {
		errs = append(errs, errors.New("window default size is below the minimum"))
	}
	if c.Window.MinVisible < 1 {
		errs = append(errs, errors.New("window.min_visible must be positive"))
	}
	if c.Mail.RatePerMinute < 0 || c.Mail.Burst < 0 {
		errs = append(errs, errors.New("mail rate limits must not be negative"))
	}
	normalizer := NewKeyNormalizer()
	for action, keys := range c.Keybindings.Desktop {
		if _, ok := ActionDescriptions[action]; !ok {
			errs = append(errs, fmt.Errorf("keybindings: unknown action %q", action))
			continue
		}
		for _, k := range keys {
			if ok, reason := normalizer.ValidateKey(k); !ok {
				errs = append(errs, fmt.Errorf("keybindings.%s: %q: %s", action, k, reason))
			}
		}
	}
	return errors.Join(errs...)
}

// GetConfigPath returns the config file location, creating its directory.
func GetConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appDir, "config.toml"))
}

// GetStatePath returns the preferences file location, creating its directory.
func GetStatePath() (string, error) {
	return xdg.StateFile(filepath.Join(appDir, "state.toml"))
}

// GetDataPath returns a file location in the data directory, creating its directory.
func GetDataPath(name string) (string, error) {
	return xdg.DataFile(filepath.Join(appDir, name))
}

// LoadUserConfig reads the config file, writing the defaults first if it does
// not exist, then applies environment overrides.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := SaveToPath(DefaultConfig(), path); err != nil {
			return nil, err
		}
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath reads a config file. Missing fields keep their defaults and
// missing keybinding actions fall back to the default keys.
func LoadFromPath(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Keybindings.Desktop = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	fillMissingKeybindings(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath writes cfg as TOML with a short header.
func SaveToPath(cfg *UserConfig, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# deskfolio configuration\n")
	sb.WriteString("# Keybindings map an action to a list of keys, e.g. close_window = [\"ctrl+w\"]\n")
	sb.WriteString("# Environment variables prefixed with " + EnvPrefix + "_ override these values\n\n")
	sb.Write(data)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveConfig writes cfg to the default config path.
func SaveConfig(cfg *UserConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	return SaveToPath(cfg, path)
}

type envOverrides struct {
	Theme        string `envconfig:"THEME"`
	Animations   *bool  `envconfig:"ANIMATIONS"`
	SSHHost      string `envconfig:"SSH_HOST"`
	SSHPort      string `envconfig:"SSH_PORT"`
	SSHKeyPath   string `envconfig:"SSH_KEY_PATH"`
	WebAddress   string `envconfig:"WEB_ADDRESS"`
	WebSSHHost   string `envconfig:"WEB_SSH_HOST"`
	MailDatabase string `envconfig:"MAIL_DATABASE"`
	Profile      string `envconfig:"PROFILE"`
}

// ApplyEnv overlays DESKFOLIO_* environment variables onto cfg.
func ApplyEnv(cfg *UserConfig) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Appearance.Theme, env.Theme)
	set(&cfg.SSH.Host, env.SSHHost)
	set(&cfg.SSH.Port, env.SSHPort)
	set(&cfg.SSH.KeyPath, env.SSHKeyPath)
	set(&cfg.Web.Address, env.WebAddress)
	set(&cfg.Web.SSHHost, env.WebSSHHost)
	set(&cfg.Mail.Database, env.MailDatabase)
	set(&cfg.Profile.Path, env.Profile)
	if env.Animations != nil {
		cfg.Appearance.Animations = *env.Animations
	}
	return nil
}

func fillMissingKeybindings(cfg *UserConfig) {
	if cfg.Keybindings.Desktop == nil {
		cfg.Keybindings.Desktop = map[string][]string{}
	}
	for action, keys := range defaultDesktopKeys() {
		if _, ok := cfg.Keybindings.Desktop[action]; !ok {
			cfg.Keybindings.Desktop[action] = keys
		}
	}
}
