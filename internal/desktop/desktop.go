// Package desktop is the bubbletea model of a deskfolio session: windows,
// taskbar, overlays and the input that drives them.
package desktop

import (
	"fmt"
	"slices"
	"time"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/deskfolio/internal/apps"
	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/frame"
	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/logging"
	"github.com/Gaurav-Gosain/deskfolio/internal/metrics"
	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/router"
	"github.com/Gaurav-Gosain/deskfolio/internal/sched"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
	"github.com/Gaurav-Gosain/deskfolio/internal/sysinfo"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

var logger = logging.New("desktop")

// TickMsg drives the scheduler, the tray and the clock.
type TickMsg time.Time

// ConfigReloadedMsg carries a configuration loaded after the file changed.
type ConfigReloadedMsg struct {
	Config *config.UserConfig
	Err    error
}

// TickCmd schedules the next tick at config.NormalFPS.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second/config.NormalFPS, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Options configures a Desktop.
type Options struct {
	Config  *config.UserConfig
	Profile *profile.Profile
	Mailer  apps.Mailer
	// Sender identifies the visitor for mail rate limiting.
	Sender  string
	Metrics *metrics.Metrics
	Clock   sched.Clock
	// Usage samples host load for the tray. Nil uses sysinfo.HostUsage.
	Usage sysinfo.Reader

	// Preferences seed window sizes and settings. When PreferencesPath is
	// set they are written back as they change.
	Preferences     *config.Preferences
	PreferencesPath string

	// InitialPath is a deep link opened at startup. A deep-linked session
	// skips the lock screen.
	InitialPath string
	Locked      bool

	Width, Height int
}

// window is an opened application.
type window struct {
	app    registry.AppID
	frame  *frame.Frame
	views  []registry.Content
	placed bool
	failed bool
}

// Desktop is the root model of one session.
type Desktop struct {
	cfg       *config.UserConfig
	keys      *config.KeybindRegistry
	profile   *profile.Profile
	store     *store.Store
	router    *router.Synchronizer
	sched     *sched.Scheduler
	factories registry.Factories
	configs   []registry.AppConfig
	metrics   *metrics.Metrics
	sampler   *sysinfo.Sampler

	prefs     *config.Preferences
	prefsPath string

	width, height int
	state         store.State

	windows map[registry.AppID]*window
	// order is the z-order, back to front.
	order   []registry.AppID
	focused registry.AppID
	capture *window

	notFound   string
	showHelp   bool
	showLogs   bool
	showCenter bool
	running    bool
	runPrompt  textinput.Model
	logs       []LogMessage
	logView    viewport.Model
	quitting   bool
}

// New builds a session and applies the initial deep link.
func New(opts Options) (*Desktop, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Profile == nil {
		opts.Profile = profile.Default()
	}
	if opts.Usage == nil {
		opts.Usage = sysinfo.HostUsage
	}
	if opts.Preferences == nil {
		opts.Preferences = config.NewPreferences()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 80, 24
	}

	s := sched.New(opts.Clock)
	configs := registry.Configs()
	factories := apps.Factories(apps.Deps{
		Profile: opts.Profile,
		Mailer:  opts.Mailer,
		Sender:  opts.Sender,
		Now:     s.Now,
	})
	if err := registry.Validate(configs, factories); err != nil {
		return nil, fmt.Errorf("invalid app registry: %w", err)
	}

	deepLinked := opts.InitialPath != "" && router.Normalize(opts.InitialPath) != "/"
	initial := store.State{
		Settings: store.Settings{
			Wifi:     opts.Preferences.Settings.Wifi,
			Mute:     opts.Preferences.Settings.Mute,
			Airplane: opts.Preferences.Settings.Airplane,
		},
		System: store.System{Locked: opts.Locked && !deepLinked},
	}

	d := &Desktop{
		cfg:       opts.Config,
		keys:      config.NewKeybindRegistry(opts.Config),
		profile:   opts.Profile,
		store:     store.New(initial),
		sched:     s,
		factories: factories,
		configs:   configs,
		metrics:   opts.Metrics,
		sampler:   sysinfo.NewSampler(opts.Usage),
		prefs:     opts.Preferences,
		prefsPath: opts.PreferencesPath,
		width:     opts.Width,
		height:    opts.Height,
		windows:   map[registry.AppID]*window{},
		runPrompt: apps.NewLineInput("> ", 128),
		logView:   viewport.New(),
	}
	d.state = d.store.State()
	d.runPrompt.SetWidth(40)
	d.sizeLogView()

	m := d.metrics
	d.store.Subscribe(func(a store.Action, _ store.State) {
		m.ObserveAction(a.Kind.String())
	})
	d.router = router.NewSynchronizer(d, router.WithObserver(func(path string, match router.Match) {
		m.ObserveNavigation(match.String())
		logger.Debug("navigate", "path", path, "match", match)
	}))

	d.Dispatch(store.Init(configs))
	if opts.InitialPath != "" {
		d.Navigate(opts.InitialPath)
	}
	return d, nil
}

// Dispatch applies an action to the session store and brings the windows
// in line with the resulting state. It satisfies router.Dispatcher.
func (d *Desktop) Dispatch(a store.Action) store.State {
	prev := d.state
	next := d.store.Dispatch(a)
	d.state = next
	d.reconcile(prev, next, a)
	d.LogInfo("%s", a)
	return next
}

// Navigate opens the view for a deep-link path. Unmapped paths show the
// not-found screen.
func (d *Desktop) Navigate(path string) router.Match {
	match := d.router.Navigate(path)
	switch match {
	case router.MatchNotFound:
		d.notFound = router.Normalize(path)
		d.LogWarn("no route for %s", d.notFound)
	default:
		d.notFound = ""
	}
	return match
}

// State returns the current store snapshot.
func (d *Desktop) State() store.State { return d.state }

// Focused returns the focused application, if any.
func (d *Desktop) Focused() registry.AppID { return d.focused }

// Frame returns the frame of an opened application.
func (d *Desktop) Frame(id registry.AppID) (*frame.Frame, bool) {
	w, ok := d.windows[id]
	if !ok {
		return nil, false
	}
	return w.frame, true
}

// Order returns the opened applications back to front.
func (d *Desktop) Order() []registry.AppID { return slices.Clone(d.order) }

// Capturing reports whether a window is being dragged or resized.
func (d *Desktop) Capturing() bool { return d.capture != nil }

// NotFound returns the unmatched path being shown, or "".
func (d *Desktop) NotFound() string { return d.notFound }

// Scheduler exposes the session scheduler.
func (d *Desktop) Scheduler() *sched.Scheduler { return d.sched }

// SetSize resizes the screen.
func (d *Desktop) SetSize(width, height int) {
	d.width, d.height = max(width, 1), max(height, 1)
	d.sizeLogView()
	vp := d.viewport()
	for _, w := range d.windows {
		if !w.placed {
			w.frame.Position = geometry.Center(vp, w.frame.Size).Origin()
		}
		w.frame.Fit(vp)
	}
}

// viewport is the area above the taskbar.
func (d *Desktop) viewport() geometry.Size {
	return geometry.Size{Width: d.width, Height: max(d.height-config.TaskbarHeight, 1)}
}

func (d *Desktop) Init() tea.Cmd {
	return TickCmd()
}

func (d *Desktop) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		d.tick(time.Time(msg))
		if d.quitting {
			return d, nil
		}
		return d, TickCmd()

	case tea.WindowSizeMsg:
		d.SetSize(msg.Width, msg.Height)
		return d, nil

	case tea.KeyPressMsg:
		return d, d.handleKey(msg)

	case tea.MouseClickMsg, tea.MouseReleaseMsg, tea.MouseMotionMsg, tea.MouseWheelMsg:
		return d, d.handleMouse(msg.(tea.MouseMsg))

	case ConfigReloadedMsg:
		d.applyConfig(msg)
		return d, nil

	case apps.MailResultMsg:
		if msg.Err != nil {
			d.metrics.ObserveMail("error")
			d.LogWarn("mail not sent: %v", msg.Err)
		} else {
			d.metrics.ObserveMail("ok")
			d.LogInfo("mail %s stored", msg.ID)
		}
		return d, d.broadcast(msg)
	}
	return d, d.broadcast(msg)
}

func (d *Desktop) View() tea.View {
	v := tea.NewView(d.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	return v
}

// tick runs due animation work, records failing views and refreshes the tray. The scheduler's
// clock is authoritative so tests can drive time.
func (d *Desktop) tick(_ time.Time) {
	now := d.sched.Now()
	d.sched.RunDue(now)
	d.auditContent()
	if d.cfg.Appearance.ShowTray && d.sampler.Update(now) {
		if err := d.sampler.Err(); err != nil {
			logger.Debug("sysinfo", "err", err)
		}
	}
}

// broadcast hands msg to every view that accepts messages.
func (d *Desktop) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range d.order {
		for _, v := range d.windows[id].views {
			if u, ok := v.(registry.Updater); ok {
				cmds = append(cmds, u.Update(msg))
			}
		}
	}
	return tea.Batch(cmds...)
}

func (d *Desktop) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		d.LogError("config reload failed: %v", msg.Err)
		return
	}
	cfg := msg.Config
	// only appearance and keybindings apply to a running session
	d.cfg.Appearance = cfg.Appearance
	d.cfg.Keybindings = cfg.Keybindings
	d.keys = config.NewKeybindRegistry(d.cfg)
	if err := theme.Initialize(cfg.Appearance.Theme); err != nil {
		d.LogWarn("theme %q: %v", cfg.Appearance.Theme, err)
	}
	d.refreshLogView()
	d.LogInfo("config reloaded (theme %q)", cfg.Appearance.Theme)
}

func (d *Desktop) frameOptions() frame.Options {
	return frame.Options{
		Scheduler:       d.sched,
		Duration:        d.cfg.AnimationDuration(),
		RestoreDuration: d.cfg.FastAnimationDuration(),
		MinSize:         geometry.Size{Width: d.cfg.Window.MinWidth, Height: d.cfg.Window.MinHeight},
		MinVisible:      d.cfg.Window.MinVisible,
	}
}

// SavePreferences writes window sizes and settings to the state file.
func (d *Desktop) SavePreferences() {
	if d.prefsPath == "" {
		return
	}
	s := d.state.Settings
	d.prefs.Settings = config.SettingsPreference{Wifi: s.Wifi, Mute: s.Mute, Airplane: s.Airplane}
	if err := d.prefs.Save(d.prefsPath); err != nil {
		d.LogError("failed to save preferences: %v", err)
	}
}
