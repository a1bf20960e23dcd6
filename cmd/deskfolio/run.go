package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/deskfolio/internal/apps"
	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/desktop"
	"github.com/Gaurav-Gosain/deskfolio/internal/logging"
	"github.com/Gaurav-Gosain/deskfolio/internal/mailbox"
	"github.com/Gaurav-Gosain/deskfolio/internal/metrics"
	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/sched"
	"github.com/Gaurav-Gosain/deskfolio/internal/server"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
	"github.com/Gaurav-Gosain/deskfolio/internal/web"
)

var logger = logging.New("deskfolio")

// filterMouseMotion drops pointer motion unless a window is being dragged
// or resized.
func filterMouseMotion(model tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseMotionMsg); !ok {
		return msg
	}
	d, ok := model.(*desktop.Desktop)
	if !ok || d.Capturing() {
		return msg
	}
	return nil
}

// setup applies --debug and loads everything a desktop needs.
func setup() (*config.UserConfig, *profile.Profile, error) {
	logging.SetDebug(debugMode)

	userConfig, err := config.LoadUserConfig()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "err", err)
		userConfig = config.DefaultConfig()
	}
	if err := theme.Initialize(userConfig.Appearance.Theme); err != nil {
		logger.Warn("failed to load theme", "theme", userConfig.Appearance.Theme, "err", err)
	}

	p, err := profile.Load(userConfig.Profile.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return userConfig, p, nil
}

func openMailbox(cfg *config.UserConfig) (*mailbox.Store, error) {
	path := cfg.Mail.Database
	if path == "" {
		var err error
		path, err = config.GetDataPath("mail.db")
		if err != nil {
			return nil, fmt.Errorf("could not determine mailbox path: %w", err)
		}
	}
	return mailbox.Open(path, mailbox.Options{
		RatePerMinute: cfg.Mail.RatePerMinute,
		Burst:         cfg.Mail.Burst,
	})
}

// mailer keeps a failed mailbox from becoming a non-nil interface.
func mailer(store *mailbox.Store) apps.Mailer {
	if store == nil {
		return nil
	}
	return store
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// tuiLogOutput keeps log lines off the alternate screen. With --debug they
// go to a file in the data directory.
func tuiLogOutput() (io.Writer, func()) {
	if !debugMode {
		return io.Discard, func() {}
	}
	path, err := config.GetDataPath("debug.log")
	if err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	fmt.Printf("Debug log: %s\n", path)
	return f, func() { _ = f.Close() }
}

func runLocal(ctx context.Context, path string) error {
	userConfig, p, err := setup()
	if err != nil {
		return err
	}

	store, err := openMailbox(userConfig)
	if err != nil {
		logger.Warn("mail is disabled", "err", err)
	} else {
		defer func() { _ = store.Close() }()
	}

	prefsPath, err := config.GetStatePath()
	if err != nil {
		return fmt.Errorf("could not determine state path: %w", err)
	}
	prefs, err := config.LoadPreferences(prefsPath)
	if err != nil {
		logger.Warn("ignoring unreadable preferences", "err", err)
		prefs = config.NewPreferences()
	}

	out, closeLog := tuiLogOutput()
	defer closeLog()
	logging.SetOutput(out)
	defer logging.SetOutput(os.Stderr)

	d, err := desktop.New(desktop.Options{
		Config:          userConfig,
		Profile:         p,
		Mailer:          mailer(store),
		Sender:          "local",
		Preferences:     prefs,
		PreferencesPath: prefsPath,
		InitialPath:     path,
		Locked:          true,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(
		d,
		tea.WithFPS(config.NormalFPS),
		tea.WithoutSignalHandler(),
		tea.WithFilter(filterMouseMotion),
	)

	ctx, cancel := signalContext(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		program.Send(tea.QuitMsg{})
	}()

	if configPath, err := config.GetConfigPath(); err == nil {
		go func() {
			err := config.Watch(ctx, configPath, func(cfg *config.UserConfig, err error) {
				program.Send(desktop.ConfigReloadedMsg{Config: cfg, Err: err})
			})
			if err != nil {
				logger.Warn("config hot reload is off", "err", err)
			}
		}()
	}

	_, err = program.Run()
	d.SavePreferences()
	if err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func runSSHServer(ctx context.Context, host, port, keyPath string, withWeb bool) error {
	userConfig, p, err := setup()
	if err != nil {
		return err
	}
	if host == "" {
		host = userConfig.SSH.Host
	}
	if port == "" {
		port = userConfig.SSH.Port
	}
	if keyPath == "" {
		keyPath = userConfig.SSH.KeyPath
	}

	store, err := openMailbox(userConfig)
	if err != nil {
		logger.Warn("mail is disabled", "err", err)
	} else {
		defer func() { _ = store.Close() }()
	}

	m := metrics.New()
	ctx, cancel := signalContext(ctx)
	defer cancel()

	errc := make(chan error, 1)
	if withWeb {
		gateway := web.NewServer(web.Config{
			Address: userConfig.Web.Address,
			SSHHost: userConfig.Web.SSHHost,
			SSHPort: port,
			Metrics: m,
		})
		go func() {
			if err := gateway.Start(ctx); err != nil {
				errc <- err
				cancel()
			}
		}()
	}

	logger.Info("starting deskfolio SSH server", "host", host, "port", port)
	err = server.StartSSHServer(ctx, &server.SSHServerConfig{
		Host:    host,
		Port:    port,
		KeyPath: keyPath,
		Config:  userConfig,
		Profile: p,
		Mailer:  mailer(store),
		Metrics: m,
	})
	if err != nil {
		return fmt.Errorf("SSH server error: %w", err)
	}
	select {
	case err := <-errc:
		return fmt.Errorf("web gateway error: %w", err)
	default:
		return nil
	}
}

func runWebServer(ctx context.Context, addr string) error {
	userConfig, _, err := setup()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = userConfig.Web.Address
	}

	ctx, cancel := signalContext(ctx)
	defer cancel()

	gateway := web.NewServer(web.Config{
		Address: addr,
		SSHHost: userConfig.Web.SSHHost,
		SSHPort: userConfig.SSH.Port,
		Metrics: metrics.New(),
	})
	return gateway.Start(ctx)
}

// snapshot renders one settled frame at the terminal size.
func snapshot(path string) error {
	userConfig, p, err := setup()
	if err != nil {
		return err
	}
	logging.SetLevel(log.ErrorLevel)

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		width, height = 80, 24
	}

	clock := &sched.ManualClock{T: time.Now()}
	d, err := desktop.New(desktop.Options{
		Config:      userConfig,
		Profile:     p,
		Clock:       clock,
		InitialPath: path,
		Width:       width,
		Height:      height,
	})
	if err != nil {
		return err
	}

	clock.Advance(time.Second)
	d.Update(desktop.TickMsg(clock.T))
	fmt.Println(d.Render())
	return nil
}
