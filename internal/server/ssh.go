// Package server serves deskfolio sessions over SSH.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/wish/v2"
	"charm.land/wish/v2/bubbletea"
	"charm.land/wish/v2/logging"
	"github.com/charmbracelet/ssh"

	"github.com/Gaurav-Gosain/deskfolio/internal/apps"
	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/desktop"
	applog "github.com/Gaurav-Gosain/deskfolio/internal/logging"
	"github.com/Gaurav-Gosain/deskfolio/internal/metrics"
	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
)

var logger = applog.New("ssh")

// ShutdownTimeout bounds how long open sessions get to finish on shutdown.
const ShutdownTimeout = 10 * time.Second

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	Host    string
	Port    string
	KeyPath string // defaults to ~/.ssh/deskfolio_host_key

	Config  *config.UserConfig
	Profile *profile.Profile
	Mailer  apps.Mailer
	Metrics *metrics.Metrics
}

// StartSSHServer runs the SSH server until ctx is cancelled. Every
// connection gets its own desktop.
func StartSSHServer(ctx context.Context, cfg *SSHServerConfig) error {
	hostKeyPath, err := hostKeyPath(cfg.KeyPath)
	if err != nil {
		return err
	}

	server, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(cfg.Host, cfg.Port)),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(cfg)),
			sessionsMiddleware(cfg.Metrics),
			logging.Middleware(),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting SSH server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("SSH server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func hostKeyPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ssh", "deskfolio_host_key"), nil
}

// teaHandler creates a desktop for each SSH session. The command the client
// passes, as in `ssh -t host /resume`, is the deep link.
func teaHandler(cfg *SSHServerConfig) bubbletea.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		pty, _, active := sess.Pty()
		if !active {
			wish.Fatalln(sess, "deskfolio needs a terminal, try ssh -t")
			return nil, nil
		}

		userConfig := cfg.Config
		if userConfig == nil {
			userConfig = config.DefaultConfig()
		}

		d, err := desktop.New(desktop.Options{
			Config:      userConfig,
			Profile:     cfg.Profile,
			Mailer:      cfg.Mailer,
			Sender:      "ssh:" + remoteHost(sess.RemoteAddr()),
			Metrics:     cfg.Metrics,
			InitialPath: DeepLink(sess.Command()),
			Locked:      true,
			Width:       pty.Window.Width,
			Height:      pty.Window.Height,
		})
		if err != nil {
			logger.Error("failed to create desktop", "err", err)
			wish.Fatalln(sess, "deskfolio is unavailable right now")
			return nil, nil
		}

		return d, []tea.ProgramOption{
			tea.WithFPS(config.NormalFPS),
		}
	}
}

// sessionsMiddleware keeps the active sessions gauge current.
func sessionsMiddleware(m *metrics.Metrics) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			m.SessionStarted()
			defer m.SessionEnded()
			next(sess)
		}
	}
}

// DeepLink turns an SSH command into a desktop path. No command means the
// desktop root.
func DeepLink(cmd []string) string {
	if len(cmd) == 0 {
		return ""
	}
	path := strings.TrimSpace(strings.Join(cmd, " "))
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func remoteHost(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
