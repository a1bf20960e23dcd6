// Package main implements deskfolio, a portfolio presented as a small
// desktop environment in the terminal, served locally or over SSH.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var debugMode bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "deskfolio [path]",
		Short: "A portfolio desktop for your terminal",
		Long: `deskfolio - a portfolio desktop for your terminal

Browse an about-me window, a resume, projects, a browser, an editor, a music
player and a contact form, all as draggable windows on a terminal desktop.
An optional path such as /resume opens that view directly.`,
		Example: `  # Run locally
  deskfolio

  # Open the resume directly
  deskfolio /resume

  # Serve over SSH
  deskfolio ssh --port 2222

  # Serve shareable links that hand out ssh commands
  deskfolio web`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context(), firstArg(args))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	var sshPort, sshHost, sshKeyPath string
	var withWeb bool

	sshCmd := &cobra.Command{
		Use:   "ssh",
		Short: "Run deskfolio as SSH server",
		Long: `Run deskfolio as an SSH server

Every connection gets its own desktop. The command a client passes is used as
a deep link, so "ssh -t host /resume" opens the resume. The server generates
a host key automatically if none exists.`,
		Example: `  # Start SSH server on the configured port
  deskfolio ssh

  # Start on a custom port with the web gateway alongside
  deskfolio ssh --port 2222 --web`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSSHServer(cmd.Context(), sshHost, sshPort, sshKeyPath, withWeb)
		},
	}

	sshCmd.Flags().StringVar(&sshPort, "port", "", "SSH server port (default from config)")
	sshCmd.Flags().StringVar(&sshHost, "host", "", "SSH server host (default from config)")
	sshCmd.Flags().StringVar(&sshKeyPath, "key-path", "", "Path to SSH host key (auto-generated if not specified)")
	sshCmd.Flags().BoolVar(&withWeb, "web", false, "Also run the HTTP gateway")

	var webAddr string
	webCmd := &cobra.Command{
		Use:   "web",
		Short: "Run the HTTP gateway",
		Long: `Run the HTTP gateway

Shareable URLs such as /resume answer with the ssh command that opens the same
view. The gateway also serves /healthz, /api/apps, /api/routes and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWebServer(cmd.Context(), webAddr)
		},
	}
	webCmd.Flags().StringVar(&webAddr, "addr", "", "Listen address (default from config)")

	routesCmd := &cobra.Command{
		Use:   "routes",
		Short: "List deep-link paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRoutes()
		},
	}

	appsCmd := &cobra.Command{
		Use:   "apps",
		Short: "List desktop applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listApps()
		},
	}

	var mailLimit int
	mailCmd := &cobra.Command{
		Use:   "mail",
		Short: "Read messages sent through the contact form",
	}
	mailListCmd := &cobra.Command{
		Use:   "list",
		Short: "List received messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listMail(cmd.Context(), mailLimit)
		},
	}
	mailListCmd.Flags().IntVarP(&mailLimit, "limit", "n", 20, "Maximum number of messages")
	mailCmd.AddCommand(mailListCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage deskfolio configuration",
		Long:  `Manage deskfolio configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the deskfolio configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order. A running desktop picks up
appearance and keybinding changes when the file is saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfigFile()
		},
	}

	var assumeYes bool
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the deskfolio configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults(assumeYes)
		},
	}
	configResetCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)

	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys", "kb"},
		Short:   "List all keybindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeybindings()
		},
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [path]",
		Short: "Print one frame of the desktop",
		Long: `Render a single frame of the desktop at the current terminal size and
print it to stdout. An optional path opens that view first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return snapshot(firstArg(args))
		},
	}

	rootCmd.AddCommand(sshCmd, webCmd, routesCmd, appsCmd, mailCmd, configCmd, keybindsCmd, snapshotCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
