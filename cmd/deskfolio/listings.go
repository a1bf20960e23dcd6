package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/router"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printTable(title string, t *table.Table) {
	fmt.Println()
	fmt.Println(titleStyle.Render(title))
	fmt.Println(t.Render())
	fmt.Println()
}

func listRoutes() error {
	configs := registry.Configs()
	names := map[registry.AppID]registry.AppConfig{}
	for _, c := range configs {
		names[c.ID] = c
	}

	t := newTable("Path", "App", "View")
	for _, r := range router.Paths() {
		cfg := names[r.App]
		view := ""
		if r.Index < len(cfg.SubComponents) {
			view = cfg.SubComponents[r.Index].Name
		}
		t.Row(r.Path, cfg.Name, view)
	}
	printTable("Deep links", t)
	return nil
}

func listApps() error {
	t := newTable("Order", "Id", "Name", "Desktop", "Views")
	for _, c := range registry.Configs() {
		views := make([]string, len(c.SubComponents))
		for i, sc := range c.SubComponents {
			views[i] = sc.Name
		}
		desktop := "no"
		if c.ShowInDesktop {
			desktop = "yes"
		}
		t.Row(strconv.Itoa(c.Order), string(c.ID), c.Icon+" "+c.Name, desktop, strings.Join(views, ", "))
	}
	printTable("Applications", t)
	return nil
}

func listMail(ctx context.Context, limit int) error {
	userConfig, _, err := setup()
	if err != nil {
		return err
	}
	store, err := openMailbox(userConfig)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if ctx == nil {
		ctx = context.Background()
	}
	msgs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Println(noteStyle.Render("No messages yet."))
		return nil
	}

	t := newTable("Received", "From", "Email", "Message")
	for _, m := range msgs {
		body := strings.Join(strings.Fields(m.Body), " ")
		t.Row(m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Name, m.Email, ansi.Truncate(body, 48, "…"))
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	printTable(fmt.Sprintf("Inbox (%d of %d)", len(msgs), total), t)
	return nil
}

func listKeybindings() error {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintln(os.Stderr, "Using default keybindings...")
		userConfig = config.DefaultConfig()
	}

	for _, section := range config.GetKeybindings(config.NewKeybindRegistry(userConfig)) {
		t := newTable("Keys", "Action")
		for _, b := range section.Bindings {
			t.Row(b.Key, b.Description)
		}
		printTable(section.Title, t)
	}
	return nil
}

// printConfigPath prints the config file path
func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

// editConfigFile opens the config file in $EDITOR
func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Config file doesn't exist, creating default at: %s\n", configPath)
		if err := config.SaveToPath(config.DefaultConfig(), configPath); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "vi", "nano", "emacs"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return errors.New("no editor found. Please set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// resetConfigToDefaults resets the configuration file to default settings
func resetConfigToDefaults(assumeYes bool) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !assumeYes {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", configPath)
		fmt.Printf("Are you sure you want to reset to defaults? (yes/no): ")

		var response string
		_, _ = fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.SaveToPath(config.DefaultConfig(), configPath); err != nil {
		return err
	}

	fmt.Printf("Configuration reset to defaults\n")
	fmt.Printf("  Location: %s\n", configPath)
	fmt.Println("\nYou can customize it with: deskfolio config edit")
	return nil
}
