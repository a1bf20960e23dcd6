package desktop

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/Gaurav-Gosain/deskfolio/internal/apps"
	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

func (d *Desktop) renderLockScreen() string {
	now := d.sched.Now()
	clock := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Render(d.clock())
	date := lipgloss.NewStyle().Foreground(theme.DesktopFg()).Render(now.Format("Monday, January 2"))
	name := lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight()).Render(d.profile.Name)
	hint := lipgloss.NewStyle().Foreground(theme.Muted()).Render("Press any key or click to unlock")

	body := lipgloss.JoinVertical(lipgloss.Center, clock, date, "", "", name, d.profile.Title, "", hint)
	return lipgloss.NewStyle().
		Width(d.width).
		Height(d.height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Background(theme.DesktopBg()).
		Foreground(theme.DesktopFg()).
		Render(body)
}

func (d *Desktop) renderBlueScreen() string {
	text := strings.Join([]string{
		":(",
		"",
		"Your desktop ran into a problem.",
		"",
		fmt.Sprintf("404: %s was not found.", d.notFound),
		"",
		"Press any key to return to the desktop.",
	}, "\n")
	block := lipgloss.NewStyle().Align(lipgloss.Left).Render(text)
	return lipgloss.NewStyle().
		Width(d.width).
		Height(d.height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Background(theme.BlueScreenBg()).
		Foreground(theme.BlueScreenFg()).
		Render(block)
}

func (d *Desktop) overlayBox(title, body string, width int) string {
	t := lipgloss.NewStyle().Foreground(theme.LogViewerTitle()).Bold(true).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderFocused()).
		Padding(0, 1).
		Width(min(width, max(d.width-2, 10))).
		Render(t + "\n\n" + body)
}

func (d *Desktop) renderHelp() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Padding(0, 1)
	section := lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight()).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	var rows [][]string
	sectionRows := map[int]bool{}
	for _, s := range config.GetKeybindings(d.keys) {
		sectionRows[len(rows)] = true
		rows = append(rows, []string{s.Title, ""})
		for _, b := range s.Bindings {
			rows = append(rows, []string{b.Key, b.Description})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Muted())).
		Headers("Keys", "Action").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case sectionRows[row]:
				return section
			default:
				return cell
			}
		})

	body := t.Render()
	if h := d.viewport().Height - 6; h > 0 && lipgloss.Height(body) > h {
		body = strings.Join(strings.Split(body, "\n")[:h], "\n")
	}
	hint := lipgloss.NewStyle().Foreground(theme.Muted()).Render("esc closes this help")
	return d.overlayBox("Keyboard shortcuts", body+"\n"+hint, 64)
}

func (d *Desktop) renderLogs() string {
	hint := lipgloss.NewStyle().Foreground(theme.Muted())
	if len(d.logs) == 0 {
		return d.overlayBox("System Logs", hint.Render("No log messages yet.")+"\n\n"+hint.Render("esc closes the log viewer"), 80)
	}

	body := d.logView.View()
	if total, per := len(d.logs), d.logView.Height(); total > per {
		top := d.logView.YOffset()
		body += "\n\n" + hint.Render(fmt.Sprintf("Showing %d-%d of %d logs (↑/↓ to scroll)", top+1, min(top+per, total), total))
	}
	body += "\n\n" + hint.Render("esc closes the log viewer")
	return d.overlayBox("System Logs", body, 80)
}

func (d *Desktop) renderRunPrompt() string {
	hint := lipgloss.NewStyle().Foreground(theme.Muted()).Render("Type a path such as /resume and press enter")
	return d.overlayBox("Run", d.runPrompt.View()+"\n\n"+hint, 50)
}

// renderActionCenter draws the quick settings panel at r.
func (d *Desktop) renderActionCenter(r geometry.Rect) string {
	innerW := max(r.Width-2, 1)
	on := lipgloss.NewStyle().Foreground(theme.Success()).Bold(true)
	off := lipgloss.NewStyle().Foreground(theme.Muted())

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Render("Quick settings"),
		"",
	}
	for _, t := range centerToggles {
		state, style := "off", off
		if d.setting(t.setting) {
			state, style = "on ", on
		}
		lines = append(lines, fmt.Sprintf(" %s  %s", style.Render("["+state+"]"), t.label))
	}

	lines = append(lines, "", lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Render("Now playing"))
	playing := "Nothing playing"
	if line, on, ok := d.nowPlaying(); ok {
		playing = "⏸ " + line
		if on {
			playing = "♪ " + line
		}
	}
	if d.state.Settings.Mute {
		playing += " (muted)"
	}
	lines = append(lines, " "+playing)

	themeName := theme.Name()
	if themeName == "" {
		themeName = "default"
	}
	lines = append(lines, "",
		lipgloss.NewStyle().Foreground(theme.Muted()).Render(d.sched.Now().Format("Mon Jan 2")+" · theme "+themeName))

	content := strings.Join(fitBlock(strings.Join(lines, "\n"), innerW, max(r.Height-2, 0)), "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderFocused()).
		Background(theme.WindowBg()).
		Foreground(theme.WindowFg()).
		Render(content)
}

// nowPlaying reports the music player's current track while it is open.
func (d *Desktop) nowPlaying() (line string, playing, ok bool) {
	w, open := d.windows[registry.JioSaavn]
	if !open {
		return "", false, false
	}
	for _, v := range w.views {
		if np, is := v.(apps.NowPlayer); is {
			line, playing = np.NowPlaying(d.sched.Now())
			return line, playing, line != ""
		}
	}
	return "", false, false
}

func (d *Desktop) setting(s store.Setting) bool {
	switch s {
	case store.SettingWifi:
		return d.state.Settings.Wifi
	case store.SettingAirplane:
		return d.state.Settings.Airplane
	case store.SettingMute:
		return d.state.Settings.Mute
	}
	return false
}
