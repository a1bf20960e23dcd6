package desktop

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// titleControls are the minimize, maximize and close buttons followed by
// two cells of padding. Their columns match frame.HitTest.
const titleControls = " ─  □  ×   "

// Render draws the whole screen. It composes the desktop from lipgloss
// layers and has no side effects on the session.
func (d *Desktop) Render() string {
	if d.width <= 0 || d.height <= 0 {
		return ""
	}
	if d.notFound != "" {
		return d.renderBlueScreen()
	}
	if d.state.System.Locked {
		return d.renderLockScreen()
	}

	canvas := lipgloss.NewCanvas(d.width, d.height)
	canvas.Compose(lipgloss.NewCompositor(d.layers()...))
	return canvas.Render()
}

// layers returns every layer of the unlocked desktop.
func (d *Desktop) layers() []*lipgloss.Layer {
	vp := d.viewport()
	wallpaper := lipgloss.NewStyle().
		Background(theme.DesktopBg()).
		Width(vp.Width).
		Height(vp.Height).
		Render("")

	layers := []*lipgloss.Layer{
		lipgloss.NewLayer(wallpaper).Z(config.ZIndexDesktop).ID("desktop"),
	}
	layers = append(layers, d.iconLayers()...)

	now := d.sched.Now()
	for i, w := range d.visibleOrder() {
		b := w.frame.RenderBounds(vp, now)
		if b.Empty() {
			continue
		}
		layers = append(layers, lipgloss.NewLayer(d.renderWindow(w, b)).
			X(b.X).Y(b.Y).Z(config.ZIndexWindows+i).ID(string(w.app)))
	}

	if d.showCenter {
		r := d.centerRect()
		layers = append(layers, lipgloss.NewLayer(d.renderActionCenter(r)).
			X(r.X).Y(r.Y).Z(config.ZIndexActionCenter).ID("action-center"))
	}
	if d.showHelp {
		layers = append(layers, d.centeredLayer(d.renderHelp(), "help"))
	}
	if d.showLogs {
		layers = append(layers, d.centeredLayer(d.renderLogs(), "logs"))
	}
	if d.running {
		layers = append(layers, d.centeredLayer(d.renderRunPrompt(), "run"))
	}

	return append(layers, d.taskbarLayer().Y(vp.Height))
}

func (d *Desktop) centeredLayer(block, id string) *lipgloss.Layer {
	vp := d.viewport()
	x := (vp.Width - lipgloss.Width(block)) / 2
	y := (vp.Height - lipgloss.Height(block)) / 2
	return lipgloss.NewLayer(block).X(x).Y(y).Z(config.ZIndexOverlay).ID(id)
}

func (d *Desktop) iconLayers() []*lipgloss.Layer {
	style := lipgloss.NewStyle().Background(theme.DesktopBg()).Foreground(theme.DesktopFg())
	iconStyle := style.Foreground(theme.Accent()).Bold(true)

	var layers []*lipgloss.Layer
	for i, rec := range d.iconRows() {
		label := ansi.Truncate(rec.Name, config.IconColumnWidth-4, "…")
		layers = append(layers, lipgloss.NewLayer(iconStyle.Render(" "+rec.Icon+" ")+style.Render(label)).
			X(1).Y(1+2*i).Z(config.ZIndexIcons).ID("icon-"+string(rec.ID)))
	}
	return layers
}

// renderWindow draws a window's chrome and content at b. The result is
// exactly b.Width by b.Height cells.
func (d *Desktop) renderWindow(w *window, b geometry.Rect) string {
	rec, _ := d.state.App(w.app)
	focused := d.focused == w.app

	titleBg := theme.TitleUnfocusedBg()
	border := theme.BorderUnfocused()
	if focused {
		titleBg = theme.TitleFocusedBg()
		border = theme.BorderFocused()
	}
	fill := lipgloss.NewStyle().Background(theme.WindowBg()).Foreground(theme.WindowFg())

	// too small to draw chrome, which happens mid-animation
	if b.Width < len([]rune(titleControls))+4 || b.Height < 3 {
		rows := make([]string, max(b.Height, 0))
		for i := range rows {
			style := fill
			if i == 0 {
				style = lipgloss.NewStyle().Background(titleBg)
			}
			rows[i] = style.Render(strings.Repeat(" ", max(b.Width, 0)))
		}
		return strings.Join(rows, "\n")
	}

	lines := make([]string, 0, b.Height)
	lines = append(lines, d.renderTitle(rec, focused, b.Width))

	l := layoutChrome(geometry.Rect{Width: b.Width, Height: b.Height}, rec.ShowLinks)
	inner := make([]string, b.Height-2)

	if l.nav {
		inner[0] = d.renderNavBar(rec, b.Width-2)
	}
	var side []string
	if l.sidebar.Width > 0 {
		side = d.renderSidebar(rec, l.sidebar.Width, l.sidebar.Height)
	}

	body := fitBlock(d.renderContent(w, l.content, focused), l.content.Width, l.content.Height)
	top := l.content.Y - 1
	sep := lipgloss.NewStyle().Foreground(border).Render("│")
	for i, line := range body {
		if side != nil {
			line = side[i] + sep + line
		}
		inner[top+i] = line
	}

	bs := lipgloss.NewStyle().Foreground(border).Background(theme.WindowBg())
	for _, line := range inner {
		line = strings.Join(fitBlock(line, b.Width-2, 1), "")
		lines = append(lines, bs.Render("│")+fill.Render(line)+bs.Render("│"))
	}

	bottom := "└" + strings.Repeat("─", b.Width-2) + "◢"
	if rec.IsMaximized {
		bottom = "└" + strings.Repeat("─", b.Width-2) + "┘"
	}
	lines = append(lines, bs.Render(bottom))
	return strings.Join(lines, "\n")
}

func (d *Desktop) renderTitle(rec store.ApplicationRecord, focused bool, width int) string {
	style := lipgloss.NewStyle().Background(theme.TitleUnfocusedBg()).Foreground(theme.TitleFg()).Bold(true)
	if focused {
		style = style.Background(theme.TitleFocusedBg())
	}

	title := " " + rec.Icon + " " + rec.Name
	if len(rec.SubComponents) > 1 {
		title += " · " + rec.SubComponents[rec.ActiveIndex()].Name
	}
	controlsWidth := ansi.StringWidth(titleControls)
	title = ansi.Truncate(title, width-controlsWidth, "…")
	title += strings.Repeat(" ", max(width-controlsWidth-ansi.StringWidth(title), 0))

	controls := style.Render(" ─  □ ") +
		style.Foreground(theme.CloseButton()).Render(" × ") +
		style.Render("  ")
	return style.Render(title) + controls
}

func (d *Desktop) renderNavBar(rec store.ApplicationRecord, width int) string {
	enabled := lipgloss.NewStyle().Foreground(theme.Accent()).Bold(true)
	disabled := lipgloss.NewStyle().Foreground(theme.Muted())

	i := rec.ActiveIndex()
	back, fwd := disabled, disabled
	if i > 0 {
		back = enabled
	}
	if i < len(rec.SubComponents)-1 {
		fwd = enabled
	}
	crumb := " " + rec.Name
	if len(rec.SubComponents) > 0 {
		crumb += " › " + rec.SubComponents[i].Name
	}
	return ansi.Truncate(back.Render(" ‹ ")+fwd.Render(" › ")+disabled.Render(crumb), width, "")
}

func (d *Desktop) renderSidebar(rec store.ApplicationRecord, width, height int) []string {
	normal := lipgloss.NewStyle().Foreground(theme.WindowFg())
	active := lipgloss.NewStyle().Foreground(theme.WindowBg()).Background(theme.Accent()).Bold(true)

	out := make([]string, height)
	for row := range out {
		text := strings.Repeat(" ", width)
		style := normal
		if row < len(rec.SubComponents) {
			text = strings.Join(fitBlock(" "+rec.SubComponents[row].Name, width, 1), "")
			if row == rec.ActiveIndex() {
				style = active
			}
		}
		out[row] = style.Render(text)
	}
	return out
}

// renderContent renders the active view. A failed view shows
// registry.FailureMessage; auditContent records the failure.
func (d *Desktop) renderContent(w *window, r geometry.Rect, focused bool) string {
	out, err := d.viewContent(w, r, focused)
	if err != nil {
		return lipgloss.NewStyle().Foreground(theme.Danger()).Render(out)
	}
	return out
}

// taskbarLayer draws the taskbar with one child layer per segment.
func (d *Desktop) taskbarLayer() *lipgloss.Layer {
	base := lipgloss.NewStyle().Background(theme.TaskbarBg()).Foreground(theme.TaskbarFg())
	active := base.Background(theme.PillActiveBg()).Bold(true)
	minimized := base.Background(theme.PillMinimizedBg()).Foreground(theme.Muted())

	bar := lipgloss.NewLayer(base.Width(d.width).Render("")).Z(config.ZIndexTaskbar).ID("taskbar")
	for _, s := range d.taskbarSegments() {
		style := base
		switch s.kind {
		case segmentPill:
			rec, _ := d.state.App(s.app)
			switch {
			case rec.IsMinimized:
				style = minimized
			case s.app == d.focused:
				style = active
			}
		case segmentCenter:
			if d.showCenter {
				style = active
			}
		}
		bar.AddLayers(lipgloss.NewLayer(style.Render(s.text)).X(s.x).Z(config.ZIndexTaskbar + 1))
	}
	return bar
}

// viewContent renders w's active view into r, containing any failure.
func (d *Desktop) viewContent(w *window, r geometry.Rect, focused bool) (string, error) {
	view, index := d.activeView(w)
	return registry.SafeView(view, registry.ViewContext{
		Width:   r.Width,
		Height:  r.Height,
		Index:   index,
		Focused: focused,
		Now:     d.sched.Now(),
	})
}

// auditContent records views that start or stop failing. It runs on the
// tick so rendering stays free of side effects.
func (d *Desktop) auditContent() {
	vp := d.viewport()
	for _, w := range d.visibleOrder() {
		rec, _ := d.state.App(w.app)
		b := w.frame.Bounds(vp)
		l := layoutChrome(geometry.Rect{Width: b.Width, Height: b.Height}, rec.ShowLinks)
		_, err := d.viewContent(w, l.content, d.focused == w.app)
		switch {
		case err != nil && !w.failed:
			w.failed = true
			d.metrics.ObserveRenderFailure(string(rec.ID))
			d.LogError("%s failed to render: %v", rec.ID, err)
		case err == nil && w.failed:
			w.failed = false
			d.LogInfo("%s renders again", rec.ID)
		}
	}
}

// fitBlock crops or pads s to exactly width by height cells.
func fitBlock(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(lines) {
			line = ansi.Truncate(lines[i], width, "")
		}
		if pad := width - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		out[i] = line
	}
	return out
}
