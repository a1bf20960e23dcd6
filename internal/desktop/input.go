package desktop

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/deskfolio/internal/frame"
	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
)

// handleKey routes a key press: full-screen states first, then open
// overlays, then desktop bindings, and finally the focused window.
func (d *Desktop) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	action := d.keys.GetAction(key)

	if action == "quit" {
		return d.quit()
	}

	switch {
	case d.notFound != "":
		d.Navigate("/")
		return nil
	case d.state.System.Locked:
		d.Dispatch(store.Unlock())
		return nil
	case d.running:
		return d.handleRunKey(msg)
	}

	if key == "esc" && d.closeOverlay() {
		return nil
	}
	if d.showLogs {
		switch key {
		case "up", "k":
			d.scrollLogs(-1)
			return nil
		case "down", "j":
			d.scrollLogs(1)
			return nil
		case "q":
			d.showLogs = false
			return nil
		}
	}

	if action != "" {
		return d.runAction(action)
	}

	w := d.windows[d.focused]
	if w == nil {
		return nil
	}
	if rec, ok := d.state.App(w.app); !ok || !rec.Visible() {
		return nil
	}
	if v, _ := d.activeView(w); v != nil {
		if u, ok := v.(registry.Updater); ok {
			return u.Update(msg)
		}
	}
	return nil
}

func (d *Desktop) closeOverlay() bool {
	switch {
	case d.showHelp:
		d.showHelp = false
	case d.showLogs:
		d.showLogs = false
	case d.showCenter:
		d.showCenter = false
	default:
		return false
	}
	return true
}

func (d *Desktop) quit() tea.Cmd {
	for _, w := range d.windows {
		d.rememberSize(w)
	}
	d.quitting = true
	return tea.Quit
}

// runAction performs a bound desktop action.
func (d *Desktop) runAction(action string) tea.Cmd {
	switch action {
	case "lock":
		d.Dispatch(store.Lock())
	case "toggle_action_center":
		d.showCenter = !d.showCenter
	case "toggle_help":
		d.showHelp = !d.showHelp
	case "toggle_logs":
		d.showLogs = !d.showLogs
		if d.showLogs {
			d.logView.GotoBottom()
		}
	case "open_run":
		d.running = true
		d.runPrompt.Reset()
	case "next_window":
		d.cycle(1)
	case "prev_window":
		d.cycle(-1)
	case "close_window":
		if d.focused != "" {
			d.Dispatch(store.Close(d.focused))
		}
	case "minimize_window":
		if d.focused != "" {
			d.Dispatch(store.Minimize(d.focused))
		}
	case "maximize_window":
		if d.focused != "" {
			d.Dispatch(store.Maximize(d.focused))
		}
	case "next_view":
		d.stepView(1)
	case "prev_view":
		d.stepView(-1)
	default:
		if n, ok := strings.CutPrefix(action, "open_app_"); ok && len(n) == 1 {
			d.openApp(int(n[0] - '1'))
		}
	}
	return nil
}

// openApp brings the nth configured app forward, opening or restoring it.
func (d *Desktop) openApp(n int) {
	if n < 0 || n >= len(d.state.Apps) {
		return
	}
	rec := d.state.Apps[n]
	if rec.Visible() {
		d.raise(rec.ID)
		return
	}
	d.Dispatch(store.AppClick(rec.ID))
}

// stepView moves the focused window to its next or previous sub-view.
func (d *Desktop) stepView(delta int) {
	rec, ok := d.state.App(d.focused)
	if !ok || !rec.Visible() || len(rec.SubComponents) < 2 {
		return
	}
	n := len(rec.SubComponents)
	d.Dispatch(store.AppClickAt(rec.ID, (rec.ActiveIndex()+delta+n)%n))
}

func (d *Desktop) handleRunKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		d.running = false
	case "enter":
		d.running = false
		if path := strings.TrimSpace(d.runPrompt.Value()); path != "" {
			d.Navigate(path)
		}
	default:
		var cmd tea.Cmd
		d.runPrompt, cmd = d.runPrompt.Update(msg)
		return cmd
	}
	return nil
}

// handleMouse implements pointer input. A drag or resize captures the
// pointer until the button is released.
func (d *Desktop) handleMouse(msg tea.MouseMsg) tea.Cmd {
	m := msg.Mouse()
	p := geometry.Point{X: m.X, Y: m.Y}

	if d.capture != nil && !d.capture.frame.Interacting() {
		d.capture = nil
	}

	switch msg.(type) {
	case tea.MouseMotionMsg:
		if d.capture != nil {
			d.capture.frame.Move(p)
		}
		return nil

	case tea.MouseReleaseMsg:
		if d.capture != nil {
			w := d.capture
			d.capture = nil
			resized := w.frame.Phase == frame.PhaseResizing
			w.frame.End(p, d.viewport())
			w.placed = true
			if resized {
				d.rememberSize(w)
			}
		}
		return nil

	case tea.MouseWheelMsg:
		return d.handleWheel(p, m.Button)

	case tea.MouseClickMsg:
		// a press while captured means the release was lost
		d.settleCapture()
		if m.Button != tea.MouseLeft {
			return nil
		}
		return d.handleClick(p)
	}
	return nil
}

// settleCapture ends the current drag or resize where it stands.
func (d *Desktop) settleCapture() {
	w := d.capture
	if w == nil {
		return
	}
	resized := w.frame.Phase == frame.PhaseResizing
	d.release(w)
	w.placed = true
	if resized {
		d.rememberSize(w)
	}
}

func (d *Desktop) handleWheel(p geometry.Point, button tea.MouseButton) tea.Cmd {
	if d.state.System.Locked || d.notFound != "" {
		return nil
	}
	if d.showLogs {
		if button == tea.MouseWheelUp {
			d.scrollLogs(-1)
		} else {
			d.scrollLogs(1)
		}
		return nil
	}
	w := d.windowAt(p)
	if w == nil {
		return nil
	}
	v, _ := d.activeView(w)
	u, ok := v.(registry.Updater)
	if !ok {
		return nil
	}
	code := tea.KeyDown
	if button == tea.MouseWheelUp {
		code = tea.KeyUp
	}
	return u.Update(tea.KeyPressMsg{Code: code})
}

func (d *Desktop) handleClick(p geometry.Point) tea.Cmd {
	switch {
	case d.notFound != "":
		d.Navigate("/")
		return nil
	case d.state.System.Locked:
		d.Dispatch(store.Unlock())
		return nil
	case d.running:
		d.running = false
		return nil
	case d.showHelp || d.showLogs:
		d.showHelp, d.showLogs = false, false
		return nil
	}

	if p.Y >= d.viewport().Height {
		d.clickTaskbar(p.X)
		return nil
	}

	if d.showCenter {
		r := d.centerRect()
		if r.Contains(p) {
			d.clickActionCenter(p.Y - r.Y - 1)
			return nil
		}
		d.showCenter = false
	}

	if w := d.windowAt(p); w != nil {
		return d.clickWindow(w, p)
	}

	if id, ok := d.iconAt(p); ok {
		d.Dispatch(store.AppClick(id))
		return nil
	}
	d.focused = ""
	return nil
}

func (d *Desktop) clickTaskbar(x int) {
	for _, s := range d.taskbarSegments() {
		if !s.contains(x) {
			continue
		}
		switch s.kind {
		case segmentLock:
			d.Dispatch(store.Lock())
		case segmentPill:
			rec, _ := d.state.App(s.app)
			if rec.Visible() && d.focused != s.app {
				d.raise(s.app)
				return
			}
			d.Dispatch(store.AppClick(s.app))
		case segmentTray, segmentCenter:
			d.showCenter = !d.showCenter
		}
		return
	}
}

// clickActionCenter handles a click on row (relative to the panel's inner top).
func (d *Desktop) clickActionCenter(row int) {
	i := row - centerToggleRow
	if i < 0 || i >= len(centerToggles) {
		return
	}
	d.Dispatch(store.ToggleSetting(centerToggles[i].setting))
}

func (d *Desktop) clickWindow(w *window, p geometry.Point) tea.Cmd {
	d.raise(w.app)
	vp := d.viewport()
	f := w.frame

	switch f.HitTest(p, vp) {
	case frame.RegionClose:
		d.Dispatch(store.Close(w.app))
	case frame.RegionMinimize:
		d.Dispatch(store.Minimize(w.app))
	case frame.RegionMaximize:
		d.Dispatch(store.Maximize(w.app))
	case frame.RegionTitle:
		if f.BeginDrag(p, vp) {
			d.capture = w
		}
	case frame.RegionResize:
		if f.BeginResize(p, vp) {
			d.capture = w
		}
	case frame.RegionContent:
		return d.clickContent(w, p)
	}
	return nil
}

// clickContent handles the sub-view navigation chrome and forwards anything
// else to the view at window-local coordinates.
func (d *Desktop) clickContent(w *window, p geometry.Point) tea.Cmd {
	rec, ok := d.state.App(w.app)
	if !ok {
		return nil
	}
	l := layoutChrome(w.frame.Bounds(d.viewport()), rec.ShowLinks)
	n := len(rec.SubComponents)
	i := rec.ActiveIndex()

	switch {
	case l.nav && l.back.Contains(p):
		if i > 0 {
			d.Dispatch(store.AppClickAt(rec.ID, i-1))
		}
		return nil
	case l.nav && l.forward.Contains(p):
		if i < n-1 {
			d.Dispatch(store.AppClickAt(rec.ID, i+1))
		}
		return nil
	case l.sidebar.Contains(p):
		if row := p.Y - l.sidebar.Y; row < n {
			d.Dispatch(store.AppClickAt(rec.ID, row))
		}
		return nil
	case l.content.Contains(p):
		v, index := d.activeView(w)
		if c, ok := v.(registry.Clicker); ok {
			ctx := registry.ViewContext{
				Width:   l.content.Width,
				Height:  l.content.Height,
				Index:   index,
				Focused: true,
				Now:     d.sched.Now(),
			}
			return c.Click(p.X-l.content.X, p.Y-l.content.Y, ctx)
		}
	}
	return nil
}
