package desktop

import (
	"slices"

	"github.com/Gaurav-Gosain/deskfolio/internal/frame"
	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
)

// reconcile creates, restores and closes frames so they match next.
func (d *Desktop) reconcile(prev, next store.State, a store.Action) {
	var failed []registry.AppID
	for _, rec := range next.Apps {
		before, _ := prev.App(rec.ID)
		w := d.windows[rec.ID]

		switch {
		case rec.IsOpened && w == nil:
			if !d.openWindow(rec) {
				failed = append(failed, rec.ID)
			}
			continue
		case !rec.IsOpened && w != nil:
			d.closeWindow(w)
			continue
		case w == nil:
			continue
		}

		if before.IsMinimized && !rec.IsMinimized {
			w.frame.Restore()
			d.raise(rec.ID)
		}
		if !before.IsMinimized && rec.IsMinimized {
			d.release(w)
			if d.focused == rec.ID {
				d.focusTopmost()
			}
		}
		w.frame.SetMaximized(rec.IsMaximized)
		if !w.frame.Interacting() && d.capture == w {
			d.capture = nil
		}
	}

	// a click that leaves the app on screen brings it forward
	if a.Kind == store.ActionAppClick || a.Kind == store.ActionMaximize {
		if rec, ok := next.App(a.AppID); ok && rec.Visible() {
			d.raise(a.AppID)
		}
	}

	if a.Kind == store.ActionToggleSetting || a.Kind == store.ActionSetSettings {
		d.SavePreferences()
	}

	// a record without a window is closed again
	for _, id := range failed {
		d.Dispatch(store.Close(id))
	}
}

// openWindow builds the frame and views for rec. It reports false when the
// app cannot be built.
func (d *Desktop) openWindow(rec store.ApplicationRecord) bool {
	cfg, err := registry.Lookup(rec.ID)
	if err != nil {
		d.LogError("open %s: %v", rec.ID, err)
		return false
	}
	views, err := d.factories.Build(cfg)
	if err != nil {
		d.LogError("open %s: %v", rec.ID, err)
		return false
	}

	size := geometry.Size{Width: d.cfg.Window.DefaultWidth, Height: d.cfg.Window.DefaultHeight}
	if p, ok := d.prefs.WindowSize(string(rec.ID)); ok {
		size = geometry.Size{Width: p.Width, Height: p.Height}
	}

	f := frame.New(rec.ID, d.viewport(), size, d.frameOptions())
	f.SetMaximized(rec.IsMaximized)
	w := &window{app: rec.ID, frame: f, views: views}
	d.windows[rec.ID] = w
	d.order = append(d.order, rec.ID)
	if !rec.IsMinimized {
		d.focused = rec.ID
	}
	logger.Debug("window opened", "app", rec.ID, "id", f.ID)
	return true
}

func (d *Desktop) closeWindow(w *window) {
	d.release(w)
	d.rememberSize(w)
	w.frame.Close()
	delete(d.windows, w.app)
	d.order = slices.DeleteFunc(d.order, func(id registry.AppID) bool { return id == w.app })
	if d.focused == w.app {
		d.focusTopmost()
	}
	logger.Debug("window closed", "app", w.app)
}

// release drops the pointer capture if w owns it.
func (d *Desktop) release(w *window) {
	if d.capture != w {
		return
	}
	w.frame.Cancel(d.viewport())
	d.capture = nil
}

func (d *Desktop) rememberSize(w *window) {
	if w.frame.Maximized {
		return
	}
	d.prefs.SetWindowSize(string(w.app), w.frame.Size.Width, w.frame.Size.Height)
	d.SavePreferences()
}

// raise moves id to the top of the z-order and focuses it.
func (d *Desktop) raise(id registry.AppID) {
	i := slices.Index(d.order, id)
	if i < 0 {
		return
	}
	d.order = append(slices.Delete(d.order, i, i+1), id)
	d.focused = id
}

// focusTopmost focuses the highest visible window, or nothing.
func (d *Desktop) focusTopmost() {
	d.focused = ""
	for i := len(d.order) - 1; i >= 0; i-- {
		if rec, ok := d.state.App(d.order[i]); ok && rec.Visible() {
			d.focused = d.order[i]
			return
		}
	}
}

// visibleOrder returns the visible windows back to front.
func (d *Desktop) visibleOrder() []*window {
	var out []*window
	for _, id := range d.order {
		if rec, ok := d.state.App(id); ok && rec.Visible() {
			out = append(out, d.windows[id])
		}
	}
	return out
}

// cycle focuses the next (delta 1) or previous (delta -1) visible window.
func (d *Desktop) cycle(delta int) {
	visible := d.visibleOrder()
	if len(visible) == 0 {
		return
	}
	ids := make([]registry.AppID, len(visible))
	for i, w := range visible {
		ids[i] = w.app
	}
	// stable cycling order independent of z-order
	slices.SortFunc(ids, func(a, b registry.AppID) int {
		return d.appOrder(a) - d.appOrder(b)
	})
	i := slices.Index(ids, d.focused)
	next := ids[(i+delta+len(ids))%len(ids)]
	if i < 0 && delta < 0 {
		next = ids[len(ids)-1]
	}
	d.raise(next)
}

func (d *Desktop) appOrder(id registry.AppID) int {
	if rec, ok := d.state.App(id); ok {
		return rec.Order
	}
	return 0
}

// windowAt returns the topmost visible window containing p.
func (d *Desktop) windowAt(p geometry.Point) *window {
	visible := d.visibleOrder()
	vp := d.viewport()
	for i := len(visible) - 1; i >= 0; i-- {
		if visible[i].frame.Bounds(vp).Contains(p) {
			return visible[i]
		}
	}
	return nil
}

// activeView returns the content currently shown by w.
func (d *Desktop) activeView(w *window) (registry.Content, int) {
	rec, ok := d.state.App(w.app)
	if !ok || len(w.views) == 0 {
		return nil, 0
	}
	i := rec.ActiveIndex()
	if i >= len(w.views) {
		return nil, i
	}
	return w.views[i], i
}
