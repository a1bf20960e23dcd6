package desktop

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
)

const (
	sidebarWidth = 16
	navButton    = 3
	pillMaxWidth = 18
	lockButton   = " ⏻ "

	centerWidth  = 36
	centerHeight = 13
	// centerToggleRow is the first toggle row inside the action center border.
	centerToggleRow = 2
)

// chromeLayout is where the parts of a window sit on screen. Render and
// hit testing both derive from it.
type chromeLayout struct {
	outer   geometry.Rect
	nav     bool
	back    geometry.Rect
	forward geometry.Rect
	sidebar geometry.Rect
	content geometry.Rect
}

func layoutChrome(b geometry.Rect, links bool) chromeLayout {
	inner := geometry.Rect{X: b.X + 1, Y: b.Y + 1, Width: max(b.Width-2, 0), Height: max(b.Height-2, 0)}
	l := chromeLayout{outer: b, content: inner}
	if !links || inner.Height < 3 || inner.Width < 2*navButton {
		return l
	}

	l.nav = true
	l.back = geometry.Rect{X: inner.X, Y: inner.Y, Width: navButton, Height: 1}
	l.forward = geometry.Rect{X: inner.X + navButton, Y: inner.Y, Width: navButton, Height: 1}

	body := geometry.Rect{X: inner.X, Y: inner.Y + 1, Width: inner.Width, Height: inner.Height - 1}
	if sw := min(sidebarWidth, body.Width/3); sw >= 6 {
		l.sidebar = geometry.Rect{X: body.X, Y: body.Y, Width: sw, Height: body.Height}
		body.X += sw + 1
		body.Width -= sw + 1
	}
	l.content = body
	return l
}

type segmentKind int

const (
	segmentLock segmentKind = iota
	segmentPill
	segmentTray
	segmentCenter
)

// segment is a clickable run of taskbar cells.
type segment struct {
	kind  segmentKind
	app   registry.AppID
	x     int
	width int
	text  string
}

func (s segment) contains(x int) bool { return x >= s.x && x < s.x+s.width }

// taskbarSegments lays out the taskbar left to right: the lock button, one
// pill per opened app, then the tray and the clock on the right.
func (d *Desktop) taskbarSegments() []segment {
	var right []segment
	if d.cfg.Appearance.ShowTray {
		t := " " + d.sampler.CPUGraph() + " " + d.sampler.MemoryLabel() + " "
		right = append(right, segment{kind: segmentTray, text: t, width: ansi.StringWidth(t)})
	}
	c := " " + networkLabel(d.state.Settings) + " " + d.clock() + " "
	right = append(right, segment{kind: segmentCenter, text: c, width: ansi.StringWidth(c)})

	rightWidth := 0
	for _, s := range right {
		rightWidth += s.width
	}
	rightStart := max(d.width-rightWidth, 0)

	segs := []segment{{kind: segmentLock, x: 0, width: ansi.StringWidth(lockButton), text: lockButton}}
	x := segs[0].width + 1
	for _, rec := range d.state.Apps {
		if !rec.IsOpened {
			continue
		}
		label := ansi.Truncate(" "+rec.Icon+" "+rec.Name+" ", pillMaxWidth, "… ")
		w := ansi.StringWidth(label)
		if x+w > rightStart-1 {
			break
		}
		segs = append(segs, segment{kind: segmentPill, app: rec.ID, x: x, width: w, text: label})
		x += w + 1
	}

	x = rightStart
	for _, s := range right {
		s.x = x
		x += s.width
		segs = append(segs, s)
	}
	return segs
}

func networkLabel(s store.Settings) string {
	switch {
	case s.Airplane:
		return "✈"
	case s.Wifi:
		return "wifi"
	default:
		return "offline"
	}
}

func (d *Desktop) clock() string {
	now := d.sched.Now()
	if d.cfg.Appearance.Clock24h {
		return now.Format("15:04")
	}
	return now.Format("3:04 PM")
}

// centerRect is the action center panel, anchored above the clock.
func (d *Desktop) centerRect() geometry.Rect {
	vp := d.viewport()
	w := min(centerWidth, vp.Width)
	h := min(centerHeight, vp.Height)
	return geometry.Rect{X: vp.Width - w, Y: vp.Height - h, Width: w, Height: h}
}

// centerToggles lists the settings in the order they are drawn.
var centerToggles = []struct {
	setting store.Setting
	label   string
}{
	{store.SettingWifi, "Wi-Fi"},
	{store.SettingAirplane, "Airplane mode"},
	{store.SettingMute, "Mute"},
}

// iconRows returns the desktop icons top to bottom with their row.
func (d *Desktop) iconRows() []store.ApplicationRecord {
	var icons []store.ApplicationRecord
	for _, rec := range d.state.Apps {
		if rec.ShowInDesktop {
			icons = append(icons, rec)
		}
	}
	return icons
}

// iconAt returns the desktop icon at p. Each icon takes two rows starting
// at row 1.
func (d *Desktop) iconAt(p geometry.Point) (registry.AppID, bool) {
	if p.X < 0 || p.X >= config.IconColumnWidth || p.Y < 1 {
		return "", false
	}
	i := (p.Y - 1) / 2
	icons := d.iconRows()
	if (p.Y-1)%2 != 0 || i >= len(icons) {
		return "", false
	}
	return icons[i].ID, true
}
