// Package frame implements the per-window lifecycle: the launch and restore
// animations, drag and resize sessions, and hit testing of window chrome.
package frame

import (
	"time"

	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/sched"
	"github.com/google/uuid"
)

// Phase is the interaction state of a frame.
type Phase int

const (
	PhaseLaunching Phase = iota
	PhaseNormal
	PhaseRestoring
	PhaseDragging
	PhaseResizing
)

func (p Phase) String() string {
	switch p {
	case PhaseLaunching:
		return "launching"
	case PhaseNormal:
		return "normal"
	case PhaseRestoring:
		return "restoring"
	case PhaseDragging:
		return "dragging"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Animating reports whether the phase plays the grow animation.
func (p Phase) Animating() bool {
	return p == PhaseLaunching || p == PhaseRestoring
}

// Region classifies a point relative to a frame.
type Region int

const (
	RegionOutside Region = iota
	RegionTitle
	RegionMinimize
	RegionMaximize
	RegionClose
	RegionResize
	RegionContent
)

// Defaults used when Options leaves a field zero.
const (
	DefaultAnimationDuration = 250 * time.Millisecond
	DefaultMinVisible        = 12
)

// DefaultMinSize is the smallest a window can be resized to.
var DefaultMinSize = geometry.Size{Width: 24, Height: 6}

// Options configures a frame.
type Options struct {
	Scheduler *sched.Scheduler
	// Duration of the launch and restore animations. Negative disables them.
	Duration time.Duration
	// RestoreDuration is used when coming back from the taskbar. Zero means Duration.
	RestoreDuration time.Duration
	MinSize         geometry.Size
	MinVisible      int
}

// Frame is the window surface of one opened application.
type Frame struct {
	ID        string
	AppID     registry.AppID
	Position  geometry.Point
	Size      geometry.Size
	Phase     Phase
	Maximized bool

	scheduler       *sched.Scheduler
	duration        time.Duration
	restoreDuration time.Duration
	minSize         geometry.Size
	minVisible      int

	phaseStart time.Time
	expiry     *sched.Task

	dragOffset    geometry.Point
	resizeStart   geometry.Size
	resizePointer geometry.Point

	closed bool
}

// New creates a frame centred in viewport and starts its launch animation.
func New(appID registry.AppID, viewport, size geometry.Size, opts Options) *Frame {
	if opts.Scheduler == nil {
		opts.Scheduler = sched.New(nil)
	}
	if opts.Duration == 0 {
		opts.Duration = DefaultAnimationDuration
	}
	if opts.RestoreDuration == 0 {
		opts.RestoreDuration = opts.Duration
	}
	if opts.MinSize == (geometry.Size{}) {
		opts.MinSize = DefaultMinSize
	}
	if opts.MinVisible <= 0 {
		opts.MinVisible = DefaultMinVisible
	}

	size = geometry.ClampSize(size, opts.MinSize)
	r := geometry.Center(viewport, size)

	f := &Frame{
		ID:              uuid.NewString(),
		AppID:           appID,
		Position:        r.Origin(),
		Size:            size,
		scheduler:       opts.Scheduler,
		duration:        opts.Duration,
		restoreDuration: opts.RestoreDuration,
		minSize:         opts.MinSize,
		minVisible:      opts.MinVisible,
	}
	f.enter(PhaseLaunching)
	return f
}

// enter switches to an animated phase and schedules its expiry, replacing any
// pending expiry so each scheduling fires at most once.
func (f *Frame) enter(p Phase) {
	f.expiry.Cancel()
	f.expiry = nil
	f.Phase = p
	f.phaseStart = f.scheduler.Now()

	d := f.phaseDuration()
	if d < 0 {
		f.Phase = PhaseNormal
		return
	}

	var task *sched.Task
	task = f.scheduler.After(d, func() {
		if f.expiry != task {
			return
		}
		f.expiry = nil
		if f.Phase.Animating() {
			f.Phase = PhaseNormal
		}
	})
	f.expiry = task
}

func (f *Frame) phaseDuration() time.Duration {
	if f.Phase == PhaseRestoring {
		return f.restoreDuration
	}
	return f.duration
}

// Closed reports whether Close has been called.
func (f *Frame) Closed() bool { return f.closed }

// Close cancels pending work. The frame must not be used afterwards.
func (f *Frame) Close() {
	f.expiry.Cancel()
	f.expiry = nil
	f.closed = true
	f.Phase = PhaseNormal
}

// Restore replays the grow animation after the window comes back from the taskbar.
// Any drag or resize in progress is dropped.
func (f *Frame) Restore() {
	if f.closed {
		return
	}
	f.enter(PhaseRestoring)
}

// SetMaximized mirrors the record's maximized flag. Maximizing cancels any
// drag or resize.
func (f *Frame) SetMaximized(v bool) {
	f.Maximized = v
	if v && (f.Phase == PhaseDragging || f.Phase == PhaseResizing) {
		f.Phase = PhaseNormal
	}
}

// Interacting reports whether a drag or resize is in progress.
func (f *Frame) Interacting() bool {
	return f.Phase == PhaseDragging || f.Phase == PhaseResizing
}

// Bounds returns the settled rectangle of the frame.
func (f *Frame) Bounds(viewport geometry.Size) geometry.Rect {
	if f.Maximized {
		return geometry.Fill(viewport)
	}
	return geometry.Rect{X: f.Position.X, Y: f.Position.Y, Width: f.Size.Width, Height: f.Size.Height}
}

// RenderBounds returns the rectangle to draw at now, interpolating the grow
// animation while launching or restoring.
func (f *Frame) RenderBounds(viewport geometry.Size, now time.Time) geometry.Rect {
	target := f.Bounds(viewport)
	if !f.Phase.Animating() {
		return target
	}
	p := progress(f.phaseStart, now, f.phaseDuration())
	return lerpRect(collapsed(target), target, p)
}

// HitTest classifies p. Title bar controls sit at the right end of the top row.
func (f *Frame) HitTest(p geometry.Point, viewport geometry.Size) Region {
	b := f.Bounds(viewport)
	if !b.Contains(p) {
		return RegionOutside
	}

	right := b.Right()
	if p.Y == b.Y {
		switch {
		case p.X >= right-5 && p.X <= right-3:
			return RegionClose
		case p.X >= right-8 && p.X <= right-6:
			return RegionMaximize
		case p.X >= right-11 && p.X <= right-9:
			return RegionMinimize
		default:
			return RegionTitle
		}
	}

	if !f.Maximized && p.Y == b.Bottom()-1 && p.X >= right-2 {
		return RegionResize
	}
	return RegionContent
}

// BeginDrag starts moving the window. It only succeeds from the normal phase,
// on the title bar, while not maximized.
func (f *Frame) BeginDrag(p geometry.Point, viewport geometry.Size) bool {
	if f.closed || f.Maximized || f.Phase != PhaseNormal {
		return false
	}
	if f.HitTest(p, viewport) != RegionTitle {
		return false
	}
	f.dragOffset = p.Sub(f.Position)
	f.Phase = PhaseDragging
	return true
}

// BeginResize starts resizing from the bottom-right handle.
func (f *Frame) BeginResize(p geometry.Point, viewport geometry.Size) bool {
	if f.closed || f.Maximized || f.Phase != PhaseNormal {
		return false
	}
	if f.HitTest(p, viewport) != RegionResize {
		return false
	}
	f.resizeStart = f.Size
	f.resizePointer = p
	f.Phase = PhaseResizing
	return true
}

// Move follows the pointer during a drag or resize.
func (f *Frame) Move(p geometry.Point) {
	if f.Maximized {
		return
	}
	switch f.Phase {
	case PhaseDragging:
		f.Position = p.Sub(f.dragOffset)
	case PhaseResizing:
		d := p.Sub(f.resizePointer)
		f.Size = geometry.ClampSize(geometry.Size{
			Width:  f.resizeStart.Width + d.X,
			Height: f.resizeStart.Height + d.Y,
		}, f.minSize)
	}
}

// End finishes a drag or resize at p. The final geometry is clamped so the
// title bar stays reachable and the size respects the minimum. It reports
// whether an interaction was in progress.
func (f *Frame) End(p geometry.Point, viewport geometry.Size) bool {
	if !f.Interacting() {
		return false
	}
	f.Move(p)
	f.Size = geometry.ClampSize(f.Size, f.minSize)
	f.Position = geometry.ClampPosition(f.Position, f.Size, viewport, f.minVisible)
	f.Phase = PhaseNormal
	return true
}

// Cancel abandons a drag or resize, keeping whatever geometry it reached.
func (f *Frame) Cancel(viewport geometry.Size) {
	if !f.Interacting() {
		return
	}
	f.Position = geometry.ClampPosition(f.Position, f.Size, viewport, f.minVisible)
	f.Phase = PhaseNormal
}

// Fit re-clamps the frame after the viewport changes.
func (f *Frame) Fit(viewport geometry.Size) {
	f.Position = geometry.ClampPosition(f.Position, f.Size, viewport, f.minVisible)
}
