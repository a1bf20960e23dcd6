package desktop

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/deskfolio/internal/apps"
	"github.com/Gaurav-Gosain/deskfolio/internal/config"
	"github.com/Gaurav-Gosain/deskfolio/internal/frame"
	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/sched"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
)

func fakeUsage() (float64, float64, error) { return 12, 34, nil }

func newTestDesktop(t *testing.T, opts Options) (*Desktop, *sched.ManualClock) {
	t.Helper()
	clock := &sched.ManualClock{T: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	opts.Clock = clock
	opts.Usage = fakeUsage
	d, err := New(opts)
	require.NoError(t, err)
	return d, clock
}

// settle advances past every animation and ticks.
func settle(d *Desktop, clock *sched.ManualClock) {
	clock.Advance(time.Second)
	d.Update(TickMsg(clock.T))
}

func key(code rune, mod tea.KeyMod) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: mod}
}

func click(x, y int) tea.MouseClickMsg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func record(t *testing.T, d *Desktop, id registry.AppID) store.ApplicationRecord {
	t.Helper()
	rec, ok := d.State().App(id)
	require.True(t, ok)
	return rec
}

func bounds(t *testing.T, d *Desktop, id registry.AppID) geometry.Rect {
	t.Helper()
	f, ok := d.Frame(id)
	require.True(t, ok, "%s has no frame", id)
	return f.Bounds(d.viewport())
}

func TestDeepLinkOpensViewAndSkipsLock(t *testing.T) {
	d, _ := newTestDesktop(t, Options{InitialPath: "/resume", Locked: true})

	assert.False(t, d.State().System.Locked)
	rec := record(t, d, registry.AboutMe)
	assert.True(t, rec.Visible())
	assert.Equal(t, 5, rec.ActiveIndex())
	assert.Equal(t, registry.AboutMe, d.Focused())
}

func TestRootPathStaysLocked(t *testing.T) {
	d, _ := newTestDesktop(t, Options{InitialPath: "/", Locked: true})

	assert.True(t, d.State().System.Locked)
	assert.Contains(t, d.Render(), "Press any key or click to unlock")

	d.Update(key('x', 0))
	assert.False(t, d.State().System.Locked)
}

func TestNotFoundShowsBlueScreen(t *testing.T) {
	d, _ := newTestDesktop(t, Options{InitialPath: "/nope/"})

	assert.Equal(t, "/nope", d.NotFound())
	assert.Contains(t, d.Render(), "404: /nope was not found.")

	d.Update(key(tea.KeyEnter, 0))
	assert.Empty(t, d.NotFound())
	assert.NotContains(t, d.Render(), "404:")
}

func TestLockAndUnlock(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})

	d.Update(key('l', tea.ModCtrl))
	assert.True(t, d.State().System.Locked)

	d.Update(click(3, 3))
	assert.False(t, d.State().System.Locked)

	// lock button on the taskbar
	d.Update(click(1, d.height-1))
	assert.True(t, d.State().System.Locked)
}

func TestTitleButtons(t *testing.T) {
	tests := []struct {
		name  string
		dx    int
		check func(t *testing.T, d *Desktop)
	}{
		{"close", -4, func(t *testing.T, d *Desktop) {
			assert.False(t, record(t, d, registry.Chrome).IsOpened)
			_, ok := d.Frame(registry.Chrome)
			assert.False(t, ok)
			assert.Empty(t, d.Focused())
		}},
		{"minimize", -10, func(t *testing.T, d *Desktop) {
			assert.True(t, record(t, d, registry.Chrome).IsMinimized)
			assert.Empty(t, d.Focused())
		}},
		{"maximize", -7, func(t *testing.T, d *Desktop) {
			assert.True(t, record(t, d, registry.Chrome).IsMaximized)
			assert.Equal(t, geometry.Fill(d.viewport()), bounds(t, d, registry.Chrome))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, clock := newTestDesktop(t, Options{})
			d.Dispatch(store.AppClick(registry.Chrome))
			settle(d, clock)

			b := bounds(t, d, registry.Chrome)
			d.Update(click(b.Right()+tt.dx, b.Y))
			tt.check(t, d)
		})
	}
}

func TestDragIsClamped(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.Dispatch(store.AppClick(registry.Chrome))
	settle(d, clock)

	f, _ := d.Frame(registry.Chrome)
	b := bounds(t, d, registry.Chrome)
	grab := geometry.Point{X: b.X + 2, Y: b.Y}

	d.Update(click(grab.X, grab.Y))
	require.Equal(t, frame.PhaseDragging, f.Phase)

	d.Update(tea.MouseMotionMsg{X: -100, Y: 50})
	d.Update(tea.MouseReleaseMsg{X: -100, Y: 50})

	assert.Equal(t, frame.PhaseNormal, f.Phase)
	assert.Nil(t, d.capture)
	vp := d.viewport()
	assert.Equal(t, config.DefaultMinVisible, geometry.VisibleStrip(f.Bounds(vp), vp))
	assert.Equal(t, vp.Height-1, f.Position.Y)
}

func TestResizeRemembersSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	d, clock := newTestDesktop(t, Options{PreferencesPath: path})
	d.Dispatch(store.AppClick(registry.VSCode))
	settle(d, clock)

	b := bounds(t, d, registry.VSCode)
	handle := geometry.Point{X: b.Right() - 1, Y: b.Bottom() - 1}
	d.Update(click(handle.X, handle.Y))
	d.Update(tea.MouseReleaseMsg{X: handle.X - 20, Y: handle.Y - 4})

	want := geometry.Size{Width: b.Width - 20, Height: b.Height - 4}
	f, _ := d.Frame(registry.VSCode)
	assert.Equal(t, want, f.Size)

	prefs, err := config.LoadPreferences(path)
	require.NoError(t, err)
	got, ok := prefs.WindowSize(string(registry.VSCode))
	require.True(t, ok)
	assert.Equal(t, want.Width, got.Width)
	assert.Equal(t, want.Height, got.Height)

	// reopening uses the remembered size
	d.Dispatch(store.Close(registry.VSCode))
	d.Dispatch(store.AppClick(registry.VSCode))
	assert.Equal(t, want, bounds(t, d, registry.VSCode).Size())
}

func TestCaptureReleasedOnClose(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.Dispatch(store.AppClick(registry.Chrome))
	settle(d, clock)

	b := bounds(t, d, registry.Chrome)
	d.Update(click(b.X+2, b.Y))
	require.NotNil(t, d.capture)

	d.Update(key('w', tea.ModCtrl))
	assert.Nil(t, d.capture)
	assert.False(t, record(t, d, registry.Chrome).IsOpened)

	// stray pointer events after the close are harmless
	d.Update(tea.MouseMotionMsg{X: 5, Y: 5})
	d.Update(tea.MouseReleaseMsg{X: 5, Y: 5})
}

func TestCaptureReleasedOnMinimize(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.Dispatch(store.AppClick(registry.Chrome))
	settle(d, clock)

	b := bounds(t, d, registry.Chrome)
	d.Update(click(b.X+2, b.Y))
	d.Update(tea.MouseMotionMsg{X: b.X + 12, Y: b.Y + 3})
	d.Dispatch(store.Minimize(registry.Chrome))

	f, _ := d.Frame(registry.Chrome)
	assert.Nil(t, d.capture)
	assert.Equal(t, frame.PhaseNormal, f.Phase)
	assert.Equal(t, geometry.Point{X: b.X + 10, Y: b.Y + 3}, f.Position)
}

func TestTaskbarPillTogglesMinimize(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.Update(key('2', tea.ModAlt))
	require.True(t, record(t, d, registry.Chrome).Visible())
	settle(d, clock)

	var pill segment
	for _, s := range d.taskbarSegments() {
		if s.kind == segmentPill && s.app == registry.Chrome {
			pill = s
		}
	}
	require.NotZero(t, pill.width)

	d.Update(click(pill.x, d.height-1))
	assert.True(t, record(t, d, registry.Chrome).IsMinimized)

	d.Update(click(pill.x, d.height-1))
	assert.True(t, record(t, d, registry.Chrome).Visible())
	f, _ := d.Frame(registry.Chrome)
	assert.Equal(t, frame.PhaseRestoring, f.Phase)
	assert.Equal(t, registry.Chrome, d.Focused())

	clock.Advance(d.cfg.FastAnimationDuration())
	d.Update(TickMsg(clock.T))
	assert.Equal(t, frame.PhaseNormal, f.Phase)
}

func TestLaunchAnimationExpires(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.Dispatch(store.AppClick(registry.Mail))
	f, _ := d.Frame(registry.Mail)
	require.Equal(t, frame.PhaseLaunching, f.Phase)

	clock.Advance(d.cfg.AnimationDuration() / 2)
	d.Update(TickMsg(clock.T))
	assert.Equal(t, frame.PhaseLaunching, f.Phase)
	mid := f.RenderBounds(d.viewport(), clock.T)
	assert.Less(t, mid.Width, f.Size.Width)

	clock.Advance(d.cfg.AnimationDuration())
	d.Update(TickMsg(clock.T))
	assert.Equal(t, frame.PhaseNormal, f.Phase)
}

func TestRenderFillsScreen(t *testing.T) {
	sizes := []geometry.Size{{Width: 80, Height: 24}, {Width: 120, Height: 40}, {Width: 40, Height: 12}}
	for _, size := range sizes {
		t.Run(fmt.Sprintf("%dx%d", size.Width, size.Height), func(t *testing.T) {
			d, clock := newTestDesktop(t, Options{Width: size.Width, Height: size.Height})
			d.Dispatch(store.AppClick(registry.AboutMe))
			d.Dispatch(store.AppClick(registry.JioSaavn))
			settle(d, clock)
			d.Update(key('a', tea.ModCtrl))

			out := d.Render()
			assert.Len(t, strings.Split(out, "\n"), size.Height)
		})
	}
}

func TestWindowsStackInZOrder(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.Dispatch(store.AppClick(registry.Chrome))
	d.Dispatch(store.AppClick(registry.Mail))
	settle(d, clock)

	b := bounds(t, d, registry.Mail)
	require.Equal(t, b, bounds(t, d, registry.Chrome), "both open centered")
	titleRow := func() string {
		line := strings.Split(d.Render(), "\n")[b.Y]
		return ansi.Strip(ansi.Cut(line, b.X, b.Right()))
	}

	assert.Contains(t, titleRow(), "Mail")
	assert.NotContains(t, titleRow(), "Chrome")

	d.raise(registry.Chrome)
	assert.Contains(t, titleRow(), "Chrome")
	assert.NotContains(t, titleRow(), "Mail")
}

func TestActionCenterToggles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	d, _ := newTestDesktop(t, Options{PreferencesPath: path})
	require.True(t, d.State().Settings.Wifi)

	d.Update(key('a', tea.ModCtrl))
	require.True(t, d.showCenter)
	assert.Contains(t, d.Render(), "Quick settings")

	r := d.centerRect()
	row := func(i int) int { return r.Y + 1 + centerToggleRow + i }

	d.Update(click(r.X+3, row(1)))
	assert.True(t, d.State().Settings.Airplane)
	assert.False(t, d.State().Settings.Wifi)

	d.Update(click(r.X+3, row(2)))
	assert.True(t, d.State().Settings.Mute)

	prefs, err := config.LoadPreferences(path)
	require.NoError(t, err)
	assert.True(t, prefs.Settings.Airplane)
	assert.True(t, prefs.Settings.Mute)

	// clicking elsewhere closes the panel
	d.Update(click(r.X-5, 2))
	assert.False(t, d.showCenter)
}

func TestSidebarAndNavButtons(t *testing.T) {
	d, _ := newTestDesktop(t, Options{InitialPath: "/about"})
	b := bounds(t, d, registry.AboutMe)
	l := layoutChrome(b, true)
	require.True(t, l.nav)
	require.False(t, l.sidebar.Empty())

	d.Update(click(l.sidebar.X+1, l.sidebar.Y+3))
	assert.Equal(t, 3, record(t, d, registry.AboutMe).ActiveIndex())

	d.Update(click(l.back.X, l.back.Y))
	assert.Equal(t, 2, record(t, d, registry.AboutMe).ActiveIndex())

	d.Update(click(l.forward.X+1, l.forward.Y))
	assert.Equal(t, 3, record(t, d, registry.AboutMe).ActiveIndex())

	d.Update(key(tea.KeyRight, tea.ModAlt))
	assert.Equal(t, 4, record(t, d, registry.AboutMe).ActiveIndex())
}

func TestKeybindings(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})

	d.Update(key('1', tea.ModAlt))
	d.Update(key('2', tea.ModAlt))
	assert.Equal(t, registry.Chrome, d.Focused())
	assert.Equal(t, []registry.AppID{registry.AboutMe, registry.Chrome}, d.Order())

	d.Update(key('n', tea.ModCtrl))
	assert.Equal(t, registry.AboutMe, d.Focused())
	d.Update(key('p', tea.ModCtrl))
	assert.Equal(t, registry.Chrome, d.Focused())

	d.Update(key(tea.KeyUp, tea.ModAlt))
	assert.True(t, record(t, d, registry.Chrome).IsMaximized)

	d.Update(key(tea.KeyF1, 0))
	assert.True(t, d.showHelp)
	assert.Contains(t, d.Render(), "Keyboard shortcuts")
	d.Update(key(tea.KeyEscape, 0))
	assert.False(t, d.showHelp)

	_, cmd := d.Update(key('c', tea.ModCtrl))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRunPromptNavigates(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})

	d.Update(key('g', tea.ModCtrl))
	require.True(t, d.running)
	for _, r := range "/mail" {
		d.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	assert.Equal(t, "/mail", d.runPrompt.Value())
	assert.Contains(t, d.Render(), "/mail")

	d.Update(key(tea.KeyEnter, 0))
	assert.False(t, d.running)
	assert.True(t, record(t, d, registry.Mail).Visible())
}

func TestKeysReachFocusedWindow(t *testing.T) {
	d, _ := newTestDesktop(t, Options{InitialPath: "/spotify"})
	w := d.windows[registry.JioSaavn]
	player := w.views[0].(*apps.Player)
	require.False(t, player.Playing())

	d.Update(key(tea.KeySpace, 0))
	assert.True(t, player.Playing())
}

func TestConfigReload(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})

	cfg := config.DefaultConfig()
	cfg.Keybindings.Desktop = map[string][]string{"toggle_help": {"f5"}}
	d.Update(ConfigReloadedMsg{Config: cfg})

	d.Update(key(tea.KeyF1, 0))
	assert.False(t, d.showHelp)
	d.Update(key(tea.KeyF5, 0))
	assert.True(t, d.showHelp)

	d.Update(ConfigReloadedMsg{Err: assert.AnError})
	logs := d.Logs()
	assert.Equal(t, "ERROR", logs[len(logs)-1].Level)
}

func TestLogRingIsBounded(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})
	for i := range MaxLogMessages + 50 {
		d.LogInfo("message %d", i)
	}

	logs := d.Logs()
	require.Len(t, logs, MaxLogMessages)
	assert.Equal(t, fmt.Sprintf("message %d", MaxLogMessages+49), logs[len(logs)-1].Message)
	assert.True(t, d.logView.AtBottom())

	// a reader scrolled back keeps their place
	d.scrollLogs(-5)
	offset := d.logView.YOffset()
	d.LogInfo("one more")
	assert.Equal(t, offset, d.logView.YOffset())
	assert.False(t, d.logView.AtBottom())
}

func TestMailResultIsLogged(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})
	d.Update(apps.MailResultMsg{ID: "m-1"})

	logs := d.Logs()
	assert.Equal(t, "mail m-1 stored", logs[len(logs)-1].Message)
}

func TestWindowSizeRecentersUnplacedWindows(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})
	d.Dispatch(store.AppClick(registry.Chrome))

	d.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	b := bounds(t, d, registry.Chrome)
	want := geometry.Center(d.viewport(), b.Size())
	assert.Equal(t, want.Origin(), b.Origin())
}

type brokenContent struct{}

func (brokenContent) View(registry.ViewContext) (string, error) { panic("boom") }

func errorLogs(d *Desktop, substr string) int {
	n := 0
	for _, l := range d.Logs() {
		if l.Level == "ERROR" && strings.Contains(l.Message, substr) {
			n++
		}
	}
	return n
}

func TestClickWhileCapturedEndsStaleDrag(t *testing.T) {
	d, clock := newTestDesktop(t, Options{Width: 120, Height: 40})
	d.Dispatch(store.AppClick(registry.Chrome))
	d.Dispatch(store.AppClick(registry.Mail))
	settle(d, clock)

	chrome := d.windows[registry.Chrome]
	mail := d.windows[registry.Mail]
	b := bounds(t, d, registry.Mail)

	// drag mail aside and lose the release
	d.Update(click(b.X+2, b.Y))
	d.Update(tea.MouseMotionMsg{X: b.X + 12, Y: b.Y + 3})
	require.Equal(t, mail, d.capture)

	cb := bounds(t, d, registry.Chrome)
	d.Update(click(cb.X+2, cb.Y))

	assert.Equal(t, frame.PhaseNormal, mail.frame.Phase)
	assert.Equal(t, geometry.Point{X: b.X + 10, Y: b.Y + 3}, mail.frame.Position)
	assert.Equal(t, chrome, d.capture)
	assert.Equal(t, frame.PhaseDragging, chrome.frame.Phase)
	assert.Equal(t, registry.Chrome, d.Focused())

	d.Update(tea.MouseReleaseMsg{X: cb.X + 2, Y: cb.Y})
	assert.Nil(t, d.capture)

	// the settled window can be dragged again
	d.raise(registry.Mail)
	mb := bounds(t, d, registry.Mail)
	d.Update(click(mb.X+2, mb.Y))
	assert.Equal(t, mail, d.capture)
	assert.Equal(t, frame.PhaseDragging, mail.frame.Phase)
}

func TestFailingContentKeepsWindowUsable(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.factories[registry.KindBrowser] = func() registry.Content { return brokenContent{} }

	d.Dispatch(store.AppClick(registry.Chrome))
	settle(d, clock)

	assert.Contains(t, d.Render(), registry.FailureMessage)
	assert.True(t, d.windows[registry.Chrome].failed)
	assert.Equal(t, 1, errorLogs(d, "chrome failed to render"))

	// the failure is reported once, not every frame
	d.Render()
	settle(d, clock)
	assert.Equal(t, 1, errorLogs(d, "chrome failed to render"))

	// the title bar still works
	b := bounds(t, d, registry.Chrome)
	d.Update(click(b.X+2, b.Y))
	assert.Equal(t, frame.PhaseDragging, d.windows[registry.Chrome].frame.Phase)
	d.Update(tea.MouseReleaseMsg{X: b.X + 2, Y: b.Y})

	d.Update(click(b.Right()-4, b.Y))
	assert.False(t, record(t, d, registry.Chrome).IsOpened)
	_, ok := d.Frame(registry.Chrome)
	assert.False(t, ok)
}

func TestRenderDoesNotLog(t *testing.T) {
	d, clock := newTestDesktop(t, Options{})
	d.factories[registry.KindBrowser] = func() registry.Content { return brokenContent{} }
	d.Dispatch(store.AppClick(registry.Chrome))
	clock.Advance(time.Second)

	before := len(d.Logs())
	d.Render()
	d.Render()
	assert.Len(t, d.Logs(), before)
	assert.False(t, d.windows[registry.Chrome].failed)

	d.Update(TickMsg(clock.T))
	assert.True(t, d.windows[registry.Chrome].failed)
}

func TestUnbuildableAppIsClosedAgain(t *testing.T) {
	d, _ := newTestDesktop(t, Options{})
	delete(d.factories, registry.KindBrowser)

	d.Dispatch(store.AppClick(registry.Chrome))

	assert.False(t, record(t, d, registry.Chrome).IsOpened)
	_, ok := d.Frame(registry.Chrome)
	assert.False(t, ok)
	assert.NotContains(t, d.Order(), registry.Chrome)
	assert.Empty(t, d.Focused())
	assert.Equal(t, 1, errorLogs(d, "open chrome"))

	// the taskbar shows nothing for it
	assert.False(t, record(t, d, registry.Chrome).Visible())
}
