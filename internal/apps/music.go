package apps

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// Player plays a static playlist. Nothing is decoded: the position is
// computed from the clock.
type Player struct {
	tracks  []profile.Track
	index   int
	playing bool
	// elapsed is the position at the last pause or track change.
	elapsed   time.Duration
	startedAt time.Time
	now       func() time.Time
}

// NewPlayer returns a paused player at the first track.
func NewPlayer(tracks []profile.Track, now func() time.Time) *Player {
	if now == nil {
		now = time.Now
	}
	return &Player{tracks: tracks, now: now}
}

// Playing reports whether playback is running.
func (p *Player) Playing() bool { return p.playing }

// Index returns the current track index.
func (p *Player) Index() int { return p.index }

// Position returns the playback position in the current track at now.
func (p *Player) Position(now time.Time) time.Duration {
	p.sync(now)
	return p.position(now)
}

func (p *Player) position(now time.Time) time.Duration {
	if !p.playing {
		return p.elapsed
	}
	return p.elapsed + now.Sub(p.startedAt)
}

func (p *Player) length() time.Duration {
	if len(p.tracks) == 0 {
		return 0
	}
	return time.Duration(p.tracks[p.index].Length) * time.Second
}

// sync advances through finished tracks, wrapping at the end of the playlist.
func (p *Player) sync(now time.Time) {
	if !p.playing || len(p.tracks) == 0 {
		return
	}
	for range len(p.tracks) + 1 {
		pos := p.position(now)
		l := p.length()
		if pos < l {
			return
		}
		p.startedAt = p.startedAt.Add(l - p.elapsed)
		p.elapsed = 0
		p.index = (p.index + 1) % len(p.tracks)
	}
	// more than a full loop passed; restart the current track
	p.elapsed = 0
	p.startedAt = now
}

// Toggle plays or pauses.
func (p *Player) Toggle() {
	if len(p.tracks) == 0 {
		return
	}
	now := p.now()
	p.sync(now)
	if p.playing {
		p.elapsed = p.position(now)
		p.playing = false
		return
	}
	p.startedAt = now
	p.playing = true
}

// Next skips to the following track.
func (p *Player) Next() { p.skip(1) }

// Prev restarts the current track, or goes back one if near its start.
func (p *Player) Prev() {
	now := p.now()
	p.sync(now)
	if p.position(now) > 3*time.Second {
		p.seekStart(now)
		return
	}
	p.skip(-1)
}

func (p *Player) skip(delta int) {
	if len(p.tracks) == 0 {
		return
	}
	now := p.now()
	p.sync(now)
	p.index = (p.index + delta + len(p.tracks)) % len(p.tracks)
	p.seekStart(now)
}

func (p *Player) seekStart(now time.Time) {
	p.elapsed = 0
	p.startedAt = now
}

// NowPlaying returns a one-line description of the current track.
func (p *Player) NowPlaying(now time.Time) (string, bool) {
	if len(p.tracks) == 0 {
		return "", false
	}
	p.sync(now)
	t := p.tracks[p.index]
	return t.Title + " · " + t.Artist, p.playing
}

func (p *Player) Update(msg tea.Msg) tea.Cmd {
	return updateKeys(p, msg)
}

func (p *Player) HandleKey(key, _ string) tea.Cmd {
	switch key {
	case "space", "enter":
		p.Toggle()
	case "n", "right":
		p.Next()
	case "p", "left":
		p.Prev()
	case "down", "j":
		p.skip(1)
	case "up", "k":
		p.skip(-1)
	}
	return nil
}

// controls is the row of transport buttons; each occupies five columns.
const controls = "  ⏮    ⏯    ⏭  "

// Click handles the transport buttons and the playlist rows.
func (p *Player) Click(x, y int, ctx registry.ViewContext) tea.Cmd {
	switch {
	case y == 4:
		switch x / 5 {
		case 0:
			p.Prev()
		case 1:
			p.Toggle()
		case 2:
			p.Next()
		}
	case y >= 7 && y-7 < len(p.tracks):
		p.index = y - 7
		p.seekStart(p.now())
		if !p.playing {
			p.Toggle()
		}
	}
	return nil
}

func (p *Player) View(ctx registry.ViewContext) (string, error) {
	w := max(ctx.Width, 20)
	if len(p.tracks) == 0 {
		return muted("The playlist is empty."), nil
	}
	now := ctx.Now
	if now.IsZero() {
		now = p.now()
	}
	p.sync(now)

	t := p.tracks[p.index]
	pos := p.position(now)
	l := p.length()

	state := "Paused"
	if p.playing {
		state = "Playing"
	}

	barW := max(w-14, 4)
	filled := 0
	if l > 0 {
		filled = int(float64(barW) * float64(pos) / float64(l))
	}
	filled = min(max(filled, 0), barW)
	bar := lipgloss.NewStyle().Foreground(theme.Accent()).Render(strings.Repeat("━", filled)) +
		muted(strings.Repeat("─", barW-filled))

	lines := []string{
		heading(ansi.Truncate(t.Title, w, "…")),
		subheading(ansi.Truncate(t.Artist, w, "…")),
		muted(state),
		fmt.Sprintf("%s %s %s", clock(pos), bar, clock(l)),
		controls,
		"",
		heading("Playlist"),
	}
	for i, tr := range p.tracks {
		marker := "  "
		if i == p.index {
			marker = "▶ "
		}
		row := fmt.Sprintf("%s%-2d %s · %s  %s", marker, i+1, tr.Title, tr.Artist, clock(time.Duration(tr.Length)*time.Second))
		row = ansi.Truncate(row, w, "…")
		if i == p.index {
			row = lipgloss.NewStyle().Foreground(theme.Highlight()).Render(row)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n"), nil
}

func clock(d time.Duration) string {
	s := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
