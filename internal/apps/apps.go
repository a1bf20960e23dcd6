// Package apps implements the content views shown inside desktop windows.
package apps

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Gaurav-Gosain/deskfolio/internal/mailbox"
	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// Mailer accepts contact messages.
type Mailer interface {
	Submit(ctx context.Context, m mailbox.Message) (mailbox.Message, error)
}

// Deps are the collaborators shared by every view in a session.
type Deps struct {
	Profile *profile.Profile
	// Mailer may be nil, in which case the mail app reports it is offline.
	Mailer Mailer
	// Sender identifies the session for mail rate limiting.
	Sender string
	Now    func() time.Time
}

// Factories returns a constructor for every content kind.
func Factories(d Deps) registry.Factories {
	if d.Profile == nil {
		d.Profile = profile.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	f := registry.Factories{}
	for _, k := range []registry.Kind{
		registry.KindAbout, registry.KindExperience, registry.KindEducation, registry.KindProjects,
		registry.KindSkills, registry.KindResume, registry.KindContact, registry.KindServices,
	} {
		f[k] = func() registry.Content { return NewSection(k, d.Profile) }
	}
	f[registry.KindBrowser] = func() registry.Content { return NewBrowser(d.Profile.Bookmarks) }
	f[registry.KindEditor] = func() registry.Content { return NewEditor(d.Profile.Readme) }
	f[registry.KindMusic] = func() registry.Content { return NewPlayer(d.Profile.Playlist, d.Now) }
	f[registry.KindMail] = func() registry.Content { return NewCompose(d.Profile, d.Mailer, d.Sender) }
	return f
}

// NowPlayer is implemented by content that can report a now-playing line.
type NowPlayer interface {
	NowPlaying(now time.Time) (string, bool)
}

// keyHandler is the common shape of the views' key handling.
type keyHandler interface {
	HandleKey(key, text string) tea.Cmd
}

// updateKeys adapts a key handler to registry.Updater.
func updateKeys(h keyHandler, msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		return h.HandleKey(k.String(), k.Text)
	}
	return nil
}

func heading(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Render(s)
}

func subheading(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight()).Render(s)
}

func muted(s string) string {
	return lipgloss.NewStyle().Foreground(theme.Muted()).Render(s)
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// scroller keeps a vertical offset into a list of lines.
type scroller struct {
	offset int
}

func (s *scroller) scroll(delta int) {
	s.offset = max(s.offset+delta, 0)
}

func (s *scroller) window(content string, height int) string {
	lines := strings.Split(content, "\n")
	if height <= 0 || len(lines) <= height {
		s.offset = 0
		return content
	}
	s.offset = min(s.offset, len(lines)-height)
	return strings.Join(lines[s.offset:s.offset+height], "\n")
}

func (s *scroller) handleKey(key string, page int) bool {
	switch key {
	case "up", "k":
		s.scroll(-1)
	case "down", "j":
		s.scroll(1)
	case "pgup":
		s.scroll(-max(page, 1))
	case "pgdown", "space":
		s.scroll(max(page, 1))
	case "home", "g":
		s.offset = 0
	default:
		return false
	}
	return true
}
