package apps

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
)

// Section is one page of the About Me window.
type Section struct {
	kind    registry.Kind
	profile *profile.Profile
	scroll  scroller
	height  int
}

// NewSection returns the About Me page for kind.
func NewSection(kind registry.Kind, p *profile.Profile) *Section {
	return &Section{kind: kind, profile: p}
}

func (s *Section) View(ctx registry.ViewContext) (string, error) {
	w := max(ctx.Width, 10)
	s.height = ctx.Height

	var body string
	switch s.kind {
	case registry.KindAbout:
		body = s.about(w)
	case registry.KindExperience:
		body = s.experience(w)
	case registry.KindEducation:
		body = s.education(w)
	case registry.KindProjects:
		body = s.projects(w)
	case registry.KindSkills:
		body = s.skills(w)
	case registry.KindResume:
		body = s.resume(w)
	case registry.KindContact:
		body = s.contact(w)
	case registry.KindServices:
		body = s.services(w)
	default:
		return "", fmt.Errorf("about: unsupported section %s", s.kind)
	}
	return s.scroll.window(body, ctx.Height), nil
}

func (s *Section) Update(msg tea.Msg) tea.Cmd {
	return updateKeys(s, msg)
}

func (s *Section) HandleKey(key, _ string) tea.Cmd {
	s.scroll.handleKey(key, s.height-1)
	return nil
}

func (s *Section) about(w int) string {
	p := s.profile
	var b strings.Builder
	b.WriteString(heading(p.Name) + "\n")
	b.WriteString(subheading(p.Title) + "\n")
	if p.Location != "" {
		b.WriteString(muted(p.Location) + "\n")
	}
	b.WriteString("\n")
	if p.Tagline != "" {
		b.WriteString(wrap(p.Tagline, w) + "\n\n")
	}
	for _, para := range p.About {
		b.WriteString(wrap(para, w) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Section) experience(w int) string {
	var b strings.Builder
	b.WriteString(heading("Experience") + "\n\n")
	for _, e := range s.profile.Experience {
		b.WriteString(subheading(e.Role) + " · " + e.Company + "\n")
		b.WriteString(muted(strings.Trim(e.Period+" · "+e.Location, " ·")) + "\n")
		for _, h := range e.Highlights {
			b.WriteString(wrap("• "+h, w) + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Section) education(w int) string {
	var b strings.Builder
	b.WriteString(heading("Education") + "\n\n")
	for _, e := range s.profile.Education {
		b.WriteString(subheading(e.School) + "\n")
		b.WriteString(e.Degree + "\n")
		b.WriteString(muted(e.Period) + "\n")
		if e.Notes != "" {
			b.WriteString(wrap(e.Notes, w) + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Section) projects(w int) string {
	var b strings.Builder
	b.WriteString(heading("Projects") + "\n\n")
	for _, p := range s.profile.Projects {
		b.WriteString(subheading(p.Name) + "\n")
		b.WriteString(wrap(p.Description, w) + "\n")
		if len(p.Tech) > 0 {
			b.WriteString(muted(strings.Join(p.Tech, " · ")) + "\n")
		}
		if p.URL != "" {
			b.WriteString(muted(p.URL) + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Section) skills(w int) string {
	var b strings.Builder
	b.WriteString(heading("Skills") + "\n\n")
	for _, g := range s.profile.Skills {
		b.WriteString(subheading(g.Group) + "\n")
		b.WriteString(wrap(strings.Join(g.Items, ", "), w) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Section) resume(w int) string {
	var b strings.Builder
	b.WriteString(heading("Resume") + "\n\n")
	for _, line := range s.profile.Resume.Summary {
		b.WriteString(wrap("• "+line, w) + "\n")
	}
	if s.profile.Resume.URL != "" {
		b.WriteString("\nDownload: " + s.profile.Resume.URL + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Section) contact(w int) string {
	p := s.profile
	var b strings.Builder
	b.WriteString(heading("Contact") + "\n\n")
	b.WriteString("Email   " + p.Email + "\n")
	if p.Phone != "" {
		b.WriteString("Phone   " + p.Phone + "\n")
	}
	for _, l := range p.Links {
		b.WriteString(fmt.Sprintf("%-7s %s\n", l.Label, l.URL))
	}
	b.WriteString("\n" + wrap(muted("Open the Mail app to send a message without leaving the terminal."), w))
	return b.String()
}

func (s *Section) services(w int) string {
	var b strings.Builder
	b.WriteString(heading("Services") + "\n\n")
	for _, svc := range s.profile.Services {
		b.WriteString(subheading(svc.Name) + "\n")
		b.WriteString(wrap(svc.Description, w) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
