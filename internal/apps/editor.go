package apps

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// Editor is a read-only code viewer for a bundled document.
type Editor struct {
	doc    profile.Document
	lines  []string
	top    int
	cursor int
	height int
}

// NewEditor returns a viewer for doc.
func NewEditor(doc profile.Document) *Editor {
	if doc.Filename == "" {
		doc.Filename = "README.md"
	}
	return &Editor{doc: doc, lines: strings.Split(strings.TrimRight(doc.Body, "\n"), "\n")}
}

// Cursor returns the zero-based cursor line.
func (e *Editor) Cursor() int { return e.cursor }

func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	return updateKeys(e, msg)
}

func (e *Editor) HandleKey(key, _ string) tea.Cmd {
	page := max(e.height-3, 1)
	switch key {
	case "up", "k":
		e.moveTo(e.cursor - 1)
	case "down", "j":
		e.moveTo(e.cursor + 1)
	case "pgup":
		e.moveTo(e.cursor - page)
	case "pgdown":
		e.moveTo(e.cursor + page)
	case "home", "g":
		e.moveTo(0)
	case "end", "G":
		e.moveTo(len(e.lines) - 1)
	}
	return nil
}

func (e *Editor) moveTo(line int) {
	e.cursor = min(max(line, 0), len(e.lines)-1)
}

// Click moves the cursor to the clicked line.
func (e *Editor) Click(_, y int, _ registry.ViewContext) tea.Cmd {
	if y >= 1 && y < e.height-1 {
		e.moveTo(e.top + y - 1)
	}
	return nil
}

func (e *Editor) View(ctx registry.ViewContext) (string, error) {
	w := max(ctx.Width, 10)
	e.height = ctx.Height
	body := max(ctx.Height-2, 1)

	if e.cursor < e.top {
		e.top = e.cursor
	}
	if e.cursor >= e.top+body {
		e.top = e.cursor - body + 1
	}

	tabStyle := lipgloss.NewStyle().Background(theme.WindowBg()).Foreground(theme.Highlight()).Bold(true)
	gutter := lipgloss.NewStyle().Foreground(theme.Muted())
	current := lipgloss.NewStyle().Foreground(theme.Accent())
	headingStyle := lipgloss.NewStyle().Foreground(theme.Accent()).Bold(true)

	digits := len(fmt.Sprint(len(e.lines)))
	out := []string{tabStyle.Render(" " + e.doc.Filename + " ")}

	for i := e.top; i < e.top+body; i++ {
		if i >= len(e.lines) {
			out = append(out, gutter.Render(strings.Repeat(" ", digits)+" ~"))
			continue
		}
		num := fmt.Sprintf("%*d ", digits, i+1)
		if i == e.cursor {
			num = current.Render(num)
		} else {
			num = gutter.Render(num)
		}
		text := e.lines[i]
		if strings.HasPrefix(text, "#") {
			text = headingStyle.Render(text)
		}
		out = append(out, ansi.Truncate(num+text, w, "…"))
	}

	status := fmt.Sprintf(" Ln %d, Col 1   UTF-8   %s ", e.cursor+1, language(e.doc.Filename))
	out = append(out, lipgloss.NewStyle().Foreground(theme.Muted()).Render(ansi.Truncate(status, w, "")))
	return strings.Join(out, "\n"), nil
}

func language(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".md"):
		return "Markdown"
	case strings.HasSuffix(filename, ".go"):
		return "Go"
	case strings.HasSuffix(filename, ".yaml"), strings.HasSuffix(filename, ".yml"):
		return "YAML"
	default:
		return "Plain Text"
	}
}
