package apps

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/mailbox"
	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// SubmitTimeout bounds a single mail submission.
const SubmitTimeout = 5 * time.Second

const (
	fieldName = iota
	fieldEmail
	fieldBody
	fieldCount
)

// MailResultMsg reports the outcome of a submission.
type MailResultMsg struct {
	ID  string
	Err error
}

// Compose is the contact form addressed to the portfolio owner.
type Compose struct {
	to      string
	name    textinput.Model
	email   textinput.Model
	body    textarea.Model
	focus   int
	sending bool
	status  string
	failed  bool

	mailer Mailer
	sender string
	height int
}

// NewCompose returns an empty form. A nil mailer leaves the form read-only.
func NewCompose(p *profile.Profile, m Mailer, sender string) *Compose {
	c := &Compose{
		mailer: m,
		sender: sender,
		name:   NewLineInput("", mailbox.MaxNameLength),
		email:  NewLineInput("", 254),
		body:   newTextArea(mailbox.MaxBodyLength),
	}
	if p != nil {
		c.to = p.Name + " <" + p.Email + ">"
	}
	if m == nil {
		c.status = "Mail is offline in this session."
		c.failed = true
	}
	c.setFocus(fieldName)
	return c
}

// Focus returns the focused field index.
func (c *Compose) Focus() int { return c.focus }

// Status returns the last status line and whether it is an error.
func (c *Compose) Status() (string, bool) { return c.status, c.failed }

// Sending reports whether a submission is in flight.
func (c *Compose) Sending() bool { return c.sending }

// Value returns the text of field i.
func (c *Compose) Value(i int) string {
	switch i {
	case fieldName:
		return c.name.Value()
	case fieldEmail:
		return c.email.Value()
	case fieldBody:
		return c.body.Value()
	}
	return ""
}

func (c *Compose) setFocus(i int) {
	c.focus = (i + fieldCount) % fieldCount
	c.name.Blur()
	c.email.Blur()
	c.body.Blur()
	switch c.focus {
	case fieldName:
		c.name.Focus()
	case fieldEmail:
		c.email.Focus()
	case fieldBody:
		c.body.Focus()
	}
}

func (c *Compose) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case MailResultMsg:
		c.finish(msg)
		return nil
	case tea.KeyPressMsg:
		return c.handleKey(msg)
	}
	return nil
}

func (c *Compose) finish(msg MailResultMsg) {
	c.sending = false
	if msg.Err != nil {
		c.failed = true
		switch {
		case errors.Is(msg.Err, mailbox.ErrRateLimited):
			c.status = "Slow down, too many messages. Try again in a minute."
		case errors.Is(msg.Err, mailbox.ErrInvalidEmail):
			c.status = "That email address does not look right."
			c.setFocus(fieldEmail)
		case errors.Is(msg.Err, mailbox.ErrEmptyMessage):
			c.status = "Write a message first."
			c.setFocus(fieldBody)
		case errors.Is(msg.Err, mailbox.ErrTooLong):
			c.status = "The message is too long."
		default:
			c.status = "Could not send: " + msg.Err.Error()
		}
		return
	}
	c.failed = false
	c.status = "Message sent. Thanks!"
	c.name.Reset()
	c.email.Reset()
	c.body.Reset()
	c.setFocus(fieldName)
}

func (c *Compose) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		return c.Send()
	case "tab":
		c.setFocus(c.focus + 1)
		return nil
	case "shift+tab":
		c.setFocus(c.focus - 1)
		return nil
	case "enter", "down":
		if c.focus != fieldBody {
			c.setFocus(c.focus + 1)
			return nil
		}
	case "up":
		if c.focus != fieldBody {
			c.setFocus(c.focus - 1)
			return nil
		}
	}

	var cmd tea.Cmd
	switch c.focus {
	case fieldName:
		c.name, cmd = c.name.Update(msg)
	case fieldEmail:
		c.email, cmd = c.email.Update(msg)
	case fieldBody:
		c.body, cmd = c.body.Update(msg)
	}
	return cmd
}

// Send submits the form asynchronously. It returns nil when there is nothing
// to do or a submission is already in flight.
func (c *Compose) Send() tea.Cmd {
	if c.mailer == nil || c.sending {
		return nil
	}
	if strings.TrimSpace(c.body.Value()) == "" {
		c.status = "Write a message first."
		c.failed = true
		c.setFocus(fieldBody)
		return nil
	}
	c.sending = true
	c.status = "Sending…"
	c.failed = false

	msg := mailbox.Message{
		Name:   c.name.Value(),
		Email:  c.email.Value(),
		Body:   c.body.Value(),
		Sender: c.sender,
	}
	mailer := c.mailer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), SubmitTimeout)
		defer cancel()
		stored, err := mailer.Submit(ctx, msg)
		return MailResultMsg{ID: stored.ID, Err: err}
	}
}

// Click focuses a field or presses Send.
func (c *Compose) Click(x, y int, _ registry.ViewContext) tea.Cmd {
	switch {
	case y == 2:
		c.setFocus(fieldName)
	case y == 3:
		c.setFocus(fieldEmail)
	case y >= 4 && y < c.height-2:
		c.setFocus(fieldBody)
	case y == c.height-2 && x < 10:
		return c.Send()
	}
	return nil
}

func (c *Compose) View(ctx registry.ViewContext) (string, error) {
	w := max(ctx.Width, 20)
	h := max(ctx.Height, 8)
	c.height = h

	label := lipgloss.NewStyle().Foreground(theme.Muted())
	focused := lipgloss.NewStyle().Foreground(theme.Accent()).Bold(true)
	labelFor := func(i int, s string) string {
		if i == c.focus {
			return focused.Render(s)
		}
		return label.Render(s)
	}
	c.name.SetWidth(max(w-10, 4))
	c.email.SetWidth(max(w-10, 4))
	input := func(in textinput.Model) string {
		if !ctx.Focused {
			in.Blur()
		}
		return in.View()
	}

	lines := []string{
		label.Render("To:      ") + ansi.Truncate(c.to, w-9, "…"),
		muted(strings.Repeat("─", w)),
		labelFor(fieldName, "Name:    ") + input(c.name),
		labelFor(fieldEmail, "Email:   ") + input(c.email),
		labelFor(fieldBody, "Message:"),
	}

	bodyH := h - len(lines) - 2
	c.body.SetWidth(w)
	c.body.SetHeight(bodyH)
	body := c.body.View()
	if !ctx.Focused {
		blurred := c.body
		blurred.Blur()
		body = blurred.View()
	}
	lines = append(lines, body)

	send := lipgloss.NewStyle().Background(theme.Accent()).Foreground(theme.WindowBg()).Bold(true).Render("  Send  ")
	lines = append(lines, send+" "+muted("ctrl+s · tab switches fields"))

	statusStyle := lipgloss.NewStyle().Foreground(theme.Success())
	if c.failed {
		statusStyle = lipgloss.NewStyle().Foreground(theme.Danger())
	}
	lines = append(lines, statusStyle.Render(ansi.Truncate(c.status, w, "…")))
	return strings.Join(lines, "\n"), nil
}
