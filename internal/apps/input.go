package apps

import (
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"

	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// NewLineInput returns a focused single-line input with a static cursor.
// Views are redrawn on the desktop tick, so the cursor does not blink.
func NewLineInput(prompt string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = limit

	s := textinput.DefaultDarkStyles()
	s.Cursor.Blink = false
	s.Cursor.Color = theme.Accent()
	s.Focused.Prompt = s.Focused.Prompt.Foreground(theme.Accent())
	in.SetStyles(s)
	in.Focus()
	return in
}

func newTextArea(limit int) textarea.Model {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = limit

	s := textarea.DefaultDarkStyles()
	s.Cursor.Blink = false
	s.Cursor.Color = theme.Accent()
	ta.SetStyles(s)
	return ta
}
