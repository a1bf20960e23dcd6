package registry

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
)

// FailureMessage replaces the content of a view that failed to render.
const FailureMessage = "This app failed to load."

// ViewContext is what a content view knows about the window it is drawn in.
type ViewContext struct {
	Width   int
	Height  int
	Index   int
	Focused bool
	Now     time.Time
}

// Content renders one sub-view of an application.
type Content interface {
	View(ctx ViewContext) (string, error)
}

// Updater is implemented by content that reacts to input or messages while its window is focused.
type Updater interface {
	Update(msg tea.Msg) tea.Cmd
}

// Clicker is implemented by content that handles clicks at window-local coordinates.
type Clicker interface {
	Click(x, y int, ctx ViewContext) tea.Cmd
}

// Factory builds a fresh content instance.
type Factory func() Content

// Factories maps every content kind to its constructor.
type Factories map[Kind]Factory

// Build instantiates the views for an application, index-aligned with SubComponents.
func (f Factories) Build(cfg AppConfig) ([]Content, error) {
	views := make([]Content, 0, len(cfg.SubComponents))
	for _, sub := range cfg.SubComponents {
		factory := f[sub.Kind]
		if factory == nil {
			return nil, fmt.Errorf("no factory for kind %s", sub.Kind)
		}
		views = append(views, factory())
	}
	return views, nil
}

// SafeView renders c and contains any failure. On error or panic the returned
// string is FailureMessage and err describes what went wrong.
func SafeView(c Content, ctx ViewContext) (out string, err error) {
	if c == nil {
		return FailureMessage, fmt.Errorf("no content")
	}
	defer func() {
		if r := recover(); r != nil {
			out = FailureMessage
			err = fmt.Errorf("render panic: %v", r)
		}
	}()

	out, err = c.View(ctx)
	if err != nil {
		return FailureMessage, fmt.Errorf("render: %w", err)
	}
	return out, nil
}
