package desktop

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// MaxLogMessages bounds the in-session log ring.
const MaxLogMessages = 200

// LogMessage is one entry in the session log viewer.
type LogMessage struct {
	Time    time.Time
	Level   string // INFO, WARN, ERROR
	Message string
}

// Log records a message in the session log and mirrors it to the process
// logger at debug level.
func (d *Desktop) Log(level, format string, args ...any) {
	message := fmt.Sprintf(format, args...)

	wasAtBottom := d.logView.AtBottom()

	d.logs = append(d.logs, LogMessage{Time: d.sched.Now(), Level: level, Message: message})
	if len(d.logs) > MaxLogMessages {
		d.logs = d.logs[len(d.logs)-MaxLogMessages:]
	}
	d.refreshLogView()

	// sticky scroll
	if wasAtBottom {
		d.logView.GotoBottom()
	}

	logger.Debug(message, "level", level)
}

func (d *Desktop) LogInfo(format string, args ...any) {
	d.Log("INFO", format, args...)
}

func (d *Desktop) LogWarn(format string, args ...any) {
	d.Log("WARN", format, args...)
}

func (d *Desktop) LogError(format string, args ...any) {
	d.Log("ERROR", format, args...)
}

// Logs returns a copy of the session log.
func (d *Desktop) Logs() []LogMessage {
	return append([]LogMessage(nil), d.logs...)
}

func (d *Desktop) sizeLogView() {
	wasAtBottom := d.logView.AtBottom()
	d.logView.SetWidth(min(74, max(d.width-8, 10)))
	d.logView.SetHeight(max(d.height-10, 1))
	d.refreshLogView()
	if wasAtBottom {
		d.logView.GotoBottom()
	}
}

// refreshLogView formats the ring into the log viewer.
func (d *Desktop) refreshLogView() {
	width := d.logView.Width()
	lines := make([]string, len(d.logs))
	for i, msg := range d.logs {
		color := theme.LogViewerInfo()
		switch msg.Level {
		case "ERROR":
			color = theme.LogViewerError()
		case "WARN":
			color = theme.LogViewerWarn()
		}
		level := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("[%s]", msg.Level))
		lines[i] = ansi.Truncate(fmt.Sprintf("%s %s %s", msg.Time.Format("15:04:05"), level, msg.Message), width, "…")
	}
	d.logView.SetContentLines(lines)
}

func (d *Desktop) scrollLogs(delta int) {
	if delta < 0 {
		d.logView.ScrollUp(-delta)
		return
	}
	d.logView.ScrollDown(delta)
}
