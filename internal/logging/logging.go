// Package logging hands out prefixed charmbracelet loggers that share one level and output.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	loggers = map[string]*log.Logger{}
	level   = log.InfoLevel
	out     io.Writer = os.Stderr
)

// New returns the logger for prefix, creating it on first use.
func New(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[prefix]; ok {
		return l
	}
	l := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	loggers[prefix] = l
	return l
}

// SetLevel sets the level of every logger, existing and future.
func SetLevel(l log.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = l
	for _, lg := range loggers {
		lg.SetLevel(l)
	}
}

// SetDebug switches between debug and info level.
func SetDebug(debug bool) {
	if debug {
		SetLevel(log.DebugLevel)
		return
	}
	SetLevel(log.InfoLevel)
}

// SetOutput redirects every logger. The TUI uses this to keep stderr clean
// while the alternate screen is active.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out = w
	for _, lg := range loggers {
		lg.SetOutput(w)
	}
}
