package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSharedLevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(log.InfoLevel)
	})

	a := New("test-a")
	if New("test-a") != a {
		t.Fatal("New returned a different logger for the same prefix")
	}

	a.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message written at info level")
	}

	SetDebug(true)
	b := New("test-b")
	a.Debug("shown-a")
	b.Debug("shown-b")
	out := buf.String()
	if !strings.Contains(out, "shown-a") || !strings.Contains(out, "shown-b") {
		t.Errorf("debug messages missing: %q", out)
	}
	if !strings.Contains(out, "test-b") {
		t.Errorf("prefix missing: %q", out)
	}

	SetOutput(io.Discard)
	a.Info("discarded")
	if strings.Contains(buf.String(), "discarded") {
		t.Error("SetOutput did not redirect existing loggers")
	}
}
