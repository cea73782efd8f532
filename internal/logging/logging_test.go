package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kakha.log")

	logger, closeLog, err := Setup(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logger.Debug("clip playback failed", "clip", "/audio/ka.mp3")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "clip=/audio/ka.mp3") {
		t.Errorf("log file = %q", data)
	}
	if log.Default() != logger {
		t.Error("Setup() did not install the default logger")
	}
}

func TestSetupFallbackAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := Setup(Options{Level: "warn", Fallback: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSetupBadLevel(t *testing.T) {
	if _, _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
