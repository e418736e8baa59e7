package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_CreatesDirAndLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug level should be enabled")
	}

	log.Info("test_message_from_logging_test")

	// lumberjack opens the file lazily on first write.
	if _, err := os.Stat(filepath.Join(dir, logFile)); err != nil {
		t.Fatalf("log file missing after write: %v", err)
	}
}

func TestNewLogger_StderrWhenNoDir(t *testing.T) {
	log, err := NewLogger("", "")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("default level should be info")
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger("", "chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
