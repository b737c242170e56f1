package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"thermolab/internal/platform/logging"
)

func TestWithSessionAddsAttribute(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.NewWriterLogger(buf, "DEBUG").WithSession("S123456")
	logger.Info("submit finished", "rows", 2)

	entry := map[string]any{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["session_id"] != "S123456" {
		t.Fatalf("expected session_id attribute, got %v", entry)
	}
	if entry["rows"] != float64(2) {
		t.Fatalf("expected rows=2, got %v", entry["rows"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.NewWriterLogger(buf, "warn")
	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "visible") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestFileLoggerWritesAndCloses(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "thermolab.log")
	logger, err := logging.NewLogger(path, "INFO")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"hello"`) {
		t.Fatalf("log file missing entry: %s", raw)
	}
}
