package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(slog.LevelInfo, FormatJSON, &buf).Info("computed", slog.String("key", "abc"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if rec["key"] != "abc" {
		t.Errorf("key = %v, want abc", rec["key"])
	}
}

func TestNew_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.LevelWarn, "TEXT", &buf)
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("output = %q, want text record", out)
	}
}
