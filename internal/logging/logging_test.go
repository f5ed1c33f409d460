package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("production", "json", &buf)

	logger.Info().Str("component", "planner").Msg("solved")
	logger.Debug().Msg("hidden")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "\n") {
		t.Fatalf("expected a single line, got %q", line)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected json output: %v (%q)", err, line)
	}
	if entry["component"] != "planner" || entry["message"] != "solved" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSetupWithWriterDevelopmentLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("development", "console", &buf)

	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %s, want debug", logger.GetLevel())
	}
	logger.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
