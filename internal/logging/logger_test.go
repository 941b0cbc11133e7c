package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	logger := New("prod", "debug", &buf)

	logger.Debug().Str("op", "add_player").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["app"] != "prod" || entry["op"] != "add_player" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	logger := New("dev", "info", &buf)

	logger.Info().Msg("ready")

	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "ready") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"warn", zerolog.WarnLevel},
		{" DEBUG ", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := New("prod", tt.level, &bytes.Buffer{}).GetLevel(); got != tt.want {
			t.Fatalf("level %q: got %v, want %v", tt.level, got, tt.want)
		}
	}
}
