package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Level = %s, want info", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Pretty should default to false")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      LogLevel
		want    zerolog.Level
		wantErr bool
	}{
		{in: "debug", want: zerolog.DebugLevel},
		{in: "INFO", want: zerolog.InfoLevel},
		{in: "", want: zerolog.InfoLevel},
		{in: "warning", want: zerolog.WarnLevel},
		{in: " warn ", want: zerolog.WarnLevel},
		{in: "error", want: zerolog.ErrorLevel},
		{in: "verbose", want: zerolog.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelWarn, Output: buf})

	logger.Info().Msg("page fetched")
	logger.Warn().Msg("throttled, retrying")

	out := buf.String()
	if strings.Contains(out, "page fetched") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "throttled, retrying") {
		t.Error("warn line should be written")
	}
}

func TestSetup_JSONFields(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	NewLogger("feed").Info().Str("market", "EU").Msg("Items built")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("output is not a JSON line: %v (%s)", err, buf.String())
	}

	want := map[string]string{
		"service":   ServiceName,
		"component": "feed",
		"market":    "EU",
		"message":   "Items built",
		"level":     "info",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s = %v, want %s", k, line[k], v)
		}
	}
	if _, ok := line["time"]; !ok {
		t.Error("expected a time field")
	}
}

func TestSetup_UnknownLevelWarns(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	buf := &bytes.Buffer{}
	Setup(Config{Level: "loud", Output: buf})

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("GlobalLevel() = %v, want info", zerolog.GlobalLevel())
	}
	if !strings.Contains(buf.String(), "Falling back to info level") {
		t.Errorf("expected fallback warning, got %s", buf.String())
	}
}

func TestSetup_Pretty(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	logger.Info().Msg("Feed run started")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("pretty output should not be JSON: %s", out)
	}
	if !strings.Contains(out, "Feed run started") {
		t.Errorf("missing message: %s", out)
	}
}
