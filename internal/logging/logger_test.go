package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"jamsync/internal/config"
	"jamsync/internal/logging"
)

func TestNewFromConfigWritesRotatedFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message", logging.String("worksheet", "2024/03/10"))

	content, err := os.ReadFile(cfg.LogFilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "debug message") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "pipeline")
	component.Info("session extracted",
		logging.String(logging.FieldWorksheet, "2024/03/10"),
		logging.Int("events", 4),
		logging.Group("match", logging.Float64("score", 0.5)),
	)

	line := buf.String()
	for _, want := range []string{"INFO", "[pipeline] session extracted", "worksheet=2024/03/10", "events=4", "match.score=0.5"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should render as a prefix, got %q", line)
	}
}

func TestConsoleLoggerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("unmatched", logging.String("song", "Blue Bossa"), logging.String("artist", ""))
	line := buf.String()
	if !strings.Contains(line, `song="Blue Bossa"`) || !strings.Contains(line, `artist=""`) {
		t.Fatalf("expected quoted values, got %q", line)
	}
}

func TestJSONLoggerUsesStableKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("skipped", logging.Error(errors.New("boom")))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload["level"] != "warn" || payload["msg"] != "skipped" || payload["error"] != "boom" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "worksheet skipped", "worksheet_skipped",
		logging.String(logging.FieldImpact, "session not exported"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload[logging.FieldEventType] != "worksheet_skipped" {
		t.Fatalf("unexpected event_type: %v", payload)
	}
	if payload[logging.FieldImpact] != "session not exported" {
		t.Fatalf("impact should not be overwritten: %v", payload)
	}
	if payload[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error_hint: %v", payload)
	}
}

func TestWithContextAddsRunAndWorksheet(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "run-1")
	ctx = logging.WithWorksheet(ctx, "Jam Log 2024", "2024/03/10")

	logging.WithContext(ctx, logger).Info("extracting")
	line := buf.String()
	for _, want := range []string{"run_id=run-1", `spreadsheet="Jam Log 2024"`, "worksheet=2024/03/10"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 100) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}

func TestLoggersRoundMatchScores(t *testing.T) {
	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("matched", logging.Float64("score", 0.9047619047619048))
	if !strings.Contains(console.String(), "score=0.9048") {
		t.Fatalf("expected rounded score, got %q", console.String())
	}

	var jsonBuf bytes.Buffer
	logger, err = logging.New(logging.Options{Format: "json", Level: "info", Console: &jsonBuf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("matched", logging.Float64("score", 0.9047619047619048))
	var payload map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload["score"] != 0.9048 {
		t.Fatalf("expected rounded score in JSON, got %v", payload["score"])
	}
}

func TestSongPairRendersNestedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("no catalog match", logging.SongPair("Blue Bossa", "Dorham"))
	line := buf.String()
	if !strings.Contains(line, `entry.song="Blue Bossa"`) || !strings.Contains(line, "entry.artist=Dorham") {
		t.Fatalf("expected grouped song pair, got %q", line)
	}
}
