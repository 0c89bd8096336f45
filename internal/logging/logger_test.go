package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gearbox/internal/services"
)

func TestNewConsoleWritesKeyValueLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gearbox.log")

	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}

	logger = NewComponentLogger(logger, "deploy")
	logger.Info("vehicle deployed", String("vehicle", "v014_car_offroadtruck"), Int("files", 2))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "deploy: vehicle deployed") {
		t.Fatalf("missing component prefix: %q", line)
	}
	if !strings.Contains(line, "vehicle=v014_car_offroadtruck") || !strings.Contains(line, "files=2") {
		t.Fatalf("missing attributes: %q", line)
	}
}

func TestArgsSpreadIntoLogCalls(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gearbox.log")

	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}

	attrs := []Attr{Int64("bytes", 4096), Duration("elapsed", 0)}
	logger.Info("converted", Args(attrs...)...)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "bytes=4096") || !strings.Contains(line, "elapsed=") {
		t.Fatalf("missing attributes: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gearbox.log")

	logger, err := New(Options{Level: "warn", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	logger.Warn("kept")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gearbox.log")

	logger, err := New(Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}

	ctx := services.WithVehicle(context.Background(), "v100_bike_dirt")
	ctx = services.WithOperationID(ctx, "op-123")
	WithContext(ctx, logger).Info("working")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "vehicle=v100_bike_dirt") || !strings.Contains(line, "operation_id=op-123") {
		t.Fatalf("context fields missing: %q", line)
	}
}
