package audio

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderWritesWAV(t *testing.T) {
	dir := t.TempDir()

	rec, err := NewRecorder("call-123", dir, 8000, testLogger())
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	rec.Append([]int16{100, 200, 300})
	rec.Append([]int16{-100, -200})

	if got := rec.Len(); got != 5 {
		t.Errorf("expected 5 samples accumulated, got %d", got)
	}

	path, err := rec.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected a recording path")
	}
	if !strings.Contains(filepath.Base(path), "call-123") {
		t.Errorf("expected call ID in filename, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read recording: %v", err)
	}

	samples, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("recording is not valid WAV: %v", err)
	}
	if rate != 8000 {
		t.Errorf("expected sample rate 8000, got %d", rate)
	}

	expected := []int16{100, 200, 300, -100, -200}
	if len(samples) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(samples))
	}
	for i := range expected {
		if samples[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], samples[i])
		}
	}
}

func TestRecorderFinalizeIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	rec, err := NewRecorder("call-456", dir, 8000, testLogger())
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	rec.Append([]int16{1, 2, 3})

	first, err := rec.Finalize()
	if err != nil {
		t.Fatalf("first Finalize failed: %v", err)
	}
	if first == "" {
		t.Fatal("expected a recording path from first Finalize")
	}

	second, err := rec.Finalize()
	if err != nil {
		t.Fatalf("second Finalize failed: %v", err)
	}
	if second != "" {
		t.Errorf("expected empty path from second Finalize, got %s", second)
	}

	// Appends after finalization are discarded.
	rec.Append([]int16{4, 5})
	if got := rec.Len(); got != 0 {
		t.Errorf("expected no samples after finalization, got %d", got)
	}
}

func TestRecorderEmptyCall(t *testing.T) {
	dir := t.TempDir()

	rec, err := NewRecorder("call-789", dir, 8000, testLogger())
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	path, err := rec.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected no file for empty call, got %s", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty recording directory, found %d entries", len(entries))
	}
}

func TestNewRecorderValidation(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewRecorder("", dir, 8000, testLogger()); err == nil {
		t.Error("expected error for empty call ID")
	}
	if _, err := NewRecorder("call-1", dir, 0, testLogger()); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
