package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingLogger(t *testing.T) {
	tempDir := t.TempDir()

	rl := NewRotatingLogger(tempDir, 1, 0)
	if err := rl.Open(); err != nil {
		t.Fatalf("Failed to open: %v", err)
	}

	currentWeek := getWeekKey(time.Now())
	expectedFileName := filepath.Join(tempDir, "app-"+currentWeek+".log")
	if _, err := os.Stat(expectedFileName); os.IsNotExist(err) {
		t.Errorf("Expected log file %s was not created", expectedFileName)
	}

	testMessage := "Test log message"
	if _, err := rl.Write([]byte(testMessage)); err != nil {
		t.Fatalf("Failed to write to log: %v", err)
	}

	if err := rl.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	content, err := os.ReadFile(expectedFileName)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if !strings.Contains(string(content), testMessage) {
		t.Errorf("Log file does not contain test message: %s", string(content))
	}
}

func TestGetWeekKey(t *testing.T) {
	testTime := time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC)

	// 2025-10-07 should be in week 41 of 2025
	if got := getWeekKey(testTime); got != "2025-W41" {
		t.Errorf("Expected week key 2025-W41, got %s", got)
	}

	// ISO week of early January can belong to the previous year
	if got := getWeekKey(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)); got != "2026-W53" {
		t.Errorf("Expected week key 2026-W53, got %s", got)
	}
}

func TestRotatingLoggerSizeRollover(t *testing.T) {
	tempDir := t.TempDir()

	rl := NewRotatingLogger(tempDir, 1, 64)
	if err := rl.Open(); err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	defer rl.Close()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	week := getWeekKey(time.Now())
	for _, name := range []string{"app-" + week + ".log", "app-" + week + "_01.log", "app-" + week + "_02.log"} {
		if _, err := os.Stat(filepath.Join(tempDir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestRotatingLoggerWeekChange(t *testing.T) {
	tempDir := t.TempDir()

	current := time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC)
	rl := NewRotatingLogger(tempDir, 4, 0)
	rl.now = func() time.Time { return current }

	if err := rl.Open(); err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	defer rl.Close()

	if _, err := rl.Write([]byte("friday\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	current = current.AddDate(0, 0, 3)
	if _, err := rl.Write([]byte("monday\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	first, _ := os.ReadFile(filepath.Join(tempDir, "app-2026-W42.log"))
	second, _ := os.ReadFile(filepath.Join(tempDir, "app-2026-W43.log"))

	if string(first) != "friday\n" {
		t.Errorf("Unexpected week 42 content: %q", first)
	}
	if string(second) != "monday\n" {
		t.Errorf("Unexpected week 43 content: %q", second)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	tempDir := t.TempDir()

	oldFile := filepath.Join(tempDir, "app-2020-W01.log")
	keepFile := filepath.Join(tempDir, "app-2026-W42.log")
	otherFile := filepath.Join(tempDir, "notes.txt")

	for _, path := range []string{oldFile, keepFile, otherFile} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", path, err)
		}
	}

	old := time.Now().Add(-10 * 7 * 24 * time.Hour)
	if err := os.Chtimes(oldFile, old, old); err != nil {
		t.Fatalf("Failed to age file: %v", err)
	}
	if err := os.Chtimes(otherFile, old, old); err != nil {
		t.Fatalf("Failed to age file: %v", err)
	}

	rl := NewRotatingLogger(tempDir, 4, 0)
	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("Failed to cleanup old logs: %v", err)
	}

	if deleted != 1 {
		t.Errorf("Expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("Expected old log file to be removed")
	}
	if _, err := os.Stat(keepFile); err != nil {
		t.Error("Expected recent log file to be kept")
	}
	if _, err := os.Stat(otherFile); err != nil {
		t.Error("Expected non-log file to be kept")
	}
}
