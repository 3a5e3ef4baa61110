package telemetry

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileWriter(t *testing.T) {
	tempDir := t.TempDir()
	fileTemplate := filepath.Join(tempDir, "events-%s.jsonl")

	writer, err := NewFileWriter(fileTemplate, 1024, 5)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer writer.Close()

	if writer.fileTemplate != fileTemplate {
		t.Errorf("Expected fileTemplate %s, got %s", fileTemplate, writer.fileTemplate)
	}
	if writer.maxSize != 1024 {
		t.Errorf("Expected maxSize 1024, got %d", writer.maxSize)
	}

	if _, err := os.Stat(writer.currentFile); err != nil {
		t.Errorf("Expected active file to exist: %v", err)
	}
}

func TestFileWriter_WriteBatch(t *testing.T) {
	tempDir := t.TempDir()
	fileTemplate := filepath.Join(tempDir, "events-%s.jsonl")

	writer, err := NewFileWriter(fileTemplate, 10*1024, 5)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	records := []map[string]interface{}{
		{"alias": "orbit", "task_type": "chat", "latency_ms": float64(812)},
		{"alias": "codemax", "task_type": "code", "error_class": "timeout"},
	}

	if err := writer.WriteBatch(records); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(writer.currentFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	lines := 0
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		lines++
	}
	if lines != 2 {
		t.Errorf("Expected 2 JSON lines, got %d: %s", lines, content)
	}
	if !strings.Contains(string(content), `"alias":"orbit"`) {
		t.Errorf("Expected first record in output, got: %s", content)
	}
	if !strings.Contains(string(content), `"error_class":"timeout"`) {
		t.Errorf("Expected second record in output, got: %s", content)
	}
}

func TestFileWriter_Rotation(t *testing.T) {
	tempDir := t.TempDir()
	fileTemplate := filepath.Join(tempDir, "events-%s.jsonl")

	// Tiny max size so every record rotates
	writer, err := NewFileWriter(fileTemplate, 10, 3)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	for i := 0; i < 3; i++ {
		record := []map[string]interface{}{{"alias": "echo", "task_type": "audio"}}
		if err := writer.WriteBatch(record); err != nil {
			t.Fatalf("WriteBatch %d failed: %v", i, err)
		}
	}
	writer.Close()

	matches, err := filepath.Glob(filepath.Join(tempDir, "events-*.jsonl"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) < 1 {
		t.Error("Expected at least one rotated file")
	}
	if len(matches) > 3 {
		t.Errorf("Expected cleanup to keep at most 3 files, found %d", len(matches))
	}
}
