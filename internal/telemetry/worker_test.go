package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"alias_gateway/internal/models"
	"alias_gateway/internal/queue"
)

func telemetryTestConfig() *queue.Config {
	config := queue.DefaultConfig("test")
	config.BatchSize = 10
	config.BatchTimeout = 50 * time.Millisecond
	config.MaxRetries = 1
	config.RetryBackoff = 10 * time.Millisecond
	return config
}

func TestWorker_WritesEvents(t *testing.T) {
	tempDir := t.TempDir()
	fileTemplate := filepath.Join(tempDir, "events-%s.jsonl")

	writer, err := NewFileWriter(fileTemplate, 10*1024, 5)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	config := telemetryTestConfig()
	q := queue.NewMemoryQueue(config)
	dlq := queue.NewMemoryDeadLetterQueue()
	defer dlq.Close()

	worker := NewWorker(q, dlq, writer, nil, config)
	worker.Start(context.Background())

	sink := NewQueueSink(q)
	sink.Emit(models.TelemetryEvent{Alias: "orbit", TaskType: models.TaskChat})
	sink.Emit(models.TelemetryEvent{Alias: "echo", TaskType: models.TaskAudio, ErrorClass: "timeout"})

	// Stop drains the queue before returning
	if err := worker.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	q.Close()
	writer.Close()

	content, err := os.ReadFile(writer.currentFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"alias":"orbit"`) {
		t.Errorf("Expected orbit event written, got: %s", content)
	}
	if !strings.Contains(string(content), `"error_class":"timeout"`) {
		t.Errorf("Expected echo error event written, got: %s", content)
	}
}

type failingWriter struct {
	calls int
}

func (w *failingWriter) WriteBatch(records []map[string]interface{}) error {
	w.calls++
	return errors.New("disk full")
}

func TestWorker_FailedBatchMovesToDLQ(t *testing.T) {
	config := telemetryTestConfig()
	q := queue.NewMemoryQueue(config)
	dlq := queue.NewMemoryDeadLetterQueue()
	defer dlq.Close()

	writer := &failingWriter{}
	worker := NewWorker(q, dlq, writer, nil, config)
	worker.Start(context.Background())

	sink := NewQueueSink(q)
	sink.Emit(models.TelemetryEvent{Alias: "vision", TaskType: models.TaskVision})

	// Wait for the batch to fail through its retries
	deadline := time.Now().Add(2 * time.Second)
	var items []queue.DeadLetterItem
	for time.Now().Before(deadline) {
		items, _ = dlq.List(context.Background(), 0)
		if len(items) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	worker.Stop()
	q.Close()

	if len(items) != 1 {
		t.Fatalf("Expected 1 dead letter batch, got %d", len(items))
	}
	if items[0].Error != "disk full" {
		t.Errorf("Expected original error preserved, got %s", items[0].Error)
	}
	if writer.calls < 2 {
		t.Errorf("Expected at least one retry, got %d attempts", writer.calls)
	}
}

func TestWorker_RetryDeadLetterItem(t *testing.T) {
	config := telemetryTestConfig()
	q := queue.NewMemoryQueue(config)
	defer q.Close()
	dlq := queue.NewMemoryDeadLetterQueue()
	defer dlq.Close()

	worker := NewWorker(q, dlq, &failingWriter{}, nil, config)

	ctx := context.Background()
	batch := []map[string]interface{}{
		{"alias": "orbit", "task_type": "chat"},
		{"alias": "codemax", "task_type": "code"},
	}
	if err := dlq.Add(ctx, batch, errors.New("disk full")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	items, err := dlq.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if err := worker.RetryDeadLetterItem(ctx, items[0].ID); err != nil {
		t.Fatalf("RetryDeadLetterItem failed: %v", err)
	}

	// Records are re-enqueued individually
	length, err := q.Length(ctx)
	if err != nil {
		t.Fatalf("Length failed: %v", err)
	}
	if length != 2 {
		t.Errorf("Expected 2 re-enqueued records, got %d", length)
	}

	items, err = dlq.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected DLQ emptied, got %d items", len(items))
	}

	if err := worker.RetryDeadLetterItem(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown DLQ id")
	}
}
