package telemetry

import (
	"context"
	"testing"
	"time"

	"alias_gateway/internal/models"
	"alias_gateway/internal/queue"
)

func TestQueueSink_Emit(t *testing.T) {
	q := queue.NewMemoryQueue(queue.DefaultConfig("test"))
	defer q.Close()

	sink := NewQueueSink(q)

	latency := int64(812)
	sink.Emit(models.TelemetryEvent{
		Alias:     "orbit",
		TaskType:  models.TaskChat,
		LatencyMS: &latency,
	})

	items, err := q.Dequeue(context.Background(), 1)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	record, ok := items[0].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map item, got %T", items[0])
	}
	if record["alias"] != "orbit" {
		t.Errorf("Expected alias orbit, got %v", record["alias"])
	}
	if record["latency_ms"] != float64(812) {
		t.Errorf("Expected latency 812, got %v", record["latency_ms"])
	}
	if record["timestamp"] == nil || record["timestamp"] == "" {
		t.Error("Expected emission timestamp to be stamped")
	}
}

func TestQueueSink_EmitRedactsErrorClass(t *testing.T) {
	q := queue.NewMemoryQueue(queue.DefaultConfig("test"))
	defer q.Close()

	sink := NewQueueSink(q)

	// A raw provider message must never survive into the event stream
	sink.Emit(models.TelemetryEvent{
		Alias:      "codemax",
		TaskType:   models.TaskCode,
		ErrorClass: "OpenAI quota exceeded",
	})

	items, err := q.Dequeue(context.Background(), 1)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	record := items[0].(map[string]interface{})
	if record["error_class"] != "[redacted] quota exceeded" {
		t.Errorf("Expected vendor term redacted, got %v", record["error_class"])
	}
}

func TestQueueSink_EmitRaw(t *testing.T) {
	q := queue.NewMemoryQueue(queue.DefaultConfig("test"))
	defer q.Close()

	sink := NewQueueSink(q)

	sink.EmitRaw(map[string]interface{}{
		"alias":     "vision",
		"model":     "super-secret-model-id",
		"timestamp": "caller supplied",
	})

	items, err := q.Dequeue(context.Background(), 1)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	record := items[0].(map[string]interface{})

	if record["model"] != "[redacted]" {
		t.Errorf("Expected sensitive key masked, got %v", record["model"])
	}
	if record["alias"] != "vision" {
		t.Errorf("Expected alias preserved, got %v", record["alias"])
	}

	// The caller-supplied timestamp is overwritten at emission
	ts, ok := record["timestamp"].(string)
	if !ok || ts == "caller supplied" {
		t.Errorf("Expected stamped timestamp, got %v", record["timestamp"])
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %v: %v", ts, err)
	}
}

func TestQueueSink_DropOnFullQueue(t *testing.T) {
	config := queue.DefaultConfig("test")
	config.BatchSize = 1 // Buffer of 10
	q := queue.NewMemoryQueue(config)
	defer q.Close()

	sink := NewQueueSink(q)

	// Overfill the buffer; Emit must never block or panic
	for i := 0; i < 20; i++ {
		sink.Emit(models.TelemetryEvent{Alias: "echo", TaskType: models.TaskAudio})
	}

	length, err := q.Length(context.Background())
	if err != nil {
		t.Fatalf("Length failed: %v", err)
	}
	if length != 10 {
		t.Errorf("Expected buffer capped at 10 events, got %d", length)
	}
}
