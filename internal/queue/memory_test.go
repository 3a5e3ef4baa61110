package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryQueue_EnqueueDequeue(t *testing.T) {
	config := DefaultConfig("test")
	q := NewMemoryQueue(config)
	defer q.Close()

	ctx := context.Background()

	item := "test-item-1"
	err := q.Enqueue(ctx, item)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	items, err := q.Dequeue(ctx, 1)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	if items[0].(string) != item {
		t.Errorf("Expected %s, got %v", item, items[0])
	}
}

func TestMemoryQueue_MultipleBatch(t *testing.T) {
	config := DefaultConfig("test")
	config.BatchSize = 5
	q := NewMemoryQueue(config)
	defer q.Close()

	ctx := context.Background()

	for i := 0; i < 10; i++ {
		err := q.Enqueue(ctx, i)
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	items, err := q.Dequeue(ctx, 5)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}

	if len(items) != 5 {
		t.Fatalf("Expected 5 items, got %d", len(items))
	}

	length, err := q.Length(ctx)
	if err != nil {
		t.Fatalf("Length failed: %v", err)
	}
	if length != 5 {
		t.Errorf("Expected 5 remaining items, got %d", length)
	}
}

func TestMemoryQueue_TryEnqueueFull(t *testing.T) {
	config := DefaultConfig("test")
	config.BatchSize = 1 // Buffer of 10
	q := NewMemoryQueue(config)
	defer q.Close()

	// Fill the buffer
	for i := 0; i < 10; i++ {
		if err := q.TryEnqueue(i); err != nil {
			t.Fatalf("TryEnqueue %d failed: %v", i, err)
		}
	}

	// The next item must be dropped, not block
	err := q.TryEnqueue(10)
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestMemoryQueue_DequeueWithTimeout(t *testing.T) {
	config := DefaultConfig("test")
	q := NewMemoryQueue(config)
	defer q.Close()

	ctx := context.Background()

	start := time.Now()
	items, err := q.DequeueWithTimeout(ctx, 10, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("DequeueWithTimeout failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected 0 items on timeout, got %d", len(items))
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("DequeueWithTimeout returned too early: %v", elapsed)
	}
}

func TestMemoryQueue_Closed(t *testing.T) {
	config := DefaultConfig("test")
	q := NewMemoryQueue(config)
	q.Close()

	ctx := context.Background()

	if err := q.Enqueue(ctx, "item"); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed on Enqueue, got %v", err)
	}
	if err := q.TryEnqueue("item"); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed on TryEnqueue, got %v", err)
	}
	if _, err := q.Dequeue(ctx, 1); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed on Dequeue, got %v", err)
	}

	// Close is idempotent
	if err := q.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}

func TestMemoryDeadLetterQueue(t *testing.T) {
	dlq := NewMemoryDeadLetterQueue()
	defer dlq.Close()

	ctx := context.Background()

	err := dlq.Add(ctx, "failed-batch", errors.New("write failed"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	err = dlq.Add(ctx, "failed-batch-2", errors.New("write failed again"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	items, err := dlq.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Error != "write failed" {
		t.Errorf("Expected error text preserved, got %s", items[0].Error)
	}
	if items[0].ID == items[1].ID {
		t.Errorf("Expected unique IDs, got %s twice", items[0].ID)
	}

	if err := dlq.Remove(ctx, items[0].ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	items, err = dlq.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item after remove, got %d", len(items))
	}

	if err := dlq.Remove(ctx, "missing-id"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}
