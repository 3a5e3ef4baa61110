package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alias_gateway/internal/queue"
	"alias_gateway/internal/utils"
)

// BatchWriter is the destination a worker drains batches into.
type BatchWriter interface {
	WriteBatch(records []map[string]interface{}) error
}

// Worker drains the telemetry queue in batches and writes them out. Batches
// that keep failing after retries move to the dead-letter queue so a broken
// disk or bucket never wedges the queue.
type Worker struct {
	queue       queue.Queue
	dlq         queue.DeadLetterQueue
	writer      BatchWriter
	s3          *S3Writer
	config      *queue.Config
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewWorker creates a telemetry queue worker. The S3 writer is optional.
func NewWorker(q queue.Queue, dlq queue.DeadLetterQueue, writer BatchWriter, s3 *S3Writer, config *queue.Config) *Worker {
	if config == nil {
		config = queue.DefaultConfig("telemetry")
	}

	return &Worker{
		queue:       q,
		dlq:         dlq,
		writer:      writer,
		s3:          s3,
		config:      config,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start starts the worker goroutine
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop gracefully stops the worker, draining what is already queued.
func (w *Worker) Stop() error {
	close(w.stopChan)
	<-w.stoppedChan
	return nil
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context) {
	defer close(w.stoppedChan)

	logger := utils.NewLogger("telemetry-worker")

	for {
		select {
		case <-w.stopChan:
			w.drain(ctx, logger)
			logger.Info("Telemetry worker stopping")
			return
		case <-ctx.Done():
			logger.Info("Telemetry worker context cancelled")
			return
		default:
			w.processBatch(ctx, logger)
		}
	}
}

// drain flushes whatever is left in the queue during shutdown.
func (w *Worker) drain(ctx context.Context, logger *utils.Logger) {
	for {
		items, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, 100*time.Millisecond)
		if err != nil || len(items) == 0 {
			return
		}
		w.writeItems(ctx, items, logger)
	}
}

// processBatch processes one batch of telemetry events
func (w *Worker) processBatch(ctx context.Context, logger *utils.Logger) {
	items, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, w.config.BatchTimeout)
	if err != nil {
		logger.Error("Failed to dequeue telemetry events", "error", err)
		time.Sleep(1 * time.Second) // Back off on error
		return
	}

	if len(items) == 0 {
		return
	}

	logger.Debug("Processing telemetry batch", "count", len(items))
	w.writeItems(ctx, items, logger)
}

// writeItems normalizes queue items and writes them, retrying with
// exponential backoff before giving the batch to the DLQ.
func (w *Worker) writeItems(ctx context.Context, items []interface{}, logger *utils.Logger) {
	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		record, err := normalizeItem(item)
		if err != nil {
			logger.Error("Failed to decode telemetry event", "error", err)
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return
	}

	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := w.config.RetryBackoff * time.Duration(1<<uint(attempt-1))
			logger.Debug("Retrying telemetry batch", "attempt", attempt, "backoff", backoff)
			time.Sleep(backoff)
		}

		if err := w.writer.WriteBatch(records); err != nil {
			lastErr = err
			logger.Error("Failed to write telemetry batch", "attempt", attempt, "error", err)
			continue
		}

		// The file is the source of truth; S3 upload failures are logged
		// but do not retry the batch or send it to the DLQ.
		if w.s3 != nil {
			if _, err := w.s3.WriteBatch(ctx, records); err != nil {
				logger.Error("Failed to upload telemetry batch to S3", "error", err)
			}
		}

		logger.Debug("Telemetry batch written", "count", len(records))
		return
	}

	// Max retries exceeded - move the batch to the dead letter queue
	if w.dlq != nil {
		if err := w.dlq.Add(ctx, records, lastErr); err != nil {
			logger.Error("Failed to add to dead letter queue", "error", err)
		} else {
			logger.Warn("Telemetry batch moved to DLQ", "count", len(records), "error", lastErr)
		}
	}
}

// normalizeItem converts a queue item back into a record. Memory queues hand
// back the original map, Redis queues hand back JSON bytes.
func normalizeItem(item interface{}) (map[string]interface{}, error) {
	switch v := item.(type) {
	case map[string]interface{}:
		return v, nil
	case json.RawMessage:
		var record map[string]interface{}
		if err := json.Unmarshal(v, &record); err != nil {
			return nil, err
		}
		return record, nil
	case []byte:
		var record map[string]interface{}
		if err := json.Unmarshal(v, &record); err != nil {
			return nil, err
		}
		return record, nil
	default:
		return nil, fmt.Errorf("unexpected item type %T", item)
	}
}

// batchRecords unwraps a stored DLQ batch into individual records. Batches
// read back from Redis arrive as []interface{} after JSON decoding.
func batchRecords(item interface{}) []interface{} {
	switch v := item.(type) {
	case []map[string]interface{}:
		records := make([]interface{}, len(v))
		for i, r := range v {
			records[i] = r
		}
		return records
	case []interface{}:
		return v
	default:
		return []interface{}{item}
	}
}

// GetQueueLength returns the current queue length
func (w *Worker) GetQueueLength(ctx context.Context) (int, error) {
	return w.queue.Length(ctx)
}

// GetDeadLetterItems returns items from the dead letter queue
func (w *Worker) GetDeadLetterItems(ctx context.Context, maxItems int) ([]queue.DeadLetterItem, error) {
	if w.dlq == nil {
		return nil, fmt.Errorf("dead letter queue not configured")
	}
	return w.dlq.List(ctx, maxItems)
}

// RetryDeadLetterItem re-enqueues a failed batch from the dead letter queue
func (w *Worker) RetryDeadLetterItem(ctx context.Context, id string) error {
	if w.dlq == nil {
		return fmt.Errorf("dead letter queue not configured")
	}

	items, err := w.dlq.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list dead letter items: %w", err)
	}

	for _, dlItem := range items {
		if dlItem.ID == id {
			// DLQ items are whole batches; re-enqueue record by record
			for _, record := range batchRecords(dlItem.Item) {
				if err := w.queue.Enqueue(ctx, record); err != nil {
					return fmt.Errorf("failed to re-enqueue item: %w", err)
				}
			}
			if err := w.dlq.Remove(ctx, id); err != nil {
				return fmt.Errorf("failed to remove from DLQ: %w", err)
			}
			return nil
		}
	}

	return fmt.Errorf("item not found in dead letter queue")
}
