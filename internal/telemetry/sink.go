package telemetry

import (
	"encoding/json"
	"errors"
	"time"

	"alias_gateway/internal/models"
	"alias_gateway/internal/queue"
	"alias_gateway/internal/redaction"
	"alias_gateway/internal/utils"
)

// Sink receives telemetry events from the gateway. Implementations must
// never block the caller and must never surface transport failures back to
// request handling.
type Sink interface {
	// Emit records a structured usage or error event
	Emit(event models.TelemetryEvent)

	// EmitRaw records an arbitrary JSON object, as ingested from clients
	EmitRaw(payload map[string]interface{})
}

// QueueSink redacts events, stamps them and hands them to the queue without
// blocking. When the queue buffer is full the event is dropped and counted;
// a stalled worker degrades observability, never request handling.
type QueueSink struct {
	queue  queue.Queue
	logger *utils.Logger
}

// NewQueueSink creates a sink backed by the given queue
func NewQueueSink(q queue.Queue) *QueueSink {
	return &QueueSink{
		queue:  q,
		logger: utils.NewLogger("telemetry-sink"),
	}
}

// Emit redacts the event, stamps the emission time and enqueues it.
func (s *QueueSink) Emit(event models.TelemetryEvent) {
	event.Alias = redaction.String(event.Alias)
	event.ErrorClass = redaction.String(event.ErrorClass)
	event.Timestamp = time.Now().UTC()

	// Events cross the queue as plain maps so both backends carry the
	// same shape.
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal telemetry event", "error", err)
		return
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.Error("Failed to convert telemetry event", "error", err)
		return
	}

	s.enqueue(payload)
}

// EmitRaw redacts an arbitrary JSON object and enqueues it. A timestamp is
// stamped at emission, overwriting any caller-supplied value.
func (s *QueueSink) EmitRaw(payload map[string]interface{}) {
	redacted, ok := redaction.Value(payload).(map[string]interface{})
	if !ok {
		redacted = map[string]interface{}{}
	}
	redacted["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)

	s.enqueue(redacted)
}

func (s *QueueSink) enqueue(payload map[string]interface{}) {
	if err := s.queue.TryEnqueue(payload); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			s.logger.Warn("Telemetry queue full, dropping event")
			return
		}
		s.logger.Error("Failed to enqueue telemetry event", "error", err)
	}
}

// NoopSink discards all events. Used when telemetry is disabled and in
// tests that do not care about emission.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (s *NoopSink) Emit(event models.TelemetryEvent) {}

func (s *NoopSink) EmitRaw(payload map[string]interface{}) {}
