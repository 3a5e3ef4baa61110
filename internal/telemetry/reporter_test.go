package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"alias_gateway/internal/models"
)

func TestHTTPReporter_PostsEvents(t *testing.T) {
	var mu sync.Mutex
	var received []models.TelemetryEvent

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event models.TelemetryEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("Failed to decode posted event: %v", err)
		}
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	reporter := NewHTTPReporter(server.URL+"/v1/log", 10)

	latency := int64(1530)
	reporter.Report(models.TelemetryEvent{
		Alias:     "echo",
		TaskType:  models.TaskAudio,
		LatencyMS: &latency,
	})
	reporter.Report(models.TelemetryEvent{
		Alias:      "echo",
		TaskType:   models.TaskAudio,
		ErrorClass: "service_unavailable",
	})

	// Close drains the buffer
	reporter.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("Expected 2 posted events, got %d", len(received))
	}
	if received[0].Alias != "echo" {
		t.Errorf("Expected alias echo, got %s", received[0].Alias)
	}
	if received[0].LatencyMS == nil || *received[0].LatencyMS != 1530 {
		t.Errorf("Expected latency 1530, got %v", received[0].LatencyMS)
	}
	if received[1].ErrorClass != "service_unavailable" {
		t.Errorf("Expected error class preserved, got %s", received[1].ErrorClass)
	}
}

func TestHTTPReporter_SwallowsFailures(t *testing.T) {
	// Point at a server that immediately refuses connections
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	reporter := NewHTTPReporter(endpoint, 5)

	// Reports against a dead endpoint must not block or panic
	for i := 0; i < 20; i++ {
		reporter.Report(models.TelemetryEvent{Alias: "orbit", TaskType: models.TaskChat})
	}

	done := make(chan struct{})
	go func() {
		reporter.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	// Close is idempotent
	reporter.Close()
}
