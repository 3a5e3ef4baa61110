package telemetry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"alias_gateway/internal/models"
	"alias_gateway/internal/utils"
)

// HTTPReporter is the client-side counterpart of the sink: it posts events
// to a gateway's log ingestion endpoint from a single background goroutine.
// Reporting is strictly fire-and-forget; failed posts are logged and
// dropped, a full buffer drops the newest event.
type HTTPReporter struct {
	endpoint string
	client   *http.Client
	logger   *utils.Logger

	eventCh chan models.TelemetryEvent
	doneCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// NewHTTPReporter creates and starts a reporter posting to endpoint, which
// should be the full URL of the ingestion route.
func NewHTTPReporter(endpoint string, bufferSize int) *HTTPReporter {
	if bufferSize <= 0 {
		bufferSize = 100
	}

	r := &HTTPReporter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   utils.NewLogger("telemetry-reporter"),
		eventCh:  make(chan models.TelemetryEvent, bufferSize),
		doneCh:   make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Report queues an event for posting. Never blocks.
func (r *HTTPReporter) Report(event models.TelemetryEvent) {
	select {
	case r.eventCh <- event:
	default:
		// Buffer full; dropping event.
	}
}

func (r *HTTPReporter) run() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.eventCh:
			r.post(event)
		case <-r.doneCh:
			// Drain remaining events.
			for {
				select {
				case event := <-r.eventCh:
					r.post(event)
				default:
					return
				}
			}
		}
	}
}

func (r *HTTPReporter) post(event models.TelemetryEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	resp, err := r.client.Post(r.endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		r.logger.Debug("Failed to post telemetry event", "error", err)
		return
	}
	resp.Body.Close()
}

// Close drains the buffer and stops the worker. Safe to call twice.
func (r *HTTPReporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.doneCh)
	r.wg.Wait()
}
