package live

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"alias_gateway/internal/errclass"
	"alias_gateway/internal/models"
	"alias_gateway/internal/utils"
)

// Status is the session connection state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// DefaultOpenTimeout bounds how long Connect waits for the channel to open.
const DefaultOpenTimeout = 12 * time.Second

// ErrNotDisconnected is returned by Connect when a session is already
// connecting or connected.
var ErrNotDisconnected = errors.New("session is not disconnected")

// ErrNotConnected is returned by send methods outside the connected state.
var ErrNotConnected = errors.New("session is not connected")

// Reporter delivers telemetry events off the session path. Implementations
// must never block; telemetry.HTTPReporter satisfies this.
type Reporter interface {
	Report(event models.TelemetryEvent)
}

// Client is a realtime session client for the gateway's live channel. One
// client runs at most one session at a time; events are delivered on the
// Events stream as typed variants.
//
// All state is guarded by one mutex. The read loop goroutine and caller
// methods are the only writers, and outbound frames go through the same
// mutex so the socket never sees concurrent writes.
type Client struct {
	baseURL     string
	origin      string
	openTimeout time.Duration
	reporter    Reporter
	logger      *utils.Logger

	mu            sync.Mutex
	status        Status
	conn          *websocket.Conn
	closing       bool
	activeAliasID string
	turnStartedAt time.Time

	events chan Event
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithReporter attaches a telemetry reporter. Without one, session
// telemetry is dropped.
func WithReporter(r Reporter) ClientOption {
	return func(c *Client) { c.reporter = r }
}

// WithOpenTimeout overrides the connect open timeout.
func WithOpenTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.openTimeout = d }
}

// WithOrigin sets the base origin (e.g. "https://gateway.example.com") used
// to resolve a path-only live URL.
func WithOrigin(origin string) ClientOption {
	return func(c *Client) { c.origin = origin }
}

// NewClient creates a session client for the given live URL. The URL may be
// http(s), ws(s), or a path; path-only URLs require WithOrigin.
func NewClient(liveBaseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       liveBaseURL,
		openTimeout:   DefaultOpenTimeout,
		logger:        utils.NewLogger("live-client"),
		status:        StatusDisconnected,
		activeAliasID: "echo-v1.0",
		events:        make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Events is the typed session event stream. The channel is never closed; a
// CloseEvent marks the end of each session. Slow consumers lose events
// rather than stalling the session.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) emit(event Event) {
	select {
	case c.events <- event:
	default:
		c.logger.Warn("Event stream full, dropping event")
	}
}

// Connect opens the session channel and sends session.start. It fails when
// the channel does not open within the open timeout; the timeout and a
// late dial success race, and whichever settles first wins — a dial that
// completes after the timeout is closed and discarded without events.
func (c *Client) Connect(ctx context.Context, config ConnectConfig) error {
	c.mu.Lock()
	if c.status != StatusDisconnected {
		c.mu.Unlock()
		return ErrNotDisconnected
	}
	if config.AliasID != "" {
		c.activeAliasID = config.AliasID
	}
	c.status = StatusConnecting
	c.mu.Unlock()

	wsURL, err := c.buildSocketURL(config)
	if err != nil {
		c.setDisconnected()
		c.reportError("connect_failed")
		return err
	}

	type dialResult struct {
		conn *websocket.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		resultCh <- dialResult{conn: conn, err: err}
	}()

	timer := time.NewTimer(c.openTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err != nil {
			c.setDisconnected()
			c.reportError("transport_error")
			return fmt.Errorf("failed to open live channel: %w", res.err)
		}

		c.mu.Lock()
		c.conn = res.conn
		c.status = StatusConnected
		c.closing = false
		c.turnStartedAt = time.Time{}
		c.mu.Unlock()

		c.emit(OpenEvent{})
		c.writeWire(clientEnvelope{
			Type:    typeSessionStart,
			Payload: map[string]interface{}{"config": config},
		})

		go c.readLoop(res.conn)
		return nil

	case <-timer.C:
		c.setDisconnected()
		// Discard the dial outcome; a late success must not re-settle.
		go func() {
			if res := <-resultCh; res.err == nil {
				res.conn.Close()
			}
		}()
		c.reportError("timeout")
		return errors.New("timed out waiting for live channel to open")

	case <-ctx.Done():
		c.setDisconnected()
		go func() {
			if res := <-resultCh; res.err == nil {
				res.conn.Close()
			}
		}()
		return ctx.Err()
	}
}

// Disconnect sends a best-effort session.stop and closes the channel. Safe
// to call from any state, any number of times.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.status = StatusDisconnected
		c.mu.Unlock()
		return
	}
	c.closing = true
	c.conn = nil
	c.status = StatusDisconnected
	conn.WriteJSON(clientEnvelope{Type: typeSessionStop})
	c.mu.Unlock()

	conn.Close()
}

// Send sends turn content. turnComplete marks the end of the client turn.
func (c *Client) Send(parts []Part, turnComplete bool) error {
	if !c.connectedForSend() {
		return ErrNotConnected
	}

	c.markTurnStart()
	return c.writeWire(clientEnvelope{
		Type: typeSessionClientContent,
		Payload: map[string]interface{}{
			"turns":        parts,
			"turnComplete": turnComplete,
		},
	})
}

// SendRealtimeInput streams media frames into the session. The frame batch
// is classified for telemetry: vision when any chunk carries an image mime
// type, audio otherwise.
func (c *Client) SendRealtimeInput(chunks []RealtimeChunk) error {
	if !c.connectedForSend() {
		return ErrNotConnected
	}

	c.markTurnStart()
	err := c.writeWire(clientEnvelope{
		Type:    typeSessionRealtimeInput,
		Payload: map[string]interface{}{"chunks": chunks},
	})
	if err != nil {
		return err
	}

	taskType := models.TaskAudio
	for _, chunk := range chunks {
		if strings.Contains(chunk.MIMEType, "image") {
			taskType = models.TaskVision
			break
		}
	}
	c.report(models.TelemetryEvent{
		Alias:    c.aliasID(),
		TaskType: taskType,
	})
	return nil
}

// SendToolResponse answers a server tool call.
func (c *Client) SendToolResponse(response ToolResponse) error {
	if !c.connectedForSend() {
		return ErrNotConnected
	}

	return c.writeWire(clientEnvelope{
		Type: typeSessionToolResponse,
		Payload: map[string]interface{}{
			"functionResponses": response.FunctionResponses,
		},
	})
}

// connectedForSend checks the connected state, surfacing the failure as a
// templated error event the way the session does for transport failures.
func (c *Client) connectedForSend() bool {
	c.mu.Lock()
	ok := c.status == StatusConnected && c.conn != nil
	c.mu.Unlock()

	if !ok {
		c.reportError("not_connected")
	}
	return ok
}

func (c *Client) writeWire(envelope clientEnvelope) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.mu.Lock()
	err := conn.WriteJSON(envelope)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write session frame: %w", err)
	}
	return nil
}

// readLoop is the only reader of the socket; it runs until the channel
// drops and emits CloseEvent last.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			deliberate := c.closing
			c.closing = false
			if c.conn == conn {
				c.conn = nil
			}
			c.status = StatusDisconnected
			c.mu.Unlock()

			if !deliberate {
				c.reportError("transport_error")
			}
			c.emit(CloseEvent{})
			return
		}

		msg := normalizeWireMessage(data)
		if msg == nil {
			// Unrecognized frame, dropped
			continue
		}
		if msg.isError {
			c.reportError(msg.errMessage)
			continue
		}
		c.handleServerMessage(msg)
	}
}

func (c *Client) handleServerMessage(msg *normalized) {
	if msg.setupComplete {
		c.emit(SetupCompleteEvent{})
		return
	}
	if msg.toolCall != nil {
		c.emit(ToolCallEvent{ToolCall: *msg.toolCall})
		return
	}
	if msg.toolCallCancellation != nil {
		c.emit(ToolCallCancellationEvent{Cancellation: *msg.toolCallCancellation})
		return
	}
	if msg.serverContent == nil {
		return
	}

	content := msg.serverContent
	if content.Interrupted {
		c.emit(InterruptedEvent{})
		return
	}

	if content.InputTranscription != nil {
		c.emit(InputTranscriptionEvent{
			Text:  content.InputTranscription.Text,
			Final: content.InputTranscription.IsFinal,
		})
	}
	if content.OutputTranscription != nil {
		c.emit(OutputTranscriptionEvent{
			Text:  content.OutputTranscription.Text,
			Final: content.OutputTranscription.IsFinal,
		})
	}

	if content.ModelTurn != nil {
		var otherParts []Part
		for _, part := range content.ModelTurn.Parts {
			if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "audio/pcm") {
				decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					continue
				}
				c.emit(AudioEvent{Data: decoded})
				continue
			}
			otherParts = append(otherParts, part)
		}
		if len(otherParts) > 0 {
			c.emit(ContentEvent{Content: ServerContent{
				ModelTurn: &ModelTurn{Parts: otherParts},
			}})
		}
	}

	if content.TurnComplete {
		c.emit(TurnCompleteEvent{})

		event := models.TelemetryEvent{
			Alias:    c.aliasID(),
			TaskType: models.TaskAudio,
		}
		c.mu.Lock()
		if !c.turnStartedAt.IsZero() {
			latency := time.Since(c.turnStartedAt).Milliseconds()
			event.LatencyMS = &latency
		}
		c.turnStartedAt = time.Time{}
		c.mu.Unlock()

		c.report(event)
	}
}

func (c *Client) setDisconnected() {
	c.mu.Lock()
	c.status = StatusDisconnected
	c.mu.Unlock()
}

// markTurnStart records the first outbound message of a turn; turn-complete
// latency is measured from it.
func (c *Client) markTurnStart() {
	c.mu.Lock()
	if c.turnStartedAt.IsZero() {
		c.turnStartedAt = time.Now()
	}
	c.mu.Unlock()
}

func (c *Client) aliasID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeAliasID
}

// aliasName derives the public tier name from the active alias id.
func (c *Client) aliasName() string {
	id := c.aliasID()
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}
	if id != "" {
		return id
	}
	return "orbit"
}

// reportError classifies a raw failure reason, emits the telemetry event
// and surfaces a templated error on the stream. The raw reason goes no
// further than the classifier.
func (c *Client) reportError(reason string) {
	kind := errclass.Classify(reason)
	c.report(models.TelemetryEvent{
		Alias:      c.aliasID(),
		TaskType:   models.TaskAudio,
		ErrorClass: string(kind),
	})
	c.emit(ErrorEvent{Message: errclass.UserMessage(c.aliasName(), kind)})
}

func (c *Client) report(event models.TelemetryEvent) {
	if c.reporter == nil {
		return
	}
	c.reporter.Report(event)
}

// buildSocketURL maps the configured live URL onto a ws(s) URL and appends
// the alias selection as query parameters.
func (c *Client) buildSocketURL(config ConnectConfig) (string, error) {
	base := strings.TrimSpace(c.baseURL)
	if base == "" {
		base = "/v1/live"
	}
	base = strings.TrimSuffix(base, "/")
	if !strings.HasSuffix(base, "/live") {
		base += "/live"
	}

	var resolved string
	switch {
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
		resolved = base
	case strings.HasPrefix(base, "http://"):
		resolved = "ws://" + strings.TrimPrefix(base, "http://")
	case strings.HasPrefix(base, "https://"):
		resolved = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "/"):
		if c.origin == "" {
			return "", fmt.Errorf("live URL %q is a path and no origin is configured", base)
		}
		origin := strings.TrimSuffix(c.origin, "/")
		switch {
		case strings.HasPrefix(origin, "https://"):
			resolved = "wss://" + strings.TrimPrefix(origin, "https://") + base
		case strings.HasPrefix(origin, "http://"):
			resolved = "ws://" + strings.TrimPrefix(origin, "http://") + base
		default:
			resolved = "ws://" + origin + base
		}
	default:
		return "", fmt.Errorf("unsupported live URL %q", base)
	}

	u, err := url.Parse(resolved)
	if err != nil {
		return "", fmt.Errorf("invalid live URL: %w", err)
	}

	q := u.Query()
	if config.AliasID != "" {
		q.Set("alias_id", config.AliasID)
	}
	if config.AliasName != "" {
		q.Set("alias_name", config.AliasName)
	}
	if config.AliasVersion != "" {
		q.Set("alias_version", config.AliasVersion)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
