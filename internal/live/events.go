package live

// Event is one variant of the session event stream. Consumers receive
// events from Client.Events and switch on the concrete type; every inbound
// message kind maps to exactly one variant, unrecognized messages are
// dropped before they reach the stream.
type Event interface {
	isEvent()
}

// OpenEvent signals the session channel is established.
type OpenEvent struct{}

// SetupCompleteEvent signals the server finished session setup.
type SetupCompleteEvent struct{}

// ToolCallEvent carries a server-initiated tool invocation.
type ToolCallEvent struct {
	ToolCall ToolCall
}

// ToolCallCancellationEvent revokes previously issued tool calls.
type ToolCallCancellationEvent struct {
	Cancellation ToolCallCancellation
}

// InterruptedEvent signals the server cut the current model turn short.
type InterruptedEvent struct{}

// InputTranscriptionEvent carries incremental transcription of user audio.
type InputTranscriptionEvent struct {
	Text  string
	Final bool
}

// OutputTranscriptionEvent carries incremental transcription of model audio.
type OutputTranscriptionEvent struct {
	Text  string
	Final bool
}

// AudioEvent carries one decoded binary audio frame. Each audio/pcm part of
// a model turn becomes its own AudioEvent.
type AudioEvent struct {
	Data []byte
}

// ContentEvent carries the non-audio parts of a model turn.
type ContentEvent struct {
	Content ServerContent
}

// TurnCompleteEvent signals the server finished a model turn.
type TurnCompleteEvent struct{}

// ErrorEvent carries a user-safe, classifier-templated error message. Raw
// transport or server error text never appears here.
type ErrorEvent struct {
	Message string
}

// CloseEvent signals the session channel is gone. It is the final event on
// the stream.
type CloseEvent struct{}

func (OpenEvent) isEvent()                 {}
func (SetupCompleteEvent) isEvent()        {}
func (ToolCallEvent) isEvent()             {}
func (ToolCallCancellationEvent) isEvent() {}
func (InterruptedEvent) isEvent()          {}
func (InputTranscriptionEvent) isEvent()   {}
func (OutputTranscriptionEvent) isEvent()  {}
func (AudioEvent) isEvent()                {}
func (ContentEvent) isEvent()              {}
func (TurnCompleteEvent) isEvent()         {}
func (ErrorEvent) isEvent()                {}
func (CloseEvent) isEvent()                {}
