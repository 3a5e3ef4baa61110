package live

import "encoding/json"

// ConnectConfig selects the alias a session runs against. It is sent to the
// server in the session.start envelope and appended to the socket URL as
// query parameters.
type ConnectConfig struct {
	AliasID      string `json:"alias_id,omitempty"`
	AliasName    string `json:"alias_name,omitempty"`
	AliasVersion string `json:"alias_version,omitempty"`
}

// Part is one piece of turn content: text or inline binary data.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is base64-encoded inline data with its mime type.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// RealtimeChunk is one media frame of realtime input.
type RealtimeChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Transcription is an incremental transcription fragment.
type Transcription struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// ModelTurn is the content of one model response turn.
type ModelTurn struct {
	Parts []Part `json:"parts"`
}

// ServerContent is the content portion of an inbound server message.
type ServerContent struct {
	ModelTurn           *ModelTurn     `json:"modelTurn,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
}

// FunctionCall is a single server-requested tool invocation.
type FunctionCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// ToolCall groups the function calls of one tool turn.
type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls"`
}

// ToolCallCancellation revokes tool calls by id.
type ToolCallCancellation struct {
	IDs []string `json:"ids"`
}

// FunctionResponse answers one function call.
type FunctionResponse struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response,omitempty"`
}

// ToolResponse groups function responses for one tool turn.
type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

// clientEnvelope is the outbound wire frame. Every client-originated
// message is a typed envelope.
type clientEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Outbound envelope types.
const (
	typeSessionStart         = "session.start"
	typeSessionStop          = "session.stop"
	typeSessionClientContent = "session.client_content"
	typeSessionRealtimeInput = "session.realtime_input"
	typeSessionToolResponse  = "session.tool_response"
)

// serverEnvelope is the inbound wire frame. Servers speak one of two
// shapes: structured fields at the top level, or a typed {type, payload}
// envelope. Both decode into this struct; normalize folds them together.
type serverEnvelope struct {
	// Structured shape
	SetupComplete        json.RawMessage       `json:"setupComplete,omitempty"`
	ToolCall             *ToolCall             `json:"toolCall,omitempty"`
	ToolCallCancellation *ToolCallCancellation `json:"toolCallCancellation,omitempty"`
	ServerContent        *ServerContent        `json:"serverContent,omitempty"`

	// Typed envelope shape
	Type    string          `json:"type,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// normalized is the internal tagged union an inbound frame reduces to.
// A nil result means the frame was unrecognized and is dropped.
type normalized struct {
	setupComplete        bool
	toolCall             *ToolCall
	toolCallCancellation *ToolCallCancellation
	serverContent        *ServerContent
	errMessage           string
	isError              bool
}

// normalizeWireMessage folds both server wire shapes into one tagged union.
func normalizeWireMessage(raw []byte) *normalized {
	var env serverEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}

	// Structured shape wins when any of its fields is present.
	if env.SetupComplete != nil {
		return &normalized{setupComplete: true}
	}
	if env.ToolCall != nil {
		return &normalized{toolCall: env.ToolCall}
	}
	if env.ToolCallCancellation != nil {
		return &normalized{toolCallCancellation: env.ToolCallCancellation}
	}
	if env.ServerContent != nil {
		return &normalized{serverContent: env.ServerContent}
	}

	payload := env.Payload
	if payload == nil {
		payload = env.Data
	}

	switch env.Type {
	case "session.error":
		message := env.Message
		var body struct {
			Message string `json:"message"`
		}
		if payload != nil && json.Unmarshal(payload, &body) == nil && body.Message != "" {
			message = body.Message
		}
		return &normalized{isError: true, errMessage: message}

	case "session.setup_complete":
		return &normalized{setupComplete: true}

	case "session.tool_call":
		var tc ToolCall
		if payload == nil || json.Unmarshal(payload, &tc) != nil {
			return nil
		}
		return &normalized{toolCall: &tc}

	case "session.tool_call_cancellation":
		var tcc ToolCallCancellation
		if payload == nil || json.Unmarshal(payload, &tcc) != nil {
			return nil
		}
		return &normalized{toolCallCancellation: &tcc}

	case "session.interrupted":
		return &normalized{serverContent: &ServerContent{Interrupted: true}}

	case "session.turn_complete":
		return &normalized{serverContent: &ServerContent{TurnComplete: true}}

	case "session.input_transcription":
		return &normalized{serverContent: &ServerContent{
			InputTranscription: decodeTranscription(payload),
		}}

	case "session.output_transcription":
		return &normalized{serverContent: &ServerContent{
			OutputTranscription: decodeTranscription(payload),
		}}

	case "session.audio":
		var body struct {
			Data   string `json:"data"`
			Base64 string `json:"base64"`
		}
		if payload != nil {
			json.Unmarshal(payload, &body)
		}
		data := body.Data
		if data == "" {
			data = body.Base64
		}
		return &normalized{serverContent: &ServerContent{
			ModelTurn: &ModelTurn{Parts: []Part{{
				InlineData: &Blob{MIMEType: "audio/pcm", Data: data},
			}}},
		}}

	case "session.content":
		var sc ServerContent
		if payload == nil || json.Unmarshal(payload, &sc) != nil {
			return nil
		}
		return &normalized{serverContent: &sc}
	}

	return nil
}

func decodeTranscription(payload json.RawMessage) *Transcription {
	t := &Transcription{}
	if payload != nil {
		json.Unmarshal(payload, t)
	}
	return t
}
