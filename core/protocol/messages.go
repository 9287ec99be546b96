// Package protocol defines the wire messages exchanged with the remote
// conversational endpoint.
//
// The protocol is a single bidirectional stream of JSON envelopes. Each
// envelope sets exactly one of its pointer fields; everything else stays
// nil. Transports only move envelopes, routing is the session's job.
package protocol

import (
	"encoding/json"
	"fmt"
)

// ClientMessage is the outbound envelope.
type ClientMessage struct {
	Setup         *Setup         `json:"setup,omitempty"`
	RealtimeInput *RealtimeInput `json:"realtimeInput,omitempty"`
	ToolResponse  *ToolResponse  `json:"toolResponse,omitempty"`
}

// RealtimeInput streams one captured audio block to the endpoint.
type RealtimeInput struct {
	MediaChunks []MediaChunk `json:"mediaChunks"`
}

// MediaChunk is a base64 payload with its MIME type, e.g.
// "audio/pcm;rate=16000".
type MediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// ToolResponse answers exactly one received tool invocation.
type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

// FunctionResponse echoes the invocation id alongside the local result.
type FunctionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// ServerMessage is the inbound envelope.
type ServerMessage struct {
	SetupComplete *SetupComplete `json:"setupComplete,omitempty"`
	ServerContent *ServerContent `json:"serverContent,omitempty"`
	ToolCall      *ToolCall      `json:"toolCall,omitempty"`
	Error         *SessionError  `json:"error,omitempty"`
}

// SetupComplete acknowledges the session open. The connection is usable only
// after it arrives.
type SetupComplete struct{}

// ServerContent carries streamed model output: synthesized audio parts and
// transcription fragments for both directions.
type ServerContent struct {
	ModelTurn           *ModelTurn     `json:"modelTurn,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
}

// ModelTurn wraps the content parts of the model's in-progress turn.
type ModelTurn struct {
	Parts []Part `json:"parts"`
}

// Part is one content fragment; audio arrives as inline data.
type Part struct {
	InlineData *MediaChunk `json:"inlineData,omitempty"`
	Text       string      `json:"text,omitempty"`
}

// Transcription is a streamed text fragment. Finished marks the last
// fragment of the current utterance.
type Transcription struct {
	Text     string `json:"text"`
	Finished bool   `json:"finished,omitempty"`
}

// ToolCall requests execution of one or more local tool functions.
type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls"`
}

// FunctionCall is one requested invocation; Args holds the raw argument
// object so unknown tools can still be acknowledged.
type FunctionCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// SessionError is a fatal remote failure; the session does not survive it.
type SessionError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *SessionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != 0 {
		return fmt.Sprintf("session error %d: %s", e.Code, e.Message)
	}
	return "session error: " + e.Message
}

// DecodeServerMessage parses one inbound frame.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode server message: %w", err)
	}
	return &msg, nil
}
