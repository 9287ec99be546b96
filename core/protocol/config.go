package protocol

import (
	"encoding/base64"
	"fmt"

	"github.com/invopop/jsonschema"
)

const (
	// CheckpointToolName is the one declared tool function; the remote model
	// invokes it to advance the checkpoint progression.
	CheckpointToolName = "markCheckpointComplete"

	// MIME types for the fixed-rate PCM streams of each direction.
	CaptureMIMEType  = "audio/pcm;rate=16000"
	PlaybackMIMEType = "audio/pcm;rate=24000"
)

// CheckpointCompleteArgs is the argument object of CheckpointToolName.
type CheckpointCompleteArgs struct {
	CheckpointID string `json:"checkpointId" jsonschema:"description=Identifier of the checkpoint the learner just demonstrated"`
}

// SessionConfig declares the session to the remote endpoint: audio response
// modality, transcription for both directions, the checkpoint tool and the
// scenario system prompt (opaque to the core).
type SessionConfig struct {
	Model        string
	SystemPrompt string
}

// Setup is the first outbound message on every connection.
type Setup struct {
	Model             string               `json:"model"`
	GenerationConfig  GenerationConfig     `json:"generationConfig"`
	SystemInstruction *Content             `json:"systemInstruction,omitempty"`
	Tools             []Tool               `json:"tools,omitempty"`
	InputTranscript   *TranscriptionConfig `json:"inputAudioTranscription,omitempty"`
	OutputTranscript  *TranscriptionConfig `json:"outputAudioTranscription,omitempty"`
}

type GenerationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type TranscriptionConfig struct{}

type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

type FunctionDeclaration struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// NewSetup builds the Setup envelope for cfg.
func NewSetup(cfg SessionConfig) *Setup {
	setup := &Setup{
		Model:            cfg.Model,
		GenerationConfig: GenerationConfig{ResponseModalities: []string{"AUDIO"}},
		Tools:            []Tool{{FunctionDeclarations: []FunctionDeclaration{checkpointToolDeclaration()}}},
		InputTranscript:  &TranscriptionConfig{},
		OutputTranscript: &TranscriptionConfig{},
	}

	if cfg.SystemPrompt != "" {
		setup.SystemInstruction = &Content{Parts: []Part{{Text: cfg.SystemPrompt}}}
	}

	return setup
}

func checkpointToolDeclaration() FunctionDeclaration {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(CheckpointCompleteArgs{})
	schema.Version = ""

	return FunctionDeclaration{
		Name:        CheckpointToolName,
		Description: "Mark a learning checkpoint as completed once the learner has demonstrated it.",
		Parameters:  schema,
	}
}

// NewRealtimeInput wraps one encoded capture block.
func NewRealtimeInput(pcm []byte) *RealtimeInput {
	return &RealtimeInput{MediaChunks: []MediaChunk{{
		MIMEType: CaptureMIMEType,
		Data:     base64.StdEncoding.EncodeToString(pcm),
	}}}
}

// NewToolResponse acknowledges a single invocation.
func NewToolResponse(id, name string, result map[string]any) *ToolResponse {
	return &ToolResponse{FunctionResponses: []FunctionResponse{{
		ID:       id,
		Name:     name,
		Response: result,
	}}}
}

// DecodeAudioPart extracts the PCM bytes of an inline audio part.
func DecodeAudioPart(chunk *MediaChunk) ([]byte, error) {
	if chunk == nil {
		return nil, fmt.Errorf("missing inline data")
	}

	pcm, err := base64.StdEncoding.DecodeString(chunk.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio payload: %w", err)
	}
	return pcm, nil
}
