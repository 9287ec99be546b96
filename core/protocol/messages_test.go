package protocol

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestDecodeServerMessageRoutesAudioAndTranscription(t *testing.T) {
	payload := []byte(`{
		"serverContent": {
			"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "AAAA"}}]},
			"outputTranscription": {"text": "Bonjour", "finished": true}
		}
	}`)

	msg, err := DecodeServerMessage(payload)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if msg.ServerContent == nil {
		t.Fatalf("expected server content to be set")
	}
	if got := len(msg.ServerContent.ModelTurn.Parts); got != 1 {
		t.Fatalf("expected 1 part, got %d", got)
	}

	pcm, err := DecodeAudioPart(msg.ServerContent.ModelTurn.Parts[0].InlineData)
	if err != nil {
		t.Fatalf("expected audio part to decode, got %v", err)
	}
	if len(pcm) != 3 {
		t.Fatalf("expected 3 decoded bytes, got %d", len(pcm))
	}

	transcript := msg.ServerContent.OutputTranscription
	if transcript == nil || transcript.Text != "Bonjour" || !transcript.Finished {
		t.Fatalf("unexpected output transcription: %+v", transcript)
	}
}

func TestDecodeServerMessageToolCallKeepsRawArguments(t *testing.T) {
	payload := []byte(`{
		"toolCall": {"functionCalls": [
			{"id": "call-1", "name": "markCheckpointComplete", "args": {"checkpointId": "greetings"}}
		]}
	}`)

	msg, err := DecodeServerMessage(payload)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if msg.ToolCall == nil || len(msg.ToolCall.FunctionCalls) != 1 {
		t.Fatalf("expected one function call, got %+v", msg.ToolCall)
	}

	var args CheckpointCompleteArgs
	if err := json.Unmarshal(msg.ToolCall.FunctionCalls[0].Args, &args); err != nil {
		t.Fatalf("expected arguments to parse, got %v", err)
	}
	if args.CheckpointID != "greetings" {
		t.Fatalf("expected checkpoint id greetings, got %q", args.CheckpointID)
	}
}

func TestDecodeServerMessageRejectsMalformedFrame(t *testing.T) {
	if _, err := DecodeServerMessage([]byte(`{"toolCall": [`)); err == nil {
		t.Fatalf("expected malformed frame to fail decoding")
	}
}

func TestNewSetupDeclaresCheckpointTool(t *testing.T) {
	setup := NewSetup(SessionConfig{Model: "models/demo-live", SystemPrompt: "You are a tutor."})

	if got := setup.GenerationConfig.ResponseModalities; len(got) != 1 || got[0] != "AUDIO" {
		t.Fatalf("expected AUDIO response modality, got %v", got)
	}
	if setup.InputTranscript == nil || setup.OutputTranscript == nil {
		t.Fatalf("expected transcription enabled for both directions")
	}
	if setup.SystemInstruction == nil || setup.SystemInstruction.Parts[0].Text != "You are a tutor." {
		t.Fatalf("expected system instruction to carry the prompt")
	}

	if len(setup.Tools) != 1 || len(setup.Tools[0].FunctionDeclarations) != 1 {
		t.Fatalf("expected exactly one declared tool function")
	}
	decl := setup.Tools[0].FunctionDeclarations[0]
	if decl.Name != CheckpointToolName {
		t.Fatalf("expected tool name %q, got %q", CheckpointToolName, decl.Name)
	}
	if decl.Parameters == nil {
		t.Fatalf("expected tool parameters schema to be generated")
	}
	if _, ok := decl.Parameters.Properties.Get("checkpointId"); !ok {
		t.Fatalf("expected checkpointId in tool schema properties")
	}
}

func TestNewRealtimeInputEncodesCaptureBlock(t *testing.T) {
	input := NewRealtimeInput([]byte{1, 2, 3, 4})

	if len(input.MediaChunks) != 1 {
		t.Fatalf("expected one media chunk per block, got %d", len(input.MediaChunks))
	}
	chunk := input.MediaChunks[0]
	if chunk.MIMEType != CaptureMIMEType {
		t.Fatalf("expected mime type %q, got %q", CaptureMIMEType, chunk.MIMEType)
	}
	if chunk.Data != base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected chunk payload %q", chunk.Data)
	}
}
