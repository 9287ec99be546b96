package session

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ekokodan/orbion-experience/core/events"
	"github.com/ekokodan/orbion-experience/core/protocol"
)

// dispatchLoop consumes inbound messages in arrival order until the
// transport closes. A remote error or an unexpected close is fatal; a close
// during a local disconnect is the normal exit.
func (c *Client) dispatchLoop(messages <-chan protocol.ServerMessage, done chan struct{}) {
	defer close(done)

	for msg := range messages {
		if msg.Error != nil {
			c.fail(msg.Error)
			return
		}
		c.dispatch(msg)
	}

	if !c.closingSelf.Load() {
		c.fail(fmt.Errorf("connection closed by remote endpoint"))
	}
}

func (c *Client) dispatch(msg protocol.ServerMessage) {
	switch {
	case msg.ServerContent != nil:
		c.dispatchServerContent(msg.ServerContent)
	case msg.ToolCall != nil:
		c.dispatchToolCall(msg.ToolCall)
	case msg.SetupComplete != nil:
		// The handshake acknowledgement is consumed during Open; a late
		// duplicate requires no action.
	}
}

func (c *Client) dispatchServerContent(content *protocol.ServerContent) {
	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part.InlineData == nil {
				continue
			}

			pcm, err := protocol.DecodeAudioPart(part.InlineData)
			if err != nil {
				// An isolated malformed chunk is dropped; playback continues
				// with subsequent chunks.
				logger.Warn("dropping malformed audio chunk", "error", err)
				continue
			}

			if err := c.playback.Enqueue(pcm); err != nil {
				logger.Warn("failed to schedule audio chunk", "error", err)
			}
		}
	}

	if transcription := content.InputTranscription; transcription != nil {
		c.transcript.Append(events.RoleUser, transcription.Text, transcription.Finished)
	}
	if transcription := content.OutputTranscription; transcription != nil {
		c.transcript.Append(events.RoleAssistant, transcription.Text, transcription.Finished)
	}

	if content.TurnComplete {
		c.emit(events.NewTurnCompleted())
	}
}

// dispatchToolCall answers every invocation exactly once, in receipt order.
// Unknown tool names and unparseable arguments are still acknowledged so the
// remote conversation can proceed.
func (c *Client) dispatchToolCall(toolCall *protocol.ToolCall) {
	for _, invocation := range toolCall.FunctionCalls {
		_, span := tracer.Start(context.Background(), "answer tool invocation")
		span.SetAttributes(attribute.String("tool.name", invocation.Name))

		c.emit(events.NewToolCallReceived(invocation.ID, invocation.Name, string(invocation.Args)))

		if invocation.Name == protocol.CheckpointToolName {
			var args protocol.CheckpointCompleteArgs
			if err := json.Unmarshal(invocation.Args, &args); err != nil {
				logger.Warn("ignoring malformed checkpoint arguments", "error", err)
			} else {
				c.checkpoints.Complete(args.CheckpointID)
			}
		}

		response := protocol.ClientMessage{
			ToolResponse: protocol.NewToolResponse(invocation.ID, invocation.Name, map[string]any{"result": "ok"}),
		}
		if err := c.transport.Send(response); err != nil {
			recordedErr := fmt.Errorf("failed to answer tool invocation: %w", err)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			span.End()

			c.fail(recordedErr)
			return
		}

		c.emit(events.NewToolCallAnswered(invocation.ID, invocation.Name, "ok"))
		span.End()
	}
}
