package session

import (
	"context"
	"time"

	"github.com/ekokodan/orbion-experience/core/audio"
	"github.com/ekokodan/orbion-experience/core/events"
	"github.com/ekokodan/orbion-experience/core/protocol"
)

type ClientOption func(*Client)

// AudioSource produces ordered fixed-size blocks of mono float samples in
// [-1, 1] from an exclusively held capture device.
type AudioSource interface {
	Stream(ctx context.Context, onFrame func(samples []float32)) error
	Close() error
	EncodingInfo() audio.EncodingInfo
}

// AudioSourceFine is implemented by sources with explicit capture controls.
// StartCapture reports acquisition failures synchronously, before any frame
// is produced.
type AudioSourceFine interface {
	StartCapture(ctx context.Context, onFrame func(samples []float32)) error
	StopCapture() error
}

func WithAudioSource(client AudioSource) ClientOption {
	return func(c *Client) { c.capture.set(client) }
}

// AudioSink accepts decoded buffers with explicit start-time scheduling and
// reports per-buffer playback completion.
type AudioSink interface {
	SchedulePlayback(pcm []byte, startAt time.Time, onComplete func()) error
	Close() error
	EncodingInfo() audio.EncodingInfo
}

func WithAudioSink(client AudioSink) ClientOption {
	return func(c *Client) { c.playback.setSink(client) }
}

// Transport is a bidirectional message channel to the remote endpoint. Open
// returns only after the remote acknowledged the session; Messages closes
// when the connection ends for any reason.
type Transport interface {
	Open(ctx context.Context, cfg protocol.SessionConfig) error
	Send(msg protocol.ClientMessage) error
	Messages() <-chan protocol.ServerMessage
	Close() error
}

func WithTransport(client Transport) ClientOption {
	return func(c *Client) { c.transport = client }
}

// WithCheckpoints sets the ordered objective progression for the session.
func WithCheckpoints(definitions ...CheckpointDefinition) ClientOption {
	return func(c *Client) { c.checkpoints.setDefinitions(definitions) }
}

func WithModel(model string) ClientOption {
	return func(c *Client) { c.config.Model = model }
}

// WithSystemPrompt sets the scenario prompt declared to the remote model.
// Its content is opaque to the session core.
func WithSystemPrompt(prompt string) ClientOption {
	return func(c *Client) { c.config.SystemPrompt = prompt }
}

// WithEventHandler subscribes a handler to every session event. Handlers run
// on session goroutines and must not block.
func WithEventHandler(handler func(events.Event)) ClientOption {
	return func(c *Client) { c.eventHandler = handler }
}

func OnVolumeUpdate(callback func(level float64)) ClientOption {
	return func(c *Client) { c.callbacks.onVolumeUpdate = callback }
}

func OnPlaybackActiveChanged(callback func(active bool)) ClientOption {
	return func(c *Client) { c.callbacks.onPlaybackActiveChanged = callback }
}

func OnCheckpointCompleted(callback func(id string)) ClientOption {
	return func(c *Client) { c.callbacks.onCheckpointCompleted = callback }
}

func OnTranscriptTurnUpdated(callback func(turn TranscriptTurn)) ClientOption {
	return func(c *Client) { c.callbacks.onTranscriptTurnUpdated = callback }
}

func OnFatalError(callback func(err error)) ClientOption {
	return func(c *Client) { c.callbacks.onFatalError = callback }
}

type clientCallbacks struct {
	onVolumeUpdate          func(level float64)
	onPlaybackActiveChanged func(active bool)
	onCheckpointCompleted   func(id string)
	onTranscriptTurnUpdated func(turn TranscriptTurn)
	onFatalError            func(err error)
}
