// Package session implements the realtime tutoring session core: it streams
// microphone audio to a remote conversational model, schedules gapless
// playback of synthesized speech, aggregates streaming transcription into
// turns and advances the checkpoint progression on remote tool invocations.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"

	"github.com/ekokodan/orbion-experience/core/audio"
	"github.com/ekokodan/orbion-experience/core/events"
	"github.com/ekokodan/orbion-experience/core/protocol"
)

// State is the connection lifecycle state of the session.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateClosing      State = "closing"
)

var (
	// ErrCaptureUnavailable reports that the capture device could not be
	// acquired. Fatal at connect time, never retried.
	ErrCaptureUnavailable = errors.New("capture device unavailable")
	// ErrConnectionFailed reports a failed remote handshake.
	ErrConnectionFailed = errors.New("failed to connect to remote endpoint")
	// ErrSessionActive reports a connect attempt on a live session.
	ErrSessionActive = errors.New("session already in progress")
	// ErrNotConfigured reports a connect attempt without the required
	// capability clients.
	ErrNotConfigured = errors.New("session missing audio source, audio sink or transport")
)

// Client owns one session at a time: the capture stream, the output
// timeline cursor and the connection lifecycle. A fresh session can be
// connected again after a disconnect or fatal error.
type Client struct {
	stateMu sync.Mutex
	state   State
	// dispatchDone closes when the dispatch loop of the current session
	// exits; guarded by stateMu.
	dispatchDone chan struct{}

	transport   Transport
	capture     *capture
	playback    *playbackScheduler
	transcript  *transcriptAggregator
	checkpoints *checkpointTracker

	config protocol.SessionConfig

	callbacks       clientCallbacks
	callbackEmitter eventEmitter
	eventHandler    func(events.Event)

	captureCancel context.CancelFunc
	// closingSelf distinguishes a locally initiated teardown from a remote
	// connection loss when the inbound channel closes.
	closingSelf atomic.Bool
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{state: StateDisconnected}

	c.checkpoints = newCheckpointTracker()
	c.transcript = newTranscriptAggregator()
	c.playback = newPlaybackScheduler()
	c.capture = newCapture(c.handleCaptureFrame, c.handleCaptureStreamError)

	for _, opt := range opts {
		opt(c)
	}

	c.callbackEmitter = newCallbackEventEmitter(c.callbacks)
	c.checkpoints.emitEvent = c.emit
	c.transcript.emitEvent = c.emit
	c.playback.emitEvent = c.emit

	return c
}

// Connect acquires the capture and output resources, declares the session
// to the remote endpoint and waits for its acknowledgement. It returns only
// once the session is usable or has failed; a failed connect leaves the
// client disconnected and retryable.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "connect session")
	defer span.End()

	if c.transport == nil || !c.capture.isConfigured() || !c.playback.isConfigured() {
		return ErrNotConfigured
	}

	c.stateMu.Lock()
	if c.state != StateDisconnected {
		c.stateMu.Unlock()
		return ErrSessionActive
	}
	c.state = StateConnecting
	c.stateMu.Unlock()
	c.emit(events.NewSessionStateChanged(string(StateConnecting)))

	// Capture outlives the connect call, it is cancelled on teardown.
	captureCtx, cancelCapture := context.WithCancel(context.Background())
	c.stateMu.Lock()
	c.captureCancel = cancelCapture
	c.stateMu.Unlock()

	if err := c.capture.start(captureCtx); err != nil {
		recordedErr := fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())

		cancelCapture()
		c.stateMu.Lock()
		c.captureCancel = nil
		c.state = StateDisconnected
		c.stateMu.Unlock()
		return recordedErr
	}

	if err := c.transport.Open(ctx, c.config); err != nil {
		recordedErr := fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())

		if releaseErr := c.releaseResources(); releaseErr != nil {
			logger.Warn("failed to release resources after connect failure", "error", releaseErr)
		}
		c.setState(StateDisconnected)
		return recordedErr
	}

	done := make(chan struct{})

	// A capture stream error can tear the session down while the handshake
	// is still in flight; committing Connected afterwards would revive a
	// released session.
	c.stateMu.Lock()
	if c.state != StateConnecting {
		c.stateMu.Unlock()

		recordedErr := fmt.Errorf("%w: session torn down during connect", ErrConnectionFailed)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())

		if releaseErr := c.releaseResources(); releaseErr != nil {
			logger.Warn("failed to release resources after aborted connect", "error", releaseErr)
		}
		return recordedErr
	}
	c.closingSelf.Store(false)
	c.state = StateConnected
	c.dispatchDone = done
	c.stateMu.Unlock()
	c.emit(events.NewSessionStateChanged(string(StateConnected)))

	go c.dispatchLoop(c.transport.Messages(), done)
	return nil
}

// Disconnect releases the capture stream, the output sink and the
// connection, then moves the session to Disconnected. It returns once all
// releases finish, never waits for the remote endpoint and is a no-op on a
// session that is already down.
func (c *Client) Disconnect() error {
	c.stateMu.Lock()
	if c.state == StateDisconnected || c.state == StateClosing {
		c.stateMu.Unlock()
		return nil
	}
	c.state = StateClosing
	done := c.dispatchDone
	c.stateMu.Unlock()
	c.emit(events.NewSessionStateChanged(string(StateClosing)))

	c.closingSelf.Store(true)
	err := c.releaseResources()
	if done != nil {
		<-done
	}

	c.setState(StateDisconnected)
	c.emit(events.NewSessionStateChanged(string(StateDisconnected)))
	return err
}

// State returns the current connection lifecycle state.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// Transcript returns a point-in-time copy of the conversation turns.
func (c *Client) Transcript() []TranscriptTurn {
	return c.transcript.Turns()
}

// Checkpoints returns a point-in-time view of the objective progression.
func (c *Client) Checkpoints() []Checkpoint {
	return c.checkpoints.Snapshot()
}

// AllCheckpointsCompleted reports the terminal all-complete condition.
func (c *Client) AllCheckpointsCompleted() bool {
	return c.checkpoints.AllCompleted()
}

// fail tears the session down after an unrecoverable error and reports it.
// A session already closing keeps its original outcome.
func (c *Client) fail(err error) {
	c.stateMu.Lock()
	if c.state == StateDisconnected || c.state == StateClosing {
		c.stateMu.Unlock()
		return
	}
	c.state = StateClosing
	c.stateMu.Unlock()

	c.closingSelf.Store(true)
	if releaseErr := c.releaseResources(); releaseErr != nil {
		logger.Warn("failed to release resources after fatal error", "error", releaseErr)
	}

	c.setState(StateDisconnected)
	c.emit(events.NewSessionStateChanged(string(StateDisconnected)))
	c.emit(events.NewFatalError(err))
}

// releaseResources is unconditional: one failing release never prevents the
// others, and repeated calls are safe.
func (c *Client) releaseResources() error {
	var errs error

	c.stateMu.Lock()
	cancelCapture := c.captureCancel
	c.captureCancel = nil
	c.stateMu.Unlock()
	if cancelCapture != nil {
		cancelCapture()
	}
	if err := c.capture.close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to release capture: %w", err))
	}

	c.playback.Reset()
	if err := c.playback.closeSink(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to release audio sink: %w", err))
	}

	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to close transport: %w", err))
		}
	}

	return errs
}

func (c *Client) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}

func (c *Client) emit(event events.Event) {
	if c.callbackEmitter != nil {
		c.callbackEmitter(event)
	}
	if c.eventHandler != nil {
		c.eventHandler(event)
	}
}

// handleCaptureFrame runs once per captured block: it emits the loudness
// estimate, reformats the block to wire PCM and sends it immediately.
// Frames delivered outside the Connected state are dropped.
func (c *Client) handleCaptureFrame(samples []float32) {
	if c.State() != StateConnected {
		return
	}

	c.emit(events.NewVolumeChanged(audio.RMSLevel(samples)))

	pcm := audio.EncodePCM16(samples)
	input := protocol.ClientMessage{RealtimeInput: protocol.NewRealtimeInput(pcm)}
	if err := c.transport.Send(input); err != nil {
		c.fail(fmt.Errorf("failed to send audio frame: %w", err))
	}
}

func (c *Client) handleCaptureStreamError(err error) {
	c.fail(err)
}
