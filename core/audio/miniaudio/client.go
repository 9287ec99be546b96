// Package miniaudio provides microphone capture and speaker playback
// through the miniaudio library (via malgo).
package miniaudio

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext

	capture  Source
	playback Sink
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.capture.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := client.playback.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return &client, nil
}

// Source returns the capture side of the client.
func (c *Client) Source() *Source {
	return &c.capture
}

// Sink returns the playback side of the client.
func (c *Client) Sink() *Sink {
	return &c.playback
}

func (c *Client) Close() error {
	_ = c.capture.Close()
	_ = c.playback.Close()

	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
	return nil
}
