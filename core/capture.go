package session

import (
	"context"
	"fmt"
	"sync/atomic"
)

// capture normalizes audio source behavior behind one facade: it starts and
// stops the device stream and forwards every delivered frame to the
// session's encode-and-send path.
type capture struct {
	// base stores the configured source used for streaming frames.
	base AudioSource
	// fineControl is set when the source supports explicit capture controls.
	fineControl AudioSourceFine

	configured  atomic.Bool
	isCapturing atomic.Bool

	// onFrame receives every captured block while the stream runs.
	onFrame func(samples []float32)
	// onStreamError surfaces mid-stream device loss.
	onStreamError func(err error)
}

func newCapture(onFrame func(samples []float32), onStreamError func(err error)) *capture {
	if onFrame == nil {
		onFrame = func([]float32) {}
	}
	if onStreamError == nil {
		onStreamError = func(error) {}
	}

	return &capture{onFrame: onFrame, onStreamError: onStreamError}
}

func (c *capture) set(client AudioSource) {
	if c == nil {
		return
	}

	c.base = client
	c.fineControl = nil
	c.configured.Store(false)
	c.isCapturing.Store(false)

	if client == nil {
		return
	}

	c.configured.Store(true)
	if fine, ok := client.(AudioSourceFine); ok {
		c.fineControl = fine
	}
}

func (c *capture) isConfigured() bool { return c != nil && c.configured.Load() }

// start acquires the capture stream. Sources with fine controls report
// acquisition failures synchronously, before any frame is produced; plain
// streaming sources surface failures through onStreamError.
func (c *capture) start(ctx context.Context) error {
	if !c.isConfigured() {
		return fmt.Errorf("audio source not configured")
	}

	if !c.isCapturing.CompareAndSwap(false, true) {
		return nil
	}

	if c.fineControl != nil {
		if err := c.fineControl.StartCapture(ctx, c.onFrame); err != nil {
			c.isCapturing.Store(false)
			return fmt.Errorf("failed to start capture: %w", err)
		}
		return nil
	}

	go func() {
		if err := c.base.Stream(ctx, c.onFrame); err != nil {
			c.isCapturing.Store(false)
			c.onStreamError(fmt.Errorf("capture stream failed: %w", err))
		}
	}()

	return nil
}

func (c *capture) stop() error {
	if !c.isCapturing.CompareAndSwap(true, false) {
		return nil
	}

	if c.fineControl != nil {
		if err := c.fineControl.StopCapture(); err != nil {
			return fmt.Errorf("failed to stop capture: %w", err)
		}
	}

	return nil
}

// close stops the stream and releases the device.
func (c *capture) close() error {
	if !c.isConfigured() {
		return nil
	}

	err := c.stop()
	if closeErr := c.base.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
