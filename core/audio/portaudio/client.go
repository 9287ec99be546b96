// Package portaudio provides microphone capture and speaker playback
// through PortAudio. It is an alternative to the miniaudio backend for
// hosts where PortAudio is the better-supported route.
package portaudio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ekokodan/orbion-experience/core/audio"
	"github.com/gordonklaus/portaudio"
)

const playbackBufferSamples = 1024

type Client struct {
	capture  Source
	playback Sink
}

func NewClient() (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	client := Client{}

	if err := client.capture.init(); err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}

	if err := client.playback.init(); err != nil {
		_ = client.capture.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}

	return &client, nil
}

func (c *Client) Source() *Source {
	return &c.capture
}

func (c *Client) Sink() *Sink {
	return &c.playback
}

func (c *Client) Close() error {
	return errors.Join(
		c.capture.Close(),
		c.playback.Close(),
		portaudio.Terminate(),
	)
}

// Source reads fixed-size float32 frames from the default input device.
// Capture runs for as long as the Stream context lives.
type Source struct {
	stream *portaudio.Stream
	in     []float32

	mu     sync.Mutex
	closed bool
}

func (s *Source) init() error {
	s.in = make([]float32, audio.CaptureFrameSamples)
	stream, err := portaudio.OpenDefaultStream(
		1, 0, float64(audio.CaptureSampleRate), audio.CaptureFrameSamples, s.in,
	)
	if err != nil {
		return err
	}
	s.stream = stream
	return nil
}

func (s *Source) Stream(ctx context.Context, onFrame func(samples []float32)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("capture stream closed")
	}
	stream := s.stream
	s.mu.Unlock()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start capture stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return stream.Stop()
		default:
			if err := stream.Read(); err != nil {
				_ = stream.Stop()
				return fmt.Errorf("failed to read from capture stream: %w", err)
			}

			frame := make([]float32, len(s.in))
			copy(frame, s.in)
			onFrame(frame)
		}
	}
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}

func (s *Source) EncodingInfo() audio.EncodingInfo {
	return audio.GetCaptureEncodingInfo()
}

// Sink plays scheduled PCM16 buffers through the default output device.
// A writer goroutine drains the sample queue so SchedulePlayback never
// blocks on the device.
type Sink struct {
	stream   *portaudio.Stream
	out      []float32
	encoding audio.EncodingInfo

	mu     sync.Mutex
	queue  []float32
	marks  []completionMark
	closed bool

	wake chan struct{}
	done chan struct{}
}

type completionMark struct {
	position int
	callback func()
}

func (s *Sink) init() error {
	s.encoding = audio.GetPlaybackEncodingInfo()
	s.out = make([]float32, playbackBufferSamples)
	s.wake = make(chan struct{}, 1)
	s.done = make(chan struct{})

	stream, err := portaudio.OpenDefaultStream(
		0, 1, float64(s.encoding.SampleRate), playbackBufferSamples, s.out,
	)
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("failed to start playback stream: %w", err)
	}

	s.stream = stream
	go s.run()
	return nil
}

func (s *Sink) SchedulePlayback(pcm []byte, startAt time.Time, onComplete func()) error {
	samples := audio.DecodePCM16(pcm)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("playback stream closed")
	}

	// An empty queue with a future start time means the writer would reach
	// the buffer too early, so lead-in silence covers the gap. A non-empty
	// queue already ends exactly at startAt.
	if len(s.queue) == 0 {
		if lead := time.Until(startAt); lead > 0 {
			s.queue = append(s.queue, make([]float32, int(lead.Seconds()*float64(s.encoding.SampleRate)))...)
		}
	}

	s.queue = append(s.queue, samples...)
	if onComplete != nil {
		s.marks = append(s.marks, completionMark{
			position: len(s.queue),
			callback: onComplete,
		})
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

func (s *Sink) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			<-s.wake
			continue
		}

		n := copy(s.out, s.queue)
		for i := n; i < len(s.out); i++ {
			s.out[i] = 0
		}
		s.queue = s.queue[n:]
		completed := s.advanceMarks(n)
		s.mu.Unlock()

		for _, mark := range completed {
			mark.callback()
		}

		// Underflow reports are expected around queue boundaries.
		_ = s.stream.Write()
	}
}

// advanceMarks shifts mark positions by the consumed sample count and
// detaches the marks whose samples have now been written. Caller holds mu.
func (s *Sink) advanceMarks(consumed int) []completionMark {
	for i := range s.marks {
		s.marks[i].position -= consumed
	}

	passed := 0
	for passed < len(s.marks) && s.marks[passed].position <= 0 {
		passed++
	}
	if passed == 0 {
		return nil
	}

	completed := make([]completionMark, passed)
	copy(completed, s.marks[:passed])
	s.marks = s.marks[passed:]
	return completed
}

func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.marks = nil
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	<-s.done

	return s.stream.Close()
}

func (s *Sink) EncodingInfo() audio.EncodingInfo {
	return audio.GetPlaybackEncodingInfo()
}
