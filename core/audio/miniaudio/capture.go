package miniaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ekokodan/orbion-experience/core/audio"
	"github.com/gen2brain/malgo"
)

// Source captures mono microphone audio and delivers it as fixed-size
// float32 frames.
type Source struct {
	device *malgo.Device
	config malgo.DeviceConfig

	onFrame func(samples []float32)
	pending []float32

	mu      sync.Mutex
	frameMu sync.Mutex
}

func (s *Source) init(audioContext *malgo.AllocatedContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channels := 1
	format := malgo.FormatF32
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	s.config = malgo.DefaultDeviceConfig(malgo.Capture)
	s.config.SampleRate = uint32(audio.CaptureSampleRate)
	s.config.Capture.Format = format
	s.config.Capture.Channels = uint32(channels)
	s.config.Alsa.NoMMap = 1
	s.config.PerformanceProfile = malgo.LowLatency
	s.config.PeriodSizeInFrames = audio.CaptureFrameSamples
	s.config.Periods = 3

	var err error
	s.device, err = malgo.InitDevice(audioContext.Context, s.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			s.deliver(decodeF32(pInput[:n]))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return nil
}

// deliver rechunks whatever the device hands over into exact
// CaptureFrameSamples frames before invoking the listener.
func (s *Source) deliver(samples []float32) {
	s.frameMu.Lock()
	onFrame := s.onFrame
	if onFrame == nil {
		s.frameMu.Unlock()
		return
	}

	s.pending = append(s.pending, samples...)
	var frames [][]float32
	for len(s.pending) >= audio.CaptureFrameSamples {
		frame := make([]float32, audio.CaptureFrameSamples)
		copy(frame, s.pending[:audio.CaptureFrameSamples])
		s.pending = s.pending[audio.CaptureFrameSamples:]
		frames = append(frames, frame)
	}
	s.frameMu.Unlock()

	for _, frame := range frames {
		onFrame(frame)
	}
}

func (s *Source) Stream(ctx context.Context, onFrame func(samples []float32)) error {
	if err := s.StartCapture(ctx, onFrame); err != nil {
		return err
	}
	<-ctx.Done()
	return s.StopCapture()
}

func (s *Source) StartCapture(_ context.Context, onFrame func(samples []float32)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return fmt.Errorf("device not initialized")
	} else if s.device.IsStarted() {
		return nil
	}

	s.frameMu.Lock()
	s.onFrame = onFrame
	s.pending = nil
	s.frameMu.Unlock()

	if err := s.device.Start(); err != nil {
		s.frameMu.Lock()
		s.onFrame = nil
		s.frameMu.Unlock()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

func (s *Source) StopCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !s.device.IsStarted() {
		return nil
	}

	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	s.frameMu.Lock()
	s.onFrame = nil
	s.pending = nil
	s.frameMu.Unlock()
	return nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}

	s.frameMu.Lock()
	s.onFrame = nil
	s.pending = nil
	s.frameMu.Unlock()
	return nil
}

func (s *Source) EncodingInfo() audio.EncodingInfo {
	return audio.GetCaptureEncodingInfo()
}

func decodeF32(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
