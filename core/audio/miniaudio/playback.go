package miniaudio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ekokodan/orbion-experience/core/audio"
	"github.com/gen2brain/malgo"
)

// Sink plays scheduled PCM16 buffers back-to-back and reports per-buffer
// completion once the device has consumed the buffer's last byte.
type Sink struct {
	device   *malgo.Device
	config   malgo.DeviceConfig
	encoding audio.EncodingInfo

	queue []byte
	marks []completionMark

	mu      sync.Mutex
	audioMu sync.Mutex
}

type completionMark struct {
	position int
	callback func()
}

func (s *Sink) init(audioContext *malgo.AllocatedContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.encoding = audio.GetPlaybackEncodingInfo()

	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	sampleRate := uint32(s.encoding.SampleRate)
	s.config = malgo.DefaultDeviceConfig(malgo.Playback)
	s.config.SampleRate = sampleRate
	s.config.Playback.Format = format
	s.config.Playback.Channels = uint32(channels)
	s.config.Alsa.NoMMap = 1
	s.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	s.config.Periods = 4

	var err error
	if s.device, err = malgo.InitDevice(
		audioContext.Context,
		s.config,
		malgo.DeviceCallbacks{Data: s.processAudio(bytesPerFrame)},
	); err != nil {
		return err
	}

	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (s *Sink) SchedulePlayback(pcm []byte, startAt time.Time, onComplete func()) error {
	s.mu.Lock()
	if s.device == nil {
		s.mu.Unlock()
		return fmt.Errorf("device not initialized")
	}
	s.mu.Unlock()

	s.audioMu.Lock()
	defer s.audioMu.Unlock()

	// An empty queue with a future start time means the device would reach
	// the buffer too early, so lead-in silence covers the gap. A non-empty
	// queue already ends exactly at startAt.
	if len(s.queue) == 0 {
		if lead := time.Until(startAt); lead > 0 {
			s.queue = append(s.queue, s.silence(s.leadBytes(lead))...)
		}
	}

	s.queue = append(s.queue, pcm...)
	if onComplete != nil {
		s.marks = append(s.marks, completionMark{
			position: len(s.queue),
			callback: onComplete,
		})
	}
	return nil
}

func (s *Sink) leadBytes(lead time.Duration) int {
	samples := int(lead.Seconds() * float64(s.encoding.SampleRate))
	return samples * s.encoding.Format.ByteSize()
}

func (s *Sink) silence(byteLen int) []byte {
	buf := make([]byte, byteLen)
	if value := s.encoding.SilenceValue(); value != 0 {
		for i := range buf {
			buf[i] = value
		}
	}
	return buf
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}

	s.audioMu.Lock()
	s.queue = nil
	s.marks = nil
	s.audioMu.Unlock()
	return nil
}

func (s *Sink) EncodingInfo() audio.EncodingInfo {
	return audio.GetPlaybackEncodingInfo()
}

func (s *Sink) processAudio(bytesPerFrame int) malgo.DataProc {
	silenceValue := s.encoding.SilenceValue()
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame
		if need > len(pOutput) {
			need = len(pOutput)
		}

		s.audioMu.Lock()
		n := copy(pOutput[:need], s.queue)
		s.queue = s.queue[n:]
		completed := s.advanceMarks(n)
		s.audioMu.Unlock()

		for i := n; i < need; i++ {
			pOutput[i] = silenceValue
		}

		if len(completed) > 0 {
			go func() {
				for _, mark := range completed {
					mark.callback()
				}
			}()
		}
	}
}

// advanceMarks shifts mark positions by the consumed byte count and
// detaches the marks whose bytes have now fully played. Caller holds
// audioMu.
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
