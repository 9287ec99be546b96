package audio

import "time"

const (
	// CaptureSampleRate is the microphone capture rate expected by the
	// remote endpoint.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the rate of synthesized speech received from
	// the remote endpoint.
	PlaybackSampleRate = 24000

	// CaptureFrameSamples is the fixed capture block size. At 16 kHz this
	// is one frame roughly every 256 ms.
	CaptureFrameSamples = 4096
)

func GetCaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, Format: EncodingLinear16}
}

func GetPlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Format: EncodingLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// Duration converts a byte count of encoded mono audio into wall time.
func (e EncodingInfo) Duration(byteLen int) time.Duration {
	if e.IsZero() || byteLen <= 0 {
		return 0
	}

	return time.Duration(float64(byteLen) / float64(e.SampleRate) / float64(e.Format.ByteSize()) * float64(time.Second))
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
