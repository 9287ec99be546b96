package audio

import (
	"testing"
	"time"
)

func TestEncodePCM16ClampsOutOfRangeSamples(t *testing.T) {
	pcm := EncodePCM16([]float32{2, -2})

	decoded := DecodePCM16(pcm)
	if decoded[0] < 0.99 {
		t.Fatalf("expected positive overdrive to clamp near 1, got %f", decoded[0])
	}
	if decoded[1] > -0.99 {
		t.Fatalf("expected negative overdrive to clamp near -1, got %f", decoded[1])
	}
}

func TestEncodePCM16RoundTripPreservesShape(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.5, -0.5}
	out := DecodePCM16(EncodePCM16(in))

	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if diff := out[i] - in[i]; diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("sample %d drifted: in=%f out=%f", i, in[i], out[i])
		}
	}
}

func TestEncodingInfoDuration(t *testing.T) {
	playback := GetPlaybackEncodingInfo()

	// 24 kHz mono PCM16 is 48000 bytes per second.
	if got, want := playback.Duration(48000), time.Second; got != want {
		t.Fatalf("expected %v for one second of playback audio, got %v", want, got)
	}
	if got, want := playback.Duration(24000), 500*time.Millisecond; got != want {
		t.Fatalf("expected %v for half a second of playback audio, got %v", want, got)
	}
	if got := playback.Duration(0); got != 0 {
		t.Fatalf("expected zero duration for empty payload, got %v", got)
	}
}

func TestEncodingInfoSilenceValue(t *testing.T) {
	cases := []struct {
		encoding EncodingInfo
		want     byte
	}{
		{EncodingInfo{SampleRate: 24000, Format: EncodingLinear16}, 0},
		{EncodingInfo{SampleRate: 8000, Format: EncodingALaw}, 0x55},
		{EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}, 0xFF},
	}

	for _, c := range cases {
		if got := c.encoding.SilenceValue(); got != c.want {
			t.Fatalf("expected silence value %#x for %s, got %#x", c.want, c.encoding.Format.Name(), got)
		}
	}
}
