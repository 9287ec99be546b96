package audio

import (
	"math"
	"testing"
)

func TestRMSLevelScalesRMSByGain(t *testing.T) {
	// A constant-amplitude block has RMS equal to the amplitude.
	samples := make([]float32, 4096)
	for i := range samples {
		samples[i] = 0.3
	}

	if got, want := RMSLevel(samples), 1.5; math.Abs(got-want) > 1e-3 {
		t.Fatalf("expected level %.3f for 0.3 RMS input, got %.3f", want, got)
	}
}

func TestRMSLevelIsNonNegative(t *testing.T) {
	samples := []float32{-1, -0.5, 0, 0.5, 1}
	if got := RMSLevel(samples); got < 0 {
		t.Fatalf("expected non-negative level, got %f", got)
	}
}

func TestRMSLevelEmptyBlockIsSilent(t *testing.T) {
	if got := RMSLevel(nil); got != 0 {
		t.Fatalf("expected zero level for empty block, got %f", got)
	}
}
