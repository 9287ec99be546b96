package audio

import "math"

// volumeGain maps typical speech RMS into a roughly [0, 1] range. The
// result may still exceed 1; consumers clamp before using it as a UI signal.
const volumeGain = 5.0

// RMSLevel estimates instantaneous loudness of a block of samples as the
// root-mean-square scaled by a fixed gain. Samples are expected in [-1, 1].
func RMSLevel(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	sumSquares := 0.0
	for _, sample := range samples {
		sumSquares += float64(sample) * float64(sample)
	}

	return math.Sqrt(sumSquares/float64(len(samples))) * volumeGain
}
