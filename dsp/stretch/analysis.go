package stretch

import timestats "github.com/cwbudde/algo-looper/stats/time"

const (
	percussiveDensity = 0.12
	quietRMS          = 0.02
)

// Analysis describes the source material a profile is chosen for.
type Analysis struct {
	RMS  float64
	Peak float64
	// Density is the mean absolute first difference relative to the peak.
	// Impulsive or noisy material scores high, sustained tones score low.
	Density    float64
	Percussive bool
}

// Analyze measures the mono mix of left and right. right may be nil.
func Analyze(left, right []float32) Analysis {
	s := timestats.Calculate(monoMix(left, right))

	a := Analysis{RMS: s.RMS, Peak: s.Peak}
	if s.Peak > 0 {
		a.Density = s.MeanAbsDiff / s.Peak
	}

	a.Percussive = a.Density > percussiveDensity || a.RMS < quietRMS

	return a
}

func monoMix(left, right []float32) []float32 {
	if right == nil {
		return left
	}

	mix := make([]float32, len(left))
	for i := range mix {
		mix[i] = 0.5 * (left[i] + right[i])
	}

	return mix
}
