package time

import "math"

// Stats holds time-domain statistics of a loop buffer.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean
	RMS            float64
	RMS_dB         float64
	Peak           float64 // max |x|
	Peak_dB        float64
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64
	MeanAbsDiff    float64 // mean |x[n] - x[n-1]|
	ZeroCrossings  int
}

// ampTodB converts an amplitude value to decibels: 20 * log10(|value|).
// Returns -Inf for zero values.
func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

func emptyStats() Stats {
	return Stats{
		RMS_dB:         math.Inf(-1),
		Peak_dB:        math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}
}

// Calculate computes all statistics in a single pass.
func Calculate(signal []float32) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	var (
		sum           float64
		sumSq         float64
		peak          float64
		diffSum       float64
		zeroCrossings int
	)

	prev := float64(signal[0])

	for i, v := range signal {
		x := float64(v)
		sum += x
		sumSq += x * x

		if a := math.Abs(x); a > peak {
			peak = a
		}

		if i > 0 {
			diffSum += math.Abs(x - prev)

			if prev*x < 0 {
				zeroCrossings++
			}
		}

		prev = x
	}

	nf := float64(n)
	rms := math.Sqrt(sumSq / nf)

	var crest, crestdB float64
	if rms > 0 {
		crest = peak / rms
		crestdB = ampTodB(crest)
	}

	var mad float64
	if n > 1 {
		mad = diffSum / float64(n-1)
	}

	return Stats{
		Length:         n,
		DC:             sum / nf,
		RMS:            rms,
		RMS_dB:         ampTodB(rms),
		Peak:           peak,
		Peak_dB:        ampTodB(peak),
		CrestFactor:    crest,
		CrestFactor_dB: crestdB,
		MeanAbsDiff:    mad,
		ZeroCrossings:  zeroCrossings,
	}
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float32) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, v := range signal {
		x := float64(v)
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float32) float64 {
	var peak float64

	for _, v := range signal {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}

	return peak
}

// MeanAbsDiff returns the mean absolute first difference of the signal,
// a cheap measure of how much high-frequency or impulsive energy it holds.
func MeanAbsDiff(signal []float32) float64 {
	if len(signal) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(signal); i++ {
		sum += math.Abs(float64(signal[i]) - float64(signal[i-1]))
	}

	return sum / float64(len(signal)-1)
}

// ZeroCrossings returns the number of zero crossings in the signal.
// A crossing is counted when consecutive samples have opposite signs.
func ZeroCrossings(signal []float32) int {
	var count int

	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}

	return count
}
