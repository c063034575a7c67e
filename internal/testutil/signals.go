// Package testutil holds tolerances and deterministic loop-buffer signals
// shared by the DSP and looper tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// ClickTrack generates decaying clicks every period samples, a stand-in for
// a percussive loop.
func ClickTrack(period, length int, amplitude float64) []float32 {
	out := make([]float32, length)
	if period <= 0 {
		return out
	}
	for i := range out {
		n := i % period
		if n < 64 {
			sign := 1.0
			if n%2 == 1 {
				sign = -1
			}
			out[i] = float32(sign * amplitude * math.Exp(-float64(n)/16))
		}
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = value
	}
	return out
}
