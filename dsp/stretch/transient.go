package stretch

import (
	"math"

	timestats "github.com/cwbudde/algo-looper/stats/time"
)

const (
	transientThreshold    = 0.12
	defaultTransientWidth = 256
)

// preserveTransients pulls out toward ref around every sample of ref whose
// first difference exceeds a fraction of ref's peak. The pull is blend at
// the transient and falls off linearly to zero over width samples. It
// returns the number of transient samples found.
func preserveTransients(out, ref []float32, width int, blend float64) int {
	n := min(len(out), len(ref))
	if n < 2 || width <= 0 || blend <= 0 {
		return 0
	}

	peak := timestats.Peak(ref[:n])
	if peak == 0 {
		return 0
	}

	thr := transientThreshold * peak
	hit := make([]bool, n)
	count := 0

	for i := 1; i < n; i++ {
		if math.Abs(float64(ref[i])-float64(ref[i-1])) > thr {
			hit[i] = true
			count++
		}
	}

	if count == 0 {
		return 0
	}

	// Distance to the nearest transient sample, capped at width.
	dist := make([]int, n)
	last := -width

	for i := range n {
		if hit[i] {
			last = i
		}

		dist[i] = min(i-last, width)
	}

	next := n + width

	for i := n - 1; i >= 0; i-- {
		if hit[i] {
			next = i
		}

		dist[i] = min(dist[i], next-i)
	}

	for i := range n {
		if dist[i] >= width {
			continue
		}

		w := blend * (1 - float64(dist[i])/float64(width))
		o := float64(out[i])
		out[i] = float32(o + w*(float64(ref[i])-o))
	}

	return count
}
