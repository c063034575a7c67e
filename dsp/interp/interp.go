package interp

// Mode selects an interpolation kernel.
type Mode int

const (
	Linear Mode = iota
	Hermite
)

func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	default:
		return "unknown"
	}
}

// Linear2 interpolates between x0 and x1.
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// At returns samples evaluated at fractional index pos. Neighbours outside
// the buffer are clamped to the first or last sample.
func At(samples []float32, pos float64, mode Mode) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}

	if pos <= 0 {
		return float64(samples[0])
	}

	if pos >= float64(n-1) {
		return float64(samples[n-1])
	}

	i := int(pos)
	t := pos - float64(i)

	if mode == Linear {
		return Linear2(t, float64(samples[i]), float64(samples[i+1]))
	}

	return Hermite4(t,
		float64(samples[clampIndex(i-1, n)]),
		float64(samples[i]),
		float64(samples[i+1]),
		float64(samples[clampIndex(i+2, n)]),
	)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}

	if i >= n {
		return n - 1
	}

	return i
}
