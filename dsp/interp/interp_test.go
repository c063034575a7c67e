package interp

import "testing"

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0
	for _, tc := range []struct {
		t float64
		w float64
	}{
		{t: 0.0, w: 0.0},
		{t: 0.25, w: 0.25},
		{t: 0.5, w: 0.5},
		{t: 1.0, w: 1.0},
	} {
		got := Hermite4(tc.t, xm1, x0, x1, x2)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", tc.t, got, tc.w)
		}
	}
}

func TestLinear2(t *testing.T) {
	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("got %v want 2.5", got)
	}
}

func TestAt(t *testing.T) {
	ramp := []float32{0, 1, 2, 3, 4}

	tests := []struct {
		name string
		pos  float64
		mode Mode
		want float64
	}{
		{"linear mid", 1.5, Linear, 1.5},
		{"hermite mid", 2.5, Hermite, 2.5},
		{"hermite near start", 0.5, Hermite, 0.4375},
		{"integer index", 3, Hermite, 3},
		{"before start", -2, Linear, 0},
		{"past end", 10, Hermite, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := At(ramp, tt.pos, tt.mode)
			if diff := got - tt.want; diff < -1e-12 || diff > 1e-12 {
				t.Fatalf("At(%v)=%v want %v", tt.pos, got, tt.want)
			}
		})
	}

	if got := At(nil, 1, Linear); got != 0 {
		t.Fatalf("empty buffer got %v", got)
	}
}
