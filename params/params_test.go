package params

import (
	"math"
	"testing"
)

func TestMappingRoundTrip(t *testing.T) {
	const tol = 1e-4

	for i := 0; i <= 1000; i++ {
		v := float64(i) / 1000

		if got := NormalizeVolume(MapVolume(v)); math.Abs(got-v) > tol {
			t.Fatalf("NormalizeVolume(MapVolume(%v)) = %v", v, got)
		}

		if got := NormalizeSpeed(MapSpeed(v)); math.Abs(got-v) > tol {
			t.Fatalf("NormalizeSpeed(MapSpeed(%v)) = %v", v, got)
		}

		if got := NormalizePitch(MapPitch(v)); math.Abs(got-v) > tol {
			t.Fatalf("NormalizePitch(MapPitch(%v)) = %v", v, got)
		}
	}
}

func TestMapVolumeBreakpoints(t *testing.T) {
	tests := []struct {
		v    float64
		want float64
	}{
		{v: 0, want: 0},
		{v: 0.5, want: 1},
		{v: 0.75, want: 1.5},
		{v: 1, want: 5},
		{v: 2, want: 5},
		{v: -1, want: 0},
	}
	for _, tt := range tests {
		if got := MapVolume(tt.v); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("MapVolume(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestMapSpeedBreakpoints(t *testing.T) {
	tests := []struct {
		v    float64
		want float64
	}{
		{v: 0, want: 0.25},
		{v: 0.25, want: 0.625},
		{v: 0.5, want: 1},
		{v: 0.75, want: 1.5},
		{v: 1, want: 2},
	}
	for _, tt := range tests {
		if got := MapSpeed(tt.v); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("MapSpeed(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}

	if !IsNeutralSpeed(0.5) || IsNeutralSpeed(0.75) {
		t.Fatal("IsNeutralSpeed mismatch")
	}
}

func TestMapPitch(t *testing.T) {
	if got := MapPitch(0); got != -24 {
		t.Fatalf("MapPitch(0) = %v", got)
	}

	if got := MapPitch(1); got != 24 {
		t.Fatalf("MapPitch(1) = %v", got)
	}

	if got := PitchRatio(12); math.Abs(got-2) > 1e-12 {
		t.Fatalf("PitchRatio(12) = %v", got)
	}
}

func TestEngineRoundTrip(t *testing.T) {
	p := ParamSet{
		Volume: 0.8, Start: 0.1, End: 0.9, Repeats: 1.0 / 15 * 4,
		Lofi: 0.3, Filter: 0.6, Dropouts: 0.1, Jump: 0.2, Stutter: 0.4,
		Speed: 0.7, Pitch: 0.25,
	}

	got := FromEngine(ToEngine(p))
	for k := KnobVolume; k <= KnobPitch; k++ {
		if math.Abs(got.Get(k)-p.Get(k)) > 1e-9 {
			t.Errorf("%s: got %v, want %v", k, got.Get(k), p.Get(k))
		}
	}
}

func TestRepeatsSnapToWholeCounts(t *testing.T) {
	for _, v := range []float64{0, 0.03, 0.3, 0.5, 0.97, 1} {
		p := Defaults().With(KnobRepeats, v)

		if want := NormalizeRepeats(MapRepeats(v)); p.Repeats != want {
			t.Errorf("With(repeats, %v) = %v, want %v", v, p.Repeats, want)
		}

		if got := FromEngine(ToEngine(p)).Repeats; got != p.Repeats {
			t.Errorf("repeats %v came back as %v", p.Repeats, got)
		}
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	e := ToEngine(d)

	if e.Gain != 1 || e.Speed != 1 || e.Pitch != 0 || e.Repeats != 1 {
		t.Fatalf("unexpected engine defaults: %+v", e)
	}

	if d.End-d.Start < MinWindowGap {
		t.Fatalf("default window too narrow: %+v", d)
	}
}

func TestConstrainWindowKeepsGap(t *testing.T) {
	start, end := 0.0, 1.0
	edits := []struct {
		k Knob
		v float64
	}{
		{KnobStart, 0.5}, {KnobEnd, 0.2}, {KnobEnd, 0}, {KnobStart, 1},
		{KnobStart, 0.995}, {KnobEnd, 0.3}, {KnobStart, 0.7}, {KnobEnd, 0.705},
		{KnobStart, -3}, {KnobEnd, 7}, {KnobStart, math.NaN()},
	}

	for _, e := range edits {
		start, end = ConstrainWindow(start, end, e.k, e.v)
		if end-start < MinWindowGap-1e-9 {
			t.Fatalf("after %s=%v: start=%v end=%v", e.k, e.v, start, end)
		}

		if start < 0 || end > 1+1e-9 {
			t.Fatalf("after %s=%v: window out of range start=%v end=%v", e.k, e.v, start, end)
		}
	}
}

func TestConstrainWindowPushesOpposite(t *testing.T) {
	start, end := ConstrainWindow(0.2, 0.5, KnobStart, 0.6)
	if start != 0.6 || math.Abs(end-0.61) > 1e-12 {
		t.Fatalf("start push: got %v %v", start, end)
	}

	start, end = ConstrainWindow(0.4, 0.5, KnobEnd, 0.1)
	if math.Abs(start-0.09) > 1e-12 || end != 0.1 {
		t.Fatalf("end push: got %v %v", start, end)
	}
}

func TestParseKnob(t *testing.T) {
	for k := KnobVolume; k <= KnobPitch; k++ {
		got, ok := ParseKnob(k.String())
		if !ok || got != k {
			t.Fatalf("ParseKnob(%q) = %v, %v", k.String(), got, ok)
		}
	}

	if _, ok := ParseKnob("tempo"); ok {
		t.Fatal("expected unknown knob")
	}
}
