package stretch

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-looper/dsp/interp"
	"github.com/cwbudde/algo-looper/internal/testutil"
	timestats "github.com/cwbudde/algo-looper/stats/time"
)

func TestProcessIdentityIsExactCopy(t *testing.T) {
	left := testutil.DeterministicNoise(1, 0.5, 5000)
	right := testutil.DeterministicSine(220, 44100, 0.4, 5000)

	res, err := Process(left, right, 44100, 1, 1)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, res.Left, left, 0)
	testutil.RequireSliceNearlyEqual(t, res.Right, right, 0)

	if res.Samples != len(left) {
		t.Fatalf("Samples = %d, want %d", res.Samples, len(left))
	}

	res.Left[0] = 42
	if left[0] == 42 {
		t.Fatal("result aliases the input buffer")
	}
}

func TestProcessEmptyInput(t *testing.T) {
	res, err := Process(nil, nil, 44100, 0.5, 2)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(res.Left) != 0 || res.Right != nil || res.Samples != 0 {
		t.Fatalf("unexpected result for empty input: %+v", res)
	}

	res, err = Process([]float32{}, []float32{}, 44100, 2, 1)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.Left == nil || res.Right == nil {
		t.Fatal("stereo empty input should yield empty, non-nil channels")
	}
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name  string
		left  []float32
		right []float32
		rate  float64
		want  error
	}{
		{"zero rate", []float32{0}, nil, 0, ErrInvalidSampleRate},
		{"NaN rate", []float32{0}, nil, math.NaN(), ErrInvalidSampleRate},
		{"inf rate", []float32{0}, nil, math.Inf(1), ErrInvalidSampleRate},
		{"channel mismatch", []float32{0, 1}, []float32{0}, 44100, ErrChannelMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(tt.left, tt.right, tt.rate, 1, 1)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProcessSpeedLength(t *testing.T) {
	in := testutil.DeterministicSine(300, 44100, 0.5, 1000)

	tests := []struct {
		speed float64
		want  int
	}{
		{0.75, 1334},
		{0.5, 2000},
		{2, 500},
		{1.5, 667},
		{10, 250},   // clamped to 4
		{0.1, 4000}, // clamped to 0.25
	}

	for _, tt := range tests {
		res, err := Process(in, nil, 44100, tt.speed, 1)
		if err != nil {
			t.Fatalf("speed %v: %v", tt.speed, err)
		}

		if res.Samples != tt.want || len(res.Left) != tt.want {
			t.Fatalf("speed %v: samples = %d, want %d", tt.speed, res.Samples, tt.want)
		}

		if res.Right != nil {
			t.Fatalf("speed %v: mono input produced a right channel", tt.speed)
		}

		testutil.RequireFinite(t, res.Left)
	}
}

func TestProcessDoesNotModifyInput(t *testing.T) {
	left := testutil.DeterministicSine(440, 44100, 0.5, 6000)
	orig := append([]float32(nil), left...)

	if _, err := Process(left, nil, 44100, 0.8, 1.25); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, left, orig, 0)
}

func TestProcessPitchShiftMovesFrequency(t *testing.T) {
	const (
		sr    = 44100.0
		freq  = 441.0
		n     = 16384
		ratio = 1.5
	)

	in := testutil.DeterministicSine(freq, sr, 0.5, n)

	res, err := Process(in, nil, sr, 1, ratio, WithoutFormants())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.Samples != n {
		t.Fatalf("pitch shift changed length: %d", res.Samples)
	}

	testutil.RequireFinite(t, res.Left)

	mid := res.Left[4096:12288]
	got := float64(timestats.ZeroCrossings(mid))
	want := 2 * freq * ratio * float64(len(mid)) / sr

	if math.Abs(got-want)/want > 0.1 {
		t.Fatalf("zero crossings = %v, want ~%v", got, want)
	}

	if rms := timestats.RMS(mid); rms < 0.05 || rms > 1.5 {
		t.Fatalf("output RMS %v out of plausible range", rms)
	}
}

func TestProcessPitchDownStereo(t *testing.T) {
	left := testutil.DeterministicSine(880, 44100, 0.4, 12000)
	right := testutil.DeterministicSine(660, 44100, 0.4, 12000)

	res, err := Process(left, right, 44100, 1.25, 0.75)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(res.Left) != 9600 || len(res.Right) != 9600 {
		t.Fatalf("lengths = %d/%d, want 9600", len(res.Left), len(res.Right))
	}

	testutil.RequireFinite(t, res.Left)
	testutil.RequireFinite(t, res.Right)

	if res.FormantTiltDB >= 0 {
		t.Fatalf("pitch down should darken: tilt %v", res.FormantTiltDB)
	}
}

func TestProcessPercussiveProfile(t *testing.T) {
	in := testutil.ClickTrack(100, 8000, 0.9)

	res, err := Process(in, nil, 44100, 1, 1.2)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !res.Analysis.Percussive {
		t.Fatalf("click track not classified percussive: %+v", res.Analysis)
	}

	if res.Profile.Name != "percussive" {
		t.Fatalf("profile = %q, want percussive", res.Profile.Name)
	}

	if res.Transients == 0 {
		t.Fatal("expected transients on a click track")
	}

	testutil.RequireFinite(t, res.Left)
}

func TestProcessWithProfileOverride(t *testing.T) {
	in := testutil.DeterministicSine(440, 44100, 0.5, 4096)
	p := Profile{
		Name:           "tiny",
		FFTSize:        512,
		Oversampling:   4,
		Window:         PercussiveProfile().Window,
		Interp:         interp.Linear,
		TransientBlend: 0,
	}

	res, err := Process(in, nil, 44100, 1, 1.1, WithProfile(p))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.Profile != p {
		t.Fatalf("profile = %+v, want override", res.Profile)
	}

	bad := p
	bad.FFTSize = 500

	if _, err := Process(in, nil, 44100, 1, 1.1, WithProfile(bad)); err == nil {
		t.Fatal("expected error for non power-of-two FFT size")
	}
}

func TestProcessTinyPitchSkipsVocoder(t *testing.T) {
	in := testutil.DeterministicNoise(3, 0.5, 3000)

	res, err := Process(in, nil, 44100, 1, 1.0001)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, res.Left, in, 0)

	if res.FormantTiltDB != 0 {
		t.Fatalf("tilt = %v, want 0", res.FormantTiltDB)
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	e := New(WithTransientWidth(128))
	in := testutil.DeterministicSine(330, 44100, 0.5, 8192)

	ref, err := e.Process(in, nil, 44100, 0.9, 1.3)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var wg sync.WaitGroup

	errs := make(chan error, 4)

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := e.Process(in, nil, 44100, 0.9, 1.3)
			if err != nil {
				errs <- err
				return
			}

			if d, _ := testutil.MaxAbsDiff(res.Left, ref.Left); d != 0 {
				errs <- errors.New("concurrent render differs from serial render")
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}
