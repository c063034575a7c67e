package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-looper/internal/testutil"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	left := testutil.DeterministicSine(440, 44100, 0.5, 1000)
	right := testutil.DeterministicSine(220, 44100, 0.25, 1000)

	if err := writeWAV(path, left, right, 44100, 16); err != nil {
		t.Fatalf("writeWAV: %v", err)
	}

	c, err := readWAV(path)
	if err != nil {
		t.Fatalf("readWAV: %v", err)
	}

	if c.sampleRate != 44100 || c.bitDepth != 16 {
		t.Fatalf("format = %d Hz / %d bit, want 44100 / 16", c.sampleRate, c.bitDepth)
	}

	testutil.RequireSliceNearlyEqual(t, c.left, left, 1.0/16384)
	testutil.RequireSliceNearlyEqual(t, c.right, right, 1.0/16384)
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := readWAV(path); !errors.Is(err, errInvalidWAV) {
		t.Fatalf("readWAV error = %v, want errInvalidWAV", err)
	}
}

func TestRunStretchesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")

	if err := writeWAV(in, testutil.DeterministicSine(330, 44100, 0.5, 4410), nil, 44100, 16); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-in", in, "-out", out, "-speed", "0.5"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v (stderr %q)", err, stderr.String())
	}

	c, err := readWAV(out)
	if err != nil {
		t.Fatal(err)
	}

	if len(c.left) != 8820 || c.right != nil {
		t.Fatalf("output = %d frames (stereo=%t), want 8820 mono", len(c.left), c.right != nil)
	}

	report := stdout.String()
	for _, want := range []string{"8820", "tonal", "Blackman-Harris", "hermite"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRunConvertsSampleRate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")

	tone := testutil.DeterministicSine(441, 44100, 0.5, 4410)
	if err := writeWAV(in, tone, tone, 44100, 24); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-in", in, "-out", out, "-rate", "48000"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v (stderr %q)", err, stderr.String())
	}

	c, err := readWAV(out)
	if err != nil {
		t.Fatal(err)
	}

	if c.sampleRate != 48000 || len(c.left) != 4800 || len(c.right) != 4800 {
		t.Fatalf("output = %d Hz, %d/%d frames, want 48000 Hz with 4800 frames", c.sampleRate, len(c.left), len(c.right))
	}

	if !strings.Contains(stdout.String(), "48000 Hz (4800 samples written)") {
		t.Errorf("report missing output rate:\n%s", stdout.String())
	}
}

func TestRunFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing files", nil},
		{"bad profile", []string{"-in", "a.wav", "-out", "b.wav", "-profile", "granular"}},
		{"missing input", []string{"-in", "/nonexistent/a.wav", "-out", "b.wav"}},
		{"bad rate", []string{"-in", "a.wav", "-out", "b.wav", "-rate", "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run(tt.args, &stdout, &stderr); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
