package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

var errInvalidWAV = errors.New("not a valid WAV file")

// clip is a decoded WAV file. right is nil for mono files; channels past
// the second are dropped.
type clip struct {
	left       []float32
	right      []float32
	sampleRate int
	bitDepth   int
}

func readWAV(path string) (clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return clip{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return clip{}, fmt.Errorf("%s: %w", path, errInvalidWAV)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return clip{}, fmt.Errorf("decode %s: %w", path, err)
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		return clip{}, fmt.Errorf("%s: unknown bit depth", path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return clip{}, fmt.Errorf("%s: no channels", path)
	}

	frames := len(buf.Data) / channels
	scale := math.Pow(2, float64(depth-1))

	c := clip{
		left:       make([]float32, frames),
		sampleRate: buf.Format.SampleRate,
		bitDepth:   depth,
	}
	if channels > 1 {
		c.right = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		c.left[i] = float32(float64(buf.Data[i*channels]) / scale)
		if c.right != nil {
			c.right[i] = float32(float64(buf.Data[i*channels+1]) / scale)
		}
	}

	return c, nil
}

func writeWAV(path string, left, right []float32, sampleRate, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	channels := 1
	if right != nil {
		channels = 2
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM)

	peak := math.Pow(2, float64(bitDepth-1)) - 1
	data := make([]int, len(left)*channels)

	for i := range left {
		data[i*channels] = quantize(left[i], peak)
		if right != nil {
			data[i*channels+1] = quantize(right[i], peak)
		}
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	return nil
}

func quantize(v float32, peak float64) int {
	x := math.Max(-1, math.Min(1, float64(v)))
	return int(math.Round(x * peak))
}
