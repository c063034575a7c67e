// Package biquad runs cascades of second-order IIR sections over float32
// audio. The stretch engine uses it for its formant shelves; coefficients
// come from dsp/filter/design.
package biquad
