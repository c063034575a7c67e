// Package design computes biquad coefficients for dsp/filter/biquad.
// Only the RBJ shelves used for formant tilt correction live here.
package design
