// Package interp provides the fractional-position interpolation kernels
// used by the stretch resampler.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (good default)
//
// [At] reads a sample buffer at a fractional index with either kernel,
// clamping neighbours at the buffer edges.
package interp
