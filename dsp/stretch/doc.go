// Package stretch re-renders loop buffers at a new speed and pitch.
//
// [Process] runs an offline pipeline over one or two float32 channels:
//
//  1. the source is analysed and classified as tonal or percussive,
//  2. a [Profile] (FFT size, oversampling, window, interpolation) is picked,
//  3. the speed change is applied by fractional resampling,
//  4. the pitch change is applied by a phase vocoder that keeps length,
//  5. transients of the speed-only signal are blended back in,
//  6. a pair of shelving filters tilts the spectrum against formant drift.
//
// Speed and pitch of exactly 1 return an exact copy of the input.
package stretch
