// Package resample converts loop buffers between sample rates with a
// polyphase windowed-sinc filter.
//
// Conversion is offline: a whole buffer goes in and a buffer of
// round(len*out/in) samples comes out, aligned so that output sample m sits
// at input time m*in/out. With WithLoop the filter reads across the buffer
// end, so a seamless loop stays seamless after conversion.
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
