// Package params defines the per-layer knob set of the looper and the pure
// mappings between normalized knob positions and renderer engine units.
//
// Every mapping has an inverse so that parameters exported by the renderer
// can be turned back into knob positions:
//
//	gain := params.MapVolume(0.9)      // 3.6
//	v := params.NormalizeVolume(gain)  // 0.9
package params
