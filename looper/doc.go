// Package looper implements the layered loop recorder controller.
//
// A Controller owns eight layers, the recording state machine, the
// reference-loop bookkeeping and the undo/redo history. It talks to the
// external renderer only through a Renderer (normally a *bridge.Bridge)
// and never blocks on it: renderer replies, debounce timers and stretch
// jobs all come back as continuations that run on the single control
// goroutine driving Run or Step.
//
// Intent methods (ToggleRecord, SetKnob, Undo, ...) must be called from
// that goroutine. Other goroutines queue them with Submit.
package looper
