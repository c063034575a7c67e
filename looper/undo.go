package looper

import (
	"github.com/cwbudde/algo-looper/params"
	"github.com/cwbudde/algo-looper/protocol"
)

// MaxHistory bounds the undo and redo stacks.
const MaxHistory = 32

// Snapshot is an immutable copy of a layer's audio and parameters.
// BufferL and BufferR hold what the renderer plays; for a stretched layer
// the unprocessed audio its renders start from is kept alongside.
type Snapshot struct {
	BufferL            []float32
	BufferR            []float32
	Knobs              params.ParamSet
	StartOffsetSamples int64
	PhaseOffsetSamples int64
	Takes              []protocol.Take

	original *original
}

// LengthSamples returns the snapshot length.
func (s *Snapshot) LengthSamples() int64 {
	return int64(len(s.BufferL))
}

// snapshotFromData materializes a renderer export. Empty exports yield nil.
func snapshotFromData(data protocol.LayerData) *Snapshot {
	if data.Empty || len(data.BufferL) == 0 {
		return nil
	}

	knobs := params.Defaults()
	if data.Params != nil {
		knobs = params.FromEngine(*data.Params)
	}

	phase, start := protocol.ResolveOffsets(data.PhaseOffsetSamples, data.StartOffsetSamples)

	return &Snapshot{
		BufferL:            cloneSamples(data.BufferL),
		BufferR:            cloneSamples(data.BufferR),
		Knobs:              knobs,
		StartOffsetSamples: start,
		PhaseOffsetSamples: phase,
		Takes:              cloneTakes(data.Takes),
	}
}

func cloneSamples(x []float32) []float32 {
	if x == nil {
		return nil
	}

	return append([]float32(nil), x...)
}

func cloneTakes(takes []protocol.Take) []protocol.Take {
	if takes == nil {
		return nil
	}

	out := make([]protocol.Take, len(takes))
	for i, t := range takes {
		t.BufferL = cloneSamples(t.BufferL)
		t.BufferR = cloneSamples(t.BufferR)
		out[i] = t
	}

	return out
}

// EntryKind tags an UndoEntry.
type EntryKind int

const (
	// EntryRestore brings back a snapshot.
	EntryRestore EntryKind = iota
	// EntryClear empties the layer.
	EntryClear
)

func (k EntryKind) String() string {
	switch k {
	case EntryRestore:
		return "restore"
	case EntryClear:
		return "clear"
	default:
		return "unknown"
	}
}

// UndoEntry is one step of layer history.
type UndoEntry struct {
	Kind       EntryKind
	LayerIndex int
	Snapshot   *Snapshot
}

// RestoreEntry returns an entry that restores s on layer i.
func RestoreEntry(i int, s *Snapshot) UndoEntry {
	return UndoEntry{Kind: EntryRestore, LayerIndex: i, Snapshot: s}
}

// ClearEntry returns an entry that empties layer i.
func ClearEntry(i int) UndoEntry {
	return UndoEntry{Kind: EntryClear, LayerIndex: i}
}

// entryFor turns a capture result into an entry: no snapshot means the
// layer was empty.
func entryFor(i int, s *Snapshot) UndoEntry {
	if s == nil {
		return ClearEntry(i)
	}

	return RestoreEntry(i, s)
}

type stack struct {
	entries []UndoEntry
}

func (s *stack) push(e UndoEntry) {
	s.entries = append(s.entries, e)
	if over := len(s.entries) - MaxHistory; over > 0 {
		// Drop the oldest entries and release their snapshots.
		clear(s.entries[:over])
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
}

func (s *stack) pop() (UndoEntry, bool) {
	n := len(s.entries)
	if n == 0 {
		return UndoEntry{}, false
	}

	e := s.entries[n-1]
	s.entries[n-1] = UndoEntry{}
	s.entries = s.entries[:n-1]

	return e, true
}

func (s *stack) len() int { return len(s.entries) }

func (s *stack) reset() {
	clear(s.entries)
	s.entries = s.entries[:0]
}

// History is a linear undo/redo history.
type History struct {
	undo stack
	redo stack
}

// Push records a new undoable step and forgets the redo branch.
func (h *History) Push(e UndoEntry) {
	h.undo.push(e)
	h.redo.reset()
}

// UndoDepth returns the number of undoable steps.
func (h *History) UndoDepth() int { return h.undo.len() }

// RedoDepth returns the number of redoable steps.
func (h *History) RedoDepth() int { return h.redo.len() }

// Oldest returns the oldest undo entry.
func (h *History) Oldest() (UndoEntry, bool) {
	if h.undo.len() == 0 {
		return UndoEntry{}, false
	}

	return h.undo.entries[0], true
}
