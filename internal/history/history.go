// Package history keeps a bounded linear list of document snapshots with a
// cursor for undo and redo.
package history

import "github.com/example/canvasmark/internal/layer"

// MaxDepth is the default number of snapshots retained.
const MaxDepth = 50

// Snapshot is an immutable copy of the layers and annotations of a document.
// Seq increases with every snapshot taken and is never reused.
type Snapshot struct {
	Seq   uint64      `json:"seq"`
	State layer.State `json:"state"`
}

// History is a linear undo list. The entry at the cursor mirrors the
// document.
type History struct {
	entries []Snapshot
	cursor  int
	depth   int
	seq     uint64
}

// New returns an empty history holding at most depth snapshots. A depth
// below two falls back to MaxDepth.
func New(depth int) *History {
	if depth < 2 {
		depth = MaxDepth
	}
	return &History{depth: depth, cursor: -1}
}

func (h *History) snapshot(s layer.State) Snapshot {
	h.seq++
	return Snapshot{Seq: h.seq, State: s.Clone()}
}

// Reset discards every entry and starts over from s.
func (h *History) Reset(s layer.State) Snapshot {
	snap := h.snapshot(s)
	h.entries = []Snapshot{snap}
	h.cursor = 0
	return clone(snap)
}

// Commit records s after a committed mutation. Entries past the cursor are
// discarded and the oldest entries are evicted beyond the depth limit.
func (h *History) Commit(s layer.State) Snapshot {
	snap := h.snapshot(s)
	h.entries = append(h.entries[:h.cursor+1], snap)
	if over := len(h.entries) - h.depth; over > 0 {
		h.entries = append([]Snapshot(nil), h.entries[over:]...)
	}
	h.cursor = len(h.entries) - 1
	return clone(snap)
}

// Undo steps the cursor back and returns the snapshot now current. At the
// oldest entry it reports false and changes nothing.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.cursor--
	return clone(h.entries[h.cursor]), true
}

// Redo steps the cursor forward. At the newest entry it reports false.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.cursor++
	return clone(h.entries[h.cursor]), true
}

// Current returns the snapshot at the cursor.
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return clone(h.entries[h.cursor]), true
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current snapshot, or -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Depth returns the retention limit.
func (h *History) Depth() int { return h.depth }

func clone(s Snapshot) Snapshot {
	s.State = s.State.Clone()
	return s
}
