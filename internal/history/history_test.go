package history

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/example/canvasmark/internal/layer"
)

func state(name string) layer.State {
	return layer.State{
		Active: "l1",
		Layers: []layer.Layer{{ID: "l1", Name: name, Visible: true, Opacity: 1, Blend: layer.BlendNormal, Annotations: []string{}}},
	}
}

func name(s Snapshot) string { return s.State.Layers[0].Name }

func TestUndoRedo(t *testing.T) {
	h := New(0)
	h.Reset(state("base"))
	h.Commit(state("one"))
	h.Commit(state("two"))

	s, ok := h.Undo()
	if !ok || name(s) != "one" {
		t.Fatalf("first undo = %q %v", name(s), ok)
	}
	s, ok = h.Undo()
	if !ok || name(s) != "base" {
		t.Fatalf("second undo = %q %v", name(s), ok)
	}
	if _, ok := h.Undo(); ok {
		t.Fatal("undo past oldest should be a no-op")
	}
	if h.Cursor() != 0 {
		t.Fatalf("cursor moved on no-op undo: %d", h.Cursor())
	}
	s, ok = h.Redo()
	if !ok || name(s) != "one" {
		t.Fatalf("redo = %q %v", name(s), ok)
	}
	h.Redo()
	if _, ok := h.Redo(); ok {
		t.Fatal("redo past newest should be a no-op")
	}
}

func TestCommitTruncatesRedo(t *testing.T) {
	h := New(MaxDepth)
	h.Reset(state("base"))
	h.Commit(state("a"))
	h.Commit(state("b"))
	h.Undo()
	h.Undo()
	h.Commit(state("c"))

	if h.CanRedo() {
		t.Fatal("redo should be impossible after a fresh commit")
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	cur, _ := h.Current()
	if name(cur) != "c" {
		t.Fatalf("current = %q", name(cur))
	}
}

func TestEvictsOldest(t *testing.T) {
	h := New(MaxDepth)
	h.Reset(state("base"))
	for i := 0; i < 60; i++ {
		h.Commit(state(fmt.Sprintf("s%d", i)))
	}
	if h.Len() != MaxDepth {
		t.Fatalf("Len = %d, want %d", h.Len(), MaxDepth)
	}
	undos := 0
	var last Snapshot
	for {
		s, ok := h.Undo()
		if !ok {
			break
		}
		last = s
		undos++
	}
	if undos != MaxDepth-1 {
		t.Errorf("undo steps = %d, want %d", undos, MaxDepth-1)
	}
	if name(last) != "s10" {
		t.Errorf("oldest retained = %q, want s10", name(last))
	}
}

func TestSequenceMonotonic(t *testing.T) {
	h := New(3)
	var seqs []uint64
	seqs = append(seqs, h.Reset(state("base")).Seq)
	for i := 0; i < 5; i++ {
		seqs = append(seqs, h.Commit(state("x")).Seq)
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] <= seqs[i-1] {
			t.Fatalf("sequence not increasing: %v", seqs)
		}
	}
	h.Undo()
	h.Undo()
	if _, ok := h.Undo(); ok {
		t.Fatal("depth 3 allows only two undos")
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	h := New(MaxDepth)
	src := state("base")
	h.Reset(src)
	src.Layers[0].Name = "mutated"

	cur, _ := h.Current()
	if name(cur) != "base" {
		t.Fatalf("history shares memory with committed state")
	}
	cur.State.Layers[0].Name = "changed"
	again, _ := h.Current()
	if name(again) != "base" {
		t.Fatalf("returned snapshot shares memory with history")
	}
}

func TestEmptyHistory(t *testing.T) {
	h := New(MaxDepth)
	if _, ok := h.Current(); ok {
		t.Error("empty history has no current entry")
	}
	if _, ok := h.Undo(); ok {
		t.Error("undo on empty history")
	}
	if _, ok := h.Redo(); ok {
		t.Error("redo on empty history")
	}
	first := h.Commit(state("first"))
	want := state("first")
	if diff := cmp.Diff(want, first.State, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("commit mismatch (-want +got):\n%s", diff)
	}
}
