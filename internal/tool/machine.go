package tool

import (
	"github.com/example/canvasmark/internal/annotation"
)

// State is Idle or Dragging.
type State interface {
	state()
}

// Idle waits for a pointer press.
type Idle struct{}

// Dragging tracks an uncommitted drag. Preview never carries an id.
type Dragging struct {
	Tool    Tool
	Anchor  annotation.Point
	Preview annotation.Annotation
	Target  Target
}

func (Idle) state()     {}
func (Dragging) state() {}

// Target describes where new annotations go.
type Target struct {
	Layer  string
	Locked bool
	Page   int
	// NewID allocates annotation ids for committed objects.
	NewID func() string
	// Hit finds the topmost annotation under a document point.
	Hit func(p annotation.Point) (annotation.Annotation, bool)
}

// Result tells the caller what a pointer event produced.
type Result struct {
	// Committed is the annotation to insert, or nil.
	Committed *annotation.Annotation
	// Selected is the selection after a select press; empty clears it.
	Selected         string
	SelectionChanged bool
	// SwitchToSelect is set after single-click placements.
	SwitchToSelect bool
	// Discarded is set when a degenerate drag was dropped.
	Discarded bool
	// Blocked is set when the press landed on a locked layer.
	Blocked bool
	Redraw  bool
}

// Machine is the pointer state machine. The zero value is Idle.
type Machine struct {
	state State
}

// State returns the current state.
func (m *Machine) State() State {
	if m.state == nil {
		return Idle{}
	}
	return m.state
}

// Dragging reports whether a drag is in progress.
func (m *Machine) Dragging() bool {
	_, ok := m.state.(Dragging)
	return ok
}

// Preview returns the in-progress object, if any.
func (m *Machine) Preview() (annotation.Annotation, bool) {
	d, ok := m.state.(Dragging)
	if !ok {
		return annotation.Annotation{}, false
	}
	return d.Preview.Clone(), true
}

// Cancel abandons a drag without committing. It reports whether a drag was
// in progress.
func (m *Machine) Cancel() bool {
	was := m.Dragging()
	m.state = Idle{}
	return was
}

// Down handles a pointer press at document point p.
func (m *Machine) Down(t Tool, tgt Target, p annotation.Point) (Result, error) {
	if m.Dragging() {
		return Result{}, nil
	}
	switch v := t.(type) {
	case Select:
		var sel string
		if tgt.Hit != nil {
			if a, ok := tgt.Hit(p); ok {
				sel = a.ID
			}
		}
		return Result{Selected: sel, SelectionChanged: true, Redraw: true}, nil
	case Text:
		if tgt.Locked {
			return Result{Blocked: true}, nil
		}
		a, err := annotation.NewText(meta(tgt, tgt.NewID()), p,
			annotation.TextPayload{Content: v.Content, Font: v.Font, Size: v.Size, Align: v.Align}, style(v))
		if err != nil {
			return Result{}, err
		}
		return Result{Committed: &a, SwitchToSelect: true, Redraw: true}, nil
	case Stamp:
		if tgt.Locked {
			return Result{Blocked: true}, nil
		}
		a, err := annotation.NewStamp(meta(tgt, tgt.NewID()), p, v.Label, v.Size, style(v))
		if err != nil {
			return Result{}, err
		}
		return Result{Committed: &a, SwitchToSelect: true, Redraw: true}, nil
	case Rectangle, Circle, Line, Arrow, Path, Highlight:
		if tgt.Locked {
			return Result{Blocked: true}, nil
		}
		preview, err := shape(v, meta(tgt, ""), p, p, nil)
		if err != nil {
			return Result{}, err
		}
		m.state = Dragging{Tool: v, Anchor: p, Preview: preview, Target: tgt}
		return Result{Redraw: true}, nil
	}
	return Result{}, nil
}

// Move updates the preview. Moves without a drag are ignored.
func (m *Machine) Move(p annotation.Point) Result {
	d, ok := m.state.(Dragging)
	if !ok {
		return Result{}
	}
	next, err := shape(d.Tool, meta(d.Target, ""), d.Anchor, p, &d.Preview)
	if err != nil {
		return Result{}
	}
	d.Preview = next
	m.state = d
	return Result{Redraw: true}
}

// Up finishes a drag at p. Degenerate objects are discarded.
func (m *Machine) Up(p annotation.Point) (Result, error) {
	d, ok := m.state.(Dragging)
	if !ok {
		return Result{}, nil
	}
	m.state = Idle{}
	final, err := shape(d.Tool, meta(d.Target, ""), d.Anchor, p, &d.Preview)
	if err != nil {
		return Result{Redraw: true}, err
	}
	if final.Degenerate() {
		return Result{Discarded: true, Redraw: true}, nil
	}
	final.ID = d.Target.NewID()
	return Result{Committed: &final, Redraw: true}, nil
}

func meta(t Target, id string) annotation.Meta {
	return annotation.Meta{ID: id, Layer: t.Layer, Page: t.Page}
}

// shape builds the drag object spanning anchor to p. For paths prev holds
// the points gathered so far and p is appended.
func shape(t Tool, m annotation.Meta, anchor, p annotation.Point, prev *annotation.Annotation) (annotation.Annotation, error) {
	box := annotation.RectFromPoints(anchor, p)
	switch v := t.(type) {
	case Rectangle:
		return annotation.NewRectangle(m, box, style(v))
	case Circle:
		return annotation.NewCircle(m, box, style(v))
	case Highlight:
		return annotation.NewHighlight(m, box, style(v))
	case Line:
		return annotation.NewLine(m, anchor, p, style(v))
	case Arrow:
		return annotation.NewArrow(m, anchor, p, style(v))
	case Path:
		pts := []annotation.Point{anchor}
		if prev != nil && len(prev.Points) > 0 {
			pts = prev.Points
			if pts[len(pts)-1] != p {
				pts = append(pts, p)
			}
		}
		return annotation.NewPath(m, pts, style(v))
	case Select, Text, Stamp:
	}
	return annotation.Annotation{}, &annotation.ValidationError{Field: "tool", Reason: string(t.Name()) + " is not a drag tool"}
}
