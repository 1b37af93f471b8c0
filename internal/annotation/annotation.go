// Package annotation defines the drawable objects placed on document layers.
//
// Annotations are values. Editing one means building a replacement that keeps
// the same ID; nothing in this package mutates an annotation in place.
package annotation

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Kind discriminates the annotation variants.
type Kind string

const (
	KindText      Kind = "text"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindLine      Kind = "line"
	KindArrow     Kind = "arrow"
	KindPath      Kind = "path"
	KindHighlight Kind = "highlight"
	KindStamp     Kind = "stamp"
)

// Kinds lists every annotation kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindText, KindRectangle, KindCircle, KindLine, KindArrow, KindPath, KindHighlight, KindStamp}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Align is the horizontal alignment of a text annotation.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// ParseAlign converts a setting value into an Align.
func ParseAlign(s string) (Align, error) {
	switch Align(s) {
	case AlignLeft, AlignCenter, AlignRight:
		return Align(s), nil
	case "":
		return AlignLeft, nil
	}
	return "", &ValidationError{Field: "align", Reason: fmt.Sprintf("unknown alignment %q", s)}
}

// Style holds the paint attributes shared by every kind.
type Style struct {
	Stroke      Color   `json:"stroke"`
	Fill        Color   `json:"fill"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// DefaultStyle is a 2px red outline without fill.
func DefaultStyle() Style {
	return Style{Stroke: RGB(255, 0, 0), Fill: None, StrokeWidth: 2, Opacity: 1}
}

// ParseStyle builds a Style from textual colour specifications.
func ParseStyle(stroke, fill string, width, opacity float64) (Style, error) {
	s := Style{StrokeWidth: width, Opacity: opacity}
	var err error
	if s.Stroke, err = ParseColor(stroke); err != nil {
		return Style{}, &ValidationError{Field: "style.stroke", Reason: err.Error()}
	}
	if s.Fill, err = ParseColor(fill); err != nil {
		return Style{}, &ValidationError{Field: "style.fill", Reason: err.Error()}
	}
	if err := s.validate(); err != nil {
		return Style{}, err
	}
	return s, nil
}

// TextPayload is the content of a text annotation.
type TextPayload struct {
	Content string  `json:"content"`
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
	Align   Align   `json:"align"`
}

// Segment is the pair of end points of a line or arrow.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Meta identifies an annotation and where it lives.
type Meta struct {
	ID    string
	Layer string
	Page  int
}

// Annotation is a single drawable object. X, Y, Width and Height always hold
// the bounding box in document space; the kind payload refines it.
type Annotation struct {
	ID     string  `json:"id"`
	Layer  string  `json:"layer"`
	Page   int     `json:"page"`
	Kind   Kind    `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Style  Style   `json:"style"`

	Text    *TextPayload `json:"text,omitempty"`
	Points  []Point      `json:"points,omitempty"`
	Segment *Segment     `json:"segment,omitempty"`
	Label   string       `json:"label,omitempty"`
}

func newBoxed(m Meta, kind Kind, r Rect, s Style) Annotation {
	return Annotation{
		ID: m.ID, Layer: m.Layer, Page: m.Page, Kind: kind,
		X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
		Style: s,
	}
}

// NewRectangle creates a rectangle annotation.
func NewRectangle(m Meta, r Rect, s Style) (Annotation, error) {
	a := newBoxed(m, KindRectangle, r, s)
	return a, a.Validate()
}

// NewCircle creates an ellipse inscribed in r.
func NewCircle(m Meta, r Rect, s Style) (Annotation, error) {
	a := newBoxed(m, KindCircle, r, s)
	return a, a.Validate()
}

// NewHighlight creates a translucent marker over r.
func NewHighlight(m Meta, r Rect, s Style) (Annotation, error) {
	a := newBoxed(m, KindHighlight, r, s)
	return a, a.Validate()
}

func newSegment(m Meta, kind Kind, start, end Point, s Style) (Annotation, error) {
	a := newBoxed(m, kind, RectFromPoints(start, end), s)
	a.Segment = &Segment{Start: start, End: end}
	return a, a.Validate()
}

// NewLine creates a straight line from start to end.
func NewLine(m Meta, start, end Point, s Style) (Annotation, error) {
	return newSegment(m, KindLine, start, end, s)
}

// NewArrow creates a line with an arrow head at end.
func NewArrow(m Meta, start, end Point, s Style) (Annotation, error) {
	return newSegment(m, KindArrow, start, end, s)
}

// NewPath creates a freehand path through pts. The slice is copied.
func NewPath(m Meta, pts []Point, s Style) (Annotation, error) {
	a := newBoxed(m, KindPath, boundsOf(pts), s)
	a.Points = append([]Point(nil), pts...)
	return a, a.Validate()
}

// NewText creates a text annotation anchored at its top-left corner.
func NewText(m Meta, at Point, t TextPayload, s Style) (Annotation, error) {
	if t.Align == "" {
		t.Align = AlignLeft
	}
	w, h := EstimateTextSize(t.Content, t.Size)
	a := newBoxed(m, KindText, Rect{X: at.X, Y: at.Y, Width: w, Height: h}, s)
	a.Text = &t
	return a, a.Validate()
}

// NewStamp creates a boxed label such as "APPROVED" centred on at.
func NewStamp(m Meta, at Point, label string, size float64, s Style) (Annotation, error) {
	if err := checkLength("size", size); err != nil {
		return Annotation{}, err
	}
	w, h := EstimateTextSize(label, size)
	w += size
	h += size / 2
	a := newBoxed(m, KindStamp, Rect{X: at.X - w/2, Y: at.Y - h/2, Width: w, Height: h}, s)
	a.Label = label
	return a, a.Validate()
}

// EstimateTextSize approximates the box of content rendered at size points.
// The renderer measures precisely; this is used for hit testing only.
func EstimateTextSize(content string, size float64) (w, h float64) {
	n := utf8.RuneCountInString(content)
	if n == 0 {
		n = 1
	}
	return math.Ceil(float64(n) * size * 0.6), math.Ceil(size * 1.2)
}

// Bounds returns the bounding box in document space.
func (a Annotation) Bounds() Rect {
	return Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

// Clone returns a deep copy that shares no memory with a.
func (a Annotation) Clone() Annotation {
	out := a
	if a.Text != nil {
		t := *a.Text
		out.Text = &t
	}
	if a.Points != nil {
		out.Points = append([]Point(nil), a.Points...)
	}
	if a.Segment != nil {
		seg := *a.Segment
		out.Segment = &seg
	}
	return out
}

// WithStyle returns a replacement with style s.
func (a Annotation) WithStyle(s Style) (Annotation, error) {
	out := a.Clone()
	out.Style = s
	return out, out.Validate()
}

// WithLayer returns a replacement owned by layer.
func (a Annotation) WithLayer(layer string) Annotation {
	out := a.Clone()
	out.Layer = layer
	return out
}

// WithText returns a replacement with new text content. The box is re-estimated.
func (a Annotation) WithText(content string) (Annotation, error) {
	if a.Kind != KindText {
		return Annotation{}, &ValidationError{Field: "kind", Reason: fmt.Sprintf("%s has no text content", a.Kind)}
	}
	out := a.Clone()
	out.Text.Content = content
	out.Width, out.Height = EstimateTextSize(content, out.Text.Size)
	return out, out.Validate()
}

// Translate returns a replacement moved by (dx, dy).
func (a Annotation) Translate(dx, dy float64) Annotation {
	out := a.Clone()
	d := Point{X: dx, Y: dy}
	out.X += dx
	out.Y += dy
	for i := range out.Points {
		out.Points[i] = out.Points[i].Add(d)
	}
	if out.Segment != nil {
		out.Segment.Start = out.Segment.Start.Add(d)
		out.Segment.End = out.Segment.End.Add(d)
	}
	return out
}

// Degenerate reports whether a paints nothing meaningful: a shape with zero
// width and height, a segment whose ends coincide or a path of a single point.
func (a Annotation) Degenerate() bool {
	switch a.Kind {
	case KindPath:
		if len(a.Points) < 2 {
			return true
		}
		for _, p := range a.Points[1:] {
			if p != a.Points[0] {
				return false
			}
		}
		return true
	case KindLine, KindArrow:
		return a.Segment == nil || a.Segment.Start == a.Segment.End
	case KindText, KindStamp:
		return false
	}
	return a.Width == 0 && a.Height == 0
}

// HitTest reports whether p touches a, allowing tolerance document units
// around strokes.
func (a Annotation) HitTest(p Point, tolerance float64) bool {
	reach := tolerance + a.Style.StrokeWidth/2
	switch a.Kind {
	case KindLine, KindArrow:
		if a.Segment == nil {
			return false
		}
		return segmentDistance(p, a.Segment.Start, a.Segment.End) <= reach
	case KindPath:
		if len(a.Points) == 1 {
			return p.Distance(a.Points[0]) <= reach
		}
		for i := 1; i < len(a.Points); i++ {
			if segmentDistance(p, a.Points[i-1], a.Points[i]) <= reach {
				return true
			}
		}
		return false
	case KindCircle:
		rx, ry := a.Width/2+reach, a.Height/2+reach
		if rx <= 0 || ry <= 0 {
			return false
		}
		c := a.Bounds().Center()
		dx, dy := (p.X-c.X)/rx, (p.Y-c.Y)/ry
		return dx*dx+dy*dy <= 1
	}
	return a.Bounds().Inset(-reach).Contains(p)
}
