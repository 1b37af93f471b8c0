package annotation

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testMeta = Meta{ID: "a1", Layer: "layer-1", Page: 0}

func TestNewRectangleNormalisedDrag(t *testing.T) {
	r := RectFromPoints(Pt(50, 60), Pt(10, 20))
	a, err := NewRectangle(testMeta, r, DefaultStyle())
	if err != nil {
		t.Fatalf("NewRectangle: %v", err)
	}
	want := Rect{X: 10, Y: 20, Width: 40, Height: 40}
	if diff := cmp.Diff(want, a.Bounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejects(t *testing.T) {
	base, err := NewRectangle(testMeta, Rect{Width: 10, Height: 10}, DefaultStyle())
	if err != nil {
		t.Fatalf("NewRectangle: %v", err)
	}
	tests := []struct {
		name  string
		field string
		mut   func(a *Annotation)
	}{
		{"negative width", "width", func(a *Annotation) { a.Width = -1 }},
		{"nan height", "height", func(a *Annotation) { a.Height = math.NaN() }},
		{"opacity above one", "style.opacity", func(a *Annotation) { a.Style.Opacity = 1.5 }},
		{"negative stroke", "style.strokeWidth", func(a *Annotation) { a.Style.StrokeWidth = -2 }},
		{"unknown kind", "kind", func(a *Annotation) { a.Kind = "blob" }},
		{"infinite x", "x", func(a *Annotation) { a.X = math.Inf(1) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := base.Clone()
			tc.mut(&a)
			err := a.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestNewTextRejectsNegativeFontSize(t *testing.T) {
	_, err := NewText(testMeta, Pt(0, 0), TextPayload{Content: "hi", Size: -4}, DefaultStyle())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "text.size" {
		t.Fatalf("expected text.size validation error, got %v", err)
	}
}

func TestNewStampRejectsNegativeSize(t *testing.T) {
	_, err := NewStamp(testMeta, Pt(10, 10), "OK", -8, DefaultStyle())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "size" {
		t.Fatalf("expected size validation error, got %v", err)
	}
}

func TestNewStampNeedsLabel(t *testing.T) {
	if _, err := NewStamp(testMeta, Pt(10, 10), "", 16, DefaultStyle()); err == nil {
		t.Fatal("expected error for empty stamp label")
	}
	s, err := NewStamp(testMeta, Pt(100, 100), "APPROVED", 16, DefaultStyle())
	if err != nil {
		t.Fatalf("NewStamp: %v", err)
	}
	if c := s.Bounds().Center(); c != Pt(100, 100) {
		t.Errorf("stamp centre = %v, want (100,100)", c)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p, err := NewPath(testMeta, []Point{Pt(0, 0), Pt(5, 5)}, DefaultStyle())
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}
	c := p.Clone()
	c.Points[0] = Pt(99, 99)
	if p.Points[0] != Pt(0, 0) {
		t.Fatalf("clone shares point storage")
	}

	txt, err := NewText(testMeta, Pt(1, 1), TextPayload{Content: "a", Size: 12}, DefaultStyle())
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	tc := txt.Clone()
	tc.Text.Content = "b"
	if txt.Text.Content != "a" {
		t.Fatalf("clone shares text payload")
	}
}

func TestTranslateMovesPayload(t *testing.T) {
	l, err := NewArrow(testMeta, Pt(0, 0), Pt(10, 0), DefaultStyle())
	if err != nil {
		t.Fatalf("NewArrow: %v", err)
	}
	moved := l.Translate(5, 5)
	want := Segment{Start: Pt(5, 5), End: Pt(15, 5)}
	if diff := cmp.Diff(want, *moved.Segment); diff != "" {
		t.Errorf("segment mismatch (-want +got):\n%s", diff)
	}
	if l.Segment.Start != Pt(0, 0) {
		t.Errorf("original modified by Translate")
	}
	if moved.X != 5 || moved.Y != 5 {
		t.Errorf("bounds not moved: %+v", moved.Bounds())
	}
}

func TestWithTextKeepsID(t *testing.T) {
	txt, err := NewText(testMeta, Pt(0, 0), TextPayload{Content: "a", Size: 10}, DefaultStyle())
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	got, err := txt.WithText("hello")
	if err != nil {
		t.Fatalf("WithText: %v", err)
	}
	if got.ID != txt.ID || got.Text.Content != "hello" {
		t.Errorf("unexpected replacement %+v", got)
	}
	if got.Width <= txt.Width {
		t.Errorf("box not re-estimated: %v <= %v", got.Width, txt.Width)
	}
	r, _ := NewRectangle(testMeta, Rect{Width: 1, Height: 1}, DefaultStyle())
	if _, err := r.WithText("x"); err == nil {
		t.Error("expected WithText on rectangle to fail")
	}
}

func TestDegenerate(t *testing.T) {
	zero, _ := NewRectangle(testMeta, Rect{X: 3, Y: 3}, DefaultStyle())
	thin, _ := NewRectangle(testMeta, Rect{X: 3, Y: 3, Width: 4}, DefaultStyle())
	dot, _ := NewPath(testMeta, []Point{Pt(1, 1)}, DefaultStyle())
	still, _ := NewPath(testMeta, []Point{Pt(1, 1), Pt(1, 1)}, DefaultStyle())
	stroke, _ := NewPath(testMeta, []Point{Pt(1, 1), Pt(2, 1)}, DefaultStyle())
	line, _ := NewLine(testMeta, Pt(2, 2), Pt(2, 2), DefaultStyle())

	tests := []struct {
		name string
		a    Annotation
		want bool
	}{
		{"zero rect", zero, true},
		{"thin rect", thin, false},
		{"single point path", dot, true},
		{"repeated point path", still, true},
		{"two point path", stroke, false},
		{"zero line", line, true},
	}
	for _, tc := range tests {
		if got := tc.a.Degenerate(); got != tc.want {
			t.Errorf("%s: Degenerate() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHitTest(t *testing.T) {
	style := DefaultStyle()
	rect, _ := NewRectangle(testMeta, Rect{X: 10, Y: 10, Width: 20, Height: 20}, style)
	circle, _ := NewCircle(testMeta, Rect{X: 0, Y: 0, Width: 20, Height: 20}, style)
	line, _ := NewLine(testMeta, Pt(0, 0), Pt(100, 0), style)

	if !rect.HitTest(Pt(15, 15), 0) {
		t.Error("rect should contain interior point")
	}
	if rect.HitTest(Pt(40, 40), 2) {
		t.Error("rect should not contain far point")
	}
	if circle.HitTest(Pt(1, 1), 0) {
		t.Error("circle corner should miss")
	}
	if !circle.HitTest(Pt(10, 10), 0) {
		t.Error("circle centre should hit")
	}
	if !line.HitTest(Pt(50, 2), 2) {
		t.Error("point near line should hit")
	}
	if line.HitTest(Pt(50, 10), 2) {
		t.Error("point far from line should miss")
	}
}

func TestAnnotationJSON(t *testing.T) {
	s := Style{Stroke: RGB(0, 0, 255), Fill: Color{R: 255, G: 255, A: 128}, StrokeWidth: 3, Opacity: 0.5}
	a, err := NewText(testMeta, Pt(4, 8), TextPayload{Content: "note", Font: "goregular", Size: 14, Align: AlignCenter}, s)
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Annotation
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}
