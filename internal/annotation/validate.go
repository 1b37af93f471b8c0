package annotation

import (
	"fmt"
	"math"
)

// ValidationError reports an attribute that is out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func checkLength(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Reason: "must be finite"}
	}
	if v < 0 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must not be negative, got %g", v)}
	}
	return nil
}

func checkCoord(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Reason: "must be finite"}
	}
	return nil
}

func (s Style) validate() error {
	if err := checkLength("style.strokeWidth", s.StrokeWidth); err != nil {
		return err
	}
	if math.IsNaN(s.Opacity) || s.Opacity < 0 || s.Opacity > 1 {
		return &ValidationError{Field: "style.opacity", Reason: fmt.Sprintf("must be within [0,1], got %g", s.Opacity)}
	}
	return nil
}

// Validate checks the invariants of a single annotation. Layer and page
// references are checked by the document that owns it.
func (a Annotation) Validate() error {
	if !a.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", a.Kind)}
	}
	if a.Page < 0 {
		return &ValidationError{Field: "page", Reason: fmt.Sprintf("must not be negative, got %d", a.Page)}
	}
	if err := checkCoord("x", a.X); err != nil {
		return err
	}
	if err := checkCoord("y", a.Y); err != nil {
		return err
	}
	// Text size is checked before the box derived from it.
	if a.Kind == KindText && a.Text != nil {
		if err := checkLength("text.size", a.Text.Size); err != nil {
			return err
		}
	}
	if err := checkLength("width", a.Width); err != nil {
		return err
	}
	if err := checkLength("height", a.Height); err != nil {
		return err
	}
	if err := a.Style.validate(); err != nil {
		return err
	}
	switch a.Kind {
	case KindText:
		if a.Text == nil {
			return &ValidationError{Field: "text", Reason: "payload missing"}
		}
		if _, err := ParseAlign(string(a.Text.Align)); err != nil {
			return err
		}
	case KindLine, KindArrow:
		if a.Segment == nil {
			return &ValidationError{Field: "segment", Reason: "payload missing"}
		}
		for _, p := range []Point{a.Segment.Start, a.Segment.End} {
			if err := checkCoord("segment", p.X); err != nil {
				return err
			}
			if err := checkCoord("segment", p.Y); err != nil {
				return err
			}
		}
	case KindPath:
		if len(a.Points) == 0 {
			return &ValidationError{Field: "points", Reason: "path needs at least one point"}
		}
		for _, p := range a.Points {
			if err := checkCoord("points", p.X); err != nil {
				return err
			}
			if err := checkCoord("points", p.Y); err != nil {
				return err
			}
		}
	case KindStamp:
		if a.Label == "" {
			return &ValidationError{Field: "label", Reason: "stamp label cannot be empty"}
		}
	}
	return nil
}
