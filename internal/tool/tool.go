// Package tool implements the drawing tools and the pointer state machine
// that turns press, move and release events into annotations.
package tool

import (
	"fmt"

	"github.com/example/canvasmark/internal/annotation"
)

// Name identifies a tool.
type Name string

const (
	NameSelect    Name = "select"
	NameText      Name = "text"
	NameRectangle Name = "rectangle"
	NameCircle    Name = "circle"
	NameLine      Name = "line"
	NameArrow     Name = "arrow"
	NamePath      Name = "path"
	NameHighlight Name = "highlight"
	NameStamp     Name = "stamp"
)

// Names lists every tool in toolbar order.
func Names() []Name {
	return []Name{NameSelect, NameText, NameRectangle, NameCircle, NameLine, NameArrow, NamePath, NameHighlight, NameStamp}
}

// ParseName validates s as a tool name.
func ParseName(s string) (Name, error) {
	for _, n := range Names() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// Tool is one of Select, Text, Rectangle, Circle, Line, Arrow, Path,
// Highlight or Stamp. Each variant carries only its own settings.
type Tool interface {
	Name() Name
	sealed()
}

// Select hit-tests existing annotations.
type Select struct{}

// Text places a text annotation on press.
type Text struct {
	Color   annotation.Color
	Font    string
	Size    float64
	Align   annotation.Align
	Opacity float64
	Content string
}

// Rectangle drags out a rectangle.
type Rectangle struct {
	Stroke  annotation.Color
	Fill    annotation.Color
	Width   float64
	Opacity float64
}

// Circle drags out an ellipse inscribed in the dragged box.
type Circle struct {
	Stroke  annotation.Color
	Fill    annotation.Color
	Width   float64
	Opacity float64
}

// Line drags a straight line.
type Line struct {
	Stroke  annotation.Color
	Width   float64
	Opacity float64
}

// Arrow drags a line with a head at the release point.
type Arrow struct {
	Stroke  annotation.Color
	Width   float64
	Opacity float64
}

// Path records a freehand stroke.
type Path struct {
	Stroke  annotation.Color
	Width   float64
	Opacity float64
}

// Highlight drags a translucent marker box.
type Highlight struct {
	Color   annotation.Color
	Opacity float64
}

// Stamp places a boxed label on press.
type Stamp struct {
	Color   annotation.Color
	Label   string
	Size    float64
	Width   float64
	Opacity float64
}

func (Select) Name() Name    { return NameSelect }
func (Text) Name() Name      { return NameText }
func (Rectangle) Name() Name { return NameRectangle }
func (Circle) Name() Name    { return NameCircle }
func (Line) Name() Name      { return NameLine }
func (Arrow) Name() Name     { return NameArrow }
func (Path) Name() Name      { return NamePath }
func (Highlight) Name() Name { return NameHighlight }
func (Stamp) Name() Name     { return NameStamp }

func (Select) sealed()    {}
func (Text) sealed()      {}
func (Rectangle) sealed() {}
func (Circle) sealed()    {}
func (Line) sealed()      {}
func (Arrow) sealed()     {}
func (Path) sealed()      {}
func (Highlight) sealed() {}
func (Stamp) sealed()     {}

var (
	red    = annotation.RGB(255, 0, 0)
	black  = annotation.RGB(0, 0, 0)
	yellow = annotation.RGB(255, 235, 59)
)

// Default returns the factory settings of the named tool.
func Default(n Name) Tool {
	switch n {
	case NameText:
		return Text{Color: black, Font: "goregular", Size: 16, Align: annotation.AlignLeft, Opacity: 1, Content: "Text"}
	case NameRectangle:
		return Rectangle{Stroke: red, Fill: annotation.None, Width: 2, Opacity: 1}
	case NameCircle:
		return Circle{Stroke: red, Fill: annotation.None, Width: 2, Opacity: 1}
	case NameLine:
		return Line{Stroke: red, Width: 2, Opacity: 1}
	case NameArrow:
		return Arrow{Stroke: red, Width: 2, Opacity: 1}
	case NamePath:
		return Path{Stroke: red, Width: 3, Opacity: 1}
	case NameHighlight:
		return Highlight{Color: yellow, Opacity: 0.4}
	case NameStamp:
		return Stamp{Color: red, Label: "APPROVED", Size: 24, Width: 3, Opacity: 1}
	}
	return Select{}
}

// IsDrag reports whether t creates its annotation over a press, move,
// release sequence.
func IsDrag(t Tool) bool {
	switch t.(type) {
	case Rectangle, Circle, Line, Arrow, Path, Highlight:
		return true
	case Select, Text, Stamp:
		return false
	}
	return false
}

// style converts tool settings into an annotation style.
func style(t Tool) annotation.Style {
	switch v := t.(type) {
	case Text:
		return annotation.Style{Stroke: v.Color, Fill: annotation.None, Opacity: v.Opacity}
	case Rectangle:
		return annotation.Style{Stroke: v.Stroke, Fill: v.Fill, StrokeWidth: v.Width, Opacity: v.Opacity}
	case Circle:
		return annotation.Style{Stroke: v.Stroke, Fill: v.Fill, StrokeWidth: v.Width, Opacity: v.Opacity}
	case Line:
		return annotation.Style{Stroke: v.Stroke, Fill: annotation.None, StrokeWidth: v.Width, Opacity: v.Opacity}
	case Arrow:
		return annotation.Style{Stroke: v.Stroke, Fill: annotation.None, StrokeWidth: v.Width, Opacity: v.Opacity}
	case Path:
		return annotation.Style{Stroke: v.Stroke, Fill: annotation.None, StrokeWidth: v.Width, Opacity: v.Opacity}
	case Highlight:
		return annotation.Style{Stroke: annotation.None, Fill: v.Color, Opacity: v.Opacity}
	case Stamp:
		return annotation.Style{Stroke: v.Color, Fill: annotation.None, StrokeWidth: v.Width, Opacity: v.Opacity}
	case Select:
	}
	return annotation.DefaultStyle()
}
