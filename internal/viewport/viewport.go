// Package viewport maps between screen space and document space.
//
// A document point p is shown on screen at
//
//	Pan · Rc(Rotation) · S(Zoom) · p
//
// where Rc rotates about the centre of the canvas. Every function is pure.
package viewport

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/example/canvasmark/internal/annotation"
)

const (
	MinZoom = 0.1
	MaxZoom = 5.0
)

// Viewport is the on-screen view of one page.
type Viewport struct {
	Zoom         float64          `json:"zoom"`
	Rotation     float64          `json:"rotation"`
	Pan          annotation.Point `json:"pan"`
	CanvasWidth  float64          `json:"canvasWidth"`
	CanvasHeight float64          `json:"canvasHeight"`
}

// Default returns an identity view of a canvas of the given size.
func Default(width, height float64) Viewport {
	return Viewport{Zoom: 1, CanvasWidth: width, CanvasHeight: height}
}

// ClampZoom limits z to [MinZoom, MaxZoom]. NaN collapses to 1.
func ClampZoom(z float64) float64 {
	return ClampZoomRange(z, MinZoom, MaxZoom)
}

// ClampZoomRange limits z to [lo, hi].
func ClampZoomRange(z, lo, hi float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(lo, math.Min(hi, z))
}

// NormalizeRotation maps deg into [0, 360).
func NormalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r = 0
	}
	return r
}

// Matrix returns the document to screen transform.
func (v Viewport) Matrix() gg.Matrix {
	cx, cy := v.CanvasWidth/2, v.CanvasHeight/2
	rot := gg.Translate(cx, cy).
		Multiply(gg.Rotate(v.Rotation * math.Pi / 180)).
		Multiply(gg.Translate(-cx, -cy))
	return gg.Translate(v.Pan.X, v.Pan.Y).
		Multiply(rot).
		Multiply(gg.Scale(v.Zoom, v.Zoom))
}

// InverseMatrix returns the screen to document transform built from the
// exact inverse steps in reverse order.
func (v Viewport) InverseMatrix() gg.Matrix {
	cx, cy := v.CanvasWidth/2, v.CanvasHeight/2
	invRot := gg.Translate(cx, cy).
		Multiply(gg.Rotate(-v.Rotation * math.Pi / 180)).
		Multiply(gg.Translate(-cx, -cy))
	return gg.Scale(1/v.Zoom, 1/v.Zoom).
		Multiply(invRot).
		Multiply(gg.Translate(-v.Pan.X, -v.Pan.Y))
}

// ToScreenSpace maps a document point to screen space.
func ToScreenSpace(p annotation.Point, v Viewport) annotation.Point {
	q := v.Matrix().TransformPoint(gg.Pt(p.X, p.Y))
	return annotation.Pt(q.X, q.Y)
}

// ToDocumentSpace maps a screen point to document space. Zoom must be positive.
func ToDocumentSpace(p annotation.Point, v Viewport) annotation.Point {
	q := v.InverseMatrix().TransformPoint(gg.Pt(p.X, p.Y))
	return annotation.Pt(q.X, q.Y)
}

// WithZoom returns v with a clamped zoom.
func (v Viewport) WithZoom(z float64) Viewport {
	v.Zoom = ClampZoom(z)
	return v
}

// WithRotation returns v with a normalised rotation.
func (v Viewport) WithRotation(deg float64) Viewport {
	v.Rotation = NormalizeRotation(deg)
	return v
}

// ZoomAbout multiplies the zoom by factor keeping the document point under
// screen point s fixed.
func (v Viewport) ZoomAbout(s annotation.Point, factor float64) Viewport {
	anchor := ToDocumentSpace(s, v)
	next := v.WithZoom(v.Zoom * factor)
	moved := ToScreenSpace(anchor, next)
	next.Pan = next.Pan.Add(s.Sub(moved))
	return next
}

// Fit returns the zoom that shows a docW x docH page entirely inside the
// canvas, never enlarging beyond 1.
func (v Viewport) Fit(docW, docH float64) float64 {
	if docW <= 0 || docH <= 0 || v.CanvasWidth <= 0 || v.CanvasHeight <= 0 {
		return 1
	}
	z := math.Min(v.CanvasWidth/docW, v.CanvasHeight/docH)
	if z > 1 {
		z = 1
	}
	return ClampZoom(z)
}
