package engine

import (
	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/viewport"
)

// Viewport returns the current view parameters.
func (e *Editor) Viewport() viewport.Viewport { return e.view }

// SetZoom sets the zoom factor, clamped to the configured range.
func (e *Editor) SetZoom(z float64) {
	e.view.Zoom = viewport.ClampZoomRange(z, e.zoomMin, e.zoomMax)
}

// ZoomAt scales the view by factor keeping the screen point s fixed.
func (e *Editor) ZoomAt(s annotation.Point, factor float64) {
	next := e.view.ZoomAbout(s, factor)
	if z := viewport.ClampZoomRange(next.Zoom, e.zoomMin, e.zoomMax); z != next.Zoom {
		next = e.view.ZoomAbout(s, z/e.view.Zoom)
	}
	e.view = next
}

// SetRotation sets the rotation in degrees, normalised to [0, 360).
func (e *Editor) SetRotation(deg float64) { e.view.Rotation = viewport.NormalizeRotation(deg) }

// Rotate adds deg to the current rotation.
func (e *Editor) Rotate(deg float64) { e.SetRotation(e.view.Rotation + deg) }

// SetPan sets the screen offset of the page.
func (e *Editor) SetPan(p annotation.Point) { e.view.Pan = p }

// SetCanvasSize records the on-screen canvas size.
func (e *Editor) SetCanvasSize(w, h float64) {
	e.view.CanvasWidth, e.view.CanvasHeight = w, h
}

// FitPage zooms so the current page fits the canvas and centres it.
func (e *Editor) FitPage() {
	p := e.pages[e.page].Size
	e.SetZoom(e.view.Fit(p.Width, p.Height))
	e.view.Rotation = 0
	e.view.Pan = annotation.Pt(
		(e.view.CanvasWidth-p.Width*e.view.Zoom)/2,
		(e.view.CanvasHeight-p.Height*e.view.Zoom)/2,
	)
}

// ScreenToDocument maps a screen point through the current viewport.
func (e *Editor) ScreenToDocument(p annotation.Point) annotation.Point {
	return viewport.ToDocumentSpace(p, e.view)
}

// DocumentToScreen maps a document point through the current viewport.
func (e *Editor) DocumentToScreen(p annotation.Point) annotation.Point {
	return viewport.ToScreenSpace(p, e.view)
}
