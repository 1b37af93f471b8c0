// Package engine is the editor facade: it owns the document, routes pointer
// input through the viewport and tool machine, records history and renders.
//
// An Editor is not safe for concurrent use. Hosts call it from one event loop.
package engine

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/history"
	"github.com/example/canvasmark/internal/layer"
	"github.com/example/canvasmark/internal/render"
	"github.com/example/canvasmark/internal/tool"
	"github.com/example/canvasmark/internal/viewport"
)

// hitTolerance is the select slop in screen pixels.
const hitTolerance = 4.0

// EditorUIState is transient editor state. It never enters history.
type EditorUIState struct {
	Selection   string
	HoveredTool tool.Name
	Message     string
}

// Editor holds one document and its editing session.
type Editor struct {
	pages   []Page
	page    int
	layers  *layer.Manager
	history *history.History
	tools   *tool.Settings
	active  tool.Name
	machine tool.Machine
	view    viewport.Viewport
	ui      EditorUIState
	chrome  render.Chrome
	log     *slog.Logger

	newAnnotationID Generator
	newLayerID      Generator
	historyDepth    int
	zoomMin         float64
	zoomMax         float64
	layerCount      int
}

// New creates an editor with one empty layer. Without page options the
// document is a single blank 800x600 page.
func New(opts ...Option) *Editor {
	e := &Editor{
		tools:           tool.NewSettings(),
		active:          tool.NameSelect,
		view:            viewport.Default(800, 600),
		chrome:          render.DefaultChrome(),
		log:             nopLogger(),
		newAnnotationID: Prefixed("ann-", UUIDv7()),
		newLayerID:      Prefixed("layer-", UUIDv7()),
		historyDepth:    history.MaxDepth,
		zoomMin:         viewport.MinZoom,
		zoomMax:         viewport.MaxZoom,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.pages) == 0 {
		e.pages = newPages([]PageSize{{Width: 800, Height: 600}}, PageReady)
	}
	e.zoomMin = viewport.ClampZoom(e.zoomMin)
	e.zoomMax = viewport.ClampZoom(max(e.zoomMax, e.zoomMin))
	e.view.Zoom = viewport.ClampZoomRange(1, e.zoomMin, e.zoomMax)
	e.layers = layer.New(func() string { return e.newLayerID() }, e.nextLayerName())
	e.history = history.New(e.historyDepth)
	e.history.Reset(e.layers.State())
	return e
}

func (e *Editor) nextLayerName() string {
	e.layerCount++
	return fmt.Sprintf("Layer %d", e.layerCount)
}

func (e *Editor) commit(reason string, attrs ...any) {
	snap := e.history.Commit(e.layers.State())
	e.log.Debug("commit", append([]any{"reason", reason, "seq", snap.Seq, "history", e.history.Len()}, attrs...)...)
}

// UIState returns the transient UI state.
func (e *Editor) UIState() EditorUIState { return e.ui }

// SetHoveredTool records the toolbar entry under the pointer.
func (e *Editor) SetHoveredTool(n tool.Name) { e.ui.HoveredTool = n }

// SetMessage sets the status line shown by the host.
func (e *Editor) SetMessage(msg string) { e.ui.Message = msg }

// State returns a deep copy of the layers and annotations.
func (e *Editor) State() layer.State { return e.layers.State() }

// Layers returns the layers in paint order.
func (e *Editor) Layers() []layer.Layer { return e.layers.Layers() }

// ActiveLayer returns the layer receiving new annotations.
func (e *Editor) ActiveLayer() layer.Layer { return e.layers.ActiveLayer() }

// Annotations returns a layer's annotations in paint order.
func (e *Editor) Annotations(layerID string) []annotation.Annotation {
	return e.layers.Annotations(layerID)
}

// Annotation returns the annotation with the given id.
func (e *Editor) Annotation(id string) (annotation.Annotation, bool) { return e.layers.Get(id) }

// HistoryLen returns the number of retained snapshots.
func (e *Editor) HistoryLen() int { return e.history.Len() }

// CanUndo reports whether Undo would change the document.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Undo restores the previous snapshot. It reports false at the oldest entry.
func (e *Editor) Undo() bool {
	e.machine.Cancel()
	snap, ok := e.history.Undo()
	if !ok {
		return false
	}
	return e.restore(snap, "undo")
}

// Redo reapplies the next snapshot. It reports false at the newest entry.
func (e *Editor) Redo() bool {
	e.machine.Cancel()
	snap, ok := e.history.Redo()
	if !ok {
		return false
	}
	return e.restore(snap, "redo")
}

// restore applies snap. The active layer is not history, so the current
// choice survives when the layer still exists in snap.
func (e *Editor) restore(snap history.Snapshot, op string) bool {
	st := snap.State
	for _, l := range st.Layers {
		if l.ID == e.layers.Active() {
			st.Active = l.ID
			break
		}
	}
	if err := e.layers.Restore(st); err != nil {
		e.log.Error("restore snapshot", "op", op, "seq", snap.Seq, "err", err)
		return false
	}
	if _, ok := e.layers.Get(e.ui.Selection); !ok {
		e.ui.Selection = ""
	}
	e.log.Debug(op, "seq", snap.Seq, "cursor", e.history.Cursor())
	return true
}

// scene gathers the current page for the renderer.
func (e *Editor) scene(withPreview bool) render.Scene {
	p := e.pages[e.page]
	s := render.Scene{Base: p.Raster, Width: int(p.Size.Width), Height: int(p.Size.Height)}
	for _, l := range e.layers.Layers() {
		rl := render.Layer{Visible: l.Visible, Opacity: l.Opacity, Blend: l.Blend}
		for _, a := range e.layers.Annotations(l.ID) {
			if a.Page == e.page {
				rl.Annotations = append(rl.Annotations, a)
			}
		}
		s.Layers = append(s.Layers, rl)
	}
	if withPreview {
		if pv, ok := e.machine.Preview(); ok {
			s.Preview = &pv
		}
		if a, ok := e.layers.Get(e.ui.Selection); ok && a.Page == e.page {
			s.Selected = []annotation.Annotation{a}
		}
	}
	return s
}

func (e *Editor) exportablePage() error {
	p := e.pages[e.page]
	switch p.State {
	case PageFailed:
		return p.Err
	case PagePending:
		return &RenderError{Page: e.page, Err: ErrPageNotReady}
	}
	return nil
}

// ExportDocument composes the current page without preview or chrome.
func (e *Editor) ExportDocument() (*image.RGBA, error) {
	if err := e.exportablePage(); err != nil {
		return nil, err
	}
	img, err := render.Export(e.scene(false))
	if err != nil {
		return nil, &RenderError{Page: e.page, Err: err}
	}
	return img, nil
}

// Render draws the on-screen view: backdrop, page, layers, preview and
// selection handles under the current viewport.
func (e *Editor) Render() (*image.RGBA, error) {
	img, err := render.View(e.scene(true), e.view, e.chrome)
	if err != nil {
		return nil, &RenderError{Page: e.page, Err: err}
	}
	return img, nil
}
