package engine

import (
	"encoding/json"
	"fmt"

	"github.com/example/canvasmark/internal/layer"
	"github.com/example/canvasmark/internal/tool"
	"github.com/example/canvasmark/internal/viewport"
)

// documentVersion is bumped when the saved layout changes incompatibly.
const documentVersion = 1

// document is the saved form of an Editor. Rasters are not saved.
type document struct {
	Version  int               `json:"version"`
	Pages    []PageSize        `json:"pages"`
	Page     int               `json:"page"`
	State    layer.State       `json:"state"`
	Viewport viewport.Viewport `json:"viewport"`
	Tool     tool.Name         `json:"tool"`
	Tools    *tool.Settings    `json:"tools"`
}

// MarshalJSON saves layers, annotations, viewport, tool settings and page
// sizes.
func (e *Editor) MarshalJSON() ([]byte, error) {
	doc := document{
		Version:  documentVersion,
		Page:     e.page,
		State:    e.layers.State(),
		Viewport: e.view,
		Tool:     e.active,
		Tools:    e.tools,
	}
	for _, p := range e.pages {
		doc.Pages = append(doc.Pages, p.Size)
	}
	return json.Marshal(doc)
}

// Load restores an editor saved with MarshalJSON. Pages come back blank;
// callers attach rasters with SetPageRaster or LoadPage. History starts at
// the loaded state.
func Load(data []byte, opts ...Option) (*Editor, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvariantViolation)
	}
	for _, a := range doc.State.Annotations {
		if a.Page < 0 || a.Page >= len(doc.Pages) {
			return nil, fmt.Errorf("%w: annotation %s references page %d of %d", ErrInvariantViolation, a.ID, a.Page, len(doc.Pages))
		}
	}
	if doc.Page < 0 || doc.Page >= len(doc.Pages) {
		doc.Page = 0
	}
	if doc.Tools != nil {
		opts = append([]Option{WithToolSettings(doc.Tools)}, opts...)
	}
	e := New(append(opts, WithBlankPages(doc.Pages...))...)
	if err := e.layers.Restore(doc.State); err != nil {
		return nil, fmt.Errorf("restore layers: %w", err)
	}
	e.layerCount = e.layers.Len()
	e.page = doc.Page
	if doc.Tool != "" {
		if err := e.SetActiveTool(doc.Tool); err != nil {
			return nil, err
		}
	}
	v := doc.Viewport
	if v.CanvasWidth <= 0 || v.CanvasHeight <= 0 {
		v.CanvasWidth, v.CanvasHeight = e.view.CanvasWidth, e.view.CanvasHeight
	}
	e.view = v
	e.SetZoom(v.Zoom)
	e.SetRotation(v.Rotation)
	e.history.Reset(e.layers.State())
	return e, nil
}
