package engine

import (
	"log/slog"

	"github.com/example/canvasmark/internal/render"
	"github.com/example/canvasmark/internal/tool"
)

// Option configures an Editor.
type Option func(*Editor)

// WithPages declares pages whose rasters arrive later through SetPageRaster
// or LoadPage. Pointer input is ignored until a page is ready.
func WithPages(sizes ...PageSize) Option {
	return func(e *Editor) { e.pages = newPages(sizes, PagePending) }
}

// WithBlankPages declares pages that are drawn on plain white.
func WithBlankPages(sizes ...PageSize) Option {
	return func(e *Editor) { e.pages = newPages(sizes, PageReady) }
}

// WithLogger routes engine diagnostics to l. A nil logger silences them.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l == nil {
			l = nopLogger()
		}
		e.log = l
	}
}

// WithIDGenerator sets the source of annotation and layer ids.
func WithIDGenerator(gen Generator) Option {
	return func(e *Editor) {
		e.newAnnotationID = gen
		e.newLayerID = gen
	}
}

// WithHistoryDepth bounds the number of undo snapshots.
func WithHistoryDepth(n int) Option { return func(e *Editor) { e.historyDepth = n } }

// WithToolSettings replaces the factory tool settings. The settings are copied.
func WithToolSettings(s *tool.Settings) Option {
	return func(e *Editor) {
		if s != nil {
			e.tools = s.Clone()
		}
	}
}

// WithZoomRange narrows the zoom limits. Values outside [0.1, 5] are clamped.
func WithZoomRange(lo, hi float64) Option {
	return func(e *Editor) { e.zoomMin, e.zoomMax = lo, hi }
}

// WithChrome sets the editor-only colours used by Render.
func WithChrome(c render.Chrome) Option { return func(e *Editor) { e.chrome = c } }

// WithCanvasSize sets the on-screen canvas size.
func WithCanvasSize(w, h float64) Option {
	return func(e *Editor) { e.view.CanvasWidth, e.view.CanvasHeight = w, h }
}
