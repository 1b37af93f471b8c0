package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/render"
	"github.com/example/canvasmark/internal/tool"
)

// Rasterizer produces the base raster of each page.
type Rasterizer interface {
	Pages(ctx context.Context) ([]PageSize, error)
	RenderPage(ctx context.Context, index int) (image.Image, error)
}

// ExportSink receives the exported page as PNG bytes.
type ExportSink interface {
	Export(ctx context.Context, png []byte) error
}

// BackgroundRemover returns a copy of img with its background removed.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, img image.Image) (image.Image, error)
}

// TextRecognizer extracts text from img.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Open creates an editor for the pages of r and loads every page. Pages
// that fail to render stay failed; the others are usable.
func Open(ctx context.Context, r Rasterizer, opts ...Option) (*Editor, error) {
	sizes, err := r.Pages(ctx)
	if err != nil {
		return nil, &RenderError{Page: -1, Err: err}
	}
	if len(sizes) == 0 {
		return nil, &RenderError{Page: -1, Err: errors.New("document has no pages")}
	}
	e := New(append(opts, WithPages(sizes...))...)
	for i := range sizes {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		_ = e.LoadPage(ctx, r, i)
	}
	return e, nil
}

// LoadPage renders page i with r and hands the result to SetPageRaster.
func (e *Editor) LoadPage(ctx context.Context, r Rasterizer, i int) error {
	if err := e.MarkPagePending(i); err != nil {
		return err
	}
	img, err := r.RenderPage(ctx, i)
	return e.SetPageRaster(i, img, err)
}

// ExportTo encodes the current page and passes it to sink.
func (e *Editor) ExportTo(ctx context.Context, sink ExportSink) error {
	img, err := e.ExportDocument()
	if err != nil {
		return err
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := sink.Export(ctx, data); err != nil {
		return &ServiceError{Service: "export", Err: err}
	}
	return nil
}

// RemoveBackground replaces the current page raster with svc's result. The
// page is unchanged on failure. Rasters are not part of history.
func (e *Editor) RemoveBackground(ctx context.Context, svc BackgroundRemover) error {
	p := e.pages[e.page]
	if p.State != PageReady || p.Raster == nil {
		return &RenderError{Page: e.page, Err: ErrPageNotReady}
	}
	out, err := svc.RemoveBackground(ctx, p.Raster)
	if err != nil {
		e.ui.Message = "background removal failed"
		return &ServiceError{Service: "background removal", Err: err}
	}
	if out == nil {
		return &ServiceError{Service: "background removal", Err: errors.New("empty result")}
	}
	return e.SetPageRaster(e.page, out, nil)
}

// RecognizeText runs OCR over the exported page.
func (e *Editor) RecognizeText(ctx context.Context, svc TextRecognizer) (string, error) {
	img, err := e.ExportDocument()
	if err != nil {
		return "", err
	}
	txt, err := svc.Recognize(ctx, img)
	if err != nil {
		e.ui.Message = "text recognition failed"
		return "", &ServiceError{Service: "text recognition", Err: err}
	}
	return strings.TrimSpace(txt), nil
}

// InsertRecognizedText runs OCR and places the result as a text annotation
// at the page origin of the active layer.
func (e *Editor) InsertRecognizedText(ctx context.Context, svc TextRecognizer) (annotation.Annotation, error) {
	txt, err := e.RecognizeText(ctx, svc)
	if err != nil {
		return annotation.Annotation{}, err
	}
	if txt == "" {
		return annotation.Annotation{}, &ServiceError{Service: "text recognition", Err: errors.New("no text found")}
	}
	l := e.layers.ActiveLayer()
	ts, ok := e.tools.Get(tool.NameText).(tool.Text)
	if !ok {
		return annotation.Annotation{}, fmt.Errorf("%w: text tool settings hold %T", ErrInvariantViolation, e.tools.Get(tool.NameText))
	}
	if ts.Size <= 0 {
		return annotation.Annotation{}, &ValidationError{Field: "text.size", Reason: fmt.Sprintf("text tool font size must be positive to place recognized text, got %g", ts.Size)}
	}
	a, err := annotation.NewText(
		annotation.Meta{ID: e.newAnnotationID(), Layer: l.ID, Page: e.page},
		annotation.Pt(ts.Size, ts.Size),
		annotation.TextPayload{Content: txt, Font: ts.Font, Size: ts.Size, Align: ts.Align},
		annotation.Style{Stroke: ts.Color, Fill: annotation.None, Opacity: ts.Opacity},
	)
	if err != nil {
		return annotation.Annotation{}, err
	}
	if err := e.layers.Insert(a); err != nil {
		return annotation.Annotation{}, err
	}
	e.commit("ocr", "id", a.ID)
	e.ui.Selection = a.ID
	return a, nil
}
