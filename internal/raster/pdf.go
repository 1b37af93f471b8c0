package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	xdraw "golang.org/x/image/draw"

	"github.com/example/canvasmark/internal/engine"
)

// PageRenderer rasterises one PDF page. index is zero based; size is the
// page size in points.
type PageRenderer interface {
	RenderPDFPage(ctx context.Context, index int, size engine.PageSize) (image.Image, error)
}

// PageRendererFunc adapts a function to PageRenderer.
type PageRendererFunc func(ctx context.Context, index int, size engine.PageSize) (image.Image, error)

// RenderPDFPage calls f.
func (f PageRendererFunc) RenderPDFPage(ctx context.Context, index int, size engine.PageSize) (image.Image, error) {
	return f(ctx, index, size)
}

// PDFSource exposes the pages of a PDF document.
type PDFSource struct {
	sizes  []engine.PageSize
	render PageRenderer
}

// ReadPDF validates the document and reads its page geometry. A nil render
// yields blank white pages of the page size.
func ReadPDF(rs io.ReadSeeker, render PageRenderer) (*PDFSource, error) {
	ctx, err := api.ReadValidateAndOptimize(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page dims: %w", err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	s := &PDFSource{render: render}
	for _, d := range dims {
		s.sizes = append(s.sizes, engine.PageSize{Width: math.Round(d.Width), Height: math.Round(d.Height)})
	}
	return s, nil
}

// Pages implements engine.Rasterizer.
func (s *PDFSource) Pages(context.Context) ([]engine.PageSize, error) {
	return append([]engine.PageSize(nil), s.sizes...), nil
}

// RenderPage implements engine.Rasterizer.
func (s *PDFSource) RenderPage(ctx context.Context, i int) (image.Image, error) {
	if i < 0 || i >= len(s.sizes) {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.render != nil {
		return s.render.RenderPDFPage(ctx, i, s.sizes[i])
	}
	return Blank(s.sizes[i]), nil
}

// Blank returns a white page of the given size.
func Blank(size engine.PageSize) *image.RGBA {
	w, h := max(1, int(size.Width)), max(1, int(size.Height))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	return img
}
