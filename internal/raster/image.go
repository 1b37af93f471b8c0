// Package raster provides page sources for the editor: still images and PDF
// documents.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"

	"github.com/example/canvasmark/internal/engine"
)

// ErrUnsupported is returned for input that is neither a known image format
// nor a PDF.
var ErrUnsupported = errors.New("unsupported document format")

// ImageSource is a single-page document backed by a decoded image.
type ImageSource struct {
	img    image.Image
	format string
}

// DecodeImage reads a PNG, JPEG or TIFF image.
func DecodeImage(r io.Reader) (*ImageSource, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &ImageSource{img: img, format: format}, nil
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) *ImageSource {
	return &ImageSource{img: img, format: "memory"}
}

// Format returns the name of the decoder that read the image.
func (s *ImageSource) Format() string { return s.format }

// Pages implements engine.Rasterizer.
func (s *ImageSource) Pages(context.Context) ([]engine.PageSize, error) {
	b := s.img.Bounds()
	return []engine.PageSize{{Width: float64(b.Dx()), Height: float64(b.Dy())}}, nil
}

// RenderPage implements engine.Rasterizer.
func (s *ImageSource) RenderPage(ctx context.Context, i int) (image.Image, error) {
	if i != 0 {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.img, nil
}

// Open picks a source for path by its contents. PDFs are recognised by their
// header; anything else must decode as an image.
func Open(path string, render PageRenderer) (engine.Rasterizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) || strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ReadPDF(bytes.NewReader(data), render)
	}
	return DecodeImage(bytes.NewReader(data))
}
