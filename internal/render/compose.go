// Package render composes the base raster, the visible layers and the drag
// preview into a bitmap.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/layer"
)

// ErrEmptyScene is returned when neither a base raster nor a page size is known.
var ErrEmptyScene = errors.New("scene has no size")

// Layer is one layer as the renderer sees it.
type Layer struct {
	Visible     bool
	Opacity     float64
	Blend       layer.BlendMode
	Annotations []annotation.Annotation
}

// Scene is everything drawn for one page.
type Scene struct {
	// Base is the page raster. When nil a white page of Width x Height is used.
	Base          image.Image
	Width, Height int
	Layers        []Layer
	Preview       *annotation.Annotation
	Selected      []annotation.Annotation
}

// Size returns the page size in document units.
func (s Scene) Size() (int, int) {
	if s.Base != nil {
		b := s.Base.Bounds()
		return b.Dx(), b.Dy()
	}
	return s.Width, s.Height
}

// Options controls editor-only parts of the composition.
type Options struct {
	// Preview draws the in-progress object dashed.
	Preview bool
	// PreviewColor overrides the preview stroke colour when set.
	PreviewColor *annotation.Color
	// PreviewDash is the dash pattern of the preview. Defaults to 6,4.
	PreviewDash []float64
}

func blendMode(m layer.BlendMode) gg.BlendMode {
	switch m {
	case layer.BlendMultiply:
		return gg.BlendMultiply
	case layer.BlendScreen:
		return gg.BlendScreen
	case layer.BlendOverlay:
		return gg.BlendOverlay
	}
	return gg.BlendNormal
}

// Compose paints the base raster, then each visible layer in order with its
// opacity and blend mode, then the preview when requested.
func Compose(s Scene, opts Options) (*image.RGBA, error) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyScene
	}
	c := gg.NewContext(w, h)
	defer c.Close()

	if s.Base != nil {
		c.DrawImage(gg.ImageBufFromImage(straightAlpha(s.Base)), 0, 0)
	} else {
		c.SetRGBA(1, 1, 1, 1)
		c.DrawRectangle(0, 0, float64(w), float64(h))
		if err := c.Fill(); err != nil {
			return nil, fmt.Errorf("paint page: %w", err)
		}
	}

	for _, l := range s.Layers {
		if !l.Visible {
			continue
		}
		c.PushLayer(blendMode(l.Blend), l.Opacity)
		for _, a := range l.Annotations {
			if err := paint(c, a, stroke{}); err != nil {
				c.PopLayer()
				return nil, fmt.Errorf("draw %s %s: %w", a.Kind, a.ID, err)
			}
		}
		c.PopLayer()
	}

	if opts.Preview && s.Preview != nil {
		dash := opts.PreviewDash
		if len(dash) == 0 {
			dash = []float64{6, 4}
		}
		if err := paint(c, *s.Preview, stroke{override: opts.PreviewColor, dash: dash}); err != nil {
			return nil, fmt.Errorf("draw preview: %w", err)
		}
	}
	return toRGBA(c.Image()), nil
}

// Export is the composition without preview or editor chrome.
func Export(s Scene) (*image.RGBA, error) {
	return Compose(s, Options{})
}

// EncodePNG encodes img for an export sink.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// straightAlpha returns img in a form ImageBufFromImage reads without
// premultiplying twice. Opaque and NRGBA images are passed through.
func straightAlpha(img image.Image) image.Image {
	switch m := img.(type) {
	case *image.NRGBA:
		return m
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return img
		}
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	xdraw.Draw(out, b, img, b.Min, xdraw.Src)
	return out
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
	return out
}
