package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/viewport"
)

// Chrome holds the editor-only colours of the on-screen view.
type Chrome struct {
	Backdrop    annotation.Color
	BackdropAlt annotation.Color
	Preview     annotation.Color
	Selection   annotation.Color
	Handle      annotation.Color
}

// DefaultChrome is used when no theme supplies colours.
func DefaultChrome() Chrome {
	return Chrome{
		Backdrop:    annotation.RGB(0x3a, 0x3a, 0x3a),
		BackdropAlt: annotation.RGB(0x44, 0x44, 0x44),
		Preview:     annotation.RGB(0x1e, 0x90, 0xff),
		Selection:   annotation.RGB(0x1e, 0x90, 0xff),
		Handle:      annotation.RGB(0xff, 0xff, 0xff),
	}
}

const (
	checkerSize = 8
	handleSize  = 7
)

// View renders the page as seen through vp: a checkerboard backdrop, the
// composition with preview, and selection handles in screen space.
func View(s Scene, vp viewport.Viewport, ch Chrome) (*image.RGBA, error) {
	cw, chh := int(vp.CanvasWidth), int(vp.CanvasHeight)
	if cw <= 0 || chh <= 0 {
		return nil, fmt.Errorf("view: canvas %dx%d: %w", cw, chh, ErrEmptyScene)
	}
	page, err := Compose(s, Options{Preview: true, PreviewColor: &ch.Preview})
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, cw, chh))
	checkerboard(dst, ch.Backdrop.NRGBA(), ch.BackdropAlt.NRGBA())

	m := vp.Matrix()
	aff := f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
	interp := draw.Interpolator(draw.ApproxBiLinear)
	if vp.Rotation == 0 && vp.Zoom >= 1 {
		interp = draw.NearestNeighbor
	}
	interp.Transform(dst, aff, page, page.Bounds(), draw.Over, nil)

	if len(s.Selected) == 0 {
		return dst, nil
	}
	c := gg.NewContextForImage(dst)
	defer c.Close()
	for _, a := range s.Selected {
		if err := selectionOutline(c, a.Bounds(), vp, ch); err != nil {
			return nil, fmt.Errorf("draw selection: %w", err)
		}
	}
	return toRGBA(c.Image()), nil
}

func checkerboard(dst *image.RGBA, a, b color.NRGBA) {
	bounds := dst.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += checkerSize {
		for x := bounds.Min.X; x < bounds.Max.X; x += checkerSize {
			col := a
			if (x/checkerSize+y/checkerSize)%2 == 1 {
				col = b
			}
			r := image.Rect(x, y, x+checkerSize, y+checkerSize).Intersect(bounds)
			draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
		}
	}
}

// selectionOutline draws the transformed bounding box with square handles on
// its corners. Handles keep their screen size at every zoom.
func selectionOutline(c *gg.Context, r annotation.Rect, vp viewport.Viewport, ch Chrome) error {
	corners := []annotation.Point{
		annotation.Pt(r.X, r.Y),
		annotation.Pt(r.X+r.Width, r.Y),
		annotation.Pt(r.X+r.Width, r.Y+r.Height),
		annotation.Pt(r.X, r.Y+r.Height),
	}
	for i, p := range corners {
		corners[i] = viewport.ToScreenSpace(p, vp)
	}
	c.MoveTo(corners[0].X, corners[0].Y)
	for _, p := range corners[1:] {
		c.LineTo(p.X, p.Y)
	}
	c.ClosePath()
	if err := strokeWith(c, ch.Selection, 1, stroke{dash: []float64{4, 3}}); err != nil {
		return err
	}
	half := float64(handleSize) / 2
	for _, p := range corners {
		c.DrawRectangle(p.X-half, p.Y-half, handleSize, handleSize)
		if err := fillWith(c, ch.Handle); err != nil {
			return err
		}
		c.DrawRectangle(p.X-half, p.Y-half, handleSize, handleSize)
		if err := strokeWith(c, ch.Selection, 1, stroke{}); err != nil {
			return err
		}
	}
	return nil
}
