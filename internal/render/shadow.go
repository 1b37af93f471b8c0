package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ShadowOptions configures the drop shadow placed under exported pages.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions is a soft shadow down and to the right.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{Radius: 24, Offset: image.Pt(16, 16), Opacity: 0.55}
}

// DropShadow places img over a blurred copy of its alpha channel. The result
// has a zero origin; shift is where img's top-left corner landed.
func DropShadow(img *image.RGBA, opts ShadowOptions) (out *image.RGBA, shift image.Point) {
	if img == nil || img.Bounds().Empty() || opts.Opacity <= 0 {
		return img, image.Point{}
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	canvas := src.Union(shadow)
	shift = src.Min.Sub(canvas.Min)

	mask := image.NewAlpha(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				mask.SetAlpha(x-padded.Min.X, y-padded.Min.Y, color.Alpha{A: a})
			}
		}
	}
	boxBlur(mask, radius)

	out = image.NewRGBA(canvas.Sub(canvas.Min))
	tint := image.NewUniform(color.NRGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(out, mask.Bounds().Add(shadow.Min.Sub(canvas.Min)), tint, image.Point{}, mask, image.Point{}, draw.Over)
	draw.Draw(out, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return out, shift
}

// boxBlur blurs m in place with a separable box of the given radius.
func boxBlur(m *image.Alpha, radius int) {
	if radius <= 0 {
		return
	}
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	line := make([]int, max(w, h)+1)
	blur1D := func(n int, at func(i int) *uint8) {
		for i := 0; i < n; i++ {
			line[i+1] = line[i] + int(*at(i))
		}
		for i := 0; i < n; i++ {
			lo, hi := max(i-radius, 0), min(i+radius, n-1)
			*at(i) = uint8((line[hi+1] - line[lo]) / (hi - lo + 1))
		}
	}
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride:]
		blur1D(w, func(i int) *uint8 { return &row[i] })
	}
	for x := 0; x < w; x++ {
		blur1D(h, func(i int) *uint8 { return &m.Pix[i*m.Stride+x] })
	}
}
