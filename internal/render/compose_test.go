package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/layer"
	"github.com/example/canvasmark/internal/viewport"
)

func redBox(t *testing.T) annotation.Annotation {
	t.Helper()
	red := annotation.RGB(255, 0, 0)
	a, err := annotation.NewRectangle(annotation.Meta{ID: "r", Layer: "l"},
		annotation.Rect{X: 20, Y: 20, Width: 40, Height: 40},
		annotation.Style{Stroke: red, Fill: red, StrokeWidth: 2, Opacity: 1})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func within(got, want uint8, tol int) bool {
	d := int(got) - int(want)
	return d >= -tol && d <= tol
}

func TestComposeLayerOpacity(t *testing.T) {
	s := Scene{Width: 80, Height: 80, Layers: []Layer{{
		Visible: true, Opacity: 0.5, Blend: layer.BlendNormal,
		Annotations: []annotation.Annotation{redBox(t)},
	}}}
	img, err := Export(s)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	px := img.RGBAAt(40, 40)
	if !within(px.R, 255, 4) || !within(px.G, 128, 8) || !within(px.B, 128, 8) {
		t.Errorf("centre pixel = %+v, want about 50%% red over white", px)
	}
	if px.G > 200 || px.G < 60 {
		t.Errorf("centre pixel %+v is neither white nor opaque red blend", px)
	}
}

func TestComposeOpaqueRed(t *testing.T) {
	s := Scene{Width: 80, Height: 80, Layers: []Layer{{Visible: true, Opacity: 1, Annotations: []annotation.Annotation{redBox(t)}}}}
	img, err := Export(s)
	if err != nil {
		t.Fatal(err)
	}
	if px := img.RGBAAt(40, 40); !within(px.R, 255, 2) || px.G > 4 || px.B > 4 {
		t.Errorf("centre pixel = %+v, want red", px)
	}
	if px := img.RGBAAt(5, 5); px != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("page pixel = %+v, want white", px)
	}
}

func TestComposeSkipsHiddenLayers(t *testing.T) {
	s := Scene{Width: 80, Height: 80, Layers: []Layer{{Visible: false, Opacity: 1, Annotations: []annotation.Annotation{redBox(t)}}}}
	img, err := Export(s)
	if err != nil {
		t.Fatal(err)
	}
	if px := img.RGBAAt(40, 40); px != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("hidden layer painted: %+v", px)
	}
}

func TestComposeBaseRaster(t *testing.T) {
	half := image.NewRGBA(image.Rect(0, 0, 30, 20))
	for i := range half.Pix {
		half.Pix[i] = 0x80
	}
	red := image.NewNRGBA(image.Rect(0, 0, 30, 20))
	for i := 0; i < len(red.Pix); i += 4 {
		copy(red.Pix[i:], []uint8{255, 0, 0, 128})
	}
	opaque := image.NewRGBA(image.Rect(0, 0, 30, 20))
	for i := 0; i < len(opaque.Pix); i += 4 {
		copy(opaque.Pix[i:], []uint8{10, 20, 30, 255})
	}
	tests := []struct {
		name string
		base image.Image
		want color.RGBA
	}{
		{"premultiplied translucent", half, color.RGBA{0x80, 0x80, 0x80, 0x80}},
		{"straight translucent", red, color.RGBA{0x80, 0, 0, 0x80}},
		{"opaque", opaque, color.RGBA{10, 20, 30, 255}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, err := Export(Scene{Base: tc.base, Width: 999, Height: 999})
			if err != nil {
				t.Fatal(err)
			}
			if !img.Bounds().Eq(tc.base.Bounds()) {
				t.Fatalf("bounds = %v, want base bounds", img.Bounds())
			}
			px := img.RGBAAt(10, 10)
			if !within(px.R, tc.want.R, 2) || !within(px.G, tc.want.G, 2) || !within(px.B, tc.want.B, 2) || !within(px.A, tc.want.A, 2) {
				t.Errorf("base pixel = %+v, want %+v", px, tc.want)
			}
		})
	}
}

func TestStraightAlphaPassesThrough(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if got := straightAlpha(n); got != image.Image(n) {
		t.Error("NRGBA image was copied")
	}
	o := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range o.Pix {
		o.Pix[i] = 0xff
	}
	if got := straightAlpha(o); got != image.Image(o) {
		t.Error("opaque image was copied")
	}
	o.Pix[3] = 0x40
	if _, ok := straightAlpha(o).(*image.NRGBA); !ok {
		t.Error("translucent RGBA image was not converted")
	}
}

func TestPreviewOnlyWhenRequested(t *testing.T) {
	line, err := annotation.NewLine(annotation.Meta{Layer: "l"}, annotation.Pt(0, 40), annotation.Pt(80, 40),
		annotation.Style{Stroke: annotation.RGB(0, 0, 0), StrokeWidth: 6, Opacity: 1})
	if err != nil {
		t.Fatal(err)
	}
	s := Scene{Width: 80, Height: 80, Preview: &line}
	exported, err := Export(s)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 80; x++ {
		if exported.RGBAAt(x, 40).R < 250 {
			t.Fatalf("export contains preview pixel at x=%d", x)
		}
	}
	withPreview, err := Compose(s, Options{Preview: true})
	if err != nil {
		t.Fatal(err)
	}
	dark := 0
	light := 0
	for x := 0; x < 80; x++ {
		if withPreview.RGBAAt(x, 40).R < 128 {
			dark++
		} else {
			light++
		}
	}
	if dark == 0 || light == 0 {
		t.Errorf("preview should be dashed: dark=%d light=%d", dark, light)
	}
}

func TestEmptyScene(t *testing.T) {
	if _, err := Export(Scene{}); err == nil {
		t.Fatal("expected error for sizeless scene")
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Bounds().Eq(img.Bounds()) {
		t.Errorf("bounds = %v", decoded.Bounds())
	}
}

func TestViewTransformsPage(t *testing.T) {
	s := Scene{Width: 40, Height: 40, Layers: []Layer{{Visible: true, Opacity: 1, Annotations: []annotation.Annotation{redBox(t)}}}}
	vp := viewport.Viewport{Zoom: 2, Pan: annotation.Pt(10, 10), CanvasWidth: 120, CanvasHeight: 120}
	img, err := View(s, vp, DefaultChrome())
	if err != nil {
		t.Fatal(err)
	}
	if !img.Bounds().Eq(image.Rect(0, 0, 120, 120)) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	// document (30,30) is inside the box and lands on screen (70,70)
	if px := img.RGBAAt(70, 70); px.R < 200 || px.G > 60 {
		t.Errorf("transformed box pixel = %+v", px)
	}
	// document (5,5) is white page at screen (20,20)
	if px := img.RGBAAt(20, 20); px.G < 240 {
		t.Errorf("page pixel = %+v", px)
	}
	// screen (5,5) is outside the page and shows the backdrop
	if px := img.RGBAAt(5, 5); px.R > 0x50 {
		t.Errorf("backdrop pixel = %+v", px)
	}
}

func TestViewDrawsSelection(t *testing.T) {
	box := redBox(t)
	s := Scene{Width: 80, Height: 80, Selected: []annotation.Annotation{box}}
	ch := DefaultChrome()
	vp := viewport.Default(80, 80)
	img, err := View(s, vp, ch)
	if err != nil {
		t.Fatal(err)
	}
	// the handle outline crosses column 16 beside the top-left corner
	outlined := false
	for y := 17; y <= 23; y++ {
		if img.RGBAAt(16, y).R < 200 {
			outlined = true
		}
	}
	if !outlined {
		t.Error("expected a handle at the selection corner")
	}
}
