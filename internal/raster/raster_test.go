package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/canvasmark/internal/engine"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// buildPDF writes a minimal PDF with one empty page per media box.
func buildPDF(boxes ...[2]int) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	n := 2 + len(boxes)
	offsets := make([]int, n+1)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	var kids []string
	for i := range boxes {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), len(boxes))

	for i, box := range boxes {
		offsets[i+3] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> >>\nendobj\n", i+3, box[0], box[1])
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", n+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", n+1, xref)
	return []byte(b.String())
}

func TestDecodeImage(t *testing.T) {
	src, err := DecodeImage(bytes.NewReader(pngBytes(t, 30, 20)))
	if err != nil {
		t.Fatal(err)
	}
	if src.Format() != "png" {
		t.Errorf("format = %q", src.Format())
	}
	pages, err := src.Pages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]engine.PageSize{{Width: 30, Height: 20}}, pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	if _, err := src.RenderPage(context.Background(), 1); err == nil {
		t.Error("expected out of range error")
	}
}

func TestDecodeImageUnsupported(t *testing.T) {
	_, err := DecodeImage(strings.NewReader("not an image"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestReadPDF(t *testing.T) {
	src, err := ReadPDF(bytes.NewReader(buildPDF([2]int{612, 792}, [2]int{300, 400})), nil)
	if err != nil {
		t.Fatal(err)
	}
	pages, _ := src.Pages(context.Background())
	want := []engine.PageSize{{Width: 612, Height: 792}, {Width: 300, Height: 400}}
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	img, err := src.RenderPage(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !img.Bounds().Eq(image.Rect(0, 0, 300, 400)) {
		t.Errorf("blank page bounds = %v", img.Bounds())
	}
	if r, g, b, _ := img.At(10, 10).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Error("blank page is not white")
	}
}

func TestReadPDFWithRenderer(t *testing.T) {
	var seen []int
	render := PageRendererFunc(func(_ context.Context, i int, size engine.PageSize) (image.Image, error) {
		seen = append(seen, i)
		if i == 1 {
			return nil, errors.New("renderer crashed")
		}
		return image.NewRGBA(image.Rect(0, 0, int(size.Width), int(size.Height))), nil
	})
	src, err := ReadPDF(bytes.NewReader(buildPDF([2]int{100, 100}, [2]int{50, 50})), render)
	if err != nil {
		t.Fatal(err)
	}
	e, err := engine.Open(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := e.Page(0); p.State != engine.PageReady {
		t.Errorf("page 0 = %s", p.State)
	}
	if p, _ := e.Page(1); p.State != engine.PageFailed {
		t.Errorf("page 1 = %s", p.State)
	}
	if diff := cmp.Diff([]int{0, 1}, seen); diff != "" {
		t.Errorf("rendered pages mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPDFCorrupt(t *testing.T) {
	if _, err := ReadPDF(strings.NewReader("%PDF-1.4\ngarbage"), nil); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestOpenByContent(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "shot.bin")
	if err := os.WriteFile(imgPath, pngBytes(t, 8, 8), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Open(imgPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*ImageSource); !ok {
		t.Errorf("source = %T, want *ImageSource", src)
	}

	pdfPath := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(pdfPath, buildPDF([2]int{10, 20}), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err = Open(pdfPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*PDFSource); !ok {
		t.Errorf("source = %T, want *PDFSource", src)
	}
}
