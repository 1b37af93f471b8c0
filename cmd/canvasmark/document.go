package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/example/canvasmark/internal/engine"
	"github.com/example/canvasmark/internal/raster"
)

// openEditor builds an editor from a base file, a saved document or both.
// With both, the saved annotations are placed over the rasters of file.
func openEditor(ctx context.Context, file, doc string, opts []engine.Option) (*engine.Editor, error) {
	if doc == "" {
		if file == "" {
			return engine.New(opts...), nil
		}
		src, err := raster.Open(file, nil)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file, err)
		}
		ed, err := engine.Open(ctx, src, opts...)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file, err)
		}
		reportPages(ed)
		return ed, nil
	}

	data, err := os.ReadFile(doc)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	ed, err := engine.Load(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", doc, err)
	}
	if file == "" {
		return ed, nil
	}
	src, err := raster.Open(file, nil)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	sizes, err := src.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	if len(sizes) != ed.PageCount() {
		log.Printf("warning: %s has %d pages, document has %d", file, len(sizes), ed.PageCount())
	}
	for i := 0; i < min(len(sizes), ed.PageCount()); i++ {
		if err := ed.LoadPage(ctx, src, i); err != nil {
			return nil, err
		}
	}
	reportPages(ed)
	return ed, nil
}

func reportPages(ed *engine.Editor) {
	for i := 0; i < ed.PageCount(); i++ {
		if p, ok := ed.Page(i); ok && p.State == engine.PageFailed {
			fmt.Fprintf(os.Stderr, "warning: page %d failed to render: %v\n", i+1, p.Err)
		}
	}
}

func writePNG(path string, img image.Image) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output %q: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("write PNG to %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

func writeDocument(path string, ed *engine.Editor) (string, error) {
	data, err := ed.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document %q: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// exportPage writes the composed current page to path.
func exportPage(path string, ed *engine.Editor) (string, error) {
	img, err := ed.ExportDocument()
	if err != nil {
		return "", err
	}
	return writePNG(path, img)
}
