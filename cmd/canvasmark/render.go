package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/canvasmark/internal/clipboard"
	"github.com/example/canvasmark/internal/render"
)

var writeClipboardFn = clipboard.WriteImage

type renderCmd struct {
	file          string
	doc           string
	output        string
	page          int
	toClipboard   bool
	shadow        bool
	shadowRadius  int
	shadowOffset  string
	shadowOpacity float64
	*root
	fs *flag.FlagSet
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	defaults := render.DefaultShadowOptions()
	fs.StringVar(&c.file, "file", "", "base image or PDF")
	fs.StringVar(&c.doc, "doc", "", "saved document")
	fs.StringVar(&c.output, "output", "annotated.png", "export path")
	fs.IntVar(&c.page, "page", 0, "page to export, counted from 1 (default: the saved page)")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the export to the clipboard instead of writing a file")
	fs.BoolVar(&c.shadow, "shadow", false, "place a drop shadow under the export")
	fs.IntVar(&c.shadowRadius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&c.shadowOffset, "shadow-offset", fmt.Sprintf("%d,%d", defaults.Offset.X, defaults.Offset.Y), "drop shadow offset as dx,dy")
	fs.Float64Var(&c.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.doc == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *renderCmd) shadowOptions() (render.ShadowOptions, error) {
	off, err := parsePoint(c.shadowOffset)
	if err != nil {
		return render.ShadowOptions{}, err
	}
	return render.ShadowOptions{
		Radius:  max(c.shadowRadius, 0),
		Offset:  off,
		Opacity: min(max(c.shadowOpacity, 0), 1),
	}, nil
}

func (c *renderCmd) Run() error {
	opts, err := c.root.editorOptions()
	if err != nil {
		return err
	}
	ed, err := openEditor(context.Background(), c.file, c.doc, opts)
	if err != nil {
		return err
	}
	if c.page > 0 {
		if err := ed.SetPage(c.page - 1); err != nil {
			return err
		}
	}
	img, err := ed.ExportDocument()
	if err != nil {
		return err
	}
	if c.shadow {
		so, err := c.shadowOptions()
		if err != nil {
			return err
		}
		img, _ = render.DropShadow(img, so)
	}
	if c.toClipboard {
		if err := writeClipboardFn(img); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "copied page to clipboard")
		c.root.notifyCopy("page", img)
		return nil
	}
	path, err := writePNG(c.root.outputPath(c.output), img)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", path)
	c.root.notifyExport(path)
	return nil
}
