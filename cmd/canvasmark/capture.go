package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/example/canvasmark/internal/capture"
	"github.com/example/canvasmark/internal/engine"
)

var openCaptureFn = func(ctx context.Context, opts capture.Options, editorOpts []engine.Option) (*engine.Editor, error) {
	return engine.Open(ctx, capture.NewSource(opts), editorOpts...)
}

type captureCmd struct {
	output        string
	monitor       string
	region        string
	includeCursor bool
	noEdit        bool
	rect          image.Rectangle
	*root
	fs *flag.FlagSet
}

func (c *captureCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	c := &captureCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "screenshot.png", "export path")
	fs.StringVar(&c.monitor, "monitor", "", "monitor selector: index, #index, primary or name")
	fs.StringVar(&c.region, "region", "", "capture rectangle x0,y0,x1,y1")
	fs.BoolVar(&c.includeCursor, "include-cursor", false, "embed the cursor in captures when supported")
	fs.BoolVar(&c.noEdit, "no-edit", false, "write the capture to -output without opening the editor")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.region != "" {
		rect, err := parseRect(c.region)
		if err != nil {
			return nil, err
		}
		c.rect = rect
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	opts, err := c.root.editorOptions()
	if err != nil {
		return err
	}
	ed, err := openCaptureFn(context.Background(), c.options(), opts)
	if err != nil {
		return fmt.Errorf("failed to capture %s: %w", c.describe(), err)
	}
	if p, ok := ed.Page(0); ok && p.State == engine.PageFailed {
		return fmt.Errorf("failed to capture %s: %w", c.describe(), p.Err)
	}
	output := c.root.outputPath(c.output)
	if c.noEdit {
		path, err := exportPage(output, ed)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", path)
		c.root.notifyExport(path)
		return nil
	}
	runWindow(c.root, ed, "canvasmark - "+c.describe(), output, "")
	return nil
}

func (c *captureCmd) options() capture.Options {
	return capture.Options{Monitor: c.monitor, Region: c.rect, IncludeCursor: c.includeCursor}
}

func (c *captureCmd) describe() string {
	parts := []string{"screen"}
	if m := strings.TrimSpace(c.monitor); m != "" {
		parts = append(parts, m)
	}
	if c.region != "" {
		parts = append(parts, c.region)
	}
	return strings.Join(parts, " ")
}

func parseRect(val string) (image.Rectangle, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q", val)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region %q", val)
		}
		nums[i] = v
	}
	rect := image.Rect(nums[0], nums[1], nums[2], nums[3])
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %q is empty", val)
	}
	return rect, nil
}

func parsePoint(val string) (image.Point, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid offset %q", val)
	}
	vals := make([]int, 2)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Point{}, fmt.Errorf("invalid offset %q", val)
		}
		vals[i] = v
	}
	return image.Pt(vals[0], vals[1]), nil
}
