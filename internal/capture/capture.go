// Package capture grabs the desktop so it can be opened as a page.
package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/example/canvasmark/internal/engine"
)

// Options selects what part of the desktop to capture.
type Options struct {
	// Monitor is "", "primary", an index ("1" or "#1") or part of an output name.
	Monitor string
	// Region crops the capture. With Monitor set it is relative to the
	// monitor, otherwise it is in global screen coordinates.
	Region image.Rectangle
	// IncludeCursor asks the screenshot portal to embed the pointer.
	IncludeCursor bool
}

type platformBackend interface {
	ListMonitors() ([]MonitorInfo, error)
	CaptureDesktop(ctx context.Context, opts Options) (*image.RGBA, error)
}

var backend platformBackend = newBackend()

// ListMonitors retrieves all monitors using the platform backend.
func ListMonitors() ([]MonitorInfo, error) {
	return backend.ListMonitors()
}

// Screen captures the desktop and crops it to opts.
func Screen(ctx context.Context, opts Options) (*image.RGBA, error) {
	shot, err := backend.CaptureDesktop(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("capture desktop: %w", err)
	}
	rect := opts.Region
	if opts.Monitor != "" {
		monitors, err := backend.ListMonitors()
		if err != nil {
			return nil, err
		}
		mon, err := FindMonitor(monitors, opts.Monitor)
		if err != nil {
			return nil, err
		}
		if rect.Empty() {
			rect = mon.Rect
		} else {
			rect = rect.Add(mon.Rect.Min).Intersect(mon.Rect)
			if rect.Empty() {
				return nil, fmt.Errorf("region outside monitor %s", mon.Name)
			}
		}
	}
	if rect.Empty() {
		return shot, nil
	}
	return cropToRect(shot, rect)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}

// Source is a single-page document holding one screen capture. The screen
// is grabbed on the first call and reused afterwards.
type Source struct {
	opts Options
	img  *image.RGBA
}

// NewSource returns a Source that captures according to opts.
func NewSource(opts Options) *Source {
	return &Source{opts: opts}
}

func (s *Source) grab(ctx context.Context) (*image.RGBA, error) {
	if s.img != nil {
		return s.img, nil
	}
	img, err := Screen(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	s.img = img
	return img, nil
}

// Pages implements engine.Rasterizer.
func (s *Source) Pages(ctx context.Context) ([]engine.PageSize, error) {
	img, err := s.grab(ctx)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return []engine.PageSize{{Width: float64(b.Dx()), Height: float64(b.Dy())}}, nil
}

// RenderPage implements engine.Rasterizer.
func (s *Source) RenderPage(ctx context.Context, i int) (image.Image, error) {
	if i != 0 {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	return s.grab(ctx)
}
