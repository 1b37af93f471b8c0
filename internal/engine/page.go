package engine

import (
	"fmt"
	"image"
)

// PageState is the load state of a page raster.
type PageState string

const (
	PagePending PageState = "pending"
	PageReady   PageState = "ready"
	PageFailed  PageState = "failed"
)

// PageSize is the intrinsic size of a page in document units.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page is one page of the base document.
type Page struct {
	Size   PageSize
	State  PageState
	Raster image.Image
	Err    error
}

func newPages(sizes []PageSize, state PageState) []Page {
	pages := make([]Page, len(sizes))
	for i, s := range sizes {
		pages[i] = Page{Size: s, State: state}
	}
	return pages
}

func (e *Editor) checkPage(i int) error {
	if i < 0 || i >= len(e.pages) {
		return fmt.Errorf("%w: page %d of %d", ErrInvariantViolation, i, len(e.pages))
	}
	return nil
}

// PageCount returns the number of pages.
func (e *Editor) PageCount() int { return len(e.pages) }

// Page returns the page at index i.
func (e *Editor) Page(i int) (Page, bool) {
	if e.checkPage(i) != nil {
		return Page{}, false
	}
	return e.pages[i], true
}

// CurrentPage returns the index of the page in view.
func (e *Editor) CurrentPage() int { return e.page }

// SetPage changes the page in view. A drag in progress is cancelled.
func (e *Editor) SetPage(i int) error {
	if err := e.checkPage(i); err != nil {
		return err
	}
	e.machine.Cancel()
	e.page = i
	e.ui.Selection = ""
	return nil
}

// SetPageRaster hands the result of a raster load back to the engine. A
// non-nil err marks the page failed and leaves other pages untouched.
func (e *Editor) SetPageRaster(i int, img image.Image, err error) error {
	if cerr := e.checkPage(i); cerr != nil {
		return cerr
	}
	p := &e.pages[i]
	if err != nil {
		p.State, p.Raster, p.Err = PageFailed, nil, &RenderError{Page: i, Err: err}
		e.log.Warn("page render failed", "page", i, "err", err)
		return p.Err
	}
	if img == nil {
		p.State, p.Raster, p.Err = PageFailed, nil, &RenderError{Page: i, Err: fmt.Errorf("no raster")}
		return p.Err
	}
	b := img.Bounds()
	p.State, p.Raster, p.Err = PageReady, img, nil
	p.Size = PageSize{Width: float64(b.Dx()), Height: float64(b.Dy())}
	e.log.Debug("page ready", "page", i, "width", b.Dx(), "height", b.Dy())
	return nil
}

// MarkPagePending flags a page as loading; input on it is ignored until
// SetPageRaster is called.
func (e *Editor) MarkPagePending(i int) error {
	if err := e.checkPage(i); err != nil {
		return err
	}
	e.pages[i].State, e.pages[i].Err = PagePending, nil
	return nil
}

func (e *Editor) pageReady() bool {
	return e.page < len(e.pages) && e.pages[e.page].State == PageReady
}
