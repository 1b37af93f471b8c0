package appstate

import (
	"context"
	"image"
	"image/draw"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/canvasmark/internal/engine"
	"github.com/example/canvasmark/internal/theme"
)

// AppState holds the editor and host configuration for the UI.
type AppState struct {
	Editor *engine.Editor
	Theme  *theme.Theme
	Title  string

	save    func(*engine.Editor) (string, error)
	saveDoc func(*engine.Editor) (string, error)
	copy    func(*engine.Editor) error

	updateCh chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the chrome colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithSave registers the handler for the save shortcut. It returns the path
// written.
func WithSave(fn func(*engine.Editor) (string, error)) Option {
	return func(a *AppState) { a.save = fn }
}

// WithSaveDocument registers the handler that persists the editable document.
func WithSaveDocument(fn func(*engine.Editor) (string, error)) Option {
	return func(a *AppState) { a.saveDoc = fn }
}

// WithCopy registers the handler for the copy shortcut.
func WithCopy(fn func(*engine.Editor) error) Option { return func(a *AppState) { a.copy = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState around ed with the provided options.
func New(ed *engine.Editor, opts ...Option) *AppState {
	a := &AppState{
		Editor:   ed,
		Theme:    theme.Default(),
		Title:    "canvasmark",
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NotifyChanged requests a repaint after the editor was changed from outside
// the window. The caller must not touch the editor while the window runs.
func (a *AppState) NotifyChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

type paintState struct {
	frame *image.RGBA
}

// Main runs the window until it is closed. All editor calls happen on this
// goroutine; the paint pump only uploads finished frames.
func (a *AppState) Main(s screen.Screen) {
	c := newController(a.Editor, a.Theme, hooks{save: a.save, saveDoc: a.saveDoc, copy: a.copy})

	width, height := 1024, 768
	if p, ok := a.Editor.Page(a.Editor.CurrentPage()); ok {
		width = min(int(p.Size.Width)+toolbarWidth, 1600)
		height = min(int(p.Size.Height)+headerHeight+statusHeight, 1000)
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	c.resize(width, height)
	a.Editor.FitPage()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			c.resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{frame: c.frame()}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if c.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if c.handleKey(e) {
				w.Send(paint.Event{})
			}
			if c.quit {
				return
			}
		case error:
			log.Print(e)
		}
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(st.frame.Bounds().Size())
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	if ctx.Err() != nil {
		return
	}
	draw.Draw(b.RGBA(), b.Bounds(), st.frame, image.Point{}, draw.Src)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
