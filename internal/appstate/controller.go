package appstate

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"time"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/engine"
	"github.com/example/canvasmark/internal/theme"
	"github.com/example/canvasmark/internal/tool"
)

var toolLabels = map[tool.Name]string{
	tool.NameSelect:    "S:Select",
	tool.NameText:      "T:Text",
	tool.NameRectangle: "R:Rect",
	tool.NameCircle:    "O:Circle",
	tool.NameLine:      "L:Line",
	tool.NameArrow:     "A:Arrow",
	tool.NamePath:      "P:Path",
	tool.NameHighlight: "H:Highlight",
	tool.NameStamp:     "M:Stamp",
}

const (
	zoomStep = 1.25
	panStep  = 32
)

// hooks are the side effects a controller may trigger outside the editor.
type hooks struct {
	save    func(*engine.Editor) (string, error)
	saveDoc func(*engine.Editor) (string, error)
	copy    func(*engine.Editor) error
}

// controller translates window events into editor calls. It is only used
// from the window's event loop.
type controller struct {
	ed    *engine.Editor
	th    *theme.Theme
	hooks hooks
	now   func() time.Time

	width, height int

	actions   map[string]func()
	keys      map[KeyShortcut]string
	tools     []*CacheButton
	shortcuts []*Shortcut

	hoverTool     int
	hoverShortcut int

	panning bool
	panFrom image.Point

	textEdit bool
	textID   string
	textBuf  string

	message      string
	messageUntil time.Time

	quit bool
}

func newController(ed *engine.Editor, th *theme.Theme, h hooks) *controller {
	c := &controller{
		ed:            ed,
		th:            th,
		hooks:         h,
		now:           time.Now,
		hoverTool:     -1,
		hoverShortcut: -1,
	}
	c.registerActions()
	for _, n := range tool.Names() {
		tb := &ToolButton{label: label{text: toolLabels[n], th: th}, tool: n, onSelect: c.selectTool}
		c.tools = append(c.tools, &CacheButton{Button: tb})
	}
	return c
}

func (c *controller) register(name string, keys KeyboardShortcuts, fn func()) {
	c.actions[name] = fn
	if keys == nil {
		return
	}
	for _, sc := range keys.KeyboardShortcuts() {
		c.keys[sc] = name
	}
}

func (c *controller) registerActions() {
	c.actions = map[string]func(){}
	c.keys = map[KeyShortcut]string{}

	c.register("undo", shortcutList{{Rune: 'z', Modifiers: key.ModControl}}, func() {
		if !c.ed.Undo() {
			c.flash("nothing to undo")
		}
	})
	c.register("redo", shortcutList{
		{Rune: 'y', Modifiers: key.ModControl},
		{Rune: 'z', Modifiers: key.ModControl | key.ModShift},
	}, func() {
		if !c.ed.Redo() {
			c.flash("nothing to redo")
		}
	})
	c.register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		c.runSave(c.hooks.save, "save")
	})
	c.register("savedoc", shortcutList{{Rune: 's', Modifiers: key.ModControl | key.ModShift}}, func() {
		c.runSave(c.hooks.saveDoc, "save document")
	})
	c.register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		if c.hooks.copy == nil {
			return
		}
		if err := c.hooks.copy(c.ed); err != nil {
			c.fail("copy", err)
			return
		}
		c.flash("image copied to clipboard")
	})
	c.register("delete", shortcutList{{Code: key.CodeDeleteForward}, {Code: key.CodeDeleteBackspace}}, func() {
		if err := c.ed.DeleteSelection(); err != nil && !errors.Is(err, engine.ErrNoSelection) {
			c.fail("delete", err)
		}
	})
	c.register("cancel", shortcutList{{Code: key.CodeEscape}}, func() {
		c.ed.Cancel()
	})
	c.register("edittext", shortcutList{{Code: key.CodeReturnEnter}}, c.beginTextEdit)
	c.register("zoomin", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { c.ed.ZoomAt(c.canvasCenter(), zoomStep) })
	c.register("zoomout", shortcutList{{Rune: '-'}}, func() { c.ed.ZoomAt(c.canvasCenter(), 1/zoomStep) })
	c.register("fit", shortcutList{{Rune: '0'}}, c.ed.FitPage)
	c.register("rotateleft", shortcutList{{Rune: '['}}, func() { c.ed.Rotate(-90) })
	c.register("rotateright", shortcutList{{Rune: ']'}}, func() { c.ed.Rotate(90) })
	c.register("panleft", shortcutList{{Code: key.CodeLeftArrow}}, func() { c.pan(panStep, 0) })
	c.register("panright", shortcutList{{Code: key.CodeRightArrow}}, func() { c.pan(-panStep, 0) })
	c.register("panup", shortcutList{{Code: key.CodeUpArrow}}, func() { c.pan(0, panStep) })
	c.register("pandown", shortcutList{{Code: key.CodeDownArrow}}, func() { c.pan(0, -panStep) })
	c.register("prevpage", shortcutList{{Code: key.CodePageUp}}, func() { c.turnPage(-1) })
	c.register("nextpage", shortcutList{{Code: key.CodePageDown}}, func() { c.turnPage(1) })
	c.register("newlayer", shortcutList{{Rune: 'n', Modifiers: key.ModControl}}, func() {
		id := c.ed.AddLayer("")
		if err := c.ed.SetActiveLayer(id); err != nil {
			c.fail("new layer", err)
		}
	})
	c.register("nextlayer", shortcutList{{Code: key.CodeTab}}, c.cycleLayer)
	c.register("quit", shortcutList{{Rune: 'q'}}, func() { c.quit = true })

	for n, lbl := range toolLabels {
		n := n
		c.register("tool:"+string(n), shortcutList{{Rune: unicode.ToLower(rune(lbl[0]))}}, func() { c.selectTool(n) })
	}
}

func (c *controller) runSave(fn func(*engine.Editor) (string, error), what string) {
	if fn == nil {
		c.flash("no output configured")
		return
	}
	path, err := fn(c.ed)
	if err != nil {
		c.fail(what, err)
		return
	}
	c.flash(fmt.Sprintf("saved %s", path))
}

func (c *controller) selectTool(n tool.Name) {
	if err := c.ed.SetActiveTool(n); err != nil {
		c.fail("tool", err)
	}
}

func (c *controller) pan(dx, dy float64) {
	c.ed.SetPan(c.ed.Viewport().Pan.Add(annotation.Pt(dx, dy)))
}

func (c *controller) turnPage(delta int) {
	next := c.ed.CurrentPage() + delta
	if next < 0 || next >= c.ed.PageCount() {
		return
	}
	if err := c.ed.SetPage(next); err != nil {
		c.fail("page", err)
		return
	}
	c.ed.FitPage()
}

func (c *controller) cycleLayer() {
	layers := c.ed.Layers()
	active := c.ed.ActiveLayer().ID
	for i, l := range layers {
		if l.ID == active {
			next := layers[(i+1)%len(layers)]
			if err := c.ed.SetActiveLayer(next.ID); err != nil {
				c.fail("layer", err)
			}
			return
		}
	}
}

func (c *controller) beginTextEdit() {
	sel, ok := c.ed.Selection()
	if !ok || sel.Kind != annotation.KindText || sel.Text == nil {
		return
	}
	c.textEdit = true
	c.textID = sel.ID
	c.textBuf = sel.Text.Content
}

func (c *controller) flash(msg string) {
	log.Print(msg)
	c.message = msg
	c.messageUntil = c.now().Add(messageTimeout)
}

func (c *controller) fail(what string, err error) {
	log.Printf("%s: %v", what, err)
	c.message = fmt.Sprintf("%s failed", what)
	c.messageUntil = c.now().Add(messageTimeout)
}

// takeEngineMessage surfaces feedback the editor left for the host.
func (c *controller) takeEngineMessage() {
	if msg := c.ed.UIState().Message; msg != "" {
		c.flash(msg)
		c.ed.SetMessage("")
	}
}

func (c *controller) canvasRect() image.Rectangle {
	return image.Rect(toolbarWidth, headerHeight, c.width, c.height-statusHeight)
}

func (c *controller) canvasCenter() annotation.Point {
	r := c.canvasRect()
	return annotation.Pt(float64(r.Dx())/2, float64(r.Dy())/2)
}

// resize records a new window size and lays out the widgets.
func (c *controller) resize(w, h int) {
	c.width, c.height = w, h
	r := c.canvasRect()
	c.ed.SetCanvasSize(float64(max(r.Dx(), 1)), float64(max(r.Dy(), 1)))
	y := headerHeight
	for _, cb := range c.tools {
		cb.SetRect(image.Rect(0, y, toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}
	c.layoutShortcuts()
}

func (c *controller) layoutShortcuts() {
	var entries []struct {
		text   string
		action string
	}
	add := func(text, action string) {
		entries = append(entries, struct {
			text   string
			action string
		}{text, action})
	}
	if c.textEdit {
		add("Enter:apply", "")
		add("Esc:cancel", "")
	} else {
		add("^Z:undo", "undo")
		add("^Y:redo", "redo")
		add(fmt.Sprintf("+/-:zoom (%.0f%%)", c.ed.Viewport().Zoom*100), "zoomin")
		add("Del:delete", "delete")
		add("^C:copy", "copy")
		add("^S:save", "save")
		add("Q:quit", "quit")
	}
	c.shortcuts = c.shortcuts[:0]
	x := toolbarWidth + 4
	y := c.height - statusHeight + 16
	for _, e := range entries {
		sc := &Shortcut{label: label{text: e.text, th: c.th}, action: c.actions[e.action]}
		w := measureString(e.text)
		sc.SetRect(image.Rect(x-2, y-14, x+w+6, y+4))
		c.shortcuts = append(c.shortcuts, sc)
		x = sc.rect.Max.X + 8
	}
}

func (c *controller) trigger(name string) {
	if fn, ok := c.actions[name]; ok {
		fn()
	}
}

// handleKey processes a key event and reports whether a repaint is needed.
func (c *controller) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	if c.textEdit {
		c.editKey(e)
		return true
	}
	lower := unicode.ToLower(e.Rune)
	candidates := []KeyShortcut{
		{Rune: lower, Modifiers: e.Modifiers},
		{Rune: e.Rune, Modifiers: e.Modifiers &^ key.ModShift},
		{Code: e.Code, Modifiers: e.Modifiers},
	}
	for _, ks := range candidates {
		if ks.Rune == 0 && ks.Code == key.CodeUnknown {
			continue
		}
		if name, ok := c.keys[ks]; ok {
			c.trigger(name)
			c.layoutShortcuts()
			return true
		}
	}
	return false
}

func (c *controller) editKey(e key.Event) {
	switch e.Code {
	case key.CodeReturnEnter:
		c.textEdit = false
		if err := c.ed.EditText(c.textID, c.textBuf); err != nil {
			c.fail("edit text", err)
		}
	case key.CodeEscape:
		c.textEdit = false
	case key.CodeDeleteBackspace:
		if r := []rune(c.textBuf); len(r) > 0 {
			c.textBuf = string(r[:len(r)-1])
		}
	default:
		if e.Rune >= 0x20 && e.Modifiers&key.ModControl == 0 {
			c.textBuf += string(e.Rune)
		}
	}
	c.layoutShortcuts()
}

// handleMouse processes a mouse event and reports whether a repaint is needed.
func (c *controller) handleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	if e.Direction == mouse.DirPress && c.now().Before(c.messageUntil) {
		c.messageUntil = time.Time{}
	}

	if !c.ed.Dragging() && !c.panning {
		if p.Y >= c.height-statusHeight {
			return c.hoverAndClick(e, p, len(c.shortcuts), func(i int) Button { return c.shortcuts[i] }, &c.hoverShortcut)
		}
		if p.X < toolbarWidth {
			return c.hoverAndClick(e, p, len(c.tools), func(i int) Button { return c.tools[i] }, &c.hoverTool)
		}
	}
	redraw := c.hoverTool != -1 || c.hoverShortcut != -1
	c.hoverTool, c.hoverShortcut = -1, -1

	canvas := c.canvasRect()
	sp := annotation.Pt(float64(p.X-canvas.Min.X), float64(p.Y-canvas.Min.Y))

	switch e.Button {
	case mouse.ButtonWheelUp:
		c.ed.ZoomAt(sp, zoomStep)
		c.layoutShortcuts()
		return true
	case mouse.ButtonWheelDown:
		c.ed.ZoomAt(sp, 1/zoomStep)
		c.layoutShortcuts()
		return true
	case mouse.ButtonMiddle:
		switch e.Direction {
		case mouse.DirPress:
			c.panning, c.panFrom = true, p
		case mouse.DirRelease:
			c.panning = false
		}
		return redraw
	}

	if c.panning {
		if e.Direction == mouse.DirNone {
			d := p.Sub(c.panFrom)
			c.panFrom = p
			c.pan(float64(d.X), float64(d.Y))
			return true
		}
		return redraw
	}

	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft || !p.In(canvas) {
			return redraw
		}
		if err := c.ed.PointerDown(sp); err != nil {
			c.fail("draw", err)
		}
		c.takeEngineMessage()
		return true
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft || !c.ed.Dragging() {
			return redraw
		}
		if err := c.ed.PointerUp(sp); err != nil {
			c.fail("draw", err)
		}
		c.takeEngineMessage()
		return true
	case mouse.DirNone:
		if c.ed.Dragging() {
			c.ed.PointerMove(sp)
			return true
		}
	}
	return redraw
}

func (c *controller) hoverAndClick(e mouse.Event, p image.Point, n int, at func(int) Button, hover *int) bool {
	prev := *hover
	*hover = -1
	for i := 0; i < n; i++ {
		b := at(i)
		if !p.In(b.Rect()) {
			continue
		}
		*hover = i
		if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
			b.Activate()
			c.layoutShortcuts()
			return true
		}
		break
	}
	return prev != *hover
}

// frame composes the whole window contents.
func (c *controller) frame() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(c.width, 1), max(c.height, 1)))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{c.th.Background}, image.Point{}, draw.Src)

	canvas := c.canvasRect()
	if !canvas.Empty() {
		view, err := c.ed.Render()
		if err != nil {
			log.Printf("render: %v", err)
		} else {
			draw.Draw(dst, canvas, view, image.Point{}, draw.Src)
		}
	}

	c.drawHeader(dst)
	c.drawToolbar(dst)
	c.drawStatus(dst)

	if c.textEdit {
		c.drawTextInput(dst)
	}
	if c.message != "" && c.now().Before(c.messageUntil) {
		drawMessage(dst, c.message, c.th)
	}
	return dst
}

func (c *controller) drawHeader(dst *image.RGBA) {
	bar := image.Rect(0, 0, c.width, headerHeight)
	draw.Draw(dst, bar, &image.Uniform{c.th.ToolbarBackground}, image.Point{}, draw.Src)
	drawString(dst, 4, 16, "canvasmark", c.th.Foreground)

	info := fmt.Sprintf("page %d/%d", c.ed.CurrentPage()+1, c.ed.PageCount())
	if p, ok := c.ed.Page(c.ed.CurrentPage()); ok && p.State != engine.PageReady {
		info += fmt.Sprintf(" (%s)", p.State)
	}
	active := c.ed.ActiveLayer()
	info += fmt.Sprintf("  layer %s", active.Name)
	if active.Locked {
		info += " [locked]"
	}
	if !active.Visible {
		info += " [hidden]"
	}
	info += fmt.Sprintf("  history %d", c.ed.HistoryLen())
	drawString(dst, toolbarWidth+4, 16, info, c.th.Foreground)
}

func (c *controller) drawToolbar(dst *image.RGBA) {
	bar := image.Rect(0, headerHeight, toolbarWidth, c.height-statusHeight)
	draw.Draw(dst, bar, &image.Uniform{c.th.ToolbarBackground}, image.Point{}, draw.Src)
	active := c.ed.ActiveTool()
	for i, cb := range c.tools {
		state := StateDefault
		if cb.Button.(*ToolButton).tool == active {
			state = StatePressed
		} else if i == c.hoverTool {
			state = StateHover
		}
		cb.Draw(dst, state)
	}
}

func (c *controller) drawStatus(dst *image.RGBA) {
	bar := image.Rect(0, c.height-statusHeight, c.width, c.height)
	draw.Draw(dst, bar, &image.Uniform{c.th.ToolbarBackground}, image.Point{}, draw.Src)
	for i, sc := range c.shortcuts {
		state := StateDefault
		if i == c.hoverShortcut {
			state = StateHover
		}
		sc.Draw(dst, state)
	}
}

func (c *controller) drawTextInput(dst *image.RGBA) {
	a, ok := c.ed.Annotation(c.textID)
	if !ok {
		return
	}
	canvas := c.canvasRect()
	at := c.ed.DocumentToScreen(annotation.Pt(a.X, a.Y+a.Height))
	drawString(dst, canvas.Min.X+int(at.X), canvas.Min.Y+int(at.Y)+14, c.textBuf+"|", c.th.Selection)
}
