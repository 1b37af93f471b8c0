package engine

import (
	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/tool"
	"github.com/example/canvasmark/internal/viewport"
)

// ActiveTool returns the selected tool.
func (e *Editor) ActiveTool() tool.Name { return e.active }

// SetActiveTool switches tools. A drag in progress is cancelled without
// committing.
func (e *Editor) SetActiveTool(n tool.Name) error {
	if _, err := tool.ParseName(string(n)); err != nil {
		return err
	}
	if e.machine.Cancel() {
		e.log.Debug("drag cancelled by tool switch", "tool", n)
	}
	e.active = n
	return nil
}

// SetToolSetting changes one setting of a tool, e.g. ("rectangle", "color", "blue").
func (e *Editor) SetToolSetting(n tool.Name, key, value string) error {
	if _, err := tool.ParseName(string(n)); err != nil {
		return err
	}
	return e.tools.Set(n, key, value)
}

// ToolSettings returns a copy of every tool's settings.
func (e *Editor) ToolSettings() *tool.Settings { return e.tools.Clone() }

// Dragging reports whether a drag is in progress.
func (e *Editor) Dragging() bool { return e.machine.Dragging() }

// Cancel abandons a drag in progress.
func (e *Editor) Cancel() bool { return e.machine.Cancel() }

func (e *Editor) target() tool.Target {
	l := e.layers.ActiveLayer()
	tol := hitTolerance / e.view.Zoom
	page := e.page
	return tool.Target{
		Layer:  l.ID,
		Locked: l.Locked,
		Page:   page,
		NewID:  e.newAnnotationID,
		Hit: func(p annotation.Point) (annotation.Annotation, bool) {
			return e.layers.HitTest(page, p, tol)
		},
	}
}

func (e *Editor) toDocument(screen annotation.Point) annotation.Point {
	return viewport.ToDocumentSpace(screen, e.view)
}

// PointerDown handles a press at a screen point. Input on a page that is
// not ready is ignored.
func (e *Editor) PointerDown(screen annotation.Point) error {
	if !e.pageReady() {
		return nil
	}
	res, err := e.machine.Down(e.tools.Get(e.active), e.target(), e.toDocument(screen))
	if err != nil {
		return err
	}
	return e.apply(res)
}

// PointerMove updates the drag preview. Moves outside a drag are ignored.
func (e *Editor) PointerMove(screen annotation.Point) {
	if !e.pageReady() {
		return
	}
	e.machine.Move(e.toDocument(screen))
}

// PointerUp finishes a drag, committing the annotation unless it is degenerate.
func (e *Editor) PointerUp(screen annotation.Point) error {
	if !e.pageReady() {
		e.machine.Cancel()
		return nil
	}
	res, err := e.machine.Up(e.toDocument(screen))
	if err != nil {
		return err
	}
	return e.apply(res)
}

func (e *Editor) apply(res tool.Result) error {
	if res.Blocked {
		e.ui.Message = "layer is locked"
		e.log.Debug("press on locked layer", "layer", e.layers.Active())
		return nil
	}
	if res.Discarded {
		e.log.Debug("discarded degenerate drag", "tool", e.active)
	}
	if res.SelectionChanged {
		e.ui.Selection = res.Selected
	}
	if res.Committed != nil {
		a := *res.Committed
		if err := e.layers.Insert(a); err != nil {
			return err
		}
		e.commit("add", "id", a.ID, "kind", a.Kind)
		if res.SwitchToSelect {
			e.active = tool.NameSelect
			e.ui.Selection = a.ID
		}
	}
	return nil
}
