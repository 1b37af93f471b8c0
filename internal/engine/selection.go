package engine

import (
	"fmt"

	"github.com/example/canvasmark/internal/annotation"
)

// Selection returns the selected annotation, if any.
func (e *Editor) Selection() (annotation.Annotation, bool) {
	if e.ui.Selection == "" {
		return annotation.Annotation{}, false
	}
	return e.layers.Get(e.ui.Selection)
}

// Select selects an annotation by id. An empty id clears the selection.
func (e *Editor) Select(id string) error {
	if id != "" {
		if _, ok := e.layers.Get(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
		}
	}
	e.ui.Selection = id
	return nil
}

// DeleteSelection removes the selected annotation.
func (e *Editor) DeleteSelection() error {
	a, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	if err := e.layers.Delete(a.ID); err != nil {
		return err
	}
	e.ui.Selection = ""
	e.commit("delete", "id", a.ID)
	return nil
}

// UpdateAnnotation replaces the annotation with a's id. The page must exist.
func (e *Editor) UpdateAnnotation(a annotation.Annotation) error {
	if err := e.checkPage(a.Page); err != nil {
		return err
	}
	if err := e.layers.Replace(a); err != nil {
		return err
	}
	e.commit("update", "id", a.ID)
	return nil
}

// EditText replaces the content of a text annotation.
func (e *Editor) EditText(id, content string) error {
	a, ok := e.layers.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
	}
	next, err := a.WithText(content)
	if err != nil {
		return err
	}
	return e.UpdateAnnotation(next)
}

// MoveSelection translates the selected annotation by a document offset.
func (e *Editor) MoveSelection(dx, dy float64) error {
	a, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	return e.UpdateAnnotation(a.Translate(dx, dy))
}

// RestyleSelection applies s to the selected annotation.
func (e *Editor) RestyleSelection(s annotation.Style) error {
	a, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	next, err := a.WithStyle(s)
	if err != nil {
		return err
	}
	return e.UpdateAnnotation(next)
}

// MoveSelectionToLayer moves the selected annotation onto another layer.
func (e *Editor) MoveSelectionToLayer(layerID string) error {
	a, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	return e.UpdateAnnotation(a.WithLayer(layerID))
}
