package layer

import (
	"fmt"
	"slices"

	"github.com/example/canvasmark/internal/annotation"
)

func (m *Manager) writable(layerID string) (*Layer, error) {
	l, err := m.find(layerID)
	if err != nil {
		return nil, err
	}
	if l.Locked {
		return nil, fmt.Errorf("%w: %s", ErrLayerLocked, l.Name)
	}
	return l, nil
}

// Insert appends a to the end of its layer's paint order.
func (m *Manager) Insert(a annotation.Annotation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	l, err := m.writable(a.Layer)
	if err != nil {
		return err
	}
	if _, dup := m.arena[a.ID]; dup {
		return fmt.Errorf("%w: duplicate annotation id %s", ErrInvariantViolation, a.ID)
	}
	m.arena[a.ID] = a.Clone()
	l.Annotations = append(l.Annotations, a.ID)
	return nil
}

// Replace swaps the annotation with the same id for a. Moving to another
// layer requires both layers to be unlocked and appends to the new layer.
func (m *Manager) Replace(a annotation.Annotation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	old, ok := m.arena[a.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAnnotation, a.ID)
	}
	from, err := m.writable(old.Layer)
	if err != nil {
		return err
	}
	to := from
	if a.Layer != old.Layer {
		if to, err = m.writable(a.Layer); err != nil {
			return err
		}
	}
	if to != from {
		from.Annotations = slices.DeleteFunc(from.Annotations, func(id string) bool { return id == a.ID })
		to.Annotations = append(to.Annotations, a.ID)
	}
	m.arena[a.ID] = a.Clone()
	return nil
}

// Delete removes an annotation from the document.
func (m *Manager) Delete(id string) error {
	a, ok := m.arena[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
	}
	l, err := m.writable(a.Layer)
	if err != nil {
		return err
	}
	l.Annotations = slices.DeleteFunc(l.Annotations, func(aid string) bool { return aid == id })
	delete(m.arena, id)
	return nil
}

// Get returns a copy of the annotation with the given id.
func (m *Manager) Get(id string) (annotation.Annotation, bool) {
	a, ok := m.arena[id]
	if !ok {
		return annotation.Annotation{}, false
	}
	return a.Clone(), true
}

// Annotations returns copies of a layer's annotations in paint order.
func (m *Manager) Annotations(layerID string) []annotation.Annotation {
	l, err := m.find(layerID)
	if err != nil {
		return nil
	}
	out := make([]annotation.Annotation, 0, len(l.Annotations))
	for _, id := range l.Annotations {
		out = append(out, m.arena[id].Clone())
	}
	return out
}

// Count returns the number of annotations in the document.
func (m *Manager) Count() int { return len(m.arena) }

// HitTest returns the topmost annotation on page under p. Hidden layers are
// skipped unless they are active.
func (m *Manager) HitTest(page int, p annotation.Point, tolerance float64) (annotation.Annotation, bool) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		if !l.Visible && l.ID != m.active {
			continue
		}
		for j := len(l.Annotations) - 1; j >= 0; j-- {
			a := m.arena[l.Annotations[j]]
			if a.Page == page && a.HitTest(p, tolerance) {
				return a.Clone(), true
			}
		}
	}
	return annotation.Annotation{}, false
}
