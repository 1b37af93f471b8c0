package layer

import (
	"fmt"

	"github.com/example/canvasmark/internal/annotation"
)

// State is a deep copy of every layer and annotation. Annotations are listed
// layer by layer in paint order.
type State struct {
	Layers      []Layer                 `json:"layers"`
	Annotations []annotation.Annotation `json:"annotations"`
	Active      string                  `json:"active"`
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := State{Active: s.Active, Layers: make([]Layer, len(s.Layers)), Annotations: make([]annotation.Annotation, len(s.Annotations))}
	for i, l := range s.Layers {
		out.Layers[i] = l.clone()
	}
	for i, a := range s.Annotations {
		out.Annotations[i] = a.Clone()
	}
	return out
}

// State captures the manager contents.
func (m *Manager) State() State {
	s := State{Active: m.active, Layers: m.Layers(), Annotations: make([]annotation.Annotation, 0, len(m.arena))}
	for _, l := range m.layers {
		for _, id := range l.Annotations {
			s.Annotations = append(s.Annotations, m.arena[id].Clone())
		}
	}
	return s
}

// Restore replaces the manager contents with a copy of s. The state is
// checked first; on error the manager is left unchanged.
func (m *Manager) Restore(s State) error {
	if len(s.Layers) == 0 {
		return fmt.Errorf("%w: state has no layers", ErrInvariantViolation)
	}
	layers := make([]*Layer, 0, len(s.Layers))
	owner := map[string]string{}
	for _, l := range s.Layers {
		if _, dup := owner[l.ID]; dup {
			return fmt.Errorf("%w: duplicate layer id %s", ErrInvariantViolation, l.ID)
		}
		if _, err := ParseBlendMode(string(l.Blend)); err != nil {
			return err
		}
		owner[l.ID] = l.ID
		c := l.clone()
		layers = append(layers, &c)
	}
	arena := make(map[string]annotation.Annotation, len(s.Annotations))
	for _, a := range s.Annotations {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("annotation %s: %w", a.ID, err)
		}
		if _, ok := owner[a.Layer]; !ok {
			return fmt.Errorf("%w: annotation %s references layer %s", ErrInvariantViolation, a.ID, a.Layer)
		}
		if _, dup := arena[a.ID]; dup {
			return fmt.Errorf("%w: duplicate annotation id %s", ErrInvariantViolation, a.ID)
		}
		arena[a.ID] = a.Clone()
	}
	listed := 0
	for _, l := range layers {
		for _, id := range l.Annotations {
			a, ok := arena[id]
			if !ok || a.Layer != l.ID {
				return fmt.Errorf("%w: layer %s lists annotation %s it does not own", ErrInvariantViolation, l.ID, id)
			}
			listed++
		}
	}
	if listed != len(arena) {
		return fmt.Errorf("%w: %d annotations are not listed by any layer", ErrInvariantViolation, len(arena)-listed)
	}
	active := s.Active
	if _, ok := owner[active]; !ok {
		active = layers[len(layers)-1].ID
	}
	m.layers, m.arena, m.active = layers, arena, active
	return nil
}
