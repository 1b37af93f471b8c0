// Package layer manages the ordered layers of a document and the annotations
// they own.
package layer

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/example/canvasmark/internal/annotation"
)

var (
	// ErrLayerLocked is returned when an annotation mutation targets a locked layer.
	ErrLayerLocked = errors.New("layer is locked")
	// ErrInvariantViolation is returned when an operation would break a document invariant.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrUnknownLayer is returned for layer ids that do not exist.
	ErrUnknownLayer = errors.New("unknown layer")
	// ErrUnknownAnnotation is returned for annotation ids that do not exist.
	ErrUnknownAnnotation = errors.New("unknown annotation")
)

// Layer is one entry of the z-order. Annotation ids are kept in paint order.
type Layer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Visible     bool      `json:"visible"`
	Locked      bool      `json:"locked"`
	Opacity     float64   `json:"opacity"`
	Blend       BlendMode `json:"blend"`
	Annotations []string  `json:"annotations"`
}

func (l Layer) clone() Layer {
	l.Annotations = slices.Clone(l.Annotations)
	if l.Annotations == nil {
		l.Annotations = []string{}
	}
	return l
}

// Manager owns the layers of one document. The zero value is not usable; use New.
type Manager struct {
	layers []*Layer
	arena  map[string]annotation.Annotation
	active string
	newID  func() string
}

// New creates a manager holding a single layer called name. newID supplies
// layer ids.
func New(newID func() string, name string) *Manager {
	m := &Manager{arena: map[string]annotation.Annotation{}, newID: newID}
	m.AddLayer(name)
	return m
}

// AddLayer appends a visible, unlocked, opaque layer and makes it active.
func (m *Manager) AddLayer(name string) string {
	l := &Layer{
		ID:          m.newID(),
		Name:        name,
		Visible:     true,
		Opacity:     1,
		Blend:       BlendNormal,
		Annotations: []string{},
	}
	m.layers = append(m.layers, l)
	m.active = l.ID
	return l.ID
}

func (m *Manager) index(id string) int {
	for i, l := range m.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) find(id string) (*Layer, error) {
	if i := m.index(id); i >= 0 {
		return m.layers[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, id)
}

// RemoveLayer deletes a layer and every annotation it owns. The last layer
// cannot be removed. When the active layer goes, the layer now at the same
// index becomes active, or the last layer if the index fell off the end.
func (m *Manager) RemoveLayer(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	if len(m.layers) == 1 {
		return fmt.Errorf("%w: cannot remove the last layer", ErrInvariantViolation)
	}
	for _, aid := range m.layers[i].Annotations {
		delete(m.arena, aid)
	}
	m.layers = slices.Delete(m.layers, i, i+1)
	if m.active == id {
		if i >= len(m.layers) {
			i = len(m.layers) - 1
		}
		m.active = m.layers[i].ID
	}
	return nil
}

// SetVisible shows or hides a layer.
func (m *Manager) SetVisible(id string, visible bool) error {
	l, err := m.find(id)
	if err != nil {
		return err
	}
	l.Visible = visible
	return nil
}

// SetLocked locks or unlocks a layer.
func (m *Manager) SetLocked(id string, locked bool) error {
	l, err := m.find(id)
	if err != nil {
		return err
	}
	l.Locked = locked
	return nil
}

// SetOpacity stores v clamped to [0,1].
func (m *Manager) SetOpacity(id string, v float64) error {
	l, err := m.find(id)
	if err != nil {
		return err
	}
	if math.IsNaN(v) {
		v = 1
	}
	l.Opacity = math.Max(0, math.Min(1, v))
	return nil
}

// SetBlendMode changes how the layer composites.
func (m *Manager) SetBlendMode(id string, mode BlendMode) error {
	if _, err := ParseBlendMode(string(mode)); err != nil {
		return err
	}
	l, err := m.find(id)
	if err != nil {
		return err
	}
	l.Blend = mode
	return nil
}

// Rename changes the display name of a layer.
func (m *Manager) Rename(id, name string) error {
	l, err := m.find(id)
	if err != nil {
		return err
	}
	l.Name = name
	return nil
}

// Reorder moves a layer to newIndex, clamped into range. Index 0 paints first.
func (m *Manager) Reorder(id string, newIndex int) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	newIndex = max(0, min(len(m.layers)-1, newIndex))
	l := m.layers[i]
	m.layers = slices.Delete(m.layers, i, i+1)
	m.layers = slices.Insert(m.layers, newIndex, l)
	return nil
}

// SetActive selects the layer that receives new annotations.
func (m *Manager) SetActive(id string) error {
	if _, err := m.find(id); err != nil {
		return err
	}
	m.active = id
	return nil
}

// Active returns the active layer id.
func (m *Manager) Active() string { return m.active }

// ActiveLayer returns a copy of the active layer.
func (m *Manager) ActiveLayer() Layer {
	l, _ := m.find(m.active)
	return l.clone()
}

// Layer returns a copy of the layer with the given id.
func (m *Manager) Layer(id string) (Layer, bool) {
	l, err := m.find(id)
	if err != nil {
		return Layer{}, false
	}
	return l.clone(), true
}

// Layers returns copies of all layers in paint order.
func (m *Manager) Layers() []Layer {
	out := make([]Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = l.clone()
	}
	return out
}

// Len returns the number of layers.
func (m *Manager) Len() int { return len(m.layers) }
