package engine

import (
	"slices"

	"github.com/example/canvasmark/internal/layer"
)

// AddLayer appends a layer and makes it active. An empty name picks "Layer N".
func (e *Editor) AddLayer(name string) string {
	if name == "" {
		name = e.nextLayerName()
	}
	id := e.layers.AddLayer(name)
	e.commit("add layer", "layer", id)
	return id
}

// RemoveLayer deletes a layer and its annotations. The last layer cannot be
// removed.
func (e *Editor) RemoveLayer(id string) error {
	if id == e.layers.Active() {
		e.machine.Cancel()
	}
	if err := e.layers.RemoveLayer(id); err != nil {
		return err
	}
	if _, ok := e.layers.Get(e.ui.Selection); !ok {
		e.ui.Selection = ""
	}
	e.commit("remove layer", "layer", id)
	return nil
}

// SetLayerVisible shows or hides a layer.
func (e *Editor) SetLayerVisible(id string, visible bool) error {
	return e.layerChange("visibility", id, func() error { return e.layers.SetVisible(id, visible) })
}

// SetLayerLocked locks or unlocks a layer.
func (e *Editor) SetLayerLocked(id string, locked bool) error {
	return e.layerChange("lock", id, func() error { return e.layers.SetLocked(id, locked) })
}

// SetLayerOpacity sets the opacity, clamped to [0,1].
func (e *Editor) SetLayerOpacity(id string, v float64) error {
	return e.layerChange("opacity", id, func() error { return e.layers.SetOpacity(id, v) })
}

// SetLayerBlendMode sets how the layer composites.
func (e *Editor) SetLayerBlendMode(id string, mode layer.BlendMode) error {
	return e.layerChange("blend", id, func() error { return e.layers.SetBlendMode(id, mode) })
}

// RenameLayer changes a layer's display name.
func (e *Editor) RenameLayer(id, name string) error {
	return e.layerChange("rename", id, func() error { return e.layers.Rename(id, name) })
}

// ReorderLayer moves a layer to index, clamped into range.
func (e *Editor) ReorderLayer(id string, index int) error {
	return e.layerChange("reorder", id, func() error { return e.layers.Reorder(id, index) })
}

// SetActiveLayer selects the layer receiving new annotations. Switching is
// not recorded in history.
func (e *Editor) SetActiveLayer(id string) error {
	if err := e.layers.SetActive(id); err != nil {
		return err
	}
	e.machine.Cancel()
	return nil
}

// layerChange runs fn and commits when it altered the layer or its position.
func (e *Editor) layerChange(reason, id string, fn func() error) error {
	before, pos := e.layerAt(id)
	if err := fn(); err != nil {
		return err
	}
	after, newPos := e.layerAt(id)
	if pos == newPos && sameLayer(before, after) {
		e.log.Debug("unchanged layer", "reason", reason, "layer", id)
		return nil
	}
	e.commit(reason, "layer", id)
	return nil
}

func (e *Editor) layerAt(id string) (layer.Layer, int) {
	for i, l := range e.layers.Layers() {
		if l.ID == id {
			return l, i
		}
	}
	return layer.Layer{}, -1
}

func sameLayer(a, b layer.Layer) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Visible == b.Visible && a.Locked == b.Locked &&
		a.Opacity == b.Opacity && a.Blend == b.Blend && slices.Equal(a.Annotations, b.Annotations)
}
