package engine

import (
	"errors"
	"fmt"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/layer"
)

// Errors owned by the layer manager, re-exported for hosts.
var (
	ErrLayerLocked        = layer.ErrLayerLocked
	ErrInvariantViolation = layer.ErrInvariantViolation
	ErrUnknownLayer       = layer.ErrUnknownLayer
	ErrUnknownAnnotation  = layer.ErrUnknownAnnotation
)

var (
	// ErrPageNotReady is wrapped in a RenderError when a page has no raster yet.
	ErrPageNotReady = errors.New("page not ready")
	// ErrNoSelection is returned by selection operations with nothing selected.
	ErrNoSelection = errors.New("nothing selected")
)

// ValidationError reports malformed annotation parameters.
type ValidationError = annotation.ValidationError

// RenderError reports a page whose base raster could not be produced.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ServiceError reports a failed call to an external collaborator.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
