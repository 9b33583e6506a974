package brush

import (
	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
)

// ValueFunc returns the label a stroke paints.  It is evaluated for every
// paint so that a change of active fragment applies to the next drag event.
type ValueFunc func() uint64

// Stroke is a drag gesture painting one value.  Paint and erase are two strokes
// over the same Brush that differ only in their ValueFunc.
type Stroke struct {
	name  string
	brush *Brush
	value ValueFunc

	lastX, lastY float64
}

// NewStroke returns a named stroke painting the values returned by value.
func (b *Brush) NewStroke(name string, value ValueFunc) *Stroke {
	return &Stroke{name: name, brush: b, value: value}
}

// Erase returns a stroke painting Transparent.
func (b *Brush) Erase() *Stroke {
	return b.NewStroke("erase", func() uint64 { return labels.Transparent })
}

// Name returns the stroke's action name.
func (s *Stroke) Name() string {
	return s.name
}

// Init starts a drag at a display coordinate, painting a single disc.
func (s *Stroke) Init(x, y float64) {
	s.lastX, s.lastY = x, y
	coord := s.brush.mapper.ToVolumeSpace(x, y)
	s.brush.PaintPoint(coord, s.value())
	s.brush.mapper.Viewer().RequestRepaint()
}

// Drag continues a drag, painting from the last position to this one.
func (s *Stroke) Drag(x, y float64) {
	s.brush.MoveOverlay(x, y, s.brush.overlay.Visible)
	s.brush.PaintStroke(s.lastX, s.lastY, x, y, s.value())
	s.lastX, s.lastY = x, y
	s.brush.mapper.Viewer().RequestRepaint()
}

// End finishes a drag.
func (s *Stroke) End(x, y float64) {
	if s.brush.dirty == nil {
		return
	}
	if ext, dirty := s.brush.dirty.Extents(); dirty {
		labelpaint.Debugf("%s stroke ended at (%g, %g), modified box: %s\n", s.name, x, y, ext)
	}
}
