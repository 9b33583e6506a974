package transform

import (
	"sync"
	"sync/atomic"
)

// Viewer is the boundary to the interactive viewer.  The viewer transform maps
// global coordinates to display coordinates.
type Viewer interface {
	// DisplayToGlobal maps a display coordinate (x, y, 0) into global space.
	DisplayToGlobal(p [3]float64) [3]float64

	// ViewerTransform returns the current global-to-display transform.
	ViewerTransform() Affine3D

	// RequestRepaint asks the viewer to redraw.  It does not wait.
	RequestRepaint()
}

// StaticViewer is a headless Viewer whose transform only changes through
// SetTransform.  It counts repaint requests.
type StaticViewer struct {
	mu        sync.RWMutex
	transform Affine3D
	inverse   Affine3D
	repaints  uint64
}

// NewStaticViewer returns a viewer with the given global-to-display transform.
func NewStaticViewer(t Affine3D) (*StaticViewer, error) {
	v := new(StaticViewer)
	if err := v.SetTransform(t); err != nil {
		return nil, err
	}
	return v, nil
}

// SetTransform replaces the viewer transform.
func (v *StaticViewer) SetTransform(t Affine3D) error {
	inv, err := t.Inverse()
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.transform = t
	v.inverse = inv
	v.mu.Unlock()
	return nil
}

func (v *StaticViewer) DisplayToGlobal(p [3]float64) [3]float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.inverse.Apply(p)
}

func (v *StaticViewer) ViewerTransform() Affine3D {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.transform
}

func (v *StaticViewer) RequestRepaint() {
	atomic.AddUint64(&v.repaints, 1)
}

// Repaints returns the number of repaint requests received.
func (v *StaticViewer) Repaints() uint64 {
	return atomic.LoadUint64(&v.repaints)
}
