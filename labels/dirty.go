package labels

import (
	"sync"

	"github.com/janelia-flyem/labelpaint/labelpaint"
)

// DirtyInterval tracks the bounding box of all voxels modified since the last
// Reset.  Only painting grows it; an external persistence path reads and resets it.
type DirtyInterval struct {
	mu    sync.RWMutex
	ext   labelpaint.Extents3d
	dirty bool
}

// Touch unions the given box into the dirty interval.
func (di *DirtyInterval) Touch(ext labelpaint.Extents3d) {
	di.mu.Lock()
	if di.dirty {
		di.ext = di.ext.Union(ext)
	} else {
		di.ext = ext
		di.dirty = true
	}
	di.mu.Unlock()
}

// Extents returns the dirty box and false if nothing has been touched.
func (di *DirtyInterval) Extents() (labelpaint.Extents3d, bool) {
	di.mu.RLock()
	defer di.mu.RUnlock()
	return di.ext, di.dirty
}

// Reset clears the interval, typically after the dirty region has been flushed.
func (di *DirtyInterval) Reset() {
	di.mu.Lock()
	di.ext = labelpaint.Extents3d{}
	di.dirty = false
	di.mu.Unlock()
}
