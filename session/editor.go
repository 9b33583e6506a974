/*
Package session ties the label volume, the viewer and the brush to the solver
notifier.

An Editor serializes every operation that reads or writes the label volume
behind one coarse lock: paint and erase strokes, radius changes, and the whole
fill, classify and notify cycle of a send.  Sends run on a worker goroutine as
cancellable jobs, one at a time.
*/
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/janelia-flyem/labelpaint/brush"
	"github.com/janelia-flyem/labelpaint/floodfill"
	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/solver"
	"github.com/janelia-flyem/labelpaint/transform"
)

var (
	ErrBusy             = errors.New("a send to the solver is already in progress")
	ErrNoActiveFragment = errors.New("no active fragment selected for painting")
	ErrNoSolver         = errors.New("no solver notifier configured")
	ErrUnboundTrigger   = errors.New("no action bound to trigger")
)

// Options are the optional parts of an Editor.
type Options struct {
	// Fragments, if non-nil, is the unpainted fragment volume used for
	// classification.  Otherwise New snapshots the volume before any painting.
	Fragments labels.Reader

	// ClassifyPainted classifies against the painted volume itself.  The flood
	// label is then always the only contained and overpainted id.
	ClassifyPainted bool

	// Bindings maps input triggers to action names, overriding the defaults.
	// An empty action name removes a default binding.
	Bindings map[string]string

	// MaxVoxels bounds a fill.  0 means unlimited.
	MaxVoxels uint64

	// Timeout bounds a whole send job.  0 means no timeout.
	Timeout time.Duration
}

// Editor is a painting session over one label volume.
type Editor struct {
	mu sync.Mutex

	volume    *labels.Dense
	fragments labels.Reader
	dirty     *labels.DirtyInterval
	viewer    transform.Viewer
	mapper    *transform.Mapper
	brush     *brush.Brush
	strokes   map[string]*brush.Stroke
	active    uint64

	actions  map[string]Action
	bindings map[string]string

	notifier *solver.Notifier
	fillOpts floodfill.Options
	timeout  time.Duration

	jobs    *semaphore.Weighted
	jobMu   sync.Mutex
	lastJob *Job
}

// New returns an editor painting into volume as seen through viewer.  The
// notifier may be nil, in which case sends fail with ErrNoSolver.
func New(volume *labels.Dense, viewer transform.Viewer, labelTransform transform.Affine3D,
	notifier *solver.Notifier, opts Options) (*Editor, error) {

	mapper, err := transform.NewMapper(viewer, labelTransform)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		volume:    volume,
		fragments: opts.Fragments,
		dirty:     new(labels.DirtyInterval),
		viewer:    viewer,
		mapper:    mapper,
		active:    labels.Invalid,
		notifier:  notifier,
		fillOpts: floodfill.Options{
			ChunkSize: volume.ChunkSize(),
			MaxVoxels: opts.MaxVoxels,
		},
		timeout: opts.Timeout,
		jobs:    semaphore.NewWeighted(1),
	}
	if e.fragments == nil && !opts.ClassifyPainted {
		e.fragments = volume.Clone()
	}
	e.brush = brush.New(mapper, volume, e.dirty)
	e.strokes = map[string]*brush.Stroke{
		ActionPaint: e.brush.NewStroke(ActionPaint, e.activeValue),
		ActionErase: e.brush.Erase(),
	}
	e.actions = e.newActions()
	if e.bindings, err = e.bind(opts.Bindings); err != nil {
		return nil, err
	}
	return e, nil
}

// activeValue is called with the lock held.
func (e *Editor) activeValue() uint64 {
	return e.active
}

// Volume returns the painted label volume.  Callers must not modify it outside
// of the editor.
func (e *Editor) Volume() *labels.Dense {
	return e.volume
}

// Viewer returns the viewer the editor paints through.
func (e *Editor) Viewer() transform.Viewer {
	return e.viewer
}

// SetActive selects the fragment id painted by the paint action.
func (e *Editor) SetActive(label uint64) error {
	if !labels.IsFragment(label) {
		return fmt.Errorf("label %d cannot be painted: reserved value", label)
	}
	e.mu.Lock()
	e.active = label
	e.mu.Unlock()
	return nil
}

// Active returns the active fragment id and whether one is selected.
func (e *Editor) Active() (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active, labels.IsFragment(e.active)
}

// Radius returns the brush radius.
func (e *Editor) Radius() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brush.Radius()
}

// SetRadius sets the brush radius, flooring it at zero.
func (e *Editor) SetRadius(radius int) {
	e.mu.Lock()
	e.brush.SetRadius(radius)
	e.mu.Unlock()
}

// Overlay returns the brush indicator state.
func (e *Editor) Overlay() brush.Overlay {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brush.Overlay()
}

// Label returns the painted label at a voxel.
func (e *Editor) Label(p labelpaint.Point3d) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume.Value(p)
}

// Dirty returns the box modified since the last reset.
func (e *Editor) Dirty() (labelpaint.Extents3d, bool) {
	return e.dirty.Extents()
}

// ResetDirty clears the modified box once it has been persisted, returning the
// box that was cleared.
func (e *Editor) ResetDirty() (labelpaint.Extents3d, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ext, ok := e.dirty.Extents()
	e.dirty.Reset()
	return ext, ok
}

// Stroke paints (or erases) along a display-space path as a single drag.
func (e *Editor) Stroke(action string, path [][2]float64) error {
	if len(path) == 0 {
		return fmt.Errorf("empty %s path", action)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	stroke, err := e.stroke(action)
	if err != nil {
		return err
	}
	stroke.Init(path[0][0], path[0][1])
	for _, pt := range path[1:] {
		stroke.Drag(pt[0], pt[1])
	}
	last := path[len(path)-1]
	stroke.End(last[0], last[1])
	return nil
}

// stroke is called with the lock held.
func (e *Editor) stroke(action string) (*brush.Stroke, error) {
	stroke, found := e.strokes[action]
	if !found {
		return nil, fmt.Errorf("%q is not a painting action", action)
	}
	if action == ActionPaint && !labels.IsFragment(e.active) {
		return nil, ErrNoActiveFragment
	}
	return stroke, nil
}
