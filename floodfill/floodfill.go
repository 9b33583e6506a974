/*
Package floodfill floods the face-connected region of one label starting at a
seed voxel, recording the region in a sparse chunk mask.

The flood is bounded only by label boundaries and the volume extents, so its
cost grows with the size of the connected component.  Options.MaxVoxels and
context cancellation let callers abort a fill over a mislabeled volume.
*/
package floodfill

import (
	"context"
	"errors"
	"fmt"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/mask"
)

// DefaultCheckEvery is the number of voxels marked between context checks.
const DefaultCheckEvery = 4096

// ErrRegionTooLarge is returned when a fill would mark more than Options.MaxVoxels.
var ErrRegionTooLarge = errors.New("painted region too large")

// Options configures a fill.
type Options struct {
	// ChunkSize partitions the output mask and must match the volume's chunking.
	ChunkSize labelpaint.Point3d

	// MaxVoxels aborts the fill with ErrRegionTooLarge once exceeded.  0 means unlimited.
	MaxVoxels uint64

	// CheckEvery is the number of voxels marked between context checks.
	// 0 uses DefaultCheckEvery.
	CheckEvery uint64
}

// Result is the outcome of a fill.
type Result struct {
	Seed  labelpaint.Point3d
	Label uint64
	Mask  *mask.Mask
}

// Empty returns true if the fill marked nothing, i.e., the seed did not hold a
// fragment label and there is nothing to propagate.
func (r *Result) Empty() bool {
	return r == nil || r.Mask == nil || r.Mask.Empty()
}

// Fill floods all voxels face-connected to the seed that share its label.
// If the seed holds Transparent, Invalid or Outside, an empty result is returned
// with a nil error.
func Fill(ctx context.Context, volume labels.Reader, seed labelpaint.Point3d, opts Options) (*Result, error) {
	for dim := 0; dim < 3; dim++ {
		if opts.ChunkSize[dim] <= 0 {
			return nil, fmt.Errorf("bad chunk size %s for flood fill", opts.ChunkSize)
		}
	}
	checkEvery := opts.CheckEvery
	if checkEvery == 0 {
		checkEvery = DefaultCheckEvery
	}

	label := volume.Value(seed)
	result := &Result{
		Seed:  seed,
		Label: label,
		Mask:  mask.New(opts.ChunkSize),
	}
	if !labels.IsFragment(label) {
		labelpaint.Debugf("Seed %s holds non-fragment label %x, nothing to fill\n", seed, label)
		return result, nil
	}

	timedLog := labelpaint.NewTimeLog()
	m := result.Mask
	m.Set(seed)
	queue := []labelpaint.Point3d{seed}
	var sinceCheck uint64
	for head := 0; head < len(queue); head++ {
		p := queue[head]
		for _, offset := range labelpaint.FaceNeighbors {
			n := p.Add(offset)
			if volume.Value(n) != label || m.Get(n) {
				continue
			}
			m.Set(n)
			queue = append(queue, n)
			if opts.MaxVoxels != 0 && m.NumVoxels() > opts.MaxVoxels {
				return nil, fmt.Errorf("%w: label %d from seed %s exceeds %s voxels",
					ErrRegionTooLarge, label, seed, humanize.Comma(int64(opts.MaxVoxels)))
			}
			sinceCheck++
			if sinceCheck >= checkEvery {
				sinceCheck = 0
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
		}
	}
	if labelpaint.LogMode() <= labelpaint.DebugMode {
		timedLog.Debugf("Filled label %d from seed %s: %s voxels in %d chunks, mask ~%s",
			label, seed, humanize.Comma(int64(m.NumVoxels())), m.NumChunks(),
			humanize.Bytes(uint64(size.Of(m))))
	}
	return result, nil
}
