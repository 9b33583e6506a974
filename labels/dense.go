package labels

import (
	"fmt"

	"github.com/janelia-flyem/labelpaint/labelpaint"
)

// Dense is an in-memory label volume with x varying fastest, then y, then z.
// Reads beyond the bounds return the extension value.  Dense does no locking;
// callers serialize access (see session.Editor).
type Dense struct {
	size      labelpaint.Point3d
	chunkSize labelpaint.Point3d
	extension uint64
	data      []uint64
}

// NewDense returns a volume of the given size filled with Transparent and extended
// with Outside.  The chunk size partitions the volume for sparse masks.
func NewDense(size, chunkSize labelpaint.Point3d) (*Dense, error) {
	for dim := 0; dim < 3; dim++ {
		if size[dim] <= 0 {
			return nil, fmt.Errorf("bad volume size %s: all dimensions must be positive", size)
		}
		if chunkSize[dim] <= 0 {
			return nil, fmt.Errorf("bad chunk size %s: all dimensions must be positive", chunkSize)
		}
	}
	d := &Dense{
		size:      size,
		chunkSize: chunkSize,
		extension: Outside,
		data:      make([]uint64, size.Prod()),
	}
	d.Fill(Transparent)
	return d, nil
}

// Size returns the number of voxels along each axis.
func (d *Dense) Size() labelpaint.Point3d {
	return d.size
}

// ChunkSize returns the chunk dimensions used to partition this volume.
func (d *Dense) ChunkSize() labelpaint.Point3d {
	return d.chunkSize
}

// Extents returns the voxel bounds of the volume.
func (d *Dense) Extents() labelpaint.Extents3d {
	return labelpaint.Extents3d{
		MaxPoint: d.size.Sub(labelpaint.Point3d{1, 1, 1}),
	}
}

// SetExtension changes the value returned beyond the bounds.
func (d *Dense) SetExtension(label uint64) {
	d.extension = label
}

// Contains returns true if the point lies within the volume.
func (d *Dense) Contains(p labelpaint.Point3d) bool {
	return p[0] >= 0 && p[1] >= 0 && p[2] >= 0 &&
		p[0] < d.size[0] && p[1] < d.size[1] && p[2] < d.size[2]
}

func (d *Dense) index(p labelpaint.Point3d) int64 {
	return int64(p[0]) + int64(d.size[0])*(int64(p[1])+int64(d.size[1])*int64(p[2]))
}

// Value returns the label at p or the extension value if p is out of bounds.
func (d *Dense) Value(p labelpaint.Point3d) uint64 {
	if !d.Contains(p) {
		return d.extension
	}
	return d.data[d.index(p)]
}

// SetValue writes a label, returning false if p is out of bounds.
func (d *Dense) SetValue(p labelpaint.Point3d, label uint64) bool {
	if !d.Contains(p) {
		return false
	}
	d.data[d.index(p)] = label
	return true
}

// Fill sets every voxel to the given label.
func (d *Dense) Fill(label uint64) {
	for i := range d.data {
		d.data[i] = label
	}
}

// FillBox sets every voxel of the box, clipped to the volume, to the given label.
func (d *Dense) FillBox(ext labelpaint.Extents3d, label uint64) {
	bounds := d.Extents()
	ext.MinPoint.SetMaximum(bounds.MinPoint)
	ext.MaxPoint.SetMinimum(bounds.MaxPoint)
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			for x := ext.MinPoint[0]; x <= ext.MaxPoint[0]; x++ {
				d.SetValue(labelpaint.Point3d{x, y, z}, label)
			}
		}
	}
}

// Clone returns a deep copy of the volume.
func (d *Dense) Clone() *Dense {
	c := *d
	c.data = make([]uint64, len(d.data))
	copy(c.data, d.data)
	return &c
}
