package labelpaint

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point3d is an ordered list of three 32-bit signed integers giving a voxel coordinate.
type Point3d [3]int32

// SetMinimum sets the point to the minimum elements of current and passed points.
func (p *Point3d) SetMinimum(p2 Point3d) {
	if p[0] > p2[0] {
		p[0] = p2[0]
	}
	if p[1] > p2[1] {
		p[1] = p2[1]
	}
	if p[2] > p2[2] {
		p[2] = p2[2]
	}
}

// SetMaximum sets the point to the maximum elements of current and passed points.
func (p *Point3d) SetMaximum(p2 Point3d) {
	if p[0] < p2[0] {
		p[0] = p2[0]
	}
	if p[1] < p2[1] {
		p[1] = p2[1]
	}
	if p[2] < p2[2] {
		p[2] = p2[2]
	}
}

// Add returns the addition of two points.
func (p Point3d) Add(p2 Point3d) Point3d {
	return Point3d{p[0] + p2[0], p[1] + p2[1], p[2] + p2[2]}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point3d) Sub(p2 Point3d) Point3d {
	return Point3d{p[0] - p2[0], p[1] - p2[1], p[2] - p2[2]}
}

// Prod returns the product of the point's components, e.g., the number of voxels
// in a block of this size.
func (p Point3d) Prod() int64 {
	return int64(p[0]) * int64(p[1]) * int64(p[2])
}

// Int64 returns the components widened to 64 bits.
func (p Point3d) Int64() [3]int64 {
	return [3]int64{int64(p[0]), int64(p[1]), int64(p[2])}
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// Chunk returns the chunk space coordinate of the chunk containing the point.
func (p Point3d) Chunk(size Point3d) ChunkPoint3d {
	var c ChunkPoint3d
	for dim := 0; dim < 3; dim++ {
		if p[dim] < 0 {
			c[dim] = (p[dim] - size[dim] + 1) / size[dim]
		} else {
			c[dim] = p[dim] / size[dim]
		}
	}
	return c
}

// PointInChunk returns a point in containing block (chunk) space for the given point.
func (p Point3d) PointInChunk(size Point3d) Point3d {
	var r Point3d
	for dim := 0; dim < 3; dim++ {
		r[dim] = p[dim] % size[dim]
		if r[dim] < 0 {
			r[dim] += size[dim]
		}
	}
	return r
}

// FaceNeighbors are the offsets of the six voxels sharing a face with a voxel.
var FaceNeighbors = [6]Point3d{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// StringToPoint3d parses a string of format "%d<sep>%d<sep>%d" into a Point3d.
func StringToPoint3d(str, separator string) (Point3d, error) {
	elems := strings.Split(str, separator)
	if len(elems) != 3 {
		return Point3d{}, fmt.Errorf("cannot convert %q into a 3d point", str)
	}
	var p Point3d
	for i, elem := range elems {
		n, err := strconv.ParseInt(strings.TrimSpace(elem), 10, 32)
		if err != nil {
			return Point3d{}, fmt.Errorf("bad coordinate %q in %q: %v", elem, str, err)
		}
		p[i] = int32(n)
	}
	return p, nil
}

// RoundPoint3d returns the voxel nearest to a real coordinate, rounding halves up.
func RoundPoint3d(c [3]float64) Point3d {
	return Point3d{
		int32(math.Floor(c[0] + 0.5)),
		int32(math.Floor(c[1] + 0.5)),
		int32(math.Floor(c[2] + 0.5)),
	}
}

// ChunkPoint3d handles 3d signed chunk coordinates.
type ChunkPoint3d [3]int32

var (
	MaxChunkPoint3d = ChunkPoint3d{math.MaxInt32, math.MaxInt32, math.MaxInt32}
	MinChunkPoint3d = ChunkPoint3d{math.MinInt32, math.MinInt32, math.MinInt32}
)

func (c ChunkPoint3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2])
}

// SetMinimum sets the point to the minimum elements of current and passed points.
func (c *ChunkPoint3d) SetMinimum(c2 ChunkPoint3d) {
	if c[0] > c2[0] {
		c[0] = c2[0]
	}
	if c[1] > c2[1] {
		c[1] = c2[1]
	}
	if c[2] > c2[2] {
		c[2] = c2[2]
	}
}

// SetMaximum sets the point to the maximum elements of current and passed points.
func (c *ChunkPoint3d) SetMaximum(c2 ChunkPoint3d) {
	if c[0] < c2[0] {
		c[0] = c2[0]
	}
	if c[1] < c2[1] {
		c[1] = c2[1]
	}
	if c[2] < c2[2] {
		c[2] = c2[2]
	}
}

// MinPoint returns the smallest voxel coordinate of the given 3d chunk.
func (c ChunkPoint3d) MinPoint(size Point3d) Point3d {
	return Point3d{
		c[0] * size[0],
		c[1] * size[1],
		c[2] * size[2],
	}
}

// MaxPoint returns the maximum voxel coordinate of the given 3d chunk.
func (c ChunkPoint3d) MaxPoint(size Point3d) Point3d {
	return Point3d{
		(c[0]+1)*size[0] - 1,
		(c[1]+1)*size[1] - 1,
		(c[2]+1)*size[2] - 1,
	}
}

// LessZYX orders chunk coordinates by z, then y, then x.
func (c ChunkPoint3d) LessZYX(c2 ChunkPoint3d) bool {
	if c[2] != c2[2] {
		return c[2] < c2[2]
	}
	if c[1] != c2[1] {
		return c[1] < c2[1]
	}
	return c[0] < c2[0]
}

// Extents3d is an inclusive, axis-aligned voxel bounding box.
type Extents3d struct {
	MinPoint Point3d
	MaxPoint Point3d
}

// Contains returns true if the point is within the extents.
func (ext Extents3d) Contains(p Point3d) bool {
	for dim := 0; dim < 3; dim++ {
		if p[dim] < ext.MinPoint[dim] || p[dim] > ext.MaxPoint[dim] {
			return false
		}
	}
	return true
}

// Size returns the number of voxels along each axis.
func (ext Extents3d) Size() Point3d {
	return ext.MaxPoint.Sub(ext.MinPoint).Add(Point3d{1, 1, 1})
}

// Union returns the smallest extents covering both.
func (ext Extents3d) Union(ext2 Extents3d) Extents3d {
	result := ext
	result.MinPoint.SetMinimum(ext2.MinPoint)
	result.MaxPoint.SetMaximum(ext2.MaxPoint)
	return result
}

func (ext Extents3d) String() string {
	return fmt.Sprintf("%s -> %s", ext.MinPoint, ext.MaxPoint)
}
