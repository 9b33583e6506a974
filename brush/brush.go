/*
Package brush rasterizes brush strokes into a label volume.  A brush paints a
disc on the volume plane most nearly parallel to the screen, and a drag is
painted as a series of discs spaced at most one voxel apart.
*/
package brush

import (
	"math"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/transform"
)

// DefaultRadius is the brush radius in screen-scaled voxels at startup.
const DefaultRadius = 5

// Overlay is the on-screen brush indicator state.
type Overlay struct {
	X, Y    float64
	Radius  int
	Visible bool
}

// Brush holds the state shared by paint and erase strokes.  It does no locking;
// callers serialize access with the same lock that guards the volume.
type Brush struct {
	mapper *transform.Mapper
	volume labels.ReadWriter
	dirty  *labels.DirtyInterval

	radius  int
	overlay Overlay
}

// New returns a brush painting into the volume and recording modified voxels
// in the dirty interval.
func New(mapper *transform.Mapper, volume labels.ReadWriter, dirty *labels.DirtyInterval) *Brush {
	return &Brush{
		mapper:  mapper,
		volume:  volume,
		dirty:   dirty,
		radius:  DefaultRadius,
		overlay: Overlay{Radius: DefaultRadius},
	}
}

// Radius returns the current brush radius.
func (b *Brush) Radius() int {
	return b.radius
}

// SetRadius sets the brush radius, flooring it at zero.
func (b *Brush) SetRadius(radius int) {
	if radius < 0 {
		radius = 0
	}
	b.radius = radius
	b.overlay.Radius = radius
}

// Scroll grows the radius by one for negative vertical wheel rotation and shrinks
// it by one for positive rotation.  Horizontal scrolling is ignored.
func (b *Brush) Scroll(wheelRotation float64, isHorizontal bool) {
	if isHorizontal {
		return
	}
	if wheelRotation < 0 {
		b.SetRadius(b.radius + 1)
	} else if wheelRotation > 0 {
		b.SetRadius(b.radius - 1)
	}
}

// Overlay returns the brush indicator state.
func (b *Brush) Overlay() Overlay {
	return b.overlay
}

// MoveOverlay positions the brush indicator at a display coordinate.
func (b *Brush) MoveOverlay(x, y float64, visible bool) {
	b.overlay.X = x
	b.overlay.Y = y
	b.overlay.Visible = visible
}

// NormalAxis returns the volume axis most nearly aligned with the viewing
// direction, comparing the absolute third column of the viewer transform.
// Ties go to the lower axis.
func NormalAxis(viewerTransform transform.Affine3D) int {
	absX := math.Abs(viewerTransform.Get(0, 2))
	absY := math.Abs(viewerTransform.Get(1, 2))
	absZ := math.Abs(viewerTransform.Get(2, 2))
	normal := 0
	if absY > absX {
		normal = 1
		if absZ > absY {
			normal = 2
		}
	} else if absZ > absX {
		normal = 2
	}
	return normal
}

// planeAxes returns the two axes spanning the plane orthogonal to the normal.
func planeAxes(normal int) (int, int) {
	a0, a1 := 0, 2
	if normal == 0 {
		a0 = 1
	}
	if normal == 2 {
		a1 = 1
	}
	return a0, a1
}

func round(x float64) int32 {
	return int32(math.Floor(x + 0.5))
}

// PaintPoint paints a disc of the given value centered at a volume coordinate
// on the plane orthogonal to the current normal axis.  The returned extents
// cover every voxel written and false is returned if nothing was written.
func (b *Brush) PaintPoint(coord [3]float64, value uint64) (labelpaint.Extents3d, bool) {
	normal := NormalAxis(b.mapper.Viewer().ViewerTransform())
	a0, a1 := planeAxes(normal)

	scale := b.mapper.LabelTransform().ExtractScale(a0)
	r := round(float64(b.radius) / scale)
	c0, c1 := round(coord[a0]), round(coord[a1])

	var p labelpaint.Point3d
	p[normal] = round(coord[normal])

	var written labelpaint.Extents3d
	var painted bool
	for d1 := -r; d1 <= r; d1++ {
		for d0 := -r; d0 <= r; d0++ {
			if int64(d0)*int64(d0)+int64(d1)*int64(d1) > int64(r)*int64(r) {
				continue
			}
			p[a0] = c0 + d0
			p[a1] = c1 + d1
			if !b.volume.SetValue(p, value) {
				continue
			}
			if painted {
				written.MinPoint.SetMinimum(p)
				written.MaxPoint.SetMaximum(p)
			} else {
				written = labelpaint.Extents3d{MinPoint: p, MaxPoint: p}
				painted = true
			}
		}
	}
	if painted && b.dirty != nil {
		b.dirty.Touch(written)
	}
	return written, painted
}

// StrokeCenters returns the volume coordinates painted when stroking from p1 to
// p2: unit steps from p1 toward p2 and finally p2 itself.  The start point is not
// included since it was painted when the stroke began.
func StrokeCenters(p1, p2 [3]float64) [][3]float64 {
	var d [3]float64
	var length float64
	for i := 0; i < 3; i++ {
		d[i] = p2[i] - p1[i]
		length += d[i] * d[i]
	}
	length = math.Sqrt(length)
	if length > 0 {
		for i := 0; i < 3; i++ {
			d[i] /= length
		}
	}
	centers := make([][3]float64, 0, int(length)+1)
	cur := p1
	for i := 1; float64(i) < length; i++ {
		for dim := 0; dim < 3; dim++ {
			cur[dim] += d[dim]
		}
		centers = append(centers, cur)
	}
	return append(centers, p2)
}

// PaintStroke paints along the straight line between two display coordinates,
// never leaving a gap larger than one voxel.
func (b *Brush) PaintStroke(x1, y1, x2, y2 float64, value uint64) (labelpaint.Extents3d, bool) {
	p1 := b.mapper.ToVolumeSpace(x1, y1)
	p2 := b.mapper.ToVolumeSpace(x2, y2)

	var written labelpaint.Extents3d
	var painted bool
	for _, center := range StrokeCenters(p1, p2) {
		ext, ok := b.PaintPoint(center, value)
		if !ok {
			continue
		}
		if painted {
			written = written.Union(ext)
		} else {
			written = ext
			painted = true
		}
	}
	return written, painted
}
