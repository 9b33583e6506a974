/*
Package mask implements a sparse, chunk-granular boolean volume.  Chunks are
allocated the first time one of their voxels is marked, so a Mask only holds
memory proportional to the chunks a flood fill actually touched.
*/
package mask

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/janelia-flyem/labelpaint/labelpaint"
)

// Chunk is the dense bit grid for one chunk of a Mask.  Bits are ordered with x
// varying fastest, then y, then z.
type Chunk struct {
	Coord labelpaint.ChunkPoint3d

	size labelpaint.Point3d
	bits *bitset.BitSet
}

func newChunk(coord labelpaint.ChunkPoint3d, size labelpaint.Point3d) *Chunk {
	return &Chunk{
		Coord: coord,
		size:  size,
		bits:  bitset.New(uint(size.Prod())),
	}
}

func (c *Chunk) index(p labelpaint.Point3d) uint {
	return uint(p[0]) + uint(c.size[0])*(uint(p[1])+uint(c.size[1])*uint(p[2]))
}

// MinPoint returns the first voxel of the chunk.
func (c *Chunk) MinPoint() labelpaint.Point3d {
	return c.Coord.MinPoint(c.size)
}

// MaxPoint returns the last voxel of the chunk.
func (c *Chunk) MaxPoint() labelpaint.Point3d {
	return c.Coord.MaxPoint(c.size)
}

// Extents returns the voxel bounds of the chunk.
func (c *Chunk) Extents() labelpaint.Extents3d {
	return labelpaint.Extents3d{MinPoint: c.MinPoint(), MaxPoint: c.MaxPoint()}
}

// Get returns true if the chunk-local point is marked.
func (c *Chunk) Get(local labelpaint.Point3d) bool {
	return c.bits.Test(c.index(local))
}

// Any returns true if at least one voxel in the chunk is marked.
func (c *Chunk) Any() bool {
	return c.bits.Any()
}

// Count returns the number of marked voxels.
func (c *Chunk) Count() uint {
	return c.bits.Count()
}

// Bytes serializes the chunk as one byte per voxel, 1 for marked and 0 for
// unmarked, over exactly the chunk's voxels in x-fastest order.
func (c *Chunk) Bytes() []byte {
	n := uint(c.size.Prod())
	data := make([]byte, n)
	for i, found := c.bits.NextSet(0); found && i < n; i, found = c.bits.NextSet(i + 1) {
		data[i] = 1
	}
	return data
}

// DecodeBytes reverses Chunk.Bytes, returning the marked state of every voxel of a
// chunk with the given size.
func DecodeBytes(size labelpaint.Point3d, data []byte) ([]bool, error) {
	if int64(len(data)) != size.Prod() {
		return nil, fmt.Errorf("chunk of size %s needs %d bytes, got %d", size, size.Prod(), len(data))
	}
	bits := make([]bool, len(data))
	for i, b := range data {
		switch b {
		case 0:
		case 1:
			bits[i] = true
		default:
			return nil, fmt.Errorf("bad mask byte %d at offset %d", b, i)
		}
	}
	return bits, nil
}

// Mask maps chunk coordinates to chunk bit grids.  A chunk exists iff at least
// one of its voxels has been marked.  Mask is not safe for concurrent use.
type Mask struct {
	chunkSize labelpaint.Point3d
	chunks    map[labelpaint.ChunkPoint3d]*Chunk
	numVoxels uint64
}

// New returns an empty mask partitioned into chunks of the given size.
func New(chunkSize labelpaint.Point3d) *Mask {
	return &Mask{
		chunkSize: chunkSize,
		chunks:    make(map[labelpaint.ChunkPoint3d]*Chunk),
	}
}

// ChunkSize returns the chunk dimensions.
func (m *Mask) ChunkSize() labelpaint.Point3d {
	return m.chunkSize
}

// Get returns true if the voxel has been marked.
func (m *Mask) Get(p labelpaint.Point3d) bool {
	c, found := m.chunks[p.Chunk(m.chunkSize)]
	if !found {
		return false
	}
	return c.Get(p.PointInChunk(m.chunkSize))
}

// Set marks a voxel, allocating its chunk if necessary.  It returns false if the
// voxel was already marked.
func (m *Mask) Set(p labelpaint.Point3d) bool {
	coord := p.Chunk(m.chunkSize)
	c, found := m.chunks[coord]
	if !found {
		c = newChunk(coord, m.chunkSize)
		m.chunks[coord] = c
	}
	i := c.index(p.PointInChunk(m.chunkSize))
	if c.bits.Test(i) {
		return false
	}
	c.bits.Set(i)
	m.numVoxels++
	return true
}

// Empty returns true if nothing has been marked.
func (m *Mask) Empty() bool {
	return len(m.chunks) == 0
}

// NumChunks returns the number of allocated chunks.
func (m *Mask) NumChunks() int {
	return len(m.chunks)
}

// NumVoxels returns the number of marked voxels.
func (m *Mask) NumVoxels() uint64 {
	return m.numVoxels
}

// Chunk returns the chunk at the given coordinate if allocated.
func (m *Mask) Chunk(coord labelpaint.ChunkPoint3d) (*Chunk, bool) {
	c, found := m.chunks[coord]
	return c, found
}

// Chunks returns the allocated chunks ordered by z, then y, then x.
func (m *Mask) Chunks() []*Chunk {
	chunks := make([]*Chunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		chunks = append(chunks, c)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Coord.LessZYX(chunks[j].Coord) })
	return chunks
}

// ChunkBounds returns the minimal cuboid in chunk space enclosing all allocated
// chunks.  It returns false for an empty mask.
func (m *Mask) ChunkBounds() (min, max labelpaint.ChunkPoint3d, ok bool) {
	if len(m.chunks) == 0 {
		return
	}
	min = labelpaint.MaxChunkPoint3d
	max = labelpaint.MinChunkPoint3d
	for coord := range m.chunks {
		min.SetMinimum(coord)
		max.SetMaximum(coord)
	}
	return min, max, true
}

// VoxelBounds expands the chunk bounds into voxel coordinates, the maximum
// being the last voxel of the last chunk.
func (m *Mask) VoxelBounds() (labelpaint.Extents3d, bool) {
	min, max, ok := m.ChunkBounds()
	if !ok {
		return labelpaint.Extents3d{}, false
	}
	return labelpaint.Extents3d{
		MinPoint: min.MinPoint(m.chunkSize),
		MaxPoint: max.MaxPoint(m.chunkSize),
	}, true
}

// Points calls f for every marked voxel, chunk by chunk in Chunks order.
func (m *Mask) Points(f func(p labelpaint.Point3d)) {
	for _, c := range m.Chunks() {
		offset := c.MinPoint()
		sx, sy := uint(c.size[0]), uint(c.size[1])
		for i, found := c.bits.NextSet(0); found; i, found = c.bits.NextSet(i + 1) {
			local := labelpaint.Point3d{int32(i % sx), int32((i / sx) % sy), int32(i / (sx * sy))}
			f(offset.Add(local))
		}
	}
}
