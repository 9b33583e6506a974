/*
Package transform holds the 3d affine transforms that place a label volume in
global space and the viewer boundary used to turn display coordinates into
volume voxel coordinates.
*/
package transform

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularTransform is returned when an affine transform cannot be inverted.
var ErrSingularTransform = errors.New("singular affine transform")

// singularTolerance is the smallest determinant magnitude considered invertible.
const singularTolerance = 1e-12

// Affine3D is a 3d affine transform stored as the top three rows of a
// homogeneous 4x4 matrix in row-major order.
type Affine3D [3][4]float64

// Identity returns the identity transform.
func Identity() Affine3D {
	return Affine3D{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
}

// Scaling returns a transform scaling each axis.
func Scaling(sx, sy, sz float64) Affine3D {
	return Affine3D{
		{sx, 0, 0, 0},
		{0, sy, 0, 0},
		{0, 0, sz, 0},
	}
}

// Translation returns a transform translating by the given offset.
func Translation(tx, ty, tz float64) Affine3D {
	return Affine3D{
		{1, 0, 0, tx},
		{0, 1, 0, ty},
		{0, 0, 1, tz},
	}
}

// FromRowMajor builds a transform from 12 row-major values, as found in configs.
func FromRowMajor(values []float64) (Affine3D, error) {
	var a Affine3D
	if len(values) != 12 {
		return a, fmt.Errorf("affine transform needs 12 row-major values, got %d", len(values))
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			a[r][c] = values[r*4+c]
		}
	}
	return a, nil
}

// Get returns the matrix element at the given row and column.
func (a Affine3D) Get(row, col int) float64 {
	return a[row][col]
}

// Apply transforms a point.
func (a Affine3D) Apply(p [3]float64) [3]float64 {
	var out [3]float64
	for r := 0; r < 3; r++ {
		out[r] = a[r][0]*p[0] + a[r][1]*p[1] + a[r][2]*p[2] + a[r][3]
	}
	return out
}

// Concatenate returns the transform that applies b first, then a.
func (a Affine3D) Concatenate(b Affine3D) Affine3D {
	var out Affine3D
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			v := a[r][0]*b[0][c] + a[r][1]*b[1][c] + a[r][2]*b[2][c]
			if c == 3 {
				v += a[r][3]
			}
			out[r][c] = v
		}
	}
	return out
}

func (a Affine3D) dense() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, a[r][c])
		}
	}
	m.Set(3, 3, 1)
	return m
}

// Inverse returns the inverse transform or ErrSingularTransform.
func (a Affine3D) Inverse() (Affine3D, error) {
	var inv Affine3D
	m := a.dense()
	if math.Abs(mat.Det(m)) < singularTolerance {
		return inv, ErrSingularTransform
	}
	var dense mat.Dense
	if err := dense.Inverse(m); err != nil {
		return inv, fmt.Errorf("%w: %v", ErrSingularTransform, err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			inv[r][c] = dense.At(r, c)
		}
	}
	return inv, nil
}

// ApplyInverse transforms a point by the inverse transform.
func (a Affine3D) ApplyInverse(p [3]float64) ([3]float64, error) {
	inv, err := a.Inverse()
	if err != nil {
		return p, err
	}
	return inv.Apply(p), nil
}

// ExtractScale returns the scaling along the given axis, i.e., the length of
// that column of the linear part.
func (a Affine3D) ExtractScale(axis int) float64 {
	return math.Sqrt(a[0][axis]*a[0][axis] + a[1][axis]*a[1][axis] + a[2][axis]*a[2][axis])
}
