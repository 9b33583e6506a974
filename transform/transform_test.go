package transform

import (
	"errors"
	"math"
	"testing"
)

func closeTo(a, b [3]float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestAffineInverse(t *testing.T) {
	a := Affine3D{
		{0, 2, 0, 5},
		{-1, 0, 0, 3},
		{0, 0, 4, -2},
	}
	inv, err := a.Inverse()
	if err != nil {
		t.Fatalf("unable to invert: %v\n", err)
	}
	for _, p := range [][3]float64{{0, 0, 0}, {1, 2, 3}, {-7.5, 0.25, 100}} {
		if got := inv.Apply(a.Apply(p)); !closeTo(got, p) {
			t.Errorf("inverse round trip of %v gave %v\n", p, got)
		}
		got, err := a.ApplyInverse(a.Apply(p))
		if err != nil || !closeTo(got, p) {
			t.Errorf("ApplyInverse of %v gave %v (%v)\n", p, got, err)
		}
	}
	if id := a.Concatenate(inv); !closeTo(id.Apply([3]float64{3, 4, 5}), [3]float64{3, 4, 5}) {
		t.Errorf("transform after inverse is not identity: %v\n", id)
	}
}

func TestSingular(t *testing.T) {
	flat := Scaling(1, 0, 1)
	if _, err := flat.Inverse(); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("expected singular transform error, got %v\n", err)
	}
	v, err := NewStaticViewer(Identity())
	if err != nil {
		t.Fatalf("unable to create viewer: %v\n", err)
	}
	if _, err := NewMapper(v, flat); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("expected mapper construction to fail on singular transform, got %v\n", err)
	}
	if _, err := NewStaticViewer(flat); err == nil {
		t.Errorf("expected viewer construction to fail on singular transform\n")
	}
}

func TestConcatenate(t *testing.T) {
	s := Scaling(2, 3, 4)
	tr := Translation(1, 1, 1)
	// translate then scale
	got := s.Concatenate(tr).Apply([3]float64{1, 1, 1})
	if !closeTo(got, [3]float64{4, 6, 8}) {
		t.Errorf("bad concatenation: %v\n", got)
	}
	got = tr.Concatenate(s).Apply([3]float64{1, 1, 1})
	if !closeTo(got, [3]float64{3, 4, 5}) {
		t.Errorf("bad concatenation: %v\n", got)
	}
}

func TestFromRowMajor(t *testing.T) {
	a, err := FromRowMajor([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	if err != nil {
		t.Fatalf("unexpected error: %v\n", err)
	}
	if a.Get(1, 2) != 7 || a.Get(2, 3) != 12 {
		t.Errorf("bad row-major layout: %v\n", a)
	}
	if _, err := FromRowMajor([]float64{1, 2, 3}); err == nil {
		t.Errorf("expected error on short value list\n")
	}
}

func TestExtractScale(t *testing.T) {
	a := Scaling(2, 3, 4)
	for axis, expected := range []float64{2, 3, 4} {
		if s := a.ExtractScale(axis); math.Abs(s-expected) > 1e-12 {
			t.Errorf("axis %d scale %f, expected %f\n", axis, s, expected)
		}
	}
	rot := Affine3D{
		{0, -3, 0, 0},
		{3, 0, 0, 0},
		{0, 0, 1, 0},
	}
	if s := rot.ExtractScale(0); math.Abs(s-3) > 1e-12 {
		t.Errorf("rotated scale %f, expected 3\n", s)
	}
}

func TestMapper(t *testing.T) {
	// Display is 2x zoom of global space looking down z at slice 10.
	viewer, err := NewStaticViewer(Scaling(2, 2, 1).Concatenate(Translation(0, 0, -10)))
	if err != nil {
		t.Fatalf("unable to create viewer: %v\n", err)
	}
	// Voxels are 4 units wide in global space.
	m, err := NewMapper(viewer, Scaling(4, 4, 4))
	if err != nil {
		t.Fatalf("unable to create mapper: %v\n", err)
	}
	got := m.ToVolumeSpace(16, 8)
	if !closeTo(got, [3]float64{2, 1, 2.5}) {
		t.Errorf("bad volume coordinate %v\n", got)
	}
	if m.Viewer() != Viewer(viewer) || m.LabelTransform() != Scaling(4, 4, 4) {
		t.Errorf("mapper does not hold its viewer and transform\n")
	}

	viewer.RequestRepaint()
	viewer.RequestRepaint()
	if viewer.Repaints() != 2 {
		t.Errorf("expected 2 repaints, got %d\n", viewer.Repaints())
	}
	if err := viewer.SetTransform(Identity()); err != nil {
		t.Fatalf("unable to set transform: %v\n", err)
	}
	if got := m.ToVolumeSpace(16, 8); !closeTo(got, [3]float64{4, 2, 0}) {
		t.Errorf("mapper did not follow viewer transform change: %v\n", got)
	}
}
