package fragments

import (
	"context"
	"testing"

	"github.com/janelia-flyem/labelpaint/floodfill"
	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/mask"
)

func newVolume(t *testing.T, n int32, label uint64) *labels.Dense {
	volume, err := labels.NewDense(labelpaint.Point3d{n, n, n}, labelpaint.Point3d{2, 2, 2})
	if err != nil {
		t.Fatalf("unable to create volume: %v\n", err)
	}
	volume.Fill(label)
	return volume
}

func fill(t *testing.T, volume *labels.Dense, seed labelpaint.Point3d) *mask.Mask {
	result, err := floodfill.Fill(context.Background(), volume, seed, floodfill.Options{ChunkSize: volume.ChunkSize()})
	if err != nil {
		t.Fatalf("fill failed: %v\n", err)
	}
	return result.Mask
}

func checkSet(t *testing.T, name string, got labels.Set, expected ...uint64) {
	if !got.Equal(labels.NewSet(expected...)) {
		t.Errorf("expected %s %v, got %s\n", name, expected, got)
	}
}

func TestEnclosedFragment(t *testing.T) {
	volume := newVolume(t, 5, 7)
	sets := Classify(fill(t, volume, labelpaint.Point3d{2, 2, 2}), volume)
	checkSet(t, "contained", sets.Contained, 7)
	checkSet(t, "neighboring", sets.Neighboring)
	checkSet(t, "overpainted", sets.Overpainted, 7)
}

func TestBorderingFragment(t *testing.T) {
	// Painted volume: label 7 over x <= 2, label 9 beyond.
	painted := newVolume(t, 5, 9)
	painted.FillBox(labelpaint.Extents3d{MaxPoint: labelpaint.Point3d{2, 4, 4}}, 7)
	m := fill(t, painted, labelpaint.Point3d{1, 1, 1})
	if m.NumVoxels() != 75 {
		t.Fatalf("expected 75 painted voxels, got %d\n", m.NumVoxels())
	}

	// Unpainted fragments: 3 lies inside the painted slab, 4 straddles its
	// boundary at x = 2..3, and 5 never touches it.
	fragmentVolume := newVolume(t, 5, 5)
	fragmentVolume.FillBox(labelpaint.Extents3d{MaxPoint: labelpaint.Point3d{1, 4, 4}}, 3)
	fragmentVolume.FillBox(labelpaint.Extents3d{
		MinPoint: labelpaint.Point3d{2, 0, 0},
		MaxPoint: labelpaint.Point3d{3, 4, 4},
	}, 4)

	sets := Classify(m, fragmentVolume)
	checkSet(t, "contained", sets.Contained, 3, 4)
	checkSet(t, "neighboring", sets.Neighboring, 4)
	checkSet(t, "overpainted", sets.Overpainted, 3)

	// Against the painted volume itself the flood label is always enclosed.
	self := Classify(m, painted)
	checkSet(t, "contained", self.Contained, 7)
	checkSet(t, "neighboring", self.Neighboring, 9)
	checkSet(t, "overpainted", self.Overpainted, 7)
}

func TestHandBuiltMask(t *testing.T) {
	volume := newVolume(t, 6, labels.Transparent)
	volume.FillBox(labelpaint.Extents3d{MaxPoint: labelpaint.Point3d{1, 0, 0}}, 3)
	volume.SetValue(labelpaint.Point3d{2, 2, 2}, 4)
	volume.SetValue(labelpaint.Point3d{2, 0, 0}, 5)
	volume.SetValue(labelpaint.Point3d{3, 2, 2}, labels.Invalid)

	// Mask covers label 3 entirely and label 4's voxel, which borders Invalid and
	// Transparent only.  Label 5 borders label 3 from outside the mask.
	m := mask.New(volume.ChunkSize())
	for _, p := range []labelpaint.Point3d{{0, 0, 0}, {1, 0, 0}, {2, 2, 2}, {0, 1, 0}} {
		m.Set(p)
	}
	sets := Classify(m, volume)
	checkSet(t, "contained", sets.Contained, 3, 4)
	checkSet(t, "neighboring", sets.Neighboring, 5)
	checkSet(t, "overpainted", sets.Overpainted, 3, 4)

	again := Classify(m, volume)
	if !again.Contained.Equal(sets.Contained) || !again.Neighboring.Equal(sets.Neighboring) ||
		!again.Overpainted.Equal(sets.Overpainted) {
		t.Errorf("classification not repeatable: %s vs %s\n", sets, again)
	}
	if !sets.Overpainted.Equal(sets.Contained.Minus(sets.Neighboring)) {
		t.Errorf("overpainted %s is not contained minus neighboring\n", sets.Overpainted)
	}
}

func TestPartialFragment(t *testing.T) {
	volume := newVolume(t, 4, 8)
	m := mask.New(volume.ChunkSize())
	m.Set(labelpaint.Point3d{1, 1, 1})
	m.Set(labelpaint.Point3d{-1, 0, 0})
	sets := Classify(m, volume)
	checkSet(t, "contained", sets.Contained, 8)
	checkSet(t, "neighboring", sets.Neighboring, 8)
	checkSet(t, "overpainted", sets.Overpainted)
}

func TestEmptyMask(t *testing.T) {
	volume := newVolume(t, 2, 1)
	sets := Classify(mask.New(volume.ChunkSize()), volume)
	if len(sets.Contained) != 0 || len(sets.Neighboring) != 0 || len(sets.Overpainted) != 0 {
		t.Errorf("empty mask should classify nothing: %s\n", sets)
	}
}
