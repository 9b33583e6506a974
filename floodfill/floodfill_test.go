package floodfill

import (
	"context"
	"errors"
	"testing"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
)

func uniformVolume(t *testing.T, n int32, label uint64) *labels.Dense {
	volume, err := labels.NewDense(labelpaint.Point3d{n, n, n}, labelpaint.Point3d{2, 2, 2})
	if err != nil {
		t.Fatalf("unable to create volume: %v\n", err)
	}
	volume.Fill(label)
	return volume
}

func TestFillUniformVolume(t *testing.T) {
	volume := uniformVolume(t, 5, 7)
	result, err := Fill(context.Background(), volume, labelpaint.Point3d{2, 2, 2}, Options{ChunkSize: volume.ChunkSize()})
	if err != nil {
		t.Fatalf("fill failed: %v\n", err)
	}
	if result.Label != 7 {
		t.Errorf("expected seed label 7, got %d\n", result.Label)
	}
	if result.Mask.NumVoxels() != 125 {
		t.Errorf("expected 125 voxels filled, got %d\n", result.Mask.NumVoxels())
	}
	if result.Mask.NumChunks() != 27 {
		t.Errorf("expected 27 chunks, got %d\n", result.Mask.NumChunks())
	}
	ext, _ := result.Mask.VoxelBounds()
	if ext.MinPoint != (labelpaint.Point3d{0, 0, 0}) || ext.MaxPoint != (labelpaint.Point3d{5, 5, 5}) {
		t.Errorf("unexpected voxel bounds %s\n", ext)
	}
}

// reference flood using a map of visited voxels.
func referenceComponent(volume labels.Reader, seed labelpaint.Point3d) map[labelpaint.Point3d]bool {
	label := volume.Value(seed)
	visited := map[labelpaint.Point3d]bool{seed: true}
	stack := []labelpaint.Point3d{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, offset := range labelpaint.FaceNeighbors {
			n := p.Add(offset)
			if !visited[n] && volume.Value(n) == label {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return visited
}

func TestFillMatchesComponent(t *testing.T) {
	volume := uniformVolume(t, 6, 1)

	// Wall of label 2 at x == 3 splits the volume except for a hole at (3,5,5).
	volume.FillBox(labelpaint.Extents3d{
		MinPoint: labelpaint.Point3d{3, 0, 0},
		MaxPoint: labelpaint.Point3d{3, 5, 5},
	}, 2)
	volume.SetValue(labelpaint.Point3d{3, 5, 5}, 1)

	// Pocket of label 1 touching the label 3 block only along an edge.
	volume.FillBox(labelpaint.Extents3d{
		MinPoint: labelpaint.Point3d{0, 0, 0},
		MaxPoint: labelpaint.Point3d{1, 1, 1},
	}, 3)
	volume.SetValue(labelpaint.Point3d{0, 0, 0}, 1)
	volume.SetValue(labelpaint.Point3d{1, 1, 0}, 1)

	for _, seed := range []labelpaint.Point3d{{5, 0, 0}, {3, 2, 2}, {1, 0, 1}, {0, 0, 0}, {1, 1, 0}} {
		result, err := Fill(context.Background(), volume, seed, Options{ChunkSize: labelpaint.Point3d{4, 4, 4}})
		if err != nil {
			t.Fatalf("fill from %s failed: %v\n", seed, err)
		}
		expected := referenceComponent(volume, seed)
		if result.Mask.NumVoxels() != uint64(len(expected)) {
			t.Errorf("fill from %s: expected %d voxels, got %d\n", seed, len(expected), result.Mask.NumVoxels())
		}
		result.Mask.Points(func(p labelpaint.Point3d) {
			if !expected[p] {
				t.Errorf("fill from %s marked %s outside the component\n", seed, p)
			}
			if volume.Value(p) != result.Label {
				t.Errorf("fill from %s marked %s with label %d\n", seed, p, volume.Value(p))
			}
		})
		for _, c := range result.Mask.Chunks() {
			if !c.Any() {
				t.Errorf("fill from %s left empty chunk %s\n", seed, c.Coord)
			}
		}
	}

	// Corner voxel (0,0,0) is only diagonally connected to (1,1,0).
	result, _ := Fill(context.Background(), volume, labelpaint.Point3d{0, 0, 0}, Options{ChunkSize: labelpaint.Point3d{4, 4, 4}})
	if result.Mask.NumVoxels() != 1 {
		t.Errorf("diagonal neighbors should not be connected, filled %d voxels\n", result.Mask.NumVoxels())
	}
}

func TestFillReservedSeeds(t *testing.T) {
	volume := uniformVolume(t, 4, labels.Transparent)
	volume.SetValue(labelpaint.Point3d{1, 1, 1}, labels.Invalid)
	opts := Options{ChunkSize: volume.ChunkSize()}
	for _, seed := range []labelpaint.Point3d{{0, 0, 0}, {1, 1, 1}, {-1, 0, 0}, {10, 10, 10}} {
		result, err := Fill(context.Background(), volume, seed, opts)
		if err != nil {
			t.Errorf("fill from %s returned error: %v\n", seed, err)
			continue
		}
		if !result.Empty() {
			t.Errorf("fill from reserved seed %s marked %d voxels\n", seed, result.Mask.NumVoxels())
		}
	}
	var nilResult *Result
	if !nilResult.Empty() {
		t.Errorf("nil result should be empty\n")
	}
}

func TestFillBudget(t *testing.T) {
	volume := uniformVolume(t, 5, 7)
	_, err := Fill(context.Background(), volume, labelpaint.Point3d{2, 2, 2},
		Options{ChunkSize: volume.ChunkSize(), MaxVoxels: 10})
	if !errors.Is(err, ErrRegionTooLarge) {
		t.Errorf("expected ErrRegionTooLarge, got %v\n", err)
	}
	result, err := Fill(context.Background(), volume, labelpaint.Point3d{2, 2, 2},
		Options{ChunkSize: volume.ChunkSize(), MaxVoxels: 125})
	if err != nil || result.Mask.NumVoxels() != 125 {
		t.Errorf("fill at exactly the budget should succeed: %v\n", err)
	}
}

func TestFillCancel(t *testing.T) {
	volume := uniformVolume(t, 5, 7)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fill(ctx, volume, labelpaint.Point3d{2, 2, 2},
		Options{ChunkSize: volume.ChunkSize(), CheckEvery: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v\n", err)
	}
}

func TestFillBadChunkSize(t *testing.T) {
	volume := uniformVolume(t, 3, 7)
	if _, err := Fill(context.Background(), volume, labelpaint.Point3d{1, 1, 1}, Options{}); err == nil {
		t.Errorf("expected error for zero chunk size\n")
	}
}
