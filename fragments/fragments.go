/*
Package fragments classifies the fragment labels touched by a painted region.

Every label found inside the region is "contained"; every label found on an
unmasked voxel sharing a face with the region is "neighboring".  A contained
fragment with no neighboring occurrence is wholly enclosed by the region and is
reported as "overpainted", i.e., subsumed by the newly painted label.
*/
package fragments

import (
	"fmt"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/mask"
)

// IDSets holds the fragment ids touched by a painted region.
// Overpainted is always Contained minus Neighboring.
type IDSets struct {
	Contained   labels.Set
	Neighboring labels.Set
	Overpainted labels.Set
}

func (s IDSets) String() string {
	return fmt.Sprintf("contained %s, neighboring %s, overpainted %s",
		s.Contained, s.Neighboring, s.Overpainted)
}

// Classify walks every chunk of the mask over the given volume.  Reserved labels
// are never counted as fragments.  The result depends only on the mask and the
// volume contents, not on traversal order.
func Classify(m *mask.Mask, volume labels.Reader) IDSets {
	sets := IDSets{
		Contained:   make(labels.Set),
		Neighboring: make(labels.Set),
	}
	for _, c := range m.Chunks() {
		minPt, maxPt := c.MinPoint(), c.MaxPoint()
		var p labelpaint.Point3d
		for p[2] = minPt[2]; p[2] <= maxPt[2]; p[2]++ {
			for p[1] = minPt[1]; p[1] <= maxPt[1]; p[1]++ {
				for p[0] = minPt[0]; p[0] <= maxPt[0]; p[0]++ {
					if !c.Get(p.Sub(minPt)) {
						continue
					}
					if label := volume.Value(p); labels.IsFragment(label) {
						sets.Contained.Add(label)
					}
					for _, offset := range labelpaint.FaceNeighbors {
						n := p.Add(offset)
						if m.Get(n) {
							continue
						}
						if label := volume.Value(n); labels.IsFragment(label) {
							sets.Neighboring.Add(label)
						}
					}
				}
			}
		}
	}
	sets.Overpainted = sets.Contained.Minus(sets.Neighboring)
	return sets
}
