/*
Package labels supports 64-bit label volumes: the reserved label values, a dense
in-memory volume extended with a constant value beyond its bounds, label sets,
and the dirty interval grown by painting.
*/
package labels

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/janelia-flyem/labelpaint/labelpaint"
)

// Reserved label values.  None of these identify a fragment.
const (
	Transparent uint64 = 0xffffffffffffffff // erased or unpainted
	Invalid     uint64 = 0xfffffffffffffffe
	Outside     uint64 = 0xfffffffffffffffd // beyond the volume bounds

	// MaxID is the largest label usable as a fragment id.
	MaxID uint64 = 0xfffffffffffffffc
)

// IsFragment returns false for the reserved labels and true for any fragment id.
func IsFragment(label uint64) bool {
	return label != Transparent && label != Invalid && label != Outside
}

// Reader gives random access to labels over all of 3d space.  Positions
// outside the underlying data return the extension value, e.g., Outside.
type Reader interface {
	Value(p labelpaint.Point3d) uint64
}

// Writer modifies labels.  SetValue returns false if the position could not be
// written, e.g., it lies beyond the volume.
type Writer interface {
	SetValue(p labelpaint.Point3d, label uint64) bool
}

// ReadWriter is the access the painting core needs to a label volume.
type ReadWriter interface {
	Reader
	Writer
}

// Set is a set of labels.
type Set map[uint64]struct{}

// NewSet returns a set holding the given labels.
func NewSet(lbls ...uint64) Set {
	s := make(Set, len(lbls))
	for _, label := range lbls {
		s[label] = struct{}{}
	}
	return s
}

func (s Set) Add(label uint64) {
	s[label] = struct{}{}
}

func (s Set) Contains(label uint64) bool {
	_, found := s[label]
	return found
}

// Minus returns a new set with the labels of s that are not in s2.
func (s Set) Minus(s2 Set) Set {
	diff := make(Set)
	for label := range s {
		if _, found := s2[label]; !found {
			diff[label] = struct{}{}
		}
	}
	return diff
}

// Equal returns true if both sets hold the same labels.
func (s Set) Equal(s2 Set) bool {
	if len(s) != len(s2) {
		return false
	}
	for label := range s {
		if _, found := s2[label]; !found {
			return false
		}
	}
	return true
}

// Sorted returns the labels in ascending order.
func (s Set) Sorted() []uint64 {
	sorted := make([]uint64, 0, len(s))
	for label := range s {
		sorted = append(sorted, label)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

func (s Set) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, label := range s.Sorted() {
		if i != 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%d", label)
	}
	sb.WriteString("]")
	return sb.String()
}

// MarshalJSON encodes the set as a sorted array of labels.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}
