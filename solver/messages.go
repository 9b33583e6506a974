/*
Package solver builds and sends the messages that describe a painted region to
an external merge/split solver.

One notification is an ordered sequence over a single sender: a Start carrying
the region's bounding box and the contained, neighboring and overpainted
fragment ids, one Annotation per populated mask chunk carrying that chunk's
bitmask, and a Stop.  All messages of a sequence share a correlation id.
*/
package solver

import "fmt"

// Type identifies the kind of a solver message.
type Type int32

const (
	StartType Type = iota
	AnnotationType
	StopType
)

func (t Type) String() string {
	switch t {
	case StartType:
		return "start"
	case AnnotationType:
		return "annotation"
	case StopType:
		return "stop"
	default:
		return fmt.Sprintf("unknown type %d", int32(t))
	}
}

// Message is one of *Start, *Annotation or *Stop.
type Message interface {
	Type() Type
	Correlation() string
}

// Start opens a notification.  Min and Max are inclusive voxel coordinates.
type Start struct {
	CorrelationID string
	Label         uint64
	Min, Max      [3]int64

	Contained   []uint64
	Neighboring []uint64
	Overpainted []uint64
}

func (m *Start) Type() Type          { return StartType }
func (m *Start) Correlation() string { return m.CorrelationID }

// Annotation carries the bitmask of one chunk, one byte per voxel, x fastest.
type Annotation struct {
	CorrelationID string
	Label         uint64
	Min, Max      [3]int64
	Data          []byte
}

func (m *Annotation) Type() Type          { return AnnotationType }
func (m *Annotation) Correlation() string { return m.CorrelationID }

// Stop closes a notification.
type Stop struct {
	CorrelationID string
}

func (m *Stop) Type() Type          { return StopType }
func (m *Stop) Correlation() string { return m.CorrelationID }
