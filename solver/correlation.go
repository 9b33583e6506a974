package solver

import (
	"fmt"
	"strconv"

	"github.com/twinj/uuid"
)

// Correlator produces the correlation id shared by every message of one
// notification.
type Correlator interface {
	CorrelationID(label uint64) string
}

// LabelCorrelator uses the decimal form of the label read as a signed 64-bit
// integer.  Two sends of the same label reuse the same id.
type LabelCorrelator struct{}

func (LabelCorrelator) CorrelationID(label uint64) string {
	return strconv.FormatInt(int64(label), 10)
}

// UUIDCorrelator gives every notification a fresh version 4 UUID.
type UUIDCorrelator struct{}

func (UUIDCorrelator) CorrelationID(uint64) string {
	return uuid.NewV4().String()
}

// NewCorrelator returns the correlation strategy named by the configuration.
// An empty name selects "label".
func NewCorrelator(name string) (Correlator, error) {
	switch name {
	case "", "label":
		return LabelCorrelator{}, nil
	case "uuid":
		return UUIDCorrelator{}, nil
	default:
		return nil, fmt.Errorf("unknown correlation strategy %q, expected \"label\" or \"uuid\"", name)
	}
}
