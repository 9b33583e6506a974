package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/labelpaint/fragments"
	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/mask"
)

// ErrEmptyMask is returned when asked to notify a region with no voxels.
var ErrEmptyMask = errors.New("no painted voxels to send")

// Frame is one encoded message handed to a transport.  More is set on every
// frame of a sequence except the closing Stop.
type Frame struct {
	CorrelationID string
	Type          Type
	Data          []byte
	More          bool
}

// Sender delivers frames in the order given.
type Sender interface {
	Send(ctx context.Context, f Frame) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, f Frame) error

func (fn SenderFunc) Send(ctx context.Context, f Frame) error {
	return fn(ctx, f)
}

// SendError reports a transport failure part way through a sequence.  Frames
// already sent are not retracted.
type SendError struct {
	CorrelationID string
	Phase         Type
	Sent          int
	Err           error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("solver %s send failed for correlation %s after %d frames: %v",
		e.Phase, e.CorrelationID, e.Sent, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Result summarizes a completed notification.
type Result struct {
	CorrelationID string
	Annotations   int
	Frames        int
	Bytes         int
}

// Messages builds the Start, Annotation and Stop messages describing a painted
// region.  Annotations follow the mask's chunk order.
func Messages(correlationID string, label uint64, m *mask.Mask, sets fragments.IDSets) ([]Message, error) {
	bounds, ok := m.VoxelBounds()
	if !ok {
		return nil, ErrEmptyMask
	}
	msgs := []Message{&Start{
		CorrelationID: correlationID,
		Label:         label,
		Min:           bounds.MinPoint.Int64(),
		Max:           bounds.MaxPoint.Int64(),
		Contained:     sets.Contained.Sorted(),
		Neighboring:   sets.Neighboring.Sorted(),
		Overpainted:   sets.Overpainted.Sorted(),
	}}
	for _, c := range m.Chunks() {
		if !c.Any() {
			continue
		}
		msgs = append(msgs, &Annotation{
			CorrelationID: correlationID,
			Label:         label,
			Min:           c.MinPoint().Int64(),
			Max:           c.MaxPoint().Int64(),
			Data:          c.Bytes(),
		})
	}
	return append(msgs, &Stop{CorrelationID: correlationID}), nil
}

// Notifier sends painted regions to the solver over a single sender.
type Notifier struct {
	sender     Sender
	correlator Correlator
}

// NewNotifier returns a Notifier.  A nil correlator selects LabelCorrelator.
func NewNotifier(sender Sender, correlator Correlator) *Notifier {
	if correlator == nil {
		correlator = LabelCorrelator{}
	}
	return &Notifier{sender: sender, correlator: correlator}
}

// Notify emits Start, one Annotation per populated chunk, and Stop for the
// painted region of label.  There is no retry: on failure the returned
// *SendError names the phase and how many frames were already delivered.
func (n *Notifier) Notify(ctx context.Context, label uint64, m *mask.Mask, sets fragments.IDSets) (Result, error) {
	result := Result{CorrelationID: n.correlator.CorrelationID(label)}
	msgs, err := Messages(result.CorrelationID, label, m, sets)
	if err != nil {
		return result, err
	}
	timedLog := labelpaint.NewTimeLog()
	for i, msg := range msgs {
		data, err := Encode(msg)
		if err != nil {
			return result, err
		}
		f := Frame{
			CorrelationID: result.CorrelationID,
			Type:          msg.Type(),
			Data:          data,
			More:          i != len(msgs)-1,
		}
		if err := n.sender.Send(ctx, f); err != nil {
			return result, &SendError{
				CorrelationID: result.CorrelationID,
				Phase:         msg.Type(),
				Sent:          result.Frames,
				Err:           err,
			}
		}
		result.Frames++
		result.Bytes += len(data)
		if msg.Type() == AnnotationType {
			result.Annotations++
		}
	}
	timedLog.Infof("Sent label %d to solver (correlation %s): %d annotations, %s",
		label, result.CorrelationID, result.Annotations, humanize.Bytes(uint64(result.Bytes)))
	return result, nil
}
