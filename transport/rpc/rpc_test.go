package rpc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/janelia-flyem/labelpaint/solver"
)

const testAddress = "localhost:18402"

func sequence(t *testing.T, correlation string, annotations int) []solver.Frame {
	msgs := []solver.Message{&solver.Start{CorrelationID: correlation, Label: 2}}
	for i := 0; i < annotations; i++ {
		msgs = append(msgs, &solver.Annotation{CorrelationID: correlation, Label: 2, Data: []byte{1}})
	}
	msgs = append(msgs, &solver.Stop{CorrelationID: correlation})
	frames := make([]solver.Frame, len(msgs))
	for i, msg := range msgs {
		data, err := solver.Encode(msg)
		if err != nil {
			t.Fatalf("encode failed: %v\n", err)
		}
		frames[i] = solver.Frame{CorrelationID: correlation, Type: msg.Type(), Data: data, More: i != len(msgs)-1}
	}
	return frames
}

func TestDeliverBatches(t *testing.T) {
	var mu sync.Mutex
	var batches []*Batch
	var reject bool
	r, err := NewReceiver(testAddress, func(b *Batch) error {
		mu.Lock()
		defer mu.Unlock()
		if reject {
			return errors.New("solver busy")
		}
		batches = append(batches, b)
		return nil
	})
	if err != nil {
		t.Fatalf("unable to start receiver: %v\n", err)
	}
	defer r.Close()
	if r.Addr() != testAddress {
		t.Errorf("bad receiver address %q\n", r.Addr())
	}

	s, err := NewSender(testAddress, 5*time.Second)
	if err != nil {
		t.Fatalf("unable to start sender: %v\n", err)
	}
	defer s.Close()

	received := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(batches)
	}
	for n, correlation := range []string{"2", "3"} {
		for i, f := range sequence(t, correlation, 2) {
			if err := s.Send(context.Background(), f); err != nil {
				t.Fatalf("frame %d of %s failed: %v\n", i, correlation, err)
			}
			if f.More && received() != n {
				t.Errorf("batch %s delivered before its stop frame\n", correlation)
			}
		}
		if received() != n+1 {
			t.Errorf("batch %s not delivered after stop frame\n", correlation)
		}
	}

	mu.Lock()
	for i, b := range batches {
		msgs, err := b.Messages()
		if err != nil {
			t.Fatalf("batch %d decode failed: %v\n", i, err)
		}
		if len(msgs) != 4 || len(b.Types) != 4 {
			t.Fatalf("batch %d has %d messages\n", i, len(msgs))
		}
		if msgs[0].Type() != solver.StartType || msgs[3].Type() != solver.StopType {
			t.Errorf("batch %d out of order\n", i)
		}
		for _, msg := range msgs {
			if msg.Correlation() != b.CorrelationID {
				t.Errorf("batch %s holds message for %s\n", b.CorrelationID, msg.Correlation())
			}
		}
	}
	reject = true
	mu.Unlock()

	var sendErr error
	for _, f := range sequence(t, "4", 1) {
		sendErr = s.Send(context.Background(), f)
	}
	if sendErr == nil {
		t.Errorf("expected rejected batch to fail the stop frame\n")
	}
}
