package zmq

import (
	"context"
	"testing"

	"github.com/janelia-flyem/labelpaint/solver"
)

const testEndpoint = "tcp://127.0.0.1:15655"

func sequence(t *testing.T, correlation string) ([]solver.Message, []solver.Frame) {
	msgs := []solver.Message{
		&solver.Start{CorrelationID: correlation, Label: 6, Max: [3]int64{3, 3, 3}, Contained: []uint64{6}},
		&solver.Annotation{CorrelationID: correlation, Label: 6, Max: [3]int64{3, 3, 3}, Data: make([]byte, 64)},
		&solver.Stop{CorrelationID: correlation},
	}
	frames := make([]solver.Frame, len(msgs))
	for i, msg := range msgs {
		data, err := solver.Encode(msg)
		if err != nil {
			t.Fatalf("encode failed: %v\n", err)
		}
		frames[i] = solver.Frame{CorrelationID: correlation, Type: msg.Type(), Data: data, More: i != len(msgs)-1}
	}
	return msgs, frames
}

func TestPushToListener(t *testing.T) {
	l, err := Listen(testEndpoint)
	if err != nil {
		t.Fatalf("unable to listen: %v\n", err)
	}
	defer l.Close()

	s, err := NewSender(testEndpoint, Push)
	if err != nil {
		t.Fatalf("unable to dial: %v\n", err)
	}
	defer s.Close()

	// An abandoned sequence must not leak into the next multipart message.
	_, abandoned := sequence(t, "5")
	for _, f := range abandoned[:2] {
		if err := s.Send(context.Background(), f); err != nil {
			t.Fatalf("send of unfinished sequence failed: %v\n", err)
		}
	}

	msgs, frames := sequence(t, "6")
	for i, f := range frames {
		if err := s.Send(context.Background(), f); err != nil {
			t.Fatalf("send %d failed: %v\n", i, err)
		}
	}

	received, err := l.Receive()
	if err != nil {
		t.Fatalf("receive failed: %v\n", err)
	}
	if len(received) != len(msgs) {
		t.Fatalf("expected %d frames in one multipart message, got %d\n", len(msgs), len(received))
	}
	for i, msg := range received {
		if msg.Type() != msgs[i].Type() || msg.Correlation() != "6" {
			t.Errorf("frame %d: got %s for %q\n", i, msg.Type(), msg.Correlation())
		}
	}
}

func TestNewSequenceDropsUnfinished(t *testing.T) {
	s := &Sender{}
	_, first := sequence(t, "1")
	_, second := sequence(t, "2")
	for _, f := range []solver.Frame{first[0], first[1], second[0]} {
		if err := s.Send(context.Background(), f); err != nil {
			t.Fatalf("buffered send failed: %v\n", err)
		}
	}
	if len(s.pending) != 1 || s.pendingID != "2" {
		t.Errorf("expected only the new sequence's frame pending, got %d frames of %q\n", len(s.pending), s.pendingID)
	}
	if string(s.pending[0]) != string(second[0].Data) {
		t.Errorf("pending frame is not the new Start\n")
	}
}

func TestCanceledSendDropsPending(t *testing.T) {
	s := &Sender{pending: [][]byte{{1}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, solver.Frame{More: true}); err == nil {
		t.Errorf("expected canceled send\n")
	}
	if len(s.pending) != 0 {
		t.Errorf("pending frames kept after cancel\n")
	}
	if _, err := NewSender(testEndpoint, SocketType("pair")); err == nil {
		t.Errorf("expected error for unsupported socket type\n")
	}
}
