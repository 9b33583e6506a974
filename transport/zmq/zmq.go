// Package zmq sends solver notifications as ZeroMQ multipart messages, one
// multipart message per Start/Annotation/Stop sequence.
package zmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-zeromq/zmq4"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/solver"
)

// SocketType selects the sending socket pattern.
type SocketType string

const (
	Push   SocketType = "push"
	Dealer SocketType = "dealer"
)

// Sender buffers frames flagged More and sends them together with the closing
// frame.  Frames left over from an unfinished sequence are dropped when a frame
// of another sequence arrives.
type Sender struct {
	mu        sync.Mutex
	socket    zmq4.Socket
	cancel    context.CancelFunc
	pending   [][]byte
	pendingID string
}

// NewSender dials endpoint, e.g. "tcp://localhost:5555".  An empty socket type
// selects Push.
func NewSender(endpoint string, st SocketType) (*Sender, error) {
	ctx, cancel := context.WithCancel(context.Background())
	var socket zmq4.Socket
	switch st {
	case "", Push:
		socket = zmq4.NewPush(ctx)
	case Dealer:
		socket = zmq4.NewDealer(ctx)
	default:
		cancel()
		return nil, fmt.Errorf("unsupported zmq socket type %q", st)
	}
	if err := socket.Dial(endpoint); err != nil {
		cancel()
		socket.Close()
		return nil, fmt.Errorf("unable to dial solver at %s: %v", endpoint, err)
	}
	labelpaint.Infof("Connected %s socket to solver at %s\n", st, endpoint)
	return &Sender{socket: socket, cancel: cancel}, nil
}

func (s *Sender) Send(ctx context.Context, f solver.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		s.pending = nil
		return err
	}
	if len(s.pending) != 0 && s.pendingID != f.CorrelationID {
		labelpaint.Warningf("Dropping %d frames of unfinished solver sequence %q\n", len(s.pending), s.pendingID)
		s.pending = nil
	}
	s.pendingID = f.CorrelationID
	s.pending = append(s.pending, f.Data)
	if f.More {
		return nil
	}
	frames := s.pending
	s.pending = nil
	return s.socket.SendMulti(zmq4.NewMsgFrom(frames...))
}

func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	err := s.socket.Close()
	s.cancel()
	return err
}

// Listener receives multipart solver notifications on a PULL socket.
type Listener struct {
	socket zmq4.Socket
	cancel context.CancelFunc
}

// Listen binds a PULL socket to endpoint.
func Listen(endpoint string) (*Listener, error) {
	ctx, cancel := context.WithCancel(context.Background())
	socket := zmq4.NewPull(ctx)
	if err := socket.Listen(endpoint); err != nil {
		cancel()
		socket.Close()
		return nil, fmt.Errorf("unable to listen on %s: %v", endpoint, err)
	}
	return &Listener{socket: socket, cancel: cancel}, nil
}

// Receive blocks until the next notification arrives and decodes its frames.
func (l *Listener) Receive() ([]solver.Message, error) {
	msg, err := l.socket.Recv()
	if err != nil {
		return nil, err
	}
	msgs := make([]solver.Message, 0, len(msg.Frames))
	for i, frame := range msg.Frames {
		m, err := solver.Decode(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %v", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (l *Listener) Close() error {
	err := l.socket.Close()
	l.cancel()
	return err
}
