/*
	Package rpc delivers solver notifications over gorpc.  The frames of one
	Start/Annotation/Stop sequence are gathered into a single Batch call so a
	receiver never sees a partial sequence.
*/
package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/valyala/gorpc"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/solver"
)

// DefaultAddress is where the solver rpc receiver listens by default.
const DefaultAddress = "localhost:8002"

const sendDeliver = "Deliver"

func init() {
	gorpc.RegisterType(&Batch{})
}

// Batch is one complete notification.
type Batch struct {
	CorrelationID string
	Types         []int32
	Frames        [][]byte
}

// Messages decodes the frames of the batch.
func (b *Batch) Messages() ([]solver.Message, error) {
	msgs := make([]solver.Message, 0, len(b.Frames))
	for i, frame := range b.Frames {
		msg, err := solver.Decode(frame)
		if err != nil {
			return nil, fmt.Errorf("batch %s frame %d: %v", b.CorrelationID, i, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Handler processes a received batch.
type Handler func(*Batch) error

func newDispatcher(handler Handler) *gorpc.Dispatcher {
	d := gorpc.NewDispatcher()
	d.AddFunc(sendDeliver, func(b *Batch) (int, error) {
		if handler == nil {
			return 0, fmt.Errorf("no solver batch handler")
		}
		if err := handler(b); err != nil {
			return 0, err
		}
		return len(b.Frames), nil
	})
	return d
}

// Sender gathers frames and calls the remote receiver once per sequence.
type Sender struct {
	mu      sync.Mutex
	c       *gorpc.Client
	dc      *gorpc.DispatcherClient
	timeout time.Duration
	pending *Batch
}

// NewSender starts a client to the receiver at addr.  A zero timeout uses the
// gorpc default.
func NewSender(addr string, timeout time.Duration) (*Sender, error) {
	c := gorpc.NewTCPClient(addr)
	c.Start()
	dc := newDispatcher(nil).NewFuncClient(c)
	if dc == nil {
		c.Stop()
		return nil, fmt.Errorf("can't create dispatcher client")
	}
	return &Sender{c: c, dc: dc, timeout: timeout}, nil
}

func (s *Sender) Send(ctx context.Context, f solver.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		s.pending = nil
		return err
	}
	if s.pending == nil || s.pending.CorrelationID != f.CorrelationID {
		s.pending = &Batch{CorrelationID: f.CorrelationID}
	}
	s.pending.Types = append(s.pending.Types, int32(f.Type))
	s.pending.Frames = append(s.pending.Frames, f.Data)
	if f.More {
		return nil
	}
	batch := s.pending
	s.pending = nil

	var resp interface{}
	var err error
	if s.timeout > 0 {
		resp, err = s.dc.CallTimeout(sendDeliver, batch, s.timeout)
	} else {
		resp, err = s.dc.Call(sendDeliver, batch)
	}
	if err != nil {
		return err
	}
	if n, ok := resp.(int); !ok || n != len(batch.Frames) {
		return fmt.Errorf("remote receiver returned %v instead of %d accepted frames", resp, len(batch.Frames))
	}
	return nil
}

func (s *Sender) Close() error {
	s.c.Stop()
	return nil
}

// Receiver is a gorpc server that hands each received batch to a Handler.
type Receiver struct {
	addr string
	s    *gorpc.Server
}

// NewReceiver starts serving on addr.
func NewReceiver(addr string, handler Handler) (*Receiver, error) {
	gorpc.SetErrorLogger(labelpaint.Errorf)
	s := gorpc.NewTCPServer(addr, newDispatcher(handler).NewHandlerFunc())
	if err := s.Start(); err != nil {
		return nil, fmt.Errorf("unable to start solver rpc receiver on %s: %v", addr, err)
	}
	labelpaint.Infof("Solver rpc receiver listening on %s\n", addr)
	return &Receiver{addr: addr, s: s}, nil
}

func (r *Receiver) Addr() string {
	return r.addr
}

// Close halts the server.
func (r *Receiver) Close() error {
	r.s.Stop()
	return nil
}
