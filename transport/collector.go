package transport

import (
	"context"
	"sync"

	"github.com/janelia-flyem/labelpaint/solver"
)

// Collector is an in-memory solver.Sender that keeps every frame it is given.
// FailAt, when positive, makes the FailAt-th Send (1-based) return Err.
type Collector struct {
	mu     sync.Mutex
	frames []solver.Frame

	FailAt int
	Err    error
}

func (c *Collector) Send(ctx context.Context, f solver.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailAt > 0 && len(c.frames)+1 == c.FailAt {
		c.FailAt = 0
		return c.Err
	}
	f.Data = append([]byte(nil), f.Data...)
	c.frames = append(c.frames, f)
	return nil
}

// Frames returns a copy of the frames received so far.
func (c *Collector) Frames() []solver.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := make([]solver.Frame, len(c.frames))
	copy(frames, c.frames)
	return frames
}

// Messages decodes the received frames.
func (c *Collector) Messages() ([]solver.Message, error) {
	frames := c.Frames()
	msgs := make([]solver.Message, 0, len(frames))
	for _, f := range frames {
		msg, err := solver.Decode(f.Data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Reset drops all received frames.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

func (c *Collector) Close() error {
	return nil
}

// discard accepts and drops every frame.
type discard struct{}

func (discard) Send(ctx context.Context, f solver.Frame) error {
	return ctx.Err()
}

func (discard) Close() error {
	return nil
}
