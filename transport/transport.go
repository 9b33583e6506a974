/*
Package transport builds the solver.Sender used to deliver solver messages.

Concrete senders live in subpackages: zmq (default, multipart per
notification), kafka, rpc, and recorder, which can tee any of them into a
protolog file for later replay.
*/
package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/solver"
	"github.com/janelia-flyem/labelpaint/transport/kafka"
	"github.com/janelia-flyem/labelpaint/transport/recorder"
	"github.com/janelia-flyem/labelpaint/transport/rpc"
	"github.com/janelia-flyem/labelpaint/transport/zmq"
)

// Sender is a solver.Sender whose connection can be released.
type Sender interface {
	solver.Sender
	io.Closer
}

// Config is the [solver] section of the server configuration.
type Config struct {
	Correlation string   // "label" (default) or "uuid"
	Transport   string   // "zmq" (default), "kafka", "rpc", "log" or "discard"
	Addresses   []string // endpoints, brokers or rpc servers depending on Transport
	Socket      string   // zmq socket type: "push" (default) or "dealer"
	Topic       string   // kafka topic
	Record      string   // optional protolog file receiving a copy of every frame
	Compress    string   // recorded frame compression: "", "zstd" or "snappy"
	Timeout     labelpaint.Duration
}

func (c Config) address() (string, error) {
	if len(c.Addresses) == 0 {
		return "", fmt.Errorf("solver transport %q requires an address", c.Transport)
	}
	return c.Addresses[0], nil
}

// New builds the configured sender.  With Record set, frames are written to the
// recorder file after the transport accepts them.  The "log" transport only
// records and so requires Record.
func New(c Config) (Sender, error) {
	var s Sender
	var err error
	switch c.Transport {
	case "", "zmq":
		var addr string
		if addr, err = c.address(); err != nil {
			return nil, err
		}
		s, err = zmq.NewSender(addr, zmq.SocketType(c.Socket))
	case "kafka":
		s, err = kafka.NewSender(kafka.Config{
			Servers: c.Addresses,
			Topic:   c.Topic,
			Timeout: time.Duration(c.Timeout),
		})
	case "rpc":
		var addr string
		if addr, err = c.address(); err != nil {
			return nil, err
		}
		s, err = rpc.NewSender(addr, time.Duration(c.Timeout))
	case "log":
		if c.Record == "" {
			return nil, fmt.Errorf("solver transport \"log\" requires a record file")
		}
		return recorder.Open(c.Record, recorder.Compression(c.Compress))
	case "discard":
		s = discard{}
	default:
		return nil, fmt.Errorf("unknown solver transport %q", c.Transport)
	}
	if err != nil {
		return nil, err
	}
	labelpaint.Infof("Solver transport %q ready (%v)\n", c.Transport, c.Addresses)
	if c.Record == "" {
		return s, nil
	}
	rec, err := recorder.Open(c.Record, recorder.Compression(c.Compress))
	if err != nil {
		s.Close()
		return nil, err
	}
	labelpaint.Infof("Recording solver frames to %s\n", c.Record)
	return recorder.Tee(s, rec), nil
}
