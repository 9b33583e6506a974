// Package recorder appends solver frames to a protolog file so notifications
// can be inspected or replayed later.
package recorder

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/golang/snappy"
	"github.com/janelia-flyem/protolog"
	"github.com/klauspost/compress/zstd"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/solver"
)

// Compression selects how recorded frames are compressed.
type Compression string

const (
	Uncompressed Compression = ""
	Zstd         Compression = "zstd"
	Snappy       Compression = "snappy"
)

// Record type ids: frame type + 1, offset by the compression used.
const (
	frameTypeBase    uint16 = 1
	zstdTypeOffset   uint16 = 16
	snappyTypeOffset uint16 = 32
)

// Recorder is a solver.Sender that writes every frame to a protolog file.
type Recorder struct {
	mu          sync.Mutex
	f           *os.File
	compression Compression
	enc         *zstd.Encoder
	path        string
}

// Open opens or creates the record file at path for appending.  Frames written
// with different compressions may share one file.
func Open(path string, compression Compression) (*Recorder, error) {
	switch compression {
	case Uncompressed, Zstd, Snappy:
	default:
		return nil, fmt.Errorf("unknown solver record compression %q", compression)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open solver record file %q: %v", path, err)
	}
	r := &Recorder{f: f, compression: compression, path: path}
	if compression == Zstd {
		if r.enc, err = zstd.NewWriter(nil); err != nil {
			f.Close()
			return nil, err
		}
	}
	return r, nil
}

// Path returns the record file path.
func (r *Recorder) Path() string {
	return r.path
}

func (r *Recorder) Send(ctx context.Context, f solver.Frame) error {
	typeID := frameTypeBase + uint16(f.Type)
	data := f.Data
	switch r.compression {
	case Zstd:
		typeID += zstdTypeOffset
		data = r.enc.EncodeAll(f.Data, nil)
	case Snappy:
		typeID += snappyTypeOffset
		data = snappy.Encode(nil, f.Data)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w := protolog.NewTypedWriter(typeID, r.f)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to record solver %s frame: %v", f.Type, err)
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc != nil {
		r.enc.Close()
	}
	return r.f.Close()
}

// SendCloser is a sender whose connection can be released.
type SendCloser interface {
	solver.Sender
	io.Closer
}

type tee struct {
	primary SendCloser
	rec     *Recorder
}

// Tee returns a sender that records each frame after primary accepts it.
// Recording failures are logged but do not fail the send.
func Tee(primary SendCloser, rec *Recorder) SendCloser {
	return &tee{primary: primary, rec: rec}
}

func (t *tee) Send(ctx context.Context, f solver.Frame) error {
	if err := t.primary.Send(ctx, f); err != nil {
		return err
	}
	if err := t.rec.Send(ctx, f); err != nil {
		labelpaint.Errorf("%v\n", err)
	}
	return nil
}

func (t *tee) Close() error {
	err := t.primary.Close()
	if rerr := t.rec.Close(); err == nil {
		err = rerr
	}
	return err
}

// ReadFrames returns all frames in a record file in the order written.
func ReadFrames(path string) ([]solver.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dec *zstd.Decoder
	defer func() {
		if dec != nil {
			dec.Close()
		}
	}()

	var frames []solver.Frame
	r := protolog.NewReader(f)
	for {
		typeID, data, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frames, fmt.Errorf("bad record %d in %s: %v", len(frames), path, err)
		}
		// The reader reuses its buffer on every Next.
		data = append([]byte(nil), data...)
		switch {
		case typeID >= frameTypeBase+snappyTypeOffset:
			if data, err = snappy.Decode(nil, data); err != nil {
				return frames, fmt.Errorf("unable to decompress record %d: %v", len(frames), err)
			}
			typeID -= snappyTypeOffset
		case typeID >= frameTypeBase+zstdTypeOffset:
			if dec == nil {
				if dec, err = zstd.NewReader(nil); err != nil {
					return frames, err
				}
			}
			if data, err = dec.DecodeAll(data, nil); err != nil {
				return frames, fmt.Errorf("unable to decompress record %d: %v", len(frames), err)
			}
			typeID -= zstdTypeOffset
		}
		msg, err := solver.Decode(data)
		if err != nil {
			return frames, fmt.Errorf("record %d: %v", len(frames), err)
		}
		if msg.Type() != solver.Type(typeID-frameTypeBase) {
			return frames, fmt.Errorf("record %d has type id %d but holds a %s message", len(frames), typeID, msg.Type())
		}
		frames = append(frames, solver.Frame{
			CorrelationID: msg.Correlation(),
			Type:          msg.Type(),
			Data:          data,
			More:          msg.Type() != solver.StopType,
		})
	}
	return frames, nil
}

// Replay sends every recorded frame to s, stopping at the first error.
func Replay(ctx context.Context, path string, s solver.Sender) (int, error) {
	frames, err := ReadFrames(path)
	if err != nil {
		return 0, err
	}
	for i, f := range frames {
		if err := s.Send(ctx, f); err != nil {
			return i, err
		}
	}
	return len(frames), nil
}
