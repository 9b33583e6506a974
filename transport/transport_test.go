package transport

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/janelia-flyem/labelpaint/fragments"
	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/mask"
	"github.com/janelia-flyem/labelpaint/solver"
	"github.com/janelia-flyem/labelpaint/transport/recorder"
)

func notify(s solver.Sender, label uint64) (solver.Result, error) {
	m := mask.New(labelpaint.Point3d{8, 8, 8})
	m.Set(labelpaint.Point3d{1, 2, 3})
	m.Set(labelpaint.Point3d{9, 2, 3})
	sets := fragments.IDSets{
		Contained:   labels.NewSet(label),
		Neighboring: labels.NewSet(),
		Overpainted: labels.NewSet(label),
	}
	return solver.NewNotifier(s, nil).Notify(context.Background(), label, m, sets)
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	bad := map[string]Config{
		"unknown transport": {Transport: "carrier-pigeon"},
		"zmq without address": {Transport: "zmq"},
		"default without address": {},
		"rpc without address": {Transport: "rpc"},
		"kafka without servers": {Transport: "kafka"},
		"log without record": {Transport: "log"},
		"bad socket type": {Transport: "zmq", Addresses: []string{"tcp://localhost:5555"}, Socket: "router"},
		"bad compression": {Transport: "log", Record: filepath.Join(dir, "bad.rec"), Compress: "lzma"},
		"unwritable record": {Transport: "discard", Record: filepath.Join(dir, "missing", "solver.log")},
	}
	for name, c := range bad {
		if s, err := New(c); err == nil {
			s.Close()
			t.Errorf("%s: expected error\n", name)
		}
	}
}

func TestDiscard(t *testing.T) {
	s, err := New(Config{Transport: "discard"})
	if err != nil {
		t.Fatalf("unable to create discard transport: %v\n", err)
	}
	defer s.Close()
	result, err := notify(s, 3)
	if err != nil || result.Frames != 4 {
		t.Errorf("discard notify gave %+v, %v\n", result, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, solver.Frame{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled send, got %v\n", err)
	}
}

func TestLogAndRecordedTransports(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []Config{
		{Transport: "log", Record: filepath.Join(dir, "log.rec")},
		{Transport: "log", Record: filepath.Join(dir, "zlog.rec"), Compress: "zstd"},
		{Transport: "discard", Record: filepath.Join(dir, "discard.rec"), Compress: "snappy"},
	} {
		s, err := New(c)
		if err != nil {
			t.Fatalf("%s transport: %v\n", c.Transport, err)
		}
		if _, err := notify(s, 12); err != nil {
			t.Fatalf("%s transport notify: %v\n", c.Transport, err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("%s transport close: %v\n", c.Transport, err)
		}
		frames, err := recorder.ReadFrames(c.Record)
		if err != nil {
			t.Fatalf("unable to read %s: %v\n", c.Record, err)
		}
		if len(frames) != 4 || frames[0].Type != solver.StartType || frames[3].Type != solver.StopType {
			t.Errorf("%s: bad recorded frames %v\n", c.Record, frames)
		}
	}
}

func TestCollector(t *testing.T) {
	c := &Collector{FailAt: 2, Err: errors.New("broken pipe")}
	_, err := notify(c, 8)
	var sendErr *solver.SendError
	if !errors.As(err, &sendErr) || sendErr.Phase != solver.AnnotationType || sendErr.Sent != 1 {
		t.Fatalf("expected annotation send error, got %v\n", err)
	}
	c.Reset()
	if len(c.Frames()) != 0 {
		t.Errorf("reset collector still holds frames\n")
	}
	if _, err := notify(c, 8); err != nil {
		t.Fatalf("FailAt should apply only once: %v\n", err)
	}
	msgs, err := c.Messages()
	if err != nil {
		t.Fatalf("unable to decode collected frames: %v\n", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d\n", len(msgs))
	}
	for _, msg := range msgs {
		if msg.Correlation() != "8" {
			t.Errorf("bad correlation %q\n", msg.Correlation())
		}
	}
}
