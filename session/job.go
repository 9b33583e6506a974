package session

import (
	"context"

	"github.com/janelia-flyem/labelpaint/floodfill"
	"github.com/janelia-flyem/labelpaint/fragments"
	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/solver"
)

// SendResult describes a completed send.  Sent is false when the seed held no
// fragment and nothing was sent.
type SendResult struct {
	Seed         labelpaint.Point3d
	Label        uint64
	Voxels       uint64
	Chunks       int
	Sets         fragments.IDSets
	Notification solver.Result
	Sent         bool
}

// Job is a send running on a worker goroutine.
type Job struct {
	done   chan struct{}
	cancel context.CancelFunc

	result SendResult
	err    error
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes.
func (j *Job) Wait() (SendResult, error) {
	<-j.done
	return j.result, j.err
}

// Cancel asks the job to stop.  A fill in progress aborts; messages already
// sent are not retracted.
func (j *Job) Cancel() {
	j.cancel()
}

// Result returns the outcome if the job has finished.
func (j *Job) Result() (result SendResult, err error, finished bool) {
	select {
	case <-j.done:
		return j.result, j.err, true
	default:
		return SendResult{}, nil, false
	}
}

// LastJob returns the most recently started send job, or nil.
func (e *Editor) LastJob() *Job {
	e.jobMu.Lock()
	defer e.jobMu.Unlock()
	return e.lastJob
}

// SendPainted floods the painted region under a display coordinate, classifies
// the fragments it touches and notifies the solver.  It returns immediately with
// a job, or ErrBusy if a send is already running.
func (e *Editor) SendPainted(ctx context.Context, x, y float64) (*Job, error) {
	if e.notifier == nil {
		return nil, ErrNoSolver
	}
	if !e.jobs.TryAcquire(1) {
		return nil, ErrBusy
	}
	var cancel context.CancelFunc
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	job := &Job{done: make(chan struct{}), cancel: cancel}
	e.jobMu.Lock()
	e.lastJob = job
	e.jobMu.Unlock()

	go func() {
		defer close(job.done)
		defer e.jobs.Release(1)
		defer cancel()
		job.result, job.err = e.sendPainted(ctx, x, y)
		if job.err != nil {
			labelpaint.Errorf("Send of painted label at (%g, %g) failed: %v\n", x, y, job.err)
		}
	}()
	return job, nil
}

func (e *Editor) classifyVolume() labels.Reader {
	if e.fragments != nil {
		return e.fragments
	}
	return e.volume
}

// sendPainted holds the coarse lock for the whole cycle.
func (e *Editor) sendPainted(ctx context.Context, x, y float64) (SendResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seed := labelpaint.RoundPoint3d(e.mapper.ToVolumeSpace(x, y))
	result := SendResult{Seed: seed}
	fill, err := floodfill.Fill(ctx, e.volume, seed, e.fillOpts)
	if err != nil {
		return result, err
	}
	result.Label = fill.Label
	if fill.Empty() {
		labelpaint.Infof("Nothing painted at %s (label %d), not sending to solver\n", seed, fill.Label)
		return result, nil
	}
	result.Voxels = fill.Mask.NumVoxels()
	result.Chunks = fill.Mask.NumChunks()
	result.Sets = fragments.Classify(fill.Mask, e.classifyVolume())
	labelpaint.Debugf("Painted label %d: %s\n", fill.Label, result.Sets)

	if result.Notification, err = e.notifier.Notify(ctx, fill.Label, fill.Mask, result.Sets); err != nil {
		return result, err
	}
	result.Sent = true
	return result, nil
}
