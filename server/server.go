/*
Package server runs a headless labelpaint session behind an HTTP API.

The server owns one label volume seen through a static viewer transform.
Clients post input events or brush paths in display coordinates, select the
active fragment, and ask for painted regions to be sent to the solver.  Every
edit is appended to an optional JSON edit log.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/labels"
	"github.com/janelia-flyem/labelpaint/session"
	"github.com/janelia-flyem/labelpaint/solver"
	"github.com/janelia-flyem/labelpaint/transform"
	"github.com/janelia-flyem/labelpaint/transport"
)

// Server is a running annotation session.
type Server struct {
	cfg     *Config
	editor  *session.Editor
	viewer  *transform.StaticViewer
	sender  transport.Sender
	editlog *EditLog

	schemas         map[string]*jsonschema.Schema
	authorizedUsers map[string]string

	httpServer *http.Server
	started    time.Time
}

func affineSetting(values []float64, name string) (transform.Affine3D, error) {
	if len(values) == 0 {
		return transform.Identity(), nil
	}
	t, err := transform.FromRowMajor(values)
	if err != nil {
		return t, fmt.Errorf("bad %s transform: %v", name, err)
	}
	return t, nil
}

func newVolume(c volumeConfig) (*labels.Dense, error) {
	volume, err := labels.NewDense(labelpaint.Point3d(c.Size), labelpaint.Point3d(c.ChunkSize))
	if err != nil {
		return nil, err
	}
	for i, box := range c.Boxes {
		ext := labelpaint.Extents3d{MinPoint: labelpaint.Point3d(box.Min), MaxPoint: labelpaint.Point3d(box.Max)}
		if !labels.IsFragment(box.Label) {
			return nil, fmt.Errorf("volume box %d has reserved label %d", i, box.Label)
		}
		volume.FillBox(ext, box.Label)
	}
	return volume, nil
}

// New builds a server and its solver transport from the configuration.
func New(cfg *Config) (*Server, error) {
	sender, err := transport.New(cfg.Solver)
	if err != nil {
		return nil, err
	}
	s, err := NewWithSender(cfg, sender)
	if err != nil {
		sender.Close()
		return nil, err
	}
	return s, nil
}

// NewWithSender builds a server that notifies the solver through sender.
func NewWithSender(cfg *Config, sender transport.Sender) (*Server, error) {
	cfg.setDefaults()
	volume, err := newVolume(cfg.Volume)
	if err != nil {
		return nil, err
	}
	labelTransform, err := affineSetting(cfg.Volume.Transform, "volume")
	if err != nil {
		return nil, err
	}
	viewerTransform, err := affineSetting(cfg.Viewer.Transform, "viewer")
	if err != nil {
		return nil, err
	}
	viewer, err := transform.NewStaticViewer(viewerTransform)
	if err != nil {
		return nil, fmt.Errorf("bad viewer transform: %v", err)
	}
	correlator, err := solver.NewCorrelator(cfg.Solver.Correlation)
	if err != nil {
		return nil, err
	}
	opts := session.Options{
		Bindings:  cfg.Brush.Bindings,
		MaxVoxels: cfg.Fill.MaxVoxels,
		Timeout:   time.Duration(cfg.Fill.Timeout),

		ClassifyPainted: !cfg.Volume.classifyFragments(),
	}
	editor, err := session.New(volume, viewer, labelTransform, solver.NewNotifier(sender, correlator), opts)
	if err != nil {
		return nil, err
	}
	if cfg.Brush.Radius != nil {
		editor.SetRadius(*cfg.Brush.Radius)
	}

	s := &Server{
		cfg:     cfg,
		editor:  editor,
		viewer:  viewer,
		sender:  sender,
		started: time.Now(),
	}
	if s.schemas, err = compileSchemas(); err != nil {
		return nil, err
	}
	if cfg.Auth.SecretKey != "" {
		if s.authorizedUsers, err = loadAuthFile(cfg.Auth.AuthFile); err != nil {
			return nil, err
		}
	}
	if cfg.Editlog.Path != "" {
		if s.editlog, err = OpenEditLog(cfg.Editlog.Path); err != nil {
			return nil, fmt.Errorf("unable to open edit log: %v", err)
		}
	}
	labelpaint.Infof("Label volume %s with chunk size %s\n",
		labelpaint.Point3d(cfg.Volume.Size), labelpaint.Point3d(cfg.Volume.ChunkSize))
	return s, nil
}

// Editor returns the session being served.
func (s *Server) Editor() *session.Editor {
	return s.editor
}

// Host returns the most understandable host alias + any port.
func (s *Server) Host() string {
	return s.cfg.Server.Host
}

// Serve listens for HTTP requests until Shutdown is called.
func (s *Server) Serve() error {
	s.httpServer = &http.Server{
		Addr:        s.cfg.Server.HTTPAddress,
		Handler:     s.Handler(),
		ReadTimeout: 1 * time.Hour,
	}
	labelpaint.Infof("Web server listening at %s ...\n", s.cfg.Server.HTTPAddress)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown waits up to the configured delay for a running send, then stops the
// web server and releases the solver transport and edit log.
func (s *Server) Shutdown(ctx context.Context) error {
	if job := s.editor.LastJob(); job != nil {
		delay := time.Duration(s.cfg.Server.ShutdownDelay)
		if delay == 0 {
			delay = 5 * time.Second
		}
		select {
		case <-job.Done():
		case <-time.After(delay):
			labelpaint.Warningf("Cancelling solver send still running after %s\n", delay)
			job.Cancel()
			<-job.Done()
		}
	}
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if cerr := s.sender.Close(); err == nil {
		err = cerr
	}
	if cerr := s.editlog.Close(); err == nil {
		err = cerr
	}
	labelpaint.Infof("Server shut down.\n")
	return err
}
