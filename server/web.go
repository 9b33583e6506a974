package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
	"github.com/zenazn/goji/web"
	"github.com/zenazn/goji/web/middleware"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/session"
	"github.com/janelia-flyem/labelpaint/solver"
)

// WebAPIPath is the prefix of all HTTP API endpoints.
const WebAPIPath = "/api/"

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	mux := web.New()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.EnvInit)
	mux.Use(logRequests)
	mux.Use(middleware.Recoverer)
	if len(s.cfg.Server.AllowedOrigins) != 0 {
		mux.Use(cors.New(cors.Options{
			AllowedOrigins:   s.cfg.Server.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "HEAD"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}
	if s.cfg.Auth.SecretKey != "" {
		mux.Use(s.isAuthorized)
	}

	mux.Get(WebAPIPath+"status", s.statusHandler)
	mux.Get(WebAPIPath+"editlog", s.editlogHandler)
	mux.Post(WebAPIPath+"event", s.eventHandler)
	mux.Post(WebAPIPath+"paint", s.strokeHandler(session.ActionPaint))
	mux.Post(WebAPIPath+"erase", s.strokeHandler(session.ActionErase))
	mux.Post(WebAPIPath+"brush/radius", s.radiusHandler)
	mux.Post(WebAPIPath+"active", s.activeHandler)
	mux.Post(WebAPIPath+"send", s.sendHandler)
	mux.Get(WebAPIPath+"dirty", s.dirtyHandler)
	mux.Delete(WebAPIPath+"dirty", s.resetDirtyHandler)
	mux.Get(WebAPIPath+"label/:x/:y/:z", s.labelHandler)
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, r, http.StatusNotFound, "no endpoint %s %s", r.Method, r.URL.Path)
	})
	return mux
}

func logRequests(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		timedLog := labelpaint.NewTimeLog()
		h.ServeHTTP(w, r)
		timedLog.Debugf("HTTP %s: %s", r.Method, r.URL.Path)
	}
	return http.HandlerFunc(fn)
}

func httpError(w http.ResponseWriter, r *http.Request, status int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	labelpaint.Warningf("%s %s: %s\n", r.Method, r.URL.Path, msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// BadRequest writes a 400 error with the formatted message.
func BadRequest(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusBadRequest, format, args...)
}

func unauthorized(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusUnauthorized, format, args...)
}

// editError maps session errors onto HTTP status codes.
func editError(w http.ResponseWriter, r *http.Request, err error) {
	var sendErr *solver.SendError
	switch {
	case errors.Is(err, session.ErrBusy):
		httpError(w, r, http.StatusConflict, "%v", err)
	case errors.As(err, &sendErr):
		httpError(w, r, http.StatusBadGateway, "%v", err)
	case errors.Is(err, session.ErrNoSolver):
		httpError(w, r, http.StatusServiceUnavailable, "%v", err)
	default:
		BadRequest(w, r, "%v", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		labelpaint.Errorf("unable to write JSON response to %s: %v\n", r.URL.Path, err)
	}
}

func user(c web.C) string {
	u, _ := c.Env["user"].(string)
	return u
}

func (s *Server) logEdit(c web.C, action string, fields map[string]interface{}) {
	if err := s.editlog.Log(action, user(c), fields); err != nil {
		labelpaint.Errorf("unable to log %s edit: %v\n", action, err)
	}
}

type boxJSON struct {
	Min labelpaint.Point3d `json:"min"`
	Max labelpaint.Point3d `json:"max"`
}

func dirtyJSON(ext labelpaint.Extents3d, ok bool) map[string]interface{} {
	resp := map[string]interface{}{"dirty": ok}
	if ok {
		resp["box"] = boxJSON{Min: ext.MinPoint, Max: ext.MaxPoint}
	}
	return resp
}

func (s *Server) statusHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	active, hasActive := s.editor.Active()
	ext, dirty := s.editor.Dirty()
	status := map[string]interface{}{
		"Version":         labelpaint.Version.String(),
		"ProtocolVersion": labelpaint.ProtocolVersion.String(),
		"Host":            s.Host(),
		"Note":            s.cfg.Server.Note,
		"Uptime":          time.Since(s.started).Round(time.Second).String(),
		"Radius":          s.editor.Radius(),
		"Overlay":         s.editor.Overlay(),
		"Dirty":           dirtyJSON(ext, dirty),
		"Bindings":        s.editor.Bindings(),
		"Repaints":        s.viewer.Repaints(),
	}
	if hasActive {
		status["Active"] = active
	}
	if job := s.editor.LastJob(); job != nil {
		result, err, finished := job.Result()
		jobStatus := map[string]interface{}{"Finished": finished}
		if finished {
			jobStatus["Result"] = result
			if err != nil {
				jobStatus["Error"] = err.Error()
			}
		}
		status["LastSend"] = jobStatus
	}
	writeJSON(w, r, http.StatusOK, status)
}

func (s *Server) editlogHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.editlog.WriteJSON(w); err != nil {
		labelpaint.Errorf("unable to write edit log: %v\n", err)
	}
}

func (s *Server) eventHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	var ev session.Event
	if err := s.decodeRequest(r, "event.json", &ev); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	if err := s.editor.Handle(ev); err != nil {
		editError(w, r, err)
		return
	}
	s.logEdit(c, "event", map[string]interface{}{"Event": ev})
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"Overlay": s.editor.Overlay()})
}

func (s *Server) strokeHandler(action string) func(web.C, http.ResponseWriter, *http.Request) {
	return func(c web.C, w http.ResponseWriter, r *http.Request) {
		var req struct {
			Path [][2]float64 `json:"path"`
		}
		if err := s.decodeRequest(r, "stroke.json", &req); err != nil {
			BadRequest(w, r, "%v", err)
			return
		}
		if err := s.editor.Stroke(action, req.Path); err != nil {
			editError(w, r, err)
			return
		}
		s.logEdit(c, action, map[string]interface{}{"Path": req.Path, "Radius": s.editor.Radius()})
		ext, dirty := s.editor.Dirty()
		writeJSON(w, r, http.StatusOK, dirtyJSON(ext, dirty))
	}
}

func (s *Server) radiusHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	var req struct {
		Radius int `json:"radius"`
	}
	if err := s.decodeRequest(r, "radius.json", &req); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	s.editor.SetRadius(req.Radius)
	writeJSON(w, r, http.StatusOK, map[string]int{"radius": s.editor.Radius()})
}

func (s *Server) activeHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label json.Number `json:"label"`
	}
	if err := s.decodeRequest(r, "active.json", &req); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	label, err := strconv.ParseUint(req.Label.String(), 10, 64)
	if err != nil {
		BadRequest(w, r, "bad label %q: %v", req.Label, err)
		return
	}
	if err := s.editor.SetActive(label); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	s.logEdit(c, "active", map[string]interface{}{"Label": label})
	writeJSON(w, r, http.StatusOK, map[string]uint64{"label": label})
}

func (s *Server) sendHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	var req struct {
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Wait bool    `json:"wait"`
	}
	if err := s.decodeRequest(r, "send.json", &req); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	ctx := context.Background() // a queued send outlives the request
	if req.Wait {
		ctx = r.Context()
	}
	job, err := s.editor.SendPainted(ctx, req.X, req.Y)
	if err != nil {
		editError(w, r, err)
		return
	}
	if !req.Wait {
		s.logEdit(c, "send", map[string]interface{}{"X": req.X, "Y": req.Y, "Queued": true})
		writeJSON(w, r, http.StatusAccepted, map[string]bool{"queued": true})
		return
	}
	result, err := job.Wait()
	if err != nil {
		editError(w, r, err)
		return
	}
	s.logEdit(c, "send", map[string]interface{}{
		"Label":         result.Label,
		"Seed":          result.Seed,
		"Sent":          result.Sent,
		"CorrelationID": result.Notification.CorrelationID,
	})
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) dirtyHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	ext, dirty := s.editor.Dirty()
	writeJSON(w, r, http.StatusOK, dirtyJSON(ext, dirty))
}

func (s *Server) resetDirtyHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	ext, dirty := s.editor.ResetDirty()
	s.logEdit(c, "reset dirty", nil)
	writeJSON(w, r, http.StatusOK, dirtyJSON(ext, dirty))
}

func (s *Server) labelHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	var p labelpaint.Point3d
	for dim, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseInt(c.URLParams[name], 10, 32)
		if err != nil {
			BadRequest(w, r, "bad %s coordinate %q", name, c.URLParams[name])
			return
		}
		p[dim] = int32(v)
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"point": p, "label": s.editor.Label(p)})
}
