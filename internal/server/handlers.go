package server

import (
	"bytes"
	_ "embed"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/stormgraph/pkg/buildinfo"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/selection"
)

//go:embed static/index.html
var indexHTML []byte

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.container.Surface().WriteSVG(&buf); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.container.Surface().WritePNG(&buf); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "render png"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Surface().Scene())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateNodeID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.state.Has(id) {
		s.writeError(w, errs.Wrap(errs.ErrCodeUnknownCity, selection.ErrUnknownCity, "city %q is not in the selection", id))
		return
	}
	if !s.container.Click(id) {
		s.writeError(w, errs.New(errs.ErrCodeNotFound, "no node %q in the current graph", id))
		return
	}
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleToggleAll(w http.ResponseWriter, r *http.Request) {
	s.state.ToggleSelectAll()
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	factor, err := floatParam(r, "factor", 0)
	if err == nil && factor <= 0 {
		err = errs.New(errs.ErrCodeInvalidInput, "factor must be positive")
	}
	cx, cerr := floatParam(r, "cx", s.opts.Render.Width/2)
	cy, yerr := floatParam(r, "cy", s.opts.Render.Height/2)
	if err = firstErr(err, cerr, yerr); err != nil {
		s.writeError(w, err)
		return
	}
	t := s.container.Surface().Zoom(factor, cx, cy)
	s.container.Redraw()
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	dx, xerr := floatParam(r, "dx", 0)
	dy, yerr := floatParam(r, "dy", 0)
	if err := firstErr(xerr, yerr); err != nil {
		s.writeError(w, err)
		return
	}
	t := s.container.Surface().Pan(dx, dy)
	s.container.Redraw()
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	surface := s.container.Surface()
	surface.ResetTransform()
	s.container.Redraw()
	writeJSON(w, http.StatusOK, surface.Transform())
}

type reloadResponse struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	g, err := s.Reload(r.Context(), true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Nodes: len(g.Nodes), Edges: len(g.Edges)})
}

// =============================================================================
// Helpers
// =============================================================================

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code.Kind() {
	case errs.KindInput:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindAuth:
		return http.StatusUnauthorized
	case errs.KindData:
		return http.StatusUnprocessableEntity
	case errs.KindUpstream:
		return http.StatusBadGateway
	case errs.KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "parameter %s", name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errs.New(errs.ErrCodeInvalidInput, "parameter %s must be a finite number", name)
	}
	return v, nil
}

func firstErr(errList ...error) error {
	for _, err := range errList {
		if err != nil {
			return err
		}
	}
	return nil
}
