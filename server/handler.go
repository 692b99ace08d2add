package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/toshan-luktuke/retire-early"
	"github.com/toshan-luktuke/retire-early/renderer"
)

// ErrLimit is returned for requests beyond the configured limits.
var ErrLimit = errors.New("request exceeds the server limits")

// run decodes and simulates the request of r.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (retire.Response, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := retire.NewRequestDecoder()
	dec.Inflation = s.Inflation()
	req, err := dec.DecodeAt(body, r.URL.Query().Get("path"))
	if err != nil {
		return retire.Response{}, err
	}
	if req.Iterations > s.cfg.MaxIterations {
		return retire.Response{}, fmt.Errorf("%w: %d iterations, at most %d", ErrLimit, req.Iterations, s.cfg.MaxIterations)
	}
	if req.Year > s.cfg.MaxYears {
		return retire.Response{}, fmt.Errorf("%w: %d years, at most %d", ErrLimit, req.Year, s.cfg.MaxYears)
	}

	res, err := retire.RunMonteCarlo(r.Context(), req.Profile(), s.params, req.Goal, req.Config(s.cfg.workers()), s.source())
	if err != nil {
		return retire.Response{}, err
	}
	return retire.NewResponse(req, res), nil
}

func (s *Server) source() rand.Source {
	if s.Source != nil {
		return s.Source()
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// Simulate answers a simulation request with the completed request and its result.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.run(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// Chart answers a simulation request with a chart of the average net worth.
func (s *Server) Chart(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	contentType := "image/png"
	switch format {
	case "", renderer.PNG:
	case renderer.SVG:
		contentType = "image/svg+xml"
	default:
		s.writeError(w, r, fmt.Errorf("%w: unsupported chart format %q", retire.ErrMalformedInput, format))
		return
	}

	resp, err := s.run(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	img, err := renderer.TrajectoryChart(resp.Result, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(img)
}

// Report answers a simulation request with a markdown report.
func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	resp, err := s.run(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, renderer.ResultMarkdown(resp, s.cfg.Currency))
}

// Health reports the server is up, with its default inflation.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"inflation": s.Inflation(),
	})
}

// status maps an error to the HTTP status reported to the client.
func status(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, retire.ErrMalformedInput),
		errors.Is(err, retire.ErrInvalidConfiguration),
		errors.Is(err, retire.ErrInvalidAsset),
		errors.Is(err, renderer.ErrNoTrajectory),
		errors.Is(err, ErrLimit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := status(err)
	entry := s.logger.WithError(err).WithField("request_id", RequestID(r.Context()))
	if code >= http.StatusInternalServerError {
		entry.Error("simulation failed")
	} else {
		entry.Debug("invalid request")
	}
	s.writeJSON(w, r, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).WithField("request_id", RequestID(r.Context())).Error("cannot write response")
	}
}
