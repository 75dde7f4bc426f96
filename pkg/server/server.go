// Package server exposes the report pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	figmareport "github.com/hellenic-development/figma-report"
	"github.com/hellenic-development/figma-report/pkg/artifacts"
	"github.com/hellenic-development/figma-report/pkg/extract"
	"github.com/hellenic-development/figma-report/pkg/figma"
)

// Server routes report generation requests. Every request gets a fresh
// pipeline run; nothing is cached between requests.
type Server struct {
	opts   figmareport.Options
	store  *artifacts.Store
	logger figmareport.Logger
	mux    *http.ServeMux
}

// New builds a Server that persists generated files in store.
func New(opts figmareport.Options, store *artifacts.Store) *Server {
	s := &Server{
		opts:   opts,
		store:  store,
		logger: opts.Logger,
		mux:    http.NewServeMux(),
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /api/diagram", s.handleDiagram)
	s.mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)

	return s
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}

// ServeHTTP tags each request with an ID before dispatching.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Logf("%s %s %s (%s)", requestID, r.Method, r.URL.Path, time.Since(start))
}

type generateRequest struct {
	FigmaURL string `json:"figma_url"`
}

type summary struct {
	Pages       int    `json:"pages"`
	Layers      int    `json:"layers"`
	Frames      int    `json:"frames"`
	TextNodes   int    `json:"text_nodes"`
	Components  int    `json:"components"`
	Fingerprint string `json:"fingerprint"`
}

type generateResponse struct {
	Success     bool    `json:"success"`
	Filename    string  `json:"filename"`
	DownloadURL string  `json:"download_url"`
	Synthesized bool    `json:"synthesized"`
	Summary     summary `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"version":          figma.Version,
		"figma_configured": s.opts.FigmaToken != "",
		"llm_configured":   s.opts.LLMAPIKey != "",
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGenerate(w, r)
	if !ok {
		return
	}

	result, err := figmareport.Run(r.Context(), req.FigmaURL, s.opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	filename, err := s.store.Save(result.FileName, result.PDF)
	if err != nil {
		s.writeError(w, err)
		return
	}

	st := result.Structure
	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		Filename:    filename,
		DownloadURL: "/api/download/" + filename,
		Synthesized: result.Synthesized,
		Summary: summary{
			Pages:       len(st.Pages),
			Layers:      len(st.Layers),
			Frames:      len(st.Frames()),
			TextNodes:   len(st.TextNodes),
			Components:  len(st.Components),
			Fingerprint: st.Fingerprint,
		},
	})
}

type diagramRequest struct {
	FigmaURL string `json:"figma_url"`
	Kind     string `json:"kind"`
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.FigmaURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "figma_url is required"})
		return
	}

	result, err := figmareport.Run(r.Context(), req.FigmaURL, s.opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var png []byte
	switch req.Kind {
	case "", "architecture":
		png = result.Architecture
	case "flow":
		png = result.Flow
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown diagram kind %q", req.Kind)})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	data, err := s.store.Open(filename)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) decodeGenerate(w http.ResponseWriter, r *http.Request) (generateRequest, bool) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return req, false
	}
	if req.FigmaURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "figma_url is required"})
		return req, false
	}
	return req, true
}

// writeError maps pipeline errors onto HTTP statuses: bad references are the
// caller's fault, malformed files are unprocessable, upstream failures are
// bad gateways.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, figma.ErrInvalidReference), errors.Is(err, artifacts.ErrBadName):
		status = http.StatusBadRequest
	case errors.Is(err, extract.ErrMalformedInput), errors.Is(err, figma.ErrMalformedPayload):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, figma.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, artifacts.ErrNotFound):
		status = http.StatusNotFound
	}

	s.logger.Logf("request failed (%d): %v", status, err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
