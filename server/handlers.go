package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gaurav-prasanna/reportgate/core"
	"github.com/gaurav-prasanna/reportgate/core/cache"
	"github.com/gaurav-prasanna/reportgate/core/output"
	"github.com/gaurav-prasanna/reportgate/core/render"
	"github.com/gaurav-prasanna/reportgate/logger"
)

// runRequest is the body the report designer sends to PUT /run.
type runRequest struct {
	Report       core.ReportDefinition `json:"report"`
	Data         core.ReportData       `json:"data"`
	OutputFormat string                `json:"outputFormat"`
	IsTestData   bool                  `json:"isTestData"`
}

type message struct {
	Msg string `json:"msg"`
}

type errorList struct {
	Errors any `json:"errors"`
}

type errorReply struct {
	Error string `json:"error"`
	Key   string `json:"key,omitempty"`
}

type testReply struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Version   string `json:"version"`
	CacheSize int    `json:"cache_size"`
}

func supported(kind core.OutputKind) bool {
	return kind == core.KindPDF || kind == core.KindXLSX
}

// handleGenerate normalizes and renders a report. Pdf output is cached and
// answered with its key; other kinds are returned as a download.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.log.Warn("request body too large", "limit", s.maxBody)
			writeJSON(w, http.StatusRequestEntityTooLarge, errorList{[]message{{"Request body too large"}}})
			return
		}
		s.log.Warn("invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorList{[]message{{"Invalid request body"}}})
		return
	}

	kind := core.ParseOutputKind(req.OutputFormat)
	log := s.log.With("kind", kind)
	log.Info("generate requested", "test_data", req.IsTestData)

	if len(req.Report) == 0 {
		log.Warn("generate rejected: no report definition")
		writeJSON(w, http.StatusBadRequest, errorList{[]message{{"No report definition provided"}}})
		return
	}
	if !supported(kind) {
		log.Warn("generate rejected: unsupported output format")
		writeJSON(w, http.StatusBadRequest, errorList{[]message{{fmt.Sprintf("Unsupported output format: %s", kind)}}})
		return
	}

	def, warnings := s.normalizer.Normalize(req.Report)
	for _, warn := range warnings {
		log.Warn("element left unnormalized", "element", warn.ElementID, "error", warn.Err)
	}
	data := req.Data
	if data == nil {
		data = core.ReportData{}
	}

	out, err := s.gateway.Render(r.Context(), def, data, kind)
	if err != nil {
		s.metrics.rendered(string(kind), "error")
		s.renderFailed(w, log, err, "errors")
		return
	}
	s.metrics.rendered(string(kind), "ok")

	if kind == core.KindPDF {
		key := s.cache.Put(cache.Entry{Artifact: out, Kind: kind, Definition: def, Data: data})
		log.Info("report generated and cached", "key", key, "size", len(out))
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("X-Report-Key", key)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("key:" + key))
		return
	}

	log.Info("report generated", "size", len(out))
	writeArtifact(w, kind, out, true, output.DownloadName(kind, s.now().UTC()))
}

// handleRetrieve serves a cached report, re-rendering it when another kind is requested.
func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	kind := core.ParseOutputKind(r.URL.Query().Get("outputFormat"))
	log := s.log.With("key", key, "kind", kind)
	log.Info("retrieve requested")

	if key == "" {
		log.Warn("retrieve rejected: no key")
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "No report key provided"})
		return
	}

	entry, err := s.cache.Lookup(key)
	if err != nil {
		log.Warn("retrieve failed", "error", err)
		writeJSON(w, http.StatusNotFound, errorReply{Error: "Invalid or expired report key", Key: key})
		return
	}

	if !supported(kind) {
		log.Warn("retrieve rejected: unsupported output format")
		writeJSON(w, http.StatusBadRequest, errorReply{Error: fmt.Sprintf("Unsupported output format: %s", kind)})
		return
	}

	if kind == entry.Kind {
		writeArtifact(w, kind, entry.Artifact, false, "report"+kind.Extension())
		return
	}

	log.Info("rendering cached report in another format", "cached_kind", entry.Kind)
	out, err := s.gateway.Render(r.Context(), entry.Definition, entry.Data, kind)
	if err != nil {
		s.metrics.rendered(string(kind), "error")
		s.renderFailed(w, log, err, "error")
		return
	}
	s.metrics.rendered(string(kind), "ok")
	writeArtifact(w, kind, out, true, output.DownloadName(kind, s.now().UTC()))
}

// handleDiscard drops a cached report. Unknown keys are not an error.
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "No report key provided"})
		return
	}
	s.cache.Delete(key)
	s.log.Info("report discarded", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Snapshot())
}

func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, testReply{
		Status:    "ok",
		Message:   "ReportGate server is running",
		Version:   Version,
		CacheSize: s.cache.Len(),
	})
}

// renderFailed maps a gateway error to a response. field is "errors" for the
// generate route and "error" for retrieval, matching each route's error shape.
func (s *Server) renderFailed(w http.ResponseWriter, log logger.Logger, err error, field string) {
	var verr *render.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Warn("report validation failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorList{verr.Errors})
	case errors.Is(err, render.ErrUnsupportedKind):
		log.Warn("render rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, errorList{[]message{{err.Error()}}})
	default:
		log.Error("report generation failed", "error", err)
		const msg = "Report generation failed"
		if field == "error" {
			writeJSON(w, http.StatusInternalServerError, errorReply{Error: msg})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorList{[]message{{msg}}})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeArtifact(w http.ResponseWriter, kind core.OutputKind, data []byte, attachment bool, name string) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
