package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/urlextract/internal/crawler"
	"github.com/nao1215/urlextract/internal/database"
	"github.com/nao1215/urlextract/internal/job"
	"github.com/nao1215/urlextract/internal/model"
)

// maxRequestBody bounds the size of POST /extract bodies.
const maxRequestBody = 1 << 20

// History lists stored crawl reports.
type History interface {
	ListReports(ctx context.Context, domain string, limit int) ([]database.ReportMetadata, error)
}

// Server exposes the HTTP API for crawl jobs.
type Server struct {
	jobs    *job.Manager
	history History
	logger  *slog.Logger
	mux     *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables GET /history backed by h.
func WithHistory(h History) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wires handlers onto an HTTP mux.
func New(jobs *job.Manager, opts ...Option) *Server {
	s := &Server{
		jobs:   jobs,
		logger: slog.Default(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP satisfies the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"elapsed", time.Since(start),
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /extract", s.handleExtract)
	s.mux.HandleFunc("GET /status/{id}", s.handleStatus)
	s.mux.HandleFunc("GET /result/{id}", s.handleResult)
	s.mux.HandleFunc("GET /jobs", s.handleListJobs)
	s.mux.HandleFunc("DELETE /jobs/{id}", s.handleCancelJob)
	s.mux.HandleFunc("GET /history", s.handleHistory)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// extractRequest is the body of POST /extract. Depth may be a number or a
// numeric string.
type extractRequest struct {
	URL   string          `json:"url"`
	Depth json.RawMessage `json:"depth"`
}

// depth parses the requested depth, falling back to the default, and clamps it.
func (req extractRequest) depth() int {
	if len(req.Depth) == 0 || string(req.Depth) == "null" {
		return crawler.DefaultDepth
	}

	var n int
	if err := json.Unmarshal(req.Depth, &n); err == nil {
		return crawler.ClampDepth(n)
	}
	var str string
	if err := json.Unmarshal(req.Depth, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			return crawler.ClampDepth(n)
		}
	}
	return crawler.DefaultDepth
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	// A malformed body is treated like an empty one.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req) //nolint:errcheck

	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "Missing 'url' parameter")
		return
	}

	j, err := s.jobs.Submit(req.URL, req.depth())
	if err != nil {
		switch {
		case errors.Is(err, job.ErrTooManyJobs):
			writeError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, job.ErrShutdown):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if !isSync(r) {
		writeJSON(w, http.StatusAccepted, map[string]string{"job_id": j.ID})
		return
	}

	final, err := s.jobs.Wait(r.Context(), j.ID)
	if err != nil {
		// The client went away; stop the crawl it was waiting for.
		_ = s.jobs.Cancel(j.ID) //nolint:errcheck
		return
	}
	s.writeSyncResult(w, final)
}

// isSync reports whether the request asked to wait for the crawl.
func isSync(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("sync"))
	return err == nil && v
}

// writeSyncResult writes the summary of a finished job.
func (s *Server) writeSyncResult(w http.ResponseWriter, j *model.Job) {
	rep := j.Report
	if j.State != model.JobDone || rep == nil {
		if rep != nil && errors.Is(rep.Error, crawler.ErrUnreachable) {
			writeError(w, http.StatusBadGateway, "Could not access target URL")
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Error exploring site",
			"details": j.Message,
		})
		return
	}

	body := map[string]any{
		"status": "ok",
		"job_id": j.ID,
		"domain": rep.Domain,
		"found":  rep.FoundCount(),
		"file":   filepath.Base(j.ResultFile),
	}
	if rep.AdministrativeSite {
		body["administrative"] = rep.AdministrativeCount()
	}
	writeJSON(w, http.StatusOK, body)
}

// statusResponse is the body of GET /status/{id}.
type statusResponse struct {
	JobID          string               `json:"job_id"`
	Status         model.JobState       `json:"status"`
	Message        string               `json:"message"`
	Visited        int                  `json:"visited"`
	CurrentURL     string               `json:"current_url,omitempty"`
	Domain         string               `json:"domain,omitempty"`
	Found          *int                 `json:"found,omitempty"`
	Administrative *int                 `json:"administrative,omitempty"`
	Departamentos  []model.CanonicalURL `json:"departamentos,omitempty"`
	Provincias     []model.CanonicalURL `json:"provincias,omitempty"`
	Distritos      []model.CanonicalURL `json:"distritos,omitempty"`
	Otras          []model.CanonicalURL `json:"otras,omitempty"`
	URLs           []model.CanonicalURL `json:"urls,omitempty"`
	File           string               `json:"file,omitempty"`
}

// newStatusResponse renders j. Tier lists are only present for classified
// sites and urls only for sites that were not classified.
func newStatusResponse(j *model.Job) statusResponse {
	resp := statusResponse{
		JobID:      j.ID,
		Status:     j.State,
		Message:    j.Message,
		Visited:    j.Visited,
		CurrentURL: j.CurrentURL,
	}
	if j.ResultFile != "" {
		resp.File = filepath.Base(j.ResultFile)
	}

	rep := j.Report
	if j.State != model.JobDone || rep == nil {
		return resp
	}

	found := rep.FoundCount()
	resp.Domain = rep.Domain
	resp.Found = &found
	if rep.AdministrativeSite {
		admin := rep.AdministrativeCount()
		resp.Administrative = &admin
		resp.Departamentos = rep.Classification.ByTier(model.TierRegion)
		resp.Provincias = rep.Classification.ByTier(model.TierProvince)
		resp.Distritos = rep.Classification.ByTier(model.TierDistrict)
		resp.Otras = rep.Classification.ByTier(model.TierOther)
	} else {
		resp.URLs = rep.Found
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(j))
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	path, err := s.jobs.Result(r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusConflict, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.List())
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.Cancel(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history database is not enabled")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	reports, err := s.history.ListReports(r.Context(), r.URL.Query().Get("domain"), limit)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if reports == nil {
		reports = []database.ReportMetadata{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // the client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
