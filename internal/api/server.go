// Package api serves the dashboard pages as JSON for programmatic clients.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"finsight/domain/dataset"
	"finsight/internal/chart"
	internalDataset "finsight/internal/dataset"
	"finsight/internal/errors"
	"finsight/internal/pages"
	"finsight/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server exposes uploads and page renders over HTTP
type Server struct {
	router *chi.Mux
	store  *session.Store
	loader *internalDataset.Loader
	env    *pages.Env
	logger zerolog.Logger
}

// DatasetSummary describes the published upload
type DatasetSummary struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Rows      int       `json:"rows"`
	Columns   []string  `json:"columns"`
	Employees []string  `json:"employees"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// PageInfo lists a page in navigation order
type PageInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewServer creates the JSON API
func NewServer(store *session.Store, loader *internalDataset.Loader, env *pages.Env, logger zerolog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		loader: loader,
		env:    env,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/dataset", s.handleUpload)
		r.Get("/dataset", s.handleCurrentDataset)
		r.Get("/datasets", s.handleHistory)
		r.Post("/datasets/{id}/activate", s.handleActivate)

		r.Get("/pages", s.handleListPages)
		r.Get("/pages/{page}", s.handlePage)
		r.Get("/pages/{page}/sections/{section}/charts/{chart}", s.handleChart)
	})
}

// requestLogger writes one structured event per request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, err := s.store.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": err == nil,
		"history":        s.loader.HistoryEnabled(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	snap, err := s.loader.Load(r.Context(), file, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(snap))
}

func (s *Server) handleCurrentDataset(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(snap))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	uploads, err := s.loader.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if uploads == nil {
		uploads = []*dataset.Upload{}
	}
	writeJSON(w, http.StatusOK, uploads)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loader.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(snap))
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	var out []PageInfo
	for _, def := range pages.All() {
		out = append(out, PageInfo{Name: def.Name, Title: def.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.env.Render(r.Context(), s.store, chi.URLParam(r, "page"), pages.Inputs(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleChart renders one chart of a page section as SVG
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sectionIdx, err1 := strconv.Atoi(chi.URLParam(r, "section"))
	chartIdx, err2 := strconv.Atoi(chi.URLParam(r, "chart"))
	if err1 != nil || err2 != nil {
		s.writeError(w, errors.InvalidInput("section and chart must be indexes"))
		return
	}

	page, err := s.env.Render(r.Context(), s.store, chi.URLParam(r, "page"), pages.Inputs(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sectionIdx < 0 || sectionIdx >= len(page.Sections) {
		s.writeError(w, errors.NotFound("section"))
		return
	}
	section := page.Sections[sectionIdx]
	if chartIdx < 0 || chartIdx >= len(section.Charts) {
		s.writeError(w, errors.NotFound("chart"))
		return
	}

	svg, err := chart.SVG(section.Charts[chartIdx])
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeInternalError, err))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

func summarize(snap *session.Snapshot) DatasetSummary {
	return DatasetSummary{
		ID:        snap.ID,
		Filename:  snap.Filename,
		Rows:      snap.Table.Len(),
		Columns:   snap.Table.Headers(),
		Employees: snap.Table.Employees(),
		LoadedAt:  snap.LoadedAt,
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.StatusForCode(code)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("code", code).Msg("request failed")
	}

	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: errors.GetMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
