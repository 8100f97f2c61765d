package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/biz/usecase"
	"github.com/devricklin/privacy-guard/internal/logging"
)

const maxBodyBytes = 64 << 10

// PageCounter reports the number of connected pages
type PageCounter interface {
	Live() int
}

// Server provides the local admin HTTP API
type Server struct {
	settingsUC *usecase.SettingsUsecase
	history    *usecase.HistoryRecorder
	classifier *usecase.ClassifierUsecase
	opener     repo.Opener
	pages      PageCounter
	origins    []string
	log        logging.Logger

	server *http.Server
	addr   string
}

// NewServer creates a new admin API server
func NewServer(
	settingsUC *usecase.SettingsUsecase,
	history *usecase.HistoryRecorder,
	classifier *usecase.ClassifierUsecase,
	opener repo.Opener,
	pages PageCounter,
	addr string,
	origins []string,
	log logging.Logger,
) *Server {
	return &Server{
		settingsUC: settingsUC,
		history:    history,
		classifier: classifier,
		opener:     opener,
		pages:      pages,
		origins:    origins,
		log:        log.With("component", "API"),
		addr:       addr,
	}
}

// Routes returns the admin router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.origins))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/history", s.handleListHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/history/today", s.handleHistoryToday)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Post("/classify", s.handleClassify)
		r.Post("/clear-data", s.handleClearData)
	})
	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info(context.Background(), "starting admin API", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*", "chrome-extension://*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pages := 0
	if s.pages != nil {
		pages = s.pages.Live()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"pages":  pages,
		"remote": s.classifier.IsRemote(),
	})
}

// ============ History Handlers ============

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.history.Clear(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *Server) handleHistoryToday(w http.ResponseWriter, r *http.Request) {
	n, err := s.history.CountToday(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// ============ Settings Handlers ============

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsUC.Get(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if !decode(w, r, &patch) {
		return
	}

	saved, err := s.settingsUC.Update(r.Context(), patch)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// ============ Classification Handlers ============

type classifyRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	settings, err := s.settingsUC.Get(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	c, err := s.classifier.Classify(r.Context(), req.Text, settings)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expone":  c.Detected(),
		"tipo":    c.Category.String(),
		"matches": maskedMatches(req.Text, c.Category),
	})
}

func maskedMatches(text string, c domain.Category) []string {
	out := []string{}
	for _, m := range usecase.ExtractMatches(text, c) {
		out = append(out, usecase.MaskValue(m, c))
	}
	return out
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if s.opener == nil {
		writeJSON(w, http.StatusOK, domain.ClearDataAck{Error: "clear-data opener not configured"})
		return
	}
	if err := s.opener.OpenClearData(r.Context()); err != nil {
		s.log.Warn(r.Context(), "failed to open clear-data surface", "error", err)
		writeJSON(w, http.StatusOK, domain.ClearDataAck{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, domain.ClearDataAck{OK: true})
}

// ============ Helpers ============

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
