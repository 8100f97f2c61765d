package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devricklin/privacy-guard/internal/biz/usecase"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// AnalyzerServer serves the text classifier over HTTP
type AnalyzerServer struct {
	analyzer *usecase.AnalyzerUsecase
	origins  []string
	log      logging.Logger

	server *http.Server
	addr   string
}

// NewAnalyzerServer creates a new classifier server
func NewAnalyzerServer(analyzer *usecase.AnalyzerUsecase, addr string, origins []string, log logging.Logger) *AnalyzerServer {
	return &AnalyzerServer{
		analyzer: analyzer,
		origins:  origins,
		log:      log.With("component", "Analyzer"),
		addr:     addr,
	}
}

// Routes returns the classifier router
func (s *AnalyzerServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.origins))

	r.Post("/analizar", s.handleAnalyze)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// Start starts the HTTP server
func (s *AnalyzerServer) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info(context.Background(), "starting analyzer", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *AnalyzerServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

type analyzeRequest struct {
	Text string `json:"texto"`
}

type analyzeResponse struct {
	Exposes  bool    `json:"expone"`
	Category *string `json:"tipo"`
}

func (s *AnalyzerServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}

	verdict, err := s.analyzer.Analyze(r.Context(), req.Text)
	if errors.Is(err, usecase.ErrEmptyText) {
		writeError(w, http.StatusBadRequest, "texto vacío")
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := analyzeResponse{Exposes: verdict.Exposes}
	if verdict.Exposes {
		resp.Category = &verdict.Category
	}
	writeJSON(w, http.StatusOK, resp)
}
