package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/infinityseifer/eda-auto/app"
	"github.com/infinityseifer/eda-auto/internal/config"
	"github.com/infinityseifer/eda-auto/internal/logging"
	"github.com/infinityseifer/eda-auto/ports"
)

// Server is the HTTP boundary around the pipeline. It owns no
// pipeline state: every request constructs and discards its own run.
type Server struct {
	router       *chi.Mux
	cfg          *config.Config
	orchestrator *app.Orchestrator
	jobs         *app.JobManager
	loader       ports.FrameLoader

	// Optional registry; nil means filesystem discovery only
	datasets ports.DatasetRepository
	reports  ports.ReportRepository

	log *logging.Logger
}

// NewServer wires the HTTP routes. datasets and reports may be nil
// when no registry database is configured.
func NewServer(cfg *config.Config, orchestrator *app.Orchestrator, jobs *app.JobManager, loader ports.FrameLoader, datasets ports.DatasetRepository, reports ports.ReportRepository) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		cfg:          cfg,
		orchestrator: orchestrator,
		jobs:         jobs,
		loader:       loader,
		datasets:     datasets,
		reports:      reports,
		log:          logging.Default,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Minute))

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/datasets", func(r chi.Router) {
		r.Get("/", s.handleListDatasets)
		r.Post("/upload", s.handleUploadDataset)
	})

	s.router.Route("/jobs", func(r chi.Router) {
		r.Post("/run", s.handleRunJob)
		r.Get("/{jobID}", s.handleJobStatus)
	})

	s.router.Route("/reports", func(r chi.Router) {
		r.Get("/", s.handleListReports)
		r.Get("/download/{filename}", s.handleDownloadReport)
	})
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server on the configured port
func (s *Server) ListenAndServe() error {
	addr := ":" + s.cfg.Server.Port
	s.log.Info("listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
