package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/config"
	"github.com/otabekmirzaev/intern-scout/internal/core"
	"github.com/otabekmirzaev/intern-scout/internal/store"
)

type Server struct {
	router   *chi.Mux
	cfg      config.Config
	store    store.Store
	jobs     core.JobSource
	recs     *core.RecommendationService
	feedback *core.FeedbackService
	log      *zap.Logger
}

func NewServer(cfg config.Config, st store.Store, jobs core.JobSource, recs *core.RecommendationService, feedback *core.FeedbackService, log *zap.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		store:    st,
		jobs:     jobs,
		recs:     recs,
		feedback: feedback,
		log:      log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-Email"},
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/healthz/store", s.handleStoreHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/jobs", s.handleListJobs)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)

		r.Post("/resumes", s.handleCreateResume)
		r.Get("/resumes", s.handleListResumes)
		r.Get("/resume-feedback", s.handleListFeedback)

		// The model-backed routes are the expensive ones.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.cfg.RateLimitPerMin, time.Minute))
			r.Post("/recommendations", s.handleRecommendations)
			r.Post("/resume-feedback", s.handleResumeFeedback)
		})
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStoreHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("store ping failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.cfg.StorageBackend,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
