package api

import (
	"log/slog"
	"net/http"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/config"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/planindex"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/reviewstore"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/watcher"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for the plan reviewer.
type Server struct {
	router  chi.Router
	index   *planindex.Index
	reviews *reviewstore.Store
	watcher *watcher.Watcher
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(index *planindex.Index, reviews *reviewstore.Store, w *watcher.Watcher, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		index:   index,
		reviews: reviews,
		watcher: w,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(CORS(s.cfg.AllowedOrigin))
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/api/health", s.handleHealth)

	r.Get("/api/plans", s.handleListPlans)
	r.Post("/api/plans/refresh", s.handleRefreshPlans)
	r.Get("/api/plans/{planID}", s.handleGetPlan)

	r.Get("/api/comments/{planID}", s.handleGetComments)
	r.Post("/api/comments/{planID}", s.handleAddComment)
	r.Patch("/api/comments/{planID}/{commentID}", s.handleUpdateComment)
	r.Delete("/api/comments/{planID}/{commentID}", s.handleDeleteComment)

	r.Patch("/api/sections/{planID}/{sectionID}/status", s.handleSetSectionStatus)

	r.Get("/ws", s.handleWebSocket)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
