package api

import (
	"encoding/json"
	"net/http"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/parser"
	"github.com/go-chi/chi/v5"
)

// handleListPlans lists every plan with its review aggregates.
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.index.List()
	if err != nil {
		s.log.Error("list plans failed", "error", err)
		jsonError(w, "failed to list plans", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// handleGetPlan returns one parsed plan. ?render=html additionally fills in
// rendered HTML for every section body.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	plan, err := s.index.Get(planID)
	if err != nil {
		s.log.Error("get plan failed", "plan", planID, "error", err)
		jsonError(w, "failed to get plan", http.StatusInternalServerError)
		return
	}
	if plan == nil {
		jsonError(w, "plan not found", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("render") == "html" {
		parser.AttachHTML(plan.Sections)
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleRefreshPlans forces a re-scan of the plans directory.
func (s *Server) handleRefreshPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.index.List()
	if err != nil {
		s.log.Error("refresh plans failed", "error", err)
		jsonError(w, "failed to refresh plans", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(plans)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
