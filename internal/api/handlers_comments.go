package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/reviewstore"
	"github.com/go-chi/chi/v5"
)

// handleGetComments returns the full review file for a plan. A plan with no
// review state yet gets an empty skeleton rather than a 404, so clients can
// treat "no comments" and "some comments" uniformly.
func (s *Server) handleGetComments(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	review, err := s.reviews.Get(planID)
	if err != nil {
		s.log.Error("get comments failed", "plan", planID, "error", err)
		jsonError(w, "failed to get comments", http.StatusInternalServerError)
		return
	}
	if review == nil {
		now := time.Now().UTC()
		review = &reviewstore.PlanReviewFile{
			PlanID:    planID,
			CreatedAt: now,
			UpdatedAt: now,
			Sections:  []reviewstore.SectionReview{},
		}
	}
	writeJSON(w, http.StatusOK, review)
}

type addCommentRequest struct {
	SectionID string `json:"sectionId"`
	Text      string `json:"text"`
	Heading   string `json:"heading"`
}

// handleAddComment appends a comment to a section's thread, creating the
// review file on first use.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SectionID == "" || req.Text == "" {
		jsonError(w, "sectionId and text are required", http.StatusBadRequest)
		return
	}

	comment, err := s.reviews.AddComment(planID, req.SectionID, req.Text, req.Heading)
	if err != nil {
		if errors.Is(err, reviewstore.ErrEmptyText) || errors.Is(err, reviewstore.ErrEmptySectionID) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error("add comment failed", "plan", planID, "section", req.SectionID, "error", err)
		jsonError(w, "failed to add comment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// handleUpdateComment patches a comment's text and/or resolved flag.
func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	commentID := chi.URLParam(r, "commentID")

	var update reviewstore.CommentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := s.reviews.UpdateComment(planID, commentID, update)
	if err != nil {
		s.log.Error("update comment failed", "plan", planID, "comment", commentID, "error", err)
		jsonError(w, "failed to update comment", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		jsonError(w, "comment not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// handleDeleteComment removes a comment from its thread.
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	commentID := chi.URLParam(r, "commentID")

	deleted, err := s.reviews.DeleteComment(planID, commentID)
	if err != nil {
		s.log.Error("delete comment failed", "plan", planID, "comment", commentID, "error", err)
		jsonError(w, "failed to delete comment", http.StatusInternalServerError)
		return
	}
	if !deleted {
		jsonError(w, "comment not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setStatusRequest struct {
	Status  reviewstore.Status `json:"status"`
	Heading string             `json:"heading"`
}

// handleSetSectionStatus sets the review status of one section.
func (s *Server) handleSetSectionStatus(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	sectionID := chi.URLParam(r, "sectionID")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		jsonError(w, "invalid status", http.StatusBadRequest)
		return
	}

	section, err := s.reviews.SetSectionStatus(planID, sectionID, req.Status, req.Heading)
	if err != nil {
		if errors.Is(err, reviewstore.ErrEmptySectionID) || errors.Is(err, reviewstore.ErrInvalidStatus) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error("set section status failed", "plan", planID, "section", sectionID, "error", err)
		jsonError(w, "failed to update section status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, section)
}
