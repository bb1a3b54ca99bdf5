package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/assessment"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/ats"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// Assessment handlers

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	a, err := s.manager.GetAssessmentByJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ats.ErrAssessmentNotFound) {
			respondError(w, http.StatusNotFound, "assessment_not_found", "no assessment saved for this job")
			return
		}
		slog.Error("failed to get assessment", "error", err, "job_id", jobID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get assessment")
		return
	}

	respondJSON(w, http.StatusOK, a)
}

// handleSaveAssessment commits a builder tree as the job's assessment. A
// structurally broken tree is rejected with the full report and nothing is
// written.
func (s *Server) handleSaveAssessment(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var a models.Assessment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := s.manager.SaveAssessment(r.Context(), jobID, &a)
	if err != nil {
		if errors.Is(err, ats.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job_not_found", "job not found")
			return
		}
		slog.Error("failed to save assessment", "error", err, "job_id", jobID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save assessment")
		return
	}

	if !res.IsValid {
		respondJSON(w, http.StatusUnprocessableEntity, res)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// handleValidateAssessment is the dry-run definition check for builder UIs:
// same report as a save, nothing persisted either way.
func (s *Server) handleValidateAssessment(w http.ResponseWriter, r *http.Request) {
	var a models.Assessment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	respondJSON(w, http.StatusOK, assessment.ValidateDefinition(&a))
}

// Builder draft handlers

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var a models.Assessment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.manager.SaveBuilderDraft(r.Context(), jobID, &a); err != nil {
		switch {
		case errors.Is(err, ats.ErrJobNotFound):
			respondError(w, http.StatusNotFound, "job_not_found", "job not found")
		case errors.Is(err, ats.ErrDraftsUnavailable):
			respondError(w, http.StatusServiceUnavailable, "drafts_unavailable", "draft autosave is not available")
		default:
			slog.Error("failed to save draft", "error", err, "job_id", jobID)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to save draft")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	draft, err := s.manager.GetBuilderDraft(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ats.ErrDraftsUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "drafts_unavailable", "draft autosave is not available")
			return
		}
		slog.Error("failed to load draft", "error", err, "job_id", jobID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load draft")
		return
	}

	if draft == nil {
		respondError(w, http.StatusNotFound, "draft_not_found", "no draft saved for this job")
		return
	}

	respondJSON(w, http.StatusOK, draft)
}

// Attempt handlers

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var req models.StartAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.CandidateID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "candidate_id is required")
		return
	}

	at, err := s.manager.StartAttempt(r.Context(), jobID, req.CandidateID)
	if err != nil {
		switch {
		case errors.Is(err, ats.ErrAssessmentNotFound):
			respondError(w, http.StatusNotFound, "assessment_not_found", "no assessment saved for this job")
		case errors.Is(err, ats.ErrCandidateNotFound):
			respondError(w, http.StatusNotFound, "candidate_not_found", "candidate not found")
		case errors.Is(err, ats.ErrRetakeNotAllowed):
			respondError(w, http.StatusConflict, "retake_not_allowed", "this assessment does not allow retakes")
		default:
			slog.Error("failed to start attempt", "error", err, "job_id", jobID)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to start attempt")
		}
		return
	}

	respondJSON(w, http.StatusCreated, at)
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	at, err := s.manager.GetAttempt(r.Context(), id)
	if err != nil {
		if errors.Is(err, ats.ErrAttemptNotFound) {
			respondError(w, http.StatusNotFound, "attempt_not_found", "attempt not found")
			return
		}
		slog.Error("failed to get attempt", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get attempt")
		return
	}

	respondJSON(w, http.StatusOK, at)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "id")

	attempts, err := s.manager.ListAttemptsByCandidate(r.Context(), candidateID)
	if err != nil {
		if errors.Is(err, ats.ErrCandidateNotFound) {
			respondError(w, http.StatusNotFound, "candidate_not_found", "candidate not found")
			return
		}
		slog.Error("failed to list attempts", "error", err, "candidate", candidateID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list attempts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

func (s *Server) handleSaveResponses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SaveResponsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	at, err := s.manager.SaveResponses(r.Context(), id, req.Responses)
	if err != nil {
		switch {
		case errors.Is(err, ats.ErrAttemptNotFound):
			respondError(w, http.StatusNotFound, "attempt_not_found", "attempt not found")
		case errors.Is(err, ats.ErrAttemptClosed):
			respondError(w, http.StatusConflict, "attempt_closed", err.Error())
		default:
			slog.Error("failed to save responses", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to save responses")
		}
		return
	}

	respondJSON(w, http.StatusOK, at)
}

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.manager.SubmitAttempt(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ats.ErrAttemptNotFound):
			respondError(w, http.StatusNotFound, "attempt_not_found", "attempt not found")
		case errors.Is(err, ats.ErrAttemptClosed):
			respondError(w, http.StatusConflict, "attempt_closed", err.Error())
		default:
			slog.Error("failed to submit attempt", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit attempt")
		}
		return
	}

	if !result.Accepted {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
