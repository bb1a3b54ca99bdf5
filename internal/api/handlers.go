package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/ats"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/pipeline"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Job handlers

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "title is required")
		return
	}

	job, err := s.manager.CreateJob(r.Context(), req)
	if err != nil {
		slog.Error("failed to create job", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create job")
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filters := models.JobFilters{
		Status: models.JobStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}
	filters.Limit, filters.Offset = parsePagination(r)

	jobs, err := s.manager.ListJobs(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list jobs", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := s.manager.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, ats.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job_not_found", "job not found")
			return
		}
		slog.Error("failed to get job", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	job, err := s.manager.UpdateJob(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ats.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job_not_found", "job not found")
			return
		}
		slog.Error("failed to update job", "error", err, "id", id)
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Candidate handlers

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.JobID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "job_id is required")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "email is required")
		return
	}

	c, err := s.manager.CreateCandidate(r.Context(), req)
	if err != nil {
		if errors.Is(err, ats.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job_not_found", "job not found")
			return
		}
		slog.Error("failed to create candidate", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create candidate")
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	filters := models.CandidateFilters{
		JobID:  r.URL.Query().Get("job_id"),
		Stage:  models.Stage(r.URL.Query().Get("stage")),
		Search: r.URL.Query().Get("search"),
	}
	filters.Limit, filters.Offset = parsePagination(r)

	candidates, err := s.manager.ListCandidates(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list candidates", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list candidates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := s.manager.GetCandidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, ats.ErrCandidateNotFound) {
			respondError(w, http.StatusNotFound, "candidate_not_found", "candidate not found")
			return
		}
		slog.Error("failed to get candidate", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get candidate")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleMoveStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.MoveStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Stage == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "stage is required")
		return
	}

	c, err := s.manager.MoveStage(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ats.ErrCandidateNotFound) {
			respondError(w, http.StatusNotFound, "candidate_not_found", "candidate not found")
			return
		}
		if errors.Is(err, ats.ErrInvalidTransition) {
			respondError(w, http.StatusConflict, "invalid_transition", err.Error())
			return
		}
		slog.Error("failed to move candidate", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to move candidate")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	timeline, err := s.manager.Timeline(r.Context(), id)
	if err != nil {
		if errors.Is(err, ats.ErrCandidateNotFound) {
			respondError(w, http.StatusNotFound, "candidate_not_found", "candidate not found")
			return
		}
		slog.Error("failed to load timeline", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load timeline")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timeline": timeline,
	})
}

func (s *Server) handleAuditCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.manager.AuditCandidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, ats.ErrCandidateNotFound) {
			respondError(w, http.StatusNotFound, "candidate_not_found", "candidate not found")
			return
		}
		slog.Error("failed to audit candidate", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to audit candidate")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleNextStages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := s.manager.GetCandidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, ats.ErrCandidateNotFound) {
			respondError(w, http.StatusNotFound, "candidate_not_found", "candidate not found")
			return
		}
		slog.Error("failed to get candidate", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get candidate")
		return
	}

	next := pipeline.NextStages(c.Stage)
	if next == nil {
		next = []models.Stage{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stage":       c.Stage,
		"next_stages": next,
	})
}
