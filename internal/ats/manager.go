// Package ats coordinates the applicant-tracking workflows: job postings,
// candidate pipelines and assessments. It owns the mutable state; the rule
// engines in internal/pipeline and internal/assessment are called with
// snapshots and their decisions are applied here as explicit updates.
package ats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/assessment"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/drafts"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/pipeline"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/storage"
)

// Common errors
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrInvalidTransition  = errors.New("invalid stage transition")
	ErrAttemptClosed      = errors.New("attempt is closed")
	ErrRetakeNotAllowed   = errors.New("retake not allowed")
	ErrDraftsUnavailable  = errors.New("draft store unavailable")
)

// Notifier receives stage-change events for fan-out to live boards
type Notifier interface {
	PublishStageChange(event models.StageChangeEvent)
}

// Manager defines the applicant-tracking operations behind the API
type Manager interface {
	// Jobs
	CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	UpdateJob(ctx context.Context, id string, req models.UpdateJobRequest) (*models.Job, error)
	ListJobs(ctx context.Context, filters models.JobFilters) ([]*models.Job, error)

	// Candidates
	CreateCandidate(ctx context.Context, req models.CreateCandidateRequest) (*models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error)
	MoveStage(ctx context.Context, id string, req models.MoveStageRequest) (*models.Candidate, error)
	Timeline(ctx context.Context, id string) ([]models.TimelineEntry, error)
	AuditCandidate(ctx context.Context, id string) (models.ValidationResult, error)

	// Assessments
	SaveAssessment(ctx context.Context, jobID string, a *models.Assessment) (models.ValidationResult, error)
	GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error)
	SaveBuilderDraft(ctx context.Context, jobID string, a *models.Assessment) error
	GetBuilderDraft(ctx context.Context, jobID string) (*models.Assessment, error)

	// Attempts
	StartAttempt(ctx context.Context, jobID, candidateID string) (*models.AssessmentAttempt, error)
	GetAttempt(ctx context.Context, id string) (*models.AssessmentAttempt, error)
	ListAttemptsByCandidate(ctx context.Context, candidateID string) ([]*models.AssessmentAttempt, error)
	SaveResponses(ctx context.Context, attemptID string, values map[string]any) (*models.AssessmentAttempt, error)
	SubmitAttempt(ctx context.Context, attemptID string) (*models.SubmitResult, error)
	ExpireOverdueAttempts(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
}

type manager struct {
	repo     storage.Repository
	drafts   *drafts.Store
	notifier Notifier
}

// NewManager creates the tracker manager. The drafts store and notifier are
// optional: a nil drafts store disables autosave snapshots, a nil notifier
// disables live board events.
func NewManager(repo storage.Repository, draftStore *drafts.Store, notifier Notifier) Manager {
	return &manager{repo: repo, drafts: draftStore, notifier: notifier}
}

// Ping checks backing-store connectivity
func (m *manager) Ping(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if m.drafts != nil {
		if err := m.drafts.HealthCheck(ctx); err != nil {
			return fmt.Errorf("draft store ping failed: %w", err)
		}
	}
	return nil
}

// --- Jobs ---

func (m *manager) CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}

	now := time.Now()
	job := &models.Job{
		ID:          uuid.New().String()[:12],
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Status:      models.JobActive,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	slog.Info("job created", "id", job.ID, "slug", job.Slug)
	return job, nil
}

func (m *manager) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := m.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (m *manager) UpdateJob(ctx context.Context, id string, req models.UpdateJobRequest) (*models.Job, error) {
	job, err := m.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Status != nil {
		status := models.JobStatus(*req.Status)
		if status != models.JobActive && status != models.JobArchived {
			return nil, fmt.Errorf("unknown job status %q", *req.Status)
		}
		job.Status = status
	}
	if req.Tags != nil {
		job.Tags = req.Tags
	}
	job.UpdatedAt = time.Now()

	if err := m.repo.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return job, nil
}

func (m *manager) ListJobs(ctx context.Context, filters models.JobFilters) ([]*models.Job, error) {
	return m.repo.ListJobs(ctx, filters)
}

// --- Candidates ---

// CreateCandidate registers a candidate at the start of the pipeline: stage
// applied, with the matching initial timeline entry.
func (m *manager) CreateCandidate(ctx context.Context, req models.CreateCandidateRequest) (*models.Candidate, error) {
	if _, err := m.GetJob(ctx, req.JobID); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &models.Candidate{
		ID:    uuid.New().String()[:12],
		JobID: req.JobID,
		Name:  req.Name,
		Email: req.Email,
		Stage: models.StageApplied,
		Timeline: []models.TimelineEntry{
			{Stage: models.StageApplied, ChangedAt: now, ChangedBy: "system", Notes: "application received"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.repo.CreateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	slog.Info("candidate created", "id", c.ID, "job", c.JobID)
	return c, nil
}

func (m *manager) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := m.repo.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCandidateNotFound
	}
	return c, nil
}

func (m *manager) ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error) {
	return m.repo.ListCandidates(ctx, filters)
}

// MoveStage applies a stage change after the transition engine approves it.
// An illegal move is rejected before anything is written; the candidate is
// never silently overwritten with an invalid stage.
func (m *manager) MoveStage(ctx context.Context, id string, req models.MoveStageRequest) (*models.Candidate, error) {
	c, err := m.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	to, err := pipeline.ParseStage(req.Stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	if !pipeline.IsValidTransition(c.Stage, to) {
		return nil, fmt.Errorf("%w: cannot move candidate from %s to %s", ErrInvalidTransition, c.Stage, to)
	}

	from := c.Stage
	now := time.Now()

	c.Stage = to
	c.Timeline = append(c.Timeline, models.TimelineEntry{
		Stage:     to,
		ChangedAt: now,
		ChangedBy: req.ChangedBy,
		Notes:     req.Notes,
	})
	c.UpdatedAt = now

	if err := m.repo.UpdateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to persist stage change: %w", err)
	}

	slog.Info("candidate moved",
		"id", c.ID,
		"from", from,
		"to", to,
		"by", req.ChangedBy,
	)

	if m.notifier != nil {
		m.notifier.PublishStageChange(models.StageChangeEvent{
			CandidateID: c.ID,
			JobID:       c.JobID,
			From:        from,
			To:          to,
			ChangedBy:   req.ChangedBy,
			ChangedAt:   now,
		})
	}

	return c, nil
}

// Timeline returns the candidate's history in canonical display order
func (m *manager) Timeline(ctx context.Context, id string) ([]models.TimelineEntry, error) {
	c, err := m.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	return pipeline.SortTimeline(c.Timeline), nil
}

// AuditCandidate runs the read-only consistency audit over a candidate
func (m *manager) AuditCandidate(ctx context.Context, id string) (models.ValidationResult, error) {
	c, err := m.GetCandidate(ctx, id)
	if err != nil {
		return models.ValidationResult{}, err
	}
	return pipeline.ValidateCandidateState(c), nil
}

// --- Assessments ---

// SaveAssessment validates the definition and, only if it is structurally
// sound, persists it as the job's new snapshot. A failing definition is
// reported back in full, nothing is written, and no error is raised.
func (m *manager) SaveAssessment(ctx context.Context, jobID string, a *models.Assessment) (models.ValidationResult, error) {
	if _, err := m.GetJob(ctx, jobID); err != nil {
		return models.ValidationResult{}, err
	}

	a.JobID = jobID
	res := assessment.ValidateDefinition(a)
	if !res.IsValid {
		return res, nil
	}

	a.UpdatedAt = time.Now()
	if err := m.repo.SaveAssessment(ctx, a); err != nil {
		return models.ValidationResult{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	// The committed snapshot supersedes any autosaved draft.
	if m.drafts != nil {
		if err := m.drafts.DeleteBuilderDraft(ctx, jobID); err != nil {
			slog.Warn("failed to clear builder draft after save", "job_id", jobID, "error", err)
		}
	}

	slog.Info("assessment saved", "job_id", jobID, "sections", len(a.Sections))
	return res, nil
}

func (m *manager) GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	a, err := m.repo.GetAssessmentByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAssessmentNotFound
	}
	return a, nil
}

// SaveBuilderDraft autosaves an in-progress builder tree. Drafts skip the
// definition gate: half-built trees are exactly what this is for.
func (m *manager) SaveBuilderDraft(ctx context.Context, jobID string, a *models.Assessment) error {
	if m.drafts == nil {
		return ErrDraftsUnavailable
	}
	if _, err := m.GetJob(ctx, jobID); err != nil {
		return err
	}
	a.JobID = jobID
	return m.drafts.SaveBuilderDraft(ctx, jobID, a)
}

// GetBuilderDraft returns the autosaved builder tree, nil if none exists
func (m *manager) GetBuilderDraft(ctx context.Context, jobID string) (*models.Assessment, error) {
	if m.drafts == nil {
		return nil, ErrDraftsUnavailable
	}
	return m.drafts.GetBuilderDraft(ctx, jobID)
}

// --- Attempts ---

// StartAttempt opens an assessment-taking session against the job's saved
// snapshot. The deadline comes from the assessment's time limit, if any.
func (m *manager) StartAttempt(ctx context.Context, jobID, candidateID string) (*models.AssessmentAttempt, error) {
	a, err := m.GetAssessmentByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if _, err := m.GetCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	if !a.Settings.AllowRetake {
		previous, err := m.repo.ListAttemptsByCandidate(ctx, candidateID)
		if err != nil {
			return nil, fmt.Errorf("failed to check previous attempts: %w", err)
		}
		for _, at := range previous {
			if at.JobID == jobID && at.Status == models.AttemptSubmitted {
				return nil, ErrRetakeNotAllowed
			}
		}
	}

	now := time.Now()
	attempt := &models.AssessmentAttempt{
		ID:          uuid.New().String()[:12],
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      models.AttemptInProgress,
		Responses:   models.ResponseSet{},
		StartedAt:   now,
	}

	if limit := a.Settings.TimeLimitMinutes; limit > 0 {
		deadline := now.Add(time.Duration(limit) * time.Minute)
		attempt.ExpiresAt = &deadline
	}

	if err := m.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	slog.Info("attempt started", "id", attempt.ID, "job", jobID, "candidate", candidateID)
	return attempt, nil
}

func (m *manager) GetAttempt(ctx context.Context, id string) (*models.AssessmentAttempt, error) {
	at, err := m.repo.GetAttempt(ctx, id)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, ErrAttemptNotFound
	}
	return at, nil
}

func (m *manager) ListAttemptsByCandidate(ctx context.Context, candidateID string) ([]*models.AssessmentAttempt, error) {
	if _, err := m.GetCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return m.repo.ListAttemptsByCandidate(ctx, candidateID)
}

// SaveResponses merges a batch of answers into an open attempt. Each answer
// is timestamped here: the engines treat time as caller-supplied data.
func (m *manager) SaveResponses(ctx context.Context, attemptID string, values map[string]any) (*models.AssessmentAttempt, error) {
	at, err := m.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if err := m.ensureOpen(ctx, at); err != nil {
		return nil, err
	}

	now := time.Now()
	for questionID, value := range values {
		at.Responses[questionID] = models.QuestionResponse{Value: value, Timestamp: now}
	}

	if err := m.repo.UpdateAttempt(ctx, at); err != nil {
		return nil, fmt.Errorf("failed to save responses: %w", err)
	}

	// Best effort: keep the fast-recovery snapshot fresh too.
	if m.drafts != nil {
		if err := m.drafts.SaveResponses(ctx, at.ID, at.Responses); err != nil {
			slog.Warn("failed to snapshot responses", "attempt", at.ID, "error", err)
		}
	}

	return at, nil
}

// SubmitAttempt validates every currently visible question against the
// attempt's responses. Any failure blocks the submission and is reported per
// question; hidden questions are skipped entirely, whatever their answers.
func (m *manager) SubmitAttempt(ctx context.Context, attemptID string) (*models.SubmitResult, error) {
	at, err := m.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if err := m.ensureOpen(ctx, at); err != nil {
		return nil, err
	}

	a, err := m.GetAssessmentByJob(ctx, at.JobID)
	if err != nil {
		return nil, err
	}

	questionErrors := make(map[string][]string)
	for _, section := range a.Sections {
		for _, q := range assessment.VisibleQuestions(section, at.Responses) {
			var value any
			if resp, ok := at.Responses[q.ID]; ok {
				value = resp.Value
			}
			if res := assessment.ValidateResponse(q, value); !res.IsValid {
				questionErrors[q.ID] = res.Errors
			}
		}
	}

	if len(questionErrors) > 0 {
		return &models.SubmitResult{Accepted: false, QuestionErrors: questionErrors}, nil
	}

	now := time.Now()
	at.Status = models.AttemptSubmitted
	at.SubmittedAt = &now

	if err := m.repo.UpdateAttempt(ctx, at); err != nil {
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	if m.drafts != nil {
		if err := m.drafts.DeleteResponses(ctx, at.ID); err != nil {
			slog.Warn("failed to clear response snapshot", "attempt", at.ID, "error", err)
		}
	}

	slog.Info("attempt submitted", "id", at.ID, "candidate", at.CandidateID)
	return &models.SubmitResult{Accepted: true}, nil
}

// ExpireOverdueAttempts closes every in-progress attempt past its deadline.
// Returns the number of attempts expired.
func (m *manager) ExpireOverdueAttempts(ctx context.Context) (int, error) {
	overdue, err := m.repo.GetOverdueAttempts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find overdue attempts: %w", err)
	}

	expired := 0
	for _, at := range overdue {
		at.Status = models.AttemptExpired
		if err := m.repo.UpdateAttempt(ctx, at); err != nil {
			slog.Error("failed to expire attempt", "id", at.ID, "error", err)
			continue
		}
		expired++
	}

	return expired, nil
}

// ensureOpen rejects writes to closed attempts, expiring overdue ones on the
// way through.
func (m *manager) ensureOpen(ctx context.Context, at *models.AssessmentAttempt) error {
	if at.Status.IsClosed() {
		return fmt.Errorf("%w: attempt is %s", ErrAttemptClosed, at.Status)
	}

	if at.IsOverdue() {
		at.Status = models.AttemptExpired
		if err := m.repo.UpdateAttempt(ctx, at); err != nil {
			slog.Error("failed to expire overdue attempt", "id", at.ID, "error", err)
		}
		return fmt.Errorf("%w: time limit elapsed", ErrAttemptClosed)
	}

	return nil
}

// slugify lowercases a title into a URL slug
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
