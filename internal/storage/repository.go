package storage

import (
	"context"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// Repository defines the persistence interface for the tracker
type Repository interface {
	// Jobs
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) error
	ListJobs(ctx context.Context, filters models.JobFilters) ([]*models.Job, error)

	// Candidates
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	UpdateCandidate(ctx context.Context, c *models.Candidate) error
	ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error)

	// Assessments (one saved snapshot per job; saving supersedes)
	SaveAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error)

	// Assessment attempts
	CreateAttempt(ctx context.Context, at *models.AssessmentAttempt) error
	GetAttempt(ctx context.Context, id string) (*models.AssessmentAttempt, error)
	UpdateAttempt(ctx context.Context, at *models.AssessmentAttempt) error
	ListAttemptsByCandidate(ctx context.Context, candidateID string) ([]*models.AssessmentAttempt, error)
	GetOverdueAttempts(ctx context.Context) ([]*models.AssessmentAttempt, error)

	// API clients
	GetClientByAPIKey(ctx context.Context, apiKey string) (*models.APIClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
