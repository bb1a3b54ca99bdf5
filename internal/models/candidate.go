package models

import (
	"time"
)

// Stage represents a candidate's position in the hiring pipeline
type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// IsTerminal returns true if the stage has no outgoing transitions
func (s Stage) IsTerminal() bool {
	return s == StageHired || s == StageRejected
}

// TimelineEntry records a single stage change for a candidate
type TimelineEntry struct {
	Stage     Stage     `json:"stage"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy string    `json:"changed_by"`
	Notes     string    `json:"notes,omitempty"`
}

// Candidate represents an applicant moving through a job's pipeline
type Candidate struct {
	ID        string          `json:"id"`
	JobID     string          `json:"job_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Stage     Stage           `json:"stage"`
	Timeline  []TimelineEntry `json:"timeline"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CandidateFilters defines filters for listing candidates
type CandidateFilters struct {
	JobID  string
	Stage  Stage
	Search string
	Limit  int
	Offset int
}

// CreateCandidateRequest represents a request to register a new candidate
type CreateCandidateRequest struct {
	JobID string `json:"job_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MoveStageRequest represents a request to move a candidate to another stage
type MoveStageRequest struct {
	Stage     string `json:"stage"`
	ChangedBy string `json:"changed_by"`
	Notes     string `json:"notes,omitempty"`
}

// StageChangeEvent is broadcast to pipeline boards when a candidate moves
type StageChangeEvent struct {
	CandidateID string    `json:"candidate_id"`
	JobID       string    `json:"job_id"`
	From        Stage     `json:"from"`
	To          Stage     `json:"to"`
	ChangedBy   string    `json:"changed_by,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}

// ValidationResult is the shared report shape for rule checks.
// Rule violations are reported here, never raised as errors.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Valid returns a passing result with an empty (non-nil) error list
func Valid() ValidationResult {
	return ValidationResult{IsValid: true, Errors: []string{}}
}

// Invalid returns a failing result carrying the given messages
func Invalid(errors ...string) ValidationResult {
	return ValidationResult{IsValid: false, Errors: errors}
}
