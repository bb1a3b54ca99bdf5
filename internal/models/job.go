package models

import "time"

// JobStatus represents the publication state of a job posting
type JobStatus string

const (
	JobActive   JobStatus = "active"
	JobArchived JobStatus = "archived"
)

// Job represents a job posting with its own candidate pipeline
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Status      JobStatus `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobFilters defines filters for listing jobs
type JobFilters struct {
	Status JobStatus
	Search string
	Limit  int
	Offset int
}

// CreateJobRequest represents a request to create a job posting
type CreateJobRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateJobRequest represents a partial update of a job posting
type UpdateJobRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
