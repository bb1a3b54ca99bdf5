// Package client is a Go SDK for the talentflow HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a talentflow server
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new talentflow client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Job represents a job posting
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimelineEntry records one stage change
type TimelineEntry struct {
	Stage     string    `json:"stage"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy string    `json:"changed_by,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Candidate represents an applicant in a job pipeline
type Candidate struct {
	ID        string          `json:"id"`
	JobID     string          `json:"job_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Stage     string          `json:"stage"`
	Timeline  []TimelineEntry `json:"timeline"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ValidationResult reports the outcome of a rule check
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Attempt represents an assessment-taking session
type Attempt struct {
	ID          string     `json:"id"`
	JobID       string     `json:"job_id"`
	CandidateID string     `json:"candidate_id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// SubmitResult reports an attempt submission outcome
type SubmitResult struct {
	Accepted       bool                `json:"accepted"`
	QuestionErrors map[string][]string `json:"question_errors,omitempty"`
}

// CreateJobRequest creates a job posting
type CreateJobRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// CreateCandidateRequest registers a candidate
type CreateCandidateRequest struct {
	JobID string `json:"job_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MoveStageRequest moves a candidate to another stage
type MoveStageRequest struct {
	Stage     string `json:"stage"`
	ChangedBy string `json:"changed_by"`
	Notes     string `json:"notes,omitempty"`
}

// ListCandidatesOptions filters candidate listings
type ListCandidatesOptions struct {
	JobID  string
	Stage  string
	Search string
	Limit  int
	Offset int
}

// CreateJob creates a job posting
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	var job Job
	if err := c.call(ctx, "POST", "/api/v1/jobs", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob retrieves a job by ID
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	if err := c.call(ctx, "GET", "/api/v1/jobs/"+id, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateCandidate registers a candidate for a job
func (c *Client) CreateCandidate(ctx context.Context, req CreateCandidateRequest) (*Candidate, error) {
	var cand Candidate
	if err := c.call(ctx, "POST", "/api/v1/candidates", req, &cand); err != nil {
		return nil, err
	}
	return &cand, nil
}

// GetCandidate retrieves a candidate by ID
func (c *Client) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	var cand Candidate
	if err := c.call(ctx, "GET", "/api/v1/candidates/"+id, nil, &cand); err != nil {
		return nil, err
	}
	return &cand, nil
}

// ListCandidates retrieves candidates matching the options
func (c *Client) ListCandidates(ctx context.Context, opts ListCandidatesOptions) ([]*Candidate, error) {
	path := "/api/v1/candidates?"
	if opts.JobID != "" {
		path += fmt.Sprintf("job_id=%s&", opts.JobID)
	}
	if opts.Stage != "" {
		path += fmt.Sprintf("stage=%s&", opts.Stage)
	}
	if opts.Search != "" {
		path += fmt.Sprintf("search=%s&", opts.Search)
	}
	if opts.Limit > 0 {
		path += fmt.Sprintf("limit=%d&", opts.Limit)
	}
	if opts.Offset > 0 {
		path += fmt.Sprintf("offset=%d&", opts.Offset)
	}

	var data struct {
		Candidates []*Candidate `json:"candidates"`
		Count      int          `json:"count"`
	}
	if err := c.call(ctx, "GET", path, nil, &data); err != nil {
		return nil, err
	}
	return data.Candidates, nil
}

// MoveStage moves a candidate to another pipeline stage
func (c *Client) MoveStage(ctx context.Context, id string, req MoveStageRequest) (*Candidate, error) {
	var cand Candidate
	if err := c.call(ctx, "POST", "/api/v1/candidates/"+id+"/move", req, &cand); err != nil {
		return nil, err
	}
	return &cand, nil
}

// Timeline retrieves a candidate's stage history in display order
func (c *Client) Timeline(ctx context.Context, id string) ([]TimelineEntry, error) {
	var data struct {
		Timeline []TimelineEntry `json:"timeline"`
	}
	if err := c.call(ctx, "GET", "/api/v1/candidates/"+id+"/timeline", nil, &data); err != nil {
		return nil, err
	}
	return data.Timeline, nil
}

// AuditCandidate runs the consistency audit over a candidate
func (c *Client) AuditCandidate(ctx context.Context, id string) (*ValidationResult, error) {
	var res ValidationResult
	if err := c.call(ctx, "GET", "/api/v1/candidates/"+id+"/audit", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// NextStages returns the stages a candidate may legally move to
func (c *Client) NextStages(ctx context.Context, id string) ([]string, error) {
	var data struct {
		Stage      string   `json:"stage"`
		NextStages []string `json:"next_stages"`
	}
	if err := c.call(ctx, "GET", "/api/v1/candidates/"+id+"/next-stages", nil, &data); err != nil {
		return nil, err
	}
	return data.NextStages, nil
}

// StartAttempt opens an assessment-taking session for a candidate
func (c *Client) StartAttempt(ctx context.Context, jobID, candidateID string) (*Attempt, error) {
	req := map[string]string{"candidate_id": candidateID}
	var at Attempt
	if err := c.call(ctx, "POST", "/api/v1/jobs/"+jobID+"/assessment/attempts", req, &at); err != nil {
		return nil, err
	}
	return &at, nil
}

// SaveResponses merges a batch of answers into an open attempt
func (c *Client) SaveResponses(ctx context.Context, attemptID string, responses map[string]any) (*Attempt, error) {
	req := map[string]any{"responses": responses}
	var at Attempt
	if err := c.call(ctx, "PUT", "/api/v1/attempts/"+attemptID+"/responses", req, &at); err != nil {
		return nil, err
	}
	return &at, nil
}

// SubmitAttempt submits an attempt for final validation
func (c *Client) SubmitAttempt(ctx context.Context, attemptID string) (*SubmitResult, error) {
	var res SubmitResult
	if err := c.call(ctx, "POST", "/api/v1/attempts/"+attemptID+"/submit", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// call performs a request and unwraps the response envelope into out.
// A rejected submission or validation report still arrives through Data, so
// 4xx statuses with a decodable envelope are not treated as transport errors.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}

	if envelope.Error != nil {
		return fmt.Errorf("API error: %s - %s", envelope.Error.Code, envelope.Error.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
