package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Jobs ---

// CreateJob inserts a new job posting
func (r *PostgresRepository) CreateJob(ctx context.Context, job *models.Job) error {
	tagsJSON, err := json.Marshal(job.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO jobs (id, title, slug, description, status, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Slug,
		nullString(job.Description),
		string(job.Status),
		tagsJSON,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJob retrieves a job by ID
func (r *PostgresRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	query := `
		SELECT id, title, slug, description, status, tags, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not found
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// UpdateJob updates an existing job posting
func (r *PostgresRepository) UpdateJob(ctx context.Context, job *models.Job) error {
	tagsJSON, err := json.Marshal(job.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE jobs
		SET title = $2, description = $3, status = $4, tags = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		nullString(job.Description),
		string(job.Status),
		tagsJSON,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", job.ID)
	}

	return nil
}

// ListJobs returns jobs matching filters, newest first
func (r *PostgresRepository) ListJobs(ctx context.Context, filters models.JobFilters) ([]*models.Job, error) {
	query := `
		SELECT id, title, slug, description, status, tags, created_at, updated_at
		FROM jobs
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	if filters.Search != "" {
		query += fmt.Sprintf(" AND title ILIKE $%d", argNum)
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	var statusStr string
	var description sql.NullString
	var tagsJSON []byte

	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Slug,
		&description,
		&statusStr,
		&tagsJSON,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = models.JobStatus(statusStr)
	job.Description = description.String

	if tagsJSON != nil {
		if err := json.Unmarshal(tagsJSON, &job.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	return &job, nil
}

// --- Candidates ---

// CreateCandidate inserts a candidate with their initial timeline
func (r *PostgresRepository) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	timelineJSON, err := json.Marshal(c.Timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}

	query := `
		INSERT INTO candidates (id, job_id, name, email, stage, timeline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.JobID,
		c.Name,
		c.Email,
		string(c.Stage),
		timelineJSON,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil
}

// GetCandidate retrieves a candidate by ID
func (r *PostgresRepository) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	query := `
		SELECT id, job_id, name, email, stage, timeline, created_at, updated_at
		FROM candidates
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	return c, nil
}

// UpdateCandidate persists a candidate's stage and timeline
func (r *PostgresRepository) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	timelineJSON, err := json.Marshal(c.Timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}

	query := `
		UPDATE candidates
		SET name = $2, email = $3, stage = $4, timeline = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		string(c.Stage),
		timelineJSON,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate not found: %s", c.ID)
	}

	return nil
}

// ListCandidates returns candidates matching filters, newest first
func (r *PostgresRepository) ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error) {
	query := `
		SELECT id, job_id, name, email, stage, timeline, created_at, updated_at
		FROM candidates
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.JobID != "" {
		query += fmt.Sprintf(" AND job_id = $%d", argNum)
		args = append(args, filters.JobID)
		argNum++
	}

	if filters.Stage != "" {
		query += fmt.Sprintf(" AND stage = $%d", argNum)
		args = append(args, string(filters.Stage))
		argNum++
	}

	if filters.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

func scanCandidate(row pgx.Row) (*models.Candidate, error) {
	var c models.Candidate
	var stageStr string
	var timelineJSON []byte

	err := row.Scan(
		&c.ID,
		&c.JobID,
		&c.Name,
		&c.Email,
		&stageStr,
		&timelineJSON,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Stage = models.Stage(stageStr)

	if timelineJSON != nil {
		if err := json.Unmarshal(timelineJSON, &c.Timeline); err != nil {
			return nil, fmt.Errorf("failed to unmarshal timeline: %w", err)
		}
	}

	return &c, nil
}

// --- Assessments ---

// SaveAssessment upserts the assessment snapshot for a job. A later save for
// the same job replaces the earlier one; takers only ever see the latest.
func (r *PostgresRepository) SaveAssessment(ctx context.Context, a *models.Assessment) error {
	sectionsJSON, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	settingsJSON, err := json.Marshal(a.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		INSERT INTO assessments (job_id, title, description, sections, settings, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO UPDATE
		SET title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    sections = EXCLUDED.sections,
		    settings = EXCLUDED.settings,
		    updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		a.JobID,
		a.Title,
		nullString(a.Description),
		sectionsJSON,
		settingsJSON,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// GetAssessmentByJob retrieves the saved assessment snapshot for a job
func (r *PostgresRepository) GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	query := `
		SELECT job_id, title, description, sections, settings, updated_at
		FROM assessments
		WHERE job_id = $1
	`

	var a models.Assessment
	var description sql.NullString
	var sectionsJSON, settingsJSON []byte

	err := r.pool.QueryRow(ctx, query, jobID).Scan(
		&a.JobID,
		&a.Title,
		&description,
		&sectionsJSON,
		&settingsJSON,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	a.Description = description.String

	if err := json.Unmarshal(sectionsJSON, &a.Sections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
	}
	if err := json.Unmarshal(settingsJSON, &a.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &a, nil
}

// --- Attempts ---

// CreateAttempt inserts a new assessment-taking session
func (r *PostgresRepository) CreateAttempt(ctx context.Context, at *models.AssessmentAttempt) error {
	responsesJSON, err := json.Marshal(at.Responses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}

	query := `
		INSERT INTO assessment_attempts (id, job_id, candidate_id, status, responses, started_at, expires_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		at.ID,
		at.JobID,
		at.CandidateID,
		string(at.Status),
		responsesJSON,
		at.StartedAt,
		nullTime(at.ExpiresAt),
		nullTime(at.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// GetAttempt retrieves an attempt by ID
func (r *PostgresRepository) GetAttempt(ctx context.Context, id string) (*models.AssessmentAttempt, error) {
	query := `
		SELECT id, job_id, candidate_id, status, responses, started_at, expires_at, submitted_at
		FROM assessment_attempts
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	at, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	return at, nil
}

// UpdateAttempt persists an attempt's responses and status
func (r *PostgresRepository) UpdateAttempt(ctx context.Context, at *models.AssessmentAttempt) error {
	responsesJSON, err := json.Marshal(at.Responses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}

	query := `
		UPDATE assessment_attempts
		SET status = $2, responses = $3, expires_at = $4, submitted_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		at.ID,
		string(at.Status),
		responsesJSON,
		nullTime(at.ExpiresAt),
		nullTime(at.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("attempt not found: %s", at.ID)
	}

	return nil
}

// ListAttemptsByCandidate returns all attempts of one candidate, newest first
func (r *PostgresRepository) ListAttemptsByCandidate(ctx context.Context, candidateID string) ([]*models.AssessmentAttempt, error) {
	query := `
		SELECT id, job_id, candidate_id, status, responses, started_at, expires_at, submitted_at
		FROM assessment_attempts
		WHERE candidate_id = $1
		ORDER BY started_at DESC
	`

	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.AssessmentAttempt
	for rows.Next() {
		at, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, at)
	}

	return attempts, rows.Err()
}

// GetOverdueAttempts returns in-progress attempts whose deadline has passed
func (r *PostgresRepository) GetOverdueAttempts(ctx context.Context) ([]*models.AssessmentAttempt, error) {
	query := `
		SELECT id, job_id, candidate_id, status, responses, started_at, expires_at, submitted_at
		FROM assessment_attempts
		WHERE status = 'in_progress'
		  AND expires_at IS NOT NULL
		  AND expires_at < NOW()
		ORDER BY expires_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.AssessmentAttempt
	for rows.Next() {
		at, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, at)
	}

	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (*models.AssessmentAttempt, error) {
	var at models.AssessmentAttempt
	var statusStr string
	var responsesJSON []byte
	var expiresAt, submittedAt sql.NullTime

	err := row.Scan(
		&at.ID,
		&at.JobID,
		&at.CandidateID,
		&statusStr,
		&responsesJSON,
		&at.StartedAt,
		&expiresAt,
		&submittedAt,
	)
	if err != nil {
		return nil, err
	}

	at.Status = models.AttemptStatus(statusStr)

	if expiresAt.Valid {
		at.ExpiresAt = &expiresAt.Time
	}
	if submittedAt.Valid {
		at.SubmittedAt = &submittedAt.Time
	}

	if responsesJSON != nil {
		if err := json.Unmarshal(responsesJSON, &at.Responses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
		}
	}
	if at.Responses == nil {
		at.Responses = models.ResponseSet{}
	}

	return &at, nil
}

// --- API clients ---

// GetClientByAPIKey retrieves an API client by its key
func (r *PostgresRepository) GetClientByAPIKey(ctx context.Context, apiKey string) (*models.APIClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = $1
	`

	var client models.APIClient
	var lastUsedAt sql.NullTime
	var permissionsJSON, metadataJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.APIKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &client.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &client, nil
}

// UpdateClientLastUsed updates the last_used_at timestamp for a client
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`

	if _, err := r.pool.Exec(ctx, query, apiKey); err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}

	return nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
