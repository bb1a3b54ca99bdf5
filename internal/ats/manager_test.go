package ats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/storage"
)

// memRepo is an in-memory Repository for manager tests
type memRepo struct {
	jobs        map[string]*models.Job
	candidates  map[string]*models.Candidate
	assessments map[string]*models.Assessment
	attempts    map[string]*models.AssessmentAttempt
}

func newMemRepo() *memRepo {
	return &memRepo{
		jobs:        make(map[string]*models.Job),
		candidates:  make(map[string]*models.Candidate),
		assessments: make(map[string]*models.Assessment),
		attempts:    make(map[string]*models.AssessmentAttempt),
	}
}

func (r *memRepo) CreateJob(ctx context.Context, job *models.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *memRepo) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return r.jobs[id], nil
}

func (r *memRepo) UpdateJob(ctx context.Context, job *models.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *memRepo) ListJobs(ctx context.Context, filters models.JobFilters) ([]*models.Job, error) {
	var out []*models.Job
	for _, j := range r.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (r *memRepo) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	r.candidates[c.ID] = c
	return nil
}

func (r *memRepo) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	return r.candidates[id], nil
}

func (r *memRepo) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	r.candidates[c.ID] = c
	return nil
}

func (r *memRepo) ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error) {
	var out []*models.Candidate
	for _, c := range r.candidates {
		out = append(out, c)
	}
	return out, nil
}

func (r *memRepo) SaveAssessment(ctx context.Context, a *models.Assessment) error {
	r.assessments[a.JobID] = a
	return nil
}

func (r *memRepo) GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	return r.assessments[jobID], nil
}

func (r *memRepo) CreateAttempt(ctx context.Context, at *models.AssessmentAttempt) error {
	r.attempts[at.ID] = at
	return nil
}

func (r *memRepo) GetAttempt(ctx context.Context, id string) (*models.AssessmentAttempt, error) {
	return r.attempts[id], nil
}

func (r *memRepo) UpdateAttempt(ctx context.Context, at *models.AssessmentAttempt) error {
	r.attempts[at.ID] = at
	return nil
}

func (r *memRepo) ListAttemptsByCandidate(ctx context.Context, candidateID string) ([]*models.AssessmentAttempt, error) {
	var out []*models.AssessmentAttempt
	for _, at := range r.attempts {
		if at.CandidateID == candidateID {
			out = append(out, at)
		}
	}
	return out, nil
}

func (r *memRepo) GetOverdueAttempts(ctx context.Context) ([]*models.AssessmentAttempt, error) {
	var out []*models.AssessmentAttempt
	for _, at := range r.attempts {
		if at.Status == models.AttemptInProgress && at.IsOverdue() {
			out = append(out, at)
		}
	}
	return out, nil
}

func (r *memRepo) GetClientByAPIKey(ctx context.Context, apiKey string) (*models.APIClient, error) {
	return nil, nil
}

func (r *memRepo) UpdateClientLastUsed(ctx context.Context, apiKey string) error { return nil }

func (r *memRepo) Ping(ctx context.Context) error { return nil }

func (r *memRepo) Close() error { return nil }

var _ storage.Repository = (*memRepo)(nil)

// recordingNotifier captures published stage-change events
type recordingNotifier struct {
	events []models.StageChangeEvent
}

func (n *recordingNotifier) PublishStageChange(event models.StageChangeEvent) {
	n.events = append(n.events, event)
}

func newTestManager(t *testing.T) (Manager, *memRepo, *recordingNotifier) {
	t.Helper()
	repo := newMemRepo()
	notifier := &recordingNotifier{}
	return NewManager(repo, nil, notifier), repo, notifier
}

func mustCreateJob(t *testing.T, m Manager, title string) *models.Job {
	t.Helper()
	job, err := m.CreateJob(context.Background(), models.CreateJobRequest{Title: title})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return job
}

func mustCreateCandidate(t *testing.T, m Manager, jobID, name string) *models.Candidate {
	t.Helper()
	c, err := m.CreateCandidate(context.Background(), models.CreateCandidateRequest{
		JobID: jobID,
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	return c
}

func TestCreateJobGeneratesSlug(t *testing.T) {
	m, _, _ := newTestManager(t)

	job := mustCreateJob(t, m, "Senior Backend Engineer (Go)")

	if job.Slug != "senior-backend-engineer-go" {
		t.Errorf("slug = %q, want senior-backend-engineer-go", job.Slug)
	}
	if job.Status != models.JobActive {
		t.Errorf("status = %q, want active", job.Status)
	}
}

func TestUpdateJobRejectsUnknownStatus(t *testing.T) {
	m, _, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")

	bad := "paused"
	if _, err := m.UpdateJob(context.Background(), job.ID, models.UpdateJobRequest{Status: &bad}); err == nil {
		t.Fatal("expected error for unknown status")
	}

	archived := "archived"
	updated, err := m.UpdateJob(context.Background(), job.ID, models.UpdateJobRequest{Status: &archived})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if updated.Status != models.JobArchived {
		t.Errorf("status = %q, want archived", updated.Status)
	}
}

func TestCreateCandidateStartsAtApplied(t *testing.T) {
	m, _, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")

	c := mustCreateCandidate(t, m, job.ID, "ada")

	if c.Stage != models.StageApplied {
		t.Errorf("stage = %q, want applied", c.Stage)
	}
	if len(c.Timeline) != 1 {
		t.Fatalf("timeline has %d entries, want 1", len(c.Timeline))
	}
	if c.Timeline[0].Stage != models.StageApplied {
		t.Errorf("first timeline entry = %q, want applied", c.Timeline[0].Stage)
	}
}

func TestCreateCandidateUnknownJob(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.CreateCandidate(context.Background(), models.CreateCandidateRequest{
		JobID: "nope", Name: "ada", Email: "ada@example.com",
	})
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestMoveStageLifecycle(t *testing.T) {
	m, _, notifier := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")
	c := mustCreateCandidate(t, m, job.ID, "ada")
	ctx := context.Background()

	// Skipping ahead is rejected before anything is written.
	_, err := m.MoveStage(ctx, c.ID, models.MoveStageRequest{Stage: "tech", ChangedBy: "ana"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("applied->tech err = %v, want ErrInvalidTransition", err)
	}
	if got, _ := m.GetCandidate(ctx, c.ID); got.Stage != models.StageApplied {
		t.Fatalf("candidate stage changed after rejected move: %q", got.Stage)
	}

	// The legal next step is accepted and recorded.
	moved, err := m.MoveStage(ctx, c.ID, models.MoveStageRequest{Stage: "screen", ChangedBy: "ana", Notes: "phone screen booked"})
	if err != nil {
		t.Fatalf("applied->screen: %v", err)
	}
	if moved.Stage != models.StageScreen {
		t.Errorf("stage = %q, want screen", moved.Stage)
	}
	if len(moved.Timeline) != 2 {
		t.Errorf("timeline has %d entries, want 2", len(moved.Timeline))
	}

	// Rejection is reachable from any live stage.
	moved, err = m.MoveStage(ctx, c.ID, models.MoveStageRequest{Stage: "rejected", ChangedBy: "ana"})
	if err != nil {
		t.Fatalf("screen->rejected: %v", err)
	}
	if moved.Stage != models.StageRejected {
		t.Errorf("stage = %q, want rejected", moved.Stage)
	}

	// Terminal stages absorb.
	_, err = m.MoveStage(ctx, c.ID, models.MoveStageRequest{Stage: "hired", ChangedBy: "ana"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("rejected->hired err = %v, want ErrInvalidTransition", err)
	}

	// One event per accepted move, none for rejected ones.
	if len(notifier.events) != 2 {
		t.Fatalf("published %d events, want 2", len(notifier.events))
	}
	if notifier.events[0].From != models.StageApplied || notifier.events[0].To != models.StageScreen {
		t.Errorf("first event = %s->%s, want applied->screen", notifier.events[0].From, notifier.events[0].To)
	}
}

func TestMoveStageUnknownStage(t *testing.T) {
	m, _, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")
	c := mustCreateCandidate(t, m, job.ID, "ada")

	_, err := m.MoveStage(context.Background(), c.ID, models.MoveStageRequest{Stage: "limbo"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestAuditCandidate(t *testing.T) {
	m, repo, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")
	c := mustCreateCandidate(t, m, job.ID, "ada")
	ctx := context.Background()

	res, err := m.AuditCandidate(ctx, c.ID)
	if err != nil {
		t.Fatalf("AuditCandidate: %v", err)
	}
	if !res.IsValid {
		t.Errorf("fresh candidate failed audit: %v", res.Errors)
	}

	// Corrupt the stored history behind the manager's back.
	stored := repo.candidates[c.ID]
	stored.Timeline = append(stored.Timeline, models.TimelineEntry{
		Stage:     models.StageOffer,
		ChangedAt: time.Now(),
	})

	res, err = m.AuditCandidate(ctx, c.ID)
	if err != nil {
		t.Fatalf("AuditCandidate: %v", err)
	}
	if res.IsValid {
		t.Error("audit passed a timeline that skips applied->offer")
	}
}

func testAssessment(allowRetake bool, timeLimit int) *models.Assessment {
	return &models.Assessment{
		Title: "Screening",
		Sections: []models.Section{
			{
				ID:    "s1",
				Title: "Basics",
				Questions: []models.Question{
					{ID: "q1", Type: models.QuestionShortText, Title: "Years of experience", Required: true},
					{
						ID:       "q2",
						Type:     models.QuestionLongText,
						Title:    "Tell us more",
						Required: true,
						ConditionalLogic: &models.ConditionalLogic{
							DependsOn: "q1",
							Condition: models.ConditionEquals,
							Value:     "10",
						},
					},
				},
			},
		},
		Settings: models.AssessmentSettings{AllowRetake: allowRetake, TimeLimitMinutes: timeLimit},
	}
}

func TestSaveAssessmentRejectsBrokenDefinition(t *testing.T) {
	m, repo, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")
	ctx := context.Background()

	broken := &models.Assessment{Title: ""}
	res, err := m.SaveAssessment(ctx, job.ID, broken)
	if err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if res.IsValid {
		t.Fatal("empty definition passed validation")
	}
	if repo.assessments[job.ID] != nil {
		t.Error("broken definition was persisted")
	}

	res, err = m.SaveAssessment(ctx, job.ID, testAssessment(true, 0))
	if err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if !res.IsValid {
		t.Fatalf("valid definition rejected: %v", res.Errors)
	}
	if repo.assessments[job.ID] == nil {
		t.Error("valid definition was not persisted")
	}
}

func TestAttemptLifecycle(t *testing.T) {
	m, _, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")
	c := mustCreateCandidate(t, m, job.ID, "ada")
	ctx := context.Background()

	if _, err := m.SaveAssessment(ctx, job.ID, testAssessment(true, 30)); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	at, err := m.StartAttempt(ctx, job.ID, c.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if at.Status != models.AttemptInProgress {
		t.Errorf("status = %q, want in_progress", at.Status)
	}
	if at.ExpiresAt == nil {
		t.Fatal("expected a deadline from the 30 minute limit")
	}

	// Submitting with the required question unanswered is blocked.
	result, err := m.SubmitAttempt(ctx, at.ID)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if result.Accepted {
		t.Fatal("submit accepted with required question unanswered")
	}
	if _, ok := result.QuestionErrors["q1"]; !ok {
		t.Errorf("expected error for q1, got %v", result.QuestionErrors)
	}
	if _, ok := result.QuestionErrors["q2"]; ok {
		t.Error("hidden question q2 was validated")
	}

	// Answering q1 with "10" reveals q2, which then blocks on its own.
	if _, err := m.SaveResponses(ctx, at.ID, map[string]any{"q1": "10"}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}
	result, err = m.SubmitAttempt(ctx, at.ID)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if result.Accepted {
		t.Fatal("submit accepted with revealed q2 unanswered")
	}
	if _, ok := result.QuestionErrors["q2"]; !ok {
		t.Errorf("expected error for revealed q2, got %v", result.QuestionErrors)
	}

	if _, err := m.SaveResponses(ctx, at.ID, map[string]any{"q2": "a decade of Go"}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}
	result, err = m.SubmitAttempt(ctx, at.ID)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("submit rejected: %v", result.QuestionErrors)
	}

	// Submitted attempts do not accept further writes.
	if _, err := m.SaveResponses(ctx, at.ID, map[string]any{"q1": "11"}); !errors.Is(err, ErrAttemptClosed) {
		t.Errorf("write after submit err = %v, want ErrAttemptClosed", err)
	}
}

func TestStartAttemptRetakePolicy(t *testing.T) {
	m, _, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")
	c := mustCreateCandidate(t, m, job.ID, "ada")
	ctx := context.Background()

	if _, err := m.SaveAssessment(ctx, job.ID, testAssessment(false, 0)); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	at, err := m.StartAttempt(ctx, job.ID, c.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if at.ExpiresAt != nil {
		t.Error("expected no deadline without a time limit")
	}

	if _, err := m.SaveResponses(ctx, at.ID, map[string]any{"q1": "3"}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}
	result, err := m.SubmitAttempt(ctx, at.ID)
	if err != nil || !result.Accepted {
		t.Fatalf("SubmitAttempt: err=%v accepted=%v %v", err, result.Accepted, result.QuestionErrors)
	}

	if _, err := m.StartAttempt(ctx, job.ID, c.ID); !errors.Is(err, ErrRetakeNotAllowed) {
		t.Errorf("second attempt err = %v, want ErrRetakeNotAllowed", err)
	}
}

func TestExpireOverdueAttempts(t *testing.T) {
	m, repo, _ := newTestManager(t)
	job := mustCreateJob(t, m, "Backend Engineer")
	c := mustCreateCandidate(t, m, job.ID, "ada")
	ctx := context.Background()

	if _, err := m.SaveAssessment(ctx, job.ID, testAssessment(true, 30)); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	at, err := m.StartAttempt(ctx, job.ID, c.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	// Push the deadline into the past.
	past := time.Now().Add(-time.Minute)
	repo.attempts[at.ID].ExpiresAt = &past

	n, err := m.ExpireOverdueAttempts(ctx)
	if err != nil {
		t.Fatalf("ExpireOverdueAttempts: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d attempts, want 1", n)
	}
	if repo.attempts[at.ID].Status != models.AttemptExpired {
		t.Errorf("status = %q, want expired", repo.attempts[at.ID].Status)
	}

	if _, err := m.SubmitAttempt(ctx, at.ID); !errors.Is(err, ErrAttemptClosed) {
		t.Errorf("submit after expiry err = %v, want ErrAttemptClosed", err)
	}
}
