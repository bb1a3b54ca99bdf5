package models

import "time"

// QuestionType represents the kind of answer a question expects
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multi_choice"
	QuestionShortText    QuestionType = "short_text"
	QuestionLongText     QuestionType = "long_text"
	QuestionNumeric      QuestionType = "numeric"
	QuestionFileUpload   QuestionType = "file_upload"
)

// IsChoice returns true for question types that carry an options list
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

// Condition represents a conditional-visibility operator
type Condition string

const (
	ConditionEquals      Condition = "equals"
	ConditionNotEquals   Condition = "not_equals"
	ConditionContains    Condition = "contains"
	ConditionNotContains Condition = "not_contains"
	ConditionGreaterThan Condition = "greater_than"
	ConditionLessThan    Condition = "less_than"
)

// ConditionalLogic makes a question's visibility depend on a prior answer
type ConditionalLogic struct {
	DependsOn string    `yaml:"depends_on" json:"depends_on"`
	Condition Condition `yaml:"condition" json:"condition"`
	Value     any       `yaml:"value" json:"value"`
}

// ValidationRules holds type-specific constraints for a question.
// Unset pointers mean the constraint is not enforced.
type ValidationRules struct {
	MinLength     *int     `yaml:"min_length" json:"min_length,omitempty"`
	MaxLength     *int     `yaml:"max_length" json:"max_length,omitempty"`
	Pattern       *string  `yaml:"pattern" json:"pattern,omitempty"`
	Min           *float64 `yaml:"min" json:"min,omitempty"`
	Max           *float64 `yaml:"max" json:"max,omitempty"`
	MinSelections *int     `yaml:"min_selections" json:"min_selections,omitempty"`
	MaxSelections *int     `yaml:"max_selections" json:"max_selections,omitempty"`
}

// Option is one selectable answer for a choice question
type Option struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// Question is a single item within an assessment section
type Question struct {
	ID               string            `yaml:"id" json:"id"`
	Type             QuestionType      `yaml:"type" json:"type"`
	Title            string            `yaml:"title" json:"title"`
	Description      string            `yaml:"description" json:"description,omitempty"`
	Required         bool              `yaml:"required" json:"required"`
	Validation       *ValidationRules  `yaml:"validation" json:"validation,omitempty"`
	Options          []Option          `yaml:"options" json:"options,omitempty"`
	ConditionalLogic *ConditionalLogic `yaml:"conditional_logic" json:"conditional_logic,omitempty"`
}

// Section groups an ordered list of questions
type Section struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

// AssessmentSettings configures how an assessment is taken
type AssessmentSettings struct {
	AllowRetake        bool   `yaml:"allow_retake" json:"allow_retake"`
	RandomizeQuestions bool   `yaml:"randomize_questions" json:"randomize_questions"`
	ShowResults        bool   `yaml:"show_results" json:"show_results"`
	PassingScore       int    `yaml:"passing_score" json:"passing_score"`
	TimeLimitMinutes   int    `yaml:"time_limit_minutes" json:"time_limit_minutes,omitempty"`
	Instructions       string `yaml:"instructions" json:"instructions,omitempty"`
}

// Assessment is the saved questionnaire for one job.
// Saving replaces the previous snapshot for the same job; takers only ever
// see the latest saved version.
type Assessment struct {
	JobID       string             `yaml:"job_id" json:"job_id"`
	Title       string             `yaml:"title" json:"title"`
	Description string             `yaml:"description" json:"description,omitempty"`
	Sections    []Section          `yaml:"sections" json:"sections"`
	Settings    AssessmentSettings `yaml:"settings" json:"settings"`
	UpdatedAt   time.Time          `yaml:"-" json:"updated_at"`
}

// QuestionResponse is one recorded answer within an attempt
type QuestionResponse struct {
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseSet maps question IDs to their recorded answers
type ResponseSet map[string]QuestionResponse

// AttemptStatus represents the state of an assessment-taking session
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptExpired    AttemptStatus = "expired"
)

// IsClosed returns true if the attempt can no longer accept responses
func (s AttemptStatus) IsClosed() bool {
	return s == AttemptSubmitted || s == AttemptExpired
}

// AssessmentAttempt is one candidate's session against a saved assessment
type AssessmentAttempt struct {
	ID          string        `json:"id"`
	JobID       string        `json:"job_id"`
	CandidateID string        `json:"candidate_id"`
	Status      AttemptStatus `json:"status"`
	Responses   ResponseSet   `json:"responses"`
	StartedAt   time.Time     `json:"started_at"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
}

// IsOverdue checks if the attempt's time limit has elapsed
func (a *AssessmentAttempt) IsOverdue() bool {
	if a.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*a.ExpiresAt)
}

// StartAttemptRequest represents a request to begin taking an assessment
type StartAttemptRequest struct {
	CandidateID string `json:"candidate_id"`
}

// SaveResponsesRequest carries a partial batch of answers for an attempt
type SaveResponsesRequest struct {
	Responses map[string]any `json:"responses"`
}

// SubmitResult reports the outcome of an attempt submission.
// QuestionErrors maps each failing question ID to its error messages so the
// taking UI can attach them to the right field.
type SubmitResult struct {
	Accepted       bool                `json:"accepted"`
	QuestionErrors map[string][]string `json:"question_errors,omitempty"`
}
