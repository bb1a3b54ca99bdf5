// Package drafts holds in-progress work that has not been committed to the
// primary store: assessment builder drafts and partially filled response
// sets. Both live in Redis with a TTL, so an abandoned browser session
// eventually evaporates instead of accumulating.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// Store persists builder drafts and response snapshots in Redis
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a draft store backed by the given Redis instance
func NewStore(address, password string, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Store{client: client, ttl: ttl}, nil
}

func builderKey(jobID string) string     { return "draft:assessment:" + jobID }
func responsesKey(attemptID string) string { return "draft:responses:" + attemptID }

// SaveBuilderDraft stores the current builder tree for a job
func (s *Store) SaveBuilderDraft(ctx context.Context, jobID string, a *models.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := s.client.Set(ctx, builderKey(jobID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	slog.Debug("builder draft saved", "job_id", jobID, "bytes", len(data))
	return nil
}

// GetBuilderDraft loads the builder draft for a job, nil if none exists
func (s *Store) GetBuilderDraft(ctx context.Context, jobID string) (*models.Assessment, error) {
	data, err := s.client.Get(ctx, builderKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var a models.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	return &a, nil
}

// DeleteBuilderDraft removes a job's builder draft (called after a real save)
func (s *Store) DeleteBuilderDraft(ctx context.Context, jobID string) error {
	if err := s.client.Del(ctx, builderKey(jobID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// SaveResponses stores the in-progress response snapshot of an attempt
func (s *Store) SaveResponses(ctx context.Context, attemptID string, responses models.ResponseSet) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}

	if err := s.client.Set(ctx, responsesKey(attemptID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save responses: %w", err)
	}

	return nil
}

// GetResponses loads the in-progress response snapshot, nil if none exists
func (s *Store) GetResponses(ctx context.Context, attemptID string) (models.ResponseSet, error) {
	data, err := s.client.Get(ctx, responsesKey(attemptID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	var responses models.ResponseSet
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
	}

	return responses, nil
}

// DeleteResponses removes an attempt's response snapshot (after submit)
func (s *Store) DeleteResponses(ctx context.Context, attemptID string) error {
	if err := s.client.Del(ctx, responsesKey(attemptID)).Err(); err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
