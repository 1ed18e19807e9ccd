package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExecutionProgress is a live snapshot of a running execution, published to
// Redis so dashboards can poll it without hitting the database.
type ExecutionProgress struct {
	ExecutionID uint   `json:"execution_id"`
	CampaignID  uint   `json:"campaign_id"`
	Status      string `json:"status"`
	Total       int    `json:"total"`
	Processed   int    `json:"processed"`
	Sent        int    `json:"sent"`
	Failed      int    `json:"failed"`
	UpdatedAt   string `json:"updated_at"`
}

// ProgressTracker publishes execution progress snapshots
type ProgressTracker interface {
	Publish(ctx context.Context, progress ExecutionProgress)
	Get(ctx context.Context, executionID uint) (*ExecutionProgress, error)
}

// RedisProgressTracker implements ProgressTracker on Redis.
// Publishing is best effort: a Redis outage must never fail an execution.
type RedisProgressTracker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProgressTracker creates a new Redis-backed progress tracker
func NewRedisProgressTracker(client *redis.Client, prefix string, ttl time.Duration) *RedisProgressTracker {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisProgressTracker{client: client, prefix: prefix, ttl: ttl}
}

func (t *RedisProgressTracker) key(executionID uint) string {
	return fmt.Sprintf("%sexecution:progress:%d", t.prefix, executionID)
}

// Publish stores the snapshot, swallowing errors
func (t *RedisProgressTracker) Publish(ctx context.Context, progress ExecutionProgress) {
	if t == nil || t.client == nil {
		return
	}
	payload, err := json.Marshal(progress)
	if err != nil {
		return
	}
	_ = t.client.Set(ctx, t.key(progress.ExecutionID), payload, t.ttl).Err()
}

// Get returns the latest snapshot, or nil when none exists
func (t *RedisProgressTracker) Get(ctx context.Context, executionID uint) (*ExecutionProgress, error) {
	if t == nil || t.client == nil {
		return nil, nil
	}
	raw, err := t.client.Get(ctx, t.key(executionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var progress ExecutionProgress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// NoopProgressTracker is used when no cache is configured
type NoopProgressTracker struct{}

func (NoopProgressTracker) Publish(ctx context.Context, progress ExecutionProgress) {}

func (NoopProgressTracker) Get(ctx context.Context, executionID uint) (*ExecutionProgress, error) {
	return nil, nil
}
