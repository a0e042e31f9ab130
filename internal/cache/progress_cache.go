package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"project-delivery-api/internal/dto"
)

const (
	progressKeyPrefix = "delivery:progress:"
	progressTTL       = 5 * time.Minute
)

// ProjectProgressSnapshot is the cached view of a project's progress: the
// overall percentage plus the rendered phase tree it was computed from, so
// dashboard reads within the TTL can be served without touching the database.
type ProjectProgressSnapshot struct {
	ProjectID       uuid.UUID           `json:"project_id"`
	OverallProgress int                 `json:"overall_progress"`
	PhaseCount      int                 `json:"phase_count"`
	Phases          []dto.PhaseResponse `json:"phases"`
	ComputedAt      time.Time           `json:"computed_at"`
}

// ProgressCache caches per-project progress snapshots in Redis so that
// dashboard reads do not recompute aggregates on every request.
// All methods degrade to no-ops when Redis is unavailable.
type ProgressCache interface {
	Get(ctx context.Context, projectID uuid.UUID) (*ProjectProgressSnapshot, error)
	Set(ctx context.Context, snapshot ProjectProgressSnapshot) error
	Invalidate(ctx context.Context, projectID uuid.UUID) error
}

type progressCacheImpl struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewProgressCache creates a new ProgressCache. A nil client is allowed and
// turns every operation into a cache miss.
func NewProgressCache(client *redis.Client, logger *zap.Logger) ProgressCache {
	return &progressCacheImpl{
		redis:  client,
		logger: logger,
	}
}

func progressKey(projectID uuid.UUID) string {
	return fmt.Sprintf("%s%s", progressKeyPrefix, projectID.String())
}

func (c *progressCacheImpl) Get(ctx context.Context, projectID uuid.UUID) (*ProjectProgressSnapshot, error) {
	if c.redis == nil {
		return nil, nil
	}

	data, err := c.redis.Get(ctx, progressKey(projectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("Failed to read progress snapshot from cache",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	var snapshot ProjectProgressSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// A corrupt entry is treated as a miss and dropped
		_ = c.redis.Del(ctx, progressKey(projectID)).Err()
		return nil, nil
	}

	return &snapshot, nil
}

func (c *progressCacheImpl) Set(ctx context.Context, snapshot ProjectProgressSnapshot) error {
	if c.redis == nil {
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal progress snapshot: %w", err)
	}

	if err := c.redis.Set(ctx, progressKey(snapshot.ProjectID), data, progressTTL).Err(); err != nil {
		c.logger.Warn("Failed to write progress snapshot to cache",
			zap.String("project_id", snapshot.ProjectID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (c *progressCacheImpl) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	if c.redis == nil {
		return nil
	}

	if err := c.redis.Del(ctx, progressKey(projectID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate progress snapshot",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
