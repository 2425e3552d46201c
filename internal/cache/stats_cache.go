package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"vocabbattle/internal/model"
)

const statsKey = "battle:stats"

// StatsCache stores the latest published battle counters in a Redis hash
type StatsCache interface {
	Set(ctx context.Context, stats *model.BattleStats) error
	Get(ctx context.Context) (*model.BattleStats, error)
}

type statsCache struct {
	client *redis.Client
}

func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{client: client}
}

func (c *statsCache) Set(ctx context.Context, stats *model.BattleStats) error {
	return c.client.HSet(ctx, statsKey,
		"queued", stats.Queued,
		"starting", stats.Starting,
		"activeRooms", stats.ActiveRooms,
		"updatedAt", stats.UpdatedAt.UTC().Format(time.RFC3339),
	).Err()
}

func (c *statsCache) Get(ctx context.Context) (*model.BattleStats, error) {
	vals, err := c.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	stats := &model.BattleStats{}
	stats.Queued, _ = strconv.Atoi(vals["queued"])
	stats.Starting, _ = strconv.Atoi(vals["starting"])
	stats.ActiveRooms, _ = strconv.Atoi(vals["activeRooms"])
	stats.UpdatedAt, _ = time.Parse(time.RFC3339, vals["updatedAt"])
	return stats, nil
}
