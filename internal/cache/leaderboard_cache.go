package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const winsKey = "battle:wins"

// LeaderboardCache keeps the all-time battle win counts in a Redis ZSET
type LeaderboardCache interface {
	AddWin(ctx context.Context, userID string) error
	GetTop(ctx context.Context, limit int) ([]WinEntry, error)
	GetRank(ctx context.Context, userID string) (int64, error)
}

// WinEntry represents a single ranking entry
type WinEntry struct {
	UserID string `json:"userId"`
	Wins   int    `json:"wins"`
	Rank   int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) AddWin(ctx context.Context, userID string) error {
	return c.client.ZIncrBy(ctx, winsKey, 1, userID).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]WinEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, winsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]WinEntry, len(results))
	for i, z := range results {
		entries[i] = WinEntry{
			UserID: z.Member.(string),
			Wins:   int(z.Score),
			Rank:   i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, userID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, winsKey, userID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
