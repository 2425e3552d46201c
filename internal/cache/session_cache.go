package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"vocabbattle/internal/model"
)

const sessionTTL = 10 * time.Minute

// SessionCache records which connection a user is currently battling from
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, userID string) (*model.Session, error)
	Delete(ctx context.Context, session *model.Session) error
}

type sessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
	}
}

func sessionKey(userID string) string {
	return "battle:session:" + userID
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.UserID), data, sessionTTL).Err()
}

// Get returns nil when the user has no live connection
func (c *sessionCache) Get(ctx context.Context, userID string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	err = json.Unmarshal([]byte(data), &session)
	return &session, err
}

// Delete removes the entry only while it still points at this connection
func (c *sessionCache) Delete(ctx context.Context, session *model.Session) error {
	current, err := c.Get(ctx, session.UserID)
	if err != nil || current == nil || current.ConnectionID != session.ConnectionID {
		return err
	}
	return c.client.Del(ctx, sessionKey(session.UserID)).Err()
}
