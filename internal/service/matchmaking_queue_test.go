package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabbattle/internal/model"
)

func queued(user, conn string) model.QueuedPlayer {
	return model.QueuedPlayer{UserID: user, ConnectionID: conn}
}

func TestMatchmakingQueue(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Pairs Oldest First", func(t *testing.T) {
		t.Parallel()
		q := NewMatchmakingQueue()
		for _, u := range []string{"A", "B", "C", "D"} {
			q.Join(queued(u, "c"+u), now)
		}

		a, b, ok := q.PopPair()
		require.True(t, ok)
		assert.Equal(t, "A", a.UserID)
		assert.Equal(t, "B", b.UserID)

		c, d, ok := q.PopPair()
		require.True(t, ok)
		assert.Equal(t, "C", c.UserID)
		assert.Equal(t, "D", d.UserID)

		_, _, ok = q.PopPair()
		assert.False(t, ok)
		assert.Equal(t, 0, q.Len())
	})

	t.Run("Single Player Does Not Pair", func(t *testing.T) {
		t.Parallel()
		q := NewMatchmakingQueue()
		q.Join(queued("A", "cA"), now)

		_, _, ok := q.PopPair()
		assert.False(t, ok)
		assert.True(t, q.Contains("A"))
	})

	t.Run("Rejoin Moves To Back", func(t *testing.T) {
		t.Parallel()
		q := NewMatchmakingQueue()
		q.Join(queued("A", "cA"), now)
		q.Join(queued("B", "cB"), now)
		entry := q.Join(queued("A", "cA2"), now.Add(time.Second))

		assert.Equal(t, 2, q.Len())
		assert.Equal(t, now.Add(time.Second), entry.JoinedAt)

		first, second, ok := q.PopPair()
		require.True(t, ok)
		assert.Equal(t, "B", first.UserID)
		assert.Equal(t, "A", second.UserID)
		assert.Equal(t, "cA2", second.ConnectionID)
	})

	t.Run("Leave", func(t *testing.T) {
		t.Parallel()
		q := NewMatchmakingQueue()
		q.Join(queued("A", "cA"), now)

		assert.True(t, q.Leave("A"))
		assert.False(t, q.Leave("A"))
		assert.False(t, q.Contains("A"))
		assert.Equal(t, 0, q.Len())
	})

	t.Run("Leave Connection Matches Owner", func(t *testing.T) {
		t.Parallel()
		q := NewMatchmakingQueue()
		q.Join(queued("A", "new"), now)

		assert.False(t, q.LeaveConnection("A", "old"))
		assert.True(t, q.Contains("A"))
		assert.True(t, q.LeaveConnection("A", "new"))
		assert.False(t, q.Contains("A"))
	})
}
