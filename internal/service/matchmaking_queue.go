package service

import (
	"time"

	"vocabbattle/internal/model"
)

// MatchmakingQueue is a FIFO of waiting players with a userId index.
// It has no lock of its own; BattleService serializes access.
type MatchmakingQueue struct {
	entries []model.QueuedPlayer
	index   map[string]string // userId -> connectionId
}

func NewMatchmakingQueue() *MatchmakingQueue {
	return &MatchmakingQueue{
		index: make(map[string]string),
	}
}

// Join appends the player, dropping any stale entry for the same user first
func (q *MatchmakingQueue) Join(p model.QueuedPlayer, now time.Time) model.QueuedPlayer {
	q.Leave(p.UserID)
	p.JoinedAt = now
	q.entries = append(q.entries, p)
	q.index[p.UserID] = p.ConnectionID
	return p
}

// Leave removes the user's entry. It reports whether one existed.
func (q *MatchmakingQueue) Leave(userID string) bool {
	if _, ok := q.index[userID]; !ok {
		return false
	}
	delete(q.index, userID)
	for i, e := range q.entries {
		if e.UserID == userID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	return true
}

// LeaveConnection removes the user's entry only if it belongs to connectionID
func (q *MatchmakingQueue) LeaveConnection(userID, connectionID string) bool {
	if q.index[userID] != connectionID {
		return false
	}
	return q.Leave(userID)
}

// Contains reports whether the user is waiting
func (q *MatchmakingQueue) Contains(userID string) bool {
	_, ok := q.index[userID]
	return ok
}

// PopPair removes and returns the two oldest entries
func (q *MatchmakingQueue) PopPair() (model.QueuedPlayer, model.QueuedPlayer, bool) {
	if len(q.entries) < 2 {
		return model.QueuedPlayer{}, model.QueuedPlayer{}, false
	}
	first, second := q.entries[0], q.entries[1]
	q.entries = q.entries[2:]
	delete(q.index, first.UserID)
	delete(q.index, second.UserID)
	return first, second, true
}

func (q *MatchmakingQueue) Len() int {
	return len(q.entries)
}
