package service

import (
	"strings"
	"sync"
	"time"

	"vocabbattle/internal/model"
)

// battleRoom is the live state of one 1v1 contest. All fields but writes are guarded by BattleService.mu.
type battleRoom struct {
	id        string
	matchID   string
	players   [2]model.RoomPlayer
	questions []*model.BattleQuestion
	index     int
	scores    map[string]int
	answered  map[string]struct{}
	timer     Timer
	status    model.MatchStatus
	startedAt time.Time

	// answer writes in flight; Add only while the room is live
	writes sync.WaitGroup
}

func newBattleRoom(id, matchID string, a, b model.QueuedPlayer, questions []*model.BattleQuestion, startedAt time.Time) *battleRoom {
	return &battleRoom{
		id:      id,
		matchID: matchID,
		players: [2]model.RoomPlayer{
			{UserID: a.UserID, DisplayName: a.DisplayName, ConnectionID: a.ConnectionID},
			{UserID: b.UserID, DisplayName: b.DisplayName, ConnectionID: b.ConnectionID},
		},
		questions: questions,
		scores:    map[string]int{a.UserID: 0, b.UserID: 0},
		answered:  make(map[string]struct{}),
		status:    model.MatchInProgress,
		startedAt: startedAt,
	}
}

// current returns the question being played, or nil once the index ran past the end
func (r *battleRoom) current() *model.BattleQuestion {
	if r.index < 0 || r.index >= len(r.questions) {
		return nil
	}
	return r.questions[r.index]
}

func (r *battleRoom) hasPlayer(userID string) bool {
	return r.players[0].UserID == userID || r.players[1].UserID == userID
}

func (r *battleRoom) opponentOf(userID string) (model.RoomPlayer, bool) {
	switch userID {
	case r.players[0].UserID:
		return r.players[1], true
	case r.players[1].UserID:
		return r.players[0], true
	}
	return model.RoomPlayer{}, false
}

func (r *battleRoom) everyoneAnswered() bool {
	for _, p := range r.players {
		if _, ok := r.answered[p.UserID]; !ok {
			return false
		}
	}
	return true
}

func (r *battleRoom) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// leader returns the strictly higher scorer, nil on a tie
func (r *battleRoom) leader() *string {
	a, b := r.players[0].UserID, r.players[1].UserID
	switch {
	case r.scores[a] > r.scores[b]:
		return &a
	case r.scores[b] > r.scores[a]:
		return &b
	}
	return nil
}

func normalizeOption(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
