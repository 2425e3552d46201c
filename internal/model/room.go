package model

import "time"

// RoomMeta is the cached snapshot of a live room
type RoomMeta struct {
	RoomID         string       `json:"roomId"`
	MatchID        string       `json:"matchId"`
	Players        []RoomPlayer `json:"players"`
	TotalQuestions int          `json:"totalQuestions"`
	Status         MatchStatus  `json:"status"`
	StartedAt      time.Time    `json:"startedAt"`
}

// BattleStats is a point-in-time count of queue and rooms
type BattleStats struct {
	Queued      int       `json:"queued"`
	Starting    int       `json:"starting"`
	ActiveRooms int       `json:"activeRooms"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
