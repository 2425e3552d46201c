package model

import "time"

// MatchStatus is the lifecycle state of a battle match
type MatchStatus string

const (
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchFinished   MatchStatus = "FINISHED"
	MatchCancelled  MatchStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible
func (s MatchStatus) Terminal() bool {
	return s == MatchFinished || s == MatchCancelled
}

// OptionLabels are the four answer labels, in display order
var OptionLabels = [4]string{"A", "B", "C", "D"}

// IsOptionLabel reports whether label is one of A, B, C, D
func IsOptionLabel(label string) bool {
	for _, l := range OptionLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Option is one labelled answer choice
type Option struct {
	Label string `json:"label" bson:"label"`
	Text  string `json:"text" bson:"text"`
}

// QuestionDraft is a built question before it is persisted and given an id
type QuestionDraft struct {
	SourceItemID  string
	QuestionText  string
	Position      int
	Options       []Option
	CorrectOption string
}

// BattleQuestion is a persisted, immutable question of one match
type BattleQuestion struct {
	ID            string   `json:"id"`
	SourceItemID  string   `json:"sourceVocabularyItemId"`
	QuestionText  string   `json:"questionText"`
	Position      int      `json:"position"`
	Options       []Option `json:"options"`
	CorrectOption string   `json:"-"`
}

// Public returns the redacted view sent to clients
func (q *BattleQuestion) Public() PublicQuestion {
	options := make([]Option, len(q.Options))
	copy(options, q.Options)
	return PublicQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Position:     q.Position,
		Options:      options,
	}
}

// PublicQuestion is a question without its correct label
type PublicQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	Position     int      `json:"position"`
	Options      []Option `json:"options"`
}

// QueuedPlayer is a waiting matchmaking entry
type QueuedPlayer struct {
	UserID       string
	DisplayName  string
	ConnectionID string
	JoinedAt     time.Time
}

// RoomPlayer is one of the two seats of a live room
type RoomPlayer struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	ConnectionID string `json:"-"`
}

// LeaderboardEntry is one row of a room leaderboard
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}
