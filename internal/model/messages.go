package model

import "time"

// Client -> server events
const (
	EventQueueJoin  = "queue:join"
	EventQueueLeave = "queue:leave"
	EventAnswer     = "answer"
)

// Server -> client events
const (
	EventReady        = "ready"
	EventQueueJoined  = "queue:joined"
	EventQueueLeft    = "queue:left"
	EventError        = "error"
	EventMatchFound   = "match:found"
	EventQuestion     = "question"
	EventAnswerResult = "answer:result"
	EventScoreUpdate  = "score:update"
	EventOpponentLeft = "opponent:left"
	EventFinished     = "finished"
)

// AnswerRequest is the payload of an answer event
type AnswerRequest struct {
	RoomID         string `json:"roomId"`
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

type ReadyEvent struct {
	UserID string `json:"userId"`
}

type QueueJoinedEvent struct {
	QueuedAt time.Time `json:"queuedAt"`
}

type QueueLeftEvent struct {
	LeftAt time.Time `json:"leftAt"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type MatchFoundEvent struct {
	RoomID                   string       `json:"roomId"`
	MatchID                  string       `json:"matchId"`
	Players                  []RoomPlayer `json:"players"`
	TotalQuestions           int          `json:"totalQuestions"`
	QuestionTimeLimitSeconds int          `json:"questionTimeLimitSeconds"`
}

// QuestionEvent carries the redacted question and its server-side deadline (epoch millis)
type QuestionEvent struct {
	RoomID          string         `json:"roomId"`
	Question        PublicQuestion `json:"question"`
	DurationSeconds int            `json:"durationSeconds"`
	DeadlineAt      int64          `json:"deadlineAt"`
}

type AnswerResultEvent struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
	ScoreDelta     int    `json:"scoreDelta"`
	Score          int    `json:"score"`
}

type ScoreUpdateEvent struct {
	RoomID      string             `json:"roomId"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type OpponentLeftEvent struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type FinishedEvent struct {
	RoomID      string             `json:"roomId"`
	MatchID     string             `json:"matchId"`
	Status      MatchStatus        `json:"status"`
	WinnerID    *string            `json:"winnerId"`
	IsDraw      bool               `json:"isDraw"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
