package model

import "time"

// Match is the durable record of a room
type Match struct {
	ID        string      `json:"id" bson:"_id"`
	Status    MatchStatus `json:"status" bson:"status"`
	StartedAt time.Time   `json:"startedAt" bson:"startedAt"`
	EndedAt   *time.Time  `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	WinnerID  *string     `json:"winnerId" bson:"winnerId"`

	LastAnswerAt *time.Time `json:"lastAnswerAt,omitempty" bson:"lastAnswerAt,omitempty"`
}

// MatchPlayer is a player slot of a match, unique on (matchId, userId)
type MatchPlayer struct {
	ID       string     `json:"id" bson:"_id"`
	MatchID  string     `json:"matchId" bson:"matchId"`
	UserID   string     `json:"userId" bson:"userId"`
	Score    int        `json:"score" bson:"score"`
	IsWinner bool       `json:"isWinner" bson:"isWinner"`
	LeftAt   *time.Time `json:"leftAt,omitempty" bson:"leftAt,omitempty"`
	JoinedAt time.Time  `json:"joinedAt" bson:"joinedAt"`
}

// QuestionRecord stores one question with its four option texts
type QuestionRecord struct {
	ID            string `json:"id" bson:"_id"`
	MatchID       string `json:"matchId" bson:"matchId"`
	StudySetItem  string `json:"studySetItemId" bson:"studySetItemId"`
	QuestionText  string `json:"questionText" bson:"questionText"`
	OptionA       string `json:"optionA" bson:"optionA"`
	OptionB       string `json:"optionB" bson:"optionB"`
	OptionC       string `json:"optionC" bson:"optionC"`
	OptionD       string `json:"optionD" bson:"optionD"`
	CorrectOption string `json:"correctOption" bson:"correctOption"`
	Position      int    `json:"position" bson:"position"`
}

// BattleAnswer is one submitted answer, unique on (matchId, questionId, userId)
type BattleAnswer struct {
	ID             string    `json:"id" bson:"_id"`
	MatchID        string    `json:"matchId" bson:"matchId"`
	QuestionID     string    `json:"questionId" bson:"questionId"`
	UserID         string    `json:"userId" bson:"userId"`
	SelectedOption string    `json:"selectedOption" bson:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect" bson:"isCorrect"`
	ScoreDelta     int       `json:"scoreDelta" bson:"scoreDelta"`
	AnsweredAt     time.Time `json:"answeredAt" bson:"answeredAt"`
}

// MatchResult is everything written when a match ends
type MatchResult struct {
	MatchID  string
	Status   MatchStatus
	EndedAt  time.Time
	WinnerID *string
	Players  []PlayerResult
}

// PlayerResult is the final state of one player slot
type PlayerResult struct {
	UserID   string
	Score    int
	IsWinner bool
	LeftAt   *time.Time
}
