package service

import (
	"time"

	"vocabbattle/internal/model"
)

// leaderboard is always recomputed from the room's current scores
func leaderboard(r *battleRoom) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(r.players))
	for _, p := range r.players {
		entries = append(entries, model.LeaderboardEntry{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       r.scores[p.UserID],
		})
	}
	return entries
}

func matchFoundEvent(r *battleRoom, limit time.Duration) model.MatchFoundEvent {
	return model.MatchFoundEvent{
		RoomID:                   r.id,
		MatchID:                  r.matchID,
		Players:                  []model.RoomPlayer{r.players[0], r.players[1]},
		TotalQuestions:           len(r.questions),
		QuestionTimeLimitSeconds: int(limit / time.Second),
	}
}

// questionEvent redacts the current question and stamps the server deadline
func questionEvent(r *battleRoom, limit time.Duration, now time.Time) model.QuestionEvent {
	return model.QuestionEvent{
		RoomID:          r.id,
		Question:        r.current().Public(),
		DurationSeconds: int(limit / time.Second),
		DeadlineAt:      now.Add(limit).UnixMilli(),
	}
}

func scoreUpdateEvent(r *battleRoom) model.ScoreUpdateEvent {
	return model.ScoreUpdateEvent{
		RoomID:      r.id,
		Leaderboard: leaderboard(r),
	}
}

func roomMeta(r *battleRoom) *model.RoomMeta {
	return &model.RoomMeta{
		RoomID:         r.id,
		MatchID:        r.matchID,
		Players:        []model.RoomPlayer{r.players[0], r.players[1]},
		TotalQuestions: len(r.questions),
		Status:         r.status,
		StartedAt:      r.startedAt,
	}
}
