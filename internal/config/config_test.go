package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("BATTLE_QUESTIONS_PER_MATCH", "")
		t.Setenv("BATTLE_QUESTION_TIME_LIMIT_SECONDS", "")
		t.Setenv("REDIS_URI", "")

		cfg := Load()

		assert.Equal(t, 10, cfg.Battle.QuestionsPerMatch)
		assert.Equal(t, 15*time.Second, cfg.Battle.QuestionTimeLimit)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("BATTLE_QUESTIONS_PER_MATCH", "3")
		t.Setenv("BATTLE_QUESTION_TIME_LIMIT_SECONDS", "20")
		t.Setenv("REDIS_URI", "redis://cache:6380")
		t.Setenv("LOG_PRETTY", "false")

		cfg := Load()

		assert.Equal(t, 3, cfg.Battle.QuestionsPerMatch)
		assert.Equal(t, 20*time.Second, cfg.Battle.QuestionTimeLimit)
		assert.Equal(t, "cache:6380", cfg.RedisAddr)
		assert.False(t, cfg.LogPretty)
	})

	t.Run("InvalidNumbersFallBack", func(t *testing.T) {
		t.Setenv("BATTLE_QUESTIONS_PER_MATCH", "zero")
		t.Setenv("BATTLE_QUESTION_TIME_LIMIT_SECONDS", "-4")

		cfg := Load()

		assert.Equal(t, 10, cfg.Battle.QuestionsPerMatch)
		assert.Equal(t, 15*time.Second, cfg.Battle.QuestionTimeLimit)
	})
}
