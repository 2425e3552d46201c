package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment
type Config struct {
	MongoURI    string
	MongoDB     string
	RedisAddr   string
	HTTPPort    string
	JWTSecret   string
	LogLevel    string
	LogPretty   bool
	CORSOrigins string

	Battle BattleConfig
}

// BattleConfig holds the fixed match constants. They are never negotiated per request.
type BattleConfig struct {
	QuestionsPerMatch int
	QuestionTimeLimit time.Duration
	PersistTimeout    time.Duration
	StatsInterval     time.Duration
}

// DefaultBattleConfig returns the constants used when nothing is configured
func DefaultBattleConfig() BattleConfig {
	return BattleConfig{
		QuestionsPerMatch: 10,
		QuestionTimeLimit: 15 * time.Second,
		PersistTimeout:    5 * time.Second,
		StatsInterval:     30 * time.Second,
	}
}

// Load reads an optional .env file and then the environment
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	defaults := DefaultBattleConfig()

	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDB:     getEnv("MONGO_DB", "vocabbattle"),
		RedisAddr:   strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		HTTPPort:    getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvBool("LOG_PRETTY", true),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		Battle: BattleConfig{
			QuestionsPerMatch: getEnvInt("BATTLE_QUESTIONS_PER_MATCH", defaults.QuestionsPerMatch),
			QuestionTimeLimit: getEnvSeconds("BATTLE_QUESTION_TIME_LIMIT_SECONDS", defaults.QuestionTimeLimit),
			PersistTimeout:    getEnvSeconds("BATTLE_PERSIST_TIMEOUT_SECONDS", defaults.PersistTimeout),
			StatsInterval:     getEnvSeconds("BATTLE_STATS_INTERVAL_SECONDS", defaults.StatsInterval),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvSeconds(key string, defaultVal time.Duration) time.Duration {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Second
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return b
}
