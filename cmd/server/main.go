package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/config"
	"vocabbattle/internal/logger"
	"vocabbattle/internal/repository"
	"vocabbattle/internal/service"
	"vocabbattle/internal/transport/rest"
	"vocabbattle/internal/transport/ws"
)

// @title Vocab Battle API
// @version 1.0
// @description Real-time 1v1 vocabulary battles over WebSocket
// @host localhost:8080
// @BasePath /v1
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	logger.Infof("started")

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatalf("Failed to ping MongoDB: %v", err)
	}
	logger.Infof("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatalf("Failed to ping Redis: %v", err)
	}
	logger.Infof("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	defer wsHub.Close()
	logger.Infof("WebSocket hub started")

	// Initialize repositories
	vocabRepo := repository.NewVocabularyRepo(db)
	battleRepo := repository.NewBattleRepo(db)

	indexCtx, indexCancel := context.WithTimeout(ctx, 10*time.Second)
	defer indexCancel()
	if err := battleRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize caches
	roomCache := cache.NewRoomCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	statsCache := cache.NewStatsCache(rdb)
	sessionCache := cache.NewSessionCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	questionSvc := service.NewQuestionService(vocabRepo, nil)
	battleSvc := service.NewBattleService(cfg.Battle, questionSvc, battleRepo)
	battleSvc.SetCaches(roomCache, leaderboard)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	battleSvc.SetBroadcaster(wsHub)

	statsSvc := service.NewStatsService(battleSvc, statsCache, cfg.Battle.StatsInterval)
	if err := statsSvc.Start(); err != nil {
		logger.Warningf("Stats publisher disabled: %v", err)
	}
	defer statsSvc.Stop()

	// Create router with container
	container := &rest.Container{
		AuthService:   authSvc,
		BattleService: battleSvc,
		RoomCache:     roomCache,
		Leaderboard:   leaderboard,
		StatsCache:    statsCache,
		SessionCache:  sessionCache,
		WSHub:         wsHub,
		CORSOrigins:   cfg.CORSOrigins,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.HTTPPort)
		logger.Infof("Battle: %d questions, %s per question", cfg.Battle.QuestionsPerMatch, cfg.Battle.QuestionTimeLimit)
		logger.Infof("Endpoints:")
		logger.Infof("  WS  /v1/ws/battle")
		logger.Infof("  GET /v1/battles/rooms/{roomId}")
		logger.Infof("  GET /v1/battles/leaderboard")
		logger.Infof("  GET /v1/battles/stats")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	battleSvc.Shutdown(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Criticalf("Server forced to shutdown: %v", err)
	}

	logger.Infof("Server exited")
}
