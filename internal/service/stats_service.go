package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/logger"
)

// StatsService periodically publishes queue and room counters to Redis
type StatsService struct {
	battles  *BattleService
	stats    cache.StatsCache
	interval time.Duration
	sched    gocron.Scheduler
}

func NewStatsService(battles *BattleService, stats cache.StatsCache, interval time.Duration) *StatsService {
	return &StatsService{
		battles:  battles,
		stats:    stats,
		interval: interval,
	}
}

// Start publishes once and then on every interval
func (s *StatsService) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.Publish),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}

	s.sched = sched
	sched.Start()
	logger.Infof("[Stats] publishing battle stats every %s", s.interval)
	return nil
}

// Publish writes the current snapshot
func (s *StatsService) Publish() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap := s.battles.Snapshot()
	if err := s.stats.Set(ctx, &snap); err != nil {
		logger.Warningf("[Stats] publish failed: %v", err)
	}
}

func (s *StatsService) Stop() {
	if s.sched == nil {
		return
	}
	if err := s.sched.Shutdown(); err != nil {
		logger.Warningf("[Stats] scheduler shutdown: %v", err)
	}
}
