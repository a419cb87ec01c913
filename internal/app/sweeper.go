package app

import (
	"context"
	"time"

	"github.com/consulthub/scheduler-api/internal/service"
	"go.uber.org/zap"
)

// Sweeper фоновая задача: переводит принятые слоты с прошедшим временем
// в completed
type Sweeper struct {
	scheduleService *service.ScheduleService
	interval        time.Duration
	logger          *zap.Logger
	stopChan        chan struct{}
}

// NewSweeper создаёт новую фоновую задачу
func NewSweeper(scheduleService *service.ScheduleService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		scheduleService: scheduleService,
		interval:        interval,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start запускает фоновую задачу
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting schedule sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop останавливает фоновую задачу
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping schedule sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// Первый проход сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Schedule sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Schedule sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.scheduleService.CompleteElapsed(ctx)
	if err != nil {
		s.logger.Error("Failed to complete elapsed schedules", zap.Error(err))
		return
	}

	if count > 0 {
		s.logger.Info("Sweep finished", zap.Int("completed", count))
	}
}
