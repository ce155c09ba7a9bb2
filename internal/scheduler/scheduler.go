package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
)

// Launcher запускает граф асинхронно. Реализуется оркестратором.
type Launcher interface {
	Launch(ctx context.Context, g *domain.Graph, callerID string) (*domain.Run, error)
}

// Schedule — одно расписание: cron-выражение плюс граф.
type Schedule struct {
	// Name — имя расписания для логов.
	Name string `json:"name"`

	// CronExpr — cron-выражение (пять полей).
	CronExpr string `json:"cron"`

	// Timezone — IANA timezone (default: UTC).
	Timezone string `json:"timezone,omitempty"`

	// Graph — граф, запускаемый по расписанию.
	Graph *domain.Graph `json:"graph"`

	// CallerID — инициатор для создаваемых runs.
	CallerID string `json:"caller_id,omitempty"`
}

// entry — расписание с вычисленным временем следующего запуска.
type entry struct {
	Schedule
	nextDue time.Time
}

// Scheduler запускает графы по расписанию.
type Scheduler struct {
	launcher Launcher
	logger   *slog.Logger

	mu      sync.Mutex
	entries []*entry
}

// Config — конфигурация Scheduler.
type Config struct {
	Launcher Launcher
	Logger   *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		launcher: cfg.Launcher,
		logger:   logger,
	}
}

// Add регистрирует расписание. Невалидное cron-выражение — ошибка.
func (s *Scheduler) Add(sched Schedule) error {
	if sched.Graph == nil || len(sched.Graph.Nodes) == 0 {
		return fmt.Errorf("schedule %q: graph is empty", sched.Name)
	}
	if err := ValidateCronExpr(sched.CronExpr); err != nil {
		return fmt.Errorf("schedule %q: %w", sched.Name, err)
	}

	next, err := CalculateNextDue(sched.CronExpr, sched.Timezone, time.Now())
	if err != nil {
		return fmt.Errorf("schedule %q: %w", sched.Name, err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, &entry{Schedule: sched, nextDue: next})
	s.mu.Unlock()

	s.logger.Info("schedule registered",
		"schedule", sched.Name,
		"cron", sched.CronExpr,
		"next_due", next,
	)
	return nil
}

// Count возвращает количество зарегистрированных расписаний.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Tick выполняет один тик: запускает все due расписания и сдвигает их
// next_due. Ошибка одного расписания не блокирует остальные.
func (s *Scheduler) Tick(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var due []*entry
	for _, e := range s.entries {
		if !e.nextDue.After(now) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		s.fire(ctx, e, now)
	}
}

// Start запускает цикл тиков до отмены контекста.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// fire запускает одно due расписание и сдвигает его next_due.
func (s *Scheduler) fire(ctx context.Context, e *entry, now time.Time) {
	next, err := CalculateNextDue(e.CronExpr, e.Timezone, now)
	if err != nil {
		// Недостижимо после Add, но расписание с испорченным
		// выражением лучше не запускать в цикле.
		s.logger.Error("failed to advance schedule, skipping",
			"schedule", e.Name,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	e.nextDue = next
	s.mu.Unlock()

	callerID := e.CallerID
	if callerID == "" {
		callerID = "scheduler:" + e.Name
	}

	run, err := s.launcher.Launch(ctx, e.Graph, callerID)
	if err != nil {
		s.logger.Error("scheduled run failed to launch",
			"schedule", e.Name,
			"error", err,
		)
		return
	}

	s.logger.Info("scheduled run launched",
		"schedule", e.Name,
		"run_id", run.ID,
		"next_due", next,
	)
}
