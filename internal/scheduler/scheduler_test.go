package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLauncher записывает запуски вместо реального исполнения.
type fakeLauncher struct {
	mu       sync.Mutex
	launched []string // caller IDs
	err      error
}

func (f *fakeLauncher) Launch(_ context.Context, g *domain.Graph, callerID string) (*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.launched = append(f.launched, callerID)
	return domain.NewRun(g.ID, callerID), nil
}

func (f *fakeLauncher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.launched)
}

func testGraph() *domain.Graph {
	return &domain.Graph{
		ID: "g-sched",
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "text_input", Config: map[string]any{"text": "hi"}},
		},
	}
}

func TestCalculateNextDue(t *testing.T) {
	from := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue("0 3 * * *", "UTC", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 6, 16, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_Timezone(t *testing.T) {
	from := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	// 03:00 в Москве (UTC+3) — это 00:00 UTC.
	next, err := CalculateNextDue("0 3 * * *", "Europe/Moscow", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	from := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue("0 12 * * *", "Not/AZone", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_InvalidExpr(t *testing.T) {
	if _, err := CalculateNextDue("not a cron", "UTC", time.Now()); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("99 * * * *"); err == nil {
		t.Error("expected error for out-of-range minute")
	}
}

func TestAdd_RejectsInvalidCron(t *testing.T) {
	s := New(Config{Launcher: &fakeLauncher{}, Logger: testLogger()})

	err := s.Add(Schedule{Name: "bad", CronExpr: "* * *", Graph: testGraph()})
	if err == nil {
		t.Fatal("expected error for malformed cron expression")
	}
	if s.Count() != 0 {
		t.Errorf("invalid schedule must not be registered, got %d", s.Count())
	}
}

func TestAdd_RejectsEmptyGraph(t *testing.T) {
	s := New(Config{Launcher: &fakeLauncher{}, Logger: testLogger()})

	if err := s.Add(Schedule{Name: "empty", CronExpr: "* * * * *"}); err == nil {
		t.Fatal("expected error for nil graph")
	}
}

func TestTick_SkipsFutureSchedules(t *testing.T) {
	launcher := &fakeLauncher{}
	s := New(Config{Launcher: launcher, Logger: testLogger()})

	// "0 3 * * *" практически никогда не due сразу после Add.
	if err := s.Add(Schedule{Name: "nightly", CronExpr: "0 3 * * *", Graph: testGraph()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Tick(context.Background())

	if launcher.count() != 0 {
		t.Errorf("future schedule must not fire, got %d launches", launcher.count())
	}
}

func TestTick_LaunchesDueSchedule(t *testing.T) {
	launcher := &fakeLauncher{}
	s := New(Config{Launcher: launcher, Logger: testLogger()})

	if err := s.Add(Schedule{Name: "due", CronExpr: "* * * * *", Graph: testGraph()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rewind(s, "due")

	s.Tick(context.Background())

	if launcher.count() != 1 {
		t.Fatalf("expected 1 launch, got %d", launcher.count())
	}
	if got := launcher.launched[0]; got != "scheduler:due" {
		t.Errorf("expected default caller id, got %q", got)
	}
}

func TestTick_AdvancesNextDue(t *testing.T) {
	launcher := &fakeLauncher{}
	s := New(Config{Launcher: launcher, Logger: testLogger()})

	if err := s.Add(Schedule{Name: "once", CronExpr: "0 3 * * *", Graph: testGraph()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rewind(s, "once")

	s.Tick(context.Background())
	s.Tick(context.Background())

	if launcher.count() != 1 {
		t.Errorf("schedule must fire once per due time, got %d launches", launcher.count())
	}
}

func TestTick_FailedLaunchDoesNotBlockOthers(t *testing.T) {
	failing := &fakeLauncher{err: context.DeadlineExceeded}
	s := New(Config{Launcher: failing, Logger: testLogger()})

	if err := s.Add(Schedule{Name: "a", CronExpr: "* * * * *", Graph: testGraph()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add(Schedule{Name: "b", CronExpr: "* * * * *", Graph: testGraph()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rewind(s, "a")
	rewind(s, "b")

	s.Tick(context.Background())

	// Оба расписания сдвинуты несмотря на ошибки запуска.
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if !e.nextDue.After(time.Now()) {
			t.Errorf("schedule %q was not advanced after failed launch", e.Name)
		}
	}
}

func TestTick_CustomCallerID(t *testing.T) {
	launcher := &fakeLauncher{}
	s := New(Config{Launcher: launcher, Logger: testLogger()})

	if err := s.Add(Schedule{Name: "c", CronExpr: "* * * * *", Graph: testGraph(), CallerID: "ops"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rewind(s, "c")

	s.Tick(context.Background())

	if launcher.count() != 1 || launcher.launched[0] != "ops" {
		t.Errorf("expected launch with caller id ops, got %v", launcher.launched)
	}
}

// rewind делает расписание due, отматывая next_due в прошлое.
func rewind(s *Scheduler, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Name == name {
			e.nextDue = time.Now().Add(-time.Minute)
		}
	}
}
