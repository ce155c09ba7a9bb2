package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/collect"
	"github.com/shaiso/Cascade/internal/costs"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/nodes"
	"github.com/shaiso/Cascade/internal/runner"
	"github.com/shaiso/Cascade/internal/trace"
)

// Default configuration values.
const (
	defaultStreamGrace      = 2 * time.Second
	defaultFinishedRetained = 100
)

// EventStream — очереди событий для подписчиков (stream.Bus).
type EventStream interface {
	CreateQueue(runID string)
	Publish(runID string, ev domain.StreamEvent)
	Remove(runID string)
}

// EventSink — дополнительный получатель событий жизненного цикла
// (например, публикатор MQ). Доставка best-effort.
type EventSink interface {
	Publish(runID string, ev domain.StreamEvent)
}

// RunStore — персистентное хранилище запусков. Сохранение best-effort:
// ошибка логируется и не влияет на результат выполнения.
type RunStore interface {
	SaveRun(ctx context.Context, run *domain.Run) error
}

// Orchestrator выполняет графы.
type Orchestrator struct {
	registry  *nodes.Registry
	collector *collect.Collector
	runner    *runner.Runner
	stream    EventStream
	sinks     []EventSink
	ledger    *costs.Ledger
	tracer    trace.Tracer
	store     RunStore

	// Active и завершённые runs (runID → Run). Завершённые хранятся
	// ограниченным окном для GET /runs.
	activeRuns   map[uuid.UUID]*domain.Run
	finishedRuns map[uuid.UUID]*domain.Run
	finishedIDs  []uuid.UUID
	mu           sync.RWMutex

	streamGrace      time.Duration
	finishedRetained int

	logger    *slog.Logger
	stopped   bool
	stoppedMu sync.RWMutex
	wg        sync.WaitGroup
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Registry — реестр типов узлов (обязателен).
	Registry *nodes.Registry

	// Collector — сборщик входов (default: collect.New с умолчаниями).
	Collector *collect.Collector

	// Runner — исполнитель узлов (default: runner.New над Registry).
	Runner *runner.Runner

	// Stream — очереди событий для подписчиков (опционально).
	Stream EventStream

	// Sinks — дополнительные получатели событий (опционально).
	Sinks []EventSink

	// Ledger — учёт стоимости (default: ledger без коллекторов).
	Ledger *costs.Ledger

	// Tracer — трассировщик (default: trace.NopTracer).
	Tracer trace.Tracer

	// Store — персистентное хранилище запусков (опционально).
	Store RunStore

	// StreamGrace — отсрочка закрытия стрима после завершения
	// (default: 2s).
	StreamGrace time.Duration

	// FinishedRetained — сколько завершённых запусков держать в памяти
	// (default: 100).
	FinishedRetained int

	// Logger — логгер.
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	collector := cfg.Collector
	if collector == nil {
		collector = collect.New(collect.Config{Logger: logger})
	}

	r := cfg.Runner
	if r == nil {
		r = runner.New(runner.Config{Registry: cfg.Registry, Logger: logger})
	}

	ledger := cfg.Ledger
	if ledger == nil {
		ledger = costs.NewLedger(logger)
	}

	var tracer trace.Tracer = cfg.Tracer
	if tracer == nil {
		tracer = trace.NopTracer{}
	}

	grace := cfg.StreamGrace
	if grace <= 0 {
		grace = defaultStreamGrace
	}

	retained := cfg.FinishedRetained
	if retained <= 0 {
		retained = defaultFinishedRetained
	}

	return &Orchestrator{
		registry:         cfg.Registry,
		collector:        collector,
		runner:           r,
		stream:           cfg.Stream,
		sinks:            cfg.Sinks,
		ledger:           ledger,
		tracer:           tracer,
		store:            cfg.Store,
		activeRuns:       make(map[uuid.UUID]*domain.Run),
		finishedRuns:     make(map[uuid.UUID]*domain.Run),
		streamGrace:      grace,
		finishedRetained: retained,
		logger:           logger,
	}
}

// Execute выполняет граф синхронно и возвращает завершённый run.
//
// Структурная ошибка графа возвращается вызывающему вместе с run в
// статусе FAILED. Падения отдельных узлов фиксируются в результатах и
// не считаются ошибкой выполнения: run завершается COMPLETED.
// Неперехваченная ошибка вне узла (паника коллаборатора) переводит run
// в FAILED и возвращается как ошибка.
func (o *Orchestrator) Execute(ctx context.Context, g *domain.Graph, callerID string) (*domain.Run, error) {
	if o.IsStopped() {
		return nil, ErrOrchestratorStopped
	}

	run, order, err := o.prepare(g, callerID)
	if err != nil {
		return run, err
	}

	err = o.executeOrdered(ctx, run, g, order)
	return o.snapshot(run.ID), err
}

// Launch запускает выполнение графа асинхронно.
//
// Валидация выполняется синхронно: структурная ошибка возвращается
// сразу. Возвращённый run — снимок на момент старта; актуальное
// состояние доступно через GetRun.
func (o *Orchestrator) Launch(ctx context.Context, g *domain.Graph, callerID string) (*domain.Run, error) {
	if o.IsStopped() {
		return nil, ErrOrchestratorStopped
	}

	run, order, err := o.prepare(g, callerID)
	if err != nil {
		return run, err
	}

	runID := run.ID
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		// Запуск живёт дольше HTTP-запроса, который его породил.
		// Неперехваченная ошибка финализирует run внутри executeOrdered.
		_ = o.executeOrdered(context.WithoutCancel(ctx), run, g, order)
	}()

	return o.snapshot(runID), nil
}

// prepare валидирует граф, строит порядок и регистрирует новый run.
//
// При структурной ошибке возвращает run в статусе FAILED: ошибка
// графа — это ошибка запуска, а не узла.
func (o *Orchestrator) prepare(g *domain.Graph, callerID string) (*domain.Run, []string, error) {
	run := domain.NewRun(g.ID, callerID)

	if err := engine.Validate(g, o.registry); err != nil {
		o.failStructurally(run, err)
		return run, nil, err
	}

	order, err := engine.BuildOrder(g)
	if err != nil {
		o.failStructurally(run, err)
		return run, nil, err
	}

	o.mu.Lock()
	o.activeRuns[run.ID] = run
	o.mu.Unlock()

	if o.stream != nil {
		o.stream.CreateQueue(run.ID.String())
	}

	return run, order, nil
}

// failStructurally финализирует run со структурной ошибкой.
func (o *Orchestrator) failStructurally(run *domain.Run, err error) {
	run.MarkFailed(err.Error())
	o.persist(run)
	o.retire(run)

	o.logger.Error("run failed structurally",
		"run_id", run.ID,
		"graph_id", run.GraphID,
		"error", err,
	)
}

// executeOrdered выполняет узлы run в топологическом порядке.
//
// Граница неперехваченных ошибок: паника за пределами узла (runner
// ловит свои) финализирует run в FAILED, закрывает стрим и
// возвращается как ошибка вместо обрушения процесса.
func (o *Orchestrator) executeOrdered(ctx context.Context, run *domain.Run, g *domain.Graph, order []string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("uncaught error: %v", rec)
			o.failUncaught(ctx, run, err)
		}
	}()

	runID := run.ID.String()

	o.tracer.StartTrace(ctx, runID, g.ID)
	o.emit(runID, domain.NewStreamEvent(domain.EventLog, runID, "", map[string]any{
		"message": "run started",
		"status":  string(domain.RunStatusRunning),
	}))

	o.logger.Info("run started",
		"run_id", runID,
		"graph_id", g.ID,
		"nodes", len(order),
	)

	outputs := make(map[string]map[string]any, len(order))

	for _, nodeID := range order {
		def := g.NodeByID(nodeID)
		if def == nil {
			// Недостижимо после валидации.
			continue
		}

		o.emit(runID, domain.NewStreamEvent(domain.EventNodeStarted, runID, nodeID, map[string]any{
			"node_type": def.Type,
			"label":     def.Label,
		}))

		inputs := o.collector.Collect(g, nodeID, outputs)
		o.tracer.StartSpan(ctx, runID, nodeID, def.Type, inputs)

		o.appendTrace(run, nodeID, domain.TraceStarted, nil)

		res := o.runner.Run(ctx, *def, inputs, runner.Metadata{
			RunID:    runID,
			GraphID:  g.ID,
			CallerID: run.CallerID,
		})

		o.mu.Lock()
		run.RecordResult(res)
		o.mu.Unlock()

		if res.Status == domain.NodeCompleted {
			outputs[nodeID] = res.Output
			o.appendTrace(run, nodeID, domain.TraceCompleted, map[string]any{
				"preview": previewOutput(def.Type, res.Output),
			})
			o.tracer.CompleteSpan(ctx, runID, nodeID, res.Output, "")
			o.emit(runID, domain.NewStreamEvent(domain.EventNodeCompleted, runID, nodeID, map[string]any{
				"node_type": def.Type,
				"output":    previewOutput(def.Type, res.Output),
				"cost":      res.Cost,
			}))
		} else {
			o.appendTrace(run, nodeID, domain.TraceError, map[string]any{
				"error": res.Error,
			})
			o.tracer.CompleteSpan(ctx, runID, nodeID, nil, res.Error)
			o.emit(runID, domain.NewStreamEvent(domain.EventNodeFailed, runID, nodeID, map[string]any{
				"node_type": def.Type,
				"error":     res.Error,
			}))
		}

		o.ledger.Track(ctx, runID, g.ID, def.Type, res)
	}

	o.finish(ctx, run)
	return nil
}

// failUncaught финализирует run после неперехваченной ошибки вне узла:
// статус FAILED, терминальное событие, стрим закрывается немедленно.
func (o *Orchestrator) failUncaught(ctx context.Context, run *domain.Run, cause error) {
	runID := run.ID.String()

	o.mu.Lock()
	if run.Status.IsTerminal() {
		o.mu.Unlock()
		return
	}
	run.MarkFailed(cause.Error())
	o.mu.Unlock()

	func() {
		// Повторная паника получателя не должна сорвать финализацию.
		defer func() { _ = recover() }()
		o.emit(runID, domain.NewStreamEvent(domain.EventLog, runID, "", map[string]any{
			"message": "run failed",
			"status":  string(domain.RunStatusFailed),
			"error":   cause.Error(),
		}))
		o.tracer.CompleteTrace(ctx, runID, string(domain.RunStatusFailed), run.TotalCost)
	}()

	o.persist(run)
	o.retire(run)

	if o.stream != nil {
		o.stream.Remove(runID)
	}

	o.logger.Error("run failed with uncaught error",
		"run_id", runID,
		"graph_id", run.GraphID,
		"error", cause,
	)
}

// finish финализирует успешно прошедший run.
func (o *Orchestrator) finish(ctx context.Context, run *domain.Run) {
	runID := run.ID.String()

	o.mu.Lock()
	run.MarkCompleted()
	o.mu.Unlock()

	o.emit(runID, domain.NewStreamEvent(domain.EventLog, runID, "", map[string]any{
		"message":    "run completed",
		"status":     string(domain.RunStatusCompleted),
		"total_cost": run.TotalCost,
	}))

	o.tracer.CompleteTrace(ctx, runID, string(run.Status), run.TotalCost)
	o.persist(run)
	o.retire(run)

	if o.stream != nil {
		o.stream.Remove(runID)
	}

	o.logger.Info("run completed",
		"run_id", runID,
		"graph_id", run.GraphID,
		"total_cost", run.TotalCost,
		"duration_ms", run.Duration().Milliseconds(),
	)
}

// retire переносит run из активных в окно завершённых.
func (o *Orchestrator) retire(run *domain.Run) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.activeRuns, run.ID)

	o.finishedRuns[run.ID] = run
	o.finishedIDs = append(o.finishedIDs, run.ID)
	for len(o.finishedIDs) > o.finishedRetained {
		oldest := o.finishedIDs[0]
		o.finishedIDs = o.finishedIDs[1:]
		delete(o.finishedRuns, oldest)
	}
}

// persist сохраняет run в хранилище. Best-effort.
func (o *Orchestrator) persist(run *domain.Run) {
	if o.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.store.SaveRun(ctx, run); err != nil {
		o.logger.Warn("failed to persist run",
			"run_id", run.ID,
			"error", err,
		)
	}
}

// emit рассылает событие стриму и дополнительным получателям.
func (o *Orchestrator) emit(runID string, ev domain.StreamEvent) {
	if o.stream != nil {
		o.stream.Publish(runID, ev)
	}
	for _, s := range o.sinks {
		s.Publish(runID, ev)
	}
}

// appendTrace добавляет запись трассировки под мьютексом.
func (o *Orchestrator) appendTrace(run *domain.Run, nodeID string, action domain.TraceAction, data map[string]any) {
	o.mu.Lock()
	run.AppendTrace(nodeID, action, data)
	o.mu.Unlock()
}

// GetRun возвращает снимок run по идентификатору.
func (o *Orchestrator) GetRun(runID uuid.UUID) (*domain.Run, error) {
	snap := o.snapshot(runID)
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return snap, nil
}

// ListRuns возвращает снимки активных и недавних запусков.
// Активные идут первыми.
func (o *Orchestrator) ListRuns() []*domain.Run {
	o.mu.RLock()
	ids := make([]uuid.UUID, 0, len(o.activeRuns)+len(o.finishedIDs))
	for id := range o.activeRuns {
		ids = append(ids, id)
	}
	// Завершённые — от новых к старым.
	for i := len(o.finishedIDs) - 1; i >= 0; i-- {
		ids = append(ids, o.finishedIDs[i])
	}
	o.mu.RUnlock()

	runs := make([]*domain.Run, 0, len(ids))
	for _, id := range ids {
		if snap := o.snapshot(id); snap != nil {
			runs = append(runs, snap)
		}
	}
	return runs
}

// ActiveRunsCount возвращает количество активных запусков.
func (o *Orchestrator) ActiveRunsCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.activeRuns)
}

// snapshot возвращает копию run для безопасного чтения во время
// выполнения. Результаты и трассировка неизменяемы после записи,
// поэтому копируются только контейнеры.
func (o *Orchestrator) snapshot(runID uuid.UUID) *domain.Run {
	o.mu.RLock()
	defer o.mu.RUnlock()

	run, ok := o.activeRuns[runID]
	if !ok {
		run, ok = o.finishedRuns[runID]
	}
	if !ok {
		return nil
	}

	cp := *run
	cp.Results = make(map[string]*domain.NodeResult, len(run.Results))
	for k, v := range run.Results {
		cp.Results[k] = v
	}
	cp.Trace = append([]domain.TraceStep(nil), run.Trace...)
	return &cp
}

// Stop останавливает приём новых запусков и ждёт завершения активных.
func (o *Orchestrator) Stop() {
	o.stoppedMu.Lock()
	o.stopped = true
	o.stoppedMu.Unlock()

	o.logger.Info("stopping orchestrator...")
	o.wg.Wait()
	o.logger.Info("orchestrator stopped")
}

// IsStopped проверяет, остановлен ли Orchestrator.
func (o *Orchestrator) IsStopped() bool {
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()
	return o.stopped
}
