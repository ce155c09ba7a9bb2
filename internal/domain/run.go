package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — экземпляр выполнения графа.
//
// Run создаётся в момент старта выполнения (сразу RUNNING) и мутируется
// только оркестратором. После перехода в терминальный статус run
// считается замороженным — дальнейшие изменения запрещены.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// GraphID — идентификатор выполняемого графа.
	GraphID string `json:"graph_id"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения (успешного или с ошибкой).
	// Nil, если run ещё выполняется.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// TotalCost — суммарная стоимость всех узлов run.
	TotalCost float64 `json:"total_cost"`

	// Results — результаты выполнения узлов (nodeID → NodeResult).
	Results map[string]*NodeResult `json:"results"`

	// Trace — упорядоченная трассировка выполнения (append-only).
	Trace []TraceStep `json:"trace"`

	// Error — текст структурной ошибки, если run завершился FAILED.
	Error string `json:"error,omitempty"`

	// CallerID — идентификатор инициатора запуска.
	// Прокидывается в конфигурацию каждого узла.
	CallerID string `json:"caller_id,omitempty"`
}

// NewRun создаёт новый run в статусе RUNNING.
func NewRun(graphID, callerID string) *Run {
	return &Run{
		ID:        uuid.New(),
		GraphID:   graphID,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
		Results:   make(map[string]*NodeResult),
		Trace:     make([]TraceStep, 0),
		CallerID:  callerID,
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// IsFinished возвращает true, если run завершён.
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkCompleted переводит run в статус COMPLETED.
func (r *Run) MarkCompleted() {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
}

// MarkFailed переводит run в статус FAILED со структурной ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.CompletedAt = &now
	r.Error = err
}

// RecordResult записывает результат узла и обновляет TotalCost.
func (r *Run) RecordResult(res *NodeResult) {
	r.Results[res.NodeID] = res
	r.TotalCost += res.Cost
}

// AppendTrace добавляет запись в трассировку.
func (r *Run) AppendTrace(nodeID string, action TraceAction, data map[string]any) {
	r.Trace = append(r.Trace, TraceStep{
		NodeID:    nodeID,
		Timestamp: time.Now(),
		Action:    action,
		Data:      data,
	})
}

// TraceStep — одна запись трассировки выполнения run.
type TraceStep struct {
	// NodeID — узел, к которому относится запись.
	NodeID string `json:"node_id"`

	// Timestamp — время записи.
	Timestamp time.Time `json:"timestamp"`

	// Action — тип записи: started, completed, error.
	Action TraceAction `json:"action"`

	// Data — дополнительные данные (превью результата, текст ошибки).
	Data map[string]any `json:"data,omitempty"`
}
