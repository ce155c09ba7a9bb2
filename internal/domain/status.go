package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	RUNNING → COMPLETED
//	        ↘ FAILED
//
// Run создаётся сразу в статусе RUNNING. FAILED означает структурную
// ошибку (цикл, висячее ребро, неизвестный тип узла) или неожиданную
// ошибку оркестратора. Падение отдельных узлов НЕ переводит run в
// FAILED — оно видно только в Results и Trace.
type RunStatus string

const (
	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusCompleted — run завершён (независимо от статусов узлов).
	RunStatusCompleted RunStatus = "COMPLETED"

	// RunStatusFailed — run не смог выполниться из-за структурной ошибки.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// NodeStatus — статус выполнения отдельного узла.
type NodeStatus string

const (
	// NodeCompleted — узел успешно выполнен.
	NodeCompleted NodeStatus = "COMPLETED"

	// NodeFailed — узел завершился с ошибкой.
	NodeFailed NodeStatus = "FAILED"
)

// TraceAction — тип записи в трассировке run.
type TraceAction string

const (
	// TraceStarted — узел начал выполнение.
	TraceStarted TraceAction = "started"

	// TraceCompleted — узел успешно завершён.
	TraceCompleted TraceAction = "completed"

	// TraceError — узел завершился с ошибкой.
	TraceError TraceAction = "error"
)
