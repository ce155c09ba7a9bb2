package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrRunNotFound — запуск не найден.
	ErrRunNotFound = errors.New("run not found")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)
