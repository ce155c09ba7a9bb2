package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки структурной валидации графа.
var (
	// ErrEmptyGraph — граф не содержит узлов.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnregisteredNodeType — тип узла не зарегистрирован в реестре.
	ErrUnregisteredNodeType = errors.New("unregistered node type")

	// ErrDanglingEdge — ребро ссылается на несуществующий узел.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrCyclicDependency — обнаружен цикл в графе.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// StructuralError — ошибка структуры графа с полным контекстом.
//
// Возникает строго до начала выполнения и прерывает весь run.
// Problems содержит все найденные проблемы данного вида (например,
// все незарегистрированные типы), Cycle — упорядоченный замкнутый
// путь при ErrCyclicDependency.
type StructuralError struct {
	// Problems — список проблем в человекочитаемом виде.
	Problems []string

	// Cycle — замкнутый путь цикла (первый и последний элемент
	// совпадают). Заполняется только для ErrCyclicDependency.
	Cycle []string

	// Err — базовая ошибка для errors.Is.
	Err error
}

// Error реализует интерфейс error.
func (e *StructuralError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%v: %s", e.Err, strings.Join(e.Cycle, " -> "))
	}
	if len(e.Problems) > 0 {
		return fmt.Sprintf("%v: %s", e.Err, strings.Join(e.Problems, "; "))
	}
	return e.Err.Error()
}

// Unwrap возвращает базовую ошибку.
func (e *StructuralError) Unwrap() error {
	return e.Err
}

// NewStructuralError создаёт ошибку с базовой ошибкой и списком проблем.
func NewStructuralError(err error, problems ...string) *StructuralError {
	return &StructuralError{
		Problems: problems,
		Err:      err,
	}
}

// NewCycleError создаёт ошибку цикла с замкнутым путём.
func NewCycleError(cycle []string) *StructuralError {
	return &StructuralError{
		Cycle: cycle,
		Err:   ErrCyclicDependency,
	}
}
