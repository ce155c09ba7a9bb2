package nodes

import "errors"

// Ошибки узлов.
var (
	// ErrNodeNotFound — тип узла не найден в реестре.
	ErrNodeNotFound = errors.New("node type not found")

	// ErrInvalidConfig — невалидная конфигурация узла.
	ErrInvalidConfig = errors.New("invalid node config")

	// ErrNodeCancelled — выполнение узла отменено через context.
	ErrNodeCancelled = errors.New("node execution cancelled")
)
