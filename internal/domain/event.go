package domain

import "time"

// EventType — тип события в стриме run.
type EventType string

// Типы событий.
const (
	// EventConnected — синтетическое событие, отправляется подписчику
	// первым, до любых событий выполнения.
	EventConnected EventType = "connected"

	// EventNodeStarted — узел начал выполнение.
	EventNodeStarted EventType = "node_started"

	// EventNodeCompleted — узел успешно завершён.
	EventNodeCompleted EventType = "node_completed"

	// EventNodeFailed — узел завершился с ошибкой.
	EventNodeFailed EventType = "node_failed"

	// EventLog — лог-событие уровня workflow (старт, завершение).
	EventLog EventType = "log"

	// EventComplete — синтетическое событие конца стрима.
	// Отправляется после терминального лог-события и grace-задержки.
	EventComplete EventType = "complete"
)

// StreamEvent — событие жизненного цикла run для внешних подписчиков.
//
// События эфемерны: они только ретранслируются и никогда не сохраняются.
type StreamEvent struct {
	// Type — тип события.
	Type EventType `json:"type"`

	// NodeID — узел, к которому относится событие (пустой для
	// событий уровня run).
	NodeID string `json:"node_id,omitempty"`

	// RunID — идентификатор run.
	RunID string `json:"run_id"`

	// Data — полезная нагрузка события.
	Data map[string]any `json:"data,omitempty"`

	// Timestamp — время создания события.
	Timestamp time.Time `json:"timestamp"`
}

// NewStreamEvent создаёт событие с текущим временем.
func NewStreamEvent(t EventType, runID, nodeID string, data map[string]any) StreamEvent {
	return StreamEvent{
		Type:      t,
		NodeID:    nodeID,
		RunID:     runID,
		Data:      data,
		Timestamp: time.Now(),
	}
}
