package domain

import "time"

// NodeResult — результат выполнения одного узла в рамках run.
//
// Создаётся ровно один раз на узел за run и после этого неизменяем.
type NodeResult struct {
	// NodeID — идентификатор узла.
	NodeID string `json:"node_id"`

	// Status — статус выполнения: COMPLETED или FAILED.
	Status NodeStatus `json:"status"`

	// Output — выходные данные узла. Nil при FAILED.
	Output map[string]any `json:"output,omitempty"`

	// Error — текст ошибки. Пустой при COMPLETED.
	Error string `json:"error,omitempty"`

	// Cost — стоимость выполнения узла.
	// 0 для упавших узлов и узлов без внешних вызовов.
	Cost float64 `json:"cost"`

	// DurationMs — длительность выполнения в миллисекундах.
	DurationMs int64 `json:"duration_ms"`

	// TokensUsed — использованные токены по категориям
	// (prompt_tokens, completion_tokens, total_tokens). Nil, если
	// узел не работает с токенами.
	TokensUsed map[string]int `json:"tokens_used,omitempty"`

	// StartedAt — время начала выполнения узла.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения узла.
	CompletedAt time.Time `json:"completed_at"`

	// Display — презентационный конверт результата.
	// Заполняется NodeRunner'ом, никогда не влияет на выполнение.
	Display *Envelope `json:"display,omitempty"`
}

// Envelope — нормализованное презентационное представление результата
// узла. Используется только для отображения: данные внутри ограничены
// по размеру и не участвуют в передаче между узлами.
type Envelope struct {
	// DisplayType — тег типа отображения (text, table, document, generic).
	DisplayType string `json:"display_type"`

	// Metadata — ограниченные по размеру метаданные результата.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Actions — предлагаемые действия над результатом.
	Actions []string `json:"actions,omitempty"`

	// Attachments — ссылки на полные данные (имена полей output).
	Attachments []string `json:"attachments,omitempty"`
}
