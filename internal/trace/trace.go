// Package trace — наблюдение за выполнением запусков.
//
// Tracer получает уведомления о жизненном цикле запуска и его узлов.
// Все вызовы best-effort: реализация не должна возвращать ошибки
// выполнению и не должна блокировать его надолго.
package trace

import (
	"context"
	"log/slog"
	"sort"
)

// payloadLimit — максимальная длина сериализуемого значения в span.
const payloadLimit = 1000

// Tracer наблюдает за выполнением запуска.
type Tracer interface {
	// StartTrace отмечает начало запуска.
	StartTrace(ctx context.Context, runID, graphID string)

	// StartSpan отмечает начало выполнения узла.
	StartSpan(ctx context.Context, runID, nodeID, nodeType string, inputs map[string]any)

	// CompleteSpan отмечает завершение узла.
	CompleteSpan(ctx context.Context, runID, nodeID string, output map[string]any, errMsg string)

	// CompleteTrace отмечает завершение запуска.
	CompleteTrace(ctx context.Context, runID string, status string, totalCost float64)
}

// NopTracer — трассировщик-заглушка.
type NopTracer struct{}

func (NopTracer) StartTrace(ctx context.Context, runID, graphID string) {}

func (NopTracer) StartSpan(ctx context.Context, runID, nodeID, nodeType string, inputs map[string]any) {
}

func (NopTracer) CompleteSpan(ctx context.Context, runID, nodeID string, output map[string]any, errMsg string) {
}

func (NopTracer) CompleteTrace(ctx context.Context, runID string, status string, totalCost float64) {}

// LogTracer пишет события трассировки в структурированный лог.
// Размер полезной нагрузки ограничивается, чтобы не раздувать логи.
type LogTracer struct {
	logger *slog.Logger
}

// NewLogTracer создаёт LogTracer.
func NewLogTracer(logger *slog.Logger) *LogTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTracer{logger: logger}
}

func (t *LogTracer) StartTrace(ctx context.Context, runID, graphID string) {
	t.logger.Info("trace started", "run_id", runID, "graph_id", graphID)
}

func (t *LogTracer) StartSpan(ctx context.Context, runID, nodeID, nodeType string, inputs map[string]any) {
	t.logger.Info("span started",
		"run_id", runID,
		"node_id", nodeID,
		"node_type", nodeType,
		"input_fields", fieldNames(inputs),
	)
}

func (t *LogTracer) CompleteSpan(ctx context.Context, runID, nodeID string, output map[string]any, errMsg string) {
	if errMsg != "" {
		t.logger.Warn("span failed",
			"run_id", runID,
			"node_id", nodeID,
			"error", capString(errMsg),
		)
		return
	}
	t.logger.Info("span completed",
		"run_id", runID,
		"node_id", nodeID,
		"output_fields", fieldNames(output),
	)
}

func (t *LogTracer) CompleteTrace(ctx context.Context, runID string, status string, totalCost float64) {
	t.logger.Info("trace completed",
		"run_id", runID,
		"status", status,
		"total_cost", totalCost,
	)
}

// fieldNames возвращает имена полей вместо значений: содержимое может
// быть большим и чувствительным.
func fieldNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// capString обрезает строку до payloadLimit.
func capString(s string) string {
	if len(s) > payloadLimit {
		return s[:payloadLimit] + "…"
	}
	return s
}
