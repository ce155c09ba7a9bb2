package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Cascade/internal/display"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/nodes"
)

// Metadata — метаданные запуска, добавляемые в конфигурацию узла.
// Узлы получают их наравне со статической конфигурацией графа.
type Metadata struct {
	RunID    string
	GraphID  string
	CallerID string
}

// Runner выполняет узлы и нормализует их результаты.
type Runner struct {
	registry *nodes.Registry
	display  *display.Registry
	logger   *slog.Logger
}

// Config — конфигурация Runner.
type Config struct {
	// Registry — реестр типов узлов (обязателен).
	Registry *nodes.Registry

	// Display — реестр форматтеров (default: display.NewRegistry()).
	Display *display.Registry

	// Logger — логгер.
	Logger *slog.Logger
}

// New создаёт новый Runner.
func New(cfg Config) *Runner {
	disp := cfg.Display
	if disp == nil {
		disp = display.NewRegistry()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		registry: cfg.Registry,
		display:  disp,
		logger:   logger,
	}
}

// Run выполняет один узел и возвращает его результат.
//
// Run никогда не возвращает ошибку: любой сбой узла — паника, ошибка
// ExecuteSafe, ожидаемая ошибка в результате — оформляется как
// NodeResult со статусом FAILED и нулевой стоимостью. Ответственность
// за реакцию на упавший узел лежит на вызывающем.
func (r *Runner) Run(ctx context.Context, def domain.NodeDef, inputs map[string]any, meta Metadata) *domain.NodeResult {
	started := time.Now().UTC()

	result := &domain.NodeResult{
		NodeID:    def.ID,
		StartedAt: started,
	}

	output, err := r.execute(ctx, def, inputs, meta)

	result.CompletedAt = time.Now().UTC()
	result.DurationMs = result.CompletedAt.Sub(started).Milliseconds()

	switch {
	case err != nil:
		result.Status = domain.NodeFailed
		result.Error = err.Error()

	case hasExpectedError(output):
		result.Status = domain.NodeFailed
		result.Error, _ = output["error"].(string)

	default:
		result.Status = domain.NodeCompleted
		result.Output = output
		result.Cost = r.resolveCost(def, inputs, output)
		result.TokensUsed = extractTokens(output)
		result.Display = r.display.Format(def.Type, output)
	}

	if result.Status == domain.NodeFailed {
		r.logger.Warn("node failed",
			"run_id", meta.RunID,
			"node_id", def.ID,
			"node_type", def.Type,
			"error", result.Error,
		)
	}

	return result
}

// execute вызывает ExecuteSafe под защитой от паники.
func (r *Runner) execute(ctx context.Context, def domain.NodeDef, inputs map[string]any, meta Metadata) (output map[string]any, err error) {
	node, err := r.registry.Get(def.Type)
	if err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			output = nil
			err = fmt.Errorf("node panic: %v", rec)
			r.logger.Error("node panicked",
				"run_id", meta.RunID,
				"node_id", def.ID,
				"panic", rec,
			)
		}
	}()

	return node.ExecuteSafe(ctx, inputs, mergeConfig(def.Config, meta))
}

// mergeConfig копирует статическую конфигурацию узла и добавляет
// метаданные запуска. Оригинал определения графа не мутируется.
func mergeConfig(config map[string]any, meta Metadata) map[string]any {
	merged := make(map[string]any, len(config)+3)
	for k, v := range config {
		merged[k] = v
	}
	if meta.RunID != "" {
		merged["run_id"] = meta.RunID
	}
	if meta.GraphID != "" {
		merged["graph_id"] = meta.GraphID
	}
	if meta.CallerID != "" {
		merged["caller_id"] = meta.CallerID
	}
	return merged
}

// resolveCost определяет стоимость узла: заявленная узлом стоимость
// имеет приоритет, иначе — оценка реализации.
func (r *Runner) resolveCost(def domain.NodeDef, inputs, output map[string]any) float64 {
	if c, ok := output["cost"].(float64); ok && c >= 0 {
		return c
	}

	node, err := r.registry.Get(def.Type)
	if err != nil {
		return 0
	}
	return node.EstimateCost(inputs, def.Config)
}

// hasExpectedError проверяет наличие ожидаемой ошибки в результате.
func hasExpectedError(output map[string]any) bool {
	s, ok := output["error"].(string)
	return ok && s != ""
}

// extractTokens извлекает счётчики токенов из результата.
func extractTokens(output map[string]any) map[string]int {
	raw, ok := output["tokens_used"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	tokens := make(map[string]int, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case int:
			tokens[k] = n
		case int64:
			tokens[k] = int(n)
		case float64:
			tokens[k] = int(n)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
