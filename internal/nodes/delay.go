package nodes

import (
	"context"
	"fmt"
	"time"
)

const (
	// NodeTypeDelay — тип узла задержки.
	NodeTypeDelay = "delay"

	// Ключи конфигурации delay.
	configDurationSec = "duration_sec"
	configDurationMs  = "duration_ms"
)

// DelayNode — узел задержки.
//
// Приостанавливает выполнение на указанное время.
//
// Конфигурация:
//
//	{"duration_sec": 10}   // или
//	{"duration_ms": 500}
//
// Outputs:
//
//	{"duration_ms": 10000}
type DelayNode struct{}

// NewDelayNode создаёт новый DelayNode.
func NewDelayNode() *DelayNode {
	return &DelayNode{}
}

// Type возвращает тип узла.
func (n *DelayNode) Type() string {
	return NodeTypeDelay
}

// ExecuteSafe выполняет задержку.
func (n *DelayNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	duration, err := n.parseDuration(config)
	if err != nil {
		return Failure(err.Error()), nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	case <-timer.C:
		return map[string]any{
			"duration_ms": duration.Milliseconds(),
		}, nil
	}
}

// EstimateCost возвращает 0.
func (n *DelayNode) EstimateCost(inputs, config map[string]any) float64 {
	return 0
}

// parseDuration извлекает длительность из конфигурации.
func (n *DelayNode) parseDuration(config map[string]any) (time.Duration, error) {
	if sec := GetConfigInt(config, configDurationSec); sec > 0 {
		return time.Duration(sec) * time.Second, nil
	}
	if ms := GetConfigInt(config, configDurationMs); ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, fmt.Errorf("%w: delay: duration_sec or duration_ms required", ErrInvalidConfig)
}
