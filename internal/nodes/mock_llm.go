package nodes

import (
	"context"
	"fmt"
	"strings"
)

const (
	// NodeTypeMockLLM — тип детерминированного LLM-узла.
	NodeTypeMockLLM = "mock_llm"

	// defaultCostPerKiloToken — стоимость за 1000 токенов по умолчанию.
	defaultCostPerKiloToken = 0.002
)

// MockLLMNode — детерминированный генератор текста.
//
// Имитирует LLM-узел: принимает text/query, возвращает ответ, токены
// и стоимость. Используется в тестах и локальных запусках вместо
// реального провайдера.
//
// Конфигурация:
//
//	{
//	    "model": "mock-small",
//	    "cost_per_1k_tokens": 0.002,
//	    "prefix": "echo"
//	}
//
// Outputs:
//
//	{
//	    "text": "echo: <вход>",
//	    "content": "echo: <вход>",
//	    "model": "mock-small",
//	    "tokens_used": {"prompt_tokens": N, "completion_tokens": N, "total_tokens": 2N},
//	    "cost": 0.000123
//	}
type MockLLMNode struct{}

// NewMockLLMNode создаёт новый MockLLMNode.
func NewMockLLMNode() *MockLLMNode {
	return &MockLLMNode{}
}

// Type возвращает тип узла.
func (n *MockLLMNode) Type() string {
	return NodeTypeMockLLM
}

// ExecuteSafe генерирует детерминированный ответ.
func (n *MockLLMNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	prompt := GetConfigString(inputs, "text")
	if prompt == "" {
		prompt = GetConfigString(inputs, "query")
	}
	if prompt == "" {
		prompt = GetConfigString(config, "prompt")
	}
	if prompt == "" {
		return Failure("mock_llm: text or query input is required"), nil
	}

	prefix := GetConfigString(config, "prefix")
	if prefix == "" {
		prefix = "echo"
	}
	model := GetConfigString(config, "model")
	if model == "" {
		model = "mock-small"
	}

	answer := prefix + ": " + prompt

	promptTokens := countTokens(prompt)
	completionTokens := countTokens(answer)
	total := promptTokens + completionTokens

	return map[string]any{
		"text":    answer,
		"content": answer,
		"model":   model,
		"tokens_used": map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      total,
		},
		"cost": n.costFor(total, config),
	}, nil
}

// EstimateCost оценивает стоимость по длине входа.
func (n *MockLLMNode) EstimateCost(inputs, config map[string]any) float64 {
	prompt := GetConfigString(inputs, "text")
	if prompt == "" {
		prompt = GetConfigString(inputs, "query")
	}
	// Вход + ответ примерно той же длины.
	return n.costFor(countTokens(prompt)*2, config)
}

// costFor вычисляет стоимость для количества токенов.
func (n *MockLLMNode) costFor(tokens int, config map[string]any) float64 {
	rate := GetConfigFloat(config, "cost_per_1k_tokens")
	if rate <= 0 {
		rate = defaultCostPerKiloToken
	}
	return float64(tokens) / 1000 * rate
}

// countTokens — грубая оценка: токен на слово.
func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}
