package nodes

import "context"

// NodeTypeTextInput — тип узла статического текста.
const NodeTypeTextInput = "text_input"

// TextInputNode — узел-источник статического текста.
//
// Конфигурация:
//
//	{"text": "hello world"}
//
// Outputs:
//
//	{"text": "hello world"}
//
// Обычно это входной узел графа без зависимостей.
type TextInputNode struct{}

// NewTextInputNode создаёт новый TextInputNode.
func NewTextInputNode() *TextInputNode {
	return &TextInputNode{}
}

// Type возвращает тип узла.
func (n *TextInputNode) Type() string {
	return NodeTypeTextInput
}

// ExecuteSafe возвращает текст из конфигурации.
// Текст из входов (если кто-то направил ребро в text_input) имеет
// приоритет над статической конфигурацией.
func (n *TextInputNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	text := GetConfigString(inputs, "text")
	if text == "" {
		text = GetConfigString(config, "text")
	}
	if text == "" {
		return Failure("text_input: text is required"), nil
	}

	return map[string]any{"text": text}, nil
}

// EstimateCost возвращает 0 — узел не делает внешних вызовов.
func (n *TextInputNode) EstimateCost(inputs, config map[string]any) float64 {
	return 0
}
