package orchestrator

import "strings"

// previewLimit — максимальная длина строкового поля в превью события.
const previewLimit = 200

// fullFidelityPatterns — типы узлов, чей результат передаётся в события
// без обрезки: подписчики показывают сгенерированный текст целиком.
var fullFidelityPatterns = []string{"llm", "chat", "completion"}

// isFullFidelity проверяет, освобождён ли тип узла от обрезки превью.
func isFullFidelity(nodeType string) bool {
	t := strings.ToLower(nodeType)
	for _, p := range fullFidelityPatterns {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// previewOutput строит превью результата для события.
//
// Строковые значения обрезаются до previewLimit, списки и вложенные
// объекты заменяются сводкой. Полные данные всегда доступны через
// GET /runs/{id}. Узлы полной точности передаются как есть.
func previewOutput(nodeType string, output map[string]any) map[string]any {
	if output == nil {
		return nil
	}
	if isFullFidelity(nodeType) {
		return output
	}

	preview := make(map[string]any, len(output))
	for k, v := range output {
		switch t := v.(type) {
		case string:
			if len(t) > previewLimit {
				preview[k] = t[:previewLimit] + "…"
			} else {
				preview[k] = t
			}
		case []any:
			preview[k] = map[string]any{"items": len(t)}
		case map[string]any:
			preview[k] = map[string]any{"fields": len(t)}
		default:
			preview[k] = v
		}
	}
	return preview
}
