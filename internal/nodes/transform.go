package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
)

const (
	// NodeTypeTransform — тип узла трансформации.
	NodeTypeTransform = "template_transform"

	// Ключ конфигурации.
	configMappings = "mappings"
)

// TransformNode — узел трансформации данных через Go templates.
//
// Конфигурация:
//
//	{
//	    "mappings": {
//	        "upper_text": "{{ .Inputs.text }}",
//	        "total":      "{{ len .Inputs.chunks }}"
//	    }
//	}
//
// В шаблонах доступны:
//   - {{ .Inputs.field }} — собранные входы узла
//   - {{ .Config.field }} — статическая конфигурация
//
// Outputs — результаты рендеринга каждого mapping. Значения, похожие
// на JSON, парсятся в структуры; остальное остаётся строками.
type TransformNode struct{}

// NewTransformNode создаёт новый TransformNode.
func NewTransformNode() *TransformNode {
	return &TransformNode{}
}

// Type возвращает тип узла.
func (n *TransformNode) Type() string {
	return NodeTypeTransform
}

// templateData — данные, доступные в шаблонах mapping'ов.
type templateData struct {
	Inputs map[string]any
	Config map[string]any
}

// ExecuteSafe рендерит mappings.
func (n *TransformNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	mappings := parseMappings(config)
	if len(mappings) == 0 {
		return Failure("template_transform: mappings are required"), nil
	}

	data := templateData{Inputs: inputs, Config: config}

	outputs := make(map[string]any, len(mappings))
	for key, tmpl := range mappings {
		rendered, err := renderTemplate(key, tmpl, data)
		if err != nil {
			return Failure(fmt.Sprintf("template_transform: %s: %v", key, err)), nil
		}
		outputs[key] = parseValue(rendered)
	}

	return outputs, nil
}

// EstimateCost возвращает 0 — трансформация локальная.
func (n *TransformNode) EstimateCost(inputs, config map[string]any) float64 {
	return 0
}

// parseMappings извлекает mappings из конфигурации.
func parseMappings(config map[string]any) map[string]string {
	raw := config[configMappings]
	if raw == nil {
		return nil
	}

	switch m := raw.(type) {
	case map[string]string:
		return m

	case map[string]any:
		result := make(map[string]string, len(m))
		for key, val := range m {
			if str, ok := val.(string); ok {
				result[key] = str
			}
		}
		return result

	default:
		return nil
	}
}

// renderTemplate рендерит один шаблон.
func renderTemplate(name, text string, data templateData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// parseValue пытается распарсить строку как JSON.
// Если не получается — возвращает строку как есть.
func parseValue(value string) any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err == nil {
		return obj
	}

	var arr []any
	if err := json.Unmarshal([]byte(value), &arr); err == nil {
		return arr
	}

	var num json.Number
	if err := json.Unmarshal([]byte(value), &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return i
		}
		if f, err := num.Float64(); err == nil {
			return f
		}
	}

	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}

	return value
}
