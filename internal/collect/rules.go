package collect

import (
	"sort"
	"strings"
)

// Category — семантическая категория узла-источника.
// Определяет, какие поля назначения заполняются его результатом.
type Category string

const (
	// CategoryText — производители текста (text_input, prompt).
	CategoryText Category = "text"

	// CategoryDocument — документы и файлы (file, document, pdf).
	CategoryDocument Category = "document"

	// CategorySummary — суммаризаторы и анализаторы.
	CategorySummary Category = "summary"

	// CategoryGenerator — генераторы (llm, chat, completion).
	CategoryGenerator Category = "generator"

	// CategoryEmbedding — производители эмбеддингов.
	CategoryEmbedding Category = "embedding"

	// CategoryCommunication — коммуникационные узлы (email, slack).
	CategoryCommunication Category = "communication"

	// CategoryGeneric — всё остальное: generic fallback.
	CategoryGeneric Category = "generic"
)

// categoryPatterns — подстроки типа узла по категориям.
// Порядок важен: первое совпадение выигрывает.
var categoryPatterns = []struct {
	category Category
	patterns []string
}{
	{CategoryEmbedding, []string{"embed"}},
	{CategorySummary, []string{"summar", "analy"}},
	{CategoryDocument, []string{"file", "document", "pdf", "upload"}},
	{CategoryCommunication, []string{"email", "slack", "notify", "webhook_out"}},
	{CategoryGenerator, []string{"llm", "chat", "generate", "completion", "agent"}},
	{CategoryText, []string{"text_input", "prompt", "input"}},
}

// categoryOf определяет категорию источника по его типу.
func categoryOf(nodeType string) Category {
	t := strings.ToLower(nodeType)
	for _, entry := range categoryPatterns {
		for _, p := range entry.patterns {
			if strings.Contains(t, p) {
				return entry.category
			}
		}
	}
	return CategoryGeneric
}

// applyRules применяет правила извлечения категории источника.
// conditional=true — условные записи (косвенные источники).
func applyRules(dst InputMap, src Source, conditional bool) {
	out := src.Outputs

	switch categoryOf(src.Type) {
	case CategoryText:
		text := stringField(out, FieldText)
		setText(dst, FieldText, text, src.Label, conditional)
		setField(dst, FieldTopic, firstStringOrNil(out, FieldTopic, FieldText), conditional)
		setField(dst, FieldQuery, firstStringOrNil(out, FieldQuery, FieldText), conditional)

	case CategoryDocument:
		primary := firstString(out, FieldText, FieldContent, FieldFileContent)
		setText(dst, FieldText, primary, src.Label, conditional)
		setText(dst, FieldContext, primary, src.Label, conditional)
		setText(dst, FieldContent, primary, src.Label, conditional)
		setText(dst, FieldFileContent, primary, src.Label, conditional)

	case CategorySummary:
		primary := firstString(out, FieldText, FieldSummary, FieldAnalysis, FieldContent)
		setText(dst, FieldText, primary, src.Label, conditional)
		setText(dst, FieldSummary, primary, src.Label, conditional)
		setText(dst, FieldContent, primary, src.Label, conditional)
		setText(dst, FieldAnalysis, primary, src.Label, conditional)

	case CategoryGenerator:
		primary := firstString(out, FieldText, FieldContent)
		setText(dst, FieldText, primary, src.Label, conditional)
		setText(dst, FieldContent, primary, src.Label, conditional)
		setField(dst, FieldTopic, stringOrNil(out, FieldTopic), conditional)

	case CategoryEmbedding:
		setField(dst, FieldEmbeddings, out[FieldEmbeddings], conditional)
		qe := out[FieldQueryEmbedding]
		if qe == nil {
			qe = out["embedding"]
		}
		setField(dst, FieldQueryEmbedding, qe, conditional)
		setField(dst, FieldQuery, stringOrNil(out, FieldQuery), conditional)

	case CategoryCommunication:
		setText(dst, FieldBody, stringField(out, FieldBody), src.Label, conditional)
		setText(dst, FieldMessage, stringField(out, FieldMessage), src.Label, conditional)

	default:
		applyGenericRules(dst, src, conditional)
	}
}

// applyGenericRules — generic fallback: любое строковое поле верхнего
// уровня (и вложенное output.output) продвигается в text.
func applyGenericRules(dst InputMap, src Source, conditional bool) {
	keys := make([]string, 0, len(src.Outputs))
	for k := range src.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "error" {
			continue
		}
		if s, ok := src.Outputs[k].(string); ok && s != "" {
			setText(dst, FieldText, s, src.Label, conditional)
		}
	}

	// Вложенный output.output тоже продвигается в text.
	if inner, ok := src.Outputs["output"].(map[string]any); ok {
		if s, ok := inner["output"].(string); ok && s != "" {
			setText(dst, FieldText, s, src.Label, conditional)
		}
	}
}

// stringField возвращает строковое поле или "".
func stringField(out map[string]any, key string) string {
	if s, ok := out[key].(string); ok {
		return s
	}
	return ""
}

// firstString возвращает первое непустое строковое поле из списка
// или "".
func firstString(out map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := out[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstStringOrNil — как firstString, но отсутствие поля выражается
// как nil (для setField).
func firstStringOrNil(out map[string]any, keys ...string) any {
	if s := firstString(out, keys...); s != "" {
		return s
	}
	return nil
}

// stringOrNil возвращает непустую строку или nil.
func stringOrNil(out map[string]any, key string) any {
	if s, ok := out[key].(string); ok && s != "" {
		return s
	}
	return nil
}
