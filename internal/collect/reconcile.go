package collect

import (
	"sort"
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
)

// consumerRequirements — обязательные поля по категориям потребителей.
// Порядок важен: первое совпадение по подстроке типа выигрывает.
var consumerRequirements = []struct {
	patterns []string
	fields   []string
}{
	{[]string{"vector_search", "search"}, []string{FieldIndexID, FieldQuery}},
	{[]string{"vector_index", "index"}, []string{FieldEmbeddings, FieldChunks}},
	{[]string{"embed"}, []string{FieldChunks}},
	{[]string{"chat", "llm", "completion"}, []string{FieldResults, FieldQuery}},
}

// mandatoryFields возвращает обязательные поля для типа узла-потребителя.
func mandatoryFields(nodeType string) []string {
	t := strings.ToLower(nodeType)
	for _, req := range consumerRequirements {
		for _, p := range req.patterns {
			if strings.Contains(t, p) {
				return req.fields
			}
		}
	}
	return nil
}

// reconcile восстанавливает отсутствующие обязательные поля потребителя.
//
// Для каждого отсутствующего поля:
//  1. Скан namespaced-ключей {source_id}_{field} по суффиксу —
//     покрывает случаи, когда семантический маппинг не угадал
//  2. Fallback на статическую конфигурацию самого узла — покрывает
//     внешне-инжектированные значения (например, query от вызывающего)
//
// Узел без входящих рёбер со статически заданным обязательным значением
// получает его напрямую: "входные" узлы работают без фиктивного
// производителя.
func reconcile(dst InputMap, node *domain.NodeDef) {
	if node == nil {
		return
	}

	for _, field := range mandatoryFields(node.Type) {
		if dst.Has(field) {
			continue
		}

		if v, ok := scanNamespaced(dst, field); ok {
			dst[field] = v
			continue
		}

		if v, ok := node.Config[field]; ok && v != nil {
			dst[field] = v
		}
	}
}

// scanNamespaced ищет значение по суффиксу _{field} среди namespaced
// ключей. Ключи сканируются в отсортированном порядке — результат
// детерминирован.
func scanNamespaced(dst InputMap, field string) (any, bool) {
	suffix := "_" + field

	keys := make([]string, 0, len(dst))
	for k := range dst {
		if strings.HasSuffix(k, suffix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, false
	}
	sort.Strings(keys)
	return dst[keys[0]], true
}
