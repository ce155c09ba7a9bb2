package collect

import "reflect"

// PriorityMerge — именованная стратегия слияния данных источников во
// входы узла. Прямые источники пишут поля безусловно, косвенные — только
// в отсутствующие: данные прямого соседа никогда не перетираются
// косвенным, но косвенные закрывают настоящие пробелы.
type PriorityMerge interface {
	// MergeDirect сливает прямой источник (безусловная запись).
	MergeDirect(dst InputMap, src Source)

	// MergeIndirect сливает косвенный источник (запись только в
	// отсутствующие поля).
	MergeIndirect(dst InputMap, src Source)
}

// semanticMerge — стандартная стратегия: типо-ключевые правила
// извлечения, текстовая аккумуляция и безусловный namespacing.
type semanticMerge struct{}

// NewSemanticMerge создаёт стандартную стратегию слияния.
func NewSemanticMerge() PriorityMerge {
	return &semanticMerge{}
}

// MergeDirect сливает прямой источник.
func (m *semanticMerge) MergeDirect(dst InputMap, src Source) {
	applyRules(dst, src, false)
	namespaceFields(dst, src)
}

// MergeIndirect сливает косвенный источник.
func (m *semanticMerge) MergeIndirect(dst InputMap, src Source) {
	applyRules(dst, src, true)
	namespaceFields(dst, src)
}

// namespaceFields безусловно копирует все сырые поля источника под
// ключом {source_id}_{field}. Исходные значения любого предшественника
// остаются доступными, даже если семантический маппинг ошибся.
func namespaceFields(dst InputMap, src Source) {
	for k, v := range src.Outputs {
		dst[src.ID+"_"+k] = v
	}
}

// setText пишет текстовое семантическое поле.
//
// При конфликте нескольких вкладов значения конкатенируются с
// провенанс-разделителем вместо перезаписи. В условном режиме запись
// происходит только в отсутствующее поле.
func setText(dst InputMap, field, value, label string, conditional bool) {
	if value == "" {
		return
	}

	existing, exists := dst[field]
	if !exists {
		dst[field] = value
		return
	}
	if conditional {
		return
	}

	prev, ok := existing.(string)
	if !ok {
		// Нетекстовое значение уже на месте — идём по пути списка.
		setField(dst, field, value, conditional)
		return
	}
	if prev == value {
		return
	}

	dst[field] = prev + textSeparator(label) + value
}

// textSeparator возвращает провенанс-разделитель для конкатенации.
func textSeparator(label string) string {
	if label == "" {
		label = "source"
	}
	return "\n\n--- " + label + " ---\n\n"
}

// setField пишет нетекстовое семантическое поле.
//
// Конфликт разных значений превращается в упорядоченный список —
// ни один вклад не теряется молча. В условном режиме запись происходит
// только в отсутствующее поле.
func setField(dst InputMap, field string, value any, conditional bool) {
	if value == nil {
		return
	}

	existing, exists := dst[field]
	if !exists {
		dst[field] = value
		return
	}
	if conditional {
		return
	}
	if reflect.DeepEqual(existing, value) {
		return
	}

	if list, ok := existing.([]any); ok {
		if more, ok := value.([]any); ok {
			dst[field] = append(list, more...)
			return
		}
		dst[field] = append(list, value)
		return
	}
	dst[field] = []any{existing, value}
}
