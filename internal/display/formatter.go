package display

import (
	"reflect"

	"github.com/shaiso/Cascade/internal/domain"
)

// metadataValueLimit — максимальная длина строкового значения в
// метаданных конверта. Полные данные остаются в output и доступны
// через attachments.
const metadataValueLimit = 500

// Formatter превращает результат узла в презентационный конверт.
type Formatter interface {
	// CanFormat сообщает, подходит ли форматтер для данного типа узла
	// и формы выходных данных.
	CanFormat(nodeType string, output map[string]any) bool

	// Format строит конверт. Получает глубокую копию output и может
	// свободно её модифицировать.
	Format(nodeType string, output map[string]any) *domain.Envelope
}

// Registry — упорядоченный список форматтеров.
//
// Порядок регистрации определяет приоритет: выигрывает первый
// подходящий. Generic-форматтер всегда добавляется последним и
// подходит для любого результата, поэтому Envelope выдаётся всегда.
type Registry struct {
	formatters []Formatter
}

// NewRegistry создаёт реестр со встроенными форматтерами.
func NewRegistry() *Registry {
	return &Registry{
		formatters: []Formatter{
			&chunkFormatter{},
			&llmFormatter{},
			&httpFormatter{},
			&textFormatter{},
			&genericFormatter{},
		},
	}
}

// Register добавляет форматтер перед generic-фоллбэком.
func (r *Registry) Register(f Formatter) {
	last := len(r.formatters) - 1
	r.formatters = append(r.formatters[:last], f, r.formatters[last])
}

// Format строит конверт для результата узла.
//
// Выходные данные копируются перед передачей форматтеру: форматтеры не
// могут повредить данные, которые пойдут дальше по графу. Для nil
// output возвращается generic-конверт без метаданных.
func (r *Registry) Format(nodeType string, output map[string]any) *domain.Envelope {
	copied := deepCopy(output)

	for _, f := range r.formatters {
		if f.CanFormat(nodeType, copied) {
			env := f.Format(nodeType, copied)
			capMetadata(env)
			return env
		}
	}

	// Недостижимо: generic подходит всегда.
	return &domain.Envelope{DisplayType: "generic"}
}

// deepCopy рекурсивно копирует карту выходных данных.
//
// Самоссылающиеся контейнеры (возможны в output произвольной
// реализации Node) разрываются: повторный вход в контейнер на текущем
// пути копирования даёт nil вместо бесконечной рекурсии.
func deepCopy(src map[string]any) map[string]any {
	return copyMap(src, make(map[uintptr]bool))
}

func copyMap(src map[string]any, seen map[uintptr]bool) map[string]any {
	if src == nil {
		return nil
	}

	ptr := reflect.ValueOf(src).Pointer()
	if seen[ptr] {
		return nil
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = copyValue(v, seen)
	}
	return dst
}

func copyValue(v any, seen map[uintptr]bool) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t, seen)
	case []any:
		if t == nil {
			return t
		}
		ptr := reflect.ValueOf(t).Pointer()
		if seen[ptr] {
			return nil
		}
		seen[ptr] = true
		defer delete(seen, ptr)

		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = copyValue(e, seen)
		}
		return cp
	default:
		return v
	}
}

// capMetadata обрезает длинные строковые значения метаданных.
func capMetadata(env *domain.Envelope) {
	for k, v := range env.Metadata {
		if s, ok := v.(string); ok && len(s) > metadataValueLimit {
			env.Metadata[k] = s[:metadataValueLimit] + "…"
		}
	}
}
