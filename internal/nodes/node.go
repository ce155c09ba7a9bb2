package nodes

import "context"

// Node — интерфейс реализации типа узла.
type Node interface {
	// Type возвращает тип узла.
	Type() string

	// ExecuteSafe выполняет узел.
	//
	// Ожидаемые ошибки выполнения узел обязан вернуть внутри результата
	// (поле "error"), а не через error. Возврат error означает
	// неожиданный сбой и обрабатывается на границе NodeRunner.
	ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error)

	// EstimateCost оценивает стоимость выполнения узла.
	// Используется, когда узел не сообщил стоимость в результате.
	EstimateCost(inputs, config map[string]any) float64
}

// GetConfigString извлекает строковое значение из конфига.
func GetConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetConfigInt извлекает числовое значение из конфига.
func GetConfigInt(config map[string]any, key string) int {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

// GetConfigFloat извлекает число с плавающей точкой из конфига.
func GetConfigFloat(config map[string]any, key string) float64 {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return 0
}

// GetConfigBool извлекает булево значение из конфига.
func GetConfigBool(config map[string]any, key string, defaultVal bool) bool {
	if v, ok := config[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetConfigMap извлекает map из конфига.
func GetConfigMap(config map[string]any, key string) map[string]any {
	if v, ok := config[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// GetConfigMapString извлекает map[string]string из конфига.
func GetConfigMapString(config map[string]any, key string) map[string]string {
	if v, ok := config[key]; ok {
		switch m := v.(type) {
		case map[string]string:
			return m
		case map[string]any:
			result := make(map[string]string)
			for k, val := range m {
				if s, ok := val.(string); ok {
					result[k] = s
				}
			}
			return result
		}
	}
	return nil
}

// Failure упаковывает ожидаемую ошибку выполнения в результат узла
// согласно контракту ExecuteSafe.
func Failure(msg string) map[string]any {
	return map[string]any{"error": msg}
}
