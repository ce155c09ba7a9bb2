// Package nodes содержит реестр типов узлов и встроенные реализации.
//
// # Интерфейс Node
//
// Все узлы реализуют интерфейс Node:
//
//	type Node interface {
//	    Type() string
//	    ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error)
//	    EstimateCost(inputs, config map[string]any) float64
//	}
//
// ExecuteSafe по контракту превращает собственные ожидаемые ошибки
// (невалидный вход, HTTP статус >= 400 и т.п.) в обычный результат с
// полем "error" — error из ExecuteSafe возвращается только для
// действительно неожиданных сбоев. NodeRunner обрабатывает оба случая
// и никогда не роняет run.
//
// # Registry
//
// Registry — потокобезопасная фабрика узлов по типу:
//
//	registry := nodes.DefaultRegistry()  // все встроенные узлы
//	node, err := registry.Get("chunk")
//
// # Встроенные типы узлов
//
//   - text_input         — статический текст из конфигурации
//   - chunk              — разбиение текста на чанки
//   - template_transform — трансформация через Go templates
//   - http_request       — HTTP запрос к внешнему API
//   - delay              — пауза
//   - mock_llm           — детерминированный генератор с отчётом о
//     токенах и стоимости (для тестов и локальных запусков)
//
// Боевые реализации (LLM, retrieval, инструменты) регистрируются
// внешним кодом через Registry.Register.
package nodes
