// Package cli реализует инструмент командной строки Cascade.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Cascade API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для запуска графов и наблюдения за runs.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Cascade API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (dataResponse, listResponse, errorResponse)
// и обработку ошибок. Отдельно — Stream: чтение SSE-потока
// событий выполнения.
//
//	client := cli.NewClient("http://localhost:8080")
//	run, err := client.RunGraph(graph, "cli")
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: cascade run list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - run: start, list, show, watch
//
// Каждая группа создаётся через фабричную функцию (NewRunCmd),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
