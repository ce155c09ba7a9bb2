// Package api — HTTP API сервера выполнения.
//
// Структура:
//   - handler.go        — Handler с зависимостями
//   - routes.go         — регистрация маршрутов
//   - run_handler.go    — запуск графов и чтение runs
//   - stream_handler.go — SSE-стрим событий выполнения
//   - middleware.go     — Recovery, Logging, Metrics
//   - response.go       — единый формат ответов
//   - dto.go            — request/response структуры
package api
