// Package mq зеркалирует события выполнения во внешний RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges
//   - publisher.go  — публикация событий и записей о стоимости
//
// Публикация строго best-effort: недоступный брокер логируется и
// никогда не влияет на выполнение запусков. Очереди не объявляются —
// внешние потребители привязывают свои.
//
// Exchanges:
//   - cascade.runs  — события жизненного цикла запусков
//   - cascade.costs — записи о стоимости
package mq
