// Package stream доставляет события выполнения подписчикам.
//
// Bus держит по одной FIFO-очереди на запуск. Очередь создаётся
// оркестратором при старте запуска, удаляется с отсрочкой после его
// завершения и подметается фоновым процессом при простое. Публикация
// в запуск без очереди — no-op.
// Публикация не блокирует выполнение: при переполненной очереди
// событие отбрасывается с предупреждением в лог.
package stream
