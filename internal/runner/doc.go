// Package runner выполняет отдельные узлы графа.
//
// NodeRunner — граница изоляции сбоев: паника внутри узла, ошибка
// ExecuteSafe и ожидаемая ошибка в результате одинаково превращаются
// в NodeResult со статусом FAILED и никогда не роняют запуск целиком.
// Помимо выполнения runner определяет стоимость узла, извлекает токены
// и прикрепляет презентационный конверт.
package runner
