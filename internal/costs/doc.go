// Package costs агрегирует стоимость выполнения узлов.
//
// Ledger классифицирует каждую запись (провайдер, модель, категория
// операции) и пересылает её подключённым коллекторам. Пересылка —
// best-effort: сбой коллектора логируется и никогда не влияет на
// выполнение запуска.
package costs
