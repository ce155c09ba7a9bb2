// Package orchestrator управляет выполнением запусков.
//
// Orchestrator отвечает за:
//   - Валидацию графа и построение порядка выполнения
//   - Последовательное выполнение узлов с передачей входов
//   - Публикацию событий жизненного цикла подписчикам
//   - Учёт стоимости и трассировку
//   - Финализацию запуска (COMPLETED/FAILED)
//
// Orchestrator — это "мозг" системы, который координирует выполнение.
// Падение узла фиксируется в результатах и не меняет статус запуска;
// FAILED означает структурный или неожиданный сбой самого запуска.
package orchestrator
