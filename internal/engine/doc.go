// Package engine содержит структурную валидацию графа и вычисление
// порядка выполнения.
//
// Включает:
//   - validator.go — проверка типов узлов, рёбер и поиск циклов (DFS)
//   - order.go     — топологическая сортировка (алгоритм Кана)
//
// Engine отвечает за ответ на вопрос "можно ли выполнить этот граф
// и в каком порядке". Само выполнение — в пакете orchestrator.
package engine
