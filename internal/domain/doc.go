// Package domain содержит основные модели данных Cascade.
//
// Модели:
//   - Graph / NodeDef / Edge — определение workflow-графа
//   - Run — экземпляр выполнения графа
//   - NodeResult — результат выполнения одного узла
//   - TraceStep — запись трассировки выполнения
//   - StreamEvent — событие для real-time подписчиков
//
// Domain не зависит от других пакетов Cascade — только стандартная
// библиотека и uuid.
package domain
