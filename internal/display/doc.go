// Package display формирует презентационные конверты для результатов
// узлов.
//
// Форматтеры упорядочены: для результата выбирается первый подходящий
// по типу узла и форме выходных данных, generic-форматтер замыкает
// список и подходит всегда. Форматтеры работают с глубокой копией
// выходных данных и никогда не мутируют оригинал; метаданные конверта
// ограничены по размеру.
package display
