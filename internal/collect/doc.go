// Package collect собирает входные данные узла из результатов его
// предшественников и сливает их в одну карту входов.
//
// # Порядок работы
//
//  1. Gather    — для каждого ребра в узел берётся уже вычисленный
//     результат источника (гарантирован топологическим порядком)
//  2. Classify  — источники делятся на прямые (ребро прямо в узел) и
//     косвенные (достижимые транзитивно; только в режиме RouteMultiHop)
//  3. Merge     — прямые источники пишут поля безусловно, косвенные —
//     только в отсутствующие (PriorityMerge)
//  4. Text      — несколько текстовых вкладов конкатенируются с
//     провенанс-разделителями, нетекстовые конфликты становятся списком
//  5. Namespace — все сырые поля каждого источника дублируются под
//     ключом {source_id}_{field}
//  6. Reconcile — обязательные поля категории-потребителя
//     восстанавливаются из namespaced-ключей или статической
//     конфигурации узла
//
// Collect никогда не возвращает ошибку: при внутреннем сбое маппинга
// логируется предупреждение и возвращается разрешённое подмножество.
package collect
