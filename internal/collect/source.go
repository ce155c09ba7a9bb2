package collect

import "github.com/shaiso/Cascade/internal/domain"

// RoutingMode — режим маршрутизации данных между узлами.
type RoutingMode string

const (
	// RouteDirectOnly — учитываются только прямые предшественники
	// (режим по умолчанию).
	RouteDirectOnly RoutingMode = "direct"

	// RouteMultiHop — дополнительно учитываются транзитивные
	// предшественники как косвенные источники. Путь сохранён как
	// документированный контракт, в боевой конфигурации выключен.
	RouteMultiHop RoutingMode = "multi_hop"
)

// Source — один источник данных для собираемого узла.
type Source struct {
	// ID — идентификатор узла-источника.
	ID string

	// Type — тип узла-источника.
	Type string

	// Label — человекочитаемая метка (для провенанс-разделителей).
	Label string

	// Outputs — уже вычисленный результат источника.
	Outputs map[string]any

	// Direct — true, если у источника есть ребро прямо в целевой узел.
	Direct bool
}

// gatherSources собирает источники для узла.
//
// Прямые источники идут в порядке объявления рёбер. В режиме
// RouteMultiHop за ними следуют косвенные — транзитивные
// предшественники без прямого ребра в целевой узел, в порядке BFS.
// Источники без вычисленного результата пропускаются.
func gatherSources(g *domain.Graph, nodeID string, outputs map[string]map[string]any, mode RoutingMode) []Source {
	sources := make([]Source, 0)
	directIDs := make(map[string]bool)

	for _, e := range g.IncomingEdges(nodeID) {
		out, ok := outputs[e.SourceID]
		if !ok {
			continue
		}
		directIDs[e.SourceID] = true
		sources = append(sources, Source{
			ID:      e.SourceID,
			Type:    nodeType(g, e.SourceID),
			Label:   g.NodeLabel(e.SourceID),
			Outputs: out,
			Direct:  true,
		})
	}

	if mode != RouteMultiHop {
		return sources
	}

	// BFS вверх по рёбрам от прямых источников.
	visited := make(map[string]bool, len(directIDs))
	for id := range directIDs {
		visited[id] = true
	}
	queue := make([]string, 0, len(directIDs))
	for _, s := range sources {
		queue = append(queue, s.ID)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range g.IncomingEdges(current) {
			if visited[e.SourceID] {
				continue
			}
			visited[e.SourceID] = true
			queue = append(queue, e.SourceID)

			out, ok := outputs[e.SourceID]
			if !ok {
				continue
			}
			sources = append(sources, Source{
				ID:      e.SourceID,
				Type:    nodeType(g, e.SourceID),
				Label:   g.NodeLabel(e.SourceID),
				Outputs: out,
				Direct:  false,
			})
		}
	}

	return sources
}

// nodeType возвращает тип узла или "".
func nodeType(g *domain.Graph, id string) string {
	if node := g.NodeByID(id); node != nil {
		return node.Type
	}
	return ""
}
