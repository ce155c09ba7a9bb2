package domain

// Graph — определение workflow-графа.
//
// Graph — это "программа" для Cascade: набор типизированных узлов
// и направленных рёбер-зависимостей между ними.
//
// Инварианты (проверяются engine.Validate):
//   - ID узлов уникальны
//   - Рёбра ссылаются только на существующие узлы
//   - Граф ацикличен
type Graph struct {
	// ID — идентификатор графа (задаётся внешней системой).
	ID string `json:"id,omitempty"`

	// Name — человекочитаемое имя графа.
	Name string `json:"name,omitempty"`

	// Nodes — узлы графа в порядке объявления.
	// Порядок важен: он определяет детерминированный порядок
	// выполнения при равных зависимостях.
	Nodes []NodeDef `json:"nodes"`

	// Edges — направленные рёбра source → target.
	Edges []Edge `json:"edges,omitempty"`
}

// NodeDef — определение узла в графе.
type NodeDef struct {
	// ID — уникальный идентификатор узла в рамках графа.
	ID string `json:"id"`

	// Type — тип узла (должен быть зарегистрирован в nodes.Registry).
	Type string `json:"type"`

	// Label — человекочитаемое имя узла.
	// Используется как провенанс-метка при слиянии текстовых полей.
	Label string `json:"label,omitempty"`

	// Config — статическая конфигурация узла.
	Config map[string]any `json:"config,omitempty"`
}

// Edge — направленное ребро зависимости: источник производит данные,
// потребитель их получает.
type Edge struct {
	// SourceID — ID узла-производителя.
	SourceID string `json:"source_id"`

	// TargetID — ID узла-потребителя.
	TargetID string `json:"target_id"`
}

// NodeByID возвращает определение узла по ID или nil.
func (g *Graph) NodeByID(id string) *NodeDef {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// IncomingEdges возвращает рёбра, входящие в узел, в порядке объявления.
func (g *Graph) IncomingEdges(nodeID string) []Edge {
	edges := make([]Edge, 0)
	for _, e := range g.Edges {
		if e.TargetID == nodeID {
			edges = append(edges, e)
		}
	}
	return edges
}

// HasNode проверяет наличие узла с указанным ID.
func (g *Graph) HasNode(id string) bool {
	return g.NodeByID(id) != nil
}

// NodeLabel возвращает Label узла, а при его отсутствии — ID.
func (g *Graph) NodeLabel(id string) string {
	node := g.NodeByID(id)
	if node == nil {
		return id
	}
	if node.Label != "" {
		return node.Label
	}
	return node.ID
}
