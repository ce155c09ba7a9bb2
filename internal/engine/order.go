package engine

import "github.com/shaiso/Cascade/internal/domain"

// BuildOrder вычисляет топологический порядок выполнения узлов
// (алгоритм Кана).
//
// Очередь инициализируется узлами с нулевой входящей степенью в порядке
// их объявления в графе, поэтому для одинаковых графов порядок всегда
// одинаков. Если после обхода порядок короче числа узлов — в графе цикл
// (защитная проверка: Validate должен был его поймать раньше).
func BuildOrder(g *domain.Graph) ([]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	adjacency := make(map[string][]string, len(g.Nodes))

	for i := range g.Nodes {
		inDegree[g.Nodes[i].ID] = 0
	}
	for _, e := range g.Edges {
		adjacency[e.SourceID] = append(adjacency[e.SourceID], e.TargetID)
		inDegree[e.TargetID]++
	}

	// FIFO очередь, засеянная в порядке объявления узлов.
	queue := make([]string, 0, len(g.Nodes))
	for i := range g.Nodes {
		if inDegree[g.Nodes[i].ID] == 0 {
			queue = append(queue, g.Nodes[i].ID)
		}
	}

	order := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		// Не все узлы обработаны — цикл.
		if cycle := findCycle(g); cycle != nil {
			return nil, NewCycleError(cycle)
		}
		return nil, NewStructuralError(ErrCyclicDependency)
	}

	return order, nil
}
