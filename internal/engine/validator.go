package engine

import (
	"fmt"
	"sort"

	"github.com/shaiso/Cascade/internal/domain"
)

// TypeChecker — минимальный интерфейс реестра узлов для валидации.
//
// Реализуется nodes.Registry; в тестах подменяется заглушкой.
type TypeChecker interface {
	Has(nodeType string) bool
}

// Validate выполняет полную структурную валидацию графа.
//
// Порядок проверок:
//  1. Наличие узлов и уникальность ID
//  2. Все типы узлов зарегистрированы (с полным списком проблемных)
//  3. Рёбра ссылаются только на существующие узлы
//  4. Отсутствие циклов (DFS, с указанием найденного цикла)
//
// Первая провалившаяся проверка возвращает StructuralError — выполнение
// run в этом случае не начинается.
func Validate(g *domain.Graph, registry TypeChecker) error {
	if g == nil || len(g.Nodes) == 0 {
		return NewStructuralError(ErrEmptyGraph)
	}

	seen := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if node.ID == "" {
			return NewStructuralError(ErrEmptyNodeID,
				fmt.Sprintf("node at position %d has empty ID", i))
		}
		if seen[node.ID] {
			return NewStructuralError(ErrDuplicateNodeID,
				fmt.Sprintf("duplicate node ID: %s", node.ID))
		}
		seen[node.ID] = true
	}

	if err := validateNodeTypes(g, registry); err != nil {
		return err
	}

	if err := validateEdges(g, seen); err != nil {
		return err
	}

	if cycle := findCycle(g); cycle != nil {
		return NewCycleError(cycle)
	}

	return nil
}

// validateNodeTypes проверяет, что все типы узлов известны реестру.
// Собирает ВСЕ неизвестные типы, а не только первый.
func validateNodeTypes(g *domain.Graph, registry TypeChecker) error {
	unknown := make(map[string]bool)
	for i := range g.Nodes {
		t := g.Nodes[i].Type
		if t == "" || !registry.Has(t) {
			unknown[t] = true
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	types := make([]string, 0, len(unknown))
	for t := range unknown {
		types = append(types, t)
	}
	sort.Strings(types)

	problems := make([]string, 0, len(types))
	for _, t := range types {
		if t == "" {
			problems = append(problems, "node has empty type")
			continue
		}
		problems = append(problems, fmt.Sprintf("unknown node type: %s", t))
	}
	return NewStructuralError(ErrUnregisteredNodeType, problems...)
}

// validateEdges проверяет, что рёбра ссылаются на существующие узлы.
func validateEdges(g *domain.Graph, nodeIDs map[string]bool) error {
	for _, e := range g.Edges {
		if !nodeIDs[e.SourceID] {
			return NewStructuralError(ErrDanglingEdge,
				fmt.Sprintf("edge %s -> %s: source does not exist", e.SourceID, e.TargetID))
		}
		if !nodeIDs[e.TargetID] {
			return NewStructuralError(ErrDanglingEdge,
				fmt.Sprintf("edge %s -> %s: target does not exist", e.SourceID, e.TargetID))
		}
	}
	return nil
}

// findCycle ищет цикл в графе через DFS со стеком рекурсии.
//
// Возвращает замкнутый путь цикла (первый и последний элемент совпадают)
// или nil, если граф ацикличен. При повторном входе в узел, находящийся
// на стеке, цикл — это path[cycleStart:] + [node].
func findCycle(g *domain.Graph) []string {
	adjacency := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adjacency[e.SourceID] = append(adjacency[e.SourceID], e.TargetID)
	}

	visited := make(map[string]bool, len(g.Nodes))
	onStack := make(map[string]bool, len(g.Nodes))
	path := make([]string, 0, len(g.Nodes))

	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, next := range adjacency[id] {
			if onStack[next] {
				// Нашли цикл: отрезаем путь до первого вхождения next
				// и замыкаем его повторением next.
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				cycle = append(append([]string{}, path[start:]...), next)
				return true
			}
			if !visited[next] {
				if dfs(next) {
					return true
				}
			}
		}

		onStack[id] = false
		path = path[:len(path)-1]
		return false
	}

	// Обходим узлы в порядке объявления — детерминированный результат
	// для одинаковых графов.
	for i := range g.Nodes {
		id := g.Nodes[i].ID
		if !visited[id] {
			if dfs(id) {
				return cycle
			}
		}
	}

	return nil
}
