package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
)

func TestBuildOrder_SimpleChain(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "text_input"},
			{ID: "B", Type: "chunk"},
			{ID: "C", Type: "transform"},
		},
		Edges: []domain.Edge{
			{SourceID: "A", TargetID: "B"},
			{SourceID: "B", TargetID: "C"},
		},
	}

	order, err := BuildOrder(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A", "B", "C"}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestBuildOrder_RespectsEdges(t *testing.T) {
	// Ромб: A → B, A → C, B → D, C → D.
	g := &domain.Graph{
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "t"},
			{ID: "B", Type: "t"},
			{ID: "C", Type: "t"},
			{ID: "D", Type: "t"},
		},
		Edges: []domain.Edge{
			{SourceID: "A", TargetID: "B"},
			{SourceID: "A", TargetID: "C"},
			{SourceID: "B", TargetID: "D"},
			{SourceID: "C", TargetID: "D"},
		},
	}

	order, err := BuildOrder(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Каждый узел ровно один раз.
	if len(order) != 4 {
		t.Fatalf("expected 4 nodes in order, got %v", order)
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := pos[id]; dup {
			t.Fatalf("node %s appears twice in %v", id, order)
		}
		pos[id] = i
	}

	// Порядок уважает каждое ребро.
	for _, e := range g.Edges {
		if pos[e.SourceID] >= pos[e.TargetID] {
			t.Errorf("edge %s -> %s violated in order %v", e.SourceID, e.TargetID, order)
		}
	}
}

func TestBuildOrder_Deterministic(t *testing.T) {
	// Несколько независимых корней: при равных зависимостях порядок
	// объявления узлов определяет результат.
	g := &domain.Graph{
		Nodes: []domain.NodeDef{
			{ID: "C", Type: "t"},
			{ID: "A", Type: "t"},
			{ID: "B", Type: "t"},
		},
	}

	first, err := BuildOrder(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"C", "A", "B"}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("expected declaration order %v, got %v", want, first)
		}
	}

	// Повторные вызовы дают идентичный результат.
	for i := 0; i < 10; i++ {
		again, err := BuildOrder(g)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("order not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestBuildOrder_CycleDefensive(t *testing.T) {
	// BuildOrder сам ловит цикл, даже если Validate не вызывали.
	g := &domain.Graph{
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "t"},
			{ID: "B", Type: "t"},
		},
		Edges: []domain.Edge{
			{SourceID: "A", TargetID: "B"},
			{SourceID: "B", TargetID: "A"},
		},
	}

	_, err := BuildOrder(g)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}
}
