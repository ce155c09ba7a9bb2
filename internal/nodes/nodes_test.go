package nodes

import (
	"context"
	"errors"
	"testing"
)

// Registry tests

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	// Пустой реестр
	if r.Count() != 0 {
		t.Errorf("expected empty registry")
	}

	// Регистрация
	r.Register(NewTextInputNode())
	if r.Count() != 1 {
		t.Errorf("expected 1 node, got %d", r.Count())
	}

	// Получение
	node, err := r.Get("text_input")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if node.Type() != "text_input" {
		t.Errorf("expected text_input, got %s", node.Type())
	}

	// Несуществующий тип
	_, err = r.Get("unknown")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}

	// Has
	if !r.Has("text_input") {
		t.Error("should have text_input")
	}
	if r.Has("unknown") {
		t.Error("should not have unknown")
	}

	// Unregister
	r.Unregister("text_input")
	if r.Has("text_input") {
		t.Error("should not have text_input after unregister")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, typ := range []string{"text_input", "chunk", "template_transform", "http_request", "delay", "mock_llm"} {
		if !r.Has(typ) {
			t.Errorf("default registry should have %s", typ)
		}
	}
}

// TextInputNode tests

func TestTextInput(t *testing.T) {
	n := NewTextInputNode()

	out, err := n.ExecuteSafe(context.Background(), nil, map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["text"] != "hello" {
		t.Errorf("expected hello, got %v", out["text"])
	}

	// Без текста — ожидаемая ошибка в результате, не через error.
	out, err = n.ExecuteSafe(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["error"] == nil {
		t.Error("expected in-band error for missing text")
	}
}

// ChunkNode tests

func TestChunk_ShortText(t *testing.T) {
	n := NewChunkNode()

	out, err := n.ExecuteSafe(context.Background(),
		map[string]any{"text": "hello"},
		map[string]any{"size": 5},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks, ok := out["chunks"].([]any)
	if !ok {
		t.Fatalf("expected chunks list, got %T", out["chunks"])
	}
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("expected [hello], got %v", chunks)
	}
	if out["chunk_count"] != 1 {
		t.Errorf("expected chunk_count 1, got %v", out["chunk_count"])
	}
}

func TestChunk_SplitsWithOverlap(t *testing.T) {
	n := NewChunkNode()

	out, err := n.ExecuteSafe(context.Background(),
		map[string]any{"text": "abcdefghij"},
		map[string]any{"size": 4, "overlap": 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := out["chunks"].([]any)
	// step = 3: abcd, defg, ghij
	want := []string{"abcd", "defg", "ghij"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

// TransformNode tests

func TestTransform(t *testing.T) {
	n := NewTransformNode()

	out, err := n.ExecuteSafe(context.Background(),
		map[string]any{"text": "hi"},
		map[string]any{
			"mappings": map[string]any{
				"copy":  "{{ .Inputs.text }}",
				"count": "{{ len .Inputs.text }}",
			},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out["copy"] != "hi" {
		t.Errorf("expected hi, got %v", out["copy"])
	}
	if out["count"] != int64(2) {
		t.Errorf("expected 2, got %v (%T)", out["count"], out["count"])
	}
}

func TestTransform_NoMappings(t *testing.T) {
	n := NewTransformNode()

	out, err := n.ExecuteSafe(context.Background(), nil, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["error"] == nil {
		t.Error("expected in-band error for missing mappings")
	}
}

// DelayNode tests

func TestDelay(t *testing.T) {
	n := NewDelayNode()

	out, err := n.ExecuteSafe(context.Background(), nil, map[string]any{"duration_ms": 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["duration_ms"] != int64(10) {
		t.Errorf("expected 10, got %v", out["duration_ms"])
	}
}

func TestDelay_Cancelled(t *testing.T) {
	n := NewDelayNode()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.ExecuteSafe(ctx, nil, map[string]any{"duration_sec": 60})
	if !errors.Is(err, ErrNodeCancelled) {
		t.Errorf("expected ErrNodeCancelled, got %v", err)
	}
}

// MockLLMNode tests

func TestMockLLM(t *testing.T) {
	n := NewMockLLMNode()

	out, err := n.ExecuteSafe(context.Background(),
		map[string]any{"text": "hello world"},
		map[string]any{"model": "mock-large"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out["text"] != "echo: hello world" {
		t.Errorf("unexpected text: %v", out["text"])
	}
	if out["model"] != "mock-large" {
		t.Errorf("unexpected model: %v", out["model"])
	}

	cost, ok := out["cost"].(float64)
	if !ok || cost <= 0 {
		t.Errorf("expected positive cost, got %v", out["cost"])
	}

	tokens, ok := out["tokens_used"].(map[string]any)
	if !ok {
		t.Fatalf("expected tokens_used map, got %T", out["tokens_used"])
	}
	if tokens["total_tokens"].(int) <= 0 {
		t.Error("expected positive total_tokens")
	}
}

func TestMockLLM_EstimateCost(t *testing.T) {
	n := NewMockLLMNode()

	cost := n.EstimateCost(map[string]any{"text": "one two three"}, nil)
	if cost <= 0 {
		t.Errorf("expected positive estimate, got %v", cost)
	}
}
