package costs

import (
	"context"
	"errors"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
)

type memCollector struct {
	entries []Entry
	err     error
}

func (c *memCollector) RecordCost(ctx context.Context, entry Entry) error {
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, entry)
	return nil
}

func TestClassify(t *testing.T) {
	cases := map[string]Category{
		"embedder":        CategoryEmbedding,
		"text_embedding":  CategoryEmbedding,
		"reranker":        CategoryRerank,
		"vector_search":   CategoryVectorSearch,
		"mock_llm":        CategoryLLM,
		"chat_completion": CategoryLLM,
		"chunk":           CategoryOther,
		"http_request":    CategoryOther,
	}

	for nodeType, want := range cases {
		if got := Classify(nodeType); got != want {
			t.Errorf("Classify(%s) = %s, want %s", nodeType, got, want)
		}
	}
}

func TestInferProvider(t *testing.T) {
	cases := map[string]string{
		"gpt-4o":                 "openai",
		"text-embedding-3-small": "openai",
		"claude-sonnet-4":        "anthropic",
		"gemini-pro":             "google",
		"mixtral-8x7b":           "mistral",
		"rerank-english-v3":      "cohere",
		"mock-small":             "mock",
		"local-model":            "unknown",
		"":                       "unknown",
	}

	for model, want := range cases {
		if got := InferProvider(model); got != want {
			t.Errorf("InferProvider(%s) = %s, want %s", model, got, want)
		}
	}
}

func TestTrack_ForwardsClassifiedEntry(t *testing.T) {
	sink := &memCollector{}
	l := NewLedger(nil, sink)

	l.Track(context.Background(), "r1", "g1", "mock_llm", &domain.NodeResult{
		NodeID: "n1",
		Status: domain.NodeCompleted,
		Output: map[string]any{"model": "mock-small"},
		Cost:   0.01,
		TokensUsed: map[string]int{
			"total_tokens": 42,
		},
	})

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}

	e := sink.entries[0]
	if e.Category != CategoryLLM {
		t.Errorf("expected llm category, got %s", e.Category)
	}
	if e.Provider != "mock" {
		t.Errorf("expected mock provider, got %s", e.Provider)
	}
	if e.Cost != 0.01 || e.Tokens["total_tokens"] != 42 {
		t.Errorf("entry lost cost data: %+v", e)
	}
}

func TestTrack_SkipsFreeNodes(t *testing.T) {
	sink := &memCollector{}
	l := NewLedger(nil, sink)

	l.Track(context.Background(), "r1", "g1", "chunk", &domain.NodeResult{
		NodeID: "n1",
		Status: domain.NodeCompleted,
		Cost:   0,
	})

	if len(sink.entries) != 0 {
		t.Errorf("free node must not be recorded: %v", sink.entries)
	}
}

func TestTrack_CollectorFailureDoesNotStopOthers(t *testing.T) {
	broken := &memCollector{err: errors.New("db down")}
	healthy := &memCollector{}
	l := NewLedger(nil, broken, healthy)

	l.Track(context.Background(), "r1", "g1", "mock_llm", &domain.NodeResult{
		NodeID: "n1",
		Cost:   0.02,
	})

	if len(healthy.entries) != 1 {
		t.Errorf("healthy collector must still receive the entry: %d", len(healthy.entries))
	}
}
