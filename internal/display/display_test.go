package display

import (
	"strings"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
)

func TestFormat_ChunksBecomeTable(t *testing.T) {
	r := NewRegistry()

	env := r.Format("chunk", map[string]any{
		"chunks":      []any{"one", "two"},
		"chunk_count": 2,
	})

	if env.DisplayType != "table" {
		t.Errorf("expected table, got %s", env.DisplayType)
	}
	if env.Metadata["chunk_count"] != 2 {
		t.Errorf("expected chunk_count 2, got %v", env.Metadata["chunk_count"])
	}
	if len(env.Attachments) != 1 || env.Attachments[0] != "chunks" {
		t.Errorf("expected chunks attachment, got %v", env.Attachments)
	}
}

func TestFormat_LLMBeforePlainText(t *testing.T) {
	r := NewRegistry()

	env := r.Format("mock_llm", map[string]any{
		"text":  "response",
		"model": "mock-1",
	})

	if env.DisplayType != "text" {
		t.Errorf("expected text, got %s", env.DisplayType)
	}
	if env.Metadata["model"] != "mock-1" {
		t.Errorf("llm formatter should capture the model: %v", env.Metadata)
	}
}

func TestFormat_HTTPResponse(t *testing.T) {
	r := NewRegistry()

	env := r.Format("http_request", map[string]any{
		"status_code": 200,
		"body":        "payload",
	})

	if env.DisplayType != "document" {
		t.Errorf("expected document, got %s", env.DisplayType)
	}
	if env.Metadata["status_code"] != 200 {
		t.Errorf("expected status_code, got %v", env.Metadata)
	}
}

func TestFormat_GenericFallbackAlwaysProducesEnvelope(t *testing.T) {
	r := NewRegistry()

	env := r.Format("custom_tool", map[string]any{
		"count":  float64(7),
		"nested": map[string]any{"a": 1, "b": 2},
	})

	if env == nil {
		t.Fatal("envelope must never be nil")
	}
	if env.DisplayType != "generic" {
		t.Errorf("expected generic, got %s", env.DisplayType)
	}
	if env.Metadata["count"] != float64(7) {
		t.Errorf("scalar should survive into metadata: %v", env.Metadata)
	}
}

func TestFormat_NilOutput(t *testing.T) {
	r := NewRegistry()

	env := r.Format("anything", nil)
	if env == nil {
		t.Fatal("envelope must never be nil")
	}
	if env.DisplayType != "generic" {
		t.Errorf("expected generic, got %s", env.DisplayType)
	}
}

func TestFormat_DoesNotMutateOutput(t *testing.T) {
	r := NewRegistry()

	long := strings.Repeat("x", metadataValueLimit+100)
	output := map[string]any{"text": long}

	env := r.Format("text_input", output)

	if output["text"] != long {
		t.Error("formatting must not mutate the original output")
	}
	got, _ := env.Metadata["text"].(string)
	if len(got) > metadataValueLimit+len("…") {
		t.Errorf("metadata value should be capped, got %d bytes", len(got))
	}
}

func TestRegister_CustomBeforeGeneric(t *testing.T) {
	r := NewRegistry()
	r.Register(&markerFormatter{})

	env := r.Format("marker_node", map[string]any{"marker": true})
	if env.DisplayType != "marker" {
		t.Errorf("custom formatter should win over generic: %s", env.DisplayType)
	}
}

type markerFormatter struct{}

func (f *markerFormatter) CanFormat(nodeType string, output map[string]any) bool {
	return nodeType == "marker_node"
}

func (f *markerFormatter) Format(nodeType string, output map[string]any) *domain.Envelope {
	return &domain.Envelope{DisplayType: "marker"}
}

func TestDeepCopy_BreaksSelfReference(t *testing.T) {
	cyclic := map[string]any{"text": "ok"}
	cyclic["self"] = cyclic

	list := []any{"item"}
	list[0] = list
	cyclic["list"] = list

	got := deepCopy(cyclic)

	if got["text"] != "ok" {
		t.Errorf("plain fields must survive the copy: %v", got["text"])
	}
	if got["self"] != nil {
		t.Errorf("self-referential map must be broken to nil, got %T", got["self"])
	}
	inner, ok := got["list"].([]any)
	if !ok || len(inner) != 1 || inner[0] != nil {
		t.Errorf("self-referential list must be broken to nil, got %v", got["list"])
	}
}

func TestDeepCopy_SharedContainerIsNotACycle(t *testing.T) {
	shared := map[string]any{"v": 1}
	src := map[string]any{"a": shared, "b": shared}

	got := deepCopy(src)

	a, _ := got["a"].(map[string]any)
	b, _ := got["b"].(map[string]any)
	if a == nil || b == nil {
		t.Fatalf("diamond sharing is not a cycle: %v", got)
	}
	if a["v"] != 1 || b["v"] != 1 {
		t.Errorf("both copies must carry the value: %v, %v", a, b)
	}
}

func TestFormat_CyclicOutputDoesNotPanic(t *testing.T) {
	cyclic := map[string]any{"text": "hello"}
	cyclic["self"] = cyclic

	env := NewRegistry().Format("text_input", cyclic)
	if env == nil {
		t.Fatal("expected an envelope for cyclic output")
	}
}
