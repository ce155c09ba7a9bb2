package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/nodes"
)

// panicNode — узел, который всегда паникует.
type panicNode struct{}

func (n *panicNode) Type() string { return "panic_node" }

func (n *panicNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	panic("boom")
}

func (n *panicNode) EstimateCost(inputs, config map[string]any) float64 { return 0 }

// echoConfigNode — возвращает полученную конфигурацию.
type echoConfigNode struct{}

func (n *echoConfigNode) Type() string { return "echo_config" }

func (n *echoConfigNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	out := map[string]any{}
	for k, v := range config {
		out[k] = v
	}
	return out, nil
}

func (n *echoConfigNode) EstimateCost(inputs, config map[string]any) float64 { return 0 }

// pricedNode — узел с оценкой стоимости, но без заявленной стоимости.
type pricedNode struct{}

func (n *pricedNode) Type() string { return "priced" }

func (n *pricedNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	return map[string]any{"text": "done"}, nil
}

func (n *pricedNode) EstimateCost(inputs, config map[string]any) float64 { return 0.05 }

func testRegistry() *nodes.Registry {
	r := nodes.DefaultRegistry()
	r.Register(&panicNode{})
	r.Register(&echoConfigNode{})
	r.Register(&pricedNode{})
	return r
}

func TestRun_Success(t *testing.T) {
	r := New(Config{Registry: testRegistry()})

	res := r.Run(context.Background(), domain.NodeDef{
		ID:     "a",
		Type:   "text_input",
		Config: map[string]any{"text": "hello"},
	}, nil, Metadata{RunID: "r1"})

	if res.Status != domain.NodeCompleted {
		t.Fatalf("expected COMPLETED, got %s (%s)", res.Status, res.Error)
	}
	if res.Output["text"] != "hello" {
		t.Errorf("expected output text, got %v", res.Output)
	}
	if res.Display == nil {
		t.Error("completed result must carry a display envelope")
	}
	if res.CompletedAt.Before(res.StartedAt) {
		t.Error("completed_at must not precede started_at")
	}
}

func TestRun_PanicBecomesFailedResult(t *testing.T) {
	r := New(Config{Registry: testRegistry()})

	res := r.Run(context.Background(), domain.NodeDef{ID: "p", Type: "panic_node"}, nil, Metadata{})

	if res.Status != domain.NodeFailed {
		t.Fatalf("expected FAILED, got %s", res.Status)
	}
	if !strings.Contains(res.Error, "boom") {
		t.Errorf("panic value should be captured: %q", res.Error)
	}
	if res.Cost != 0 {
		t.Errorf("failed node must cost 0, got %f", res.Cost)
	}
	if res.Output != nil {
		t.Errorf("failed node must not expose output: %v", res.Output)
	}
}

func TestRun_InBandErrorBecomesFailedResult(t *testing.T) {
	r := New(Config{Registry: testRegistry()})

	// text_input без text возвращает ожидаемую ошибку в результате.
	res := r.Run(context.Background(), domain.NodeDef{ID: "t", Type: "text_input"}, nil, Metadata{})

	if res.Status != domain.NodeFailed {
		t.Fatalf("expected FAILED, got %s", res.Status)
	}
	if res.Error == "" {
		t.Error("expected error message from the node")
	}
	if res.Cost != 0 {
		t.Errorf("failed node must cost 0, got %f", res.Cost)
	}
}

func TestRun_UnknownTypeFails(t *testing.T) {
	r := New(Config{Registry: testRegistry()})

	res := r.Run(context.Background(), domain.NodeDef{ID: "x", Type: "no_such_type"}, nil, Metadata{})

	if res.Status != domain.NodeFailed {
		t.Fatalf("expected FAILED, got %s", res.Status)
	}
}

func TestRun_MetadataInjectedWithoutMutatingGraph(t *testing.T) {
	r := New(Config{Registry: testRegistry()})

	def := domain.NodeDef{
		ID:     "e",
		Type:   "echo_config",
		Config: map[string]any{"static": "value"},
	}

	res := r.Run(context.Background(), def, nil, Metadata{RunID: "r1", GraphID: "g1", CallerID: "c1"})

	if res.Output["static"] != "value" {
		t.Errorf("static config must survive: %v", res.Output)
	}
	if res.Output["run_id"] != "r1" || res.Output["graph_id"] != "g1" || res.Output["caller_id"] != "c1" {
		t.Errorf("run metadata must be injected: %v", res.Output)
	}
	if _, ok := def.Config["run_id"]; ok {
		t.Error("graph definition must not be mutated")
	}
}

func TestRun_DeclaredCostTrusted(t *testing.T) {
	r := New(Config{Registry: testRegistry()})

	res := r.Run(context.Background(), domain.NodeDef{
		ID:     "llm",
		Type:   "mock_llm",
		Config: map[string]any{"prompt": "one two three"},
	}, nil, Metadata{})

	if res.Status != domain.NodeCompleted {
		t.Fatalf("expected COMPLETED, got %s (%s)", res.Status, res.Error)
	}
	declared, _ := res.Output["cost"].(float64)
	if res.Cost != declared {
		t.Errorf("declared cost must be trusted: result %f, declared %f", res.Cost, declared)
	}
	if res.TokensUsed == nil || res.TokensUsed["total_tokens"] == 0 {
		t.Errorf("token counts should be extracted: %v", res.TokensUsed)
	}
}

func TestRun_EstimateUsedWhenNoDeclaredCost(t *testing.T) {
	r := New(Config{Registry: testRegistry()})

	res := r.Run(context.Background(), domain.NodeDef{ID: "pr", Type: "priced"}, nil, Metadata{})

	if res.Status != domain.NodeCompleted {
		t.Fatalf("expected COMPLETED, got %s", res.Status)
	}
	if res.Cost != 0.05 {
		t.Errorf("expected estimated cost 0.05, got %f", res.Cost)
	}
}
