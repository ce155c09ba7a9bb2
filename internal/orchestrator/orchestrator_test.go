package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/nodes"
)

// fakeStream собирает опубликованные события.
type fakeStream struct {
	mu      sync.Mutex
	created []string
	removed []string
	events  []domain.StreamEvent
}

func (s *fakeStream) CreateQueue(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, runID)
}

func (s *fakeStream) Publish(runID string, ev domain.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *fakeStream) Remove(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, runID)
}

func (s *fakeStream) eventTypes() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]domain.EventType, len(s.events))
	for i, ev := range s.events {
		types[i] = ev.Type
	}
	return types
}

func newTestOrchestrator(stream EventStream) *Orchestrator {
	return New(Config{
		Registry: nodes.DefaultRegistry(),
		Stream:   stream,
	})
}

func chainGraph() *domain.Graph {
	return &domain.Graph{
		ID:   "g-chain",
		Name: "chain",
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "text_input", Config: map[string]any{"text": "hello world"}},
			{ID: "B", Type: "chunk", Config: map[string]any{"size": 5, "overlap": 0}},
		},
		Edges: []domain.Edge{
			{SourceID: "A", TargetID: "B"},
		},
	}
}

func TestExecute_ChainCompletes(t *testing.T) {
	o := newTestOrchestrator(nil)

	run, err := o.Execute(context.Background(), chainGraph(), "tester")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s (%s)", run.Status, run.Error)
	}
	if run.CompletedAt == nil {
		t.Error("completed run must have completed_at")
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}

	// Выход A дошёл до B: chunk нарезал "hello world".
	b := run.Results["B"]
	if b.Status != domain.NodeCompleted {
		t.Fatalf("node B failed: %s", b.Error)
	}
	if b.Output["chunk_count"] == 0 {
		t.Errorf("expected chunks from upstream text: %v", b.Output)
	}
}

func TestExecute_NodeFailureDoesNotFailRun(t *testing.T) {
	o := newTestOrchestrator(nil)

	// A падает (text_input без text), B выполняется дальше.
	g := &domain.Graph{
		ID: "g-partial",
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "text_input"},
			{ID: "B", Type: "text_input", Config: map[string]any{"text": "still fine"}},
		},
		Edges: []domain.Edge{
			{SourceID: "A", TargetID: "B"},
		},
	}

	run, err := o.Execute(context.Background(), g, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.Status != domain.RunStatusCompleted {
		t.Fatalf("node failure must not flip run status: %s", run.Status)
	}
	if run.Results["A"].Status != domain.NodeFailed {
		t.Errorf("expected node A FAILED, got %s", run.Results["A"].Status)
	}
	if run.Results["B"].Status != domain.NodeCompleted {
		t.Errorf("downstream node must still run: %s", run.Results["B"].Status)
	}
}

func TestExecute_StructuralErrorFailsRun(t *testing.T) {
	o := newTestOrchestrator(nil)

	g := &domain.Graph{
		ID: "g-cycle",
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "text_input"},
			{ID: "B", Type: "text_input"},
		},
		Edges: []domain.Edge{
			{SourceID: "A", TargetID: "B"},
			{SourceID: "B", TargetID: "A"},
		},
	}

	run, err := o.Execute(context.Background(), g, "")

	var structural *engine.StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if run.Status != domain.RunStatusFailed {
		t.Errorf("expected FAILED run, got %s", run.Status)
	}
	if run.Error == "" {
		t.Error("failed run must carry the structural error text")
	}
	if len(run.Results) != 0 {
		t.Errorf("no node may execute on a structural error: %v", run.Results)
	}
}

func TestExecute_EventOrder(t *testing.T) {
	stream := &fakeStream{}
	o := newTestOrchestrator(stream)

	run, err := o.Execute(context.Background(), chainGraph(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.EventType{
		domain.EventLog, // run started
		domain.EventNodeStarted,
		domain.EventNodeCompleted,
		domain.EventNodeStarted,
		domain.EventNodeCompleted,
		domain.EventLog, // run completed
	}

	got := stream.eventTypes()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}

	runID := run.ID.String()
	if len(stream.created) != 1 || stream.created[0] != runID {
		t.Errorf("queue must be created for the run: %v", stream.created)
	}
	if len(stream.removed) != 1 || stream.removed[0] != runID {
		t.Errorf("queue must be removed after completion: %v", stream.removed)
	}
}

func TestExecute_CostAccumulates(t *testing.T) {
	o := newTestOrchestrator(nil)

	g := &domain.Graph{
		ID: "g-cost",
		Nodes: []domain.NodeDef{
			{ID: "in", Type: "text_input", Config: map[string]any{"text": "one two three four"}},
			{ID: "llm", Type: "mock_llm"},
		},
		Edges: []domain.Edge{
			{SourceID: "in", TargetID: "llm"},
		},
	}

	run, err := o.Execute(context.Background(), g, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.TotalCost <= 0 {
		t.Errorf("expected positive total cost, got %f", run.TotalCost)
	}
	if run.TotalCost != run.Results["llm"].Cost {
		t.Errorf("total cost must equal the sum of node costs: %f vs %f",
			run.TotalCost, run.Results["llm"].Cost)
	}
}

func TestExecute_PreviewCapsLongStrings(t *testing.T) {
	stream := &fakeStream{}
	o := newTestOrchestrator(stream)

	long := strings.Repeat("a", previewLimit+500)
	g := &domain.Graph{
		ID: "g-preview",
		Nodes: []domain.NodeDef{
			{ID: "A", Type: "text_input", Config: map[string]any{"text": long}},
		},
	}

	if _, err := o.Execute(context.Background(), g, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ev := range stream.events {
		if ev.Type != domain.EventNodeCompleted {
			continue
		}
		out, _ := ev.Data["output"].(map[string]any)
		text, _ := out["text"].(string)
		if len(text) > previewLimit+len("…") {
			t.Errorf("event preview must be capped: %d bytes", len(text))
		}
	}
}

func TestExecute_TraceRecordsEveryNode(t *testing.T) {
	o := newTestOrchestrator(nil)

	run, err := o.Execute(context.Background(), chainGraph(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var started, completed int
	for _, step := range run.Trace {
		switch step.Action {
		case domain.TraceStarted:
			started++
		case domain.TraceCompleted:
			completed++
		}
	}
	if started != 2 || completed != 2 {
		t.Errorf("expected 2 started/2 completed trace steps, got %d/%d", started, completed)
	}
}

func TestLaunch_AsyncRunReachesTerminalStatus(t *testing.T) {
	o := newTestOrchestrator(nil)

	run, err := o.Launch(context.Background(), chainGraph(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snap, err := o.GetRun(run.ID)
		if err != nil {
			t.Fatalf("run disappeared: %v", err)
		}
		if snap.Status.IsTerminal() {
			if snap.Status != domain.RunStatusCompleted {
				t.Fatalf("expected COMPLETED, got %s (%s)", snap.Status, snap.Error)
			}
			return
		}

		select {
		case <-deadline:
			t.Fatal("run did not finish in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGetRun_UnknownID(t *testing.T) {
	o := newTestOrchestrator(nil)

	run, _ := o.Execute(context.Background(), chainGraph(), "")

	if _, err := o.GetRun(run.ID); err != nil {
		t.Errorf("finished run must stay readable: %v", err)
	}

	g := chainGraph()
	unknown := domain.NewRun(g.ID, "")
	if _, err := o.GetRun(unknown.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRuns_IncludesFinished(t *testing.T) {
	o := newTestOrchestrator(nil)

	first, _ := o.Execute(context.Background(), chainGraph(), "")
	second, _ := o.Execute(context.Background(), chainGraph(), "")

	runs := o.ListRuns()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Новые — первыми.
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Errorf("expected newest-first order: %v, %v", runs[0].ID, runs[1].ID)
	}
}

func TestExecute_AfterStop(t *testing.T) {
	o := newTestOrchestrator(nil)
	o.Stop()

	if _, err := o.Execute(context.Background(), chainGraph(), ""); !errors.Is(err, ErrOrchestratorStopped) {
		t.Errorf("expected ErrOrchestratorStopped, got %v", err)
	}
}

// panicSink — получатель событий, который падает на каждой публикации.
type panicSink struct{}

func (panicSink) Publish(string, domain.StreamEvent) {
	panic("sink exploded")
}

func TestExecute_UncaughtErrorFailsRun(t *testing.T) {
	stream := &fakeStream{}
	o := New(Config{
		Registry: nodes.DefaultRegistry(),
		Stream:   stream,
		Sinks:    []EventSink{panicSink{}},
	})

	run, err := o.Execute(context.Background(), chainGraph(), "")
	if err == nil {
		t.Fatal("expected an error for the uncaught panic")
	}
	if !strings.Contains(err.Error(), "sink exploded") {
		t.Errorf("error must carry the panic value: %v", err)
	}

	if run.Status != domain.RunStatusFailed {
		t.Fatalf("expected FAILED, got %s", run.Status)
	}
	if run.CompletedAt == nil {
		t.Error("failed run must have completed_at")
	}

	// Стрим закрыт немедленно, run остаётся читаемым.
	runID := run.ID.String()
	if len(stream.removed) != 1 || stream.removed[0] != runID {
		t.Errorf("queue must be removed after the failure: %v", stream.removed)
	}
	if _, err := o.GetRun(run.ID); err != nil {
		t.Errorf("failed run must stay readable: %v", err)
	}
}

func TestLaunch_UncaughtErrorDoesNotKillProcess(t *testing.T) {
	o := New(Config{
		Registry: nodes.DefaultRegistry(),
		Sinks:    []EventSink{panicSink{}},
	})

	run, err := o.Launch(context.Background(), chainGraph(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snap, err := o.GetRun(run.ID)
		if err != nil {
			t.Fatalf("run disappeared: %v", err)
		}
		if snap.Status.IsTerminal() {
			if snap.Status != domain.RunStatusFailed {
				t.Fatalf("expected FAILED, got %s", snap.Status)
			}
			if snap.Error == "" {
				t.Error("failed run must carry the error text")
			}
			return
		}

		select {
		case <-deadline:
			t.Fatal("run did not reach a terminal status")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
