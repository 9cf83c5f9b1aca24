package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/sahayak-ai/agent-orchestrator/pkg/agents"
	"github.com/sahayak-ai/agent-orchestrator/pkg/events"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
	"github.com/sahayak-ai/agent-orchestrator/pkg/telemetry"
)

// fakeAgent answers any configured selector with a canned payload or error.
type fakeAgent struct {
	desc    agents.Descriptor
	ops     map[agents.Selector]agents.Operation
	lastArg agents.Args
}

func newFakeAgent(t routing.AgentType, selectors ...agents.Selector) *fakeAgent {
	f := &fakeAgent{
		desc: agents.Descriptor{Type: t, Name: string(t), Version: "1.0.0"},
		ops:  make(map[agents.Selector]agents.Operation),
	}
	for _, sel := range selectors {
		sel := sel
		f.ops[sel] = func(_ context.Context, args agents.Args) (map[string]any, error) {
			f.lastArg = args
			return map[string]any{"answer": "because of scattering", "selector": string(sel)}, nil
		}
	}
	return f
}

func (f *fakeAgent) Descriptor() agents.Descriptor                    { return f.desc }
func (f *fakeAgent) Operations() map[agents.Selector]agents.Operation { return f.ops }

// scriptedGenerator returns a fixed reply or an error.
type scriptedGenerator struct {
	reply string
	calls int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.reply == "" {
		return "", fmt.Errorf("model unavailable")
	}
	return g.reply, nil
}

func newTestDispatcher(gen *scriptedGenerator, builders ...agents.Builder) (*Dispatcher, *telemetry.Store, *telemetry.History) {
	classifier := routing.NewClassifier(gen, nil)
	reg := agents.NewRegistry(builders)
	stats := telemetry.NewStore()
	history := telemetry.NewHistory(nil)
	return NewDispatcher(classifier, reg, stats, history, nil), stats, history
}

func agentBuilder(a agents.Agent) agents.Builder {
	return func() (agents.Agent, error) { return a, nil }
}

func TestHandleSuccess(t *testing.T) {
	doubt := newFakeAgent(routing.AgentDoubtAssistance, agents.SelAnswerQuestion)
	gen := &scriptedGenerator{} // model down, keyword fallback routes to default
	d, stats, history := newTestDispatcher(gen, agentBuilder(doubt))

	result := d.Handle(context.Background(), "Why is the sky blue?", nil, "")

	if !result.Success {
		t.Fatalf("success = false, error = %q", result.Error)
	}
	if result.AgentName != "doubt-assistance" {
		t.Errorf("agent name = %q", result.AgentName)
	}
	if result.Payload["answer"] != "because of scattering" {
		t.Errorf("payload = %v", result.Payload)
	}
	if doubt.lastArg["question"] != "Why is the sky blue?" {
		t.Errorf("question arg = %v", doubt.lastArg["question"])
	}
	if doubt.lastArg["grade_level"] != 5 || doubt.lastArg["language"] != "english" {
		t.Errorf("defaults not applied: %v", doubt.lastArg)
	}
	if _, ok := result.Metadata["routing_confidence"]; !ok {
		t.Error("metadata missing routing_confidence")
	}

	snap := stats.Snapshot(history.Len())
	if snap.TotalRequests != 1 || snap.AgentUsage["doubt-assistance"].SuccessfulRequests != 1 {
		t.Errorf("telemetry = %+v", snap)
	}
	if history.Len() != 1 {
		t.Errorf("history entries = %d", history.Len())
	}
}

func TestHandleCapabilityNotFound(t *testing.T) {
	// Registry is empty; default routing targets doubt-assistance.
	gen := &scriptedGenerator{}
	d, stats, history := newTestDispatcher(gen)

	result := d.Handle(context.Background(), "Why is the sky blue?", nil, PriorityNormal)

	if result.Success {
		t.Fatal("success = true for missing capability")
	}
	if result.AgentName != "unknown" {
		t.Errorf("agent name = %q, want unknown", result.AgentName)
	}
	if result.Error != "capability not found: doubt-assistance" {
		t.Errorf("error = %q", result.Error)
	}

	// Telemetry and history record the failure exactly once.
	snap := stats.Snapshot(history.Len())
	if snap.AgentUsage["doubt-assistance"].FailedRequests != 1 {
		t.Errorf("telemetry = %+v", snap)
	}
	if history.Len() != 1 {
		t.Errorf("history entries = %d", history.Len())
	}
}

func TestHandleOperationError(t *testing.T) {
	failing := &fakeAgent{
		desc: agents.Descriptor{Type: routing.AgentDoubtAssistance, Name: "Doubt Assistant", Version: "1.0.0"},
		ops: map[agents.Selector]agents.Operation{
			agents.SelAnswerQuestion: func(_ context.Context, _ agents.Args) (map[string]any, error) {
				return nil, fmt.Errorf("downstream unavailable")
			},
		},
	}
	gen := &scriptedGenerator{}
	d, stats, _ := newTestDispatcher(gen, agentBuilder(failing))

	result := d.Handle(context.Background(), "Why?", nil, "")

	if result.Success {
		t.Fatal("success = true for failing operation")
	}
	if result.AgentName != "doubt-assistance" {
		t.Errorf("agent name = %q, want the routed type", result.AgentName)
	}
	if result.Error != "downstream unavailable" {
		t.Errorf("error = %q", result.Error)
	}
	if stats.Snapshot(0).AgentUsage["doubt-assistance"].FailedRequests != 1 {
		t.Error("failure not recorded in telemetry")
	}
}

func TestHandleOperationPanicIsCaught(t *testing.T) {
	panicking := &fakeAgent{
		desc: agents.Descriptor{Type: routing.AgentDoubtAssistance, Name: "panicky", Version: "1.0.0"},
		ops: map[agents.Selector]agents.Operation{
			agents.SelAnswerQuestion: func(_ context.Context, _ agents.Args) (map[string]any, error) {
				panic("nil map write")
			},
		},
	}
	d, _, _ := newTestDispatcher(&scriptedGenerator{}, agentBuilder(panicking))

	result := d.Handle(context.Background(), "Why?", nil, "")

	if result.Success {
		t.Fatal("success = true after panic")
	}
	if !strings.Contains(result.Error, "nil map write") {
		t.Errorf("error = %q", result.Error)
	}
}

func TestHandleContextOverridesIntentParameters(t *testing.T) {
	game := newFakeAgent(routing.AgentGamePlanning, agents.SelGetGame, agents.SelGetAnswer)
	gen := &scriptedGenerator{
		reply: `{"agent_type":"game-planning","confidence":0.9,"parameters":{"game_type":"riddles","difficulty":"basic"},"reasoning":"game request"}`,
	}
	d, _, _ := newTestDispatcher(gen, agentBuilder(game))

	result := d.Handle(context.Background(), "show game answer", map[string]any{
		"game_type":  "sudoku",
		"difficulty": "hard",
	}, "")

	if !result.Success {
		t.Fatalf("error = %q", result.Error)
	}
	// Raw text contains "answer", so the solution operation is selected.
	if game.lastArg == nil || result.Payload["selector"] != "get_answer" {
		t.Errorf("selector = %v", result.Payload["selector"])
	}
	// Caller context wins over the classifier's extracted parameters.
	if game.lastArg["game_type"] != "sudoku" || game.lastArg["difficulty"] != "hard" {
		t.Errorf("args = %v", game.lastArg)
	}
}

func TestHandlePublishesEvent(t *testing.T) {
	doubt := newFakeAgent(routing.AgentDoubtAssistance, agents.SelAnswerQuestion)
	classifier := routing.NewClassifier(&scriptedGenerator{}, nil)
	reg := agents.NewRegistry([]agents.Builder{agentBuilder(doubt)})

	var published *events.DispatchCompletedEvent
	pub := events.NewCallbackPublisher(func(_ context.Context, e *events.DispatchCompletedEvent) error {
		published = e
		return nil
	})
	d := NewDispatcher(classifier, reg, telemetry.NewStore(), telemetry.NewHistory(nil), &Opts{Publisher: pub})

	d.Handle(context.Background(), "Why is the sky blue?", nil, "")

	if published == nil {
		t.Fatal("no event published")
	}
	if published.AgentType != "doubt-assistance" || !published.Success {
		t.Errorf("event = %+v", published)
	}
}

func TestDispatchProcessEnvelope(t *testing.T) {
	doubt := newFakeAgent(routing.AgentDoubtAssistance, agents.SelAnswerQuestion)
	d, _, _ := newTestDispatcher(&scriptedGenerator{}, agentBuilder(doubt))

	params, _ := json.Marshal(ProcessInput{Request: "Why is the sky blue?"})
	resp := d.Dispatch(context.Background(), &OrchestratorRequest{ID: "req-1", Method: "process", Params: params})

	if !resp.Ok {
		t.Fatalf("resp = %+v", resp)
	}
	result, ok := resp.Result.(Result)
	if !ok {
		t.Fatalf("result type = %T", resp.Result)
	}
	if !result.Success {
		t.Errorf("result = %+v", result)
	}
}

func TestDispatchRejectsMalformedParams(t *testing.T) {
	d, _, _ := newTestDispatcher(&scriptedGenerator{})

	resp := d.Dispatch(context.Background(), &OrchestratorRequest{ID: "req-2", Method: "process", Params: json.RawMessage(`{bad`)})
	if resp.Ok || resp.Error == nil || resp.Error.Code != "INVALID_ARGUMENT" {
		t.Errorf("resp = %+v", resp)
	}

	empty, _ := json.Marshal(ProcessInput{})
	resp = d.Dispatch(context.Background(), &OrchestratorRequest{ID: "req-3", Method: "process", Params: empty})
	if resp.Ok || resp.Error == nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	d, _, _ := newTestDispatcher(&scriptedGenerator{})

	resp := d.Dispatch(context.Background(), &OrchestratorRequest{ID: "req-4", Method: "explode"})
	if resp.Ok || resp.Error == nil || resp.Error.Code != "METHOD_NOT_FOUND" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDispatchStatsAndHistory(t *testing.T) {
	doubt := newFakeAgent(routing.AgentDoubtAssistance, agents.SelAnswerQuestion)
	d, _, _ := newTestDispatcher(&scriptedGenerator{}, agentBuilder(doubt))

	for i := 0; i < 3; i++ {
		d.Handle(context.Background(), fmt.Sprintf("question %d", i), nil, "")
	}

	statsResp := d.Dispatch(context.Background(), &OrchestratorRequest{ID: "s", Method: "stats"})
	snap, ok := statsResp.Result.(telemetry.Snapshot)
	if !ok {
		t.Fatalf("stats result type = %T", statsResp.Result)
	}
	if snap.TotalRequests != 3 || snap.HistoryEntries != 3 {
		t.Errorf("snapshot = %+v", snap)
	}

	histParams, _ := json.Marshal(HistoryInput{Limit: 2})
	histResp := d.Dispatch(context.Background(), &OrchestratorRequest{ID: "h", Method: "history", Params: histParams})
	entries, ok := histResp.Result.([]telemetry.Entry)
	if !ok {
		t.Fatalf("history result type = %T", histResp.Result)
	}
	if len(entries) != 2 || entries[1].Request != "question 2" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestDispatchAgentsAndHealth(t *testing.T) {
	doubt := newFakeAgent(routing.AgentDoubtAssistance, agents.SelAnswerQuestion)
	d, _, _ := newTestDispatcher(&scriptedGenerator{}, agentBuilder(doubt))

	agentsResp := d.Dispatch(context.Background(), &OrchestratorRequest{ID: "a", Method: "agents"})
	infos, ok := agentsResp.Result.([]agents.AgentInfo)
	if !ok || len(infos) != 1 {
		t.Fatalf("agents result = %+v", agentsResp.Result)
	}

	healthResp := d.Dispatch(context.Background(), &OrchestratorRequest{ID: "hc", Method: "health"})
	report, ok := healthResp.Result.(*agents.HealthReport)
	if !ok {
		t.Fatalf("health result type = %T", healthResp.Result)
	}
	// fakeAgent has no health operation, so it reports unknown.
	if report.AgentStatus["doubt-assistance"] != agents.HealthUnknown {
		t.Errorf("report = %+v", report)
	}
}
