// Package tests contains end-to-end tests for the agent orchestrator.
// These tests start an embedded NATS server and run the full request/response
// flow through the dispatcher, simulating real client interactions.
package tests

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"

	"github.com/sahayak-ai/agent-orchestrator/pkg/agents"
	"github.com/sahayak-ai/agent-orchestrator/pkg/dispatch"
	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
	"github.com/sahayak-ai/agent-orchestrator/pkg/telemetry"
)

const (
	testOrchestratorSubject = "agent.test.orchestrator.v1"
	testPort                = 14340
)

// scriptedGenerator returns a canned reply, or fails when err is set.
type scriptedGenerator struct {
	reply string
	err   error
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

// testEnv holds the test environment for E2E tests.
type testEnv struct {
	nc      *comms.Conn
	ns      *commsserver.Server
	disp    *dispatch.Dispatcher
	reg     *agents.Registry
	stats   *telemetry.Store
	history *telemetry.History
}

// writeAssets seeds a temp data dir with the game images the game agent
// serves, and returns the dir.
func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	paths := []string{
		"sudoku/basic_question.jpeg", "sudoku/basic_answer.jpeg",
		"sudoku/hard_question.jpeg", "sudoku/hard_answer.jpeg",
	}
	for _, p := range paths {
		full := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("e2e_test - mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("jpeg"), 0o644); err != nil {
			t.Fatalf("e2e_test - write asset: %v", err)
		}
	}
	return dir
}

// setupE2E starts an embedded NATS server and stands up the full dispatch
// pipeline with scripted model clients: the classifier always routes to
// doubt-assistance, and the agents answer with a fixed sentence. No database
// and no knowledge store, so the knowledge agent fails construction and the
// registry runs in partial-availability mode.
func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	opts := &commsserver.Options{
		Host:   "127.0.0.1",
		Port:   testPort,
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := commsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("e2e_test - failed to create NATS server: %v", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("e2e_test - NATS server failed to start")
	}

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("e2e_test - failed to connect: %v", err)
	}

	classifierGen := &scriptedGenerator{
		reply: `{"agent_type": "doubt-assistance", "confidence": 0.92, "parameters": {"language": "english"}, "reasoning": "student question"}`,
	}
	agentGen := func() llm.Generator {
		return &scriptedGenerator{reply: "The sky looks blue because sunlight scatters in the air."}
	}

	reg := agents.NewRegistry(agents.DefaultBuilders(agents.Deps{
		NewGenerator: agentGen,
		DataDir:      writeAssets(t),
	}))
	classifier := routing.NewClassifier(classifierGen, nil)
	stats := telemetry.NewStore()
	history := telemetry.NewHistory(nil)
	disp := dispatch.NewDispatcher(classifier, reg, stats, history, nil)

	env := &testEnv{
		nc:      nc,
		ns:      ns,
		disp:    disp,
		reg:     reg,
		stats:   stats,
		history: history,
	}

	// Subscribe to the orchestrator subject (simulates the server subscription)
	_, err = nc.Subscribe(testOrchestratorSubject, func(msg *comms.Msg) {
		var req dispatch.OrchestratorRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			resp := &dispatch.OrchestratorResponse{
				Ok: false,
				Error: &dispatch.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: "Failed to decode request",
				},
			}
			data, _ := json.Marshal(resp)
			msg.Respond(data)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp := disp.Dispatch(ctx, &req)
		data, _ := json.Marshal(resp)
		msg.Respond(data)
	})
	if err != nil {
		nc.Close()
		ns.Shutdown()
		t.Fatalf("e2e_test - failed to subscribe: %v", err)
	}

	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return env
}

// sendRequest sends an orchestrator request over NATS and returns the response.
func sendRequest(t *testing.T, nc *comms.Conn, req *dispatch.OrchestratorRequest) *dispatch.OrchestratorResponse {
	t.Helper()

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("e2e_test - failed to marshal request: %v", err)
	}

	msg, err := nc.Request(testOrchestratorSubject, data, 10*time.Second)
	if err != nil {
		t.Fatalf("e2e_test - request failed: %v", err)
	}

	var resp dispatch.OrchestratorResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		t.Fatalf("e2e_test - failed to unmarshal response: %v", err)
	}

	return &resp
}

// decodeResult re-marshals the untyped response result into a dispatch.Result.
func decodeResult(t *testing.T, resp *dispatch.OrchestratorResponse) dispatch.Result {
	t.Helper()

	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("e2e_test - failed to marshal result: %v", err)
	}
	var result dispatch.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("e2e_test - failed to unmarshal result: %v", err)
	}
	return result
}

func processParams(t *testing.T, input dispatch.ProcessInput) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("e2e_test - failed to marshal params: %v", err)
	}
	return data
}

func TestE2E_ProcessDoubtQuestion(t *testing.T) {
	env := setupE2E(t)

	req := &dispatch.OrchestratorRequest{
		ID:     "e2e-doubt-1",
		Type:   "invoke",
		Method: "process",
		Params: processParams(t, dispatch.ProcessInput{Request: "Why is the sky blue?"}),
	}

	resp := sendRequest(t, env.nc, req)

	if !resp.Ok {
		t.Fatalf("e2e_test - expected Ok=true, got error: %v", resp.Error)
	}
	if resp.ID != "e2e-doubt-1" {
		t.Errorf("e2e_test - ID = %q, want %q", resp.ID, "e2e-doubt-1")
	}

	result := decodeResult(t, resp)
	if !result.Success {
		t.Fatalf("e2e_test - dispatch failed: %s", result.Error)
	}
	if result.AgentName != "doubt-assistance" {
		t.Errorf("e2e_test - agent = %q, want %q", result.AgentName, "doubt-assistance")
	}
	answer, _ := result.Payload["answer"].(string)
	if answer == "" {
		t.Error("e2e_test - expected non-empty answer in payload")
	}
	if result.ExecutionTime < 0 {
		t.Errorf("e2e_test - execution_time = %v, want >= 0", result.ExecutionTime)
	}
	if conf, ok := result.Metadata["routing_confidence"].(float64); !ok || conf != 0.92 {
		t.Errorf("e2e_test - routing_confidence = %v, want 0.92", result.Metadata["routing_confidence"])
	}
}

func TestE2E_BrailleTriggerOverridesModel(t *testing.T) {
	env := setupE2E(t)

	// The classifier is scripted to route everything to doubt-assistance,
	// so a braille landing proves the trigger override fired first.
	req := &dispatch.OrchestratorRequest{
		ID:     "e2e-braille-1",
		Method: "process",
		Params: processParams(t, dispatch.ProcessInput{Request: "convert hello to braille"}),
	}

	resp := sendRequest(t, env.nc, req)
	if !resp.Ok {
		t.Fatalf("e2e_test - expected Ok=true, got error: %v", resp.Error)
	}

	result := decodeResult(t, resp)
	if !result.Success {
		t.Fatalf("e2e_test - dispatch failed: %s", result.Error)
	}
	if result.AgentName != "braille-conversion" {
		t.Errorf("e2e_test - agent = %q, want %q", result.AgentName, "braille-conversion")
	}
	if conf, _ := result.Metadata["routing_confidence"].(float64); conf != 1.0 {
		t.Errorf("e2e_test - routing_confidence = %v, want 1.0", conf)
	}
}

func TestE2E_GameAnswerWithContext(t *testing.T) {
	env := setupE2E(t)

	classifierJSON := `{"agent_type": "game-planning", "confidence": 0.88, "parameters": {"game_type": "riddles"}, "reasoning": "game request"}`
	// Re-point the scripted classifier at game-planning for this test: the
	// pipeline is rebuilt locally around the same transport.
	classifier := routing.NewClassifier(&scriptedGenerator{reply: classifierJSON}, nil)
	disp := dispatch.NewDispatcher(classifier, env.reg, env.stats, env.history, nil)

	result := disp.Handle(context.Background(), "show me the game answer", map[string]any{
		"game_type":  "sudoku",
		"difficulty": "hard",
	}, "")

	if !result.Success {
		t.Fatalf("e2e_test - dispatch failed: %s", result.Error)
	}
	if result.AgentName != "game-planning" {
		t.Errorf("e2e_test - agent = %q, want %q", result.AgentName, "game-planning")
	}
	// Session context beats model parameters, and "answer" in the request
	// text selects the answer asset.
	path, _ := result.Payload["answer_path"].(string)
	if filepath.Base(path) != "hard_answer.jpeg" {
		t.Errorf("e2e_test - answer_path = %q, want hard_answer.jpeg", path)
	}
}

func TestE2E_CapabilityNotFound(t *testing.T) {
	env := setupE2E(t)

	// Route to a reserved type with no registered agent.
	classifierJSON := `{"agent_type": "video-intelligence", "confidence": 0.9, "parameters": {}, "reasoning": "video request"}`
	classifier := routing.NewClassifier(&scriptedGenerator{reply: classifierJSON}, nil)
	disp := dispatch.NewDispatcher(classifier, env.reg, env.stats, env.history, nil)

	result := disp.Handle(context.Background(), "summarize this video", nil, "")

	if result.Success {
		t.Error("e2e_test - expected Success=false for unregistered agent")
	}
	if result.AgentName != "unknown" {
		t.Errorf("e2e_test - agent = %q, want %q", result.AgentName, "unknown")
	}
	if result.Error != "capability not found: video-intelligence" {
		t.Errorf("e2e_test - error = %q, want %q", result.Error, "capability not found: video-intelligence")
	}
}

func TestE2E_ModelFailureFallsBack(t *testing.T) {
	env := setupE2E(t)

	classifier := routing.NewClassifier(&scriptedGenerator{err: errors.New("model unavailable")}, nil)
	disp := dispatch.NewDispatcher(classifier, env.reg, env.stats, env.history, nil)

	result := disp.Handle(context.Background(), "tell me a story about rivers", nil, "")

	if !result.Success {
		t.Fatalf("e2e_test - dispatch failed: %s", result.Error)
	}
	// Keyword fallback: "story" lands on content-generation at 0.7.
	if result.AgentName != "content-generation" {
		t.Errorf("e2e_test - agent = %q, want %q", result.AgentName, "content-generation")
	}
	if conf, _ := result.Metadata["routing_confidence"].(float64); conf != 0.7 {
		t.Errorf("e2e_test - routing_confidence = %v, want 0.7", conf)
	}
}

func TestE2E_UnknownMethod(t *testing.T) {
	env := setupE2E(t)

	req := &dispatch.OrchestratorRequest{
		ID:     "e2e-unknown-1",
		Method: "nonexistent",
		Params: json.RawMessage(`{}`),
	}

	resp := sendRequest(t, env.nc, req)

	if resp.Ok {
		t.Error("e2e_test - expected Ok=false for unknown method")
	}
	if resp.ID != "e2e-unknown-1" {
		t.Errorf("e2e_test - ID = %q, want %q", resp.ID, "e2e-unknown-1")
	}
	if resp.Error == nil {
		t.Fatal("e2e_test - expected error, got nil")
	}
	if resp.Error.Code != "METHOD_NOT_FOUND" {
		t.Errorf("e2e_test - error code = %q, want %q", resp.Error.Code, "METHOD_NOT_FOUND")
	}
	if resp.Error.Retryable {
		t.Error("e2e_test - METHOD_NOT_FOUND should not be retryable")
	}
}

func TestE2E_InvalidJSON(t *testing.T) {
	env := setupE2E(t)

	msg, err := env.nc.Request(testOrchestratorSubject, []byte(`{invalid json`), 10*time.Second)
	if err != nil {
		t.Fatalf("e2e_test - request failed: %v", err)
	}

	var resp dispatch.OrchestratorResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		t.Fatalf("e2e_test - failed to unmarshal response: %v", err)
	}

	if resp.Ok {
		t.Error("e2e_test - expected Ok=false for invalid JSON")
	}
	if resp.Error == nil {
		t.Fatal("e2e_test - expected error for invalid JSON")
	}
	if resp.Error.Code != "INVALID_REQUEST" {
		t.Errorf("e2e_test - error code = %q, want %q", resp.Error.Code, "INVALID_REQUEST")
	}
}

func TestE2E_ProcessRequiresText(t *testing.T) {
	env := setupE2E(t)

	req := &dispatch.OrchestratorRequest{
		ID:     "e2e-empty-1",
		Method: "process",
		Params: json.RawMessage(`{"request": ""}`),
	}

	resp := sendRequest(t, env.nc, req)

	if resp.Ok {
		t.Error("e2e_test - expected Ok=false for empty request text")
	}
	if resp.Error == nil {
		t.Fatal("e2e_test - expected error, got nil")
	}
	if resp.Error.Code != "INVALID_ARGUMENT" {
		t.Errorf("e2e_test - error code = %q, want %q", resp.Error.Code, "INVALID_ARGUMENT")
	}
}

func TestE2E_StatsReflectDispatches(t *testing.T) {
	env := setupE2E(t)

	for i := 0; i < 3; i++ {
		req := &dispatch.OrchestratorRequest{
			ID:     "e2e-stats-seed",
			Method: "process",
			Params: processParams(t, dispatch.ProcessInput{Request: "Why do birds migrate?"}),
		}
		if resp := sendRequest(t, env.nc, req); !resp.Ok {
			t.Fatalf("e2e_test - seed dispatch failed: %v", resp.Error)
		}
	}

	req := &dispatch.OrchestratorRequest{
		ID:     "e2e-stats-1",
		Method: "stats",
		Params: json.RawMessage(`{}`),
	}
	resp := sendRequest(t, env.nc, req)
	if !resp.Ok {
		t.Fatalf("e2e_test - stats failed: %v", resp.Error)
	}

	raw, _ := json.Marshal(resp.Result)
	var snap telemetry.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("e2e_test - failed to unmarshal snapshot: %v", err)
	}

	if snap.TotalRequests != 3 {
		t.Errorf("e2e_test - total_requests = %d, want 3", snap.TotalRequests)
	}
	doubt, ok := snap.AgentUsage["doubt-assistance"]
	if !ok {
		t.Fatal("e2e_test - expected doubt-assistance usage entry")
	}
	if doubt.SuccessfulRequests != 3 {
		t.Errorf("e2e_test - successful_requests = %d, want 3", doubt.SuccessfulRequests)
	}
	if snap.HistoryEntries != 3 {
		t.Errorf("e2e_test - history_entries = %d, want 3", snap.HistoryEntries)
	}
}

func TestE2E_HistoryMethod(t *testing.T) {
	env := setupE2E(t)

	req := &dispatch.OrchestratorRequest{
		ID:     "e2e-history-seed",
		Method: "process",
		Params: processParams(t, dispatch.ProcessInput{Request: "What is photosynthesis?"}),
	}
	if resp := sendRequest(t, env.nc, req); !resp.Ok {
		t.Fatalf("e2e_test - seed dispatch failed: %v", resp.Error)
	}

	histReq := &dispatch.OrchestratorRequest{
		ID:     "e2e-history-1",
		Method: "history",
		Params: json.RawMessage(`{"limit": 10}`),
	}
	resp := sendRequest(t, env.nc, histReq)
	if !resp.Ok {
		t.Fatalf("e2e_test - history failed: %v", resp.Error)
	}

	raw, _ := json.Marshal(resp.Result)
	var entries []telemetry.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("e2e_test - failed to unmarshal entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("e2e_test - entries = %d, want 1", len(entries))
	}
	if entries[0].Request != "What is photosynthesis?" {
		t.Errorf("e2e_test - request = %q", entries[0].Request)
	}
	if !entries[0].Success {
		t.Error("e2e_test - expected successful history entry")
	}
}

func TestE2E_HealthAndAgents(t *testing.T) {
	env := setupE2E(t)

	resp := sendRequest(t, env.nc, &dispatch.OrchestratorRequest{
		ID:     "e2e-health-1",
		Method: "health",
		Params: json.RawMessage(`{}`),
	})
	if !resp.Ok {
		t.Fatalf("e2e_test - health failed: %v", resp.Error)
	}
	if resp.Result == nil {
		t.Fatal("e2e_test - expected health result")
	}

	resp = sendRequest(t, env.nc, &dispatch.OrchestratorRequest{
		ID:     "e2e-agents-1",
		Method: "agents",
		Params: json.RawMessage(`{}`),
	})
	if !resp.Ok {
		t.Fatalf("e2e_test - agents failed: %v", resp.Error)
	}

	raw, _ := json.Marshal(resp.Result)
	var infos []agents.AgentInfo
	if err := json.Unmarshal(raw, &infos); err != nil {
		t.Fatalf("e2e_test - failed to unmarshal agent list: %v", err)
	}
	// Knowledge agent has no store here, so 8 of the 9 builders register.
	if len(infos) != 8 {
		t.Errorf("e2e_test - registered agents = %d, want 8", len(infos))
	}
}

func TestE2E_IngestWithoutKnowledgeStore(t *testing.T) {
	env := setupE2E(t)

	req := &dispatch.OrchestratorRequest{
		ID:     "e2e-ingest-1",
		Method: "ingest",
		Params: json.RawMessage(`{"documents": ["Rivers carry sediment downstream."]}`),
	}

	resp := sendRequest(t, env.nc, req)

	if resp.Ok {
		t.Error("e2e_test - expected Ok=false without a knowledge store")
	}
	if resp.Error == nil {
		t.Fatal("e2e_test - expected error, got nil")
	}
	if resp.Error.Code != "UNAVAILABLE" {
		t.Errorf("e2e_test - error code = %q, want %q", resp.Error.Code, "UNAVAILABLE")
	}
}

func TestE2E_RequestIDPreservation(t *testing.T) {
	env := setupE2E(t)

	ids := []string{"req-001", "req-002", "unique-xyz-789", ""}
	for _, id := range ids {
		req := &dispatch.OrchestratorRequest{
			ID:     id,
			Method: "nonexistent",
			Params: json.RawMessage(`{}`),
		}

		resp := sendRequest(t, env.nc, req)

		if resp.ID != id {
			t.Errorf("e2e_test - ID = %q, want %q", resp.ID, id)
		}
	}
}

func TestE2E_ConcurrentRequests(t *testing.T) {
	env := setupE2E(t)

	const numRequests = 20
	results := make(chan *dispatch.OrchestratorResponse, numRequests)

	for i := 0; i < numRequests; i++ {
		go func(idx int) {
			req := &dispatch.OrchestratorRequest{
				ID:     "concurrent-" + string(rune('a'+idx%26)),
				Method: "process",
				Params: processParams(t, dispatch.ProcessInput{Request: "Why do seasons change?"}),
			}
			results <- sendRequest(t, env.nc, req)
		}(i)
	}

	for i := 0; i < numRequests; i++ {
		select {
		case resp := <-results:
			if !resp.Ok {
				t.Errorf("e2e_test - concurrent request failed: %v", resp.Error)
			}
		case <-time.After(30 * time.Second):
			t.Fatalf("e2e_test - timeout waiting for concurrent request %d", i)
		}
	}
}
