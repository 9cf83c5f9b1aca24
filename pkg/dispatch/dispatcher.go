package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/agents"
	"github.com/sahayak-ai/agent-orchestrator/pkg/events"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
	"github.com/sahayak-ai/agent-orchestrator/pkg/telemetry"
)

const logPrefix = "dispatch:dispatcher"

// Sentinel agent names for envelopes with no resolved agent.
const (
	nameOrchestrator = "orchestrator"
	nameUnknown      = "unknown"
)

// Dispatcher is the public entry point: it routes a request to an agent,
// invokes the selected operation and records the outcome. Handle never
// returns an error; every failure path yields a Result with Success false.
type Dispatcher struct {
	classifier *routing.Classifier
	registry   *agents.Registry
	stats      *telemetry.Store
	history    *telemetry.History
	publisher  events.Publisher
	knowledge  *agents.KnowledgeStore
	now        func() time.Time
}

// Opts configures optional Dispatcher collaborators.
type Opts struct {
	// Publisher receives a DispatchCompletedEvent per handled request. Nil
	// disables event publishing.
	Publisher events.Publisher
	// Knowledge serves the "ingest" envelope method directly. Nil disables it.
	Knowledge *agents.KnowledgeStore
}

// NewDispatcher creates a new Dispatcher. Pass nil for opts to use defaults.
func NewDispatcher(classifier *routing.Classifier, reg *agents.Registry, stats *telemetry.Store, history *telemetry.History, opts *Opts) *Dispatcher {
	d := &Dispatcher{
		classifier: classifier,
		registry:   reg,
		stats:      stats,
		history:    history,
		publisher:  &events.NoOpPublisher{},
		now:        time.Now,
	}
	if opts != nil {
		if opts.Publisher != nil {
			d.publisher = opts.Publisher
		}
		d.knowledge = opts.Knowledge
	}
	return d
}

// Handle processes one request end to end: classify, adapt parameters,
// invoke, record. Priority is accepted but not acted on.
func (d *Dispatcher) Handle(ctx context.Context, request string, reqCtx map[string]any, priority Priority) Result {
	if reqCtx == nil {
		reqCtx = map[string]any{}
	}
	if priority == "" {
		priority = PriorityNormal
	}
	start := d.now()

	intent, err := d.classify(ctx, request, reqCtx)
	if err != nil {
		// Classify is contractually total; this path exists so a bug there
		// still degrades to a failure envelope. No agent type was resolved,
		// so there is nothing to attribute telemetry to.
		slog.Error(fmt.Sprintf("%s - classification panic: %v", logPrefix, err))
		return Result{
			Success:       false,
			AgentName:     nameOrchestrator,
			ExecutionTime: d.now().Sub(start).Seconds(),
			Error:         fmt.Sprintf("classification failed: %v", err),
		}
	}

	if !d.classifier.IsConfident(intent) {
		slog.Warn(fmt.Sprintf("%s - low routing confidence %.2f for %s, proceeding", logPrefix, intent.Confidence, intent.AgentType))
	}

	agent, ok := d.registry.Get(intent.AgentType)
	if !ok {
		result := Result{
			Success:       false,
			AgentName:     nameUnknown,
			ExecutionTime: d.now().Sub(start).Seconds(),
			Error:         fmt.Sprintf("capability not found: %s", intent.AgentType),
		}
		d.record(ctx, request, reqCtx, intent, result)
		return result
	}

	// Explicit caller context wins over the classifier's extracted parameters.
	merged := make(map[string]any, len(intent.Parameters)+len(reqCtx))
	for k, v := range intent.Parameters {
		merged[k] = v
	}
	for k, v := range reqCtx {
		merged[k] = v
	}

	shape := BuildCall(intent.AgentType, merged, request)
	slog.Info(fmt.Sprintf("%s - invoking %s.%s (confidence %.2f)", logPrefix, intent.AgentType, shape.Selector, intent.Confidence))

	op, ok := agent.Operations()[shape.Selector]
	if !ok {
		// ValidateRegistry rules this out at startup for known types.
		result := Result{
			Success:       false,
			AgentName:     string(intent.AgentType),
			ExecutionTime: d.now().Sub(start).Seconds(),
			Error:         fmt.Sprintf("operation %q not exposed by %s", shape.Selector, intent.AgentType),
		}
		d.record(ctx, request, reqCtx, intent, result)
		return result
	}

	// Execution time covers the operation alone, not routing.
	invokeStart := d.now()
	payload, opErr := d.invoke(ctx, op, shape.Args)
	elapsed := d.now().Sub(invokeStart).Seconds()

	var result Result
	if opErr != nil {
		result = Result{
			Success:       false,
			AgentName:     string(intent.AgentType),
			ExecutionTime: elapsed,
			Error:         opErr.Error(),
		}
	} else {
		result = Result{
			Success:       true,
			Payload:       payload,
			AgentName:     string(intent.AgentType),
			ExecutionTime: elapsed,
			Metadata: map[string]any{
				"routing_confidence": intent.Confidence,
				"routing_reasoning":  intent.Reasoning,
				"parameters_used":    map[string]any(shape.Args),
			},
		}
	}

	d.record(ctx, request, reqCtx, intent, result)
	return result
}

// classify wraps the classifier call so an unexpected panic becomes an error.
func (d *Dispatcher) classify(ctx context.Context, request string, reqCtx map[string]any) (intent routing.Intent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return d.classifier.Classify(ctx, request, reqCtx), nil
}

// invoke runs one operation, converting a panic into an error so no agent can
// take down the dispatch loop.
func (d *Dispatcher) invoke(ctx context.Context, op agents.Operation, args agents.Args) (payload map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx, args)
}

// record updates telemetry and history exactly once per handled request, then
// publishes a dispatch event best effort.
func (d *Dispatcher) record(ctx context.Context, request string, reqCtx map[string]any, intent routing.Intent, result Result) {
	d.stats.Record(string(intent.AgentType), result.Success, result.ExecutionTime)
	d.history.Append(ctx, telemetry.Entry{
		Timestamp:     d.now(),
		AgentType:     string(intent.AgentType),
		Request:       request,
		Confidence:    intent.Confidence,
		Success:       result.Success,
		ExecutionTime: result.ExecutionTime,
		Context:       reqCtx,
		Error:         result.Error,
	})

	event := &events.DispatchCompletedEvent{
		AgentType:     string(intent.AgentType),
		Request:       request,
		Success:       result.Success,
		ExecutionTime: result.ExecutionTime,
		Confidence:    intent.Confidence,
		Error:         result.Error,
		Timestamp:     d.now().UTC().Format(time.RFC3339),
	}
	if err := d.publisher.PublishDispatched(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - event publish failed: %v", logPrefix, err))
	}
}

// Dispatch routes an envelope request to the appropriate method and returns a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *OrchestratorRequest) *OrchestratorResponse {
	slog.Debug(fmt.Sprintf("%s - method=%s id=%s", logPrefix, req.Method, req.ID))

	switch req.Method {
	case "process":
		return d.handleProcess(ctx, req)
	case "agents":
		return d.handleAgents(req)
	case "health":
		return d.handleHealth(ctx, req)
	case "stats":
		return d.handleStats(req)
	case "history":
		return d.handleHistory(req)
	case "ingest":
		return d.handleIngest(ctx, req)
	default:
		return &OrchestratorResponse{
			ID: req.ID,
			Ok: false,
			Error: &ErrorDetail{
				Code:      "METHOD_NOT_FOUND",
				Message:   fmt.Sprintf("Unknown method: %s", req.Method),
				Retryable: false,
			},
		}
	}
}

func (d *Dispatcher) handleProcess(ctx context.Context, req *OrchestratorRequest) *OrchestratorResponse {
	var input ProcessInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse process params", false)
	}
	if input.Request == "" {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "process requires a request text", false)
	}

	result := d.Handle(ctx, input.Request, input.Context, input.Priority)
	return &OrchestratorResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleAgents(req *OrchestratorRequest) *OrchestratorResponse {
	return &OrchestratorResponse{ID: req.ID, Ok: true, Result: d.registry.List()}
}

func (d *Dispatcher) handleHealth(ctx context.Context, req *OrchestratorRequest) *OrchestratorResponse {
	return &OrchestratorResponse{ID: req.ID, Ok: true, Result: d.registry.HealthCheck(ctx)}
}

func (d *Dispatcher) handleStats(req *OrchestratorRequest) *OrchestratorResponse {
	return &OrchestratorResponse{ID: req.ID, Ok: true, Result: d.stats.Snapshot(d.history.Len())}
}

func (d *Dispatcher) handleHistory(req *OrchestratorRequest) *OrchestratorResponse {
	var input HistoryInput
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &input); err != nil {
			return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse history params", false)
		}
	}
	return &OrchestratorResponse{ID: req.ID, Ok: true, Result: d.history.Recent(input.Limit)}
}

func (d *Dispatcher) handleIngest(ctx context.Context, req *OrchestratorRequest) *OrchestratorResponse {
	if d.knowledge == nil {
		return errorResponse(req.ID, "UNAVAILABLE", "document ingestion is not configured", false)
	}
	var input IngestInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse ingest params", false)
	}
	if len(input.Documents) == 0 {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "ingest requires at least one document", false)
	}

	base := d.knowledge.Count()
	docs := make([]agents.KnowledgeDocument, 0, len(input.Documents))
	for i, content := range input.Documents {
		docs = append(docs, agents.KnowledgeDocument{
			ID:       fmt.Sprintf("doc-%d", base+i+1),
			Content:  content,
			Metadata: stringifyMetadata(input.Metadata),
		})
	}
	if err := d.knowledge.Add(ctx, docs); err != nil {
		return errorResponse(req.ID, "INTERNAL_ERROR", fmt.Sprintf("ingest failed: %v", err), true)
	}
	return &OrchestratorResponse{ID: req.ID, Ok: true, Result: map[string]any{
		"ingested": len(input.Documents),
		"total":    d.knowledge.Count(),
	}}
}

func stringifyMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = fmt.Sprint(v)
	}
	return out
}
