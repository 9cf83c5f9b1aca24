// Package dispatch routes classified requests to registered agents and wraps
// outcomes in a uniform result envelope. It also handles the COMMS request
// envelope for the orchestrator subject.
package dispatch

import "encoding/json"

// OrchestratorRequest is the JSON envelope for incoming COMMS orchestrator requests.
type OrchestratorRequest struct {
	ID     string             `json:"id"`
	Type   string             `json:"type"`
	Method string             `json:"method"`
	Params json.RawMessage    `json:"params"`
	Ctx    *InvocationContext `json:"ctx,omitempty"`
}

// OrchestratorResponse is the JSON envelope for COMMS orchestrator responses.
type OrchestratorResponse struct {
	ID     string       `json:"id"`
	Ok     bool         `json:"ok"`
	Result interface{}  `json:"result,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail holds structured error information.
type ErrorDetail struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable"`
}

// InvocationContext holds context from the caller.
type InvocationContext struct {
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}

// Priority is accepted on every process request. Routing does not act on it
// yet; it is reserved for future scheduling.
type Priority string

// Request priorities.
const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Result is the uniform envelope every dispatch returns, success or failure.
type Result struct {
	Success       bool           `json:"success"`
	Payload       map[string]any `json:"payload,omitempty"`
	AgentName     string         `json:"agent_name"`
	ExecutionTime float64        `json:"execution_time"`
	Error         string         `json:"error,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ProcessInput is the params shape of the "process" envelope method.
type ProcessInput struct {
	Request  string         `json:"request"`
	Context  map[string]any `json:"context,omitempty"`
	Priority Priority       `json:"priority,omitempty"`
}

// HistoryInput is the params shape of the "history" envelope method.
type HistoryInput struct {
	Limit int `json:"limit,omitempty"`
}

// IngestInput is the params shape of the "ingest" envelope method.
type IngestInput struct {
	Documents []string       `json:"documents"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func errorResponse(id, code, message string, retryable bool) *OrchestratorResponse {
	return &OrchestratorResponse{
		ID: id,
		Ok: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Retryable: retryable,
		},
	}
}
