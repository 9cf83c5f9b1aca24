// Package events defines event types and publisher interfaces for dispatch events.
package events

// DispatchCompletedEvent is emitted after every dispatched request, successful
// or not, so downstream services can observe orchestrator activity.
type DispatchCompletedEvent struct {
	AgentType     string  `json:"agentType"`
	Request       string  `json:"request"`
	Success       bool    `json:"success"`
	ExecutionTime float64 `json:"executionTime"`
	Confidence    float64 `json:"confidence"`
	Error         string  `json:"error,omitempty"`
	Timestamp     string  `json:"timestamp"`
}
