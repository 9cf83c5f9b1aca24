// Package agents implements the capability registry and the specialized
// agents the orchestrator dispatches to. Each agent exposes named operations
// reachable by selector; the selector set is closed and checked against the
// parameter adapter at startup.
package agents

import (
	"context"
	"fmt"

	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// Selector names one exposed operation of an agent.
type Selector string

// The closed set of operation selectors.
const (
	SelAnswerQuestion   Selector = "answer_question"
	SelGenerateContent  Selector = "generate_content"
	SelProcessVision    Selector = "process_vision_task"
	SelPlanLessons      Selector = "plan_lessons"
	SelCreateDrawing    Selector = "create_drawing"
	SelGenerateMindmap  Selector = "generate_mindmap"
	SelConvertToBraille Selector = "convert_to_braille"
	SelGenerateResponse Selector = "generate_response"
	SelIngestDocuments  Selector = "ingest_documents"
	SelGetGame          Selector = "get_game"
	SelGetAnswer        Selector = "get_answer"
	SelListGames        Selector = "list_available_games"
	SelProcessRequest   Selector = "process_request"
)

// Operation is one invocable agent operation. Operations return a structured
// mapping on success (never a raw scalar) and an error on failure.
type Operation func(ctx context.Context, args Args) (map[string]any, error)

// Descriptor describes a registered agent.
type Descriptor struct {
	Type        routing.AgentType
	Name        string
	Description string
	Version     string
}

// Agent is a registered capability: a descriptor plus named operations.
type Agent interface {
	Descriptor() Descriptor
	Operations() map[Selector]Operation
}

// HealthChecker is optionally implemented by agents that can report health.
// Agents without it report "unknown" in the aggregate health check.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (string, error)
}

// Args is the keyword-argument set an operation is invoked with.
type Args map[string]any

// String returns the string value for key, or def when absent or not a string.
func (a Args) String(key, def string) string {
	if v, ok := a[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns the integer value for key, tolerating JSON's float64 numbers.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// IntSlice returns the integer-slice value for key, tolerating JSON arrays.
func (a Args) IntSlice(key string, def []int) []int {
	switch v := a[key].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			switch n := e.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			}
		}
		if len(out) > 0 {
			return out
		}
		return def
	default:
		return def
	}
}

// StringSlice returns the string-slice value for key, tolerating JSON arrays.
func (a Args) StringSlice(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}
