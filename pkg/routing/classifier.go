package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahayak-ai/agent-orchestrator/pkg/bootstrap"
	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
)

const logPrefix = "routing:classifier"

// ContextKeyUploadedDocs is the session context key carrying uploaded document
// references. A non-empty value short-circuits routing to knowledge-base-search.
const ContextKeyUploadedDocs = "uploaded_docs"

// Classifier turns a free-text request plus optional session context into an
// Intent. Classify never returns an error: every failure path degrades to the
// deterministic keyword fallback.
type Classifier struct {
	gen   llm.Generator
	rules *bootstrap.RulesConfig
}

// NewClassifier creates a Classifier. gen may be nil, in which case the
// model-based step is skipped and only overrides and keyword rules apply.
func NewClassifier(gen llm.Generator, rules *bootstrap.RulesConfig) *Classifier {
	if rules == nil {
		rules = bootstrap.GetDefaultRulesConfig()
	}
	return &Classifier{gen: gen, rules: rules}
}

// Classify routes a request. Priority order: trigger-substring override,
// uploaded-documents context override, model-based classification, keyword
// fallback.
func (c *Classifier) Classify(ctx context.Context, request string, reqCtx map[string]any) Intent {
	requestLower := strings.ToLower(request)

	// Priority override: fixed trigger substrings win over everything,
	// including the model.
	for _, rule := range c.rules.PriorityRules {
		agentType, ok := ParseAgentType(rule.AgentType)
		if !ok {
			continue
		}
		for _, trigger := range rule.Triggers {
			if strings.Contains(requestLower, strings.ToLower(trigger)) {
				return Intent{
					AgentType:  agentType,
					Confidence: 1.0,
					Parameters: defaultParameters(),
					Reasoning:  fmt.Sprintf("Request contains %q trigger keyword", trigger),
				}
			}
		}
	}

	// Context override: uploaded documents route straight to the knowledge
	// base, bypassing the model call entirely.
	if docs := uploadedDocs(reqCtx); len(docs) > 0 {
		params := defaultParameters()
		params["context"] = "knowledge_base_search"
		params["documents"] = docs
		return Intent{
			AgentType:  AgentKnowledgeSearch,
			Confidence: 1.0,
			Parameters: params,
			Reasoning:  "Routing to knowledge base search due to document upload context",
		}
	}

	if c.gen != nil {
		if intent, ok := c.classifyWithModel(ctx, request, reqCtx); ok {
			return intent
		}
	}

	return c.fallback(requestLower)
}

// IsConfident reports whether the intent clears the routing confidence
// threshold. Advisory only: the dispatcher logs a warning and proceeds.
func (c *Classifier) IsConfident(intent Intent) bool {
	return intent.Confidence >= c.rules.ConfidenceThreshold
}

// modelResult is the JSON object the classification prompt demands.
type modelResult struct {
	AgentType  string         `json:"agent_type"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
}

func (c *Classifier) classifyWithModel(ctx context.Context, request string, reqCtx map[string]any) (Intent, bool) {
	fullRequest := request
	if len(reqCtx) > 0 {
		if ctxJSON, err := json.Marshal(reqCtx); err == nil {
			fullRequest = fmt.Sprintf("Context: %s\n%s", ctxJSON, request)
		}
	}

	raw, err := c.gen.Generate(ctx, classifierPrompt+"\nUser Request: "+fullRequest)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - model classification failed, using fallback: %v", logPrefix, err))
		return Intent{}, false
	}

	blob, ok := extractJSON(raw)
	if !ok {
		slog.Warn(fmt.Sprintf("%s - no JSON object in model response, using fallback", logPrefix))
		return Intent{}, false
	}

	var result modelResult
	if err := json.Unmarshal([]byte(blob), &result); err != nil {
		slog.Warn(fmt.Sprintf("%s - malformed model response, using fallback: %v", logPrefix, err))
		return Intent{}, false
	}

	agentType, ok := ParseAgentType(result.AgentType)
	if !ok {
		slog.Warn(fmt.Sprintf("%s - unknown agent type %q from model, using fallback", logPrefix, result.AgentType))
		return Intent{}, false
	}

	if result.Parameters == nil {
		result.Parameters = defaultParameters()
	}
	return Intent{
		AgentType:  agentType,
		Confidence: clamp01(result.Confidence),
		Parameters: result.Parameters,
		Reasoning:  result.Reasoning,
	}, true
}

// fallback scans the ordered keyword table; the first matching rule wins.
func (c *Classifier) fallback(requestLower string) Intent {
	for _, rule := range c.rules.FallbackRules {
		agentType, ok := ParseAgentType(rule.AgentType)
		if !ok {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(requestLower, strings.ToLower(kw)) {
				return Intent{
					AgentType:  agentType,
					Confidence: c.rules.FallbackConfidence,
					Parameters: defaultParameters(),
					Reasoning:  "Fallback routing based on keyword match",
				}
			}
		}
	}

	defaultAgent, ok := ParseAgentType(c.rules.DefaultAgent)
	if !ok {
		defaultAgent = AgentDoubtAssistance
	}
	return Intent{
		AgentType:  defaultAgent,
		Confidence: c.rules.DefaultConfidence,
		Parameters: defaultParameters(),
		Reasoning:  "Default routing - request unclear",
	}
}

// extractJSON returns the first top-level {...} block in the text, tolerating
// leading and trailing commentary from the model.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// uploadedDocs normalizes the uploaded_docs context value to a string slice.
func uploadedDocs(reqCtx map[string]any) []string {
	if reqCtx == nil {
		return nil
	}
	switch v := reqCtx[ContextKeyUploadedDocs].(type) {
	case []string:
		return v
	case []any:
		docs := make([]string, 0, len(v))
		for _, d := range v {
			docs = append(docs, fmt.Sprint(d))
		}
		return docs
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func defaultParameters() map[string]any {
	return map[string]any{
		"language":    "english",
		"grade_level": 5,
		"context":     "rural",
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
