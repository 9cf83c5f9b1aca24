// Package bootstrap provides routing-rules configuration loading for the classifier.
package bootstrap

// PriorityRule routes a request directly to one agent when any of its trigger
// substrings appears in the request text. Checked before everything else.
type PriorityRule struct {
	AgentType string   `json:"agentType"`
	Triggers  []string `json:"triggers"`
}

// FallbackRule is one entry of the ordered keyword fallback table.
type FallbackRule struct {
	AgentType string   `json:"agentType"`
	Keywords  []string `json:"keywords"`
}

// RulesConfig is the root routing-rules configuration.
type RulesConfig struct {
	Name                string         `json:"name"`
	Version             string         `json:"version"`
	Description         string         `json:"description,omitempty"`
	PriorityRules       []PriorityRule `json:"priorityRules"`
	FallbackRules       []FallbackRule `json:"fallbackRules"`
	DefaultAgent        string         `json:"defaultAgent"`
	FallbackConfidence  float64        `json:"fallbackConfidence"`
	DefaultConfidence   float64        `json:"defaultConfidence"`
	ConfidenceThreshold float64        `json:"confidenceThreshold"`
}
