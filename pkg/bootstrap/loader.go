package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

const logPrefix = "bootstrap:loader"

// LoadRulesConfig loads routing rules from file paths or environment.
// It tries paths in order: first any paths passed in, then ORCHESTRATOR_RULES_FILE
// env, then defaults. A missing or unparseable file falls through to the next
// candidate; when nothing loads, the embedded defaults are used.
func LoadRulesConfig(paths ...string) (*RulesConfig, error) {
	all := make([]string, 0, len(paths)+3)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	if envPath := os.Getenv("ORCHESTRATOR_RULES_FILE"); envPath != "" {
		all = append(all, envPath)
	}
	all = append(all, "config/routing_rules.json", "routing_rules.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		var cfg RulesConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to parse rules file %s: %v", logPrefix, p, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded routing rules from %s", logPrefix, p))
		return applyDefaults(&cfg), nil
	}

	slog.Info(fmt.Sprintf("%s - Using default routing rules", logPrefix))
	return GetDefaultRulesConfig(), nil
}

// applyDefaults fills unset numeric fields and the default agent from the
// embedded configuration so partial rules files stay usable.
func applyDefaults(cfg *RulesConfig) *RulesConfig {
	def := GetDefaultRulesConfig()
	if cfg.DefaultAgent == "" {
		cfg.DefaultAgent = def.DefaultAgent
	}
	if cfg.FallbackConfidence == 0 {
		cfg.FallbackConfidence = def.FallbackConfidence
	}
	if cfg.DefaultConfidence == 0 {
		cfg.DefaultConfidence = def.DefaultConfidence
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if len(cfg.PriorityRules) == 0 {
		cfg.PriorityRules = def.PriorityRules
	}
	if len(cfg.FallbackRules) == 0 {
		cfg.FallbackRules = def.FallbackRules
	}
	return cfg
}

// GetDefaultRulesConfig returns the embedded fallback routing rules.
// Ordering of the fallback table matters: the first rule whose keyword list
// matches wins.
func GetDefaultRulesConfig() *RulesConfig {
	return &RulesConfig{
		Name:        "sahayak-routing",
		Version:     "1.0.0",
		Description: "Default intent routing rules for the Sahayak orchestrator",
		PriorityRules: []PriorityRule{
			{
				AgentType: "braille-conversion",
				Triggers:  []string{"braille", "in braille", "braille format", "convert to braille"},
			},
		},
		FallbackRules: []FallbackRule{
			{AgentType: "vision-processing", Keywords: []string{"image", "photo", "picture", "textbook", "extract text"}},
			{AgentType: "game-planning", Keywords: []string{"sudoku", "riddles", "game", "puzzle", "play", "interactive", "show game", "show answer", "answer"}},
			{AgentType: "lesson-planning", Keywords: []string{"lesson plan", "schedule", "curriculum", "plan", "weekly"}},
			{AgentType: "drawing-generation", Keywords: []string{"draw", "diagram", "visual", "chart", "illustration"}},
			{AgentType: "mind-map-generation", Keywords: []string{"mind map", "concept map", "organize", "mindmap", "visual summary"}},
			{AgentType: "content-generation", Keywords: []string{"create", "generate", "write", "story", "compose"}},
			{AgentType: "video-intelligence", Keywords: []string{"video", "analyze video", "video summary"}},
			{AgentType: "accessibility", Keywords: []string{"accessibility", "disability", "special needs"}},
			{AgentType: "braille-conversion", Keywords: []string{"braille", "in braille", "convert to braille", "braille format"}},
			{AgentType: "knowledge-base-search", Keywords: []string{"search documents", "find in documents", "search knowledge base", "look up", "find information", "search files", "context search"}},
		},
		DefaultAgent:        "doubt-assistance",
		FallbackConfidence:  0.7,
		DefaultConfidence:   0.5,
		ConfidenceThreshold: 0.6,
	}
}
