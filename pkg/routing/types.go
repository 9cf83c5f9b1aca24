// Package routing implements intent classification: free text plus optional
// session context in, a structured routing intent out.
package routing

// AgentType identifies a registered agent capability.
type AgentType string

// Known agent type identifiers.
const (
	AgentDoubtAssistance   AgentType = "doubt-assistance"
	AgentContentGeneration AgentType = "content-generation"
	AgentVisionProcessing  AgentType = "vision-processing"
	AgentLessonPlanning    AgentType = "lesson-planning"
	AgentDrawingGeneration AgentType = "drawing-generation"
	AgentMindMapGeneration AgentType = "mind-map-generation"
	AgentBrailleConversion AgentType = "braille-conversion"
	AgentKnowledgeSearch   AgentType = "knowledge-base-search"
	AgentGamePlanning      AgentType = "game-planning"

	// Reserved identifiers with no registered implementation yet.
	AgentVideoIntelligence AgentType = "video-intelligence"
	AgentAccessibility     AgentType = "accessibility"
)

// knownTypes is the closed set of routable identifiers.
var knownTypes = map[AgentType]bool{
	AgentDoubtAssistance:   true,
	AgentContentGeneration: true,
	AgentVisionProcessing:  true,
	AgentLessonPlanning:    true,
	AgentDrawingGeneration: true,
	AgentMindMapGeneration: true,
	AgentBrailleConversion: true,
	AgentKnowledgeSearch:   true,
	AgentGamePlanning:      true,
	AgentVideoIntelligence: true,
	AgentAccessibility:     true,
}

// legacyNames maps identifiers from the earlier Sahayak deployment to the
// current ones, so a model trained on old transcripts still routes.
var legacyNames = map[string]AgentType{
	"doubt_assistant":     AgentDoubtAssistance,
	"content_generation":  AgentContentGeneration,
	"vision_agent":        AgentVisionProcessing,
	"lesson_planner":      AgentLessonPlanning,
	"drawings_agent":      AgentDrawingGeneration,
	"mindmap_agent":       AgentMindMapGeneration,
	"braille_assistant":   AgentBrailleConversion,
	"rag":                 AgentKnowledgeSearch,
	"game_planner":        AgentGamePlanning,
	"video_intelligence":  AgentVideoIntelligence,
	"accessibility_agent": AgentAccessibility,
}

// ParseAgentType resolves a string to a known AgentType. Legacy snake_case
// names are accepted as aliases.
func ParseAgentType(s string) (AgentType, bool) {
	if knownTypes[AgentType(s)] {
		return AgentType(s), true
	}
	if at, ok := legacyNames[s]; ok {
		return at, true
	}
	return "", false
}

// KnownAgentTypes returns all routable identifiers in a stable order.
func KnownAgentTypes() []AgentType {
	return []AgentType{
		AgentDoubtAssistance,
		AgentContentGeneration,
		AgentVisionProcessing,
		AgentLessonPlanning,
		AgentDrawingGeneration,
		AgentMindMapGeneration,
		AgentBrailleConversion,
		AgentKnowledgeSearch,
		AgentGamePlanning,
		AgentVideoIntelligence,
		AgentAccessibility,
	}
}

// String implements fmt.Stringer.
func (a AgentType) String() string { return string(a) }

// Intent is the classifier's structured guess at which agent should handle a
// request. Immutable once produced.
type Intent struct {
	AgentType  AgentType      `json:"agentType"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
}
