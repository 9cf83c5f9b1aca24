package dispatch

import (
	"fmt"

	"github.com/sahayak-ai/agent-orchestrator/pkg/agents"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// RequiredSelectors lists every selector the parameter adapter can emit per
// agent type. Checked against the registry at startup so a missing operation
// is a startup error, not a runtime lookup failure.
var RequiredSelectors = map[routing.AgentType][]agents.Selector{
	routing.AgentDoubtAssistance:     {agents.SelAnswerQuestion},
	routing.AgentContentGeneration:   {agents.SelGenerateContent},
	routing.AgentVisionProcessing:    {agents.SelProcessVision},
	routing.AgentLessonPlanning:      {agents.SelPlanLessons},
	routing.AgentDrawingGeneration:   {agents.SelCreateDrawing},
	routing.AgentMindMapGeneration:   {agents.SelGenerateMindmap},
	routing.AgentBrailleConversion:   {agents.SelConvertToBraille},
	routing.AgentKnowledgeSearch:     {agents.SelGenerateResponse},
	routing.AgentGamePlanning:        {agents.SelGetGame, agents.SelGetAnswer},
}

// ValidateRegistry checks that every registered agent exposes the operations
// the parameter adapter will route to it. Agents that failed construction are
// absent from the registry and are skipped; for the ones present, a missing
// selector is a wiring bug.
func ValidateRegistry(reg *agents.Registry) error {
	for agentType, selectors := range RequiredSelectors {
		agent, ok := reg.Get(agentType)
		if !ok {
			continue
		}
		ops := agent.Operations()
		for _, sel := range selectors {
			if _, ok := ops[sel]; !ok {
				return fmt.Errorf("agent %s does not expose operation %q", agentType, sel)
			}
		}
	}
	return nil
}
