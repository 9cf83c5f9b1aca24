package dispatch

import (
	"strings"

	"github.com/sahayak-ai/agent-orchestrator/pkg/agents"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// CallShape is the concrete operation call built for one dispatch: which
// selector to invoke and with what keyword arguments.
type CallShape struct {
	Selector agents.Selector
	Args     agents.Args
}

// BuildCall translates generic intent parameters plus the raw request text
// into the call shape the target agent expects. It is a pure function and is
// total over all agent types: unrecognized types get a generic passthrough
// shape instead of an error.
func BuildCall(agentType routing.AgentType, params map[string]any, rawRequest string) CallShape {
	get := func(key string, def any) any {
		if v, ok := params[key]; ok && v != nil {
			return v
		}
		return def
	}
	base := agents.Args{
		"language":    get("language", "english"),
		"grade_level": get("grade_level", 5),
		"context":     get("context", "rural"),
	}

	switch agentType {
	case routing.AgentDoubtAssistance:
		args := base
		args["question"] = rawRequest
		return CallShape{Selector: agents.SelAnswerQuestion, Args: args}

	case routing.AgentContentGeneration:
		args := base
		args["prompt"] = rawRequest
		args["content_type"] = get("content_type", "story")
		args["subject"] = get("subject", "general")
		return CallShape{Selector: agents.SelGenerateContent, Args: args}

	case routing.AgentVisionProcessing:
		taskType, _ := get("task_type", "extract_text").(string)
		args := agents.Args{
			"task_type":  taskType,
			"image_path": params["image_path"],
			"content":    params["content"],
		}
		if taskType == "generate_worksheets" {
			args["target_grades"] = get("target_grades", []int{3, 5})
		}
		return CallShape{Selector: agents.SelProcessVision, Args: args}

	case routing.AgentLessonPlanning:
		return CallShape{Selector: agents.SelPlanLessons, Args: agents.Args{
			"task_type":      get("task_type", "weekly"),
			"subjects":       params["subjects"],
			"grade_levels":   params["grade_levels"],
			"total_hours":    get("total_hours", 30),
			"language":       get("language", "english"),
			"date":           params["date"],
			"special_events": params["special_events"],
		}}

	case routing.AgentDrawingGeneration:
		args := base
		args["description"] = rawRequest
		args["drawing_type"] = get("drawing_type", "diagram")
		args["subject"] = get("subject", "science")
		return CallShape{Selector: agents.SelCreateDrawing, Args: args}

	case routing.AgentMindMapGeneration:
		return CallShape{Selector: agents.SelGenerateMindmap, Args: agents.Args{
			"topic":    get("specific_topic", rawRequest),
			"language": get("language", "english"),
		}}

	case routing.AgentBrailleConversion:
		return CallShape{Selector: agents.SelConvertToBraille, Args: agents.Args{
			"text": rawRequest,
		}}

	case routing.AgentKnowledgeSearch:
		return CallShape{Selector: agents.SelGenerateResponse, Args: agents.Args{
			"query":      rawRequest,
			"num_chunks": get("num_chunks", 3),
			"documents":  params["documents"],
		}}

	case routing.AgentGamePlanning:
		selector := agents.SelGetGame
		lower := strings.ToLower(rawRequest)
		if strings.Contains(lower, "answer") || strings.Contains(lower, "solution") {
			selector = agents.SelGetAnswer
		}
		return CallShape{Selector: selector, Args: agents.Args{
			"game_type":  get("game_type", "sudoku"),
			"difficulty": get("difficulty", "basic"),
		}}

	default:
		return CallShape{Selector: agents.SelProcessRequest, Args: agents.Args{
			"request": rawRequest,
		}}
	}
}
