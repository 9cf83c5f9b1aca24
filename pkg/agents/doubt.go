package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// DoubtAgent answers student and teacher questions in simple, localized
// language. This is the default routing target for unclear requests.
type DoubtAgent struct {
	gen llm.Generator
}

// NewDoubtAgent creates a DoubtAgent with its own model client.
func NewDoubtAgent(gen llm.Generator) *DoubtAgent {
	return &DoubtAgent{gen: gen}
}

func (a *DoubtAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentDoubtAssistance,
		Name:        "Doubt Assistant",
		Description: "Answers student questions in simple, localized language",
		Version:     "1.0.0",
	}
}

func (a *DoubtAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelAnswerQuestion: a.answerQuestion,
		SelProcessRequest: a.processRequest,
	}
}

// HealthCheck reports healthy when a model client is configured.
func (a *DoubtAgent) HealthCheck(_ context.Context) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no model client configured")
	}
	return HealthHealthy, nil
}

func (a *DoubtAgent) answerQuestion(ctx context.Context, args Args) (map[string]any, error) {
	question := args.String("question", "")
	if question == "" {
		return nil, fmt.Errorf("answer_question requires a question")
	}
	language := strings.ToLower(args.String("language", "english"))
	gradeLevel := args.Int("grade_level", 5)
	learningCtx := args.String("context", "rural")

	langInfo := lookupLanguage(language)
	adaptations := lookupAdaptations(learningCtx)

	prompt := fmt.Sprintf(`You are a helpful teaching assistant for a %s Indian classroom.
A student has asked the following question. Answer it in %s language (%s) using the native script (if applicable).

Question: %s
Grade Level: %d
Context: %s
Adaptations: %s

Guidelines:
1. Use simple, age-appropriate language for grade %d
2. Keep the explanation concise and clear
3. Use relatable Indian examples (village, festivals, farming, etc.)
4. Encourage curiosity and engagement
5. If possible, include a short practical activity or real-life analogy

Return your answer in this format:

**Answer:** [Main explanation]
**Example:** [Simple, relatable example]
**Fun Fact:** [Interesting fact, activity, or trivia related to the topic]`,
		learningCtx, langInfo.Name, langInfo.Native, question, gradeLevel, learningCtx,
		strings.Join(adaptations, ", "), gradeLevel)

	answer, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"question": question,
		"language": map[string]any{
			"code":   language,
			"name":   langInfo.Name,
			"native": langInfo.Native,
		},
		"grade_level": gradeLevel,
		"context":     learningCtx,
		"answer":      answer,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"agent":       a.Descriptor().Name,
	}, nil
}

// processRequest is the generic passthrough operation used when the parameter
// adapter has no bespoke call shape for a request.
func (a *DoubtAgent) processRequest(ctx context.Context, args Args) (map[string]any, error) {
	request := args.String("request", "")
	if request == "" {
		return nil, fmt.Errorf("process_request requires a request")
	}
	return a.answerQuestion(ctx, Args{"question": request})
}
