package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// ContentAgent generates educational stories and concept explanations.
type ContentAgent struct {
	gen     llm.Generator
	dataDir string
}

// NewContentAgent creates a ContentAgent with its own model client.
func NewContentAgent(gen llm.Generator, dataDir string) *ContentAgent {
	return &ContentAgent{gen: gen, dataDir: dataDir}
}

func (a *ContentAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentContentGeneration,
		Name:        "Content Generator",
		Description: "Creates stories, explanations, and educational content",
		Version:     "1.0.0",
	}
}

func (a *ContentAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelGenerateContent: a.generateContent,
	}
}

func (a *ContentAgent) HealthCheck(_ context.Context) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no model client configured")
	}
	return HealthHealthy, nil
}

// generateContent branches on content_type: "story" or "explanation".
func (a *ContentAgent) generateContent(ctx context.Context, args Args) (map[string]any, error) {
	prompt := args.String("prompt", "")
	if prompt == "" {
		return nil, fmt.Errorf("generate_content requires a prompt")
	}

	contentType := strings.ToLower(args.String("content_type", "story"))
	switch contentType {
	case "story":
		return a.createStory(ctx, prompt, args)
	case "explanation":
		return a.createExplanation(ctx, prompt, args)
	default:
		return nil, fmt.Errorf("unsupported content_type: %s", contentType)
	}
}

func (a *ContentAgent) createStory(ctx context.Context, topic string, args Args) (map[string]any, error) {
	language := strings.ToLower(args.String("language", "english"))
	gradeLevel := args.Int("grade_level", 5)
	setting := args.String("context", "rural")
	langInfo := lookupLanguage(language)

	prompt := fmt.Sprintf(`Create an engaging educational story in %s for grade %d students.

Topic: %s
Setting: %s India
Target Age: %d years old

Requirements:
1. Culturally relevant to the Indian context
2. Include educational information about %s
3. Use age-appropriate vocabulary
4. Add relatable characters and dialogues
5. Clear moral or learning outcome
6. Limit: 200-300 words

Format:
**Title:** [Story title]
**Characters:** [Main characters]
**Story:** [The complete story]
**Learning Points:** [Key educational takeaways]
**Discussion Questions:** [2-3 questions for classroom discussion]`,
		langInfo.Name, gradeLevel, topic, setting, 6+gradeLevel, topic)

	story, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	savedPath := saveArtifact(a.dataDir, "stories", fmt.Sprintf("story_%s.txt", slugify(topic)), story)

	return map[string]any{
		"topic":       topic,
		"story":       story,
		"language":    language,
		"grade_level": gradeLevel,
		"setting":     setting,
		"saved_path":  savedPath,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"agent":       a.Descriptor().Name,
	}, nil
}

func (a *ContentAgent) createExplanation(ctx context.Context, concept string, args Args) (map[string]any, error) {
	language := strings.ToLower(args.String("language", "english"))
	difficulty := args.String("difficulty", "medium")
	langInfo := lookupLanguage(language)

	prompt := fmt.Sprintf(`Explain this concept in %s with %s difficulty level:

Concept: %s

Requirements:
1. Start with a simple definition
2. Use analogies from daily Indian life
3. Include real-world examples
4. Break down complex ideas into simple parts
5. Add visual descriptions where helpful
6. Suggest simple experiments or activities if applicable

Format:
**Definition:** [Simple definition]
**Explanation:** [Detailed explanation with analogies]
**Examples:** [2-3 real-world examples]
**Activity:** [A simple classroom activity]
**Remember:** [Key points to remember]`,
		langInfo.Name, difficulty, concept)

	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	// Drop leading commentary like "Here's an explanation..." before the
	// formatted body.
	explanation := raw
	if idx := strings.Index(raw, "**Definition:**"); idx > 0 {
		explanation = strings.TrimSpace(raw[idx:])
	}

	return map[string]any{
		"concept":     concept,
		"explanation": explanation,
		"language":    language,
		"difficulty":  difficulty,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"agent":       a.Descriptor().Name,
	}, nil
}
