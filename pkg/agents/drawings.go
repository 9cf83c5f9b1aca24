package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// DrawingsAgent produces step-by-step blackboard drawing instructions.
type DrawingsAgent struct {
	gen     llm.Generator
	dataDir string
}

// NewDrawingsAgent creates a DrawingsAgent with its own model client.
func NewDrawingsAgent(gen llm.Generator, dataDir string) *DrawingsAgent {
	return &DrawingsAgent{gen: gen, dataDir: dataDir}
}

func (a *DrawingsAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentDrawingGeneration,
		Name:        "Drawings Agent",
		Description: "Creates instructions for simple drawings and visual aids",
		Version:     "1.0.0",
	}
}

func (a *DrawingsAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelCreateDrawing: a.createDrawing,
	}
}

func (a *DrawingsAgent) HealthCheck(_ context.Context) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no model client configured")
	}
	return HealthHealthy, nil
}

func (a *DrawingsAgent) createDrawing(ctx context.Context, args Args) (map[string]any, error) {
	description := args.String("description", "")
	if description == "" {
		return nil, fmt.Errorf("create_drawing requires a description")
	}
	drawingType := args.String("drawing_type", "diagram")
	subject := args.String("subject", "science")

	prompt := fmt.Sprintf(`Create step-by-step instructions for drawing a %s to explain: %s

Requirements:
1. Use only basic shapes (circles, lines, rectangles, triangles)
2. Suitable for blackboard/whiteboard drawing
3. Clear, numbered steps
4. Include labels and annotations
5. Mention chalk colors if helpful
6. Add teaching tips for each step

Format:
**Diagram Title:** [Title for the drawing]
**Materials Needed:** [Chalk colors, tools needed]
**Step-by-Step Instructions:**

Step 1: [First step with detailed description]
- Teacher tip: [Helpful teaching note]

Step 2: [Second step]
- Teacher tip: [Helpful teaching note]

[Continue for all steps]

**Labels to Add:** [All text labels needed]
**Key Points to Explain:** [What to emphasize while drawing]
**Common Mistakes:** [What to avoid]
**Variations:** [How to adapt for different grades]`, drawingType, description)

	instructions, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	savedPath := saveArtifact(a.dataDir, "drawings",
		fmt.Sprintf("instructions_%s.txt", slugify(description)), instructions)

	return map[string]any{
		"concept":      description,
		"drawing_type": drawingType,
		"subject":      subject,
		"instructions": instructions,
		"saved_path":   savedPath,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"agent":        a.Descriptor().Name,
	}, nil
}
