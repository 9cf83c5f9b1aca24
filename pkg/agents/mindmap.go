package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// MindMapAgent generates classroom mind-map outlines for a topic.
type MindMapAgent struct {
	gen     llm.Generator
	dataDir string
}

// NewMindMapAgent creates a MindMapAgent with its own model client.
func NewMindMapAgent(gen llm.Generator, dataDir string) *MindMapAgent {
	return &MindMapAgent{gen: gen, dataDir: dataDir}
}

func (a *MindMapAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentMindMapGeneration,
		Name:        "MindMap Agent",
		Description: "Generates mind maps for classroom concepts",
		Version:     "1.0.0",
	}
}

func (a *MindMapAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelGenerateMindmap: a.generateMindmap,
	}
}

func (a *MindMapAgent) HealthCheck(_ context.Context) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no model client configured")
	}
	return HealthHealthy, nil
}

func (a *MindMapAgent) generateMindmap(ctx context.Context, args Args) (map[string]any, error) {
	topic := args.String("topic", "")
	if topic == "" {
		return nil, fmt.Errorf("generate_mindmap requires a topic")
	}
	language := strings.ToLower(args.String("language", "english"))
	langInfo := lookupLanguage(language)

	prompt := fmt.Sprintf(`You are an educational assistant helping teachers explain the concept of **%s** using a clean, classroom-friendly mind map. Generate a mind map in %s with no more than 3 levels of depth and 3-4 items per level.

Use this format exactly:
**CENTRAL TOPIC: Photosynthesis**
**MAIN BRANCHES (Level 1):**
Branch 1: Reactants and Products
  ├── Sub-branch 1.1: Reactants
  │   └── 1.1.1: Water (H₂O), CO₂
  └── Sub-branch 1.2: Products
      └── 1.2.1: Glucose, Oxygen (O₂)
Branch 2: Process Stages
  ├── Sub-branch 2.1: Light Reaction
  │   └── 2.1.1: ATP & NADPH formation
  └── Sub-branch 2.2: Calvin Cycle
      └── 2.2.1: Glucose synthesis
Branch 3: Importance
  ├── Sub-branch 3.1: Oxygen supply
  └── Sub-branch 3.2: Basis of food chain

Only return the mind map structure in this format. Do not add extra text, explanations, or headings.`,
		topic, langInfo.Name)

	structure, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	textPath := saveArtifact(a.dataDir, "mindmaps", fmt.Sprintf("mindmap_%s.txt", slugify(topic)), structure)

	return map[string]any{
		"topic":             topic,
		"language":          langInfo.Name,
		"mindmap_structure": structure,
		"text_path":         textPath,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"agent":             a.Descriptor().Name,
	}, nil
}
