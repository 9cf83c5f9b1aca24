package agents

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// VisionAgent processes textbook material and produces differentiated
// worksheets per grade. Image decoding itself is an upstream concern; the
// agent works from the extracted content or the image reference it is given.
type VisionAgent struct {
	gen     llm.Generator
	dataDir string
}

// NewVisionAgent creates a VisionAgent with its own model client.
func NewVisionAgent(gen llm.Generator, dataDir string) *VisionAgent {
	return &VisionAgent{gen: gen, dataDir: dataDir}
}

func (a *VisionAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentVisionProcessing,
		Name:        "Vision Agent",
		Description: "Processes textbook images and creates differentiated worksheets",
		Version:     "1.0.0",
	}
}

func (a *VisionAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelProcessVision: a.processVisionTask,
	}
}

func (a *VisionAgent) HealthCheck(_ context.Context) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no model client configured")
	}
	return HealthHealthy, nil
}

// processVisionTask branches on task_type: "extract_text" or
// "generate_worksheets" (which fans out over target_grades).
func (a *VisionAgent) processVisionTask(ctx context.Context, args Args) (map[string]any, error) {
	taskType := strings.ToLower(args.String("task_type", "extract_text"))
	switch taskType {
	case "extract_text":
		return a.extractText(ctx, args)
	case "generate_worksheets":
		return a.generateWorksheets(ctx, args)
	default:
		return nil, fmt.Errorf("unsupported vision task_type: %s", taskType)
	}
}

func (a *VisionAgent) extractText(ctx context.Context, args Args) (map[string]any, error) {
	imagePath := args.String("image_path", "")
	content := args.String("content", "")
	if imagePath == "" && content == "" {
		return nil, fmt.Errorf("extract_text requires image_path or content")
	}

	source := content
	if source == "" {
		source = fmt.Sprintf("[textbook page image: %s]", imagePath)
	}

	prompt := fmt.Sprintf(`Analyze this textbook page and extract:
1. All visible text content
2. The subject/topic being covered
3. Grade level (if identifiable)
4. Key concepts mentioned
5. Any diagrams, charts, or images described

Page: %s

Format your response as:
**Subject:** [Subject identified]
**Grade Level:** [Estimated grade level]
**Main Topic:** [Primary topic]
**Text Content:** [All text content]
**Key Concepts:** [Important concepts listed]
**Visual Elements:** [Description of any diagrams/images]
**Learning Objectives:** [What students should learn from this page]`, source)

	extracted, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	base := "page"
	if imagePath != "" {
		base = strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	}
	savedPath := saveArtifact(a.dataDir, "extracted_text", base+"_extracted.txt", extracted)

	return map[string]any{
		"image_path":        imagePath,
		"extracted_content": extracted,
		"saved_path":        savedPath,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"agent":             a.Descriptor().Name,
	}, nil
}

func (a *VisionAgent) generateWorksheets(ctx context.Context, args Args) (map[string]any, error) {
	content := args.String("content", "")
	if content == "" {
		return nil, fmt.Errorf("generate_worksheets requires content")
	}
	targetGrades := args.IntSlice("target_grades", []int{3, 5})

	worksheets := make(map[string]any, len(targetGrades))
	savedPaths := make(map[string]any, len(targetGrades))
	for _, grade := range targetGrades {
		prompt := fmt.Sprintf(`Create a worksheet for Grade %d based on this textbook content:

Content: %s

Requirements for Grade %d:
1. Adjust vocabulary to grade level
2. Create age-appropriate questions
3. Include variety: MCQ, short answer, fill-in-blanks, true/false
4. Add visual thinking questions
5. Include practical applications

Format:
**Worksheet Title:** [Title for the worksheet]
**Instructions:** [Clear instructions for students]
**Section A - Multiple Choice:** [3 MCQ questions with options]
**Section B - Short Answers:** [3 short answer questions]
**Section C - Fill in the Blanks:** [3 fill-in-the-blank questions]
**Section D - Think and Apply:** [1 practical application question]
**Answer Key:** [All correct answers]`, grade, content, grade)

		worksheet, err := a.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("worksheet for grade %d: %w", grade, err)
		}

		key := fmt.Sprintf("grade_%d", grade)
		worksheets[key] = worksheet
		savedPaths[key] = saveArtifact(a.dataDir, "worksheets", fmt.Sprintf("worksheet_grade_%d.txt", grade), worksheet)
	}

	return map[string]any{
		"worksheets":    worksheets,
		"saved_paths":   savedPaths,
		"target_grades": targetGrades,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"agent":         a.Descriptor().Name,
	}, nil
}
