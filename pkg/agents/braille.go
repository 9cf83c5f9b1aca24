package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// brailleMap covers Grade 1 English Braille: letters, digits (with the number
// prefix) and common punctuation. Characters without a mapping pass through.
var brailleMap = map[rune]string{
	'a': "⠁", 'b': "⠃", 'c': "⠉", 'd': "⠙", 'e': "⠑", 'f': "⠋",
	'g': "⠛", 'h': "⠓", 'i': "⠊", 'j': "⠚", 'k': "⠅", 'l': "⠇",
	'm': "⠍", 'n': "⠝", 'o': "⠕", 'p': "⠏", 'q': "⠟", 'r': "⠗",
	's': "⠎", 't': "⠞", 'u': "⠥", 'v': "⠧", 'w': "⠺", 'x': "⠭",
	'y': "⠽", 'z': "⠵", ' ': " ", ',': "⠂", '.': "⠲", '!': "⠖",
	'?': "⠦", '"': "⠦", '\'': "⠄", '-': "⠤", '1': "⠼⠁", '2': "⠼⠃",
	'3': "⠼⠉", '4': "⠼⠙", '5': "⠼⠑", '6': "⠼⠋", '7': "⠼⠛",
	'8': "⠼⠓", '9': "⠼⠊", '0': "⠼⠚",
}

// BrailleAgent explains a concept in simple language and converts the
// explanation to Braille.
type BrailleAgent struct {
	gen llm.Generator
}

// NewBrailleAgent creates a BrailleAgent with its own model client.
func NewBrailleAgent(gen llm.Generator) *BrailleAgent {
	return &BrailleAgent{gen: gen}
}

func (a *BrailleAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentBrailleConversion,
		Name:        "Braille Assistant",
		Description: "Converts text to Braille format",
		Version:     "1.0.0",
	}
}

func (a *BrailleAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelConvertToBraille: a.convertToBraille,
	}
}

func (a *BrailleAgent) HealthCheck(_ context.Context) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no model client configured")
	}
	return HealthHealthy, nil
}

func (a *BrailleAgent) convertToBraille(ctx context.Context, args Args) (map[string]any, error) {
	text := args.String("text", "")
	if text == "" {
		return nil, fmt.Errorf("convert_to_braille requires text")
	}

	// Get a plain-language explanation first, then transliterate it. When no
	// model is available the raw text is converted directly.
	explanation := text
	if a.gen != nil {
		generated, err := a.gen.Generate(ctx, "Explain this concept in simple, clear language: "+text)
		if err == nil {
			explanation = generated
		}
	}

	return map[string]any{
		"status":        "success",
		"original_text": explanation,
		"braille_text":  TextToBraille(explanation),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"agent":         a.Descriptor().Name,
	}, nil
}

// TextToBraille transliterates text into Unicode Braille cells. Input is
// lowercased first; unmapped characters are kept as-is.
func TextToBraille(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if cell, ok := brailleMap[r]; ok {
			b.WriteString(cell)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
