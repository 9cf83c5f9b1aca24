// Package llm provides the text-generation client used by the classifier and
// all generative agents. The client speaks to any OpenAI-compatible endpoint
// (the hosted Gemini compatibility endpoint included) and applies a fixed
// per-instance throttle of at most 5 calls per rolling second.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const logPrefix = "llm:client"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Generator is the narrow interface the orchestrator core depends on: a
// one-shot text completion for a single composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client implements Generator over an OpenAI-compatible chat completion API.
// Each Client keeps its own request-rate window; agents that call the model
// construct their own Client so throttling is per capability instance.
type Client struct {
	api     openai.Client
	model   string
	mu      sync.Mutex
	limiter *windowLimiter
}

// NewClient creates a Client for the given endpoint.
func NewClient(opts Options) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:     openai.NewClient(reqOpts...),
		model:   model,
		limiter: newWindowLimiter(5, time.Second),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the prompt as a single user message and returns the model's
// text response. The call blocks while the rate window is full.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.limiter.wait(ctx)
	c.mu.Unlock()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s - completion failed: %w", logPrefix, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s - empty completion response", logPrefix)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug(fmt.Sprintf("%s - completion ok model=%s chars=%d", logPrefix, c.model, len(text)))
	return text, nil
}
