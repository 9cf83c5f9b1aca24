package agents

import (
	"fmt"
	"log/slog"
	"sort"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

const registryLogPrefix = "agents:registry"

// Deps holds shared dependencies for agent construction.
type Deps struct {
	// NewGenerator returns a fresh model client. Each agent keeps its own so
	// request throttling applies per agent instance, not globally.
	NewGenerator func() llm.Generator
	// DataDir is the root directory for generated artifacts and game assets.
	DataDir string
	// Knowledge backs the knowledge-base-search agent. Optional; when nil the
	// agent is constructed with an in-memory store and no embedder, which
	// fails construction.
	Knowledge *KnowledgeStore
}

// Builder constructs one agent. Builders are attempted independently so a
// single failure never prevents the rest from registering.
type Builder func() (Agent, error)

// Registry holds the successfully constructed agents, keyed by type.
type Registry struct {
	agents map[routing.AgentType]Agent
}

// DefaultBuilders returns the standard agent set for the given dependencies.
func DefaultBuilders(deps Deps) []Builder {
	return []Builder{
		func() (Agent, error) { return NewDoubtAgent(deps.NewGenerator()), nil },
		func() (Agent, error) { return NewContentAgent(deps.NewGenerator(), deps.DataDir), nil },
		func() (Agent, error) { return NewVisionAgent(deps.NewGenerator(), deps.DataDir), nil },
		func() (Agent, error) { return NewLessonAgent(deps.NewGenerator(), deps.DataDir), nil },
		func() (Agent, error) { return NewDrawingsAgent(deps.NewGenerator(), deps.DataDir), nil },
		func() (Agent, error) { return NewMindMapAgent(deps.NewGenerator(), deps.DataDir), nil },
		func() (Agent, error) { return NewBrailleAgent(deps.NewGenerator()), nil },
		func() (Agent, error) { return NewKnowledgeAgent(deps.NewGenerator(), deps.Knowledge) },
		func() (Agent, error) { return NewGameAgent(deps.DataDir), nil },
	}
}

// NewRegistry attempts every builder and registers the successes. Failures
// are logged and skipped: partial availability beats no availability.
func NewRegistry(builders []Builder) *Registry {
	r := &Registry{agents: make(map[routing.AgentType]Agent, len(builders))}

	for _, build := range builders {
		agent, err := build()
		if err != nil {
			slog.Error(fmt.Sprintf("%s - agent construction failed, continuing without it: %v", registryLogPrefix, err))
			continue
		}
		if err := r.register(agent); err != nil {
			slog.Error(fmt.Sprintf("%s - agent registration failed, continuing without it: %v", registryLogPrefix, err))
		}
	}

	slog.Info(fmt.Sprintf("%s - Registered %d agents", registryLogPrefix, len(r.agents)))
	return r
}

// register validates the descriptor and adds the agent.
func (r *Registry) register(agent Agent) error {
	desc := agent.Descriptor()
	if desc.Type == "" {
		return fmt.Errorf("%s - agent %q has no type", registryLogPrefix, desc.Name)
	}
	if _, err := masterminds.NewVersion(desc.Version); err != nil {
		return fmt.Errorf("%s - agent %s has invalid version %q: %w", registryLogPrefix, desc.Type, desc.Version, err)
	}
	if _, exists := r.agents[desc.Type]; exists {
		return fmt.Errorf("%s - duplicate agent type %s", registryLogPrefix, desc.Type)
	}
	r.agents[desc.Type] = agent
	return nil
}

// Get returns the agent registered for the given type.
func (r *Registry) Get(t routing.AgentType) (Agent, bool) {
	agent, ok := r.agents[t]
	return agent, ok
}

// Types returns the registered agent types in sorted order.
func (r *Registry) Types() []routing.AgentType {
	types := make([]routing.AgentType, 0, len(r.agents))
	for t := range r.agents {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// AgentInfo is one entry of the administrative agent listing.
type AgentInfo struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// List returns name and description for every registered agent.
func (r *Registry) List() []AgentInfo {
	infos := make([]AgentInfo, 0, len(r.agents))
	for _, t := range r.Types() {
		desc := r.agents[t].Descriptor()
		infos = append(infos, AgentInfo{
			Type:        string(desc.Type),
			Name:        desc.Name,
			Description: desc.Description,
			Version:     desc.Version,
		})
	}
	return infos
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return len(r.agents)
}
