package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// KnowledgeAgent answers queries against uploaded documents using similarity
// search over the knowledge store, feeding the best chunks to the model.
type KnowledgeAgent struct {
	gen   llm.Generator
	store *KnowledgeStore
}

// NewKnowledgeAgent creates a KnowledgeAgent. A nil store is a construction
// error; the registry continues without this agent in that case.
func NewKnowledgeAgent(gen llm.Generator, store *KnowledgeStore) (*KnowledgeAgent, error) {
	if store == nil {
		return nil, fmt.Errorf("knowledge agent requires a document store")
	}
	return &KnowledgeAgent{gen: gen, store: store}, nil
}

func (a *KnowledgeAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentKnowledgeSearch,
		Name:        "Knowledge Base",
		Description: "Searches uploaded documents and answers from their content",
		Version:     "1.0.0",
	}
}

func (a *KnowledgeAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelGenerateResponse: a.generateResponse,
		SelIngestDocuments:  a.ingestDocuments,
	}
}

func (a *KnowledgeAgent) HealthCheck(_ context.Context) (string, error) {
	if a.store == nil {
		return "", fmt.Errorf("document store not configured")
	}
	return HealthHealthy, nil
}

func (a *KnowledgeAgent) generateResponse(ctx context.Context, args Args) (map[string]any, error) {
	query := args.String("query", "")
	if query == "" {
		return nil, fmt.Errorf("generate_response requires a query")
	}
	numChunks := args.Int("num_chunks", 3)

	hits, err := a.store.Query(ctx, query, numChunks)
	if err != nil {
		return nil, err
	}

	sources := make([]map[string]any, 0, len(hits))
	var contextParts []string
	for _, hit := range hits {
		contextParts = append(contextParts, hit.Document.Content)
		sources = append(sources, map[string]any{
			"id":         hit.Document.ID,
			"similarity": hit.Similarity,
			"metadata":   hit.Document.Metadata,
		})
	}

	prompt := fmt.Sprintf(`You are a helpful teaching assistant. Answer the question using only the provided document excerpts. If the excerpts do not contain the answer, say so.

Document excerpts:
%s

Question: %s

Answer clearly and cite which excerpt you used.`,
		strings.Join(contextParts, "\n---\n"), query)
	if len(contextParts) == 0 {
		prompt = fmt.Sprintf("You are a helpful teaching assistant. No documents matched the query; answer from general knowledge and say that no uploaded document covered it.\n\nQuestion: %s", query)
	}

	answer, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"query":       query,
		"answer":      answer,
		"num_chunks":  numChunks,
		"sources":     sources,
		"chunks_used": len(contextParts),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"agent":       a.Descriptor().Name,
	}, nil
}

// ingestDocuments adds document texts to the knowledge base. Each entry of
// the "documents" argument is one document body.
func (a *KnowledgeAgent) ingestDocuments(ctx context.Context, args Args) (map[string]any, error) {
	texts := args.StringSlice("documents")
	if single := args.String("content", ""); single != "" {
		texts = append(texts, single)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("ingest_documents requires documents")
	}

	base := a.store.Count()
	docs := make([]KnowledgeDocument, 0, len(texts))
	ids := make([]string, 0, len(texts))
	for i, text := range texts {
		id := fmt.Sprintf("doc-%d", base+i+1)
		docs = append(docs, KnowledgeDocument{ID: id, Content: text})
		ids = append(ids, id)
	}
	if err := a.store.Add(ctx, docs); err != nil {
		return nil, err
	}

	return map[string]any{
		"ingested":  len(docs),
		"ids":       ids,
		"total":     a.store.Count(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"agent":     a.Descriptor().Name,
	}, nil
}
