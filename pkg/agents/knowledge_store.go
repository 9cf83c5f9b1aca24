package agents

import (
	"context"
	"fmt"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
)

// KnowledgeStoreConfig holds vector store configuration.
type KnowledgeStoreConfig struct {
	// PersistPath enables on-disk persistence when set.
	PersistPath string
	Collection  string
}

// KnowledgeDocument is one document held in the knowledge base.
type KnowledgeDocument struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// KnowledgeResult is one similarity-search hit.
type KnowledgeResult struct {
	Document   KnowledgeDocument
	Similarity float32
}

// KnowledgeStore manages document embeddings and similarity search for the
// knowledge-base-search agent, backed by chromem-go.
type KnowledgeStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewKnowledgeStore creates a store. The embedding function generates vectors
// for added documents and queries.
func NewKnowledgeStore(cfg KnowledgeStoreConfig, embedding chromem.EmbeddingFunc) (*KnowledgeStore, error) {
	if cfg.Collection == "" {
		cfg.Collection = "sahayak-docs"
	}

	var db *chromem.DB
	var err error
	if cfg.PersistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(cfg.PersistPath, "knowledge.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("create persistent knowledge DB: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embedding)
	if err != nil {
		return nil, fmt.Errorf("create knowledge collection: %w", err)
	}

	return &KnowledgeStore{db: db, collection: collection}, nil
}

// Add embeds and stores the given documents.
func (s *KnowledgeStore) Add(ctx context.Context, docs []KnowledgeDocument) error {
	for _, doc := range docs {
		err := s.collection.AddDocument(ctx, chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
		if err != nil {
			return fmt.Errorf("add document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Query returns the topK most similar documents for the query text.
func (s *KnowledgeStore) Query(ctx context.Context, query string, topK int) ([]KnowledgeResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	hits, err := s.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("knowledge query: %w", err)
	}

	results := make([]KnowledgeResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, KnowledgeResult{
			Document: KnowledgeDocument{
				ID:       hit.ID,
				Content:  hit.Content,
				Metadata: hit.Metadata,
			},
			Similarity: hit.Similarity,
		})
	}
	return results, nil
}

// Count returns the number of stored documents.
func (s *KnowledgeStore) Count() int {
	return s.collection.Count()
}
