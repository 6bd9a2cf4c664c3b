// Package knowledge retrieves internal retail-analytics knowledge for a query.
// Retrieval prefers vector search over stored embeddings; when the embedding
// service is slow or down it degrades to full-text search instead of failing
// the turn.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/neuraltwin/assistant-engine/pkg/ai"
)

// SearchMethod records which retrieval path produced the results.
type SearchMethod string

const (
	MethodVector       SearchMethod = "vector"
	MethodTextFallback SearchMethod = "text_fallback"
)

// Document is one knowledge-base entry.
type Document struct {
	ID       string `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	Content  string `json:"content" db:"content"`
	Industry string `json:"industry" db:"industry"`
	Category string `json:"category" db:"category"`
}

// Filters narrows retrieval to an industry and/or category.
type Filters struct {
	Industry string `json:"industry,omitempty"`
	Category string `json:"category,omitempty"`
}

// Result is the retrieval outcome for one query.
type Result struct {
	Results      []Document   `json:"results"`
	SearchMethod SearchMethod `json:"search_method"`
	Filters      Filters      `json:"filters"`
}

// Store is the retrieval backend.
type Store interface {
	SearchByVector(ctx context.Context, vector []float64, filters Filters, limit int) ([]Document, error)
	SearchByText(ctx context.Context, query string, filters Filters, limit int) ([]Document, error)
}

const defaultLimit = 5

type Retriever struct {
	logger         *log.Logger
	embedder       ai.Embedder
	embeddingModel string
	store          Store
}

func NewRetriever(logger *log.Logger, embedder ai.Embedder, embeddingModel string, store Store) *Retriever {
	return &Retriever{
		logger:         logger,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		store:          store,
	}
}

// Retrieve runs vector search for the query, falling back to text search when
// the embedding or the vector store is unavailable. Fallback is a degraded
// mode, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters Filters, limit int) (Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	vector, err := r.embedder.Embedding(ctx, query, r.embeddingModel)
	if err == nil {
		docs, vecErr := r.store.SearchByVector(ctx, vector, filters, limit)
		if vecErr == nil {
			return Result{Results: docs, SearchMethod: MethodVector, Filters: filters}, nil
		}
		err = vecErr
	}
	r.logger.Warn("Vector retrieval degraded, falling back to text search", "error", err)

	docs, textErr := r.store.SearchByText(ctx, query, filters, limit)
	if textErr != nil {
		return Result{}, fmt.Errorf("text fallback search: %w", textErr)
	}
	return Result{Results: docs, SearchMethod: MethodTextFallback, Filters: filters}, nil
}

// FormatContext renders retrieved documents into the knowledge layer of the
// prompt. Empty results render nothing.
func FormatContext(result Result) string {
	if len(result.Results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("[내부 지식]\n")
	for _, doc := range result.Results {
		b.WriteString("- ")
		b.WriteString(doc.Title)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(doc.Content))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
