package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/jmoiron/sqlx"
)

// SQLStore backs retrieval with the knowledge_documents table. Embeddings are
// stored as JSON arrays; vector ranking happens in process, which is fine at
// knowledge-base scale (hundreds of documents, not millions).
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type documentRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Content   string `db:"content"`
	Industry  string `db:"industry"`
	Category  string `db:"category"`
	Embedding []byte `db:"embedding"`
}

func (s *SQLStore) SearchByVector(ctx context.Context, vector []float64, filters Filters, limit int) ([]Document, error) {
	query := `SELECT id, title, content, industry, category, embedding
		FROM knowledge_documents
		WHERE embedding IS NOT NULL
		AND (? = '' OR industry = ?)
		AND (? = '' OR category = ?)`

	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows, query,
		filters.Industry, filters.Industry, filters.Category, filters.Category)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}

	type scored struct {
		doc        Document
		similarity float64
	}
	var candidates []scored
	for _, row := range rows {
		var embedding []float64
		if err := json.Unmarshal(row.Embedding, &embedding); err != nil {
			continue
		}
		similarity := CosineSimilarity(vector, embedding)
		if similarity <= 0 {
			continue
		}
		candidates = append(candidates, scored{doc: toDocument(row), similarity: similarity})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	docs := make([]Document, 0, len(candidates))
	for _, c := range candidates {
		docs = append(docs, c.doc)
	}
	return docs, nil
}

func (s *SQLStore) SearchByText(ctx context.Context, text string, filters Filters, limit int) ([]Document, error) {
	query := `SELECT id, title, content, industry, category, embedding
		FROM knowledge_documents
		WHERE (title LIKE ? OR content LIKE ?)
		AND (? = '' OR industry = ?)
		AND (? = '' OR category = ?)
		ORDER BY created_at DESC
		LIMIT ?`

	pattern := "%" + text + "%"
	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows, query,
		pattern, pattern, filters.Industry, filters.Industry, filters.Category, filters.Category, limit)
	if err != nil {
		return nil, fmt.Errorf("text search documents: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}
	return docs, nil
}

// Upsert inserts or replaces a document with its embedding.
func (s *SQLStore) Upsert(ctx context.Context, doc Document, embedding []float64) error {
	encoded, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO knowledge_documents (id, title, content, industry, category, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			industry = excluded.industry,
			category = excluded.category,
			embedding = excluded.embedding`,
		doc.ID, doc.Title, doc.Content, doc.Industry, doc.Category, encoded)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func toDocument(row documentRow) Document {
	return Document{
		ID:       row.ID,
		Title:    row.Title,
		Content:  row.Content,
		Industry: row.Industry,
		Category: row.Category,
	}
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// for mismatched or zero vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
