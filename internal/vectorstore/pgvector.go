package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Truncate(ctx context.Context) bool {
	var exists bool
	if err := s.db.QueryRow(ctx, "SELECT to_regclass('document_chunks') IS NOT NULL").Scan(&exists); err != nil {
		slog.Error("vector index unreachable", "error", err)
		return false
	}
	if !exists {
		return true
	}
	if _, err := s.db.Exec(ctx, "TRUNCATE TABLE document_chunks"); err != nil {
		slog.Error("truncate vector index", "error", err)
		return false
	}
	return true
}

// AddDocuments inserts all chunks in one transaction, so a document
// contributes either every chunk or none.
func (s *PgVectorStore) AddDocuments(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(
			`INSERT INTO document_chunks (id, collection, document_id, chunk_index, content, embedding, token_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, c.Collection, c.DocumentID, c.ChunkIndex, c.Content, pgvector.NewVector(c.Embedding), c.TokenCount,
		)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for _, c := range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert chunk %d of document %d: %w", c.ChunkIndex, c.DocumentID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = 2
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, content, chunk_index,
		        1 - (embedding <=> $1) AS score
		 FROM document_chunks
		 WHERE collection = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(query), opts.Collection, opts.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return collect(rows, opts.MinScore)
}

func (s *PgVectorStore) HybridSearch(ctx context.Context, query string, queryVec []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = 2
	}

	// Vector similarity weighted with full-text rank over the generated tsv column.
	rows, err := s.db.Query(ctx,
		`WITH vector_results AS (
			SELECT id, document_id, content, chunk_index,
			       1 - (embedding <=> $1) AS vector_score
			FROM document_chunks
			WHERE collection = $2
			ORDER BY embedding <=> $1
			LIMIT $3 * 2
		),
		keyword_results AS (
			SELECT id, document_id, content, chunk_index,
			       ts_rank(tsv, plainto_tsquery('english', $4)) AS keyword_score
			FROM document_chunks
			WHERE collection = $2 AND tsv @@ plainto_tsquery('english', $4)
			ORDER BY keyword_score DESC
			LIMIT $3 * 2
		)
		SELECT COALESCE(v.id, k.id),
		       COALESCE(v.document_id, k.document_id),
		       COALESCE(v.content, k.content),
		       COALESCE(v.chunk_index, k.chunk_index),
		       (COALESCE(v.vector_score, 0) * 0.7 + COALESCE(k.keyword_score, 0) * 0.3) AS score
		FROM vector_results v
		FULL OUTER JOIN keyword_results k ON v.id = k.id
		ORDER BY score DESC
		LIMIT $3`,
		pgvector.NewVector(queryVec), opts.Collection, opts.TopK, query,
	)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	return collect(rows, opts.MinScore)
}

func collect(rows pgx.Rows, minScore float64) ([]SearchResult, error) {
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Content, &r.ChunkIndex, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if minScore > 0 && r.Score < minScore {
			continue
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
