package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/lexatlas/lexatlas/internal/model"
)

type EmbeddingRepo struct {
	db *sql.DB
}

func NewEmbeddingRepo(db *sql.DB) *EmbeddingRepo {
	return &EmbeddingRepo{db: db}
}

func (r *EmbeddingRepo) Upsert(ctx context.Context, emb *model.ChunkEmbedding) error {
	const query = `
		INSERT INTO chunk_embeddings (document_id, chunk_index, chunk_hash, model_name, embedding, mtime)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, chunk_index)
		DO UPDATE SET chunk_hash = EXCLUDED.chunk_hash, model_name = EXCLUDED.model_name,
			embedding = EXCLUDED.embedding, mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query,
		emb.DocumentID, emb.ChunkIndex, emb.ChunkHash, emb.ModelName,
		pgvector.NewVector(emb.Embedding), emb.Mtime)
	return err
}

// HashesByDocument maps chunk_index to the hash embedded last time, so
// the embed worker can skip unchanged chunks.
func (r *EmbeddingRepo) HashesByDocument(ctx context.Context, docID string) (map[int]string, error) {
	const query = `SELECT chunk_index, chunk_hash FROM chunk_embeddings WHERE document_id = $1`
	rows, err := r.db.QueryContext(ctx, query, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	hashes := make(map[int]string)
	for rows.Next() {
		var idx int
		var hash string
		if err := rows.Scan(&idx, &hash); err != nil {
			return nil, err
		}
		hashes[idx] = hash
	}
	return hashes, rows.Err()
}

// DeleteStale drops embeddings for chunk indexes past the current set
// size, left over after a re-chunk shrank the document.
func (r *EmbeddingRepo) DeleteStale(ctx context.Context, docID string, chunkCount int) error {
	const query = `DELETE FROM chunk_embeddings WHERE document_id = $1 AND chunk_index >= $2`
	_, err := r.db.ExecContext(ctx, query, docID, chunkCount)
	return err
}

func (r *EmbeddingRepo) DeleteByDocument(ctx context.Context, docID string) error {
	const query = `DELETE FROM chunk_embeddings WHERE document_id = $1`
	_, err := r.db.ExecContext(ctx, query, docID)
	return err
}
