package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/pkg/dbutil"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertBatch writes chunks in fixed-size batches and reports how many
// rows went in before any error, so the caller can roll back the parent
// document.
func (r *ChunkRepo) InsertBatch(ctx context.Context, docID, chunkSetVersion string, chunks []model.Chunk, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	inserted := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		rows := make([]map[string]interface{}, 0, end-start)
		for _, ch := range chunks[start:end] {
			row, err := chunkRow(docID, chunkSetVersion, ch)
			if err != nil {
				return inserted, err
			}
			rows = append(rows, row)
		}
		query, args, err := builder.BuildInsert("chunks", rows)
		if err != nil {
			return inserted, err
		}
		query, args = dbutil.Finalize(query, args)
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return inserted, err
		}
		inserted += end - start
	}
	return inserted, nil
}

func chunkRow(docID, chunkSetVersion string, ch model.Chunk) (map[string]interface{}, error) {
	var locatorJSON interface{}
	if ch.Locator != nil {
		blob, err := json.Marshal(ch.Locator)
		if err != nil {
			return nil, err
		}
		locatorJSON = string(blob)
	}
	var metaJSON interface{}
	if ch.Metadata != nil {
		blob, err := json.Marshal(ch.Metadata)
		if err != nil {
			return nil, err
		}
		metaJSON = string(blob)
	}
	return map[string]interface{}{
		"document_id":       docID,
		"chunk_set_version": chunkSetVersion,
		"chunk_index":       ch.ChunkIndex,
		"chunk_type":        string(ch.ChunkType),
		"chunk_text":        ch.ChunkText,
		"char_start":        ch.CharStart,
		"char_end":          ch.CharEnd,
		"label":             ch.Label,
		"locator_json":      locatorJSON,
		"chunk_hash":        ch.ChunkHash,
		"chunker_version":   ch.ChunkerVersion,
		"metadata_json":     metaJSON,
	}, nil
}

func (r *ChunkRepo) ListByDocument(ctx context.Context, docID, chunkSetVersion string) ([]model.Chunk, error) {
	const query = `
		SELECT chunk_index, chunk_type, chunk_text, char_start, char_end, label, locator_json, chunk_hash, chunker_version, metadata_json
		FROM chunks
		WHERE document_id = $1 AND chunk_set_version = $2
		ORDER BY chunk_index
	`
	rows, err := r.db.QueryContext(ctx, query, docID, chunkSetVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chunks []model.Chunk
	for rows.Next() {
		var ch model.Chunk
		var locatorJSON, metaJSON sql.NullString
		if err := rows.Scan(&ch.ChunkIndex, &ch.ChunkType, &ch.ChunkText, &ch.CharStart, &ch.CharEnd,
			&ch.Label, &locatorJSON, &ch.ChunkHash, &ch.ChunkerVersion, &metaJSON); err != nil {
			return nil, err
		}
		ch.DocumentID = docID
		if locatorJSON.Valid && locatorJSON.String != "" {
			var loc model.Locator
			if err := json.Unmarshal([]byte(locatorJSON.String), &loc); err == nil {
				ch.Locator = &loc
			}
		}
		if metaJSON.Valid && metaJSON.String != "" {
			var meta model.ChunkMeta
			if err := json.Unmarshal([]byte(metaJSON.String), &meta); err == nil {
				ch.Metadata = &meta
			}
		}
		chunks = append(chunks, ch)
	}
	return chunks, rows.Err()
}

// DeleteSuperseded removes every chunk set for the document except the
// one being kept. Called only after the new set is fully inserted.
func (r *ChunkRepo) DeleteSuperseded(ctx context.Context, docID, keepVersion string) (int64, error) {
	const query = `DELETE FROM chunks WHERE document_id = $1 AND chunk_set_version <> $2`
	res, err := r.db.ExecContext(ctx, query, docID, keepVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ChunkRepo) DeleteByDocument(ctx context.Context, docID string) error {
	const query = `DELETE FROM chunks WHERE document_id = $1`
	_, err := r.db.ExecContext(ctx, query, docID)
	return err
}

func (r *ChunkRepo) CountByDocument(ctx context.Context, docID, chunkSetVersion string) (int, error) {
	const query = `SELECT COUNT(*) FROM chunks WHERE document_id = $1 AND chunk_set_version = $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, docID, chunkSetVersion).Scan(&count)
	return count, err
}

// HasTableChunk reports whether the current set contains a table chunk,
// driving the render notification.
func (r *ChunkRepo) HasTableChunk(ctx context.Context, docID, chunkSetVersion string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM chunks WHERE document_id = $1 AND chunk_set_version = $2 AND chunk_type = 'table')`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, docID, chunkSetVersion).Scan(&exists)
	return exists, err
}
