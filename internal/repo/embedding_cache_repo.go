package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/pkg/dbutil"
)

type EmbeddingCacheRepo struct {
	db *sql.DB
}

func NewEmbeddingCacheRepo(db *sql.DB) *EmbeddingCacheRepo {
	return &EmbeddingCacheRepo{db: db}
}

func (r *EmbeddingCacheRepo) Get(ctx context.Context, modelName, taskType, contentHash string) ([]float32, bool, error) {
	where := map[string]interface{}{
		"model_name":   modelName,
		"task_type":    taskType,
		"content_hash": contentHash,
	}
	query, args, err := builder.BuildSelect("embedding_cache", where, []string{"embedding_json"})
	if err != nil {
		return nil, false, err
	}
	query, args = dbutil.Finalize(query, args)
	var blob string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	var values []float32
	if err := json.Unmarshal([]byte(blob), &values); err != nil {
		return nil, false, nil
	}
	return values, true, nil
}

func (r *EmbeddingCacheRepo) Save(ctx context.Context, entry *model.EmbeddingCache) error {
	blob, err := json.Marshal(entry.Embedding)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO embedding_cache (model_name, task_type, content_hash, embedding_json, ctime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (model_name, task_type, content_hash) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query, entry.ModelName, entry.TaskType, entry.ContentHash, string(blob), entry.Ctime)
	return err
}

func (r *EmbeddingCacheRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM embedding_cache WHERE ctime < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
