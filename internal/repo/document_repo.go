package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/pkg/dbutil"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `id, doc_type, jurisdiction, branch, title, content_text, document_number,
	date_adopted, date_effective, source_url, source_name, file_name, court_type, court_name, case_number, outcome,
	source_hash, pipeline_id, schema_version, chunker_version, chunk_set_version, chunk_strategy, ingested_at`

func (r *DocumentRepo) Create(ctx context.Context, doc *model.NormalizedDocument, chunkerVersion, chunkSetVersion string) error {
	data := map[string]interface{}{
		"id":                doc.ID,
		"doc_type":          string(doc.DocType),
		"jurisdiction":      doc.Jurisdiction,
		"branch":            string(doc.Branch),
		"title":             doc.Title,
		"content_text":      doc.ContentText,
		"document_number":   doc.DocumentNumber,
		"date_adopted":      nullable(doc.DateAdopted),
		"date_effective":    nullable(doc.DateEffective),
		"source_url":        doc.SourceURL,
		"source_name":       doc.SourceName,
		"file_name":         doc.FileName,
		"source_hash":       doc.SourceHash,
		"pipeline_id":       doc.PipelineID,
		"schema_version":    doc.SchemaVersion,
		"chunker_version":   chunkerVersion,
		"chunk_set_version": chunkSetVersion,
		"chunk_strategy":    doc.ChunkStrategy,
		"ingested_at":       doc.IngestedAt,
	}
	if doc.Court != nil {
		data["court_type"] = string(doc.Court.CourtType)
		data["court_name"] = doc.Court.CourtName
		data["case_number"] = doc.Court.CaseNumber
		data["outcome"] = doc.Court.Outcome
	}
	query, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	query, args = dbutil.Finalize(query, args)
	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil && dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*model.NormalizedDocument, string, string, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *DocumentRepo) GetBySourceHash(ctx context.Context, sourceHash string) (*model.NormalizedDocument, string, string, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE source_hash = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, sourceHash))
}

func (r *DocumentRepo) scanOne(row *sql.Row) (*model.NormalizedDocument, string, string, error) {
	var doc model.NormalizedDocument
	var dateAdopted, dateEffective, courtType, courtName, caseNumber, outcome sql.NullString
	var chunkerVersion, chunkSetVersion string
	err := row.Scan(
		&doc.ID, &doc.DocType, &doc.Jurisdiction, &doc.Branch, &doc.Title, &doc.ContentText,
		&doc.DocumentNumber, &dateAdopted, &dateEffective, &doc.SourceURL, &doc.SourceName, &doc.FileName,
		&courtType, &courtName, &caseNumber, &outcome,
		&doc.SourceHash, &doc.PipelineID, &doc.SchemaVersion,
		&chunkerVersion, &chunkSetVersion, &doc.ChunkStrategy, &doc.IngestedAt,
	)
	if err == sql.ErrNoRows {
		return nil, "", "", appErr.ErrNotFound
	}
	if err != nil {
		return nil, "", "", err
	}
	doc.DateAdopted = dateAdopted.String
	doc.DateEffective = dateEffective.String
	if courtType.Valid && courtType.String != "" {
		doc.Court = &model.CourtMeta{
			CourtType:  model.CourtType(courtType.String),
			CourtName:  courtName.String,
			CaseNumber: caseNumber.String,
			Outcome:    outcome.String,
		}
	}
	return &doc, chunkerVersion, chunkSetVersion, nil
}

// List returns id/title/type summaries, newest first.
func (r *DocumentRepo) List(ctx context.Context, limit, offset int) ([]model.NormalizedDocument, error) {
	const query = `
		SELECT id, doc_type, jurisdiction, branch, title, document_number, source_hash, ingested_at
		FROM documents
		ORDER BY ingested_at DESC, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.NormalizedDocument
	for rows.Next() {
		var doc model.NormalizedDocument
		if err := rows.Scan(&doc.ID, &doc.DocType, &doc.Jurisdiction, &doc.Branch,
			&doc.Title, &doc.DocumentNumber, &doc.SourceHash, &doc.IngestedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) ListIDs(ctx context.Context, limit, offset int) ([]string, error) {
	const query = `SELECT id FROM documents ORDER BY ingested_at, id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *DocumentRepo) UpdateChunkSetVersion(ctx context.Context, id, chunkerVersion, chunkSetVersion, strategy string) error {
	const query = `UPDATE documents SET chunker_version = $1, chunk_set_version = $2, chunk_strategy = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, chunkerVersion, chunkSetVersion, strategy, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// Delete removes the document; chunks and embeddings cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
