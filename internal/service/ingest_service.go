package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/chunker"
	"github.com/lexatlas/lexatlas/internal/config"
	"github.com/lexatlas/lexatlas/internal/filestore"
	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/normalize"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
	"github.com/lexatlas/lexatlas/internal/qa"
	"github.com/lexatlas/lexatlas/internal/repo"
)

// minContentChars guards against ingesting stubs: anything shorter is
// accepted but never chunked or embedded.
const minContentChars = 20

// Dedup modes for re-ingested source text. Skip keeps the stored
// document untouched; upsert replaces it and its chunk set.
const (
	DedupSkip   = "skip"
	DedupUpsert = "upsert"
)

type IngestInput struct {
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
	DedupMode string `json:"dedup_mode"`
}

type IngestResult struct {
	DocumentID      string   `json:"document_id"`
	ChunksInserted  int      `json:"chunks_inserted"`
	Deduplicated    bool     `json:"deduplicated"`
	ChunkerVersion  string   `json:"chunker_version"`
	ChunkSetVersion string   `json:"chunk_set_version"`
	SourceHash      string   `json:"source_hash"`
	DocType         string   `json:"doc_type,omitempty"`
	Strategy        string   `json:"strategy,omitempty"`
	RulesApplied    []string `json:"rules_applied,omitempty"`
}

// ValidationFailedError carries the per-field problems back to the API
// layer so the caller sees what to fix.
type ValidationFailedError struct {
	Fields []model.ValidationError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("document validation failed: %d field(s)", len(e.Fields))
}

// QAFailedError means the chunker produced a set that violates the chunk
// invariants. Nothing is persisted when this happens.
type QAFailedError struct {
	Errors []string
}

func (e *QAFailedError) Error() string {
	return fmt.Sprintf("chunk validation failed: %s", strings.Join(e.Errors, "; "))
}

type IngestService struct {
	normalizer  *normalize.Normalizer
	chunker     *chunker.Chunker
	qaConfig    qa.Config
	docRepo     *repo.DocumentRepo
	chunkRepo   *repo.ChunkRepo
	jobRepo     *repo.JobRepo
	archive     filestore.Store
	notifier    *TableNotifier
	chunkerCfg  config.ChunkerConfig
	jobsCfg     config.JobsConfig
	sourceTable string
}

func NewIngestService(
	normalizer *normalize.Normalizer,
	ck *chunker.Chunker,
	docRepo *repo.DocumentRepo,
	chunkRepo *repo.ChunkRepo,
	jobRepo *repo.JobRepo,
	archive filestore.Store,
	notifier *TableNotifier,
	chunkerCfg config.ChunkerConfig,
	jobsCfg config.JobsConfig,
	sourceTable string,
) *IngestService {
	return &IngestService{
		normalizer:  normalizer,
		chunker:     ck,
		qaConfig:    qa.Config{MaxChunkChars: chunkerCfg.MaxChunkChars, MaxOverlap: chunkerCfg.WindowOverlap},
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		jobRepo:     jobRepo,
		archive:     archive,
		notifier:    notifier,
		chunkerCfg:  chunkerCfg,
		jobsCfg:     jobsCfg,
		sourceTable: sourceTable,
	}
}

// Ingest runs the full pipeline for one raw document: dedup check,
// normalization, chunking, the QA gate, persistence, then job enqueue.
// The document row and its chunk set land together or not at all.
func (s *IngestService) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, appErr.ErrInvalid
	}
	mode := in.DedupMode
	if mode == "" {
		mode = DedupSkip
	}
	if mode != DedupSkip && mode != DedupUpsert {
		return nil, appErr.ErrInvalid
	}

	sourceHash := normalize.SourceHash(in.Content)
	replaceID := ""
	if existing, chunkerVersion, setVersion, err := s.docRepo.GetBySourceHash(ctx, sourceHash); err == nil {
		if mode == DedupSkip {
			return &IngestResult{
				DocumentID:      existing.ID,
				Deduplicated:    true,
				ChunkerVersion:  chunkerVersion,
				ChunkSetVersion: setVersion,
				SourceHash:      sourceHash,
				DocType:         string(existing.DocType),
			}, nil
		}
		replaceID = existing.ID
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}

	doc, pre := s.normalizer.Normalize(normalize.Input{
		FileName:  in.FileName,
		MimeType:  in.MimeType,
		RawText:   in.Content,
		SourceURL: in.SourceURL,
	})
	if fields := normalize.Validate(doc); len(fields) > 0 {
		return nil, &ValidationFailedError{Fields: fields}
	}

	res := s.chunker.Chunk(chunker.Doc{
		DocType:     doc.DocType,
		ContentText: doc.ContentText,
		Title:       doc.Title,
	})
	if check := qa.ValidateChunks(doc.ContentText, res.Chunks, s.qaConfig); !check.OK {
		return nil, &QAFailedError{Errors: check.Errors}
	}

	chunkSetVersion := chunker.ChunkSetVersion(doc.ContentText)
	doc.ChunkStrategy = string(res.Strategy)
	if replaceID != "" {
		// Upsert: the previous document goes away first, cascading its
		// chunks and embeddings.
		if err := s.docRepo.Delete(ctx, replaceID); err != nil {
			return nil, fmt.Errorf("replace existing document: %w", err)
		}
	}
	if err := s.docRepo.Create(ctx, doc, chunker.Version, chunkSetVersion); err != nil {
		if appErr.IsConflict(err) {
			// Lost a dedup race; the other writer's document wins.
			if existing, chunkerVersion, setVersion, gerr := s.docRepo.GetBySourceHash(ctx, sourceHash); gerr == nil {
				return &IngestResult{
					DocumentID:      existing.ID,
					Deduplicated:    true,
					ChunkerVersion:  chunkerVersion,
					ChunkSetVersion: setVersion,
					SourceHash:      sourceHash,
					DocType:         string(existing.DocType),
				}, nil
			}
		}
		return nil, err
	}
	inserted, err := s.chunkRepo.InsertBatch(ctx, doc.ID, chunkSetVersion, res.Chunks, s.chunkerCfg.InsertBatchSize)
	if err != nil {
		// Roll the document back so no half-chunked state survives.
		_ = s.docRepo.Delete(ctx, doc.ID)
		return nil, fmt.Errorf("persist chunks: %w", err)
	}

	s.archiveRaw(ctx, sourceHash, in.Content)
	s.notifyTables(doc.ID, res.Chunks)

	if len(doc.ContentText) >= minContentChars {
		if err := s.jobRepo.Enqueue(ctx, model.JobTypeChunk, doc.ID, s.sourceTable, s.jobsCfg.MaxAttempts); err != nil {
			logutil.GetLogger(ctx).Warn("enqueue chunk job failed", zap.String("document_id", doc.ID), zap.Error(err))
		}
		if err := s.jobRepo.Enqueue(ctx, model.JobTypeEmbed, doc.ID, s.sourceTable, s.jobsCfg.MaxAttempts); err != nil {
			logutil.GetLogger(ctx).Warn("enqueue embed job failed", zap.String("document_id", doc.ID), zap.Error(err))
		}
	}

	logutil.GetLogger(ctx).Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("doc_type", string(doc.DocType)),
		zap.String("strategy", string(res.Strategy)),
		zap.Int("chunks", inserted),
		zap.Bool("replaced", replaceID != ""),
		zap.Int("chars_removed", pre.CharsRemoved))
	return &IngestResult{
		DocumentID:      doc.ID,
		ChunksInserted:  inserted,
		ChunkerVersion:  chunker.Version,
		ChunkSetVersion: chunkSetVersion,
		SourceHash:      sourceHash,
		DocType:         string(doc.DocType),
		Strategy:        string(res.Strategy),
		RulesApplied:    pre.RulesApplied,
	}, nil
}

// archiveRaw stores the original bytes keyed by source hash. Best effort.
func (s *IngestService) archiveRaw(ctx context.Context, sourceHash, raw string) {
	if s.archive == nil {
		return
	}
	reader := strings.NewReader(raw)
	if err := s.archive.Save(ctx, sourceHash+".txt", reader, int64(len(raw))); err != nil {
		logutil.GetLogger(ctx).Warn("archive raw document failed",
			zap.String("source_hash", sourceHash), zap.Error(err))
	}
}

func (s *IngestService) notifyTables(documentID string, chunks []model.Chunk) {
	if s.notifier == nil {
		return
	}
	tables := 0
	for i := range chunks {
		if chunks[i].ChunkType == model.ChunkTable {
			tables++
		}
	}
	s.notifier.NotifyAsync(documentID, tables)
}

// GetDocument returns the document together with its active chunk set
// version for the read API.
func (s *IngestService) GetDocument(ctx context.Context, id string) (*model.NormalizedDocument, string, error) {
	doc, _, setVersion, err := s.docRepo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return doc, setVersion, nil
}

func (s *IngestService) ListDocuments(ctx context.Context, limit, offset int) ([]model.NormalizedDocument, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.docRepo.List(ctx, limit, offset)
}

func (s *IngestService) ListChunks(ctx context.Context, documentID string) ([]model.Chunk, error) {
	_, _, setVersion, err := s.docRepo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.chunkRepo.ListByDocument(ctx, documentID, setVersion)
}
