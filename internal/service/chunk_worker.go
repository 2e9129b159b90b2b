package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/chunker"
	"github.com/lexatlas/lexatlas/internal/config"
	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/qa"
	"github.com/lexatlas/lexatlas/internal/repo"
)

// WorkerReport summarizes one worker pass for the trigger endpoint and
// the scheduler log line.
type WorkerReport struct {
	Picked              int      `json:"picked"`
	ProcessedOK         int      `json:"processed_ok"`
	ProcessedFailed     int      `json:"processed_failed"`
	TotalChunksInserted int      `json:"total_chunks_inserted,omitempty"`
	PendingRemaining    int      `json:"pending_remaining"`
	DurationMS          int64    `json:"duration_ms"`
	ChunkerVersion      string   `json:"chunker_version,omitempty"`
	Errors              []string `json:"errors,omitempty"`
}

// ChunkWorker re-chunks documents behind the job queue. A pass is
// idempotent: documents whose chunk set already matches the current
// chunker version and content are resolved without touching the chunks
// table.
type ChunkWorker struct {
	docRepo   *repo.DocumentRepo
	chunkRepo *repo.ChunkRepo
	jobRepo   *repo.JobRepo
	chunker   *chunker.Chunker
	notifier  *TableNotifier

	chunkerCfg config.ChunkerConfig
	jobsCfg    config.JobsConfig
}

func NewChunkWorker(
	docRepo *repo.DocumentRepo,
	chunkRepo *repo.ChunkRepo,
	jobRepo *repo.JobRepo,
	ck *chunker.Chunker,
	notifier *TableNotifier,
	chunkerCfg config.ChunkerConfig,
	jobsCfg config.JobsConfig,
) *ChunkWorker {
	return &ChunkWorker{
		docRepo:    docRepo,
		chunkRepo:  chunkRepo,
		jobRepo:    jobRepo,
		chunker:    ck,
		notifier:   notifier,
		chunkerCfg: chunkerCfg,
		jobsCfg:    jobsCfg,
	}
}

// Run claims one batch of chunk jobs and processes them with bounded
// parallelism. A non-empty sourceTable restricts the claim to jobs from
// that source table.
func (w *ChunkWorker) Run(ctx context.Context, concurrency int, sourceTable string) (*WorkerReport, error) {
	start := time.Now()
	if concurrency <= 0 {
		concurrency = w.jobsCfg.DocConcurrency
	}
	lease := time.Duration(w.jobsCfg.LeaseSeconds) * time.Second
	jobs, err := w.jobRepo.Claim(ctx, model.JobTypeChunk, sourceTable, w.jobsCfg.ClaimBatch, lease)
	if err != nil {
		return nil, fmt.Errorf("claim chunk jobs: %w", err)
	}

	report := &WorkerReport{
		Picked:         len(jobs),
		ChunkerVersion: chunker.Version,
	}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for i := range jobs {
		job := jobs[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			inserted, err := w.processJob(ctx, job)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.ProcessedFailed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", job.DocumentID, err))
				return
			}
			report.ProcessedOK++
			report.TotalChunksInserted += inserted
		}()
	}
	wg.Wait()

	if remaining, err := w.jobRepo.CountEligible(ctx, model.JobTypeChunk); err == nil {
		report.PendingRemaining = remaining
	}
	report.DurationMS = time.Since(start).Milliseconds()
	return report, nil
}

// processJob re-chunks one document and resolves its job. The returned
// error is already recorded on the job; it is surfaced only for the
// report.
func (w *ChunkWorker) processJob(ctx context.Context, job model.Job) (int, error) {
	inserted, err := w.rechunk(ctx, job)
	if err != nil {
		delay := backoffDelay(job.Attempts, w.jobsCfg.BackoffBaseSeconds, w.jobsCfg.BackoffMaxSeconds)
		nextRunAt := time.Now().Add(delay).Unix()
		if merr := w.jobRepo.MarkFailed(ctx, job.ID, err.Error(), nextRunAt); merr != nil {
			logutil.GetLogger(ctx).Error("mark chunk job failed",
				zap.String("job_id", job.ID), zap.Error(merr))
		}
		return 0, err
	}
	return inserted, nil
}

func (w *ChunkWorker) rechunk(ctx context.Context, job model.Job) (int, error) {
	doc, _, currentSet, err := w.docRepo.Get(ctx, job.DocumentID)
	if err != nil {
		return 0, fmt.Errorf("load document: %w", err)
	}
	if len(doc.ContentText) < minContentChars {
		return 0, w.jobRepo.MarkDone(ctx, job.ID, "content too short, skipped")
	}

	newSet := chunker.ChunkSetVersion(doc.ContentText)
	if newSet == currentSet {
		if count, err := w.chunkRepo.CountByDocument(ctx, job.DocumentID, currentSet); err == nil && count > 0 {
			return 0, w.jobRepo.MarkDone(ctx, job.ID, "chunk set unchanged")
		}
	}

	res := w.chunker.Chunk(chunker.Doc{
		DocType:     doc.DocType,
		ContentText: doc.ContentText,
		Title:       doc.Title,
	})
	qaCfg := qa.Config{MaxChunkChars: w.chunkerCfg.MaxChunkChars, MaxOverlap: w.chunkerCfg.WindowOverlap}
	if check := qa.ValidateChunks(doc.ContentText, res.Chunks, qaCfg); !check.OK {
		return 0, &QAFailedError{Errors: check.Errors}
	}

	// New set first, old set dropped after. A concurrent reader always
	// sees a complete chunk set.
	inserted, err := w.chunkRepo.InsertBatch(ctx, job.DocumentID, newSet, res.Chunks, w.chunkerCfg.InsertBatchSize)
	if err != nil {
		return inserted, fmt.Errorf("insert chunk set: %w", err)
	}
	if err := w.docRepo.UpdateChunkSetVersion(ctx, job.DocumentID, chunker.Version, newSet, string(res.Strategy)); err != nil {
		return inserted, fmt.Errorf("activate chunk set: %w", err)
	}
	if _, err := w.chunkRepo.DeleteSuperseded(ctx, job.DocumentID, newSet); err != nil {
		logutil.GetLogger(ctx).Warn("delete superseded chunks failed",
			zap.String("document_id", job.DocumentID), zap.Error(err))
	}

	w.notifyTables(job.DocumentID, res.Chunks)
	if err := w.jobRepo.Reactivate(ctx, model.JobTypeEmbed, job.DocumentID); err != nil {
		logutil.GetLogger(ctx).Warn("reactivate embed job failed",
			zap.String("document_id", job.DocumentID), zap.Error(err))
	}
	note := fmt.Sprintf("chunked: %d chunks, strategy %s", len(res.Chunks), res.Strategy)
	return inserted, w.jobRepo.MarkDone(ctx, job.ID, note)
}

func (w *ChunkWorker) notifyTables(documentID string, chunks []model.Chunk) {
	if w.notifier == nil {
		return
	}
	tables := 0
	for i := range chunks {
		if chunks[i].ChunkType == model.ChunkTable {
			tables++
		}
	}
	w.notifier.NotifyAsync(documentID, tables)
}
