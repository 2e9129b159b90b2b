package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/config"
	"github.com/lexatlas/lexatlas/internal/embed"
	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/repo"
)

// SettingEmbeddingModel overrides the configured embedding model at
// runtime without a restart.
const SettingEmbeddingModel = "embedding_model"

// EmbedWorker vectorizes the active chunk set of each claimed document.
// Chunks whose hash already has a stored vector are skipped, so a
// re-chunk that left most chunks untouched costs almost nothing.
type EmbedWorker struct {
	docRepo       *repo.DocumentRepo
	chunkRepo     *repo.ChunkRepo
	jobRepo       *repo.JobRepo
	embRepo       *repo.EmbeddingRepo
	embedder      embed.IEmbedder
	settings      *SettingsService
	buildEmbedder func(model string) embed.IEmbedder

	jobsCfg  config.JobsConfig
	taskType string

	mu        sync.Mutex
	overrides map[string]embed.IEmbedder
}

func NewEmbedWorker(
	docRepo *repo.DocumentRepo,
	chunkRepo *repo.ChunkRepo,
	jobRepo *repo.JobRepo,
	embRepo *repo.EmbeddingRepo,
	embedder embed.IEmbedder,
	settings *SettingsService,
	buildEmbedder func(model string) embed.IEmbedder,
	jobsCfg config.JobsConfig,
	taskType string,
) *EmbedWorker {
	return &EmbedWorker{
		docRepo:       docRepo,
		chunkRepo:     chunkRepo,
		jobRepo:       jobRepo,
		embRepo:       embRepo,
		embedder:      embedder,
		settings:      settings,
		buildEmbedder: buildEmbedder,
		jobsCfg:       jobsCfg,
		taskType:      taskType,
		overrides:     make(map[string]embed.IEmbedder),
	}
}

// currentEmbedder resolves the per-run embedder, honoring the
// embedding_model setting. Built overrides are reused across runs.
func (w *EmbedWorker) currentEmbedder(ctx context.Context) embed.IEmbedder {
	if w.settings == nil || w.buildEmbedder == nil {
		return w.embedder
	}
	override, found, err := w.settings.Get(ctx, SettingEmbeddingModel)
	if err != nil {
		logutil.GetLogger(ctx).Warn("read embedding model setting", zap.Error(err))
		return w.embedder
	}
	if !found || override == "" || override == w.embedder.ModelName() {
		return w.embedder
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.overrides[override]
	if !ok {
		e = w.buildEmbedder(override)
		w.overrides[override] = e
		logutil.GetLogger(ctx).Info("embedding model overridden",
			zap.String("model", override))
	}
	return e
}

func (w *EmbedWorker) Run(ctx context.Context, concurrency int) (*WorkerReport, error) {
	start := time.Now()
	if w.embedder == nil {
		return nil, embed.ErrUnavailable
	}
	if concurrency <= 0 {
		concurrency = w.jobsCfg.DocConcurrency
	}
	embedder := w.currentEmbedder(ctx)
	lease := time.Duration(w.jobsCfg.LeaseSeconds) * time.Second
	jobs, err := w.jobRepo.Claim(ctx, model.JobTypeEmbed, "", w.jobsCfg.ClaimBatch, lease)
	if err != nil {
		return nil, fmt.Errorf("claim embed jobs: %w", err)
	}

	report := &WorkerReport{Picked: len(jobs)}
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
			err := w.processJob(ctx, job, embedder)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.ProcessedFailed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", job.DocumentID, err))
				return
			}
			report.ProcessedOK++
		}()
	}
	wg.Wait()

	if remaining, err := w.jobRepo.CountEligible(ctx, model.JobTypeEmbed); err == nil {
		report.PendingRemaining = remaining
	}
	report.DurationMS = time.Since(start).Milliseconds()
	return report, nil
}

func (w *EmbedWorker) processJob(ctx context.Context, job model.Job, embedder embed.IEmbedder) error {
	if err := w.embedDocument(ctx, job, embedder); err != nil {
		delay := backoffDelay(job.Attempts, w.jobsCfg.BackoffBaseSeconds, w.jobsCfg.BackoffMaxSeconds)
		nextRunAt := time.Now().Add(delay).Unix()
		if merr := w.jobRepo.MarkFailed(ctx, job.ID, err.Error(), nextRunAt); merr != nil {
			logutil.GetLogger(ctx).Error("mark embed job failed",
				zap.String("job_id", job.ID), zap.Error(merr))
		}
		return err
	}
	return nil
}

func (w *EmbedWorker) embedDocument(ctx context.Context, job model.Job, embedder embed.IEmbedder) error {
	doc, _, setVersion, err := w.docRepo.Get(ctx, job.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if len(doc.ContentText) < minContentChars {
		return w.jobRepo.MarkDone(ctx, job.ID, "content too short, skipped")
	}
	chunks, err := w.chunkRepo.ListByDocument(ctx, job.DocumentID, setVersion)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return w.jobRepo.MarkDone(ctx, job.ID, "no chunks to embed")
	}

	stored, err := w.embRepo.HashesByDocument(ctx, job.DocumentID)
	if err != nil {
		return fmt.Errorf("load stored hashes: %w", err)
	}
	embedded, skipped := 0, 0
	now := time.Now().Unix()
	for i := range chunks {
		ch := &chunks[i]
		if stored[ch.ChunkIndex] == ch.ChunkHash {
			skipped++
			continue
		}
		values, err := embedder.Embed(ctx, ch.ChunkText, w.taskType)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", ch.ChunkIndex, err)
		}
		if err := w.embRepo.Upsert(ctx, &model.ChunkEmbedding{
			DocumentID: job.DocumentID,
			ChunkIndex: ch.ChunkIndex,
			ChunkHash:  ch.ChunkHash,
			ModelName:  embedder.ModelName(),
			Embedding:  values,
			Mtime:      now,
		}); err != nil {
			return fmt.Errorf("store embedding %d: %w", ch.ChunkIndex, err)
		}
		embedded++
	}
	if err := w.embRepo.DeleteStale(ctx, job.DocumentID, len(chunks)); err != nil {
		logutil.GetLogger(ctx).Warn("delete stale embeddings failed",
			zap.String("document_id", job.DocumentID), zap.Error(err))
	}
	note := fmt.Sprintf("embedded %d chunks, %d unchanged", embedded, skipped)
	return w.jobRepo.MarkDone(ctx, job.ID, note)
}
