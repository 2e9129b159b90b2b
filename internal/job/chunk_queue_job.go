package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/service"
)

// ChunkQueueJob drains pending chunk jobs on a schedule; the same worker
// also backs the manual trigger endpoint.
type ChunkQueueJob struct {
	worker *service.ChunkWorker
}

func NewChunkQueueJob(worker *service.ChunkWorker) *ChunkQueueJob {
	return &ChunkQueueJob{worker: worker}
}

func (j *ChunkQueueJob) Name() string {
	return "chunk_queue"
}

func (j *ChunkQueueJob) Run(ctx context.Context) error {
	if j.worker == nil {
		return nil
	}
	report, err := j.worker.Run(ctx, 0, "")
	if err != nil {
		return err
	}
	if report.Picked > 0 {
		logutil.GetLogger(ctx).Info("chunk queue drained",
			zap.Int("picked", report.Picked),
			zap.Int("ok", report.ProcessedOK),
			zap.Int("failed", report.ProcessedFailed),
			zap.Int("pending_remaining", report.PendingRemaining))
	}
	return nil
}
