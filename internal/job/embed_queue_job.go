package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/service"
)

type EmbedQueueJob struct {
	worker *service.EmbedWorker
}

func NewEmbedQueueJob(worker *service.EmbedWorker) *EmbedQueueJob {
	return &EmbedQueueJob{worker: worker}
}

func (j *EmbedQueueJob) Name() string {
	return "embed_queue"
}

func (j *EmbedQueueJob) Run(ctx context.Context) error {
	if j.worker == nil {
		return nil
	}
	report, err := j.worker.Run(ctx, 0)
	if err != nil {
		return err
	}
	if report.Picked > 0 {
		logutil.GetLogger(ctx).Info("embed queue drained",
			zap.Int("picked", report.Picked),
			zap.Int("ok", report.ProcessedOK),
			zap.Int("failed", report.ProcessedFailed),
			zap.Int("pending_remaining", report.PendingRemaining))
	}
	return nil
}
