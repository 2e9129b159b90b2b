package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/repo"
)

// LeaseRecoveryJob returns jobs abandoned by crashed workers to the
// queue once their lease deadline passes.
type LeaseRecoveryJob struct {
	jobs *repo.JobRepo
}

func NewLeaseRecoveryJob(jobs *repo.JobRepo) *LeaseRecoveryJob {
	return &LeaseRecoveryJob{jobs: jobs}
}

func (j *LeaseRecoveryJob) Name() string {
	return "lease_recovery"
}

func (j *LeaseRecoveryJob) Run(ctx context.Context) error {
	if j.jobs == nil {
		return nil
	}
	recovered, err := j.jobs.RecoverExpired(ctx)
	if err != nil {
		return err
	}
	if recovered > 0 {
		logutil.GetLogger(ctx).Warn("recovered expired job leases", zap.Int64("count", recovered))
	}
	return nil
}
