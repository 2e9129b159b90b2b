package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lexatlas/lexatlas/internal/model"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
)

type JobRepo struct {
	db *sql.DB
}

func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{db: db}
}

const jobColumns = `id, job_type, document_id, source_table, status, attempts, max_attempts,
	started_at, lease_expires_at, last_error, next_run_at, ctime, mtime`

// Enqueue creates the job row for (document, type) if it does not exist
// yet. A job is created once per document per type; re-enqueueing an
// existing row is a no-op.
func (r *JobRepo) Enqueue(ctx context.Context, jobType model.JobType, documentID, sourceTable string, maxAttempts int) error {
	now := time.Now().Unix()
	const query = `
		INSERT INTO ingest_jobs (id, job_type, document_id, source_table, status, attempts, max_attempts, next_run_at, ctime, mtime)
		VALUES ($1, $2, $3, $4, 'pending', 0, $5, $6, $7, $8)
		ON CONFLICT (document_id, job_type) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), string(jobType), documentID, sourceTable, maxAttempts, now, now, now)
	return err
}

// Reactivate flips a finished job back to pending, e.g. the embed job
// after its document was re-chunked. Dead-lettered jobs are untouched;
// those require an explicit requeue.
func (r *JobRepo) Reactivate(ctx context.Context, jobType model.JobType, documentID string) error {
	now := time.Now().Unix()
	const query = `
		UPDATE ingest_jobs
		SET status = 'pending', attempts = 0, last_error = '', next_run_at = $1, mtime = $2
		WHERE document_id = $3 AND job_type = $4 AND status = 'done'
	`
	_, err := r.db.ExecContext(ctx, query, now, now, documentID, string(jobType))
	return err
}

// Claim atomically marks up to n eligible jobs as processing under a
// lease. SKIP LOCKED guarantees two concurrent claims never select the
// same row; the attempt counter is charged at claim time. An empty
// sourceTable claims across all source tables.
func (r *JobRepo) Claim(ctx context.Context, jobType model.JobType, sourceTable string, n int, lease time.Duration) ([]model.Job, error) {
	now := time.Now().Unix()
	const query = `
		UPDATE ingest_jobs
		SET status = 'processing', attempts = attempts + 1, started_at = $1, lease_expires_at = $2, mtime = $1
		WHERE id IN (
			SELECT id FROM ingest_jobs
			WHERE job_type = $3
			  AND ($4 = '' OR source_table = $4)
			  AND status IN ('pending', 'failed')
			  AND attempts < max_attempts
			  AND next_run_at <= $1
			ORDER BY next_run_at, id
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns
	rows, err := r.db.QueryContext(ctx, query, now, now+int64(lease.Seconds()), string(jobType), sourceTable, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// MarkDone resolves a job the current worker holds. Guarded on the
// processing status so a recovered (re-leased) job cannot be resolved by
// the worker that lost its lease.
func (r *JobRepo) MarkDone(ctx context.Context, id, note string) error {
	now := time.Now().Unix()
	const query = `
		UPDATE ingest_jobs
		SET status = 'done', last_error = $1, lease_expires_at = 0, mtime = $2
		WHERE id = $3 AND status = 'processing'
	`
	res, err := r.db.ExecContext(ctx, query, note, now, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// MarkFailed resolves a failed attempt: back to pending with the backoff
// deadline while retry budget remains, dead_letter once it is exhausted.
func (r *JobRepo) MarkFailed(ctx context.Context, id, lastError string, nextRunAt int64) error {
	now := time.Now().Unix()
	const query = `
		UPDATE ingest_jobs
		SET status = CASE WHEN attempts >= max_attempts THEN 'dead_letter' ELSE 'pending' END,
			last_error = $1,
			next_run_at = $2,
			lease_expires_at = 0,
			mtime = $3
		WHERE id = $4 AND status = 'processing'
	`
	res, err := r.db.ExecContext(ctx, query, lastError, nextRunAt, now, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// RecoverExpired returns crashed workers' jobs to the queue: any
// processing row whose lease deadline passed becomes pending again.
func (r *JobRepo) RecoverExpired(ctx context.Context) (int64, error) {
	now := time.Now().Unix()
	const query = `
		UPDATE ingest_jobs
		SET status = 'pending', lease_expires_at = 0, mtime = $1
		WHERE status = 'processing' AND lease_expires_at > 0 AND lease_expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountEligible counts jobs a claim call could pick up right now.
func (r *JobRepo) CountEligible(ctx context.Context, jobType model.JobType) (int, error) {
	now := time.Now().Unix()
	const query = `
		SELECT COUNT(*) FROM ingest_jobs
		WHERE job_type = $1 AND status IN ('pending', 'failed') AND attempts < max_attempts AND next_run_at <= $2
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, string(jobType), now).Scan(&count)
	return count, err
}

func (r *JobRepo) Get(ctx context.Context, id string) (*model.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM ingest_jobs WHERE id = $1`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, appErr.ErrNotFound
	}
	return &jobs[0], nil
}

func (r *JobRepo) List(ctx context.Context, status model.JobStatus, limit int) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ingest_jobs ORDER BY mtime DESC LIMIT $1`
	args := []interface{}{limit}
	if status != "" {
		query = `SELECT ` + jobColumns + ` FROM ingest_jobs WHERE status = $1 ORDER BY mtime DESC LIMIT $2`
		args = []interface{}{string(status), limit}
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// RequeueDeadLetter is the manual escape hatch: a dead-lettered job gets
// a fresh retry budget.
func (r *JobRepo) RequeueDeadLetter(ctx context.Context, id string) error {
	now := time.Now().Unix()
	const query = `
		UPDATE ingest_jobs
		SET status = 'pending', attempts = 0, last_error = '', next_run_at = $1, mtime = $2
		WHERE id = $3 AND status = 'dead_letter'
	`
	res, err := r.db.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanJobs(rows *sql.Rows) ([]model.Job, error) {
	var jobs []model.Job
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(&job.ID, &job.JobType, &job.DocumentID, &job.SourceTable, &job.Status,
			&job.Attempts, &job.MaxAttempts, &job.StartedAt, &job.LeaseExpiresAt,
			&job.LastError, &job.NextRunAt, &job.Ctime, &job.Mtime); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
