package model

type JobType string

const (
	JobTypeChunk JobType = "chunk"
	JobTypeEmbed JobType = "embed"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
	JobDeadLetter JobStatus = "dead_letter"
)

// Job rows are created once per document per job type and never physically
// deleted; dead_letter is terminal and kept for audit. A job is mutated
// only by the worker currently holding its lease.
type Job struct {
	ID             string    `json:"id"`
	JobType        JobType   `json:"job_type"`
	DocumentID     string    `json:"document_id"`
	SourceTable    string    `json:"source_table"`
	Status         JobStatus `json:"status"`
	Attempts       int       `json:"attempts"`
	MaxAttempts    int       `json:"max_attempts"`
	StartedAt      int64     `json:"started_at,omitempty"`
	LeaseExpiresAt int64     `json:"lease_expires_at,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	NextRunAt      int64     `json:"next_run_at"`
	Ctime          int64     `json:"ctime"`
	Mtime          int64     `json:"mtime"`
}
