package repo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexatlas/lexatlas/internal/model"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
	"github.com/lexatlas/lexatlas/internal/repo"
	"github.com/lexatlas/lexatlas/test/testutil"
)

func enqueueJobs(t *testing.T, jobs *repo.JobRepo, jobType model.JobType, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		docID := fmt.Sprintf("job-test-doc-%d", i)
		require.NoError(t, jobs.Enqueue(context.Background(), jobType, docID, "documents", 3))
	}
}

func TestJobLifecycle(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	_, err := db.Exec(`DELETE FROM ingest_jobs`)
	require.NoError(t, err)

	jobs := repo.NewJobRepo(db)
	ctx := context.Background()
	require.NoError(t, jobs.Enqueue(ctx, model.JobTypeChunk, "life-doc-1", "documents", 3))
	// Duplicate enqueue is a no-op.
	require.NoError(t, jobs.Enqueue(ctx, model.JobTypeChunk, "life-doc-1", "documents", 3))

	claimed, err := jobs.Claim(ctx, model.JobTypeChunk, "", 10, 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	job := claimed[0]
	require.Equal(t, model.JobProcessing, job.Status)
	require.Equal(t, 1, job.Attempts)
	require.Greater(t, job.LeaseExpiresAt, time.Now().Unix())

	// A second claim sees nothing while the lease is held.
	again, err := jobs.Claim(ctx, model.JobTypeChunk, "", 10, 5*time.Minute)
	require.NoError(t, err)
	require.Empty(t, again)

	require.NoError(t, jobs.MarkDone(ctx, job.ID, "ok"))
	fetched, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.JobDone, fetched.Status)

	// Resolving an already resolved job fails the status guard.
	require.ErrorIs(t, jobs.MarkDone(ctx, job.ID, "again"), appErr.ErrNotFound)
}

func TestJobRetryAndDeadLetter(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	_, err := db.Exec(`DELETE FROM ingest_jobs`)
	require.NoError(t, err)

	jobs := repo.NewJobRepo(db)
	ctx := context.Background()
	require.NoError(t, jobs.Enqueue(ctx, model.JobTypeChunk, "retry-doc-1", "documents", 2))

	// First attempt fails: back to pending with a future run time.
	claimed, err := jobs.Claim(ctx, model.JobTypeChunk, "", 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.NoError(t, jobs.MarkFailed(ctx, claimed[0].ID, "boom", time.Now().Unix()-1))

	fetched, err := jobs.Get(ctx, claimed[0].ID)
	require.NoError(t, err)
	require.Equal(t, model.JobPending, fetched.Status)
	require.Equal(t, "boom", fetched.LastError)
	require.Equal(t, 1, fetched.Attempts)

	// Second and final attempt fails: attempts reach max, dead letter.
	claimed, err = jobs.Claim(ctx, model.JobTypeChunk, "", 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, 2, claimed[0].Attempts)
	require.NoError(t, jobs.MarkFailed(ctx, claimed[0].ID, "boom again", time.Now().Unix()-1))

	fetched, err = jobs.Get(ctx, claimed[0].ID)
	require.NoError(t, err)
	require.Equal(t, model.JobDeadLetter, fetched.Status)

	// Dead letter is not claimable.
	claimed, err = jobs.Claim(ctx, model.JobTypeChunk, "", 1, time.Minute)
	require.NoError(t, err)
	require.Empty(t, claimed)

	// Manual requeue resets the budget and makes it claimable again.
	require.NoError(t, jobs.RequeueDeadLetter(ctx, fetched.ID))
	claimed, err = jobs.Claim(ctx, model.JobTypeChunk, "", 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, 1, claimed[0].Attempts)
}

func TestJobLeaseRecovery(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	_, err := db.Exec(`DELETE FROM ingest_jobs`)
	require.NoError(t, err)

	jobs := repo.NewJobRepo(db)
	ctx := context.Background()
	require.NoError(t, jobs.Enqueue(ctx, model.JobTypeEmbed, "lease-doc-1", "documents", 5))

	claimed, err := jobs.Claim(ctx, model.JobTypeEmbed, "", 1, -time.Second)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	recovered, err := jobs.RecoverExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, recovered)

	fetched, err := jobs.Get(ctx, claimed[0].ID)
	require.NoError(t, err)
	require.Equal(t, model.JobPending, fetched.Status)

	// The worker that lost the lease cannot resolve the job anymore.
	require.ErrorIs(t, jobs.MarkDone(ctx, claimed[0].ID, "late"), appErr.ErrNotFound)
}

func TestJobClaimSourceTableFilter(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	_, err := db.Exec(`DELETE FROM ingest_jobs`)
	require.NoError(t, err)

	jobs := repo.NewJobRepo(db)
	ctx := context.Background()
	require.NoError(t, jobs.Enqueue(ctx, model.JobTypeChunk, "filter-doc-1", "documents", 3))
	require.NoError(t, jobs.Enqueue(ctx, model.JobTypeChunk, "filter-doc-2", "archive_docs", 3))

	claimed, err := jobs.Claim(ctx, model.JobTypeChunk, "archive_docs", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, "archive_docs", claimed[0].SourceTable)
	require.Equal(t, "filter-doc-2", claimed[0].DocumentID)

	// The unfiltered claim still picks up what is left.
	claimed, err = jobs.Claim(ctx, model.JobTypeChunk, "", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, "filter-doc-1", claimed[0].DocumentID)
}

func TestJobConcurrentClaimDisjoint(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	_, err := db.Exec(`DELETE FROM ingest_jobs`)
	require.NoError(t, err)

	jobs := repo.NewJobRepo(db)
	enqueueJobs(t, jobs, model.JobTypeChunk, 20)

	var wg sync.WaitGroup
	results := make([][]model.Job, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot], errs[slot] = jobs.Claim(context.Background(), model.JobTypeChunk, "", 10, time.Minute)
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	seen := map[string]bool{}
	total := 0
	for _, batch := range results {
		for _, job := range batch {
			require.False(t, seen[job.ID], "job %s claimed twice", job.ID)
			seen[job.ID] = true
			total++
		}
	}
	require.Equal(t, 20, total)
}
