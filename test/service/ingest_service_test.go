package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexatlas/lexatlas/internal/chunker"
	"github.com/lexatlas/lexatlas/internal/config"
	"github.com/lexatlas/lexatlas/internal/normalize"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
	"github.com/lexatlas/lexatlas/internal/repo"
	"github.com/lexatlas/lexatlas/internal/service"
	"github.com/lexatlas/lexatlas/test/testutil"
)

const ingestLawContent = `LAW OF THE REPUBLIC ON INGESTION TESTING

No. 7-N, adopted on 12 January 2020.

Article 1. Scope
This statute governs the ingestion of legal texts for testing purposes.

Article 2. Entry into force
This statute enters into force on the day of its official publication.`

func newIngestService(t *testing.T) (*service.IngestService, *repo.DocumentRepo, func()) {
	t.Helper()
	db, cleanup := testutil.OpenTestDB(t)
	_, err := db.Exec(`DELETE FROM documents`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM ingest_jobs`)
	require.NoError(t, err)

	docRepo := repo.NewDocumentRepo(db)
	chunkRepo := repo.NewChunkRepo(db)
	jobRepo := repo.NewJobRepo(db)
	chunkerCfg := config.ChunkerConfig{
		MaxChunkChars: 8000, WindowChars: 3000, WindowOverlap: 200,
		TailMergeChars: 400, MinPreambleChars: 80, InsertBatchSize: 100,
	}
	svc := service.NewIngestService(
		normalize.New("am", "test"),
		chunker.New(chunker.Config{}),
		docRepo, chunkRepo, jobRepo,
		nil, nil,
		chunkerCfg,
		config.JobsConfig{MaxAttempts: 5},
		"documents",
	)
	return svc, docRepo, cleanup
}

func TestIngestResponseContract(t *testing.T) {
	svc, _, cleanup := newIngestService(t)
	defer cleanup()

	res, err := svc.Ingest(context.Background(), service.IngestInput{
		FileName: "law_on_ingestion.txt",
		Content:  ingestLawContent,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.DocumentID)
	require.False(t, res.Deduplicated)
	require.Greater(t, res.ChunksInserted, 0)
	require.Equal(t, chunker.Version, res.ChunkerVersion)
	require.Len(t, res.ChunkSetVersion, 64)
}

func TestIngestDedupSkip(t *testing.T) {
	svc, _, cleanup := newIngestService(t)
	defer cleanup()
	ctx := context.Background()
	in := service.IngestInput{FileName: "law_on_ingestion.txt", Content: ingestLawContent}

	first, err := svc.Ingest(ctx, in)
	require.NoError(t, err)

	// Byte-identical re-ingest is an idempotent no-op.
	second, err := svc.Ingest(ctx, in)
	require.NoError(t, err)
	require.True(t, second.Deduplicated)
	require.Equal(t, first.DocumentID, second.DocumentID)
	require.Zero(t, second.ChunksInserted)
	require.Equal(t, first.ChunkSetVersion, second.ChunkSetVersion)
	require.Equal(t, first.ChunkerVersion, second.ChunkerVersion)

	in.DedupMode = service.DedupSkip
	third, err := svc.Ingest(ctx, in)
	require.NoError(t, err)
	require.True(t, third.Deduplicated)
}

func TestIngestDedupUpsert(t *testing.T) {
	svc, docRepo, cleanup := newIngestService(t)
	defer cleanup()
	ctx := context.Background()
	in := service.IngestInput{FileName: "law_on_ingestion.txt", Content: ingestLawContent}

	first, err := svc.Ingest(ctx, in)
	require.NoError(t, err)

	in.DedupMode = service.DedupUpsert
	replaced, err := svc.Ingest(ctx, in)
	require.NoError(t, err)
	require.False(t, replaced.Deduplicated)
	require.NotEqual(t, first.DocumentID, replaced.DocumentID)
	require.Equal(t, first.ChunksInserted, replaced.ChunksInserted)

	// The old document is gone; the replacement owns the source hash.
	_, _, _, err = docRepo.Get(ctx, first.DocumentID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	current, _, _, err := docRepo.GetBySourceHash(ctx, replaced.SourceHash)
	require.NoError(t, err)
	require.Equal(t, replaced.DocumentID, current.ID)
}

func TestIngestRejectsUnknownDedupMode(t *testing.T) {
	svc, _, cleanup := newIngestService(t)
	defer cleanup()

	_, err := svc.Ingest(context.Background(), service.IngestInput{
		FileName:  "law_on_ingestion.txt",
		Content:   ingestLawContent,
		DedupMode: "merge",
	})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}
