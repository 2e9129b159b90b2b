package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexatlas/lexatlas/internal/model"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
	"github.com/lexatlas/lexatlas/internal/repo"
	"github.com/lexatlas/lexatlas/test/testutil"
)

func testDocument(id, sourceHash string) *model.NormalizedDocument {
	return &model.NormalizedDocument{
		ID:            id,
		DocType:       model.DocTypeLaw,
		Jurisdiction:  "am",
		Branch:        model.BranchGeneral,
		Title:         "Law on Testing",
		ContentText:   "Article 1. Testing is mandatory.\n\nArticle 2. So is cleanup.",
		FileName:      "law_on_testing.txt",
		ChunkStrategy: string(model.StrategyLegislation),
		SourceHash:    sourceHash,
		PipelineID:    "lexatlas-ingest",
		IngestedAt:    time.Now().Unix(),
		SchemaVersion: model.SchemaVersion,
	}
}

func TestDocumentCreateAndDedup(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	_, err := db.Exec(`DELETE FROM documents`)
	require.NoError(t, err)

	docs := repo.NewDocumentRepo(db)
	ctx := context.Background()
	doc := testDocument("dedup-doc-1", "hash-dedup-1")
	require.NoError(t, docs.Create(ctx, doc, "v3", "set-1"))

	// Same source hash from a second writer collides.
	dup := testDocument("dedup-doc-2", "hash-dedup-1")
	require.ErrorIs(t, docs.Create(ctx, dup, "v3", "set-1"), appErr.ErrConflict)

	fetched, chunkerVersion, setVersion, err := docs.GetBySourceHash(ctx, "hash-dedup-1")
	require.NoError(t, err)
	require.Equal(t, "dedup-doc-1", fetched.ID)
	require.Equal(t, "v3", chunkerVersion)
	require.Equal(t, "set-1", setVersion)
	require.Equal(t, "law_on_testing.txt", fetched.FileName)
	require.Equal(t, string(model.StrategyLegislation), fetched.ChunkStrategy)

	_, _, _, err = docs.GetBySourceHash(ctx, "no-such-hash")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestChunkSetReplacement(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	_, err := db.Exec(`DELETE FROM documents`)
	require.NoError(t, err)

	docs := repo.NewDocumentRepo(db)
	chunks := repo.NewChunkRepo(db)
	ctx := context.Background()

	doc := testDocument("replace-doc-1", "hash-replace-1")
	require.NoError(t, docs.Create(ctx, doc, "v3", "set-old"))

	oldSet := []model.Chunk{
		{ChunkIndex: 0, ChunkType: model.ChunkArticle, ChunkText: "Article 1. Testing is mandatory.", CharStart: 0, CharEnd: 32, ChunkHash: "h0", ChunkerVersion: "v2"},
	}
	inserted, err := chunks.InsertBatch(ctx, doc.ID, "set-old", oldSet, 100)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	// New set goes in while the old one is still live.
	newSet := []model.Chunk{
		{ChunkIndex: 0, ChunkType: model.ChunkArticle, ChunkText: "Article 1. Testing is mandatory.", CharStart: 0, CharEnd: 32, ChunkHash: "h0", ChunkerVersion: "v3"},
		{ChunkIndex: 1, ChunkType: model.ChunkArticle, ChunkText: "Article 2. So is cleanup.", CharStart: 34, CharEnd: 59, ChunkHash: "h1", ChunkerVersion: "v3"},
	}
	inserted, err = chunks.InsertBatch(ctx, doc.ID, "set-new", newSet, 100)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	require.NoError(t, docs.UpdateChunkSetVersion(ctx, doc.ID, "v3", "set-new", string(model.StrategyLegislation)))
	deleted, err := chunks.DeleteSuperseded(ctx, doc.ID, "set-new")
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	remaining, err := chunks.ListByDocument(ctx, doc.ID, "set-new")
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	require.Equal(t, model.ChunkArticle, remaining[0].ChunkType)

	// Cascade on document delete.
	require.NoError(t, docs.Delete(ctx, doc.ID))
	count, err := chunks.CountByDocument(ctx, doc.ID, "set-new")
	require.NoError(t, err)
	require.Zero(t, count)
}
