package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexatlas/lexatlas/internal/chunker"
	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/qa"
)

const lawText = `LAW OF THE REPUBLIC ON PUBLIC TESTING

Adopted by the National Assembly on 12 January 2020 and signed by the President on 20 January 2020.

Article 1. Scope
This statute governs the procedure for public testing of draft acts.

Article 2. Definitions
1. Public testing means the collection of comments from any person.
2. Draft act means a normative text published for comments.

Article 3. Entry into force
This statute enters into force on the tenth day following its official publication.`

const courtText = `COURT OF CASSATION OF THE REPUBLIC

Case No. ABC-1/2021. The chamber examined the cassation appeal against the appellate judgment.

THE FACTS
The applicant was convicted by the first instance court. The appellate court upheld the conviction in full after reviewing the record.

REASONING
The chamber finds that the lower courts applied the substantive norm correctly and that the procedural complaints are unfounded in their entirety.

OPERATIVE PART
The cassation appeal is dismissed. The appellate judgment remains in force.`

const echrText = `CASE OF DOE v. EXAMPLE

(Application no. 12345/67)

PROCEDURE
The case originated in an application against the respondent State lodged with the Court under Article 34 of the Convention.

THE FACTS
The applicant was detained pending investigation for a period exceeding the statutory maximum provided by domestic law.

THE LAW
The applicant complained that the length of detention had been excessive and unjustified under the Convention standards.

FOR THESE REASONS, THE COURT UNANIMOUSLY
Holds that there has been a violation; awards just satisfaction to the applicant.`

const treatyText = `CONVENTION ON MUTUAL ASSISTANCE IN TESTING MATTERS

The States Parties to this Convention, desiring to strengthen cooperation in testing matters and recalling the generally recognized principles of international law, have agreed as follows:

Article I
For the purposes of this Convention, testing means any verification activity.

Article II
Each Party shall designate a central authority responsible for requests.`

func requireInvariants(t *testing.T, content string, chunks []model.Chunk, maxOverlap int) {
	t.Helper()
	check := qa.ValidateChunks(content, chunks, qa.Config{MaxChunkChars: 8000, MaxOverlap: maxOverlap})
	require.True(t, check.OK, "qa violations: %v", check.Errors)
}

func TestChunkLegislation(t *testing.T) {
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeLaw, ContentText: lawText})
	require.Equal(t, model.StrategyLegislation, res.Strategy)
	requireInvariants(t, lawText, res.Chunks, 0)

	// Preamble plus one chunk per article; the numbered parts of article 2
	// are short tails folded back into it.
	require.Len(t, res.Chunks, 4)
	require.Equal(t, model.ChunkPreamble, res.Chunks[0].ChunkType)
	require.Equal(t, "Preamble", res.Chunks[0].Label)
	for i, wantArt := range []string{"1", "2", "3"} {
		ch := res.Chunks[i+1]
		require.Equal(t, model.ChunkArticle, ch.ChunkType)
		require.NotNil(t, ch.Locator)
		require.Equal(t, wantArt, ch.Locator.Article)
	}
	require.Contains(t, res.Chunks[2].ChunkText, "2. Draft act means")
	require.Equal(t, chunker.Version, res.Chunks[0].ChunkerVersion)
}

func TestChunkLegislationPartsKeptWhenLarge(t *testing.T) {
	long := strings.Repeat("The commentary elaborates on the statutory rule in detail. ", 10)
	content := "Article 7. Liability\n1. " + long + "\n2. " + long
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeLaw, ContentText: content})
	requireInvariants(t, content, res.Chunks, 0)
	require.GreaterOrEqual(t, len(res.Chunks), 2)

	parts := map[string]bool{}
	for _, ch := range res.Chunks {
		require.NotNil(t, ch.Locator)
		require.Equal(t, "7", ch.Locator.Article)
		if ch.Locator.Part != "" {
			parts[ch.Locator.Part] = true
		}
	}
	require.True(t, parts["2"])
}

func TestChunkCourtDecision(t *testing.T) {
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeCassationRuling, ContentText: courtText})
	require.Equal(t, model.StrategyCourt, res.Strategy)
	require.Equal(t, "ABC-1/2021", res.CaseNumber)
	requireInvariants(t, courtText, res.Chunks, 0)

	types := make([]model.ChunkType, 0, len(res.Chunks))
	for _, ch := range res.Chunks {
		types = append(types, ch.ChunkType)
		require.NotNil(t, ch.Metadata)
		require.Equal(t, string(model.DocTypeCassationRuling), ch.Metadata.DocumentType)
	}
	require.Equal(t, []model.ChunkType{
		model.ChunkHeader, model.ChunkFacts, model.ChunkReasoning, model.ChunkOperative,
	}, types)
	require.Equal(t, "facts", res.Chunks[1].Metadata.SectionType)
}

func TestChunkECHR(t *testing.T) {
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeECHRJudgment, ContentText: echrText})
	require.Equal(t, model.StrategyECHR, res.Strategy)
	requireInvariants(t, echrText, res.Chunks, 0)

	types := make([]model.ChunkType, 0, len(res.Chunks))
	for _, ch := range res.Chunks {
		types = append(types, ch.ChunkType)
		require.Equal(t, "echr", ch.Metadata.CourtLevel)
		require.Equal(t, "12345/67", ch.Metadata.CaseNumber)
	}
	require.Equal(t, []model.ChunkType{
		model.ChunkHeader, model.ChunkProcedure, model.ChunkFacts,
		model.ChunkAssessment, model.ChunkConclusion,
	}, types)
}

func TestChunkTreaty(t *testing.T) {
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeTreaty, ContentText: treatyText})
	require.Equal(t, model.StrategyTreaty, res.Strategy)
	requireInvariants(t, treatyText, res.Chunks, 0)

	require.Len(t, res.Chunks, 3)
	require.Equal(t, model.ChunkPreamble, res.Chunks[0].ChunkType)
	require.Equal(t, model.ChunkTreatyArticle, res.Chunks[1].ChunkType)
	require.Equal(t, "I", res.Chunks[1].Locator.Article)
	require.Equal(t, "II", res.Chunks[2].Locator.Article)
}

func TestChunkFixedWindowFallback(t *testing.T) {
	para := strings.Repeat("An unstructured paragraph about nothing in particular. ", 8) + "\n\n"
	content := strings.TrimSpace(strings.Repeat(para, 30))
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeOther, ContentText: content})
	require.Equal(t, model.StrategyFixedWindow, res.Strategy)
	require.Greater(t, len(res.Chunks), 1)
	requireInvariants(t, content, res.Chunks, 200)
	for _, ch := range res.Chunks {
		require.Equal(t, model.ChunkFullText, ch.ChunkType)
		require.LessOrEqual(t, ch.Span(), 3000)
	}
}

func TestChunkOversizeArticleSplit(t *testing.T) {
	body := strings.Repeat("A sentence inside a very long single article body.\n", 40)
	content := "Article 1. Everything\n" + body
	c := chunker.New(chunker.Config{MaxChunkChars: 500, WindowChars: 200, WindowOverlap: 50, TailMergeChars: 50, MinPreambleChars: 80})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeLaw, ContentText: content})

	check := qa.ValidateChunks(content, res.Chunks, qa.Config{MaxChunkChars: 500, MaxOverlap: 50})
	require.True(t, check.OK, "qa violations: %v", check.Errors)
	require.Greater(t, len(res.Chunks), 1)
	for i, ch := range res.Chunks {
		require.LessOrEqual(t, ch.Span(), 500)
		require.Equal(t, model.ChunkArticle, ch.ChunkType)
		if i > 0 {
			// Structural splits never overlap.
			require.Equal(t, res.Chunks[i-1].CharEnd, ch.CharStart)
			require.Contains(t, ch.Label, "cont.")
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := chunker.New(chunker.Config{})
	first := c.Chunk(chunker.Doc{DocType: model.DocTypeCassationRuling, ContentText: courtText})
	second := c.Chunk(chunker.Doc{DocType: model.DocTypeCassationRuling, ContentText: courtText})
	require.Equal(t, first, second)
}

func TestChunkEmptyContent(t *testing.T) {
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeLaw, ContentText: ""})
	require.Empty(t, res.Chunks)
	require.Equal(t, model.StrategyFixedWindow, res.Strategy)
}

func TestChunkTableDetection(t *testing.T) {
	rows := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		rows = append(rows, "Row | Value | Annotation | Note")
	}
	content := strings.Join(rows, "\n")
	c := chunker.New(chunker.Config{})
	res := c.Chunk(chunker.Doc{DocType: model.DocTypeOther, ContentText: content})
	require.Len(t, res.Chunks, 1)
	require.Equal(t, model.ChunkTable, res.Chunks[0].ChunkType)
}

func TestChunkSetVersion(t *testing.T) {
	v1 := chunker.ChunkSetVersion("content a")
	require.Equal(t, v1, chunker.ChunkSetVersion("content a"))
	require.NotEqual(t, v1, chunker.ChunkSetVersion("content b"))
	require.Len(t, v1, 64)
}
