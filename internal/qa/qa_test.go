package qa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexatlas/lexatlas/internal/model"
)

func goodChunks(content string) []model.Chunk {
	mid := len(content) / 2
	return []model.Chunk{
		{ChunkIndex: 0, ChunkType: model.ChunkArticle, ChunkText: content[:mid], CharStart: 0, CharEnd: mid},
		{ChunkIndex: 1, ChunkType: model.ChunkArticle, ChunkText: content[mid:], CharStart: mid, CharEnd: len(content)},
	}
}

func TestValidateChunksAccepts(t *testing.T) {
	content := strings.Repeat("Article text. ", 50)
	res := ValidateChunks(content, goodChunks(content), Config{MaxChunkChars: 8000})
	require.True(t, res.OK)
	require.Empty(t, res.Errors)
}

func TestValidateChunksViolations(t *testing.T) {
	content := strings.Repeat("Article text. ", 50)

	cases := []struct {
		name   string
		mutate func(chunks []model.Chunk)
		want   string
	}{
		{
			name:   "non contiguous index",
			mutate: func(chunks []model.Chunk) { chunks[1].ChunkIndex = 5 },
			want:   "not contiguous",
		},
		{
			name:   "inverted span",
			mutate: func(chunks []model.Chunk) { chunks[1].CharEnd = chunks[1].CharStart },
			want:   "empty or inverted span",
		},
		{
			name: "span outside content",
			mutate: func(chunks []model.Chunk) {
				chunks[1].CharEnd = len(content) + 10
			},
			want: "outside content",
		},
		{
			name: "text mismatch",
			mutate: func(chunks []model.Chunk) {
				chunks[0].ChunkText = "tampered"
			},
			want: "does not equal content_text",
		},
		{
			name: "unknown chunk type",
			mutate: func(chunks []model.Chunk) {
				chunks[0].ChunkType = "mystery"
			},
			want: "unknown chunk_type",
		},
		{
			name: "unexpected overlap",
			mutate: func(chunks []model.Chunk) {
				chunks[1].CharStart -= 40
				chunks[1].ChunkText = content[chunks[1].CharStart:chunks[1].CharEnd]
			},
			want: "overlaps previous",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := goodChunks(content)
			tc.mutate(chunks)
			res := ValidateChunks(content, chunks, Config{MaxChunkChars: 8000})
			require.False(t, res.OK)
			require.NotEmpty(t, res.Errors)
			found := false
			for _, e := range res.Errors {
				if strings.Contains(e, tc.want) {
					found = true
				}
			}
			require.True(t, found, "expected %q in %v", tc.want, res.Errors)
		})
	}
}

func TestValidateChunksSpanCap(t *testing.T) {
	content := strings.Repeat("x", 100)
	chunks := []model.Chunk{
		{ChunkIndex: 0, ChunkType: model.ChunkFullText, ChunkText: content, CharStart: 0, CharEnd: 100},
	}
	res := ValidateChunks(content, chunks, Config{MaxChunkChars: 50})
	require.False(t, res.OK)
	require.Contains(t, res.Errors[0], "exceeds cap")
}

func TestValidateChunksAllowsConfiguredOverlap(t *testing.T) {
	content := strings.Repeat("y", 200)
	chunks := []model.Chunk{
		{ChunkIndex: 0, ChunkType: model.ChunkFullText, ChunkText: content[:120], CharStart: 0, CharEnd: 120},
		{ChunkIndex: 1, ChunkType: model.ChunkFullText, ChunkText: content[100:], CharStart: 100, CharEnd: 200},
	}
	res := ValidateChunks(content, chunks, Config{MaxChunkChars: 8000, MaxOverlap: 20})
	require.True(t, res.OK, "errors: %v", res.Errors)

	res = ValidateChunks(content, chunks, Config{MaxChunkChars: 8000, MaxOverlap: 10})
	require.False(t, res.OK)
}

func TestValidateChunksErrorCapBounded(t *testing.T) {
	content := strings.Repeat("z", 10)
	var chunks []model.Chunk
	for i := 0; i < 30; i++ {
		chunks = append(chunks, model.Chunk{ChunkIndex: 99, ChunkType: "bogus", CharStart: 5, CharEnd: 3})
	}
	res := ValidateChunks(content, chunks, Config{})
	require.False(t, res.OK)
	require.LessOrEqual(t, len(res.Errors), 10)
}

func TestValidateChunksEmptySetOK(t *testing.T) {
	res := ValidateChunks("anything", nil, Config{})
	require.True(t, res.OK)
}
