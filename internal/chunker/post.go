package chunker

import (
	"sort"
	"strings"

	"github.com/lexatlas/lexatlas/internal/model"
)

// mergeUndersizedTails folds a short fragment into its predecessor, but
// only when both carry the same non-empty ParentKey (same article, same
// section) and the merged span stays under the cap. Chunks without a
// structural identity are never merged.
func (c *Chunker) mergeUndersizedTails(content string, chunks []model.Chunk) []model.Chunk {
	if len(chunks) < 2 {
		return chunks
	}
	out := chunks[:1]
	for _, cur := range chunks[1:] {
		prev := &out[len(out)-1]
		if cur.Span() < c.cfg.TailMergeChars &&
			cur.ParentKey != "" && cur.ParentKey == prev.ParentKey &&
			cur.CharStart == prev.CharEnd &&
			cur.CharEnd-prev.CharStart <= c.cfg.MaxChunkChars {
			// Absorbing a trailing part keeps the predecessor's label and
			// locator; the merged span still starts at its header.
			prev.CharEnd = cur.CharEnd
			continue
		}
		out = append(out, cur)
	}
	return out
}

// finalize orders chunks by offset, assigns contiguous indices from 0,
// materializes chunk text from content_text and computes hashes.
func finalize(doc Doc, chunks []model.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].CharStart != chunks[j].CharStart {
			return chunks[i].CharStart < chunks[j].CharStart
		}
		return chunks[i].CharEnd < chunks[j].CharEnd
	})
	for i := range chunks {
		ch := &chunks[i]
		ch.ChunkIndex = i
		ch.ChunkText = doc.ContentText[ch.CharStart:ch.CharEnd]
		ch.ChunkHash = hashText(ch.ChunkText)
		ch.ChunkerVersion = Version
		if ch.Metadata == nil {
			ch.Metadata = &model.ChunkMeta{}
		}
		ch.Metadata.DocumentType = string(doc.DocType)
		if ch.ChunkType == model.ChunkFullText && looksTabular(ch.ChunkText) {
			ch.ChunkType = model.ChunkTable
		}
	}
}

// looksTabular flags window chunks dominated by delimiter-heavy lines so
// the ingest path can notify the table renderer.
func looksTabular(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return false
	}
	tabular := 0
	total := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if strings.Count(line, "\t") >= 2 || strings.Count(line, " | ") >= 2 || strings.Count(line, "|") >= 3 {
			tabular++
		}
	}
	return total >= 3 && tabular*2 > total
}
