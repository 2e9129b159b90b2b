package chunker

import (
	"fmt"
	"strings"

	"github.com/lexatlas/lexatlas/internal/model"
)

type span struct {
	start int
	end   int
}

// chunkFixedWindow is the fallback for unstructured documents: greedy
// forward windows with a fixed overlap, breaking at blank lines where
// possible.
func (c *Chunker) chunkFixedWindow(doc Doc) []model.Chunk {
	spans := c.windowSpans(doc.ContentText, 0, len(doc.ContentText), c.cfg.WindowOverlap)
	chunks := make([]model.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, model.Chunk{
			ChunkType: model.ChunkFullText,
			CharStart: s.start,
			CharEnd:   s.end,
			Label:     fmt.Sprintf("Part %d", i+1),
		})
	}
	return chunks
}

// windowSpans cuts [start,end) into windows of at most WindowChars,
// preferring a blank-line break, then a newline, past the window midpoint.
// Consecutive windows overlap by up to `overlap` bytes.
func (c *Chunker) windowSpans(content string, start, end, overlap int) []span {
	if start >= end {
		return nil
	}
	var spans []span
	pos := start
	for pos < end {
		wEnd := pos + c.cfg.WindowChars
		if wEnd >= end {
			spans = append(spans, span{pos, end})
			break
		}
		cut := c.breakPoint(content, pos, wEnd)
		spans = append(spans, span{pos, cut})
		next := runeCeil(content, cut-overlap)
		if next <= pos {
			next = cut
		}
		pos = next
	}
	return spans
}

// breakPoint picks a cut in (pos, wEnd] at a blank-line boundary if one
// exists past the midpoint, else at a newline, else at wEnd itself
// (adjusted back to a rune boundary).
func (c *Chunker) breakPoint(content string, pos, wEnd int) int {
	min := pos + c.cfg.WindowChars/2
	window := content[min:wEnd]
	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return min + idx + 1
	}
	if idx := strings.LastIndex(window, "\n"); idx >= 0 {
		return min + idx + 1
	}
	return runeFloor(content, wEnd)
}

// runeFloor moves i back to the nearest UTF-8 rune start.
func runeFloor(s string, i int) int {
	for i > 0 && i < len(s) && s[i]&0xc0 == 0x80 {
		i--
	}
	return i
}

// runeCeil moves i forward to the nearest UTF-8 rune start.
func runeCeil(s string, i int) int {
	if i < 0 {
		return 0
	}
	for i < len(s) && s[i]&0xc0 == 0x80 {
		i++
	}
	return i
}

// splitOversize re-cuts any chunk whose span exceeds the hard cap using
// the window splitter without overlap, preserving absolute offsets and
// the structural identity of the original chunk.
func (c *Chunker) splitOversize(content string, chunks []model.Chunk) []model.Chunk {
	out := make([]model.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Span() <= c.cfg.MaxChunkChars {
			out = append(out, ch)
			continue
		}
		spans := c.windowSpans(content, ch.CharStart, ch.CharEnd, 0)
		for i, s := range spans {
			part := ch
			part.CharStart = s.start
			part.CharEnd = s.end
			if i > 0 && part.Label != "" {
				part.Label = fmt.Sprintf("%s (cont. %d)", ch.Label, i+1)
			}
			out = append(out, part)
		}
	}
	return out
}
