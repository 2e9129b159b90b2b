// Package qa is the structural gate run before any chunk write. It
// re-derives the chunking invariants from raw inputs only, deliberately
// sharing no code with the chunker, so a chunker bug cannot validate its
// own output.
package qa

import (
	"fmt"

	"github.com/lexatlas/lexatlas/internal/model"
)

type Config struct {
	MaxChunkChars int
	// MaxOverlap is the only overlap ever allowed between neighbors, the
	// fixed-window strategy's configured overlap.
	MaxOverlap int
	// MaxErrors bounds how many violations are reported.
	MaxErrors int
}

type Result struct {
	OK     bool
	Errors []string
}

// ValidateChunks checks slice integrity, ordering, bounded overlap, span
// caps and contiguous indexing. Any error must abort persistence.
func ValidateChunks(contentText string, chunks []model.Chunk, cfg Config) Result {
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = 10
	}
	var errs []string
	report := func(format string, args ...interface{}) bool {
		if len(errs) < cfg.MaxErrors {
			errs = append(errs, fmt.Sprintf(format, args...))
		}
		return len(errs) < cfg.MaxErrors
	}

	for i := range chunks {
		ch := &chunks[i]
		if ch.ChunkIndex != i {
			if !report("chunk %d: index %d not contiguous", i, ch.ChunkIndex) {
				break
			}
		}
		if ch.CharEnd <= ch.CharStart {
			if !report("chunk %d: empty or inverted span [%d,%d)", i, ch.CharStart, ch.CharEnd) {
				break
			}
			continue
		}
		if ch.CharStart < 0 || ch.CharEnd > len(contentText) {
			if !report("chunk %d: span [%d,%d) outside content of length %d", i, ch.CharStart, ch.CharEnd, len(contentText)) {
				break
			}
			continue
		}
		if cfg.MaxChunkChars > 0 && ch.CharEnd-ch.CharStart > cfg.MaxChunkChars {
			if !report("chunk %d: span %d exceeds cap %d", i, ch.CharEnd-ch.CharStart, cfg.MaxChunkChars) {
				break
			}
		}
		if ch.ChunkText != contentText[ch.CharStart:ch.CharEnd] {
			if !report("chunk %d: chunk_text does not equal content_text[%d:%d]", i, ch.CharStart, ch.CharEnd) {
				break
			}
		}
		if !model.ChunkTypes[ch.ChunkType] {
			if !report("chunk %d: unknown chunk_type %q", i, ch.ChunkType) {
				break
			}
		}
		if i == 0 {
			continue
		}
		prev := &chunks[i-1]
		if ch.CharStart <= prev.CharStart {
			if !report("chunk %d: starts at %d, not after previous start %d", i, ch.CharStart, prev.CharStart) {
				break
			}
		}
		if ch.CharStart < prev.CharEnd-cfg.MaxOverlap {
			if !report("chunk %d: overlaps previous chunk by %d, allowed %d", i, prev.CharEnd-ch.CharStart, cfg.MaxOverlap) {
				break
			}
		}
	}
	return Result{OK: len(errs) == 0, Errors: errs}
}
