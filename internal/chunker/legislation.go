package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lexatlas/lexatlas/internal/model"
)

var (
	articleHeaderRe = regexp.MustCompile(`(?m)^[ \t]*(?:Article|Статья)[ \t]+(\d+(?:\.\d+)*)[ \t]*[.:)]?`)
	partMarkerRe    = regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})[.)][ \t]+`)
)

// chunkLegislation emits one chunk per article, or one per numbered part
// when the article has part markers at line starts. A leading span before
// the first article becomes a preamble chunk if long enough.
func (c *Chunker) chunkLegislation(doc Doc) []model.Chunk {
	content := doc.ContentText
	headers := articleHeaderRe.FindAllStringSubmatchIndex(content, -1)
	if len(headers) == 0 {
		return nil
	}

	var chunks []model.Chunk
	first := headers[0][0]
	if lead := strings.TrimSpace(content[:first]); len(lead) >= c.cfg.MinPreambleChars {
		chunks = append(chunks, model.Chunk{
			ChunkType: model.ChunkPreamble,
			CharStart: 0,
			CharEnd:   first,
			Label:     "Preamble",
		})
	}

	for i, h := range headers {
		artStart := h[0]
		artEnd := len(content)
		if i+1 < len(headers) {
			artEnd = headers[i+1][0]
		}
		artNum := content[h[2]:h[3]]
		parentKey := string(doc.DocType) + ":article:" + artNum
		chunks = append(chunks, c.splitArticle(content, artStart, artEnd, h[1], artNum, parentKey)...)
	}
	return chunks
}

// splitArticle cuts one article span into per-part chunks. headerEnd is
// the offset just past the article header match; part markers are only
// honored after it so the header's own number is never mistaken for a
// part.
func (c *Chunker) splitArticle(content string, artStart, artEnd, headerEnd int, artNum, parentKey string) []model.Chunk {
	body := content[headerEnd:artEnd]
	marks := partMarkerRe.FindAllStringSubmatchIndex(body, -1)
	if len(marks) == 0 {
		return []model.Chunk{{
			ChunkType: model.ChunkArticle,
			CharStart: artStart,
			CharEnd:   artEnd,
			Label:     "Article " + artNum,
			Locator:   &model.Locator{Article: artNum},
			ParentKey: parentKey,
		}}
	}

	var chunks []model.Chunk
	// Header plus any unnumbered lead-in stays as the article head chunk.
	headEnd := headerEnd + marks[0][0]
	if headEnd > artStart {
		chunks = append(chunks, model.Chunk{
			ChunkType: model.ChunkArticle,
			CharStart: artStart,
			CharEnd:   headEnd,
			Label:     "Article " + artNum,
			Locator:   &model.Locator{Article: artNum},
			ParentKey: parentKey,
		})
	}
	for i, m := range marks {
		start := headerEnd + m[0]
		end := artEnd
		if i+1 < len(marks) {
			end = headerEnd + marks[i+1][0]
		}
		partNum := body[m[2]:m[3]]
		chunks = append(chunks, model.Chunk{
			ChunkType: model.ChunkArticle,
			CharStart: start,
			CharEnd:   end,
			Label:     fmt.Sprintf("Article %s, part %s", artNum, partNum),
			Locator:   &model.Locator{Article: artNum, Part: partNum},
			ParentKey: parentKey,
		})
	}
	return chunks
}
