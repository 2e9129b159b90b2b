package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lexatlas/lexatlas/internal/model"
)

var treatyArticleRe = regexp.MustCompile(`(?m)^[ \t]*(?:Article|Статья)[ \t]+(\d+|[IVXLCDM]+)\b[ \t]*[.:]?`)

// chunkTreaty emits one treaty_article chunk per article; treaties keep
// whole articles intact since parts are rare and short.
func (c *Chunker) chunkTreaty(doc Doc) []model.Chunk {
	content := doc.ContentText
	headers := treatyArticleRe.FindAllStringSubmatchIndex(content, -1)
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
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		artNum := content[h[2]:h[3]]
		chunks = append(chunks, model.Chunk{
			ChunkType: model.ChunkTreatyArticle,
			CharStart: h[0],
			CharEnd:   end,
			Label:     fmt.Sprintf("Article %s", artNum),
			Locator:   &model.Locator{Article: artNum},
			ParentKey: string(doc.DocType) + ":article:" + artNum,
		})
	}
	return chunks
}
