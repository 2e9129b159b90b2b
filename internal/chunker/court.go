package chunker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lexatlas/lexatlas/internal/model"
)

// sectionMarker ties a section regex to the chunk type its segment gets.
// Matches are honored only at line starts.
type sectionMarker struct {
	chunkType model.ChunkType
	re        *regexp.Regexp
}

var courtMarkers = []sectionMarker{
	{model.ChunkProceduralHistory, regexp.MustCompile(`(?im)^[ \t]*(?:procedural history|procedure before the court|процессуальная история|ход производства)\b.*$`)},
	{model.ChunkFacts, regexp.MustCompile(`(?im)^[ \t]*(?:the facts|facts of the case|обстоятельства дела|установил[аи]?:)[ \t]*$`)},
	{model.ChunkAppellantArguments, regexp.MustCompile(`(?im)^[ \t]*(?:arguments of the appellant|appellant'?s? arguments|доводы жалобы|доводы заявителя)\b.*$`)},
	{model.ChunkRespondentArguments, regexp.MustCompile(`(?im)^[ \t]*(?:arguments of the respondent|respondent'?s? arguments|доводы ответчика|возражения)\b.*$`)},
	{model.ChunkNormInterpretation, regexp.MustCompile(`(?im)^[ \t]*(?:interpretation of the norm|applicable law|применимое право|толкование норм\w*)\b.*$`)},
	{model.ChunkReasoning, regexp.MustCompile(`(?im)^[ \t]*(?:reasoning|the court'?s assessment|motivation|мотивировочная часть)\b.*$`)},
	{model.ChunkOperative, regexp.MustCompile(`(?im)^[ \t]*(?:operative part|постановил[аи]?:|определил[аи]?:|решил[аи]?:)[ \t]*$`)},
	{model.ChunkResolution, regexp.MustCompile(`(?im)^[ \t]*(?:resolution|резолютивная часть)\b.*$`)},
	{model.ChunkDissent, regexp.MustCompile(`(?im)^[ \t]*(?:dissenting opinion|особое мнение)\b.*$`)},
}

// markerDedupeChars collapses marker hits closer than this; scanned texts
// often repeat a section title on consecutive lines.
const markerDedupeChars = 50

var caseNumberChunkRe = regexp.MustCompile(`(?i)(?:case\s+no\.?|дело\s*№)\s*([A-Za-zА-Яа-я0-9][\w/.-]*)`)

func extractCaseNumber(content string) string {
	window := content
	if len(window) > 2500 {
		window = window[:2500]
	}
	if m := caseNumberChunkRe.FindStringSubmatch(window); m != nil {
		return strings.TrimRight(m[1], ".,;")
	}
	return ""
}

type sectionHit struct {
	pos       int
	headerEnd int
	chunkType model.ChunkType
	title     string
}

func findSections(content string, markers []sectionMarker) []sectionHit {
	var hits []sectionHit
	for _, m := range markers {
		for _, loc := range m.re.FindAllStringIndex(content, -1) {
			title := strings.TrimSpace(content[loc[0]:loc[1]])
			hits = append(hits, sectionHit{pos: loc[0], headerEnd: loc[1], chunkType: m.chunkType, title: title})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	deduped := hits[:0]
	for _, h := range hits {
		if len(deduped) > 0 && h.pos-deduped[len(deduped)-1].pos < markerDedupeChars {
			continue
		}
		deduped = append(deduped, h)
	}
	return deduped
}

// sectionsToChunks converts ordered section hits into contiguous chunks;
// text before the first hit becomes a header chunk.
func sectionsToChunks(docType model.DocType, content string, hits []sectionHit) []model.Chunk {
	if len(hits) == 0 {
		return nil
	}
	var chunks []model.Chunk
	if strings.TrimSpace(content[:hits[0].pos]) != "" {
		chunks = append(chunks, model.Chunk{
			ChunkType: model.ChunkHeader,
			CharStart: 0,
			CharEnd:   hits[0].pos,
			Label:     "Header",
		})
	}
	for i, h := range hits {
		end := len(content)
		if i+1 < len(hits) {
			end = hits[i+1].pos
		}
		chunks = append(chunks, model.Chunk{
			ChunkType: h.chunkType,
			CharStart: h.pos,
			CharEnd:   end,
			Label:     h.title,
			Locator:   &model.Locator{SectionTitle: h.title},
			ParentKey: string(docType) + ":section:" + string(h.chunkType),
			Metadata:  &model.ChunkMeta{SectionType: string(h.chunkType)},
		})
	}
	return chunks
}

func (c *Chunker) chunkCourtDecision(doc Doc) []model.Chunk {
	hits := findSections(doc.ContentText, courtMarkers)
	return sectionsToChunks(doc.DocType, doc.ContentText, hits)
}
