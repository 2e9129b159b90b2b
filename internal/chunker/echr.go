package chunker

import (
	"regexp"

	"github.com/lexatlas/lexatlas/internal/model"
)

// ECHR judgments follow a rigid registry layout; the markers mirror the
// canonical section headings.
var echrMarkers = []sectionMarker{
	{model.ChunkProcedure, regexp.MustCompile(`(?im)^[ \t]*PROCEDURE[ \t]*$`)},
	{model.ChunkFacts, regexp.MustCompile(`(?im)^[ \t]*(?:THE FACTS|I+\.?[ \t]+THE CIRCUMSTANCES OF THE CASE)[ \t]*$`)},
	{model.ChunkLaw, regexp.MustCompile(`(?im)^[ \t]*(?:RELEVANT LEGAL FRAMEWORK(?: AND PRACTICE)?|RELEVANT DOMESTIC LAW(?: AND PRACTICE)?)[ \t]*$`)},
	{model.ChunkAssessment, regexp.MustCompile(`(?im)^[ \t]*(?:THE LAW|ALLEGED VIOLATION OF ARTICLE[ \t]+\d+.*)[ \t]*$`)},
	{model.ChunkJustSatisfaction, regexp.MustCompile(`(?im)^[ \t]*(?:APPLICATION OF ARTICLE 41|JUST SATISFACTION)\b.*$`)},
	{model.ChunkConclusion, regexp.MustCompile(`(?im)^[ \t]*FOR THESE REASONS\b.*$`)},
	{model.ChunkDissent, regexp.MustCompile(`(?im)^[ \t]*(?:DISSENTING|CONCURRING) OPINION\b.*$`)},
}

var echrAppNumberRe = regexp.MustCompile(`(?i)application\s+no\.?\s*(\d+/\d+)`)

func (c *Chunker) chunkECHR(doc Doc) []model.Chunk {
	hits := findSections(doc.ContentText, echrMarkers)
	chunks := sectionsToChunks(doc.DocType, doc.ContentText, hits)

	appNo := ""
	if m := echrAppNumberRe.FindStringSubmatch(doc.ContentText); m != nil {
		appNo = m[1]
	}
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = &model.ChunkMeta{}
		}
		chunks[i].Metadata.CourtLevel = "echr"
		chunks[i].Metadata.CaseNumber = appNo
	}
	return chunks
}
