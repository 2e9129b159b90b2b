package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"unicode"

	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/repo"
)

// ExportService streams the active chunk sets as JSONL, one record per
// chunk, in the shape downstream retrieval loaders consume.
type ExportService struct {
	docRepo       *repo.DocumentRepo
	chunkRepo     *repo.ChunkRepo
	maxChunkChars int
}

func NewExportService(docRepo *repo.DocumentRepo, chunkRepo *repo.ChunkRepo, maxChunkChars int) *ExportService {
	return &ExportService{
		docRepo:       docRepo,
		chunkRepo:     chunkRepo,
		maxChunkChars: maxChunkChars,
	}
}

var docTypeCollections = map[model.DocType]string{
	model.DocTypeLaw:                 "legislation",
	model.DocTypeCode:                "legislation",
	model.DocTypeGovernmentDecree:    "legislation",
	model.DocTypePMDecision:          "legislation",
	model.DocTypeRegulation:          "legislation",
	model.DocTypeTreaty:              "treaties",
	model.DocTypeECHRJudgment:        "echr",
	model.DocTypeLegalCommentary:     "commentary",
	model.DocTypeConstitutionalCourt: "case_law",
	model.DocTypeCassationRuling:     "case_law",
	model.DocTypeAppealRuling:        "case_law",
	model.DocTypeFirstInstanceRuling: "case_law",
	model.DocTypeCourtDecision:       "case_law",
}

func collectionFor(docType model.DocType) string {
	if collection, ok := docTypeCollections[docType]; ok {
		return collection
	}
	return "uncategorized"
}

// WriteJSONL walks documents in stable ingest order and writes one line
// per chunk. A non-empty collection restricts the output to documents
// mapping to that collection.
func (s *ExportService) WriteJSONL(ctx context.Context, w io.Writer, collection string, limit, offset int) (int, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	if collection != "" && !model.ExportCollections[collection] {
		return 0, fmt.Errorf("unknown collection: %s", collection)
	}
	ids, err := s.docRepo.ListIDs(ctx, limit, offset)
	if err != nil {
		return 0, err
	}
	encoder := json.NewEncoder(w)
	written := 0
	for _, id := range ids {
		doc, _, setVersion, err := s.docRepo.Get(ctx, id)
		if err != nil {
			return written, err
		}
		if collection != "" && collectionFor(doc.DocType) != collection {
			continue
		}
		chunks, err := s.chunkRepo.ListByDocument(ctx, id, setVersion)
		if err != nil {
			return written, err
		}
		for i := range chunks {
			record := s.buildRecord(doc, &chunks[i], len(chunks))
			if err := ValidateExportRecord(record, s.maxChunkChars); err != nil {
				return written, fmt.Errorf("document %s chunk %d: %w", id, chunks[i].ChunkIndex, err)
			}
			if err := encoder.Encode(record); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func (s *ExportService) buildRecord(doc *model.NormalizedDocument, ch *model.Chunk, total int) *model.ExportRecord {
	sourceType := "file"
	if doc.SourceURL != "" {
		sourceType = "url"
	}
	metadata := map[string]string{
		"pipeline_id": doc.PipelineID,
		"source_hash": doc.SourceHash,
	}
	if doc.DocumentNumber != "" {
		metadata["document_number"] = doc.DocumentNumber
	}
	if doc.DateAdopted != "" {
		metadata["date_adopted"] = doc.DateAdopted
	}
	if doc.Court != nil {
		metadata["court_type"] = string(doc.Court.CourtType)
		if doc.Court.CaseNumber != "" {
			metadata["case_number"] = doc.Court.CaseNumber
		}
	}
	if ch.Metadata != nil && ch.Metadata.SectionType != "" {
		metadata["section_type"] = ch.Metadata.SectionType
	}
	return &model.ExportRecord{
		ID:           fmt.Sprintf("%s:%d", doc.ID, ch.ChunkIndex),
		Jurisdiction: doc.Jurisdiction,
		Collection:   collectionFor(doc.DocType),
		DocType:      doc.DocType,
		Title:        doc.Title,
		Source: model.ExportSource{
			Type:     sourceType,
			URI:      doc.SourceURL,
			FileName: doc.FileName,
		},
		Language: detectLanguage(ch.ChunkText),
		Chunk: model.ExportChunk{
			Index:     ch.ChunkIndex,
			Total:     total,
			Strategy:  doc.ChunkStrategy,
			Type:      ch.ChunkType,
			Text:      ch.ChunkText,
			CharStart: ch.CharStart,
			CharEnd:   ch.CharEnd,
			Label:     ch.Label,
			Locator:   ch.Locator,
		},
		Metadata: metadata,
	}
}

// ValidateExportRecord is the last gate before a record leaves the
// system. It accepts the legacy chunk_text field name from older
// producers but requires text in one of the two.
func ValidateExportRecord(record *model.ExportRecord, maxChunkChars int) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	text := record.Chunk.Text
	if text == "" {
		text = record.Chunk.LegacyText
	}
	if text == "" {
		return fmt.Errorf("chunk text is empty")
	}
	if maxChunkChars > 0 && len(text) > maxChunkChars {
		return fmt.Errorf("chunk text exceeds %d chars", maxChunkChars)
	}
	if !model.ExportCollections[record.Collection] {
		return fmt.Errorf("unknown collection: %s", record.Collection)
	}
	if !model.ChunkTypes[record.Chunk.Type] {
		return fmt.Errorf("unknown chunk type: %s", record.Chunk.Type)
	}
	if record.Chunk.Index < 0 || record.Chunk.Total <= record.Chunk.Index {
		return fmt.Errorf("chunk index %d out of range (total %d)", record.Chunk.Index, record.Chunk.Total)
	}
	if record.Chunk.CharEnd <= record.Chunk.CharStart {
		return fmt.Errorf("empty chunk span")
	}
	return nil
}

// detectLanguage takes a cheap script census: Armenian and Cyrillic
// letters identify hy/ru, anything else defaults to en.
func detectLanguage(text string) string {
	var armenian, cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Armenian, r):
			armenian++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.IsLetter(r):
			latin++
		}
	}
	if armenian > cyrillic && armenian > latin {
		return "hy"
	}
	if cyrillic > latin {
		return "ru"
	}
	return "en"
}
