// Package normalize turns cleaned raw text into a canonical
// NormalizedDocument: deterministic classification, metadata extraction
// and a stable dedup hash. Everything here is pure; persistence belongs
// to the caller.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/preprocess"
)

// PipelineID tags every document with the producing pipeline revision.
const PipelineID = "lexatlas-ingest"

// sourceHashPrefix bounds how much of the raw text feeds the dedup hash,
// keeping it stable however large the upload is.
const sourceHashPrefix = 64 * 1024

type Input struct {
	FileName  string
	MimeType  string
	RawText   string
	SourceURL string
}

type Normalizer struct {
	jurisdiction string
	sourceName   string
}

func New(jurisdiction, sourceName string) *Normalizer {
	return &Normalizer{jurisdiction: jurisdiction, sourceName: sourceName}
}

// SourceHash hashes a bounded prefix of the original raw text. It must
// stay independent of any preprocessing change so re-ingesting
// byte-identical input always dedups.
func SourceHash(raw string) string {
	if len(raw) > sourceHashPrefix {
		raw = raw[:sourceHashPrefix]
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (n *Normalizer) Normalize(in Input) (*model.NormalizedDocument, *preprocess.Result) {
	sourceHash := SourceHash(in.RawText)

	clean := preprocess.Clean(in.RawText, preprocess.Options{
		IsHTML:     isHTML(in.MimeType, in.RawText),
		IsMarkdown: isMarkdown(in.MimeType, in.FileName),
	})
	content := clean.Cleaned

	docType := detectDocType(in.FileName, content)
	doc := &model.NormalizedDocument{
		ID:            uuid.NewString(),
		DocType:       docType,
		Jurisdiction:  n.jurisdiction,
		Branch:        detectBranch(docType, content),
		Title:         deriveTitle(in.FileName, content),
		ContentText:   content,
		DateAdopted:   extractDate(content),
		SourceURL:     in.SourceURL,
		SourceName:    n.sourceName,
		FileName:      in.FileName,
		SourceHash:    sourceHash,
		PipelineID:    PipelineID,
		IngestedAt:    time.Now().Unix(),
		SchemaVersion: model.SchemaVersion,
	}
	if docType.IsCourtType() {
		doc.Court = &model.CourtMeta{
			CourtType:  courtTypeFor(docType),
			CourtName:  detectCourtName(content),
			CaseNumber: extractCaseNumber(content),
			Outcome:    detectOutcome(content),
		}
		doc.DocumentNumber = doc.Court.CaseNumber
	} else {
		doc.DocumentNumber = extractActNumber(content)
	}
	return doc, &clean
}

func isHTML(mimeType, raw string) bool {
	if strings.Contains(strings.ToLower(mimeType), "html") {
		return true
	}
	head := raw
	if len(head) > 512 {
		head = head[:512]
	}
	head = strings.ToLower(head)
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

func isMarkdown(mimeType, fileName string) bool {
	if strings.Contains(strings.ToLower(mimeType), "markdown") {
		return true
	}
	lower := strings.ToLower(fileName)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// deriveTitle prefers the first non-empty content line of sane length,
// falling back to the file name without extension.
func deriveTitle(fileName, content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if runes := []rune(line); len(runes) > 200 {
			line = strings.TrimSpace(string(runes[:200]))
		}
		return line
	}
	name := fileName
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return name
}
