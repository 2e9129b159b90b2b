package normalize

import (
	"regexp"

	"github.com/lexatlas/lexatlas/internal/model"
)

var isoShapeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate re-checks the normalized document against the schema contract.
// A non-empty result means the document must not be persisted.
func Validate(doc *model.NormalizedDocument) []model.ValidationError {
	var errs []model.ValidationError
	add := func(field, msg string) {
		errs = append(errs, model.ValidationError{Field: field, Message: msg})
	}

	if !model.DocTypes[doc.DocType] {
		add("doc_type", "unknown doc_type: "+string(doc.DocType))
	}
	if !model.Branches[doc.Branch] {
		add("branch", "unknown branch: "+string(doc.Branch))
	}
	if doc.Title == "" {
		add("title", "title is empty")
	}
	if doc.ContentText == "" {
		add("content_text", "content_text is empty")
	}
	if doc.SourceHash == "" {
		add("source_hash", "source_hash is empty")
	}
	if doc.DateAdopted != "" && !isoShapeRe.MatchString(doc.DateAdopted) {
		add("date_adopted", "not an ISO date: "+doc.DateAdopted)
	}
	if doc.DateEffective != "" && !isoShapeRe.MatchString(doc.DateEffective) {
		add("date_effective", "not an ISO date: "+doc.DateEffective)
	}
	if doc.SchemaVersion != model.SchemaVersion {
		add("schema_version", "unexpected schema_version")
	}
	if doc.Court != nil && !model.CourtTypes[doc.Court.CourtType] {
		add("court_type", "unknown court_type: "+string(doc.Court.CourtType))
	}
	if doc.Court == nil && doc.DocType.IsCourtType() {
		add("court", "court metadata missing for court document")
	}
	return errs
}
