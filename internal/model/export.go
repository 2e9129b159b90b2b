package model

// ExportRecord is the JSONL line consumed by downstream retrieval systems.
type ExportRecord struct {
	ID           string            `json:"id"`
	Jurisdiction string            `json:"jurisdiction"`
	Collection   string            `json:"collection"`
	DocType      DocType           `json:"doc_type"`
	Title        string            `json:"title"`
	Source       ExportSource      `json:"source"`
	Language     string            `json:"language"`
	Chunk        ExportChunk       `json:"chunk"`
	Metadata     map[string]string `json:"metadata"`
}

type ExportSource struct {
	Type     string `json:"type"`
	URI      string `json:"uri,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

type ExportChunk struct {
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Strategy  string    `json:"strategy"`
	Type      ChunkType `json:"type"`
	Text      string    `json:"text"`
	CharStart int       `json:"char_start"`
	CharEnd   int       `json:"char_end"`
	Label     string    `json:"label,omitempty"`
	Locator   *Locator  `json:"locator,omitempty"`

	// LegacyText mirrors the pre-v3 field name still emitted by old
	// producers; the validator accepts either.
	LegacyText string `json:"chunk_text,omitempty"`
}

var ExportCollections = map[string]bool{
	"legislation":   true,
	"case_law":      true,
	"echr":          true,
	"treaties":      true,
	"commentary":    true,
	"uncategorized": true,
}
