package model

type ChunkType string

const (
	ChunkHeader              ChunkType = "header"
	ChunkPreamble            ChunkType = "preamble"
	ChunkArticle             ChunkType = "article"
	ChunkTreatyArticle       ChunkType = "treaty_article"
	ChunkFacts               ChunkType = "facts"
	ChunkReasoning           ChunkType = "reasoning"
	ChunkOperative           ChunkType = "operative"
	ChunkResolution          ChunkType = "resolution"
	ChunkDissent             ChunkType = "dissent"
	ChunkProceduralHistory   ChunkType = "procedural_history"
	ChunkAppellantArguments  ChunkType = "appellant_arguments"
	ChunkRespondentArguments ChunkType = "respondent_arguments"
	ChunkNormInterpretation  ChunkType = "norm_interpretation"
	ChunkProcedure           ChunkType = "procedure"
	ChunkLaw                 ChunkType = "law"
	ChunkAssessment          ChunkType = "assessment"
	ChunkJustSatisfaction    ChunkType = "just_satisfaction"
	ChunkConclusion          ChunkType = "conclusion"
	ChunkTable               ChunkType = "table"
	ChunkReferenceList       ChunkType = "reference_list"
	ChunkFullText            ChunkType = "full_text"
	ChunkOther               ChunkType = "other"
)

var ChunkTypes = map[ChunkType]bool{
	ChunkHeader: true, ChunkPreamble: true, ChunkArticle: true,
	ChunkTreatyArticle: true, ChunkFacts: true, ChunkReasoning: true,
	ChunkOperative: true, ChunkResolution: true, ChunkDissent: true,
	ChunkProceduralHistory: true, ChunkAppellantArguments: true,
	ChunkRespondentArguments: true, ChunkNormInterpretation: true,
	ChunkProcedure: true, ChunkLaw: true, ChunkAssessment: true,
	ChunkJustSatisfaction: true, ChunkConclusion: true, ChunkTable: true,
	ChunkReferenceList: true, ChunkFullText: true, ChunkOther: true,
}

// Locator is the structured position of a chunk inside its document.
type Locator struct {
	Article      string `json:"article,omitempty"`
	Part         string `json:"part,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
}

type ChunkMeta struct {
	DocumentType string `json:"document_type,omitempty"`
	CourtLevel   string `json:"court_level,omitempty"`
	CaseNumber   string `json:"case_number,omitempty"`
	SectionType  string `json:"section_type,omitempty"`
}

// Chunk invariants: ChunkText == ContentText[CharStart:CharEnd],
// CharEnd > CharStart, span <= the configured cap, indices contiguous
// from 0 in document order.
type Chunk struct {
	DocumentID     string     `json:"document_id,omitempty"`
	ChunkIndex     int        `json:"chunk_index"`
	ChunkType      ChunkType  `json:"chunk_type"`
	ChunkText      string     `json:"chunk_text"`
	CharStart      int        `json:"char_start"`
	CharEnd        int        `json:"char_end"`
	Label          string     `json:"label,omitempty"`
	Locator        *Locator   `json:"locator,omitempty"`
	ChunkHash      string     `json:"chunk_hash"`
	ChunkerVersion string     `json:"chunker_version"`
	Metadata       *ChunkMeta `json:"metadata,omitempty"`

	// ParentKey is a structural-identity key (article number, section
	// type) gating undersized-tail merges. Never derived from free-text
	// titles. Not persisted.
	ParentKey string `json:"-"`
}

func (c *Chunk) Span() int {
	return c.CharEnd - c.CharStart
}

type ChunkStrategy string

const (
	StrategyLegislation ChunkStrategy = "legislation_article"
	StrategyCourt       ChunkStrategy = "court_section"
	StrategyECHR        ChunkStrategy = "echr_section"
	StrategyTreaty      ChunkStrategy = "treaty_article"
	StrategyFixedWindow ChunkStrategy = "fixed_window"
)
