package model

const SchemaVersion = 3

type DocType string

const (
	DocTypeLaw                 DocType = "law"
	DocTypeCode                DocType = "code"
	DocTypeCourtDecision       DocType = "court_decision"
	DocTypeCassationRuling     DocType = "cassation_ruling"
	DocTypeAppealRuling        DocType = "appeal_ruling"
	DocTypeFirstInstanceRuling DocType = "first_instance_ruling"
	DocTypeConstitutionalCourt DocType = "constitutional_court"
	DocTypeGovernmentDecree    DocType = "government_decree"
	DocTypePMDecision          DocType = "pm_decision"
	DocTypeRegulation          DocType = "regulation"
	DocTypeTreaty              DocType = "international_treaty"
	DocTypeECHRJudgment        DocType = "echr_judgment"
	DocTypeLegalCommentary     DocType = "legal_commentary"
	DocTypeOther               DocType = "other"
)

var DocTypes = map[DocType]bool{
	DocTypeLaw:                 true,
	DocTypeCode:                true,
	DocTypeCourtDecision:       true,
	DocTypeCassationRuling:     true,
	DocTypeAppealRuling:        true,
	DocTypeFirstInstanceRuling: true,
	DocTypeConstitutionalCourt: true,
	DocTypeGovernmentDecree:    true,
	DocTypePMDecision:          true,
	DocTypeRegulation:          true,
	DocTypeTreaty:              true,
	DocTypeECHRJudgment:        true,
	DocTypeLegalCommentary:     true,
	DocTypeOther:               true,
}

// IsCourtType reports whether the document carries court metadata.
func (t DocType) IsCourtType() bool {
	switch t {
	case DocTypeCourtDecision, DocTypeCassationRuling, DocTypeAppealRuling,
		DocTypeFirstInstanceRuling, DocTypeConstitutionalCourt, DocTypeECHRJudgment:
		return true
	}
	return false
}

type Branch string

const (
	BranchCriminal       Branch = "criminal"
	BranchCivil          Branch = "civil"
	BranchAdministrative Branch = "administrative"
	BranchConstitutional Branch = "constitutional"
	BranchInternational  Branch = "international"
	BranchGeneral        Branch = "general"
)

var Branches = map[Branch]bool{
	BranchCriminal:       true,
	BranchCivil:          true,
	BranchAdministrative: true,
	BranchConstitutional: true,
	BranchInternational:  true,
	BranchGeneral:        true,
}

type CourtType string

const (
	CourtFirstInstance  CourtType = "first_instance"
	CourtAppeal         CourtType = "appeal"
	CourtCassation      CourtType = "cassation"
	CourtConstitutional CourtType = "constitutional"
	CourtECHR           CourtType = "echr"
)

var CourtTypes = map[CourtType]bool{
	CourtFirstInstance:  true,
	CourtAppeal:         true,
	CourtCassation:      true,
	CourtConstitutional: true,
	CourtECHR:           true,
}

type CourtMeta struct {
	CourtType  CourtType `json:"court_type,omitempty"`
	CourtName  string    `json:"court_name,omitempty"`
	CaseNumber string    `json:"case_number,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
}

// NormalizedDocument is the canonical record produced by the normalizer.
// ContentText is the single source of truth the chunker consumes; every
// chunk offset is relative to it.
type NormalizedDocument struct {
	ID             string     `json:"id"`
	DocType        DocType    `json:"doc_type"`
	Jurisdiction   string     `json:"jurisdiction"`
	Branch         Branch     `json:"branch"`
	Title          string     `json:"title"`
	ContentText    string     `json:"content_text"`
	DocumentNumber string     `json:"document_number,omitempty"`
	DateAdopted    string     `json:"date_adopted,omitempty"`
	DateEffective  string     `json:"date_effective,omitempty"`
	SourceURL      string     `json:"source_url,omitempty"`
	SourceName     string     `json:"source_name,omitempty"`
	FileName       string     `json:"file_name,omitempty"`
	Court          *CourtMeta `json:"court,omitempty"`
	SourceHash     string     `json:"source_hash"`
	PipelineID     string     `json:"pipeline_id"`
	IngestedAt     int64      `json:"ingested_at"`
	SchemaVersion  int        `json:"schema_version"`

	// ChunkStrategy records which chunking strategy produced the active
	// chunk set. Set at ingestion and refreshed on every re-chunk.
	ChunkStrategy string `json:"chunk_strategy,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
