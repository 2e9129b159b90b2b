// Package chunker cuts a normalized document's content_text into an
// ordered, hashed chunk sequence. Strategies are a closed table keyed by
// doc type; every strategy emits offset-true spans over content_text and
// the shared post-processing enforces the span cap, merge rules and
// contiguous indexing.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/lexatlas/lexatlas/internal/model"
)

// Version participates in chunk_set_version: bump it whenever a strategy
// or post-processing rule changes observable output.
const Version = "v3"

type Config struct {
	MaxChunkChars    int
	WindowChars      int
	WindowOverlap    int
	TailMergeChars   int
	MinPreambleChars int
}

func (c *Config) applyDefaults() {
	if c.MaxChunkChars == 0 {
		c.MaxChunkChars = 8000
	}
	if c.WindowChars == 0 {
		c.WindowChars = 3000
	}
	if c.WindowOverlap == 0 {
		c.WindowOverlap = 200
	}
	if c.TailMergeChars == 0 {
		c.TailMergeChars = 400
	}
	if c.MinPreambleChars == 0 {
		c.MinPreambleChars = 80
	}
}

type Doc struct {
	DocType     model.DocType
	ContentText string
	Title       string
}

type Result struct {
	Chunks     []model.Chunk
	Strategy   model.ChunkStrategy
	CaseNumber string
}

type Chunker struct {
	cfg Config
}

func New(cfg Config) *Chunker {
	cfg.applyDefaults()
	return &Chunker{cfg: cfg}
}

type strategyFunc func(c *Chunker, doc Doc) []model.Chunk

// strategyTable is the closed dispatch table; doc types absent here fall
// back to the fixed-window strategy.
var strategyTable = map[model.DocType]struct {
	name model.ChunkStrategy
	fn   strategyFunc
}{
	model.DocTypeLaw:                 {model.StrategyLegislation, (*Chunker).chunkLegislation},
	model.DocTypeCode:                {model.StrategyLegislation, (*Chunker).chunkLegislation},
	model.DocTypeRegulation:          {model.StrategyLegislation, (*Chunker).chunkLegislation},
	model.DocTypeGovernmentDecree:    {model.StrategyLegislation, (*Chunker).chunkLegislation},
	model.DocTypePMDecision:          {model.StrategyLegislation, (*Chunker).chunkLegislation},
	model.DocTypeCourtDecision:       {model.StrategyCourt, (*Chunker).chunkCourtDecision},
	model.DocTypeCassationRuling:     {model.StrategyCourt, (*Chunker).chunkCourtDecision},
	model.DocTypeAppealRuling:        {model.StrategyCourt, (*Chunker).chunkCourtDecision},
	model.DocTypeFirstInstanceRuling: {model.StrategyCourt, (*Chunker).chunkCourtDecision},
	model.DocTypeConstitutionalCourt: {model.StrategyCourt, (*Chunker).chunkCourtDecision},
	model.DocTypeECHRJudgment:        {model.StrategyECHR, (*Chunker).chunkECHR},
	model.DocTypeTreaty:              {model.StrategyTreaty, (*Chunker).chunkTreaty},
}

// Chunk runs the strategy for doc.DocType and applies the uniform
// post-processing. Deterministic: identical input yields identical
// chunks, offsets and hashes.
func (c *Chunker) Chunk(doc Doc) Result {
	if doc.ContentText == "" {
		return Result{Strategy: model.StrategyFixedWindow}
	}

	strategy := model.StrategyFixedWindow
	var chunks []model.Chunk
	if entry, ok := strategyTable[doc.DocType]; ok {
		chunks = entry.fn(c, doc)
		strategy = entry.name
	}
	if len(chunks) == 0 {
		chunks = c.chunkFixedWindow(doc)
		strategy = model.StrategyFixedWindow
	}

	chunks = c.splitOversize(doc.ContentText, chunks)
	chunks = c.mergeUndersizedTails(doc.ContentText, chunks)
	finalize(doc, chunks)

	res := Result{Chunks: chunks, Strategy: strategy}
	if doc.DocType.IsCourtType() {
		res.CaseNumber = extractCaseNumber(doc.ContentText)
	}
	return res
}

// ChunkSetVersion identifies a chunk set by content and chunker revision;
// an unchanged version makes re-chunking a no-op.
func ChunkSetVersion(contentText string) string {
	sum := sha256.Sum256([]byte(contentText + "|" + Version))
	return hex.EncodeToString(sum[:])
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
