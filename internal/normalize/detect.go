package normalize

import (
	"regexp"
	"strings"

	"github.com/lexatlas/lexatlas/internal/model"
)

// headerWindow bounds how much of the cleaned text the detectors see.
const headerWindow = 2500

type docTypeDetector struct {
	docType model.DocType
	re      *regexp.Regexp
}

// Court-family detectors run before the legislation ones: a cassation
// ruling quoting the criminal code must not classify as a code.
var courtDetectors = []docTypeDetector{
	{model.DocTypeECHRJudgment, regexp.MustCompile(`(?i)european court of human rights|европейск\w+ суд\w? по правам человека|\bECtHR\b|application no\.?\s*\d+/\d+`)},
	{model.DocTypeConstitutionalCourt, regexp.MustCompile(`(?i)constitutional court|конституционн\w+ суд`)},
	{model.DocTypeCassationRuling, regexp.MustCompile(`(?i)cassation|court of cassation|кассацион\w+`)},
	{model.DocTypeAppealRuling, regexp.MustCompile(`(?i)appellate court|court of appeal|апелляцион\w+`)},
	{model.DocTypeFirstInstanceRuling, regexp.MustCompile(`(?i)first instance|суд\w* первой инстанции`)},
	{model.DocTypeCourtDecision, regexp.MustCompile(`(?i)\b(judgment|ruling|court decision)\b|именем (республики|российской федерации)|решение суда|постановление суда|определение суда`)},
}

var lawDetectors = []docTypeDetector{
	{model.DocTypeTreaty, regexp.MustCompile(`(?i)international treaty|convention\b|международн\w+ договор|конвенци\w+`)},
	{model.DocTypeCode, regexp.MustCompile(`(?i)\bcode\b|кодекс`)},
	{model.DocTypeGovernmentDecree, regexp.MustCompile(`(?i)government decree|постановление правительства`)},
	{model.DocTypePMDecision, regexp.MustCompile(`(?i)prime minister('s)? decision|решение премьер-министра`)},
	{model.DocTypeRegulation, regexp.MustCompile(`(?i)\bregulation\b|положение о|регламент`)},
	{model.DocTypeLaw, regexp.MustCompile(`(?i)\blaw\b|\bact\b|федеральный закон|закон\b`)},
	{model.DocTypeLegalCommentary, regexp.MustCompile(`(?i)commentary|комментари\w+`)},
}

var branchDetectors = []struct {
	branch model.Branch
	re     *regexp.Regexp
}{
	{model.BranchCriminal, regexp.MustCompile(`(?i)criminal|уголовн\w+`)},
	{model.BranchAdministrative, regexp.MustCompile(`(?i)administrative|административн\w+`)},
	{model.BranchCivil, regexp.MustCompile(`(?i)\bcivil\b|гражданск\w+`)},
}

// detectDocType classifies using the file name plus a bounded header
// window of the cleaned text. No signal means model.DocTypeOther.
func detectDocType(fileName, content string) model.DocType {
	window := content
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	haystack := fileName + "\n" + window
	for _, d := range courtDetectors {
		if d.re.MatchString(haystack) {
			return d.docType
		}
	}
	for _, d := range lawDetectors {
		if d.re.MatchString(haystack) {
			return d.docType
		}
	}
	return model.DocTypeOther
}

func detectBranch(docType model.DocType, content string) model.Branch {
	switch docType {
	case model.DocTypeConstitutionalCourt:
		return model.BranchConstitutional
	case model.DocTypeECHRJudgment, model.DocTypeTreaty:
		return model.BranchInternational
	}
	window := content
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	for _, d := range branchDetectors {
		if d.re.MatchString(window) {
			return d.branch
		}
	}
	return model.BranchGeneral
}

func courtTypeFor(docType model.DocType) model.CourtType {
	switch docType {
	case model.DocTypeCassationRuling:
		return model.CourtCassation
	case model.DocTypeAppealRuling:
		return model.CourtAppeal
	case model.DocTypeFirstInstanceRuling:
		return model.CourtFirstInstance
	case model.DocTypeConstitutionalCourt:
		return model.CourtConstitutional
	case model.DocTypeECHRJudgment:
		return model.CourtECHR
	}
	return model.CourtFirstInstance
}

var courtNameRe = regexp.MustCompile(`(?im)^.{0,10}\b((?:[A-ZА-Я][\wа-яё.-]*\s+){0,4}(?:court|суд)(?:\s+[\wа-яё.-]+){0,4})`)

func detectCourtName(content string) string {
	window := content
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if m := courtNameRe.FindStringSubmatch(window); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// outcomeDetectors scan the tail of a court document. Order matters:
// partial satisfaction mentions both words, so it goes first.
var outcomeDetectors = []struct {
	outcome string
	re      *regexp.Regexp
}{
	{"partially_satisfied", regexp.MustCompile(`(?i)partially (granted|satisfied|upheld)|удовлетворить частично|частично удовлетворить`)},
	{"satisfied", regexp.MustCompile(`(?i)\b(granted|satisfied|upheld)\b|удовлетворить|оставить без изменения`)},
	{"denied", regexp.MustCompile(`(?i)\b(denied|dismissed|rejected)\b|отказать|оставить без удовлетворения`)},
	{"reversed", regexp.MustCompile(`(?i)\b(reversed|quashed|annulled)\b|отменить`)},
	{"remanded", regexp.MustCompile(`(?i)\bremanded\b|направить на новое рассмотрение`)},
}

const outcomeTailWindow = 2000

func detectOutcome(content string) string {
	tail := content
	if len(tail) > outcomeTailWindow {
		tail = tail[len(tail)-outcomeTailWindow:]
	}
	for _, d := range outcomeDetectors {
		if d.re.MatchString(tail) {
			return d.outcome
		}
	}
	return ""
}
