package reprog

import (
	"regexp"
	"strings"
)

// CategoryVocabulary lists appropriation categories the extractors recognize
// in title lines, most specific first so alternation never matches a prefix.
var CategoryVocabulary = []string{
	"Operation and Maintenance",
	"Military Personnel",
	"Aircraft Procurement",
	"Missile Procurement",
	"Weapons Procurement",
	"Procurement of Ammunition",
	"Shipbuilding and Conversion",
	"Other Procurement",
	"Research, Development, Test and Evaluation",
	"RDT&E",
	"RDTE",
	"Procurement",
}

// branchAlternation tolerates the OCR's habit of splitting compounds
// ("Defense- Wide", "AIR  FORCE").
const branchAlternation = `ARMY|NAVY|AIR\s+FORCE|MARINE\s+CORPS|SPACE\s+FORCE|COAST\s+GUARD|DEFENSE[\s-]*WIDE`

// Patterns is the immutable registry of compiled field matchers shared by the
// locator and extractors. Build one with DefaultPatterns and inject it; the
// registry is never mutated after construction.
type Patterns struct {
	// Document-level metadata.
	Subject            *regexp.Regexp
	SerialNumber       *regexp.Regexp
	AppropriationTitle *regexp.Regexp
	IncludesTransfer   *regexp.Regexp
	ComponentSerial    *regexp.Regexp

	// Section boundaries.
	SectionAnchor *regexp.Regexp
	BranchMention *regexp.Regexp

	// Financial primitives.
	TitleLine      *regexp.Regexp // "Operation and Maintenance, Army, 25/25 [-657,584]"
	BudgetActivity *regexp.Regexp // "Budget Activity 01: Operating Forces"
	AmountPair     *regexp.Regexp // "+118,600 118,600" on its own line
	AmountQuad     *regexp.Regexp // base / base / amount / revised, one line
	Amount         *regexp.Regexp // any signed 3+ digit token
	AmountLine     *regexp.Regexp // a line containing nothing but amounts
	Year           *regexp.Regexp // 4-digit year token
	FiscalRange    *regexp.Regexp // "25/27"
	PEM            *regexp.Regexp // program element code, 7 digits + letter(s)

	// Narrative.
	ExplanationMarker *regexp.Regexp
	Explanation       *regexp.Regexp // marker through next blank line
	Terminator        *regexp.Regexp // DD 1415 footer, signature block

	// Exporter-only lookups.
	FundingAmount     *regexp.Regexp
	NationalInterest  *regexp.Regexp
	LegalRequirements *regexp.Regexp
	Narrative         *regexp.Regexp
	Description       *regexp.Regexp
	PageBreak         *regexp.Regexp
}

// DefaultPatterns compiles the standard matcher registry.
func DefaultPatterns() *Patterns {
	vocab := make([]string, len(CategoryVocabulary))
	for i, c := range CategoryVocabulary {
		vocab[i] = regexp.QuoteMeta(c)
	}
	categoryAlt := strings.Join(vocab, "|")

	return &Patterns{
		Subject:            regexp.MustCompile(`(?i)(?:Subject|Title)\s*:[^\S\n]*([^\n]+)`),
		SerialNumber:       regexp.MustCompile(`(?i)DoD\s+Serial\s+Number\s*:[^\S\n]*([^\n]*)`),
		AppropriationTitle: regexp.MustCompile(`(?i)Appropriation\s+Title\s*:[^\S\n]*([^\n]+)`),
		IncludesTransfer:   regexp.MustCompile(`(?is)Includes\s+Transfer\s*\?\s*(Yes|No)`),
		ComponentSerial:    regexp.MustCompile(`(?i)Component\s+Serial\s+Number\s*:[^\S\n]*([^\n(]*)`),

		SectionAnchor: regexp.MustCompile(`(?i)\b(` + branchAlternation + `)\s+(INCREASE|DECREASE)S?\b`),
		BranchMention: regexp.MustCompile(`(?i)\b(` + branchAlternation + `)\b`),

		TitleLine: regexp.MustCompile(
			`(?im)^[^\S\n]*(` + categoryAlt + `),\s*([A-Za-z][A-Za-z -]*?),\s*(\d{2})/(\d{2})\b(?:[^\S\n]+([+-]?[\d,]+))?`),
		BudgetActivity: regexp.MustCompile(`(?i)Budget\s+Activity\s*#?\s*(\d{1,2})\s*:?[^\S\n]*([^\n]+)`),
		AmountPair: regexp.MustCompile(
			`(?m)^[^\S\n]*([+-]?(?:\d{1,3}(?:,\d{3})+|\d{3,}))[^\S\n]+((?:\d{1,3}(?:,\d{3})+|\d{3,}))[^\S\n]*$`),
		AmountQuad: regexp.MustCompile(
			`(?m)^[^\S\n]*([+-]?(?:\d{1,3}(?:,\d{3})+|\d{3,}))[^\S\n]+([+-]?(?:\d{1,3}(?:,\d{3})+|\d{3,}))[^\S\n]+([+-]?(?:\d{1,3}(?:,\d{3})+|\d{3,}))[^\S\n]+([+-]?(?:\d{1,3}(?:,\d{3})+|\d{3,}))[^\S\n]*$`),
		Amount:      regexp.MustCompile(`[+-]?\$?(?:\d{1,3}(?:,\d{3})+|\d{3,})`),
		AmountLine:  regexp.MustCompile(`(?m)^[^\S\n]*(?:[+-]?\$?[\d,]+[^\S\n]*)+$`),
		Year:        regexp.MustCompile(`\b20\d{2}\b`),
		FiscalRange: regexp.MustCompile(`\b(\d{2})/(\d{2})\b`),
		PEM:         regexp.MustCompile(`\b(\d{7}[A-Z]{1,2})\b`),

		ExplanationMarker: regexp.MustCompile(`(?i)Explanation\s*:`),
		Explanation:       regexp.MustCompile(`(?is)Explanation\s*:\s*(.+?)(?:\n[^\S\n]*\n|$)`),
		Terminator:        regexp.MustCompile(`(?i)DD\s*1415|pproved[^\S\n]*\(Signature|\(Signature and Date\)`),

		FundingAmount:     regexp.MustCompile(`(?i)(?:transfers?|funding)\s*\$?\s*([\d][\d,.]*)`),
		NationalInterest:  regexp.MustCompile(`(?i)necessary\s+in\s+the\s+national\s+interest`),
		LegalRequirements: regexp.MustCompile(`(?i)meets\s+all\s+administrative\s+and\s+legal\s+requirements`),
		Narrative: regexp.MustCompile(
			`(?is)(?:This reprogramming action provides funding for|This action provides|The action provides)\s*(.+?)(?:This action is determined|This reprogramming action meets|$)`),
		Description: regexp.MustCompile(
			`(?is)(?:This reprogramming action provides funding for|This action provides|The action provides)\s*(.+?)(?:\.|$)`),
		PageBreak: regexp.MustCompile(`(?m)^=== PAGE \d+ ===$`),
	}
}

// matchCategory returns the first vocabulary category found in text, or "".
func matchCategory(text string) string {
	for _, c := range CategoryVocabulary {
		if containsFold(text, c) {
			return c
		}
	}
	return ""
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
