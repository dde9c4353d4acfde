// Package reprog extracts structured appropriation records from the OCR text
// of DoD reprogramming-action documents (the DD 1415 family). The engine is a
// pure transformation: raw text in, ordered records out. Pattern and profile
// registries are immutable and shared, so a single Engine is safe for
// concurrent use across documents.
package reprog

import (
	"regexp"
	"strings"
)

// Confidence ranks how an extraction attempt produced its records.
type Confidence int

const (
	// ConfidenceNone marks a span where no extractor populated anything
	// beyond defaults (a recognized header with unusable body).
	ConfidenceNone Confidence = iota
	// ConfidenceHeuristic marks records inferred from loose signals.
	ConfidenceHeuristic
	// ConfidenceStrict marks records pulled by an anchored template match.
	ConfidenceStrict
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceStrict:
		return "strict"
	case ConfidenceHeuristic:
		return "heuristic"
	default:
		return "none"
	}
}

// Record is one appropriation line item in the canonical 16-column schema.
// Every field is always present; absent values are empty strings. Amounts are
// canonical digit strings ("-" prefixed for decreases, separators stripped);
// thousands separators are added only at export.
type Record struct {
	AppropriationCategory    string `json:"appropriation_category"`
	AppropriationCode        string `json:"appropriation_code"`
	AppropriationActivity    string `json:"appropriation_activity"`
	Branch                   string `json:"branch"`
	FiscalYearStart          string `json:"fiscal_year_start"`
	FiscalYearEnd            string `json:"fiscal_year_end"`
	BudgetActivityNumber     string `json:"budget_activity_number"`
	BudgetActivityTitle      string `json:"budget_activity_title"`
	PEM                      string `json:"pem"`
	BudgetTitle              string `json:"budget_title"`
	ProgramBaseCongressional string `json:"program_base_congressional"`
	ProgramBaseDoD           string `json:"program_base_dod"`
	ReprogrammingAmount      string `json:"reprogramming_amount"`
	RevisedProgramTotal      string `json:"revised_program_total"`
	Explanation              string `json:"explanation"`
	File                     string `json:"file"`
}

// Header returns the canonical column names in schema order.
func Header() []string {
	return []string{
		"appropriation_category",
		"appropriation_code",
		"appropriation_activity",
		"branch",
		"fiscal_year_start",
		"fiscal_year_end",
		"budget_activity_number",
		"budget_activity_title",
		"pem",
		"budget_title",
		"program_base_congressional",
		"program_base_dod",
		"reprogramming_amount",
		"revised_program_total",
		"explanation",
		"file",
	}
}

// Fields returns the record values in the same order as Header.
func (r Record) Fields() []string {
	return []string{
		r.AppropriationCategory,
		r.AppropriationCode,
		r.AppropriationActivity,
		r.Branch,
		r.FiscalYearStart,
		r.FiscalYearEnd,
		r.BudgetActivityNumber,
		r.BudgetActivityTitle,
		r.PEM,
		r.BudgetTitle,
		r.ProgramBaseCongressional,
		r.ProgramBaseDoD,
		r.ReprogrammingAmount,
		r.RevisedProgramTotal,
		r.Explanation,
		r.File,
	}
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonAmountChar = regexp.MustCompile(`[^0-9-]`)
)

// CanonicalAmount strips currency symbols, plus signs, separators, and
// whitespace from an OCR amount token, keeping only digits and a leading
// minus. Returns "" when no digits remain.
func CanonicalAmount(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	neg := strings.HasPrefix(raw, "-")
	cleaned := nonAmountChar.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	if cleaned == "" {
		return ""
	}
	if neg {
		return "-" + cleaned
	}
	return cleaned
}

// ForceSign applies a span direction to a canonical amount: decreases are
// negative regardless of whether the source carried an explicit minus,
// increases never are. Empty amounts stay empty.
func ForceSign(amount string, d Direction) string {
	if amount == "" {
		return ""
	}
	digits := strings.TrimPrefix(amount, "-")
	if d == Decrease {
		return "-" + digits
	}
	return digits
}

// CollapseWhitespace folds runs of whitespace and newlines into single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// NormalizeFiscalYear expands two-digit fiscal years ("25") to four digits
// ("2025"). Four-digit years pass through; anything else is returned as-is.
func NormalizeFiscalYear(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9' {
		return "20" + s
	}
	return s
}
