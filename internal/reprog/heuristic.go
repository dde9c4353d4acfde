package reprog

import (
	"strings"
)

// fallbackExplanationLimit bounds the span-prefix explanation used when no
// "Explanation:" marker exists in a section.
const fallbackExplanationLimit = 240

// HeuristicExtractor infers a record from loose signals when the strict
// templates don't match. It never fails: qualitative fields are backfilled
// from the branch profile, but numeric values are only ever taken from the
// span text. An amount the text doesn't contain stays empty.
type HeuristicExtractor struct {
	pats     *Patterns
	profiles ProfileTable
}

// NewHeuristicExtractor builds a heuristic extractor over the given
// registries.
func NewHeuristicExtractor(pats *Patterns, profiles ProfileTable) *HeuristicExtractor {
	return &HeuristicExtractor{pats: pats, profiles: profiles}
}

// Extract always returns a record for the section.
func (h *HeuristicExtractor) Extract(sec Section) Record {
	branch := sec.Branch

	// A fallback whole-document span carries no anchor of its own; a single
	// unambiguous branch mention in the text is a better tag than the
	// synthetic default.
	if sec.Fallback {
		if mentions := NewLocator(h.pats).Mentions(sec.Text); len(mentions) == 1 {
			branch = mentions[0]
		}
	}

	profile := h.profiles.Lookup(branch)

	rec := Record{
		Branch:      string(branch),
		BudgetTitle: profile.BudgetTitle,
	}

	if cat := matchCategory(sec.Text); cat != "" {
		rec.AppropriationCategory = cat
	} else {
		rec.AppropriationCategory = profile.Category
	}

	// First 3+ digit numeric token is the reprogramming amount; the span
	// direction decides the sign. No token means no amount.
	body := h.amountSearchText(sec)
	if tok := h.pats.Amount.FindString(body); tok != "" {
		rec.ReprogrammingAmount = ForceSign(CanonicalAmount(tok), sec.Direction)
	}

	if years := h.pats.Year.FindAllString(sec.Text, -1); len(years) > 0 {
		rec.FiscalYearStart = years[0]
		rec.FiscalYearEnd = years[len(years)-1]
	} else if fy := h.pats.FiscalRange.FindStringSubmatch(sec.Text); fy != nil {
		rec.FiscalYearStart = NormalizeFiscalYear(fy[1])
		rec.FiscalYearEnd = NormalizeFiscalYear(fy[2])
	}

	if ba := h.pats.BudgetActivity.FindStringSubmatch(sec.Text); ba != nil {
		rec.BudgetActivityNumber = padActivityNumber(ba[1])
		rec.BudgetActivityTitle = strings.TrimSpace(ba[2])
	} else {
		rec.BudgetActivityNumber = profile.BudgetActivityNumber
		rec.BudgetActivityTitle = profile.BudgetActivityTitle
	}

	if pem := h.pats.PEM.FindString(sec.Text); pem != "" {
		rec.PEM = pem
	}

	rec.Explanation = h.explanation(sec.Text)

	return rec
}

// amountSearchText returns the region scanned for the amount token. Year
// tokens at the start of a fallback span ("FY 2025 REPROGRAMMING...") would
// otherwise win, so bare years are skipped by searching from the first
// non-year amount.
func (h *HeuristicExtractor) amountSearchText(sec Section) string {
	text := sec.Text
	for {
		loc := h.pats.Amount.FindStringIndex(text)
		if loc == nil {
			return text
		}
		tok := text[loc[0]:loc[1]]
		if !h.pats.Year.MatchString(tok) {
			return text[loc[0]:]
		}
		text = text[loc[1]:]
	}
}

func (h *HeuristicExtractor) explanation(text string) string {
	if m := h.pats.Explanation.FindStringSubmatch(text); m != nil {
		exp := m[1]
		if term := h.pats.Terminator.FindStringIndex(exp); term != nil {
			exp = exp[:term[0]]
		}
		return CollapseWhitespace(exp)
	}

	// No marker: a bounded prefix of the span keeps some provenance in the
	// record without pretending to be a real explanation paragraph.
	collapsed := CollapseWhitespace(text)
	if len(collapsed) > fallbackExplanationLimit {
		collapsed = collapsed[:fallbackExplanationLimit]
		if i := strings.LastIndexByte(collapsed, ' '); i > 0 {
			collapsed = collapsed[:i]
		}
	}
	return collapsed
}
