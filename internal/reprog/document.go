package reprog

import (
	"strconv"
	"strings"
)

// DocumentMeta holds the header fields of a reprogramming action. Fields the
// text never states stay empty.
type DocumentMeta struct {
	Title              string `json:"title,omitempty"`
	SerialNumber       string `json:"serial_number,omitempty"`
	AppropriationTitle string `json:"appropriation_title,omitempty"`
	IncludesTransfer   string `json:"includes_transfer,omitempty"`
	ComponentSerial    string `json:"component_serial,omitempty"`
}

// ProgramDetails captures the narrative and certification phrases a document
// summary reports alongside the records.
type ProgramDetails struct {
	Narrative              string `json:"narrative,omitempty"`
	Description            string `json:"description,omitempty"`
	NationalInterest       bool   `json:"national_interest"`
	MeetsLegalRequirements bool   `json:"meets_legal_requirements"`
}

// FinancialItem is a loose dollar figure found in prose ("transfers
// $25,000,000"), kept separately from the structured records.
type FinancialItem struct {
	Item    string  `json:"item"`
	Amount  float64 `json:"amount"`
	Context string  `json:"context,omitempty"`
}

// ExtractMeta scans the whole document for header fields.
func ExtractMeta(pats *Patterns, text string) DocumentMeta {
	meta := DocumentMeta{}
	if m := pats.Subject.FindStringSubmatch(text); m != nil {
		meta.Title = CollapseWhitespace(m[1])
	}
	if m := pats.SerialNumber.FindStringSubmatch(text); m != nil {
		meta.SerialNumber = CollapseWhitespace(m[1])
	}
	if m := pats.AppropriationTitle.FindStringSubmatch(text); m != nil {
		meta.AppropriationTitle = CollapseWhitespace(m[1])
	}
	if m := pats.IncludesTransfer.FindStringSubmatch(text); m != nil {
		if strings.EqualFold(m[1], "yes") {
			meta.IncludesTransfer = "Yes"
		} else {
			meta.IncludesTransfer = "No"
		}
	}
	if m := pats.ComponentSerial.FindStringSubmatch(text); m != nil {
		meta.ComponentSerial = CollapseWhitespace(m[1])
	}
	return meta
}

// ExtractProgramDetails pulls the narrative block and certification flags.
func ExtractProgramDetails(pats *Patterns, text string) ProgramDetails {
	d := ProgramDetails{
		NationalInterest:       pats.NationalInterest.MatchString(text),
		MeetsLegalRequirements: pats.LegalRequirements.MatchString(text),
	}
	if m := pats.Narrative.FindStringSubmatch(text); m != nil {
		d.Narrative = CollapseWhitespace(m[1])
	}
	if m := pats.Description.FindStringSubmatch(text); m != nil {
		d.Description = CollapseWhitespace(m[1])
	}
	return d
}

// ExtractFinancialItems returns every funding figure stated in prose along
// with a short context window. Tokens that fail numeric parsing are skipped.
func ExtractFinancialItems(pats *Patterns, text string) []FinancialItem {
	var items []FinancialItem
	for _, loc := range pats.FundingAmount.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		amt, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSuffix(raw, "."), ",", ""), 64)
		if err != nil {
			continue
		}
		items = append(items, FinancialItem{
			Item:    CollapseWhitespace(text[loc[0]:loc[1]]),
			Amount:  amt,
			Context: contextWindow(text, loc[0], loc[1]),
		})
	}
	return items
}

// contextWindow returns up to 60 characters either side of [start,end),
// clipped to the surrounding lines.
func contextWindow(text string, start, end int) string {
	lo := start - 60
	if lo < 0 {
		lo = 0
	}
	hi := end + 60
	if hi > len(text) {
		hi = len(text)
	}
	if i := strings.LastIndexByte(text[lo:start], '\n'); i >= 0 {
		lo += i + 1
	}
	if i := strings.IndexByte(text[end:hi], '\n'); i >= 0 {
		hi = end + i
	}
	return CollapseWhitespace(text[lo:hi])
}
