package reprog

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// RawDocument is the immutable input to one extraction call: the OCR text of
// a reprogramming action plus whatever page metadata the acquisition layer
// supplied. Zero counts are recomputed from the text.
type RawDocument struct {
	Text           string `json:"text"`
	PagesProcessed int    `json:"pages_processed,omitempty"`
	CharacterCount int    `json:"character_count,omitempty"`
	WordCount      int    `json:"word_count,omitempty"`
}

// Result is everything one extraction call produces: the canonical records
// plus the best-effort document views the exporter renders.
type Result struct {
	Records        []Record        `json:"records"`
	Meta           DocumentMeta    `json:"metadata"`
	Details        ProgramDetails  `json:"program_details"`
	Financial      []FinancialItem `json:"financial_items"`
	Source         string          `json:"source_file"`
	Text           string          `json:"-"`
	PagesProcessed int             `json:"pages_processed"`
	CharacterCount int             `json:"character_count"`
	WordCount      int             `json:"word_count"`
	ExtractedAt    time.Time       `json:"extracted_at"`
}

// attempt pairs a section with the records an extractor produced for it.
// Attempts only live inside Extract; the assembler keeps the best one per
// span and discards the rest.
type attempt struct {
	section    Section
	records    []Record
	confidence Confidence
}

// Engine wires the locator and both extractors over shared immutable
// registries. Construct once, use from any number of goroutines.
type Engine struct {
	pats           *Patterns
	profiles       ProfileTable
	locator        *Locator
	strict         *StrictExtractor
	heuristic      *HeuristicExtractor
	defaultFYStart string
	defaultFYEnd   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithTemplates overrides the strict extractor's template table.
func WithTemplates(templates []Template) Option {
	return func(e *Engine) {
		e.strict = NewStrictExtractor(e.pats, templates)
	}
}

// WithProfiles overrides the branch profile table.
func WithProfiles(profiles ProfileTable) Option {
	return func(e *Engine) {
		e.profiles = profiles
		e.heuristic = NewHeuristicExtractor(e.pats, profiles)
	}
}

// WithDefaultFiscalYears sets the engine-wide fallback year range applied
// when neither the section nor the document carries a year signal.
func WithDefaultFiscalYears(start, end string) Option {
	return func(e *Engine) {
		e.defaultFYStart = NormalizeFiscalYear(start)
		e.defaultFYEnd = NormalizeFiscalYear(end)
	}
}

// NewEngine builds an extraction engine with default registries.
func NewEngine(opts ...Option) *Engine {
	pats := DefaultPatterns()
	profiles := DefaultProfiles()
	e := &Engine{
		pats:           pats,
		profiles:       profiles,
		locator:        NewLocator(pats),
		strict:         NewStrictExtractor(pats, DefaultTemplates()),
		heuristic:      NewHeuristicExtractor(pats, profiles),
		defaultFYStart: "2025",
		defaultFYEnd:   "2025",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full pipeline on one document. sourceFile is stamped into
// every record's file column; it is supplied by the caller, never inferred
// from text. Empty or whitespace-only text yields an empty result, never an
// error.
func (e *Engine) Extract(doc RawDocument, sourceFile string) Result {
	res := Result{
		Source:         sourceFile,
		Text:           doc.Text,
		PagesProcessed: doc.PagesProcessed,
		CharacterCount: doc.CharacterCount,
		WordCount:      doc.WordCount,
		ExtractedAt:    time.Now().UTC(),
	}
	if res.CharacterCount == 0 {
		res.CharacterCount = len(doc.Text)
	}
	if res.WordCount == 0 {
		res.WordCount = len(strings.Fields(doc.Text))
	}

	if strings.TrimSpace(doc.Text) == "" {
		return res
	}

	res.Meta = ExtractMeta(e.pats, doc.Text)
	res.Details = ExtractProgramDetails(e.pats, doc.Text)
	res.Financial = ExtractFinancialItems(e.pats, doc.Text)

	sections := e.locator.Locate(doc.Text)
	if len(sections) == 0 {
		// Unrecognized headers but clearly a reprogramming action: attempt
		// one whole-document span so some record is always produced.
		if !containsFold(doc.Text, "reprogramming") {
			return res
		}
		sections = []Section{{
			Branch:    DefenseWide,
			Direction: Increase,
			Start:     0,
			End:       len(doc.Text),
			Text:      doc.Text,
			Fallback:  true,
		}}
	}

	attempts := make([]attempt, 0, len(sections))
	for _, sec := range sections {
		attempts = append(attempts, e.extractSection(sec))
	}
	attempts = dedupAttempts(attempts)

	docFYStart, docFYEnd := e.documentYears(doc.Text)

	for _, att := range attempts {
		for _, rec := range att.records {
			rec.File = sourceFile
			if rec.FiscalYearStart == "" || rec.FiscalYearEnd == "" {
				start, end := docFYStart, docFYEnd
				if start == "" {
					start, end = e.defaultFYStart, e.defaultFYEnd
				}
				if rec.FiscalYearStart == "" {
					rec.FiscalYearStart = start
				}
				if rec.FiscalYearEnd == "" {
					rec.FiscalYearEnd = end
				}
			}
			// Normative pass: the sign invariant holds even if an extractor
			// slipped a raw token through.
			rec.ReprogrammingAmount = ForceSign(rec.ReprogrammingAmount, att.section.Direction)
			res.Records = append(res.Records, rec)
		}
	}

	return res
}

// extractSection runs strict-then-heuristic for one span. A panic inside
// either extractor (a pathological OCR artifact tripping a pattern) is
// contained here so one bad span can't take down the document.
func (e *Engine) extractSection(sec Section) (att attempt) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("section extraction recovered",
				zap.String("branch", string(sec.Branch)),
				zap.String("direction", sec.Direction.String()),
				zap.Any("panic", r))
			att = attempt{
				section:    sec,
				records:    []Record{{Branch: string(sec.Branch)}},
				confidence: ConfidenceNone,
			}
		}
	}()

	if records := e.strict.TryExtract(sec); records != nil {
		return attempt{section: sec, records: records, confidence: ConfidenceStrict}
	}
	return attempt{
		section:    sec,
		records:    []Record{e.heuristic.Extract(sec)},
		confidence: ConfidenceHeuristic,
	}
}

// dedupAttempts drops the weaker of two attempts that resolve to overlapping
// spans of the same branch and direction, preferring strict over heuristic
// and earlier over later. Output keeps document order.
func dedupAttempts(attempts []attempt) []attempt {
	kept := make([]attempt, 0, len(attempts))
	for _, a := range attempts {
		replaced := false
		dropped := false
		for i, k := range kept {
			if a.section.Branch != k.section.Branch || a.section.Direction != k.section.Direction {
				continue
			}
			if a.section.Start >= k.section.End || k.section.Start >= a.section.End {
				continue
			}
			if a.confidence > k.confidence {
				kept[i] = a
				replaced = true
			} else {
				dropped = true
			}
			break
		}
		if !replaced && !dropped {
			kept = append(kept, a)
		}
	}
	return kept
}

// documentYears returns the first and last 4-digit year tokens anywhere in
// the text, or empty strings when the document carries no year signal.
func (e *Engine) documentYears(text string) (string, string) {
	years := e.pats.Year.FindAllString(text, -1)
	if len(years) == 0 {
		return "", ""
	}
	return years[0], years[len(years)-1]
}
