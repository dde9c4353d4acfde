package reprog

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Template describes the expected shape of one branch's section: which
// appropriation categories its title line may carry and whether named
// sub-program blocks (a program line followed by its own amount pair and
// explanation) are expected. The strict extractor is branch-agnostic; all
// per-branch variation lives in this table.
type Template struct {
	Branch      Branch   `yaml:"branch"`
	Vocabulary  []string `yaml:"vocabulary"`
	SubPrograms bool     `yaml:"sub_programs"`
}

func (t Template) accepts(category string) bool {
	if len(t.Vocabulary) == 0 {
		return true
	}
	for _, v := range t.Vocabulary {
		if strings.EqualFold(v, category) {
			return true
		}
	}
	return false
}

// DefaultTemplates returns the built-in per-branch template table.
func DefaultTemplates() []Template {
	omAndProcurement := []string{
		"Operation and Maintenance",
		"Military Personnel",
		"Procurement",
		"Other Procurement",
		"Research, Development, Test and Evaluation",
		"RDT&E",
		"RDTE",
	}
	return []Template{
		{Branch: Army, Vocabulary: append([]string{"Aircraft Procurement", "Missile Procurement", "Procurement of Ammunition"}, omAndProcurement...)},
		{Branch: Navy, Vocabulary: append([]string{"Weapons Procurement", "Aircraft Procurement", "Shipbuilding and Conversion", "Procurement of Ammunition"}, omAndProcurement...), SubPrograms: true},
		{Branch: AirForce, Vocabulary: append([]string{"Missile Procurement", "Aircraft Procurement", "Procurement of Ammunition"}, omAndProcurement...), SubPrograms: true},
		{Branch: MarineCorps, Vocabulary: omAndProcurement},
		{Branch: SpaceForce, Vocabulary: append([]string{"Missile Procurement"}, omAndProcurement...)},
		{Branch: CoastGuard, Vocabulary: omAndProcurement},
		{Branch: DefenseWide, Vocabulary: omAndProcurement, SubPrograms: true},
	}
}

// LoadTemplates reads a template table overlay from a YAML file. Branches not
// present in the file keep their built-in templates.
func LoadTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reprog: read templates %s", path)
	}

	var wrapper struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "reprog: parse templates")
	}

	merged := DefaultTemplates()
	byBranch := make(map[Branch]int, len(merged))
	for i, t := range merged {
		byBranch[t.Branch] = i
	}
	for _, t := range wrapper.Templates {
		if i, ok := byBranch[t.Branch]; ok {
			merged[i] = t
		} else {
			merged = append(merged, t)
		}
	}
	return merged, nil
}

// StrictExtractor applies anchored, ordered template matching to a section.
// All capture groups must land for an attempt to succeed; it never emits a
// partially filled record, so a failed match can't miscompute amounts from
// the wrong line.
type StrictExtractor struct {
	pats      *Patterns
	templates map[Branch]Template
}

// NewStrictExtractor builds a strict extractor over the given registries.
func NewStrictExtractor(pats *Patterns, templates []Template) *StrictExtractor {
	byBranch := make(map[Branch]Template, len(templates))
	for _, t := range templates {
		byBranch[t.Branch] = t
	}
	return &StrictExtractor{pats: pats, templates: byBranch}
}

// subProgram is one amount-bearing block inside a section: an optional
// program title, its amount/total pair (or the four-amount base line of
// decrease sections), and its explanation paragraph.
type subProgram struct {
	title       string
	baseCong    string
	baseDoD     string
	amount      string
	total       string
	explanation string
}

// TryExtract attempts a full template match against the section. Returns nil
// when any required group is missing; on success returns one record per
// sub-program block, in document order.
func (s *StrictExtractor) TryExtract(sec Section) []Record {
	tpl, ok := s.templates[sec.Branch]
	if !ok {
		return nil
	}

	tm := s.pats.TitleLine.FindStringSubmatchIndex(sec.Text)
	if tm == nil {
		return nil
	}
	category := sec.Text[tm[2]:tm[3]]
	branchRaw := sec.Text[tm[4]:tm[5]]
	fyStart := sec.Text[tm[6]:tm[7]]
	fyEnd := sec.Text[tm[8]:tm[9]]

	if !tpl.accepts(category) {
		return nil
	}
	// The title line names the branch; a recognizable token that contradicts
	// the section anchor means the template matched the wrong line.
	if b := CanonicalBranch(branchRaw); b != "" && b != sec.Branch {
		return nil
	}

	bm := s.pats.BudgetActivity.FindStringSubmatchIndex(sec.Text[tm[1]:])
	if bm == nil {
		return nil
	}
	baNumber := padActivityNumber(sec.Text[tm[1]:][bm[2]:bm[3]])
	baTitle := strings.TrimSpace(sec.Text[tm[1]:][bm[4]:bm[5]])

	body := sec.Text[tm[1]:][bm[1]:]
	blocks := s.splitBlocks(body)
	if blocks == nil {
		return nil
	}

	records := make([]Record, 0, len(blocks))
	for _, b := range blocks {
		rec := Record{
			AppropriationCategory:    category,
			Branch:                   string(sec.Branch),
			FiscalYearStart:          NormalizeFiscalYear(fyStart),
			FiscalYearEnd:            NormalizeFiscalYear(fyEnd),
			BudgetActivityNumber:     baNumber,
			BudgetActivityTitle:      baTitle,
			BudgetTitle:              b.title,
			ProgramBaseCongressional: CanonicalAmount(b.baseCong),
			ProgramBaseDoD:           CanonicalAmount(b.baseDoD),
			ReprogrammingAmount:      ForceSign(CanonicalAmount(b.amount), sec.Direction),
			RevisedProgramTotal:      CanonicalAmount(b.total),
			Explanation:              b.explanation,
		}
		if pem := s.pats.PEM.FindString(sec.Text); pem != "" {
			rec.PEM = pem
		}
		records = append(records, rec)
	}
	return records
}

// splitBlocks carves the section body (everything after the budget-activity
// line) into sub-program blocks, one per Explanation paragraph. Returns nil
// when the body has no explanation or any block is missing its amount pair.
func (s *StrictExtractor) splitBlocks(body string) []subProgram {
	markers := s.pats.ExplanationMarker.FindAllStringIndex(body, -1)
	if len(markers) == 0 {
		return nil
	}

	blocks := make([]subProgram, len(markers))

	// Head of block 0 is everything before the first marker. For later
	// blocks the text between consecutive markers holds the previous
	// explanation followed by the next block's head; the head starts at the
	// last amount line, extended backward over a short program-title line.
	headStart := 0
	for j, m := range markers {
		head := body[headStart:m[0]]

		var b subProgram
		if quad := s.pats.AmountQuad.FindStringSubmatch(head); quad != nil {
			b.baseCong, b.baseDoD, b.amount, b.total = quad[1], quad[2], quad[3], quad[4]
		} else if pairs := s.pats.AmountPair.FindAllStringSubmatch(head, -1); len(pairs) > 0 {
			last := pairs[len(pairs)-1]
			b.amount, b.total = last[1], last[2]
		} else {
			return nil
		}
		b.title = programTitle(head, s.pats)
		blocks[j] = b

		// Explanation for block j runs from after the marker to the head of
		// block j+1 (or a terminator / end of body for the last block).
		expEnd := len(body)
		if j+1 < len(markers) {
			between := body[m[1]:markers[j+1][0]]
			cut := s.nextHeadOffset(between)
			expEnd = m[1] + cut
			headStart = expEnd
		}
		exp := body[m[1]:expEnd]
		if term := s.pats.Terminator.FindStringIndex(exp); term != nil {
			exp = exp[:term[0]]
		}
		blocks[j].explanation = CollapseWhitespace(exp)
	}

	return blocks
}

// nextHeadOffset finds where the next block's head begins inside the text
// between two explanation markers: the start of the line holding the last
// amount match, backed up over an immediately preceding program-title line.
func (s *StrictExtractor) nextHeadOffset(between string) int {
	var lastAmount []int
	if quad := s.pats.AmountQuad.FindAllStringIndex(between, -1); len(quad) > 0 {
		lastAmount = quad[len(quad)-1]
	} else if pairs := s.pats.AmountPair.FindAllStringIndex(between, -1); len(pairs) > 0 {
		lastAmount = pairs[len(pairs)-1]
	}
	if lastAmount == nil {
		return len(between)
	}

	head := lineStart(between, lastAmount[0])

	// Swallow one short title line ("AMRAAM", "Sidewinder (AIM-9X)") if it
	// sits directly above the amount line, separated only by blanks.
	region := between[:head]
	lines := strings.Split(region, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if isProgramTitleLine(line, s.pats) {
			off := 0
			for _, l := range lines[:i] {
				off += len(l) + 1
			}
			return off
		}
		break
	}
	return head
}

// programTitle picks the named program line out of a block head: the last
// line with real words that is not an amount line or a recognized field
// line. OCR noise fragments ("ay", "ll") are skipped.
func programTitle(head string, pats *Patterns) string {
	lines := strings.Split(head, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if isProgramTitleLine(line, pats) {
			return line
		}
	}
	return ""
}

func isProgramTitleLine(line string, pats *Patterns) bool {
	if len(line) < 3 || len(line) > 60 {
		return false
	}
	// Program names start with a capital or digit and don't end a sentence;
	// this keeps trailing explanation fragments out of the title slot.
	if line[0] >= 'a' && line[0] <= 'z' {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	if pats.AmountLine.MatchString(line) {
		return false
	}
	if pats.BudgetActivity.MatchString(line) || pats.TitleLine.MatchString(line) {
		return false
	}
	if pats.ExplanationMarker.MatchString(line) || pats.Terminator.MatchString(line) {
		return false
	}
	letters := 0
	for _, r := range line {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	return letters >= 4
}

// lineStart returns the offset of the first character of the line containing
// position pos.
func lineStart(s string, pos int) int {
	if i := strings.LastIndexByte(s[:pos], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

// padActivityNumber left-pads single-digit budget activity numbers to the
// conventional two digits ("1" -> "01").
func padActivityNumber(n string) string {
	n = strings.TrimSpace(n)
	if len(n) == 1 {
		return "0" + n
	}
	return n
}
