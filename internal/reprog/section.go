package reprog

import (
	"strings"
)

// Direction tags a section as a funding increase or decrease.
type Direction int

const (
	Increase Direction = iota
	Decrease
)

func (d Direction) String() string {
	if d == Decrease {
		return "decrease"
	}
	return "increase"
}

// Branch is a military service or the Defense-Wide category.
type Branch string

const (
	Army        Branch = "Army"
	Navy        Branch = "Navy"
	AirForce    Branch = "Air Force"
	MarineCorps Branch = "Marine Corps"
	SpaceForce  Branch = "Space Force"
	CoastGuard  Branch = "Coast Guard"
	DefenseWide Branch = "Defense-Wide"
)

// Branches lists the recognized branches in conventional order.
var Branches = []Branch{Army, Navy, AirForce, MarineCorps, SpaceForce, CoastGuard, DefenseWide}

// Section is a contiguous slice of document text attributed to one
// branch/direction. Text runs from the anchor to the start of the next
// recognized anchor or end of input; repeated anchors for the same
// branch/direction are merged into one span, so sub-program blocks stay
// inside their parent.
type Section struct {
	Branch    Branch
	Direction Direction
	Start     int
	End       int
	Text      string
	// Fallback marks the synthetic whole-document span created when no
	// anchor matched at all.
	Fallback bool
}

// Locator scans raw text for branch section boundaries.
type Locator struct {
	pats *Patterns
}

// NewLocator creates a Locator over the given pattern registry.
func NewLocator(pats *Patterns) *Locator {
	return &Locator{pats: pats}
}

// Locate returns the branch sections of text in document order. Returns nil
// when no anchor is found; the caller decides whether a fallback span is
// warranted.
func (l *Locator) Locate(text string) []Section {
	if text == "" {
		return nil
	}

	matches := l.pats.SectionAnchor.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	type anchor struct {
		branch    Branch
		direction Direction
		start     int
	}

	var anchors []anchor
	for _, m := range matches {
		b := CanonicalBranch(text[m[2]:m[3]])
		if b == "" {
			continue
		}
		dir := Increase
		if strings.EqualFold(text[m[4]:m[5]], "DECREASE") {
			dir = Decrease
		}

		// A repeated anchor for the same branch/direction (page headers,
		// sub-program blocks) extends the current span instead of opening
		// a new one.
		if n := len(anchors); n > 0 && anchors[n-1].branch == b && anchors[n-1].direction == dir {
			continue
		}
		anchors = append(anchors, anchor{branch: b, direction: dir, start: m[0]})
	}

	if len(anchors) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(anchors))
	for i, a := range anchors {
		end := len(text)
		if i+1 < len(anchors) {
			end = anchors[i+1].start
		}
		sections = append(sections, Section{
			Branch:    a.branch,
			Direction: a.direction,
			Start:     a.start,
			End:       end,
			Text:      text[a.start:end],
		})
	}

	return sections
}

// Mentions returns branches named anywhere in text, in order of first
// occurrence, without requiring an INCREASE/DECREASE suffix. This is the
// looser signal the heuristic path uses to tag a fallback span.
func (l *Locator) Mentions(text string) []Branch {
	var out []Branch
	seen := make(map[Branch]bool)
	for _, m := range l.pats.BranchMention.FindAllString(text, -1) {
		b := CanonicalBranch(m)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}

// CanonicalBranch normalizes an OCR branch token ("DEFENSE- WIDE", "air
// force") to its canonical name, or "" when the token is not one of the
// seven recognized branches. Garbled tokens never leak into records.
func CanonicalBranch(raw string) Branch {
	key := strings.ToUpper(raw)
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.Join(strings.Fields(key), " ")
	switch key {
	case "ARMY":
		return Army
	case "NAVY":
		return Navy
	case "AIR FORCE":
		return AirForce
	case "MARINE CORPS":
		return MarineCorps
	case "SPACE FORCE":
		return SpaceForce
	case "COAST GUARD":
		return CoastGuard
	case "DEFENSE WIDE", "DEFENSEWIDE":
		return DefenseWide
	}
	return ""
}
