package reprog

import (
	"os"
	"path/filepath"
	"testing"
)

func strictSection(branch Branch, dir Direction, text string) Section {
	return Section{Branch: branch, Direction: dir, Start: 0, End: len(text), Text: text}
}

func TestTryExtract_RequiresTitleLine(t *testing.T) {
	s := NewStrictExtractor(DefaultPatterns(), DefaultTemplates())

	sec := strictSection(Army, Increase, "ARMY INCREASE\n\n+118,600 118,600\n\nExplanation: realignment.\n")
	if got := s.TryExtract(sec); got != nil {
		t.Fatalf("expected nil without a title line, got %d records", len(got))
	}
}

func TestTryExtract_RequiresAmountPair(t *testing.T) {
	s := NewStrictExtractor(DefaultPatterns(), DefaultTemplates())

	text := "ARMY INCREASE\n\nOperation and Maintenance, Army, 25/25\nBudget Activity 01: Operating Forces\n\nExplanation: no amounts stated.\n"
	if got := s.TryExtract(strictSection(Army, Increase, text)); got != nil {
		t.Fatalf("expected nil without an amount pair, got %d records", len(got))
	}
}

func TestTryExtract_RejectsContradictingBranch(t *testing.T) {
	s := NewStrictExtractor(DefaultPatterns(), DefaultTemplates())

	// Section anchored as Army but the only title line names the Navy; a
	// partial match against the wrong line must not produce a record.
	text := "ARMY INCREASE\n\nOperation and Maintenance, Navy, 25/25\nBudget Activity 01: Operating Forces\n\n+105,252 105,252\n\nExplanation: misfiled.\n"
	if got := s.TryExtract(strictSection(Army, Increase, text)); got != nil {
		t.Fatalf("expected nil on branch contradiction, got %d records", len(got))
	}
}

func TestTryExtract_SingleBlock(t *testing.T) {
	s := NewStrictExtractor(DefaultPatterns(), DefaultTemplates())

	text := "NAVY INCREASE +105,252\n\nWeapons Procurement, Navy, 25/27\nBudget Activity 02: Other missiles\n\nStandard Missile\n\n+105,252 105,252\n\nExplanation: Funds are required for the replacement of Standard Missiles.\n"
	got := s.TryExtract(strictSection(Navy, Increase, text))
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.BudgetTitle != "Standard Missile" {
		t.Errorf("expected Standard Missile title, got %q", r.BudgetTitle)
	}
	if r.ReprogrammingAmount != "105252" || r.RevisedProgramTotal != "105252" {
		t.Errorf("unexpected amounts %s / %s", r.ReprogrammingAmount, r.RevisedProgramTotal)
	}
	if r.Explanation != "Funds are required for the replacement of Standard Missiles." {
		t.Errorf("unexpected explanation %q", r.Explanation)
	}
}

func TestTryExtract_PEMCarriedWhenPresent(t *testing.T) {
	s := NewStrictExtractor(DefaultPatterns(), DefaultTemplates())

	text := "ARMY INCREASE\n\nOperation and Maintenance, Army, 25/25\nBudget Activity 01: Operating Forces\nPE 0601102A\n\n+118,600 118,600\n\nExplanation: research realignment.\n"
	got := s.TryExtract(strictSection(Army, Increase, text))
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].PEM != "0601102A" {
		t.Errorf("expected PEM 0601102A, got %q", got[0].PEM)
	}
}

func TestLoadTemplates_OverlayMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	overlay := `templates:
  - branch: Navy
    vocabulary:
      - Shipbuilding and Conversion
    sub_programs: false
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	templates, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	byBranch := make(map[Branch]Template)
	for _, tpl := range templates {
		byBranch[tpl.Branch] = tpl
	}

	navy := byBranch[Navy]
	if len(navy.Vocabulary) != 1 || navy.Vocabulary[0] != "Shipbuilding and Conversion" {
		t.Errorf("overlay not applied: %v", navy.Vocabulary)
	}
	if navy.SubPrograms {
		t.Error("overlay should have cleared sub_programs")
	}
	// Untouched branches keep their built-ins.
	if len(byBranch[Army].Vocabulary) == 0 {
		t.Error("Army template lost its default vocabulary")
	}
}

func TestLoadTemplates_MissingFile(t *testing.T) {
	if _, err := LoadTemplates(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
