package reprog

import "testing"

func TestCanonicalAmount(t *testing.T) {
	cases := []struct{ in, want string }{
		{"+118,600", "118600"},
		{"118,600", "118600"},
		{"-657,584", "-657584"},
		{"$4,400,000", "4400000"},
		{" +356,250 ", "356250"},
		{"", ""},
		{"$,", ""},
	}
	for _, c := range cases {
		if got := CanonicalAmount(c.in); got != c.want {
			t.Errorf("CanonicalAmount(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestForceSign(t *testing.T) {
	if got := ForceSign("657584", Decrease); got != "-657584" {
		t.Errorf("expected -657584, got %q", got)
	}
	if got := ForceSign("-657584", Decrease); got != "-657584" {
		t.Errorf("double negation: got %q", got)
	}
	if got := ForceSign("-118600", Increase); got != "118600" {
		t.Errorf("expected sign stripped on increase, got %q", got)
	}
	if got := ForceSign("", Decrease); got != "" {
		t.Errorf("expected empty passthrough, got %q", got)
	}
}

func TestNormalizeFiscalYear(t *testing.T) {
	cases := []struct{ in, want string }{
		{"25", "2025"},
		{"2025", "2025"},
		{" 27 ", "2027"},
		{"5", "5"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeFiscalYear(c.in); got != c.want {
			t.Errorf("NormalizeFiscalYear(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "  Funds are\nrequired   for\n\nreplacement. "
	want := "Funds are required for replacement."
	if got := CollapseWhitespace(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHeaderFieldsAligned(t *testing.T) {
	h := Header()
	if len(h) != 16 {
		t.Fatalf("expected 16 columns, got %d", len(h))
	}
	r := Record{
		AppropriationCategory: "Operation and Maintenance",
		Branch:                "Army",
		File:                  "x.pdf",
	}
	f := r.Fields()
	if len(f) != len(h) {
		t.Fatalf("fields/header mismatch: %d vs %d", len(f), len(h))
	}
	if f[0] != "Operation and Maintenance" || f[3] != "Army" || f[15] != "x.pdf" {
		t.Errorf("field order drifted: %v", f)
	}
}
