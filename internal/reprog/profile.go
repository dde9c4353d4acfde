package reprog

// Profile holds the last-resort defaults for one branch: the values a record
// falls back to when the section text yields nothing for a qualitative field.
// Amount fields never come from a profile.
type Profile struct {
	Category             string
	BudgetActivityNumber string
	BudgetActivityTitle  string
	BudgetTitle          string
	FiscalYearStart      string
	FiscalYearEnd        string
}

// ProfileTable maps branch to its default profile. Loaded once at startup and
// never mutated.
type ProfileTable map[Branch]Profile

// DefaultProfiles returns the standard branch profile table. Categories and
// budget activities follow the typical layout of recent reprogramming
// actions: O&M for the services, missile/weapons procurement for the
// munitions-heavy branches, and procurement for Defense-Wide.
func DefaultProfiles() ProfileTable {
	return ProfileTable{
		Army: {
			Category:             "Operation and Maintenance",
			BudgetActivityNumber: "01",
			BudgetActivityTitle:  "Operating Forces",
			FiscalYearStart:      "2025",
			FiscalYearEnd:        "2025",
		},
		Navy: {
			Category:             "Weapons Procurement",
			BudgetActivityNumber: "02",
			BudgetActivityTitle:  "Other missiles",
			FiscalYearStart:      "2025",
			FiscalYearEnd:        "2027",
		},
		AirForce: {
			Category:             "Missile Procurement",
			BudgetActivityNumber: "02",
			BudgetActivityTitle:  "Other missiles",
			FiscalYearStart:      "2025",
			FiscalYearEnd:        "2027",
		},
		MarineCorps: {
			Category:             "Operation and Maintenance",
			BudgetActivityNumber: "01",
			BudgetActivityTitle:  "Operating Forces",
			FiscalYearStart:      "2025",
			FiscalYearEnd:        "2025",
		},
		SpaceForce: {
			Category:             "Operation and Maintenance",
			BudgetActivityNumber: "01",
			BudgetActivityTitle:  "Operating Forces",
			FiscalYearStart:      "2025",
			FiscalYearEnd:        "2025",
		},
		CoastGuard: {
			Category:             "Operation and Maintenance",
			BudgetActivityNumber: "01",
			BudgetActivityTitle:  "Operating Forces",
			FiscalYearStart:      "2025",
			FiscalYearEnd:        "2025",
		},
		DefenseWide: {
			Category:             "Procurement",
			BudgetActivityNumber: "01",
			BudgetActivityTitle:  "Major equipment",
			FiscalYearStart:      "2025",
			FiscalYearEnd:        "2027",
		},
	}
}

// Lookup returns the profile for a branch, falling back to Defense-Wide for
// anything unrecognized so callers always get usable defaults.
func (t ProfileTable) Lookup(b Branch) Profile {
	if p, ok := t[b]; ok {
		return p
	}
	return t[DefenseWide]
}
