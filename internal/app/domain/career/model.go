// Package career defines the career ladder, its qualification thresholds and
// the ordering used when reward slots are capped.
package career

import "time"

// Level is a career tier name.
type Level string

const (
	LevelNone    Level = "NONE"
	LevelStart   Level = "START"
	LevelBuilder Level = "BUILDER"
	LevelLeader  Level = "LEADER"
	LevelElite   Level = "ELITE"
	LevelPrime   Level = "PRIME"
	LevelMaster  Level = "MASTER"
	LevelLegacy  Level = "LEGACY"
	LevelOrigin  Level = "ORIGIN"
)

// Requirement describes what a tier demands. CompanyVolume is zero for tiers
// without a volume requirement. RequalifyMonths is the window in which the
// tier must be re-confirmed before its recurring rewards pause.
type Requirement struct {
	Level           Level   `json:"level"`
	Directs         int     `json:"directs"`
	Indirects       int     `json:"indirects"`
	CompanyVolume   float64 `json:"company_volume,omitempty"`
	RequalifyMonths int     `json:"requalify_months"`
}

// Ladder is the published career plan, lowest tier first.
var Ladder = []Requirement{
	{Level: LevelStart, Directs: 20, Indirects: 40, RequalifyMonths: 0},
	{Level: LevelBuilder, Directs: 50, Indirects: 100, RequalifyMonths: 2},
	{Level: LevelLeader, Directs: 80, Indirects: 160, RequalifyMonths: 2},
	{Level: LevelElite, Directs: 120, Indirects: 250, CompanyVolume: 10000, RequalifyMonths: 3},
	{Level: LevelPrime, Directs: 180, Indirects: 400, CompanyVolume: 15000, RequalifyMonths: 7},
	{Level: LevelMaster, Directs: 250, Indirects: 700, CompanyVolume: 20000, RequalifyMonths: 7},
	{Level: LevelLegacy, Directs: 400, Indirects: 1200, CompanyVolume: 50000, RequalifyMonths: 10},
	{Level: LevelOrigin, Directs: 600, Indirects: 2000, CompanyVolume: 70000, RequalifyMonths: 12},
}

// Rank returns the ladder position of a level, with NONE below START.
func Rank(level Level) int {
	for i, req := range Ladder {
		if req.Level == level {
			return i + 1
		}
	}
	return 0
}

// RequirementFor returns the ladder entry for a level.
func RequirementFor(level Level) (Requirement, bool) {
	for _, req := range Ladder {
		if req.Level == level {
			return req, true
		}
	}
	return Requirement{}, false
}

// Evaluation is one recorded qualification check. Records are appended, never
// rewritten, so the history shows when each tier was reached.
type Evaluation struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"member_id"`
	Level         Level     `json:"level"`
	Directs       int       `json:"directs"`
	Indirects     int       `json:"indirects"`
	CompanyVolume float64   `json:"company_volume,omitempty"`
	QualifiedAt   time.Time `json:"qualified_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Standing is a member's position when ordering candidates for capped reward
// slots.
type Standing struct {
	MemberID        string    `json:"member_id"`
	Level           Level     `json:"level"`
	QualifiedSince  time.Time `json:"qualified_since"`
	ActiveDirects   int       `json:"active_directs"`
	FirstQualifying time.Time `json:"first_qualifying"`
}

// Precedes reports whether a outranks b for a capped slot: longer continuous
// qualification wins, then more active directs, then the earlier first
// qualification.
func Precedes(a, b Standing) bool {
	if !a.QualifiedSince.Equal(b.QualifiedSince) {
		return a.QualifiedSince.Before(b.QualifiedSince)
	}
	if a.ActiveDirects != b.ActiveDirects {
		return a.ActiveDirects > b.ActiveDirects
	}
	return a.FirstQualifying.Before(b.FirstQualifying)
}
