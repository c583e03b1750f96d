package db

// Dates are stored as "2006-01-02" strings, timestamps as RFC 3339.

// Resident represents a roster record for one academic year
type Resident struct {
	ID             string
	AcademicYear   int
	Name           string
	PGY            int
	TransitionDate string // empty if no transition
	TransitionPGY  int
}

// Block represents a generated block schedule
type Block struct {
	ID           string
	AcademicYear int
	Number       int
	Start        string
	End          string
	Seed         uint64
	TrialIndex   int
	Fairness     float64
	Violations   float64
	GeneratedAt  string
}

// ScheduleEntry represents one date of a stored block schedule
type ScheduleEntry struct {
	ID         string
	BlockID    string
	Date       string
	Call       string
	Backup     string
	Intern     string
	Supervisor string
	Fixed      bool
}

// CallStatistic holds one resident's call counts within a single block. Running totals are
// the sum over earlier blocks of the same academic year.
type CallStatistic struct {
	ID       string
	BlockID  string
	Resident string
	PGY      int
	Weekday  int
	Fridays  int
	Saturday int
	Sunday   int
	Total    int
}
