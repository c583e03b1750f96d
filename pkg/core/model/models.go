package model

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date format used across inputs and outputs
const DateLayout = "2006-01-02"

// Role identifies a duty on a scheduled date
type Role string

const (
	RoleCall       Role = "Call"
	RoleBackup     Role = "Backup"
	RoleIntern     Role = "Intern"
	RoleSupervisor Role = "Supervisor"
)

func (r Role) IsValid() bool {
	return r == RoleCall || r == RoleBackup || r == RoleIntern || r == RoleSupervisor
}

// Transition is a single future PGY change. The new PGY applies strictly after Date.
type Transition struct {
	Date time.Time
	PGY  int
}

// Resident represents a resident on the roster for a block
type Resident struct {
	Name       string
	PGY        int
	Transition *Transition // nil if no transition
}

// PGYOn returns the resident's PGY on the given date
func (r Resident) PGYOn(date time.Time) int {
	if r.Transition != nil && Day(date).After(Day(r.Transition.Date)) {
		return r.Transition.PGY
	}
	return r.PGY
}

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether date falls inside the range
func (r DateRange) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Days expands the range into individual dates
func (r DateRange) Days() []time.Time {
	start, end := Day(r.Start), Day(r.End)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Clip limits the range to bounds. ok is false when the ranges do not overlap.
func (r DateRange) Clip(bounds DateRange) (clipped DateRange, ok bool) {
	start, end := Day(r.Start), Day(r.End)
	if start.Before(Day(bounds.Start)) {
		start = Day(bounds.Start)
	}
	if end.After(Day(bounds.End)) {
		end = Day(bounds.End)
	}
	if end.Before(start) {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

// LeaveRequest is a hard exclusion: the resident cannot work any role in the range
type LeaveRequest struct {
	Resident string
	Dates    DateRange
}

// SoftConstraint is a preference not to work in the range. Violations are counted, not forbidden.
type SoftConstraint struct {
	Resident string
	Dates    DateRange
}

// FixedAssignment is an externally mandated call/backup pair (holiday or previous block tail)
type FixedAssignment struct {
	Date   time.Time
	Call   string
	Backup string
}

// CallCounts is a per-resident tally of call assignments by day type
type CallCounts struct {
	Weekday  int
	Fridays  int
	Saturday int
	Sunday   int
	Total    int
}

// Add returns the element-wise sum of two tallies
func (c CallCounts) Add(other CallCounts) CallCounts {
	return CallCounts{
		Weekday:  c.Weekday + other.Weekday,
		Fridays:  c.Fridays + other.Fridays,
		Saturday: c.Saturday + other.Saturday,
		Sunday:   c.Sunday + other.Sunday,
		Total:    c.Total + other.Total,
	}
}

// ScheduleRow is one scheduled date. Empty Intern/Supervisor means unassigned.
type ScheduleRow struct {
	Date       time.Time
	Call       string
	Backup     string
	Intern     string
	Supervisor string
	Fixed      bool
}

// Violation records a soft constraint that a schedule did not honour
type Violation struct {
	Date     time.Time
	Resident string
	Role     Role
}

// SoftConstraintStats summarises soft-constraint satisfaction for a schedule
type SoftConstraintStats struct {
	Total      int
	Fulfilled  int
	Violated   int
	Violations []Violation
}
