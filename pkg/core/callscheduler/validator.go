package callscheduler

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// Rules reported by ValidateSchedule
const (
	RuleUnknownResident = "unknown_resident"
	RuleDuplicateDate   = "duplicate_date"
	RuleMissingDate     = "missing_date"
	RuleDoubleBooking   = "double_booking"
	RuleSpacing         = "spacing"
	RulePGYTemplate     = "pgy_template"
	RuleBackupPGY       = "backup_pgy"
	RuleIntern          = "intern"
	RuleSupervisor      = "supervisor"
	RuleLeave           = "leave"
	RulePGY4Cap         = "pgy4_cap"
)

// ValidationError describes a rule broken by a schedule on a specific date
type ValidationError struct {
	Date        time.Time
	Rule        string
	Resident    string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s] %s", e.Date.Format(model.DateLayout), e.Rule, e.Description)
}

// ValidationInput is the context a schedule is checked against
type ValidationInput struct {
	Residents    []model.Resident
	Leave        []model.LeaveRequest
	PreviousTail []model.FixedAssignment
	PGY4Cap      int
}

type duty struct {
	date  time.Time
	role  model.Role
	fixed bool
}

// ValidateSchedule checks rows against every hard rule and returns the violations found,
// ordered by date. Fixed rows are exempt from the PGY template, leave and cap rules, and
// spacing is only enforced for pairs involving at least one non-fixed assignment.
func ValidateSchedule(rows []model.ScheduleRow, in ValidationInput) []ValidationError {
	var errs []ValidationError
	report := func(date time.Time, rule, resident, format string, args ...any) {
		errs = append(errs, ValidationError{
			Date:        date,
			Rule:        rule,
			Resident:    resident,
			Description: fmt.Sprintf(format, args...),
		})
	}

	residents := make(map[string]model.Resident, len(in.Residents))
	for _, r := range in.Residents {
		residents[strings.TrimSpace(r.Name)] = r
	}
	leave := make(map[string]dateSet)
	for _, l := range in.Leave {
		name := strings.TrimSpace(l.Resident)
		if leave[name] == nil {
			leave[name] = dateSet{}
		}
		for _, d := range l.Dates.Days() {
			leave[name][d] = struct{}{}
		}
	}

	sorted := slices.Clone(rows)
	for i := range sorted {
		sorted[i].Date = model.Day(sorted[i].Date)
	}
	slices.SortStableFunc(sorted, func(a, b model.ScheduleRow) int { return a.Date.Compare(b.Date) })

	duties := make(map[string][]duty)
	for _, t := range in.PreviousTail {
		date := model.Day(t.Date)
		duties[t.Call] = append(duties[t.Call], duty{date: date, role: model.RoleCall, fixed: true})
		duties[t.Backup] = append(duties[t.Backup], duty{date: date, role: model.RoleBackup, fixed: true})
	}

	internDates := make(map[string][]time.Time)
	blockCalls := make(map[string]int)

	for i, row := range sorted {
		date := row.Date
		if i > 0 {
			prev := sorted[i-1].Date
			switch gap := model.DaysBetween(prev, date); {
			case gap == 0:
				report(date, RuleDuplicateDate, "", "date appears more than once")
				continue
			case gap > 1:
				report(prev.AddDate(0, 0, 1), RuleMissingDate, "", "%d date(s) missing before %s", gap-1, date.Format(model.DateLayout))
			}
		}

		known := func(name string, role model.Role) (model.Resident, bool) {
			r, ok := residents[name]
			if !ok {
				report(date, RuleUnknownResident, name, "%s %q is not on the roster", role, name)
			}
			return r, ok
		}

		names := []string{row.Call, row.Backup}
		if row.Intern != "" {
			names = append(names, row.Intern)
		}
		if row.Supervisor != "" {
			names = append(names, row.Supervisor)
		}
		for a := 0; a < len(names); a++ {
			for b := a + 1; b < len(names); b++ {
				if names[a] == names[b] {
					report(date, RuleDoubleBooking, names[a], "%q holds more than one role", names[a])
				}
			}
		}

		call, callKnown := known(row.Call, model.RoleCall)
		backup, backupKnown := known(row.Backup, model.RoleBackup)
		duties[row.Call] = append(duties[row.Call], duty{date: date, role: model.RoleCall, fixed: row.Fixed})
		duties[row.Backup] = append(duties[row.Backup], duty{date: date, role: model.RoleBackup, fixed: row.Fixed})

		if callKnown {
			blockCalls[row.Call]++
			pgy := call.PGYOn(date)
			if !row.Fixed && !CallAllowed(pgy, date) {
				report(date, RulePGYTemplate, row.Call, "PGY-%d %q may not take call on %s", pgy, row.Call, date.Weekday())
			}
			if !row.Fixed && pgy == 4 && in.PGY4Cap > 0 && blockCalls[row.Call] > in.PGY4Cap {
				report(date, RulePGY4Cap, row.Call, "%q exceeds the PGY-4 cap of %d calls", row.Call, in.PGY4Cap)
			}
		}
		if callKnown && backupKnown && !row.Fixed {
			if pgy := backup.PGYOn(date); !BackupAllowed(pgy) || pgy != call.PGYOn(date) {
				report(date, RuleBackupPGY, row.Backup, "backup %q is PGY-%d but call is PGY-%d", row.Backup, pgy, call.PGYOn(date))
			}
		}

		if row.Intern != "" {
			if intern, ok := known(row.Intern, model.RoleIntern); ok {
				switch {
				case row.Fixed:
					report(date, RuleIntern, row.Intern, "intern assigned on a fixed date")
				case intern.PGYOn(date) != 1:
					report(date, RuleIntern, row.Intern, "%q is not PGY-1", row.Intern)
				case callKnown && call.PGYOn(date) < 3:
					report(date, RuleIntern, row.Intern, "intern paired with a PGY-%d call resident", call.PGYOn(date))
				case !spacedFrom(internDates[row.Intern], date, InternAfterInternDays):
					report(date, RuleIntern, row.Intern, "%q has intern duty less than %d days apart", row.Intern, InternAfterInternDays)
				}
			}
			internDates[row.Intern] = append(internDates[row.Intern], date)
		}

		if row.Supervisor != "" {
			if sup, ok := known(row.Supervisor, model.RoleSupervisor); ok {
				if pgy := sup.PGYOn(date); pgy != 3 && pgy != 4 {
					report(date, RuleSupervisor, row.Supervisor, "supervisor %q is PGY-%d", row.Supervisor, pgy)
				}
			}
		}

		if !row.Fixed {
			for _, name := range names {
				if leave[name].has(date) {
					report(date, RuleLeave, name, "%q is on leave", name)
				}
			}
		}
	}

	for name, ds := range duties {
		if _, ok := residents[name]; !ok {
			continue
		}
		slices.SortStableFunc(ds, func(a, b duty) int { return a.date.Compare(b.date) })
		for i := range ds {
			for j := i + 1; j < len(ds); j++ {
				gap := model.DaysBetween(ds[i].date, ds[j].date)
				if gap >= CallSpacingDays {
					break
				}
				if ds[i].fixed && ds[j].fixed {
					continue
				}
				required := CallSpacingDays
				if ds[i].role == model.RoleBackup && ds[j].role == model.RoleBackup {
					required = BackupAfterBackupDays
				}
				if gap < required {
					report(ds[j].date, RuleSpacing, name, "%q has %s on %s and %s on %s, %d day(s) apart",
						name, ds[i].role, ds[i].date.Format(model.DateLayout), ds[j].role, ds[j].date.Format(model.DateLayout), gap)
				}
			}
		}
	}

	slices.SortStableFunc(errs, func(a, b ValidationError) int { return a.Date.Compare(b.Date) })
	return errs
}
