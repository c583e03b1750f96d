package callscheduler

import (
	"strings"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// SoftConstraintStatistics measures how well rows honour soft constraints within block.
// Each distinct (resident, date) preference counts once; it is violated when the resident
// is on call, backup or intern duty that day. Supervisor duty is not counted.
func SoftConstraintStatistics(rows []model.ScheduleRow, constraints []model.SoftConstraint, block model.DateRange) model.SoftConstraintStats {
	prefs := make(map[string]dateSet)
	for _, c := range constraints {
		clipped, ok := c.Dates.Clip(block)
		if !ok {
			continue
		}
		name := strings.TrimSpace(c.Resident)
		if prefs[name] == nil {
			prefs[name] = dateSet{}
		}
		for _, d := range clipped.Days() {
			prefs[name][d] = struct{}{}
		}
	}
	return softStats(rows, prefs)
}

func softStats(rows []model.ScheduleRow, prefs map[string]dateSet) model.SoftConstraintStats {
	stats := model.SoftConstraintStats{Violations: []model.Violation{}}
	for _, dates := range prefs {
		stats.Total += len(dates)
	}

	for _, row := range rows {
		date := model.Day(row.Date)
		for _, duty := range []struct {
			name string
			role model.Role
		}{
			{row.Call, model.RoleCall},
			{row.Backup, model.RoleBackup},
			{row.Intern, model.RoleIntern},
		} {
			if duty.name == "" || !prefs[duty.name].has(date) {
				continue
			}
			stats.Violations = append(stats.Violations, model.Violation{Date: date, Resident: duty.name, Role: duty.role})
		}
	}

	stats.Violated = len(stats.Violations)
	stats.Fulfilled = stats.Total - stats.Violated
	return stats
}

// softPrefsByName converts the problem's per-resident preference sets to name keys
func (p *problem) softPrefsByName() map[string]dateSet {
	out := make(map[string]dateSet, p.roster.size())
	for id, dates := range p.soft {
		if len(dates) > 0 {
			out[p.roster.name(residentID(id))] = dates
		}
	}
	return out
}
