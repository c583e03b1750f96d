package callscheduler

import (
	"strings"
	"time"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// ResidentStatistics is one resident's call tally for a block. For PGY-1 residents the
// counts are intern duties, where Weekday covers Monday to Friday.
type ResidentStatistics struct {
	Resident string
	PGY      int
	Counts   model.CallCounts
}

// CallStatistics tallies rows per resident in roster order. PGY is reported as of asOf,
// normally the last day of the block.
func CallStatistics(rows []model.ScheduleRow, residents []model.Resident, asOf time.Time) []ResidentStatistics {
	calls := make(map[string]model.CallCounts)
	interns := make(map[string]model.CallCounts)

	for _, row := range rows {
		date := model.Day(row.Date)
		calls[row.Call] = calls[row.Call].Add(countsFor(date))

		if row.Intern == "" {
			continue
		}
		var c model.CallCounts
		switch date.Weekday() {
		case time.Saturday:
			c.Saturday = 1
		case time.Sunday:
			c.Sunday = 1
		default:
			c.Weekday = 1
		}
		c.Total = 1
		interns[row.Intern] = interns[row.Intern].Add(c)
	}

	out := make([]ResidentStatistics, 0, len(residents))
	for _, r := range residents {
		name := strings.TrimSpace(r.Name)
		pgy := r.PGYOn(asOf)
		counts := calls[name]
		if pgy == 1 {
			counts = interns[name]
		}
		out = append(out, ResidentStatistics{Resident: name, PGY: pgy, Counts: counts})
	}
	return out
}

// RunningTotals adds carried-in counts to a block's statistics
func RunningTotals(current []ResidentStatistics, previous map[string]model.CallCounts) []ResidentStatistics {
	out := make([]ResidentStatistics, len(current))
	for i, s := range current {
		s.Counts = s.Counts.Add(previous[s.Resident])
		out[i] = s
	}
	return out
}

// SumStatistics adds up statistics per resident, e.g. across every earlier block of a year.
// totals include every row and feed running totals. calls leave out PGY-1 rows, whose
// counts are intern duties, and are the carry-in used for call fairness.
func SumStatistics(stats []ResidentStatistics) (totals, calls map[string]model.CallCounts) {
	totals = make(map[string]model.CallCounts)
	calls = make(map[string]model.CallCounts)
	for _, s := range stats {
		totals[s.Resident] = totals[s.Resident].Add(s.Counts)
		if s.PGY == 1 {
			continue
		}
		calls[s.Resident] = calls[s.Resident].Add(s.Counts)
	}
	return totals, calls
}
