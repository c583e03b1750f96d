package callscheduler

import (
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// assignSupervisors adds a senior supervisor to every non-fixed, non-Sunday date whose
// call resident is PGY-2. The result is aligned with assignments; noResident marks dates
// without a supervisor.
func assignSupervisors(p *problem, assignments []assignment, logger *zap.Logger) []residentID {
	callOn := make(map[time.Time]residentID, len(assignments)+len(p.previousCall))
	maps.Copy(callOn, p.previousCall)
	for _, a := range assignments {
		callOn[a.date] = a.call
	}

	load := make([]int, p.roster.size())
	out := make([]residentID, len(assignments))

	for i, a := range assignments {
		out[i] = noResident
		if a.fixed || a.date.Weekday() == time.Sunday || p.roster.pgy(a.call, a.date) != 2 {
			continue
		}

		// Friday look-ahead: Saturday's call resident supervises Friday if they can
		if a.date.Weekday() == time.Friday {
			saturday := a.date.AddDate(0, 0, 1)
			if id, ok := callOn[saturday]; ok && p.canSupervise(id, saturday, a.date, callOn) {
				out[i] = id
				load[id]++
				continue
			}
		}

		best := noResident
		for id := range p.roster.size() {
			rid := residentID(id)
			if !p.canSupervise(rid, a.date, a.date, callOn) {
				continue
			}
			if best == noResident || load[rid] < load[best] {
				best = rid
			}
		}

		if best == noResident {
			logger.Warn("No eligible supervisor", zap.String("date", a.date.Format(model.DateLayout)))
			continue
		}
		out[i] = best
		load[best]++
	}

	return out
}

// canSupervise checks a resident for supervising on date. Seniority is judged on pgyDate,
// which differs from date only for the Friday look-ahead.
func (p *problem) canSupervise(id residentID, pgyDate, date time.Time, callOn map[time.Time]residentID) bool {
	if pgy := p.roster.pgy(id, pgyDate); pgy != 3 && pgy != 4 {
		return false
	}
	if prev, ok := callOn[date.AddDate(0, 0, -1)]; ok && prev == id {
		return false
	}
	return !p.onLeave(id, date)
}
