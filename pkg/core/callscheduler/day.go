package callscheduler

import (
	"cmp"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// Call ordering adjustments. These are tuning constants, applied only while ranking.
const (
	AboveMeanPenalty = 1.0
	TotalCountFactor = 0.33
)

// pgy3WeekdayPenalty biases Wednesday and Thursday away from PGY-3 residents
var pgy3WeekdayPenalty = map[time.Weekday]float64{
	time.Wednesday: 0.5,
	time.Thursday:  0.75,
}

// bucketCount returns the tally that fairness is judged on for a PGY tier and day type.
// PGY-4 residents are balanced on total calls, everyone else per day type.
func bucketCount(c model.CallCounts, pgy int, dayType model.DayType) int {
	if pgy >= 4 {
		return c.Total
	}
	switch dayType {
	case model.DayTypeFriday:
		return c.Fridays
	case model.DayTypeSaturday:
		return c.Saturday
	case model.DayTypeSunday:
		return c.Sunday
	}
	return c.Weekday
}

// fairnessScore is the resident's relevant bucket count for date, carried-in counts included
func (t *trial) fairnessScore(id residentID, date time.Time) float64 {
	counts := t.counts[id].Add(t.p.previous[id])
	return float64(bucketCount(counts, t.p.roster.pgy(id, date), model.DayTypeOf(date)))
}

func (t *trial) softIndicator(id residentID, date time.Time) int {
	if t.p.prefersOff(id, date) {
		return 1
	}
	return 0
}

// assignDay fills a single date. It returns false when no legal combination exists.
func (t *trial) assignDay(date time.Time) bool {
	if fp, ok := t.p.fixed[date]; ok {
		t.commit(date, fp.call, fp.backup, noResident, true)
		return true
	}

	candidates := t.callCandidates(date)
	if len(candidates) == 0 {
		return false
	}

	for _, call := range t.rankCallCandidates(date, candidates) {
		pgy := t.p.roster.pgy(call, date)
		backups := t.backupCandidates(date, call, pgy)
		if len(backups) == 0 {
			continue
		}

		intern := noResident
		if pgy == 3 || pgy == 4 {
			intern = t.pickIntern(date, call, backups[0])
		}
		t.commit(date, call, backups[0], intern, false)
		return true
	}

	return false
}

func (t *trial) callCandidates(date time.Time) []residentID {
	var out []residentID
	for _, pgy := range callTemplate[date.Weekday()] {
		for _, id := range t.p.roster.withPGY(pgy, date) {
			if t.isEligible(id, date, model.RoleCall) {
				out = append(out, id)
			}
		}
	}
	return out
}

type rankedCandidate struct {
	id        residentID
	score     float64
	secondary float64
	key       float64
}

// rankCallCandidates returns the call candidates sharing the lowest adjusted fairness score,
// ordered by total count and then a random key. Higher-scoring candidates are never tried.
func (t *trial) rankCallCandidates(date time.Time, ids []residentID) []residentID {
	scores := make([]float64, len(ids))
	for i, id := range ids {
		scores[i] = t.fairnessScore(id, date)
		if t.p.roster.pgy(id, date) == 3 {
			scores[i] += pgy3WeekdayPenalty[date.Weekday()]
		}
	}

	mean := stat.Mean(scores, nil)
	for i := range scores {
		if scores[i] > mean {
			scores[i] += AboveMeanPenalty
		}
	}

	ranked := make([]rankedCandidate, len(ids))
	for i, id := range ids {
		total := t.counts[id].Total + t.p.previous[id].Total
		ranked[i] = rankedCandidate{
			id:        id,
			score:     scores[i],
			secondary: float64(total) * TotalCountFactor,
			key:       t.rng.Float64(),
		}
	}
	slices.SortFunc(ranked, compareRanked)
	minimal := 1
	for minimal < len(ranked) && ranked[minimal].score == ranked[0].score {
		minimal++
	}
	ranked = ranked[:minimal]

	out := make([]residentID, len(ranked))
	for i, c := range ranked {
		out[i] = c.id
	}
	return out
}

func compareRanked(a, b rankedCandidate) int {
	if c := cmp.Compare(a.score, b.score); c != 0 {
		return c
	}
	if c := cmp.Compare(a.secondary, b.secondary); c != 0 {
		return c
	}
	return cmp.Compare(a.key, b.key)
}

type backupCandidate struct {
	id     residentID
	score  float64
	soft   int
	backup int
	key    float64
}

// backupCandidates returns the residents sharing the call resident's PGY who may take
// backup on date, best first
func (t *trial) backupCandidates(date time.Time, call residentID, pgy int) []residentID {
	var cands []backupCandidate
	for _, id := range t.p.roster.withPGY(pgy, date) {
		if id == call || !t.isEligible(id, date, model.RoleBackup) {
			continue
		}
		cands = append(cands, backupCandidate{
			id:     id,
			score:  t.fairnessScore(id, date),
			soft:   t.softIndicator(id, date),
			backup: t.backupCounts[id],
			key:    t.rng.Float64(),
		})
	}

	slices.SortFunc(cands, func(a, b backupCandidate) int {
		return cmp.Or(
			cmp.Compare(a.score, b.score),
			cmp.Compare(a.soft, b.soft),
			cmp.Compare(a.backup, b.backup),
			cmp.Compare(a.key, b.key),
		)
	})

	out := make([]residentID, len(cands))
	for i, c := range cands {
		out[i] = c.id
	}
	return out
}

// pickIntern chooses the intern to pair with a senior call resident. Saturday intern load
// is balanced separately from the rest of the week. Returns noResident if nobody qualifies.
func (t *trial) pickIntern(date time.Time, call, backup residentID) residentID {
	saturday := date.Weekday() == time.Saturday
	best := noResident
	var bestKey []int

	for _, id := range t.p.roster.withPGY(1, date) {
		if id == call || id == backup || !t.isEligible(id, date, model.RoleIntern) {
			continue
		}
		key := []int{t.internWeekday[id], t.internSaturday[id], t.softIndicator(id, date)}
		if saturday {
			key[0], key[1] = key[1], key[0]
		}
		if best == noResident || slices.Compare(key, bestKey) < 0 {
			best, bestKey = id, key
		}
	}

	return best
}
