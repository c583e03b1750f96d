package callscheduler

import (
	"gonum.org/v1/gonum/floats"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// tierBuckets lists the day types each PGY tier is balanced on. PGY-4 is balanced on
// total calls, which bucketCount returns for any day type.
var tierBuckets = map[int][]model.DayType{
	2: {model.DayTypeWeekday, model.DayTypeFriday, model.DayTypeSunday},
	3: {model.DayTypeWeekday, model.DayTypeSaturday},
	4: {model.DayTypeWeekday},
}

// fairnessSpread sums, over every PGY tier and relevant bucket, the gap between the most
// and least loaded resident. Carried-in counts are included and tiers are taken as of the
// last day of the block.
func fairnessSpread(p *problem, counts []model.CallCounts) float64 {
	var spread float64
	for _, pgy := range []int{2, 3, 4} {
		ids := p.roster.withPGY(pgy, p.block.End)
		if len(ids) < 2 {
			continue
		}
		values := make([]float64, len(ids))
		for _, dayType := range tierBuckets[pgy] {
			for i, id := range ids {
				values[i] = float64(bucketCount(counts[id].Add(p.previous[id]), pgy, dayType))
			}
			spread += floats.Max(values) - floats.Min(values)
		}
	}
	return spread
}

// normalize rescales values to [0,1]. A population with no spread maps to all zeros.
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// selectBest picks the trial with the lowest weighted sum of normalised fairness spread
// and violation count. Ties go to the lowest trial index. ok is false for an empty input.
func selectBest(scores []TrialScore, fairnessWeight, softWeight float64) (best TrialScore, ok bool) {
	if len(scores) == 0 {
		return TrialScore{}, false
	}

	fairness := make([]float64, len(scores))
	violations := make([]float64, len(scores))
	for i, s := range scores {
		fairness[i] = s.Fairness
		violations[i] = float64(s.Violations)
	}
	fairnessNorm := normalize(fairness)
	violationsNorm := normalize(violations)

	for i, s := range scores {
		s.Combined = fairnessNorm[i]*fairnessWeight + violationsNorm[i]*softWeight
		if !ok || s.Combined < best.Combined || (s.Combined == best.Combined && s.Index < best.Index) {
			best, ok = s, true
		}
	}
	return best, ok
}
