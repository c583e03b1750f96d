package callscheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, normalize([]float64{2, 4, 6}))
	assert.Equal(t, []float64{0, 0, 0}, normalize([]float64{3, 3, 3}), "no spread maps to zero")
	assert.Empty(t, normalize(nil))
}

func TestSelectBest(t *testing.T) {
	t.Run("weights decide between fairness and violations", func(t *testing.T) {
		scores := []TrialScore{
			{Index: 0, Fairness: 10, Violations: 0},
			{Index: 1, Fairness: 2, Violations: 4},
		}

		best, ok := selectBest(scores, 0.75, 0.25)
		require.True(t, ok)
		assert.Equal(t, 1, best.Index)
		assert.InDelta(t, 0.25, best.Combined, 1e-9)

		best, ok = selectBest(scores, 0.25, 0.75)
		require.True(t, ok)
		assert.Equal(t, 0, best.Index)
	})

	t.Run("ties go to the lowest index", func(t *testing.T) {
		scores := []TrialScore{
			{Index: 7, Fairness: 3, Violations: 1},
			{Index: 2, Fairness: 3, Violations: 1},
			{Index: 5, Fairness: 3, Violations: 1},
		}
		best, ok := selectBest(scores, 0.75, 0.25)
		require.True(t, ok)
		assert.Equal(t, 2, best.Index)
		assert.Zero(t, best.Combined)
	})

	t.Run("does not modify its input", func(t *testing.T) {
		scores := []TrialScore{{Index: 0, Fairness: 1}, {Index: 1, Fairness: 2}}
		_, _ = selectBest(scores, 0.5, 0.5)
		assert.Zero(t, scores[1].Combined)
	})

	t.Run("empty population", func(t *testing.T) {
		_, ok := selectBest(nil, 0.75, 0.25)
		assert.False(t, ok)
	})
}

func TestFairnessSpread(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:      standardRoster(map[int]int{1: 2, 2: 2, 3: 2, 4: 2}),
		BlockStart:     day("2024-01-01"),
		BlockEnd:       day("2024-01-31"),
		PGY4Cap:        4,
		PreviousCounts: map[string]model.CallCounts{"R4_1": {Total: 3}},
	})
	counts := make([]model.CallCounts, p.roster.size())
	counts[mustID(t, p, "R2_1")] = model.CallCounts{Weekday: 2, Sunday: 1, Total: 3}
	counts[mustID(t, p, "R3_2")] = model.CallCounts{Saturday: 1, Total: 1}
	counts[mustID(t, p, "R4_2")] = model.CallCounts{Weekday: 1, Total: 1}
	// Interns are not part of any tier
	counts[mustID(t, p, "R1_1")] = model.CallCounts{Weekday: 9, Total: 9}

	// PGY-2: weekday 2 + sunday 1, PGY-3: saturday 1, PGY-4: total |3-1| = 2
	assert.Equal(t, 6.0, fairnessSpread(p, counts))
}
