package callscheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

func TestAssignSupervisors(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:  standardRoster(map[int]int{2: 4, 3: 3}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-01-31"),
		PGY4Cap:    4,
		Leave: []model.LeaveRequest{
			{Resident: "R3_3", Dates: model.DateRange{Start: day("2024-01-02"), End: day("2024-01-02")}},
		},
		PreviousTail: []model.FixedAssignment{
			{Date: day("2023-12-31"), Call: "R3_1", Backup: "R3_2"},
		},
	})
	id := func(name string) residentID { return mustID(t, p, name) }

	// Mon, Tue, Fri, Sat, Sun, Tue (fixed), Wed (PGY-3 call)
	assignments := []assignment{
		{date: day("2024-01-01"), call: id("R2_1"), backup: id("R2_2"), intern: noResident},
		{date: day("2024-01-02"), call: id("R2_3"), backup: id("R2_4"), intern: noResident},
		{date: day("2024-01-05"), call: id("R2_1"), backup: id("R2_2"), intern: noResident},
		{date: day("2024-01-06"), call: id("R3_3"), backup: id("R3_2"), intern: noResident},
		{date: day("2024-01-07"), call: id("R2_3"), backup: id("R2_4"), intern: noResident},
		{date: day("2024-01-09"), call: id("R2_1"), backup: id("R2_2"), intern: noResident, fixed: true},
		{date: day("2024-01-10"), call: id("R3_1"), backup: id("R3_2"), intern: noResident},
	}

	got := assignSupervisors(p, assignments, zap.NewNop())
	require.Len(t, got, len(assignments))

	// R3_1 was on call the day before the block; R3_2 wins the tie on roster order
	assert.Equal(t, id("R3_2"), got[0])
	// R3_3 is on leave and R3_2 already supervised once
	assert.Equal(t, id("R3_1"), got[1])
	// Friday goes to Saturday's call resident
	assert.Equal(t, id("R3_3"), got[2])
	assert.Equal(t, noResident, got[3], "Saturday call is PGY-3")
	assert.Equal(t, noResident, got[4], "Sunday")
	assert.Equal(t, noResident, got[5], "fixed date")
	assert.Equal(t, noResident, got[6], "PGY-3 call")
}

func TestAssignSupervisors_GapWhenNobodyEligible(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:  standardRoster(map[int]int{2: 2, 3: 1}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-01-31"),
		PGY4Cap:    4,
		Leave: []model.LeaveRequest{
			{Resident: "R3_1", Dates: model.DateRange{Start: day("2024-01-01"), End: day("2024-01-31")}},
		},
	})

	got := assignSupervisors(p, []assignment{
		{date: day("2024-01-02"), call: mustID(t, p, "R2_1"), backup: mustID(t, p, "R2_2"), intern: noResident},
	}, zap.NewNop())

	assert.Equal(t, []residentID{noResident}, got)
}

func TestAssignSupervisors_FridayLookAheadAfterTransition(t *testing.T) {
	tests := []struct {
		name       string
		transition string
		want       string
	}{
		{name: "senior from Saturday", transition: "2024-01-05", want: "Riser"},
		{name: "still PGY-2 on Saturday", transition: "2024-01-06", want: "R3_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			residents := append(standardRoster(map[int]int{2: 2, 3: 1}), model.Resident{
				Name:       "Riser",
				PGY:        2,
				Transition: &model.Transition{Date: day(tt.transition), PGY: 3},
			})
			p := mustProblem(t, Config{
				Residents:  residents,
				BlockStart: day("2024-01-01"),
				BlockEnd:   day("2024-01-31"),
				PGY4Cap:    4,
			})

			// Friday call is PGY-2 and Riser takes Saturday call
			got := assignSupervisors(p, []assignment{
				{date: day("2024-01-05"), call: mustID(t, p, "R2_1"), backup: mustID(t, p, "R2_2"), intern: noResident},
				{date: day("2024-01-06"), call: mustID(t, p, "Riser"), backup: mustID(t, p, "R3_1"), intern: noResident},
			}, zap.NewNop())

			require.Len(t, got, 2)
			assert.Equal(t, mustID(t, p, tt.want), got[0])
		})
	}
}
