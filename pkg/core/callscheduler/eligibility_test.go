package callscheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

func TestCallAllowed_WeeklyTemplate(t *testing.T) {
	// 2024-01-01 is a Monday
	allowed := map[time.Weekday][]int{
		time.Monday:    {3},
		time.Tuesday:   {2},
		time.Wednesday: {2, 3},
		time.Thursday:  {3, 4},
		time.Friday:    {2},
		time.Saturday:  {3},
		time.Sunday:    {2},
	}

	for offset := range 7 {
		date := day("2024-01-01").AddDate(0, 0, offset)
		for pgy := 1; pgy <= 4; pgy++ {
			want := false
			for _, p := range allowed[date.Weekday()] {
				want = want || p == pgy
			}
			assert.Equal(t, want, CallAllowed(pgy, date), "PGY-%d on %s", pgy, date.Weekday())
		}
	}

	assert.False(t, BackupAllowed(1))
	assert.True(t, BackupAllowed(2))
	assert.True(t, BackupAllowed(4))
}

func TestIsEligible_Spacing(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:  standardRoster(map[int]int{2: 2}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-01-31"),
		PGY4Cap:    4,
	})
	tr := newTrial(p, 0, trialRNG(1, 0))
	a := mustID(t, p, "R2_1")

	// Call on Tuesday 2024-01-02
	tr.commit(day("2024-01-02"), a, mustID(t, p, "R2_2"), noResident, false)

	assert.False(t, tr.isEligible(a, day("2024-01-05"), model.RoleCall), "3 days after call")
	assert.True(t, tr.isEligible(a, day("2024-01-07"), model.RoleCall), "5 days after call")
	assert.False(t, tr.isEligible(a, day("2024-01-05"), model.RoleBackup), "backup 3 days after call")
	assert.True(t, tr.isEligible(a, day("2024-01-06"), model.RoleBackup), "backup 4 days after call")

	// Spacing is checked in both directions
	assert.False(t, tr.isEligible(a, day("2023-12-31"), model.RoleCall))

	b := mustID(t, p, "R2_2")
	assert.True(t, tr.isEligible(b, day("2024-01-05"), model.RoleBackup), "backup 3 days after backup")
	assert.False(t, tr.isEligible(b, day("2024-01-04"), model.RoleBackup), "backup 2 days after backup")
	assert.False(t, tr.isEligible(b, day("2024-01-05"), model.RoleCall), "call 3 days after backup")
}

func TestIsEligible_LeaveAndTemplate(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:  standardRoster(map[int]int{1: 1, 2: 1, 3: 1}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-01-31"),
		PGY4Cap:    4,
		Leave: []model.LeaveRequest{
			{Resident: "R3_1", Dates: model.DateRange{Start: day("2024-01-08"), End: day("2024-01-08")}},
		},
	})
	tr := newTrial(p, 0, trialRNG(1, 0))

	r3 := mustID(t, p, "R3_1")
	assert.True(t, tr.isEligible(r3, day("2024-01-01"), model.RoleCall), "PGY-3 on Monday")
	assert.False(t, tr.isEligible(r3, day("2024-01-08"), model.RoleCall), "on leave")
	assert.False(t, tr.isEligible(r3, day("2024-01-08"), model.RoleBackup), "on leave")
	assert.False(t, tr.isEligible(r3, day("2024-01-02"), model.RoleCall), "PGY-3 on Tuesday")

	r1 := mustID(t, p, "R1_1")
	assert.False(t, tr.isEligible(r1, day("2024-01-02"), model.RoleCall), "interns never take call")
	assert.False(t, tr.isEligible(r1, day("2024-01-02"), model.RoleBackup))
	assert.True(t, tr.isEligible(r1, day("2024-01-02"), model.RoleIntern))

	r2 := mustID(t, p, "R2_1")
	assert.False(t, tr.isEligible(r2, day("2024-01-02"), model.RoleIntern), "only PGY-1 can be intern")
}

func TestIsEligible_FixedDateCollapses(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:  standardRoster(map[int]int{1: 1, 3: 3}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-01-31"),
		PGY4Cap:    4,
		Holidays:   []model.FixedAssignment{{Date: day("2024-01-01"), Call: "R3_1", Backup: "R3_2"}},
	})
	tr := newTrial(p, 0, trialRNG(1, 0))
	holiday := day("2024-01-01")

	assert.True(t, tr.isEligible(mustID(t, p, "R3_1"), holiday, model.RoleCall))
	assert.False(t, tr.isEligible(mustID(t, p, "R3_3"), holiday, model.RoleCall))
	assert.True(t, tr.isEligible(mustID(t, p, "R3_2"), holiday, model.RoleBackup))
	assert.False(t, tr.isEligible(mustID(t, p, "R1_1"), holiday, model.RoleIntern))

	// The holiday is seeded into the spacing logs before the trial reaches it
	assert.False(t, tr.isEligible(mustID(t, p, "R3_1"), day("2024-01-03"), model.RoleCall))
}

func TestIsEligible_PGY4Cap(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:  standardRoster(map[int]int{4: 2}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-01-31"),
		PGY4Cap:    1,
	})
	tr := newTrial(p, 0, trialRNG(1, 0))
	a := mustID(t, p, "R4_1")

	assert.True(t, tr.isEligible(a, day("2024-01-04"), model.RoleCall))
	tr.commit(day("2024-01-04"), a, mustID(t, p, "R4_2"), noResident, false)
	assert.False(t, tr.isEligible(a, day("2024-01-18"), model.RoleCall), "cap reached")
	assert.True(t, tr.isEligible(a, day("2024-01-18"), model.RoleBackup), "cap only applies to call")
}

func TestIsEligible_InternSpacing(t *testing.T) {
	p := mustProblem(t, Config{
		Residents:  standardRoster(map[int]int{1: 1, 3: 4}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-01-31"),
		PGY4Cap:    4,
	})
	tr := newTrial(p, 0, trialRNG(1, 0))
	intern := mustID(t, p, "R1_1")

	tr.commit(day("2024-01-01"), mustID(t, p, "R3_1"), mustID(t, p, "R3_2"), intern, false)
	assert.False(t, tr.isEligible(intern, day("2024-01-02"), model.RoleIntern))
	assert.True(t, tr.isEligible(intern, day("2024-01-03"), model.RoleIntern))
}
