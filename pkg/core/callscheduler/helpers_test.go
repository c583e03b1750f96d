package callscheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

func day(s string) time.Time {
	return model.MustParseDate(s)
}

// standardRoster builds a roster with the given number of residents per PGY, named R<pgy>_<n>
func standardRoster(perPGY map[int]int) []model.Resident {
	var residents []model.Resident
	for pgy := 1; pgy <= 4; pgy++ {
		for i := 1; i <= perPGY[pgy]; i++ {
			residents = append(residents, model.Resident{Name: fmt.Sprintf("R%d_%d", pgy, i), PGY: pgy})
		}
	}
	return residents
}

// stressConfig is the 6/6/6/4 four-month scenario with three holidays
func stressConfig() Config {
	return Config{
		Residents:  standardRoster(map[int]int{1: 6, 2: 6, 3: 6, 4: 4}),
		BlockStart: day("2024-01-01"),
		BlockEnd:   day("2024-04-30"),
		Holidays: []model.FixedAssignment{
			{Date: day("2024-01-01"), Call: "R4_1", Backup: "R4_2"},
			{Date: day("2024-01-15"), Call: "R3_1", Backup: "R3_2"},
			{Date: day("2024-02-19"), Call: "R3_2", Backup: "R3_3"},
		},
		PGY4Cap: 6,
		Trials:  200,
		Workers: 4,
		Seed:    42,
		Logger:  zap.NewNop(),
	}
}

func mustProblem(t *testing.T, cfg Config) *problem {
	t.Helper()
	p, err := newProblem(cfg, zap.NewNop())
	require.NoError(t, err)
	return p
}

func mustID(t *testing.T, p *problem, name string) residentID {
	t.Helper()
	id, ok := p.roster.lookup(name)
	require.True(t, ok, "resident %s not on roster", name)
	return id
}
