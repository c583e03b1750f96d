package services

import (
	"context"
	"fmt"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/core/model"
	"github.com/jakechorley/call-rota/pkg/db"
)

// testRoster builds six PGY-1, PGY-2 and PGY-3 residents and four PGY-4s named R<pgy>_<n>
func testRoster() []model.Resident {
	var residents []model.Resident
	for pgy, n := range []int{1: 6, 2: 6, 3: 6, 4: 4} {
		for i := 1; i <= n; i++ {
			residents = append(residents, model.Resident{Name: fmt.Sprintf("R%d_%d", pgy, i), PGY: pgy})
		}
	}
	return residents
}

func testConfig() *config.Config {
	return &config.Config{
		AcademicYearStart: 2024,
		Scheduler: config.SchedulerConfig{
			Trials:  200,
			Workers: 4,
			Seed:    7,
			PGY4Cap: 6,
		},
		CalendarSheetID:  "sheet-id",
		GmailUserID:      "me",
		LeaveLabel:       "Leave",
		LeaveMaxMessages: 10,
	}
}

// memoryStore implements GenerateScheduleStore for testing
type memoryStore struct {
	rosters map[int][]db.Resident
	blocks  []db.Block
	entries map[string][]db.ScheduleEntry
	stats   map[string][]db.CallStatistic

	getRosterErr error
	saveErr      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rosters: make(map[int][]db.Resident),
		entries: make(map[string][]db.ScheduleEntry),
		stats:   make(map[string][]db.CallStatistic),
	}
}

func (m *memoryStore) GetRoster(ctx context.Context, academicYear int) ([]db.Resident, error) {
	if m.getRosterErr != nil {
		return nil, m.getRosterErr
	}
	return m.rosters[academicYear], nil
}

func (m *memoryStore) ReplaceRoster(ctx context.Context, academicYear int, residents []db.Resident) error {
	m.rosters[academicYear] = residents
	return nil
}

func (m *memoryStore) GetBlock(ctx context.Context, academicYear, number int) (*db.Block, error) {
	for i := range m.blocks {
		if m.blocks[i].AcademicYear == academicYear && m.blocks[i].Number == number {
			return &m.blocks[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memoryStore) GetBlocks(ctx context.Context, academicYear int) ([]db.Block, error) {
	var out []db.Block
	for _, b := range m.blocks {
		if b.AcademicYear == academicYear {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveBlockSchedule(ctx context.Context, block *db.Block, entries []db.ScheduleEntry, stats []db.CallStatistic) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.blocks = append(m.blocks, *block)
	m.entries[block.ID] = entries
	m.stats[block.ID] = stats
	return nil
}

func (m *memoryStore) GetScheduleEntries(ctx context.Context, blockID string) ([]db.ScheduleEntry, error) {
	return m.entries[blockID], nil
}

func (m *memoryStore) GetCallStatistics(ctx context.Context, blockID string) ([]db.CallStatistic, error) {
	return m.stats[blockID], nil
}

// storeBlockOne seeds the store with the end of a generated block 1 for academic year 2024
func storeBlockOne(m *memoryStore) {
	m.blocks = append(m.blocks, db.Block{ID: "b1", AcademicYear: 2024, Number: 1, Start: "2024-07-01", End: "2024-10-31"})
	m.entries["b1"] = []db.ScheduleEntry{
		{ID: "e0", BlockID: "b1", Date: "2024-10-27", Call: "R2_5", Backup: "R2_6"},
		{ID: "e1", BlockID: "b1", Date: "2024-10-28", Call: "R3_1", Backup: "R3_2"},
		{ID: "e2", BlockID: "b1", Date: "2024-10-29", Call: "R2_1", Backup: "R2_2"},
		{ID: "e3", BlockID: "b1", Date: "2024-10-30", Call: "R2_3", Backup: "R2_4"},
		{ID: "e4", BlockID: "b1", Date: "2024-10-31", Call: "R3_3", Backup: "R3_4"},
	}
	m.stats["b1"] = []db.CallStatistic{
		{ID: "s1", BlockID: "b1", Resident: "R2_1", PGY: 2, Weekday: 10, Fridays: 3, Sunday: 2, Total: 15},
		{ID: "s2", BlockID: "b1", Resident: "R3_1", PGY: 3, Weekday: 8, Saturday: 3, Total: 11},
	}
}
