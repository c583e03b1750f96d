package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

func TestGenerateSchedule_BlockOneWithoutStore(t *testing.T) {
	block, err := model.BlockFor(2024, 1)
	require.NoError(t, err)

	result, err := GenerateSchedule(context.Background(), nil, GenerateScheduleInput{
		Block:     block,
		Residents: testRoster(),
		Holidays: []model.FixedAssignment{
			{Date: model.MustParseDate("2024-07-04"), Call: "R3_1", Backup: "R3_2"},
		},
	}, testConfig(), zap.NewNop())
	require.NoError(t, err)

	rows := result.Schedule.Rows
	require.Len(t, rows, 123)
	assert.Equal(t, block.Start, rows[0].Date)
	assert.Equal(t, block.End, rows[len(rows)-1].Date)
	assert.Empty(t, result.Schedule.ValidationErrors)
	assert.Empty(t, result.BlockID)

	assert.Len(t, result.Statistics, len(testRoster()))
	assert.Equal(t, result.Statistics, result.RunningTotals, "no carry-in for block 1")
}

func TestGenerateSchedule_SuppliedPreviousStatistics(t *testing.T) {
	block, err := model.BlockFor(2024, 1)
	require.NoError(t, err)

	result, err := GenerateSchedule(context.Background(), nil, GenerateScheduleInput{
		Block:     block,
		Residents: testRoster(),
		PreviousStatistics: []callscheduler.ResidentStatistics{
			{Resident: "R2_1", PGY: 1, Counts: model.CallCounts{Weekday: 20, Saturday: 4, Total: 24}},
			{Resident: "R2_1", PGY: 2, Counts: model.CallCounts{Sunday: 1, Total: 1}},
		},
	}, testConfig(), zap.NewNop())
	require.NoError(t, err)

	// Intern tallies reach the running totals even though call fairness ignores them
	for i, s := range result.Statistics {
		running := result.RunningTotals[i]
		if s.Resident != "R2_1" {
			assert.Equal(t, s.Counts, running.Counts)
			continue
		}
		assert.Equal(t, s.Counts.Weekday+20, running.Counts.Weekday)
		assert.Equal(t, s.Counts.Sunday+1, running.Counts.Sunday)
		assert.Equal(t, s.Counts.Total+25, running.Counts.Total)
	}
}

func TestGenerateSchedule_RequiresPreviousTail(t *testing.T) {
	block, err := model.BlockFor(2024, 2)
	require.NoError(t, err)

	t.Run("no store and no tail", func(t *testing.T) {
		_, err := GenerateSchedule(context.Background(), nil, GenerateScheduleInput{
			Block:     block,
			Residents: testRoster(),
		}, testConfig(), zap.NewNop())
		require.Error(t, err)
		assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
		assert.Contains(t, err.Error(), "2024-10-28")
	})

	t.Run("partial tail", func(t *testing.T) {
		_, err := GenerateSchedule(context.Background(), nil, GenerateScheduleInput{
			Block:     block,
			Residents: testRoster(),
			PreviousTail: []model.FixedAssignment{
				{Date: model.MustParseDate("2024-10-31"), Call: "R3_3", Backup: "R3_4"},
			},
		}, testConfig(), zap.NewNop())
		require.Error(t, err)
		assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
		assert.NotContains(t, err.Error(), "2024-10-31")
	})

	t.Run("previous block not stored", func(t *testing.T) {
		_, err := GenerateSchedule(context.Background(), newMemoryStore(), GenerateScheduleInput{
			Block:     block,
			Residents: testRoster(),
		}, testConfig(), zap.NewNop())
		assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
	})
}

func TestGenerateSchedule_BlockTwoFromStore(t *testing.T) {
	store := newMemoryStore()
	storeBlockOne(store)

	block, err := model.BlockFor(2024, 2)
	require.NoError(t, err)

	result, err := GenerateSchedule(context.Background(), store, GenerateScheduleInput{
		Block:     block,
		Residents: testRoster(),
		Persist:   true,
	}, testConfig(), zap.NewNop())
	require.NoError(t, err)

	// Carry-in from block 1 is added to the running totals only
	for i, s := range result.Statistics {
		running := result.RunningTotals[i]
		switch s.Resident {
		case "R2_1":
			assert.Equal(t, s.Counts.Total+15, running.Counts.Total)
			assert.Equal(t, s.Counts.Fridays+3, running.Counts.Fridays)
		case "R3_1":
			assert.Equal(t, s.Counts.Saturday+3, running.Counts.Saturday)
		default:
			assert.Equal(t, s.Counts, running.Counts)
		}
	}

	// Tail residents keep their spacing into the new block
	first := result.Schedule.Rows[0]
	assert.Equal(t, block.Start, first.Date)
	assert.NotContains(t, []string{"R2_1", "R2_2", "R2_3", "R2_4"}, first.Call)

	// Roster and block are persisted
	assert.Len(t, store.rosters[2024], len(testRoster()))
	require.NotEmpty(t, result.BlockID)
	saved, err := store.GetBlock(context.Background(), 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, result.BlockID, saved.ID)
	assert.Equal(t, "2024-11-01", saved.Start)
	assert.Equal(t, "2025-02-28", saved.End)
	assert.Len(t, store.entries[result.BlockID], len(result.Schedule.Rows))
	assert.Len(t, store.stats[result.BlockID], len(testRoster()))
}

func TestGenerateSchedule_RosterFromStore(t *testing.T) {
	block, err := model.BlockFor(2024, 1)
	require.NoError(t, err)

	t.Run("empty roster", func(t *testing.T) {
		_, err := GenerateSchedule(context.Background(), newMemoryStore(), GenerateScheduleInput{Block: block}, testConfig(), zap.NewNop())
		assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
	})

	t.Run("store error", func(t *testing.T) {
		store := newMemoryStore()
		store.getRosterErr = errors.New("connection refused")
		_, err := GenerateSchedule(context.Background(), store, GenerateScheduleInput{Block: block}, testConfig(), zap.NewNop())
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("no roster and no store", func(t *testing.T) {
		_, err := GenerateSchedule(context.Background(), nil, GenerateScheduleInput{Block: block}, testConfig(), zap.NewNop())
		assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
	})

	t.Run("persist needs store", func(t *testing.T) {
		_, err := GenerateSchedule(context.Background(), nil, GenerateScheduleInput{Block: block, Residents: testRoster(), Persist: true}, testConfig(), zap.NewNop())
		assert.ErrorContains(t, err, "requires a database")
	})
}

func TestGenerateSchedule_SaveError(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("disk full")

	block, err := model.BlockFor(2024, 1)
	require.NoError(t, err)

	_, err = GenerateSchedule(context.Background(), store, GenerateScheduleInput{
		Block:     block,
		Residents: testRoster(),
		Persist:   true,
	}, testConfig(), zap.NewNop())
	assert.ErrorContains(t, err, "disk full")
}

func TestGenerateSchedule_RecurringPreferencesCounted(t *testing.T) {
	block, err := model.BlockFor(2024, 1)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.RecurringPreferences = []config.RecurringPreference{
		{Resident: "R2_1", RRule: "FREQ=WEEKLY;BYDAY=TU"},
	}

	result, err := GenerateSchedule(context.Background(), nil, GenerateScheduleInput{
		Block:     block,
		Residents: testRoster(),
	}, cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 18, result.Schedule.SoftConstraints.Total)
}

func TestExpandRecurringPreferences(t *testing.T) {
	block := model.DateRange{Start: model.MustParseDate("2024-07-01"), End: model.MustParseDate("2024-10-31")}

	soft, err := expandRecurringPreferences([]config.RecurringPreference{
		{Resident: "R2_1", RRule: "FREQ=WEEKLY;BYDAY=TU"},
		{Resident: "R3_2", RRule: "FREQ=MONTHLY;BYMONTHDAY=1"},
	}, block, zap.NewNop())
	require.NoError(t, err)

	var tuesdays, firsts []model.SoftConstraint
	for _, s := range soft {
		assert.Equal(t, s.Dates.Start, s.Dates.End)
		switch s.Resident {
		case "R2_1":
			tuesdays = append(tuesdays, s)
		case "R3_2":
			firsts = append(firsts, s)
		}
	}

	require.Len(t, tuesdays, 18)
	assert.Equal(t, model.MustParseDate("2024-07-02"), tuesdays[0].Dates.Start)
	assert.Equal(t, model.MustParseDate("2024-10-29"), tuesdays[17].Dates.Start)

	require.Len(t, firsts, 4)
	assert.Equal(t, model.MustParseDate("2024-07-01"), firsts[0].Dates.Start)

	_, err = expandRecurringPreferences([]config.RecurringPreference{{Resident: "R2_1", RRule: "FREQ=SOMETIMES"}}, block, zap.NewNop())
	assert.Error(t, err)
}

func TestTailFromRows(t *testing.T) {
	block, err := model.BlockFor(2024, 3)
	require.NoError(t, err)

	var rows []model.ScheduleRow
	for _, d := range (model.DateRange{Start: model.MustParseDate("2025-02-20"), End: model.MustParseDate("2025-02-28")}).Days() {
		rows = append(rows, model.ScheduleRow{Date: d, Call: "C", Backup: "B"})
	}

	tail := tailFromRows(rows, block)
	require.Len(t, tail, 4)
	assert.Equal(t, model.MustParseDate("2025-02-25"), tail[0].Date)
	assert.Equal(t, model.MustParseDate("2025-02-28"), tail[3].Date)
	assert.Empty(t, missingTailDates(tail, block))
	assert.Len(t, missingTailDates(tail[1:], block), 1)
}
