package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
	"github.com/jakechorley/call-rota/pkg/db"
)

// ScheduleReader is the read side of the store used to reconstruct earlier blocks
type ScheduleReader interface {
	GetBlock(ctx context.Context, academicYear, number int) (*db.Block, error)
	GetBlocks(ctx context.Context, academicYear int) ([]db.Block, error)
	GetScheduleEntries(ctx context.Context, blockID string) ([]db.ScheduleEntry, error)
	GetCallStatistics(ctx context.Context, blockID string) ([]db.CallStatistic, error)
}

// expandRecurringPreferences turns each RRULE preference into single-day soft constraints
// inside the block. The rule's DTSTART is pinned to the block start.
func expandRecurringPreferences(prefs []config.RecurringPreference, block model.DateRange, logger *zap.Logger) ([]model.SoftConstraint, error) {
	var out []model.SoftConstraint

	for i, pref := range prefs {
		rule, err := rrule.StrToRRule(pref.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for recurring preference %d: %w", i, err)
		}

		start := model.Day(block.Start)
		end := model.Day(block.End)
		rule.DTStart(start)

		occurrences := rule.Between(start, end, true)
		for _, occurrence := range occurrences {
			date := model.Day(occurrence)
			out = append(out, model.SoftConstraint{
				Resident: pref.Resident,
				Dates:    model.DateRange{Start: date, End: date},
			})
		}

		logger.Debug("Expanded recurring preference",
			zap.String("resident", pref.Resident),
			zap.String("rrule", pref.RRule),
			zap.Int("occurrences", len(occurrences)))
	}

	return out, nil
}

// tailFromRows picks the rows that fall on the block's tail dates
func tailFromRows(rows []model.ScheduleRow, block model.Block) []model.FixedAssignment {
	tailDates := block.TailDates()
	var tail []model.FixedAssignment
	for _, row := range rows {
		date := model.Day(row.Date)
		if slices.ContainsFunc(tailDates, date.Equal) {
			tail = append(tail, model.FixedAssignment{Date: date, Call: row.Call, Backup: row.Backup})
		}
	}
	return tail
}

// missingTailDates lists the tail dates not covered by tail
func missingTailDates(tail []model.FixedAssignment, block model.Block) []time.Time {
	var missing []time.Time
	for _, d := range block.TailDates() {
		if !slices.ContainsFunc(tail, func(f model.FixedAssignment) bool { return model.Day(f.Date).Equal(d) }) {
			missing = append(missing, d)
		}
	}
	return missing
}

// loadPreviousTail reads the last days of the preceding block from the store
func loadPreviousTail(ctx context.Context, store ScheduleReader, block model.Block) ([]model.FixedAssignment, error) {
	previous, err := store.GetBlock(ctx, block.AcademicYear, block.Number-1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch previous block: %w", err)
	}

	entries, err := store.GetScheduleEntries(ctx, previous.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch previous block schedule: %w", err)
	}

	rows, err := db.EntriesToRows(entries)
	if err != nil {
		return nil, err
	}

	return tailFromRows(rows, block), nil
}

// loadCarryIn collects the stored statistics of every earlier block in the same academic year
func loadCarryIn(ctx context.Context, store ScheduleReader, block model.Block) ([]callscheduler.ResidentStatistics, error) {
	blocks, err := store.GetBlocks(ctx, block.AcademicYear)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blocks: %w", err)
	}

	var stats []db.CallStatistic
	for _, b := range blocks {
		if b.Number >= block.Number {
			continue
		}
		blockStats, err := store.GetCallStatistics(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch statistics for block %d: %w", b.Number, err)
		}
		stats = append(stats, blockStats...)
	}

	return db.StatisticsToModel(stats), nil
}

// BlockDates returns the three blocks of an academic year
func BlockDates(academicYear int) []model.Block {
	return model.AcademicYearBlocks(academicYear)
}
