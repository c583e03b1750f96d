package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
	"github.com/jakechorley/call-rota/pkg/db"
)

// GenerateScheduleStore defines the database operations needed for generating a block
type GenerateScheduleStore interface {
	ScheduleReader
	GetRoster(ctx context.Context, academicYear int) ([]db.Resident, error)
	ReplaceRoster(ctx context.Context, academicYear int, residents []db.Resident) error
	SaveBlockSchedule(ctx context.Context, block *db.Block, entries []db.ScheduleEntry, stats []db.CallStatistic) error
}

// GenerateScheduleInput holds the inputs for one block. Residents, PreviousTail and
// PreviousStatistics fall back to the store when left nil.
type GenerateScheduleInput struct {
	Block           model.Block
	Residents       []model.Resident
	Leave           []model.LeaveRequest
	SoftConstraints []model.SoftConstraint
	Holidays        []model.FixedAssignment
	PreviousTail    []model.FixedAssignment

	// PreviousStatistics are the statistics of earlier blocks in the year, one row per block and resident
	PreviousStatistics []callscheduler.ResidentStatistics

	// Persist saves the roster and the generated block to the store
	Persist bool
}

// GenerateScheduleResult contains the generated block and its statistics
type GenerateScheduleResult struct {
	BlockID  string
	Block    model.Block
	Schedule *callscheduler.Result

	// Statistics are the block's own counts, RunningTotals include carried-in counts
	Statistics    []callscheduler.ResidentStatistics
	RunningTotals []callscheduler.ResidentStatistics
}

// GenerateSchedule builds the scheduler inputs for a block, runs it, and optionally
// persists the outcome. store may be nil when every input is supplied.
func GenerateSchedule(
	ctx context.Context,
	store GenerateScheduleStore,
	input GenerateScheduleInput,
	cfg *config.Config,
	logger *zap.Logger,
) (*GenerateScheduleResult, error) {
	block := input.Block
	logger.Debug("Starting generateSchedule",
		zap.String("block", block.Name()),
		zap.Stringer("dates", block.Range()),
		zap.Bool("persist", input.Persist))

	if input.Persist && store == nil {
		return nil, errors.New("persisting a schedule requires a database")
	}

	// Step 1: Resolve roster
	residents := input.Residents
	if len(residents) == 0 {
		if store == nil {
			return nil, fmt.Errorf("no roster supplied and no database configured: %w", callscheduler.ErrInvalidInput)
		}
		logger.Debug("Fetching roster", zap.Int("academic_year", block.AcademicYear))
		records, err := store.GetRoster(ctx, block.AcademicYear)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch roster: %w", err)
		}
		residents, err = db.ResidentsToModel(records)
		if err != nil {
			return nil, err
		}
		if len(residents) == 0 {
			return nil, fmt.Errorf("no roster stored for academic year %d: %w", block.AcademicYear, callscheduler.ErrInvalidInput)
		}
	}
	logger.Debug("Using roster", zap.Int("residents", len(residents)))

	// Step 2: Resolve previous tail
	tail := input.PreviousTail
	if tail == nil && block.RequiresPrevious && store != nil {
		logger.Debug("Fetching previous block tail")
		var err error
		tail, err = loadPreviousTail(ctx, store, block)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
	}
	if block.RequiresPrevious {
		if missing := missingTailDates(tail, block); len(missing) > 0 {
			dates := make([]string, len(missing))
			for i, d := range missing {
				dates[i] = d.Format(model.DateLayout)
			}
			return nil, fmt.Errorf("%s needs the previous block's last %d days, missing %s: %w",
				block.Name(), model.TailDays, strings.Join(dates, ", "), callscheduler.ErrInvalidInput)
		}
	}

	// Step 3: Resolve carry-in counts. Intern tallies count towards running totals only.
	previousStats := input.PreviousStatistics
	if previousStats == nil && store != nil && block.Number > 1 {
		logger.Debug("Fetching carry-in counts")
		var err error
		previousStats, err = loadCarryIn(ctx, store, block)
		if err != nil {
			return nil, err
		}
	}
	previousTotals, previousCalls := callscheduler.SumStatistics(previousStats)
	logger.Debug("Carry-in counts",
		zap.Int("residents", len(previousTotals)),
		zap.Int("call_residents", len(previousCalls)))

	// Step 4: Expand recurring preferences
	soft := input.SoftConstraints
	recurring, err := expandRecurringPreferences(cfg.RecurringPreferences, block.Range(), logger)
	if err != nil {
		return nil, err
	}
	soft = append(soft[:len(soft):len(soft)], recurring...)

	// Step 5: Run scheduler
	fairnessWeight, softWeight := cfg.Scheduler.Weights()
	schedule, err := callscheduler.Generate(ctx, callscheduler.Config{
		Residents:            residents,
		Leave:                input.Leave,
		SoftConstraints:      soft,
		Holidays:             input.Holidays,
		PreviousTail:         tail,
		BlockStart:           block.Start,
		BlockEnd:             block.End,
		PGY4Cap:              cfg.Scheduler.PGY4Cap,
		PreviousCounts:       previousCalls,
		FairnessWeight:       fairnessWeight,
		SoftConstraintWeight: softWeight,
		Trials:               cfg.Scheduler.Trials,
		Workers:              cfg.Scheduler.Workers,
		TimeBudget:           cfg.Scheduler.Budget(),
		Seed:                 cfg.Scheduler.Seed,
		Logger:               logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", block.Name(), err)
	}

	// Step 6: Statistics
	stats := callscheduler.CallStatistics(schedule.Rows, residents, block.End)
	result := &GenerateScheduleResult{
		Block:         block,
		Schedule:      schedule,
		Statistics:    stats,
		RunningTotals: callscheduler.RunningTotals(stats, previousTotals),
	}

	logger.Info("Generated schedule",
		zap.String("block", block.Name()),
		zap.Int("days", len(schedule.Rows)),
		zap.Int("trial", schedule.Best.Index),
		zap.Int("soft_violations", schedule.SoftConstraints.Violated),
		zap.Int("validation_errors", len(schedule.ValidationErrors)))

	if !input.Persist {
		return result, nil
	}

	// Step 7: Persist
	if len(input.Residents) > 0 {
		logger.Debug("Saving roster", zap.Int("academic_year", block.AcademicYear))
		if err := store.ReplaceRoster(ctx, block.AcademicYear, db.ResidentsFromModel(block.AcademicYear, residents)); err != nil {
			return nil, fmt.Errorf("failed to save roster: %w", err)
		}
	}

	record := &db.Block{
		ID:           uuid.New().String(),
		AcademicYear: block.AcademicYear,
		Number:       block.Number,
		Start:        block.Start.Format(model.DateLayout),
		End:          block.End.Format(model.DateLayout),
		Seed:         schedule.Seed,
		TrialIndex:   schedule.Best.Index,
		Fairness:     schedule.Best.Fairness,
		Violations:   float64(schedule.Best.Violations),
	}
	entries := db.EntriesFromRows(record.ID, schedule.Rows)
	if err := store.SaveBlockSchedule(ctx, record, entries, db.StatisticsFromModel(record.ID, stats)); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}
	result.BlockID = record.ID

	logger.Info("Saved schedule", zap.String("block_id", record.ID))

	return result, nil
}
