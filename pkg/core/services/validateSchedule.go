package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

// ValidateScheduleInput is an existing schedule plus the context it must satisfy
type ValidateScheduleInput struct {
	Rows            []model.ScheduleRow
	Residents       []model.Resident
	Leave           []model.LeaveRequest
	SoftConstraints []model.SoftConstraint
	PreviousTail    []model.FixedAssignment
	PGY4Cap         int
}

// ValidateScheduleResult lists broken rules and soft-constraint satisfaction
type ValidateScheduleResult struct {
	Errors          []callscheduler.ValidationError
	SoftConstraints model.SoftConstraintStats
}

// Valid reports whether no hard rule is broken
func (r *ValidateScheduleResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateSchedule checks a schedule, typically one edited by hand after generation
func ValidateSchedule(input ValidateScheduleInput, logger *zap.Logger) (*ValidateScheduleResult, error) {
	if len(input.Rows) == 0 {
		return nil, fmt.Errorf("schedule has no rows: %w", callscheduler.ErrInvalidInput)
	}
	if input.PGY4Cap < 1 {
		return nil, fmt.Errorf("PGY-4 cap must be at least 1, got %d: %w", input.PGY4Cap, callscheduler.ErrInvalidInput)
	}

	logger.Debug("Validating schedule", zap.Int("rows", len(input.Rows)))

	errs := callscheduler.ValidateSchedule(input.Rows, callscheduler.ValidationInput{
		Residents:    input.Residents,
		Leave:        input.Leave,
		PreviousTail: input.PreviousTail,
		PGY4Cap:      input.PGY4Cap,
	})
	for _, e := range errs {
		logger.Warn("Schedule validation error",
			zap.Time("date", e.Date),
			zap.String("rule", e.Rule),
			zap.String("resident", e.Resident),
			zap.String("description", e.Description))
	}

	span := scheduleRange(input.Rows)
	result := &ValidateScheduleResult{
		Errors:          errs,
		SoftConstraints: callscheduler.SoftConstraintStatistics(input.Rows, input.SoftConstraints, span),
	}

	logger.Info("Validated schedule",
		zap.Stringer("dates", span),
		zap.Int("errors", len(errs)),
		zap.Int("soft_violations", result.SoftConstraints.Violated))

	return result, nil
}

// scheduleRange is the span from the earliest to the latest row
func scheduleRange(rows []model.ScheduleRow) model.DateRange {
	span := model.DateRange{Start: model.Day(rows[0].Date), End: model.Day(rows[0].Date)}
	for _, row := range rows[1:] {
		d := model.Day(row.Date)
		if d.Before(span.Start) {
			span.Start = d
		}
		if d.After(span.End) {
			span.End = d
		}
	}
	return span
}
