package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

// ResidentsFromModel converts a roster into records for the given academic year
func ResidentsFromModel(academicYear int, residents []model.Resident) []Resident {
	out := make([]Resident, 0, len(residents))
	for _, r := range residents {
		rec := Resident{
			ID:           uuid.New().String(),
			AcademicYear: academicYear,
			Name:         r.Name,
			PGY:          r.PGY,
		}
		if r.Transition != nil {
			rec.TransitionDate = r.Transition.Date.Format(model.DateLayout)
			rec.TransitionPGY = r.Transition.PGY
		}
		out = append(out, rec)
	}
	return out
}

// ResidentsToModel converts roster records back into residents
func ResidentsToModel(records []Resident) ([]model.Resident, error) {
	out := make([]model.Resident, 0, len(records))
	for _, rec := range records {
		r := model.Resident{Name: rec.Name, PGY: rec.PGY}
		if rec.TransitionDate != "" {
			date, err := time.Parse(model.DateLayout, rec.TransitionDate)
			if err != nil {
				return nil, fmt.Errorf("resident %s has invalid transition date: %w", rec.Name, err)
			}
			r.Transition = &model.Transition{Date: date, PGY: rec.TransitionPGY}
		}
		out = append(out, r)
	}
	return out, nil
}

// EntriesFromRows converts schedule rows into records belonging to blockID
func EntriesFromRows(blockID string, rows []model.ScheduleRow) []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ScheduleEntry{
			ID:         uuid.New().String(),
			BlockID:    blockID,
			Date:       row.Date.Format(model.DateLayout),
			Call:       row.Call,
			Backup:     row.Backup,
			Intern:     row.Intern,
			Supervisor: row.Supervisor,
			Fixed:      row.Fixed,
		})
	}
	return out
}

// EntriesToRows converts stored records back into schedule rows
func EntriesToRows(entries []ScheduleEntry) ([]model.ScheduleRow, error) {
	out := make([]model.ScheduleRow, 0, len(entries))
	for _, e := range entries {
		date, err := time.Parse(model.DateLayout, e.Date)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %s has invalid date: %w", e.ID, err)
		}
		out = append(out, model.ScheduleRow{
			Date:       date,
			Call:       e.Call,
			Backup:     e.Backup,
			Intern:     e.Intern,
			Supervisor: e.Supervisor,
			Fixed:      e.Fixed,
		})
	}
	return out, nil
}

// StatisticsFromModel converts a block's (not running) statistics into records
func StatisticsFromModel(blockID string, stats []callscheduler.ResidentStatistics) []CallStatistic {
	out := make([]CallStatistic, 0, len(stats))
	for _, s := range stats {
		out = append(out, CallStatistic{
			ID:       uuid.New().String(),
			BlockID:  blockID,
			Resident: s.Resident,
			PGY:      s.PGY,
			Weekday:  s.Counts.Weekday,
			Fridays:  s.Counts.Fridays,
			Saturday: s.Counts.Saturday,
			Sunday:   s.Counts.Sunday,
			Total:    s.Counts.Total,
		})
	}
	return out
}

// StatisticsToModel converts stored records back into per-block statistics
func StatisticsToModel(stats []CallStatistic) []callscheduler.ResidentStatistics {
	out := make([]callscheduler.ResidentStatistics, 0, len(stats))
	for _, s := range stats {
		out = append(out, callscheduler.ResidentStatistics{
			Resident: s.Resident,
			PGY:      s.PGY,
			Counts: model.CallCounts{
				Weekday:  s.Weekday,
				Fridays:  s.Fridays,
				Saturday: s.Saturday,
				Sunday:   s.Sunday,
				Total:    s.Total,
			},
		})
	}
	return out
}
