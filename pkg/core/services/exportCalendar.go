package services

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/calendar"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

// ExportCalendar writes the month-by-month calendar workbook for rows
func ExportCalendar(w io.Writer, rows []model.ScheduleRow, logger *zap.Logger) error {
	if len(rows) == 0 {
		return fmt.Errorf("schedule has no rows to export")
	}

	logger.Debug("Building calendar workbook", zap.Int("rows", len(rows)))

	if err := calendar.Write(w, rows); err != nil {
		return fmt.Errorf("failed to write calendar workbook: %w", err)
	}

	logger.Info("Exported calendar", zap.Stringer("dates", scheduleRange(rows)))
	return nil
}
