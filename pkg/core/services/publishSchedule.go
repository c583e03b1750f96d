package services

import (
	"cmp"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

// SchedulePublisher is the Sheets operation needed to publish a schedule
type SchedulePublisher interface {
	PublishSchedule(spreadsheetID, tabTitle string, rows []model.ScheduleRow) error
}

// PublishSchedule writes rows to the configured spreadsheet. The tab is tabTitle, else the
// configured scheduleTab, else the schedule's date range.
func PublishSchedule(
	publisher SchedulePublisher,
	cfg *config.Config,
	rows []model.ScheduleRow,
	tabTitle string,
	logger *zap.Logger,
) (string, error) {
	if cfg.CalendarSheetID == "" {
		return "", fmt.Errorf("calendarSheetID is not configured")
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("schedule has no rows to publish")
	}

	tabTitle = cmp.Or(tabTitle, cfg.ScheduleTab, sheetsclient.TabTitle(scheduleRange(rows)))

	logger.Debug("Publishing schedule",
		zap.String("spreadsheet_id", cfg.CalendarSheetID),
		zap.String("tab", tabTitle),
		zap.Int("rows", len(rows)))

	if err := publisher.PublishSchedule(cfg.CalendarSheetID, tabTitle, rows); err != nil {
		return "", fmt.Errorf("failed to publish schedule: %w", err)
	}

	logger.Info("Published schedule", zap.String("tab", tabTitle))
	return tabTitle, nil
}
