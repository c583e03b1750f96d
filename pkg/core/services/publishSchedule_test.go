package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// mockPublisher implements SchedulePublisher for testing
type mockPublisher struct {
	spreadsheetID string
	tab           string
	rows          []model.ScheduleRow
	err           error
}

func (m *mockPublisher) PublishSchedule(spreadsheetID, tabTitle string, rows []model.ScheduleRow) error {
	if m.err != nil {
		return m.err
	}
	m.spreadsheetID = spreadsheetID
	m.tab = tabTitle
	m.rows = rows
	return nil
}

func sampleRows() []model.ScheduleRow {
	return []model.ScheduleRow{
		{Date: model.MustParseDate("2024-07-01"), Call: "R3_1", Backup: "R3_2"},
		{Date: model.MustParseDate("2024-07-02"), Call: "R2_1", Backup: "R2_2", Supervisor: "R3_3"},
	}
}

func TestPublishSchedule(t *testing.T) {
	t.Run("tab named after dates", func(t *testing.T) {
		publisher := &mockPublisher{}
		tab, err := PublishSchedule(publisher, testConfig(), sampleRows(), "", zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, "Mon Jul 01 2024 - Tue Jul 02 2024", tab)
		assert.Equal(t, "sheet-id", publisher.spreadsheetID)
		assert.Len(t, publisher.rows, 2)
	})

	t.Run("configured tab", func(t *testing.T) {
		cfg := testConfig()
		cfg.ScheduleTab = "Current"
		publisher := &mockPublisher{}

		tab, err := PublishSchedule(publisher, cfg, sampleRows(), "", zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "Current", tab)

		tab, err = PublishSchedule(publisher, cfg, sampleRows(), "Override", zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "Override", tab)
	})

	t.Run("no spreadsheet configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.CalendarSheetID = ""
		_, err := PublishSchedule(&mockPublisher{}, cfg, sampleRows(), "", zap.NewNop())
		assert.ErrorContains(t, err, "calendarSheetID")
	})

	t.Run("api error", func(t *testing.T) {
		_, err := PublishSchedule(&mockPublisher{err: errors.New("quota exceeded")}, testConfig(), sampleRows(), "", zap.NewNop())
		assert.ErrorContains(t, err, "quota exceeded")
	})
}

func TestExportCalendar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCalendar(&buf, sampleRows(), zap.NewNop()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"July 2024"}, f.GetSheetList())

	assert.Error(t, ExportCalendar(&buf, nil, zap.NewNop()))
}
