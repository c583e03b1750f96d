package sheetsclient

import (
	"fmt"
	"slices"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

const sheetDateLayout = "Mon Jan 02 2006"

// ScheduleColumns are the columns the publisher owns. Any other column in an existing tab
// (notes, swaps) is left alone.
var ScheduleColumns = []string{"Date", "Call", "Backup", "Intern", "Supervisor"}

// TabTitle names a block's tab by its date range, e.g. "Mon Jul 01 2024 - Thu Oct 31 2024"
func TabTitle(block model.DateRange) string {
	return fmt.Sprintf("%s - %s", block.Start.Format(sheetDateLayout), block.End.Format(sheetDateLayout))
}

// PublishSchedule writes rows to the named tab, creating it if needed
func (c *Client) PublishSchedule(spreadsheetID, tabTitle string, rows []model.ScheduleRow) error {
	titles, err := c.SheetTitles(spreadsheetID)
	if err != nil {
		return err
	}

	var values [][]interface{}
	if slices.Contains(titles, tabTitle) {
		existing, err := c.GetValues(spreadsheetID, fmt.Sprintf("'%s'!A1:ZZ", tabTitle))
		if err != nil {
			return fmt.Errorf("failed to read existing tab data: %w", err)
		}
		values, err = MergeScheduleValues(existing, rows)
		if err != nil {
			return err
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return err
		}
		values = BuildScheduleValues(rows)
	}

	if err := c.UpdateValues(spreadsheetID, fmt.Sprintf("'%s'!A1", tabTitle), values); err != nil {
		return fmt.Errorf("failed to write schedule to tab %q: %w", tabTitle, err)
	}

	return nil
}

func scheduleCells(row model.ScheduleRow) []interface{} {
	return []interface{}{row.Date.Format(sheetDateLayout), row.Call, row.Backup, row.Intern, row.Supervisor}
}

// BuildScheduleValues lays out a fresh tab: header then one line per date
func BuildScheduleValues(rows []model.ScheduleRow) [][]interface{} {
	header := make([]interface{}, len(ScheduleColumns))
	for i, col := range ScheduleColumns {
		header[i] = col
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, header)
	for _, row := range rows {
		values = append(values, scheduleCells(row))
	}
	return values
}

// MergeScheduleValues overwrites the schedule columns of an existing tab, keeping every
// other column's values on the same line. Lines beyond the new schedule have their schedule
// cells blanked.
func MergeScheduleValues(existing [][]interface{}, rows []model.ScheduleRow) ([][]interface{}, error) {
	if len(existing) == 0 {
		return BuildScheduleValues(rows), nil
	}

	header := existing[0]
	cols := make([]int, len(ScheduleColumns))
	for i, name := range ScheduleColumns {
		cols[i] = findColumnIndex(header, name)
		if cols[i] == -1 {
			return nil, fmt.Errorf("existing tab missing required column %q", name)
		}
	}

	lines := max(len(existing)-1, len(rows))
	values := make([][]interface{}, 0, lines+1)
	values = append(values, header)

	for i := range lines {
		line := make([]interface{}, len(header))
		for j := range line {
			line[j] = ""
		}
		if i+1 < len(existing) {
			copy(line, existing[i+1])
		}

		cells := make([]interface{}, len(ScheduleColumns))
		for j := range cells {
			cells[j] = ""
		}
		if i < len(rows) {
			cells = scheduleCells(rows[i])
		}
		for j, col := range cols {
			line[col] = cells[j]
		}

		values = append(values, line)
	}

	return values, nil
}

// findColumnIndex finds the index of a column by its header name
func findColumnIndex(header []interface{}, columnName string) int {
	for i, cell := range header {
		if str, ok := cell.(string); ok && str == columnName {
			return i
		}
	}
	return -1
}
