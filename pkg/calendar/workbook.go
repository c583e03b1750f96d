// Package calendar lays a schedule out as a month-by-month calendar workbook
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// Week layout: every week occupies weekRows rows starting at the day-number row
const (
	weekRows       = 8
	firstWeekRow   = 3
	callOffset     = 3
	internOffset   = 4
	superOffset    = 6
	backupOffset   = 7
	labelColumn    = 15 // O
	columnsPerDay  = 2
	dayColumnWidth = 12
)

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type styles struct {
	header, dayNumber, fixedDay, call, intern, supervisor, backup, label int
}

// Build creates a workbook with one sheet per month covered by rows. Rows need not be sorted.
func Build(rows []model.ScheduleRow) (*excelize.File, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("schedule is empty")
	}

	byDate := make(map[time.Time]model.ScheduleRow, len(rows))
	first, last := model.Day(rows[0].Date), model.Day(rows[0].Date)
	for _, r := range rows {
		d := model.Day(r.Date)
		byDate[d] = r
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	month := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !month.After(last) {
		if err := writeMonth(f, st, month, byDate); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write %s: %w", month.Format("January 2006"), err)
		}
		month = month.AddDate(0, 1, 0)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to w as .xlsx
func Write(w io.Writer, rows []model.ScheduleRow) error {
	f, err := Build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	centre := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	var st styles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.header, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, Alignment: centre}},
		{&st.dayNumber, &excelize.Style{Alignment: centre, Border: border}},
		{&st.fixedDay, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "C00000"}, Alignment: centre, Border: border}},
		{&st.call, &excelize.Style{Alignment: centre, Fill: fill("D9D9D9")}},
		{&st.intern, &excelize.Style{Font: &excelize.Font{Italic: true}, Alignment: centre, Fill: fill("E6E6E6")}},
		{&st.supervisor, &excelize.Style{Alignment: centre, Fill: fill("E2EFDA")}},
		{&st.backup, &excelize.Style{Alignment: centre, Fill: fill("FFF2CC")}},
		{&st.label, &excelize.Style{Font: &excelize.Font{Bold: true}}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return styles{}, fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeMonth(f *excelize.File, st styles, month time.Time, byDate map[time.Time]model.ScheduleRow) error {
	sheet := month.Format("January 2006")
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	lastCol, _ := excelize.ColumnNumberToName(7 * columnsPerDay)
	if err := f.SetColWidth(sheet, "A", lastCol, dayColumnWidth); err != nil {
		return err
	}
	labelCol, _ := excelize.ColumnNumberToName(labelColumn)
	if err := f.SetColWidth(sheet, labelCol, labelCol, 15); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", sheet); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.label); err != nil {
		return err
	}

	for i, name := range weekdayNames {
		col := 1 + i*columnsPerDay
		if err := f.SetCellValue(sheet, cell(col, 2), name); err != nil {
			return err
		}
		if err := f.MergeCell(sheet, cell(col, 2), cell(col+1, 2)); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(col, 2), cell(col+1, 2), st.header); err != nil {
			return err
		}
	}

	daysInMonth := month.AddDate(0, 1, -1).Day()
	lead := int(month.Weekday())
	weeks := (lead + daysInMonth + 6) / 7

	for week := range weeks {
		base := firstWeekRow + week*weekRows
		for _, label := range []struct {
			offset int
			text   string
		}{
			{callOffset, "On Call"},
			{internOffset, "Intern"},
			{superOffset, "Supervising"},
			{backupOffset, "Backup"},
		} {
			if err := f.SetCellValue(sheet, cell(labelColumn, base+label.offset), label.text); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell(labelColumn, base+label.offset), cell(labelColumn, base+label.offset), st.label); err != nil {
				return err
			}
		}
	}

	for dom := 1; dom <= daysInMonth; dom++ {
		date := time.Date(month.Year(), month.Month(), dom, 0, 0, 0, 0, time.UTC)
		slot := lead + dom - 1
		base := firstWeekRow + (slot/7)*weekRows
		col := 1 + (slot%7)*columnsPerDay

		row, scheduled := byDate[date]
		dayStyle := st.dayNumber
		if scheduled && row.Fixed {
			dayStyle = st.fixedDay
		}
		if err := f.SetCellValue(sheet, cell(col, base), dom); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(col, base), cell(col+1, base), dayStyle); err != nil {
			return err
		}
		if !scheduled {
			continue
		}

		for _, entry := range []struct {
			offset int
			name   string
			style  int
		}{
			{callOffset, row.Call, st.call},
			{internOffset, row.Intern, st.intern},
			{superOffset, row.Supervisor, st.supervisor},
			{backupOffset, row.Backup, st.backup},
		} {
			from, to := cell(col, base+entry.offset), cell(col+1, base+entry.offset)
			if err := f.SetCellStyle(sheet, from, to, entry.style); err != nil {
				return err
			}
			if entry.name == "" {
				continue
			}
			if err := f.SetCellValue(sheet, from, entry.name); err != nil {
				return err
			}
			if err := f.MergeCell(sheet, from, to); err != nil {
				return err
			}
		}
	}

	return nil
}
