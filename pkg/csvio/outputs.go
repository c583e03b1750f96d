package csvio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

var scheduleHeader = []string{"Date", "Call", "Backup", "Intern", "Supervisor", "Fixed"}

// WriteSchedule writes one row per scheduled date
func WriteSchedule(w io.Writer, rows []model.ScheduleRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		fixed := ""
		if r.Fixed {
			fixed = "yes"
		}
		records[i] = []string{r.Date.Format(model.DateLayout), r.Call, r.Backup, r.Intern, r.Supervisor, fixed}
	}
	return writeAll(w, scheduleHeader, records)
}

// ReadSchedule reads a schedule written by WriteSchedule. Intern, Supervisor and Fixed are optional.
func ReadSchedule(r io.Reader) ([]model.ScheduleRow, error) {
	t, err := readTable(r, "Date", "Call", "Backup")
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	rows := make([]model.ScheduleRow, 0, len(t.rows))
	for i, row := range t.rows {
		date, err := t.date(row, "Date")
		if err != nil {
			return nil, fmt.Errorf("schedule row %d: %w", i+2, err)
		}
		fixed := strings.ToLower(t.get(row, "Fixed"))
		rows = append(rows, model.ScheduleRow{
			Date:       date,
			Call:       t.get(row, "Call"),
			Backup:     t.get(row, "Backup"),
			Intern:     t.get(row, "Intern"),
			Supervisor: t.get(row, "Supervisor"),
			Fixed:      fixed == "yes" || fixed == "true" || fixed == "1",
		})
	}
	return rows, nil
}

var statisticsHeader = []string{"Resident", "PGY", "Weekday", "Fridays", "Saturday", "Sunday", "Total"}

// WriteStatistics writes per-resident call statistics
func WriteStatistics(w io.Writer, stats []callscheduler.ResidentStatistics) error {
	records := make([][]string, len(stats))
	for i, s := range stats {
		c := s.Counts
		records[i] = []string{
			s.Resident,
			strconv.Itoa(s.PGY),
			strconv.Itoa(c.Weekday),
			strconv.Itoa(c.Fridays),
			strconv.Itoa(c.Saturday),
			strconv.Itoa(c.Sunday),
			strconv.Itoa(c.Total),
		}
	}
	return writeAll(w, statisticsHeader, records)
}

// ReadStatistics reads a statistics file written by WriteStatistics. PGY and missing count
// columns read as zero.
func ReadStatistics(r io.Reader) ([]callscheduler.ResidentStatistics, error) {
	t, err := readTable(r, "Resident")
	if err != nil {
		return nil, fmt.Errorf("failed to read call statistics: %w", err)
	}

	out := make([]callscheduler.ResidentStatistics, 0, len(t.rows))
	for i, row := range t.rows {
		s := callscheduler.ResidentStatistics{Resident: t.get(row, "Resident")}
		if s.Resident == "" {
			continue
		}
		c := &s.Counts
		for _, field := range []struct {
			col string
			dst *int
		}{
			{"PGY", &s.PGY},
			{"Weekday", &c.Weekday},
			{"Fridays", &c.Fridays},
			{"Saturday", &c.Saturday},
			{"Sunday", &c.Sunday},
			{"Total", &c.Total},
		} {
			if *field.dst, err = t.number(row, field.col); err != nil {
				return nil, fmt.Errorf("call statistics row %d: %w", i+2, err)
			}
		}
		out = append(out, s)
	}
	return out, nil
}
