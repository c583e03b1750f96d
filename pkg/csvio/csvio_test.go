package csvio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

func TestReadResidents(t *testing.T) {
	input := "Resident,PGY,Transition Date,Transition PGY\n" +
		"Jane Doe,2,,\n" +
		"John Roe,3.0,1/31/24,4\n" +
		"\n" +
		"Amy Poe,1,2024-06-30,2\n"

	residents, err := ReadResidents(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, residents, 3)

	assert.Equal(t, model.Resident{Name: "Jane Doe", PGY: 2}, residents[0])
	require.NotNil(t, residents[1].Transition)
	assert.Equal(t, model.Transition{Date: model.MustParseDate("2024-01-31"), PGY: 4}, *residents[1].Transition)
	assert.Equal(t, 3, residents[1].PGY)
	assert.Equal(t, 2, residents[2].Transition.PGY)
}

func TestReadResidents_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing column", input: "Name,PGY\nJane,2\n"},
		{name: "pgy out of range", input: "Resident,PGY\nJane,5\n"},
		{name: "fractional pgy", input: "Resident,PGY\nJane,2.7\n"},
		{name: "nan pgy", input: "Resident,PGY\nJane,NaN\n"},
		{name: "unterminated quote", input: "Resident,PGY\n\"Jane,2\n"},
		{name: "missing name", input: "Resident,PGY\n,2\n"},
		{name: "bad transition date", input: "Resident,PGY,Transition Date,Transition PGY\nJane,2,soon,3\n"},
		{name: "transition date without pgy", input: "Resident,PGY,Transition Date,Transition PGY\nJane,2,2024-01-01,\n"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadResidents(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestReadLeaveAndSoftConstraints(t *testing.T) {
	input := "Resident,Start_Date,End_Date\nJane Doe,1/8/24,1/12/24\n"

	leave, err := ReadLeave(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []model.LeaveRequest{{
		Resident: "Jane Doe",
		Dates:    model.DateRange{Start: model.MustParseDate("2024-01-08"), End: model.MustParseDate("2024-01-12")},
	}}, leave)

	soft, err := ReadSoftConstraints(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", soft[0].Resident)

	_, err = ReadLeave(strings.NewReader("Resident,Start Date,End Date\nJane,whenever,1/12/24\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))

	_, err = ReadSoftConstraints(strings.NewReader("Resident,Start Date,End Date\n,1/8/24,1/12/24\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
}

func TestLeaveRoundTrip(t *testing.T) {
	leave := []model.LeaveRequest{{
		Resident: "Jane Doe",
		Dates:    model.DateRange{Start: model.MustParseDate("2024-01-08"), End: model.MustParseDate("2024-01-12")},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteLeave(&buf, leave))
	assert.Equal(t, "Resident,Start Date,End Date\nJane Doe,2024-01-08,2024-01-12\n", buf.String())

	got, err := ReadLeave(&buf)
	require.NoError(t, err)
	assert.Equal(t, leave, got)
}

func TestReadFixedAssignments(t *testing.T) {
	fixed, err := ReadFixedAssignments(strings.NewReader("Date,Call,Backup\n2024-01-01,R4_1,R4_2\n"))
	require.NoError(t, err)
	assert.Equal(t, []model.FixedAssignment{{Date: model.MustParseDate("2024-01-01"), Call: "R4_1", Backup: "R4_2"}}, fixed)

	_, err = ReadFixedAssignments(strings.NewReader("Date,Call,Backup\n,R4_1,R4_2\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))

	_, err = ReadFixedAssignments(strings.NewReader("Date,Call\n2024-01-01,R4_1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
}

func TestScheduleRoundTrip(t *testing.T) {
	rows := []model.ScheduleRow{
		{Date: model.MustParseDate("2024-01-01"), Call: "A", Backup: "B", Fixed: true},
		{Date: model.MustParseDate("2024-01-02"), Call: "C", Backup: "D", Intern: "E", Supervisor: "F"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "Date,Call,Backup,Intern,Supervisor,Fixed\n2024-01-01,A,B,,,yes\n"))

	got, err := ReadSchedule(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestStatistics(t *testing.T) {
	stats := []callscheduler.ResidentStatistics{
		{Resident: "A", PGY: 2, Counts: model.CallCounts{Weekday: 3, Fridays: 1, Sunday: 2, Total: 6}},
		{Resident: "B", PGY: 4, Counts: model.CallCounts{Weekday: 4, Total: 4}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStatistics(&buf, stats))
	assert.Equal(t, "Resident,PGY,Weekday,Fridays,Saturday,Sunday,Total\nA,2,3,1,0,2,6\nB,4,4,0,0,0,4\n", buf.String())

	got, err := ReadStatistics(&buf)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestReadStatistics_MissingColumns(t *testing.T) {
	stats, err := ReadStatistics(strings.NewReader("Resident,Weekday,Total\nA,2,2\n,9,9\nB,1.0,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []callscheduler.ResidentStatistics{
		{Resident: "A", Counts: model.CallCounts{Weekday: 2, Total: 2}},
		{Resident: "B", Counts: model.CallCounts{Weekday: 1, Total: 1}},
	}, stats)

	_, err = ReadStatistics(strings.NewReader("Resident,Total\nA,2.5\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
}

func TestTableNumber(t *testing.T) {
	tbl := &table{columns: map[string]int{"n": 0}}

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "3", want: 3},
		{in: "3.0", want: 3},
		{in: "10.00", want: 10},
		{in: "2.7", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "1e2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tbl.number([]string{tt.in}, "N")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, callscheduler.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
