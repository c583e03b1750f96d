package csvio

import (
	"fmt"
	"io"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

type residentRow struct {
	Name          string `validate:"required"`
	PGY           int    `validate:"min=1,max=4"`
	TransitionPGY int    `validate:"omitempty,min=1,max=4"`
}

// ReadResidents reads a roster with columns Resident, PGY and the optional Transition Date
// and Transition PGY
func ReadResidents(r io.Reader) ([]model.Resident, error) {
	t, err := readTable(r, "Resident", "PGY")
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	residents := make([]model.Resident, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		pgy, err := t.number(row, "PGY")
		if err != nil {
			return nil, fmt.Errorf("roster row %d: %w", line, err)
		}
		transitionPGY, err := t.number(row, "Transition PGY")
		if err != nil {
			return nil, fmt.Errorf("roster row %d: %w", line, err)
		}

		rr := residentRow{Name: t.get(row, "Resident"), PGY: pgy, TransitionPGY: transitionPGY}
		if err := validate.Struct(rr); err != nil {
			return nil, fmt.Errorf("roster row %d: %w", line, invalid("%w", err))
		}

		res := model.Resident{Name: rr.Name, PGY: rr.PGY}
		if t.get(row, "Transition Date") != "" || transitionPGY != 0 {
			date, err := t.date(row, "Transition Date")
			if err != nil {
				return nil, fmt.Errorf("roster row %d: %w", line, err)
			}
			if transitionPGY == 0 {
				return nil, fmt.Errorf("roster row %d: %w", line, invalid("Transition PGY is required with a transition date"))
			}
			res.Transition = &model.Transition{Date: date, PGY: transitionPGY}
		}
		residents = append(residents, res)
	}
	return residents, nil
}

// NamedRange is a resident's inclusive date range, the shape of leave and soft-constraint files
type NamedRange struct {
	Resident string
	Dates    model.DateRange
}

func readRanges(r io.Reader, kind string) ([]NamedRange, error) {
	t, err := readTable(r, "Resident", "Start Date", "End Date")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kind, err)
	}

	out := make([]NamedRange, 0, len(t.rows))
	for i, row := range t.rows {
		name := t.get(row, "Resident")
		if name == "" {
			return nil, fmt.Errorf("%s row %d: %w", kind, i+2, invalid("Resident is required"))
		}
		start, err := t.date(row, "Start Date")
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", kind, i+2, err)
		}
		end, err := t.date(row, "End Date")
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", kind, i+2, err)
		}
		out = append(out, NamedRange{Resident: name, Dates: model.DateRange{Start: start, End: end}})
	}
	return out, nil
}

// ReadLeave reads hard leave requests with columns Resident, Start Date, End Date
func ReadLeave(r io.Reader) ([]model.LeaveRequest, error) {
	ranges, err := readRanges(r, "leave")
	if err != nil {
		return nil, err
	}
	out := make([]model.LeaveRequest, len(ranges))
	for i, nr := range ranges {
		out[i] = model.LeaveRequest{Resident: nr.Resident, Dates: nr.Dates}
	}
	return out, nil
}

// ReadSoftConstraints reads soft constraints with columns Resident, Start Date, End Date
func ReadSoftConstraints(r io.Reader) ([]model.SoftConstraint, error) {
	ranges, err := readRanges(r, "soft constraints")
	if err != nil {
		return nil, err
	}
	out := make([]model.SoftConstraint, len(ranges))
	for i, nr := range ranges {
		out[i] = model.SoftConstraint{Resident: nr.Resident, Dates: nr.Dates}
	}
	return out, nil
}

// WriteLeave writes leave requests in the format ReadLeave accepts
func WriteLeave(w io.Writer, leave []model.LeaveRequest) error {
	records := make([][]string, len(leave))
	for i, l := range leave {
		records[i] = []string{l.Resident, l.Dates.Start.Format(model.DateLayout), l.Dates.End.Format(model.DateLayout)}
	}
	return writeAll(w, []string{"Resident", "Start Date", "End Date"}, records)
}

// WriteSoftConstraints writes soft constraints in the format ReadSoftConstraints accepts
func WriteSoftConstraints(w io.Writer, soft []model.SoftConstraint) error {
	records := make([][]string, len(soft))
	for i, s := range soft {
		records[i] = []string{s.Resident, s.Dates.Start.Format(model.DateLayout), s.Dates.End.Format(model.DateLayout)}
	}
	return writeAll(w, []string{"Resident", "Start Date", "End Date"}, records)
}

// ReadFixedAssignments reads holidays or a previous-block tail with columns Date, Call, Backup
func ReadFixedAssignments(r io.Reader) ([]model.FixedAssignment, error) {
	t, err := readTable(r, "Date", "Call", "Backup")
	if err != nil {
		return nil, fmt.Errorf("failed to read fixed assignments: %w", err)
	}

	out := make([]model.FixedAssignment, 0, len(t.rows))
	for i, row := range t.rows {
		date, err := t.date(row, "Date")
		if err != nil {
			return nil, fmt.Errorf("fixed assignment row %d: %w", i+2, err)
		}
		out = append(out, model.FixedAssignment{Date: date, Call: t.get(row, "Call"), Backup: t.get(row, "Backup")})
	}
	return out, nil
}
