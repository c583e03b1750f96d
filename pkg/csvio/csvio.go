// Package csvio reads and writes the tabular files exchanged with the scheduler: roster,
// leave, soft constraints, holidays, previous-block tail, schedules and call statistics.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// invalid marks a malformed file or row so callers can match callscheduler.ErrInvalidInput
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %w", callscheduler.ErrInvalidInput, fmt.Errorf(format, args...))
}

// table is a CSV file addressed by header name
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("file is empty")
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return nil, invalid("malformed header: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &table{columns: make(map[string]int, len(header))}
	for i, h := range header {
		t.columns[normaliseHeader(h)] = i
	}
	for _, col := range required {
		if _, ok := t.columns[normaliseHeader(col)]; !ok {
			return nil, invalid("missing column %q", col)
		}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.As(err, &parseErr) {
			return nil, invalid("malformed row %d: %w", parseErr.Line, err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(t.rows)+2, err)
		}
		if blank(record) {
			continue
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// normaliseHeader accepts "Start Date", "Start_Date" and "start date" alike
func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.ReplaceAll(h, "_", " ")
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func (t *table) get(row []string, col string) string {
	i, ok := t.columns[normaliseHeader(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) date(row []string, col string) (time.Time, error) {
	v := t.get(row, col)
	if v == "" {
		return time.Time{}, invalid("%s is required", col)
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return time.Time{}, invalid("%s: %w", col, err)
	}
	return d, nil
}

// number reads a whole number. Spreadsheet exports such as "3.0" are accepted.
func (t *table) number(row []string, col string) (int, error) {
	v := t.get(row, col)
	if v == "" {
		return 0, nil
	}
	if whole, frac, ok := strings.Cut(v, "."); ok && strings.Trim(frac, "0") == "" {
		v = whole
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid("%s: %q is not a whole number", col, v)
	}
	return n, nil
}

func writeAll(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
