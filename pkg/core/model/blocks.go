package model

import (
	"fmt"
	"time"
)

// TailDays is the number of days before a block whose assignments must be carried in
const TailDays = 4

// Block is one of the three scheduling periods in an academic year
type Block struct {
	Number           int
	AcademicYear     int // calendar year in which the academic year starts (July)
	Start            time.Time
	End              time.Time
	RequiresPrevious bool
}

// Name returns the display name of the block, e.g. "Block 2"
func (b Block) Name() string {
	return fmt.Sprintf("Block %d", b.Number)
}

// Range returns the block's inclusive date range
func (b Block) Range() DateRange {
	return DateRange{Start: b.Start, End: b.End}
}

// TailDates returns the TailDays dates immediately preceding the block, oldest first
func (b Block) TailDates() []time.Time {
	dates := make([]time.Time, 0, TailDays)
	for i := TailDays; i >= 1; i-- {
		dates = append(dates, Day(b.Start).AddDate(0, 0, -i))
	}
	return dates
}

// AcademicYearBlocks returns the three blocks of the academic year starting in July of year:
// July-October, November-February and March-June
func AcademicYearBlocks(year int) []Block {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []Block{
		{Number: 1, AcademicYear: year, Start: date(year, time.July, 1), End: date(year, time.October, 31)},
		// Day 0 of March is the last day of February, leap years included
		{Number: 2, AcademicYear: year, Start: date(year, time.November, 1), End: date(year+1, time.March, 0), RequiresPrevious: true},
		{Number: 3, AcademicYear: year, Start: date(year+1, time.March, 1), End: date(year+1, time.June, 30), RequiresPrevious: true},
	}
}

// BlockFor returns block number n (1-3) of the academic year starting in year
func BlockFor(year, n int) (Block, error) {
	if n < 1 || n > 3 {
		return Block{}, fmt.Errorf("block number must be 1, 2 or 3, got %d", n)
	}
	return AcademicYearBlocks(year)[n-1], nil
}
