package model

import (
	"fmt"
	"strings"
	"time"
)

// DayType is the fairness bucket a calendar date falls into
type DayType int

const (
	DayTypeWeekday DayType = iota // Monday to Thursday
	DayTypeFriday
	DayTypeSaturday
	DayTypeSunday
)

func (d DayType) String() string {
	switch d {
	case DayTypeWeekday:
		return "Weekday"
	case DayTypeFriday:
		return "Friday"
	case DayTypeSaturday:
		return "Saturday"
	case DayTypeSunday:
		return "Sunday"
	}
	return fmt.Sprintf("DayType(%d)", int(d))
}

// DayTypeOf returns the fairness bucket for a date
func DayTypeOf(date time.Time) DayType {
	switch date.Weekday() {
	case time.Friday:
		return DayTypeFriday
	case time.Saturday:
		return DayTypeSaturday
	case time.Sunday:
		return DayTypeSunday
	}
	return DayTypeWeekday
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// AbsDaysBetween returns the unsigned number of calendar days between a and b
func AbsDaysBetween(a, b time.Time) int {
	n := DaysBetween(a, b)
	if n < 0 {
		return -n
	}
	return n
}

var dateLayouts = []string{DateLayout, "1/2/06", "1/2/2006", "01/02/06", "01/02/2006"}

// ParseDate parses an ISO date or a US style m/d/yy or m/d/yyyy date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// MustParseDate parses an ISO date and panics on failure. Intended for tests and constants.
func MustParseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
