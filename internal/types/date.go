package types

import (
	"time"
)

const (
	// DateLayout is the wire format for calendar dates
	DateLayout = "2006-01-02"
	// DisplayDateLayout is the dd/mm/yyyy format printed on descriptions
	DisplayDateLayout = "02/01/2006"
)

// AddPeriod advances date by one billing period of the given frequency.
// Annual advances by one calendar year, every other frequency by its month count.
// When the target month is shorter than the source day, the result is clamped to
// the last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddPeriod(date time.Time, frequency Frequency) (time.Time, error) {
	if frequency == FrequencyAnnual {
		return AddClampedMonths(date, 1, 0), nil
	}

	months, err := frequency.Months()
	if err != nil {
		return date, err
	}
	return AddClampedMonths(date, 0, months), nil
}

// SubtractPeriod moves date back by one billing period of the given frequency
func SubtractPeriod(date time.Time, frequency Frequency) (time.Time, error) {
	if frequency == FrequencyAnnual {
		return AddClampedMonths(date, -1, 0), nil
	}

	months, err := frequency.Months()
	if err != nil {
		return date, err
	}
	return AddClampedMonths(date, 0, -months), nil
}

// AddClampedMonths adds years and months to t keeping the time of day and location.
// The day of month is clamped to the last valid day of the resulting month.
func AddClampedMonths(t time.Time, years, months int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	// zero based month index so negative offsets roll back across years
	idx := int(m) - 1 + months
	newY := y + years + floorDiv(idx, 12)
	newM := time.Month(idx-floorDiv(idx, 12)*12 + 1)

	lastDay := daysIn(newY, newM, t.Location())
	if d > lastDay {
		d = lastDay
	}

	return time.Date(newY, newM, d, h, min, sec, t.Nanosecond(), t.Location())
}

// SnapToFirstDay returns the first day of date's month
func SnapToFirstDay(date time.Time) time.Time {
	y, m, _ := date.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, date.Location())
}

// SnapToLastDay returns the last calendar day of date's month
func SnapToLastDay(date time.Time) time.Time {
	y, m, _ := date.Date()
	return time.Date(y, m, daysIn(y, m, date.Location()), 0, 0, 0, 0, date.Location())
}

// Snap applies a renewal day policy to date
func Snap(date time.Time, policy RenewalDayPolicy) (time.Time, error) {
	switch policy {
	case RenewalFirstDay:
		return SnapToFirstDay(date), nil
	case RenewalLastDay:
		return SnapToLastDay(date), nil
	default:
		return date, policy.Validate()
	}
}

// DaysBetweenInclusive counts the calendar days from start to end, both included.
// Jan 5 through Jan 31 is 27. An end one day before start yields 0.
func DaysBetweenInclusive(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()

	// compare on UTC midnights so DST shifts in the source location never leak in
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)

	return int(e.Sub(s).Hours()/24) + 1
}

// AddDays moves date by n calendar days
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DateOnly drops the time of day, keeping the calendar date as seen in loc
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CompareDates orders a and b by calendar day, ignoring time of day and location.
// It returns -1 when a is earlier, 0 on the same day and +1 when a is later.
func CompareDates(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch {
	case ay != by:
		return sign(ay - by)
	case am != bm:
		return sign(int(am) - int(bm))
	default:
		return sign(ad - bd)
	}
}

// SameMonth reports whether a and b fall in the same calendar month and year
func SameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

// ParseDate parses a YYYY-MM-DD string as a calendar date in loc
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, value, loc)
}

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDisplayDate renders t as dd/mm/yyyy
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
