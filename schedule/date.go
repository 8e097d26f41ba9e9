/*
Package schedule implements the working-day calendar engine.

PURPOSE:
  This package contains the date arithmetic that the attendance and
  payroll flows depend on: day-granularity dates, the alternating-Saturday
  working-day rule, and week-boundary resolution. Everything here is a
  pure function of its inputs - no clocks, no I/O, no shared state.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A calendar date with no time-of-day component
  - YearMonth: A (year, month) pair used to bucket monthly payments

DESIGN PRINCIPLES:
  1. Purity: "today" is always a caller-supplied parameter
  2. One canonical representation: midnight UTC, compared at day granularity
  3. Explicit errors: malformed input fails with ErrInvalidDate, never a
     silent default

SEE ALSO:
  - calendar.go: Working-day classification and week boundaries
  - roster/roster.go: Consumes this package for active-employee checks
*/
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string cannot be parsed as
	// YYYY-MM-DD. The caller decides user-facing behavior; no silent
	// correction is attempted.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidMonth is returned when a YearMonth is outside reasonable
	// bounds (month not in 1..12, non-positive year).
	ErrInvalidMonth = errors.New("invalid month")
)

// =============================================================================
// DATE - Calendar date, day granularity
// =============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component. Two Dates
// representing the same day compare equal regardless of any time-zone
// artifacts in the string they were parsed from.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Returns ErrInvalidDate on malformed
// or out-of-range input.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t.UTC()}, nil
}

// FromTime truncates a timestamp to its calendar day. Used at the boundary
// where wall-clock values enter the system; core code only sees Dates.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

// YearMonth returns the month bucket this date falls into. This is the ONLY
// way a record's month is derived - never stored separately - so client and
// store always agree.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.t.Year(), Month: d.t.Month()}
}

// String formats as YYYY-MM-DD. ParseDate(d.String()) round-trips exactly.
func (d Date) String() string { return d.t.Format(dateLayout) }

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// YEAR-MONTH - Bucket for monthly recurring payments
// =============================================================================

const monthLayout = "2006-01"

// YearMonth identifies a calendar month. Salary and fixed-expense records
// are unique per (target, YearMonth).
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses a YYYY-MM string. Returns ErrInvalidMonth on
// malformed input or a month outside 1..12.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	ym := YearMonth{Year: t.Year(), Month: t.Month()}
	if err := ym.Validate(); err != nil {
		return YearMonth{}, err
	}
	return ym, nil
}

// Validate checks the month is within bounds.
func (ym YearMonth) Validate() error {
	if ym.Year <= 0 || ym.Month < time.January || ym.Month > time.December {
		return fmt.Errorf("%w: year=%d month=%d", ErrInvalidMonth, ym.Year, int(ym.Month))
	}
	return nil
}

// Contains reports whether the date falls within this month.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Month() == ym.Month
}

// String formats as YYYY-MM.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
