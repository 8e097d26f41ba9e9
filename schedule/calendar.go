/*
calendar.go - Working-day classification and week boundaries

PURPOSE:
  Implements the alternating-Saturday working schedule:
  - Monday-Friday are always working days
  - Sunday is never a working day
  - Saturdays alternate open/closed, anchored at a fixed open Saturday

  Also resolves the "last working day of the week": the open Saturday when
  the week has one, otherwise that week's Friday. Weekly-cadence roles
  (see roster.RuleLastWorkingDayOnly) are only due on that day.

ANCHOR:
  The anchor is a business constant tied to a real calendar (an agreed-upon
  open Saturday), supplied via configuration. Parity extends both forward
  and backward from it; the week index is negative before the anchor and
  the same even/odd rule applies. Do not "fix" the formula for past dates -
  the asymmetry is part of the contract.

SEE ALSO:
  - date.go: Date type and arithmetic
  - config/config.go: Where the anchor is loaded from
*/
package schedule

import "time"

// DefaultAnchor is the reference open Saturday used when configuration does
// not override it.
var DefaultAnchor = NewDate(2025, time.July, 26)

// Calendar decides which dates are working days. Zero state beyond the
// anchor; safe for concurrent use.
type Calendar struct {
	// Anchor is a Saturday defined to be open. Saturdays an even number of
	// weeks away from it are open, odd are closed.
	Anchor Date
}

// NewCalendar returns a Calendar anchored at the given open Saturday.
func NewCalendar(anchor Date) *Calendar {
	return &Calendar{Anchor: anchor}
}

// IsWorkingDay classifies a date, in priority order:
//  1. Monday-Friday: working day, always.
//  2. Sunday: not a working day, always.
//  3. Saturday: open iff the week index relative to the anchor is even.
func (c *Calendar) IsWorkingDay(d Date) bool {
	switch wd := d.Weekday(); {
	case wd >= time.Monday && wd <= time.Friday:
		return true
	case wd == time.Sunday:
		return false
	default: // Saturday
		diffDays := DaysBetween(c.anchor(), d)
		return floorDiv(diffDays, 7)%2 == 0
	}
}

// NextWorkingDay returns the first working day strictly after d. The
// schedule guarantees a working day at least every 7 days, so this always
// terminates; no tighter bound is assumed.
func (c *Calendar) NextWorkingDay(d Date) Date {
	next := d.AddDays(1)
	for !c.IsWorkingDay(next) {
		next = next.AddDays(1)
	}
	return next
}

// IsLastWorkingDayOfWeek reports whether d is the final working day of its
// Sunday-to-Saturday week: the Saturday itself when that Saturday is open,
// otherwise the Friday. Exactly one date per week satisfies this.
func (c *Calendar) IsLastWorkingDayOfWeek(d Date) bool {
	saturday := d.AddDays(int(time.Saturday - d.Weekday()))
	if c.IsWorkingDay(saturday) {
		return d.Equal(saturday)
	}
	return d.Weekday() == time.Friday
}

func (c *Calendar) anchor() Date {
	if c.Anchor.IsZero() {
		return DefaultAnchor
	}
	return c.Anchor
}

// floorDiv divides rounding toward negative infinity. Week parity before
// the anchor depends on floor semantics, not Go's truncating division.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
