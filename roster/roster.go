/*
Package roster defines the employee roster and eligibility rules.

PURPOSE:
  The roster is static configuration: employees, base salaries, optional
  departure dates, and per-role exception rules. Eligibility answers one
  question - which employees are "active" (due for attendance/payroll)
  on a given date.

RULES:
  1. Exception rules: an employee with LastWorkingDayOnly is active only
     on the week's final working day (weekly rather than daily obligation,
     e.g. a driver or support role paid by the week).
  2. Departure: the departure date is the LAST active day, inclusive.
  3. Exclusions: some named roles are excluded from daily attendance
     altogether (outsourced/contract roles). This is business policy with
     no general principle behind it, so it stays configuration data - a
     plain name set - rather than a code branch per employee.

DESIGN:
  Pure functions over in-memory values. The roster is loaded once at
  process start and read-only thereafter; "today" arrives as a parameter.

SEE ALSO:
  - schedule/calendar.go: Week-boundary resolution used by rule 1
  - config/config.go: Where the roster is loaded from
*/
package roster

import (
	"github.com/shopspring/decimal"

	"github.com/econs/opsboard/schedule"
)

// =============================================================================
// ROSTER TYPES
// =============================================================================

// ExceptionRule is a tagged attendance-cadence exception. New rules get a
// new tag here, not a name check somewhere in the eligibility loop.
type ExceptionRule string

const (
	// RuleNone: standard daily attendance.
	RuleNone ExceptionRule = ""

	// RuleLastWorkingDayOnly: due only on the week's final working day.
	RuleLastWorkingDayOnly ExceptionRule = "last_working_day_only"
)

// Employee is one roster entry. Entries are defined in configuration and
// never created or destroyed at runtime; there is no explicit hire date.
type Employee struct {
	// Name is the unique key used across attendance and salary records.
	Name string

	// BaseSalary is the monthly salary, prefilled into salary payments.
	BaseSalary decimal.Decimal

	// DepartureDate, when set, is the last day (inclusive) the employee is
	// eligible for attendance and payroll.
	DepartureDate *schedule.Date

	// Exception is the attendance-cadence exception, if any.
	Exception ExceptionRule
}

// Roster is the full employee list plus the attendance exclusion set.
type Roster struct {
	Employees []Employee

	// Excluded names are never active in day-to-day attendance/payroll
	// flows, regardless of other rules.
	Excluded map[string]bool
}

// Lookup returns the entry for a name, or nil.
func (r *Roster) Lookup(name string) *Employee {
	for i := range r.Employees {
		if r.Employees[i].Name == name {
			return &r.Employees[i]
		}
	}
	return nil
}

// Names returns all employee names in roster declaration order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.Employees))
	for i, e := range r.Employees {
		names[i] = e.Name
	}
	return names
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

// ActiveEmployees returns the names of employees eligible for attendance
// and payroll on the given date. The result is a subset of the roster in
// declaration order; callers must not rely on ordering beyond that.
//
// An empty roster yields an empty result, not an error.
func ActiveEmployees(cal *schedule.Calendar, date schedule.Date, r *Roster) []string {
	active := make([]string, 0, len(r.Employees))
	for _, e := range r.Employees {
		if !IsActive(cal, date, r, &e) {
			continue
		}
		active = append(active, e.Name)
	}
	return active
}

// IsActive applies the eligibility rules to a single employee.
func IsActive(cal *schedule.Calendar, date schedule.Date, r *Roster, e *Employee) bool {
	if r.Excluded[e.Name] {
		return false
	}
	if e.Exception == RuleLastWorkingDayOnly && !cal.IsLastWorkingDayOfWeek(date) {
		return false
	}
	// Departure day itself still counts as active.
	if e.DepartureDate != nil && date.After(*e.DepartureDate) {
		return false
	}
	return true
}

// Remaining returns the active employees that have no attendance record
// yet, preserving the order of active.
func Remaining(active []string, marked []string) []string {
	seen := make(map[string]bool, len(marked))
	for _, name := range marked {
		seen[name] = true
	}
	remaining := make([]string, 0, len(active))
	for _, name := range active {
		if !seen[name] {
			remaining = append(remaining, name)
		}
	}
	return remaining
}

// PayrollTargets returns the employees due a salary for the given month:
// everyone whose departure date, if any, is not before the month starts.
// Attendance exclusions do not apply here - excluded roles are still paid.
func (r *Roster) PayrollTargets(month schedule.YearMonth) []string {
	first := schedule.NewDate(month.Year, month.Month, 1)
	targets := make([]string, 0, len(r.Employees))
	for _, e := range r.Employees {
		if e.DepartureDate != nil && e.DepartureDate.Before(first) {
			continue
		}
		targets = append(targets, e.Name)
	}
	return targets
}
