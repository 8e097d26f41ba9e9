/*
Package config loads the application configuration from YAML.

PURPOSE:
  Everything that used to be hard-coded business data lives here: the
  employee roster with its carve-outs, the fixed-expense catalog, the
  calendar anchor, transaction categories, and dashboard users. Loaded
  once at process start, read-only thereafter.

FORMAT (YAML):
  listen: ":8080"
  database: "./opsboard.db"
  calendar:
    anchor_saturday: "2025-07-26"   # an agreed-upon open Saturday
    min_date: "2025-07-23"          # earliest selectable attendance date
  roster:
    - name: "Ameer Hamza"
      salary: 39000
    - name: "Rafiq"
      salary: 47700
      exception: last_working_day_only
    - name: "Jawad"
      salary: 40000
      departure_date: "2025-05-30"
  attendance_excluded: ["Cleaner", "Lawyer"]
  fixed_expenses:
    - {name: "Rent", amount: 35000}
  income_categories: [...]
  expense_categories: [...]
  users:
    - {email: "...", password_hash: "$2a$12$...", role: "admin"}
  reminder_cron: "0 9 * * *"

SEE ALSO:
  - roster/roster.go: The runtime roster model this file populates
  - cmd/server/main.go: Load at startup
*/
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/econs/opsboard/roster"
	"github.com/econs/opsboard/schedule"
)

// =============================================================================
// CONFIG MODEL
// =============================================================================

// CalendarConfig pins the working-day schedule to the real calendar.
type CalendarConfig struct {
	// AnchorSaturday is an open Saturday anchoring the alternating schedule.
	AnchorSaturday string `yaml:"anchor_saturday"`
	// MinDate is the earliest date the attendance UI may select.
	MinDate string `yaml:"min_date"`
}

// RosterEntry is one employee in the configuration file. Order matters:
// eligibility results follow declaration order.
type RosterEntry struct {
	Name          string `yaml:"name"`
	Salary        int64  `yaml:"salary"`
	DepartureDate string `yaml:"departure_date,omitempty"`
	Exception     string `yaml:"exception,omitempty"`
}

// FixedExpense is one catalog item for monthly fixed payouts. Amounts are
// whole currency units.
type FixedExpense struct {
	Name   string `yaml:"name"`
	Amount int64  `yaml:"amount"`
}

// User is a dashboard login. PasswordHash is a bcrypt hash; plaintext
// passwords never appear in configuration.
type User struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

// Config is the top-level application configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	Database string `yaml:"database"`

	Calendar CalendarConfig `yaml:"calendar"`

	Roster             []RosterEntry  `yaml:"roster"`
	AttendanceExcluded []string       `yaml:"attendance_excluded"`
	FixedExpenses      []FixedExpense `yaml:"fixed_expenses"`

	IncomeCategories  []string `yaml:"income_categories"`
	ExpenseCategories []string `yaml:"expense_categories"`

	Users []User `yaml:"users"`

	// ReminderCron schedules the month-end unpaid-payment reminder job.
	// Empty disables the scheduler.
	ReminderCron string `yaml:"reminder_cron"`

	// AllowedOrigins for CORS; defaults cover local development.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the baseline configuration. Business data (roster, users)
// has no default; it must come from the file.
func Default() *Config {
	return &Config{
		Listen:            ":8080",
		Database:          "opsboard.db",
		Calendar:          CalendarConfig{AnchorSaturday: "2025-07-26", MinDate: "2025-07-23"},
		IncomeCategories:  []string{"Misc"},
		ExpenseCategories: []string{"Utilities", "Salary", "Fixed", "Misc"},
		ReminderCron:      "0 9 * * *",
		AllowedOrigins:    []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// Load reads and validates a configuration file, applying defaults for
// unset ambient fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the rest of the system depends on.
func (c *Config) Validate() error {
	if _, err := schedule.ParseDate(c.Calendar.AnchorSaturday); err != nil {
		return fmt.Errorf("calendar.anchor_saturday: %w", err)
	}
	if _, err := schedule.ParseDate(c.Calendar.MinDate); err != nil {
		return fmt.Errorf("calendar.min_date: %w", err)
	}
	seen := make(map[string]bool, len(c.Roster))
	for _, e := range c.Roster {
		if e.Name == "" {
			return fmt.Errorf("roster: entry with empty name")
		}
		if seen[e.Name] {
			return fmt.Errorf("roster: duplicate entry %q", e.Name)
		}
		seen[e.Name] = true
		if e.DepartureDate != "" {
			if _, err := schedule.ParseDate(e.DepartureDate); err != nil {
				return fmt.Errorf("roster %q departure_date: %w", e.Name, err)
			}
		}
		switch roster.ExceptionRule(e.Exception) {
		case roster.RuleNone, roster.RuleLastWorkingDayOnly:
		default:
			return fmt.Errorf("roster %q: unknown exception %q", e.Name, e.Exception)
		}
	}
	for _, u := range c.Users {
		if u.Email == "" || u.PasswordHash == "" {
			return fmt.Errorf("users: email and password_hash are required")
		}
	}
	return nil
}

// =============================================================================
// RUNTIME VIEWS
// =============================================================================

// BuildCalendar returns the working-day calendar from configuration.
// Validate has already checked the anchor parses.
func (c *Config) BuildCalendar() *schedule.Calendar {
	anchor, _ := schedule.ParseDate(c.Calendar.AnchorSaturday)
	return schedule.NewCalendar(anchor)
}

// MinAttendanceDate returns the earliest selectable attendance date.
func (c *Config) MinAttendanceDate() schedule.Date {
	d, _ := schedule.ParseDate(c.Calendar.MinDate)
	return d
}

// BuildRoster converts the configured entries into the runtime roster.
func (c *Config) BuildRoster() (*roster.Roster, error) {
	r := &roster.Roster{
		Employees: make([]roster.Employee, 0, len(c.Roster)),
		Excluded:  make(map[string]bool, len(c.AttendanceExcluded)),
	}
	for _, e := range c.Roster {
		emp := roster.Employee{
			Name:       e.Name,
			BaseSalary: decimal.NewFromInt(e.Salary),
			Exception:  roster.ExceptionRule(e.Exception),
		}
		if e.DepartureDate != "" {
			d, err := schedule.ParseDate(e.DepartureDate)
			if err != nil {
				return nil, fmt.Errorf("roster %q departure_date: %w", e.Name, err)
			}
			emp.DepartureDate = &d
		}
		r.Employees = append(r.Employees, emp)
	}
	for _, name := range c.AttendanceExcluded {
		r.Excluded[name] = true
	}
	return r, nil
}

// FixedExpenseNames returns the catalog names in declaration order.
func (c *Config) FixedExpenseNames() []string {
	names := make([]string, len(c.FixedExpenses))
	for i, fe := range c.FixedExpenses {
		names[i] = fe.Name
	}
	return names
}

// FixedExpenseAmount looks up the configured amount for a catalog item.
func (c *Config) FixedExpenseAmount(name string) (decimal.Decimal, bool) {
	for _, fe := range c.FixedExpenses {
		if fe.Name == name {
			return decimal.NewFromInt(fe.Amount), true
		}
	}
	return decimal.Decimal{}, false
}

// FindUser returns the user with the given email, or nil.
func (c *Config) FindUser(email string) *User {
	for i := range c.Users {
		if c.Users[i].Email == email {
			return &c.Users[i]
		}
	}
	return nil
}
