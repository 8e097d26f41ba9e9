/*
Package sqlite provides the SQLite-backed store for attendance and
transaction records.

PURPOSE:
  Persistence for the dashboard's two record collections:
  attendance:   one row per (employee, date), insert-only
  transactions: income/expense entries, insert and delete-by-id

UNIQUENESS:
  Two invariants live here, with different strengths:

  1. Attendance: at most one record per (employee, date). HARD constraint -
     a unique index. Re-marking is a new insert and gets rejected.
  2. Recurring payments: at most one salary row per (employee, month) and
     one fixed-expense row per (category, month). The application guard
     (ledger.IsDuplicate) is advisory and race-prone, so the store carries
     the authoritative constraint too: partial unique indexes over the
     month DERIVED from the date column (substr(date,1,7)), never a
     separately stored month that could drift.

WAL MODE:
  The database is opened with WAL and foreign keys on, matching how the
  rest of our services run SQLite.

SEE ALSO:
  - ledger/guard.go: The advisory pre-check this store backs up
  - api/handlers.go: The only caller
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/econs/opsboard/ledger"
	"github.com/econs/opsboard/schedule"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDuplicateAttendance: (employee, date) already marked.
	ErrDuplicateAttendance = errors.New("attendance already marked for employee and date")

	// ErrDuplicateRecurringPayment: (kind, target, month) already paid.
	// Raised by the unique index even when the advisory guard was raced.
	ErrDuplicateRecurringPayment = errors.New("recurring payment already recorded for this month")

	// ErrNotFound: no row with the given id.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// AttendanceStatus is the marked state for one employee-day.
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
)

// ValidStatus reports whether s is a recognized attendance status.
func ValidStatus(s AttendanceStatus) bool { return s == Present || s == Absent }

// AttendanceRecord is one marked employee-day. Immutable once created.
type AttendanceRecord struct {
	Employee string
	Date     schedule.Date
	Status   AttendanceStatus
}

// =============================================================================
// STORE
// =============================================================================

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database at path. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attendance (
		id       TEXT PRIMARY KEY,
		employee TEXT NOT NULL,
		date     TEXT NOT NULL,
		status   TEXT NOT NULL CHECK (status IN ('present','absent'))
	);

	-- Hard uniqueness: one record per (employee, date).
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance(employee, date);

	CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);

	CREATE TABLE IF NOT EXISTS transactions (
		id            TEXT PRIMARY KEY,
		type          TEXT NOT NULL CHECK (type IN ('income','expense')),
		date          TEXT NOT NULL,
		amount        TEXT NOT NULL,
		category      TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		employee      TEXT NOT NULL DEFAULT '',
		fixed_expense TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

	-- Authoritative monthly uniqueness for recurring payments. The month is
	-- derived from the date column so store and application can never
	-- disagree on which month a record belongs to.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_salary_month
		ON transactions(employee, substr(date, 1, 7))
		WHERE type = 'expense' AND category = 'Salary' AND employee != '';

	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_fixed_month
		ON transactions(fixed_expense, substr(date, 1, 7))
		WHERE type = 'expense' AND category = 'Fixed' AND fixed_expense != '';
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// InsertAttendance inserts records one by one, skipping duplicates the way
// an unordered bulk insert would. Returns how many rows were actually
// inserted; the caller reports this as insertedCount.
func (s *Store) InsertAttendance(ctx context.Context, records []AttendanceRecord) (int, error) {
	inserted := 0
	for _, rec := range records {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO attendance (id, employee, date, status) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), rec.Employee, rec.Date.String(), string(rec.Status))
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return inserted, fmt.Errorf("insert attendance: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

// MarkAttendance inserts a single record, surfacing ErrDuplicateAttendance
// instead of silently skipping.
func (s *Store) MarkAttendance(ctx context.Context, rec AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, employee, date, status) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), rec.Employee, rec.Date.String(), string(rec.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAttendance
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// AttendanceByDate returns all records for a date.
func (s *Store) AttendanceByDate(ctx context.Context, date schedule.Date) ([]AttendanceRecord, error) {
	return s.queryAttendance(ctx,
		`SELECT employee, date, status FROM attendance WHERE date = ? ORDER BY employee`,
		date.String())
}

// AttendanceByEmployee returns all records for an employee, optionally
// restricted to a month.
func (s *Store) AttendanceByEmployee(ctx context.Context, employee string, month *schedule.YearMonth) ([]AttendanceRecord, error) {
	if month == nil {
		return s.queryAttendance(ctx,
			`SELECT employee, date, status FROM attendance WHERE employee = ? ORDER BY date`,
			employee)
	}
	return s.queryAttendance(ctx,
		`SELECT employee, date, status FROM attendance WHERE employee = ? AND substr(date, 1, 7) = ? ORDER BY date`,
		employee, month.String())
}

func (s *Store) queryAttendance(ctx context.Context, query string, args ...any) ([]AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var employee, dateStr, status string
		if err := rows.Scan(&employee, &dateStr, &status); err != nil {
			return nil, err
		}
		d, err := schedule.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("stored attendance date: %w", err)
		}
		records = append(records, AttendanceRecord{
			Employee: employee,
			Date:     d,
			Status:   AttendanceStatus(status),
		})
	}
	return records, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// InsertTransaction persists one entry. The id is assigned here when empty.
// Returns ErrDuplicateRecurringPayment if the entry is a salary or fixed
// expense already recorded for its month.
func (s *Store) InsertTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, type, date, amount, category, description, employee, fixed_expense)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), tx.Date.String(), tx.Amount.String(),
		tx.Category, tx.Description, tx.Employee, tx.FixedExpense)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.Transaction{}, ErrDuplicateRecurringPayment
		}
		return ledger.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns all entries, newest date first.
func (s *Store) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, date, amount, category, description, employee, fixed_expense
		 FROM transactions ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var typ, dateStr, amountStr string
		if err := rows.Scan(&tx.ID, &typ, &dateStr, &amountStr,
			&tx.Category, &tx.Description, &tx.Employee, &tx.FixedExpense); err != nil {
			return nil, err
		}
		d, err := schedule.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("stored transaction date: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("stored transaction amount: %w", err)
		}
		tx.Type = ledger.EntryType(typ)
		tx.Date = d
		tx.Amount = amount
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// DeleteTransaction removes an entry by id. Returns ErrNotFound when no
// row matches.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
