/*
handlers.go - HTTP handlers for the operations dashboard

PURPOSE:
  Exposes attendance marking, transaction bookkeeping, payroll guard
  queries, and the working-day schedule over REST. Handlers parse and
  validate input, call the pure engine packages, and serialize the
  {status, ...} envelopes the frontend expects.

ENDPOINTS:
  Auth:
    POST   /api/login                   Issue session cookie
    POST   /api/logout                  Drop session

  Attendance:
    GET    /api/attendance?date=        Records for a date
    GET    /api/attendance?employee=[&month=]  Records for an employee
    POST   /api/attendance              Bulk mark (duplicates skipped)

  Schedule:
    GET    /api/schedule?date=          Working-day info + remaining list

  Transactions:
    GET    /api/transactions            All entries, newest first
    POST   /api/transactions            Add entry (guard-checked)
    DELETE /api/transactions/{id}       Remove entry
    GET    /api/transactions/export     CSV download
    GET    /api/summary                 Monthly net-profit series

  Payroll:
    GET    /api/payroll/unpaid?kind=&month=   Unpaid targets for a month

ERROR HANDLING:
  - 400: malformed body, invalid date/month/status/range
  - 401: missing or expired session
  - 404: unknown transaction id
  - 409: recurring-payment duplicate (guard pre-check or store index)
  - 422: non-working day / inactive employee on attendance submission
  - 500: storage failures

DATES:
  "Today" is never read inside the engine packages; handlers take it from
  the injected clock and pass it down explicitly.
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/econs/opsboard/config"
	"github.com/econs/opsboard/ledger"
	"github.com/econs/opsboard/roster"
	"github.com/econs/opsboard/schedule"
	"github.com/econs/opsboard/store/sqlite"
)

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Cfg      *config.Config
	Cal      *schedule.Calendar
	Roster   *roster.Roster
	Sessions *SessionStore

	// Now is the boundary clock, injectable for tests.
	Now func() time.Time
}

// NewHandler wires a handler from loaded configuration and an open store.
func NewHandler(store *sqlite.Store, cfg *config.Config) (*Handler, error) {
	r, err := cfg.BuildRoster()
	if err != nil {
		return nil, err
	}
	return &Handler{
		Store:    store,
		Cfg:      cfg,
		Cal:      cfg.BuildCalendar(),
		Roster:   r,
		Sessions: NewSessionStore(),
		Now:      time.Now,
	}, nil
}

func (h *Handler) today() schedule.Date {
	return schedule.FromTime(h.Now())
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// GetAttendance serves records by date, or by employee with an optional
// month filter. One of date or employee is required.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if dateStr := q.Get("date"); dateStr != "" {
		d, err := schedule.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		records, err := h.Store.AttendanceByDate(r.Context(), d)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch attendance", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"records": toAttendanceDTOs(records),
		})
		return
	}

	if employee := q.Get("employee"); employee != "" {
		var month *schedule.YearMonth
		if monthStr := q.Get("month"); monthStr != "" {
			ym, err := schedule.ParseYearMonth(monthStr)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
				return
			}
			month = &ym
		}
		records, err := h.Store.AttendanceByEmployee(r.Context(), employee, month)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch attendance", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"records": toAttendanceDTOs(records),
		})
		return
	}

	writeError(w, http.StatusBadRequest, "Either date or employee query parameter is required", nil)
}

// MarkAttendance handles the bulk submission. Every record must name an
// employee active on its date, and the date must be a working day within
// the allowed window. Duplicates are skipped, not errors; the response
// reports how many rows were actually inserted.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req MarkAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "Records must be a non-empty array", nil)
		return
	}

	today := h.today()
	records := make([]sqlite.AttendanceRecord, 0, len(req.Records))
	for _, dto := range req.Records {
		status := sqlite.AttendanceStatus(dto.Status)
		if dto.Employee == "" || !sqlite.ValidStatus(status) {
			writeError(w, http.StatusBadRequest,
				"Each record must have employee, date, and status (present or absent)", nil)
			return
		}
		d, err := schedule.ParseDate(dto.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		if d.Before(h.Cfg.MinAttendanceDate()) || d.After(today) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("Date %s is outside the allowed attendance window", d), nil)
			return
		}
		if !h.Cal.IsWorkingDay(d) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("%s is not a working day", d), nil)
			return
		}
		if e := h.Roster.Lookup(dto.Employee); e == nil || !roster.IsActive(h.Cal, d, h.Roster, e) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("%s is not active on %s", dto.Employee, d), nil)
			return
		}
		records = append(records, sqlite.AttendanceRecord{
			Employee: dto.Employee,
			Date:     d,
			Status:   status,
		})
	}

	inserted, err := h.Store.InsertAttendance(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"insertedCount": inserted,
	})
}

// GetSchedule reports a date's working-day standing, its next working day,
// and the remaining (active but unmarked) employees.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	var d schedule.Date
	if dateStr == "" {
		d = h.today()
	} else {
		var err error
		if d, err = schedule.ParseDate(dateStr); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
	}

	active := roster.ActiveEmployees(h.Cal, d, h.Roster)

	marked, err := h.Store.AttendanceByDate(r.Context(), d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch attendance", err)
		return
	}
	markedNames := make([]string, len(marked))
	for i, rec := range marked {
		markedNames[i] = rec.Employee
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"schedule": ScheduleDTO{
			Date:              d.String(),
			WorkingDay:        h.Cal.IsWorkingDay(d),
			NextWorkingDay:    h.Cal.NextWorkingDay(d).String(),
			LastWorkingDayOfW: h.Cal.IsLastWorkingDayOfWeek(d),
			ActiveEmployees:   active,
			Remaining:         roster.Remaining(active, markedNames),
		},
	})
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// ListTransactions returns every entry, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"transactions": toTransactionDTOs(txs),
	})
}

// AddTransaction validates and persists one entry. Salary entries default
// their amount to the employee's configured base salary; fixed-expense
// entries default to the catalog amount. Recurring payments are checked
// against the guard before insert, and the store's unique index backs the
// check up if two submissions race.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var dto TransactionDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entryType := ledger.EntryType(dto.Type)
	if entryType != ledger.Income && entryType != ledger.Expense {
		writeError(w, http.StatusBadRequest, "Type must be income or expense", nil)
		return
	}
	if dto.Category == "" {
		writeError(w, http.StatusBadRequest, "Category is required", nil)
		return
	}
	d, err := schedule.ParseDate(dto.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	tx := ledger.Transaction{
		Type:         entryType,
		Date:         d,
		Amount:       dto.Amount,
		Category:     dto.Category,
		Description:  dto.Description,
		Employee:     dto.Employee,
		FixedExpense: dto.FixedExpense,
	}

	if entryType == ledger.Expense && dto.Category == ledger.CategorySalary {
		emp := h.Roster.Lookup(dto.Employee)
		if emp == nil {
			writeError(w, http.StatusBadRequest, "Salary entries require a roster employee", nil)
			return
		}
		if tx.Amount.IsZero() {
			tx.Amount = emp.BaseSalary
		}
		if tx.Description == "" {
			tx.Description = "Salary for " + emp.Name
		}
	}
	if entryType == ledger.Expense && dto.Category == ledger.CategoryFixed {
		amount, ok := h.Cfg.FixedExpenseAmount(dto.FixedExpense)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown fixed expense", nil)
			return
		}
		if tx.Amount.IsZero() {
			tx.Amount = amount
		}
	}
	if !tx.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}

	// Advisory pre-check; the store index is the authority if we race.
	if rp, ok := ledger.RecurringPaymentOf(tx); ok {
		txs, err := h.Store.ListTransactions(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch transactions", err)
			return
		}
		if ledger.IsDuplicate(rp.Kind, rp.Target, rp.Date.YearMonth(), ledger.RecurringPayments(txs)) {
			writeError(w, http.StatusConflict,
				fmt.Sprintf("%s already paid for %s", rp.Target, rp.Date.YearMonth()), nil)
			return
		}
	}

	saved, err := h.Store.InsertTransaction(r.Context(), tx)
	if err != nil {
		if errors.Is(err, sqlite.ErrDuplicateRecurringPayment) {
			writeError(w, http.StatusConflict, "Already paid for this month", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":      "success",
		"transaction": toTransactionDTO(saved),
	})
}

// DeleteTransaction removes an entry by id.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transaction not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

// ExportTransactions streams the CSV for the requested range.
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode := ledger.RangeAll
	if m := q.Get("mode"); m != "" {
		var err error
		if mode, err = ledger.ParseRangeMode(m); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid range mode", err)
			return
		}
	}

	today := h.today()
	month := today.YearMonth()
	if monthStr := q.Get("month"); monthStr != "" {
		var err error
		if month, err = schedule.ParseYearMonth(monthStr); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
			return
		}
	}

	txs, err := h.Store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions", err)
		return
	}
	filtered := ledger.FilterRange(txs, mode, month, today)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", ledger.ExportFilename(mode, month, today)))
	if err := ledger.ExportCSV(w, filtered); err != nil {
		// Headers already sent; nothing useful left to do but log.
		logf("csv export failed: %v", err)
	}
}

// GetSummary serves the monthly income/expense/profit series.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions", err)
		return
	}

	summaries := ledger.SummarizeByMonth(txs)
	dtos := make([]MonthlySummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = MonthlySummaryDTO{
			Month:   s.Month.String(),
			Income:  s.Income,
			Expense: s.Expense,
			Profit:  s.Profit(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"months": dtos,
	})
}

// =============================================================================
// PAYROLL GUARD
// =============================================================================

// GetUnpaid lists the salary targets or fixed-expense categories still
// unpaid for a month.
func (h *Handler) GetUnpaid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	kind := ledger.PaymentKind(q.Get("kind"))
	if kind != ledger.Salary && kind != ledger.FixedExpense {
		writeError(w, http.StatusBadRequest, "Kind must be salary or fixed_expense", nil)
		return
	}

	month := h.today().YearMonth()
	if monthStr := q.Get("month"); monthStr != "" {
		var err error
		if month, err = schedule.ParseYearMonth(monthStr); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
			return
		}
	}

	var allTargets []string
	switch kind {
	case ledger.Salary:
		allTargets = h.Roster.PayrollTargets(month)
	case ledger.FixedExpense:
		allTargets = h.Cfg.FixedExpenseNames()
	}

	txs, err := h.Store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions", err)
		return
	}
	existing := ledger.RecurringPayments(txs)

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"result": UnpaidDTO{
			Kind:   string(kind),
			Month:  month.String(),
			Unpaid: ledger.UnpaidTargets(kind, month, allTargets, existing),
			Paid:   ledger.PaidTargets(kind, month, existing),
		},
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Status: "error", Message: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
