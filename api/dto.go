/*
dto.go - Request/response shapes for the dashboard API

PURPOSE:
  JSON structures decoupling the wire contract from the domain model.
  Responses follow the {status, ...} envelope the dashboard frontend
  expects; errors carry a human message plus optional detail.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/econs/opsboard/ledger"
	"github.com/econs/opsboard/store/sqlite"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceRecordDTO mirrors one marked employee-day on the wire.
type AttendanceRecordDTO struct {
	Employee string `json:"employee"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// MarkAttendanceRequest is the bulk attendance submission.
type MarkAttendanceRequest struct {
	Records []AttendanceRecordDTO `json:"records"`
}

// ScheduleDTO describes a date's standing in the working calendar plus the
// remaining work list for the attendance screen.
type ScheduleDTO struct {
	Date              string   `json:"date"`
	WorkingDay        bool     `json:"working_day"`
	NextWorkingDay    string   `json:"next_working_day"`
	LastWorkingDayOfW bool     `json:"last_working_day_of_week"`
	ActiveEmployees   []string `json:"active_employees"`
	Remaining         []string `json:"remaining"`
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionDTO mirrors one bookkeeping entry on the wire.
type TransactionDTO struct {
	ID           string          `json:"id,omitempty"`
	Type         string          `json:"type"`
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Description  string          `json:"description,omitempty"`
	Employee     string          `json:"employee,omitempty"`
	FixedExpense string          `json:"fixedExpense,omitempty"`
}

// MonthlySummaryDTO is one point of the net-profit chart series.
type MonthlySummaryDTO struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Profit  decimal.Decimal `json:"profit"`
}

// UnpaidDTO lists targets still unpaid for a month.
type UnpaidDTO struct {
	Kind   string   `json:"kind"`
	Month  string   `json:"month"`
	Unpaid []string `json:"unpaid"`
	Paid   []string `json:"paid"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAttendanceDTO(rec sqlite.AttendanceRecord) AttendanceRecordDTO {
	return AttendanceRecordDTO{
		Employee: rec.Employee,
		Date:     rec.Date.String(),
		Status:   string(rec.Status),
	}
}

func toAttendanceDTOs(records []sqlite.AttendanceRecord) []AttendanceRecordDTO {
	dtos := make([]AttendanceRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toAttendanceDTO(rec)
	}
	return dtos
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:           tx.ID,
		Type:         string(tx.Type),
		Date:         tx.Date.String(),
		Amount:       tx.Amount,
		Category:     tx.Category,
		Description:  tx.Description,
		Employee:     tx.Employee,
		FixedExpense: tx.FixedExpense,
	}
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}
