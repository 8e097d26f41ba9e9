/*
Package ledger implements transaction bookkeeping: income/expense entries,
monthly recurring-payment duplicate prevention, summaries, and CSV export.

PURPOSE:
  Transactions are simple dated entries. The interesting logic is the
  recurring-payment guard: salary and fixed-expense payouts happen once a
  month per target, and the guard computes who is still unpaid and whether
  a submission would be a duplicate.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: A dated income or expense entry
  - PaymentKind: Salary vs. fixed expense (the two recurring kinds)
  - RecurringPayment: The (kind, target, date) view the guard operates on

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for amounts, never float64
  2. Derived months: a record's month always comes from its date
  3. Purity: guard functions take the already-fetched record list

SEE ALSO:
  - guard.go: Unpaid-target computation and duplicate detection
  - export.go: CSV export with monthly summaries
*/
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/econs/opsboard/schedule"
)

// =============================================================================
// TRANSACTION - Dated income or expense entry
// =============================================================================

// EntryType distinguishes income from expense.
type EntryType string

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

// CategorySalary and CategoryFixed are the expense categories that carry
// recurring-payment semantics.
const (
	CategorySalary = "Salary"
	CategoryFixed  = "Fixed"
)

// Transaction is one bookkeeping entry. Salary entries carry the employee
// name; fixed-expense entries carry the catalog item name.
type Transaction struct {
	ID           string
	Type         EntryType
	Date         schedule.Date
	Amount       decimal.Decimal
	Category     string
	Description  string
	Employee     string // set when Category == CategorySalary
	FixedExpense string // set when Category == CategoryFixed
}

// =============================================================================
// RECURRING PAYMENT - Monthly-cadence payment view
// =============================================================================

// PaymentKind identifies which monthly recurring flow a record belongs to.
type PaymentKind string

const (
	Salary       PaymentKind = "salary"
	FixedExpense PaymentKind = "fixed_expense"
)

// RecurringPayment is the slice of a transaction the guard cares about.
// Month is always derived from Date, never stored separately.
type RecurringPayment struct {
	Kind   PaymentKind
	Target string // employee name or fixed-expense category name
	Amount decimal.Decimal
	Date   schedule.Date
}

// RecurringPaymentOf extracts the recurring-payment view of a transaction,
// or false if the transaction is not a recurring payment.
func RecurringPaymentOf(tx Transaction) (RecurringPayment, bool) {
	if tx.Type != Expense {
		return RecurringPayment{}, false
	}
	switch tx.Category {
	case CategorySalary:
		if tx.Employee == "" {
			return RecurringPayment{}, false
		}
		return RecurringPayment{Kind: Salary, Target: tx.Employee, Amount: tx.Amount, Date: tx.Date}, true
	case CategoryFixed:
		if tx.FixedExpense == "" {
			return RecurringPayment{}, false
		}
		return RecurringPayment{Kind: FixedExpense, Target: tx.FixedExpense, Amount: tx.Amount, Date: tx.Date}, true
	}
	return RecurringPayment{}, false
}

// RecurringPayments extracts the recurring-payment views from a transaction
// list, dropping everything else.
func RecurringPayments(txs []Transaction) []RecurringPayment {
	var out []RecurringPayment
	for _, tx := range txs {
		if rp, ok := RecurringPaymentOf(tx); ok {
			out = append(out, rp)
		}
	}
	return out
}
