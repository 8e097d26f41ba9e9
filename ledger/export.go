/*
export.go - CSV export of transactions with summary sections

PURPOSE:
  Produces the bookkeeping CSV: one row per transaction, followed by
  per-month income/expense/profit summaries and overall totals.

RANGE FILTERS:
  Exports are scoped by a range filter: a single month, a trailing
  window (3m/6m/1y/3y ending today), or everything. "Today" is supplied
  by the caller; nothing here reads the clock.
*/
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/econs/opsboard/schedule"
)

// =============================================================================
// RANGE FILTER
// =============================================================================

// RangeMode selects how an export is scoped.
type RangeMode string

const (
	RangeMonth      RangeMode = "month"
	RangeThreeMonth RangeMode = "3m"
	RangeSixMonth   RangeMode = "6m"
	RangeYear       RangeMode = "1y"
	RangeThreeYear  RangeMode = "3y"
	RangeAll        RangeMode = "all"
)

// ErrInvalidRange is returned for an unknown range mode.
var ErrInvalidRange = errors.New("invalid range mode")

var lookbackMonths = map[RangeMode]int{
	RangeThreeMonth: 3,
	RangeSixMonth:   6,
	RangeYear:       12,
	RangeThreeYear:  36,
}

// ParseRangeMode validates a range mode string.
func ParseRangeMode(s string) (RangeMode, error) {
	switch m := RangeMode(s); m {
	case RangeMonth, RangeThreeMonth, RangeSixMonth, RangeYear, RangeThreeYear, RangeAll:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
}

// FilterRange returns the transactions within the selected range. For
// RangeMonth, month selects the bucket; for trailing windows the range is
// [today - N months, today] inclusive.
func FilterRange(txs []Transaction, mode RangeMode, month schedule.YearMonth, today schedule.Date) []Transaction {
	var keep func(Transaction) bool
	switch mode {
	case RangeAll:
		keep = func(Transaction) bool { return true }
	case RangeMonth:
		keep = func(tx Transaction) bool { return month.Contains(tx.Date) }
	default:
		n, ok := lookbackMonths[mode]
		if !ok {
			return nil
		}
		from := today.AddMonths(-n)
		keep = func(tx Transaction) bool {
			return tx.Date.AfterOrEqual(from) && tx.Date.BeforeOrEqual(today)
		}
	}

	var out []Transaction
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// =============================================================================
// CSV WRITER
// =============================================================================

var csvHeader = []string{"Date", "Type", "Category", "Amount", "Description", "Employee", "Fixed Expense"}

// ExportCSV writes the filtered transactions plus monthly and overall
// summary sections. The caller has already applied FilterRange.
func ExportCSV(w io.Writer, txs []Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		row := []string{
			tx.Date.String(),
			string(tx.Type),
			tx.Category,
			tx.Amount.String(),
			tx.Description,
			tx.Employee,
			tx.FixedExpense,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	blank := []string{""}
	cw.Write(blank)
	cw.Write([]string{"Monthly Summaries"})
	for _, s := range SummarizeByMonth(txs) {
		cw.Write([]string{s.Month.String()})
		cw.Write([]string{"Monthly Income", "", "", s.Income.String()})
		cw.Write([]string{"Monthly Expense", "", "", s.Expense.String()})
		cw.Write([]string{"Monthly Net Profit", "", "", s.Profit().String()})
	}

	totals := Summarize(txs)
	cw.Write(blank)
	cw.Write([]string{"Overall Summary"})
	cw.Write([]string{"Overall Total Income", "", "", totals.Income.String()})
	cw.Write([]string{"Overall Total Expense", "", "", totals.Expense.String()})
	cw.Write([]string{"Overall Net Profit", "", "", totals.Profit().String()})

	cw.Flush()
	return cw.Error()
}

// ExportFilename mirrors the download name convention: per-month exports
// are named by month, windowed exports by mode and export date.
func ExportFilename(mode RangeMode, month schedule.YearMonth, today schedule.Date) string {
	if mode == RangeMonth {
		return fmt.Sprintf("transactions-%s.csv", month)
	}
	return fmt.Sprintf("transactions-%s-%s.csv", mode, today)
}
