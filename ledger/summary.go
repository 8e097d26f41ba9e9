/*
summary.go - Monthly income/expense/profit aggregation

PURPOSE:
  Feeds the dashboard chart and the CSV export's summary sections.
  Pure aggregation over an in-memory transaction list.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/econs/opsboard/schedule"
)

// MonthlySummary is the income/expense/profit rollup for one month.
type MonthlySummary struct {
	Month   schedule.YearMonth
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Profit is income minus expense.
func (s MonthlySummary) Profit() decimal.Decimal {
	return s.Income.Sub(s.Expense)
}

// Totals is the overall rollup across a transaction set.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (t Totals) Profit() decimal.Decimal { return t.Income.Sub(t.Expense) }

// SummarizeByMonth groups transactions by the month derived from their date
// and returns per-month rollups in chronological order.
func SummarizeByMonth(txs []Transaction) []MonthlySummary {
	byMonth := make(map[schedule.YearMonth]*MonthlySummary)
	for _, tx := range txs {
		ym := tx.Date.YearMonth()
		s, ok := byMonth[ym]
		if !ok {
			s = &MonthlySummary{Month: ym, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[ym] = s
		}
		switch tx.Type {
		case Income:
			s.Income = s.Income.Add(tx.Amount)
		case Expense:
			s.Expense = s.Expense.Add(tx.Amount)
		}
	}

	out := make([]MonthlySummary, 0, len(byMonth))
	for _, s := range byMonth {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.String() < out[j].Month.String()
	})
	return out
}

// Summarize returns overall income/expense totals.
func Summarize(txs []Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}
