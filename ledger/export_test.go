package ledger_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econs/opsboard/ledger"
)

func sampleTransactions() []ledger.Transaction {
	return []ledger.Transaction{
		{ID: "1", Type: ledger.Income, Date: date(2025, time.June, 5), Amount: amount(100000), Category: "OK Builder"},
		{ID: "2", Type: ledger.Expense, Date: date(2025, time.June, 10), Amount: amount(35000), Category: ledger.CategoryFixed, FixedExpense: "Rent"},
		{ID: "3", Type: ledger.Expense, Date: date(2025, time.July, 1), Amount: amount(39000), Category: ledger.CategorySalary, Employee: "Hamza"},
		{ID: "4", Type: ledger.Income, Date: date(2025, time.July, 20), Amount: amount(50000), Category: "Misc"},
	}
}

// =============================================================================
// SUMMARIES
// =============================================================================

func TestSummarizeByMonth(t *testing.T) {
	summaries := ledger.SummarizeByMonth(sampleTransactions())
	require.Len(t, summaries, 2)

	june, july := summaries[0], summaries[1]
	assert.Equal(t, "2025-06", june.Month.String())
	assert.True(t, june.Income.Equal(amount(100000)))
	assert.True(t, june.Expense.Equal(amount(35000)))
	assert.True(t, june.Profit().Equal(amount(65000)))

	assert.Equal(t, "2025-07", july.Month.String())
	assert.True(t, july.Profit().Equal(amount(11000)))
}

func TestSummarize_Totals(t *testing.T) {
	totals := ledger.Summarize(sampleTransactions())
	assert.True(t, totals.Income.Equal(amount(150000)))
	assert.True(t, totals.Expense.Equal(amount(74000)))
	assert.True(t, totals.Profit().Equal(amount(76000)))
}

// =============================================================================
// RANGE FILTER
// =============================================================================

func TestFilterRange_Month(t *testing.T) {
	got := ledger.FilterRange(sampleTransactions(), ledger.RangeMonth, month("2025-06"), date(2025, time.July, 25))
	require.Len(t, got, 2)
	for _, tx := range got {
		assert.Equal(t, "2025-06", tx.Date.YearMonth().String())
	}
}

func TestFilterRange_TrailingWindow(t *testing.T) {
	// Today 2025-07-25, 3m window reaches back to 2025-04-25: everything in
	// the sample is inside; shrink today to cut June off.
	all := ledger.FilterRange(sampleTransactions(), ledger.RangeThreeMonth, month("2025-07"), date(2025, time.July, 25))
	assert.Len(t, all, 4)

	// Future-dated entries fall outside the window.
	early := ledger.FilterRange(sampleTransactions(), ledger.RangeThreeMonth, month("2025-07"), date(2025, time.June, 30))
	assert.Len(t, early, 2)
}

func TestFilterRange_All(t *testing.T) {
	got := ledger.FilterRange(sampleTransactions(), ledger.RangeAll, month("2025-07"), date(2020, time.January, 1))
	assert.Len(t, got, 4)
}

func TestParseRangeMode(t *testing.T) {
	for _, s := range []string{"month", "3m", "6m", "1y", "3y", "all"} {
		_, err := ledger.ParseRangeMode(s)
		assert.NoError(t, err, s)
	}
	_, err := ledger.ParseRangeMode("2w")
	assert.ErrorIs(t, err, ledger.ErrInvalidRange)
}

// =============================================================================
// CSV EXPORT
// =============================================================================

func TestExportCSV(t *testing.T) {
	var sb strings.Builder
	err := ledger.ExportCSV(&sb, sampleTransactions())
	require.NoError(t, err)

	out := sb.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "Date,Type,Category,Amount,Description,Employee,Fixed Expense", lines[0])
	assert.Contains(t, out, "2025-07-01,expense,Salary,39000,,Hamza,")
	assert.Contains(t, out, "Monthly Summaries")
	assert.Contains(t, out, "Monthly Net Profit,,,65000")
	assert.Contains(t, out, "Overall Net Profit,,,76000")
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "transactions-2025-07.csv",
		ledger.ExportFilename(ledger.RangeMonth, month("2025-07"), date(2025, time.July, 25)))
	assert.Equal(t, "transactions-3m-2025-07-25.csv",
		ledger.ExportFilename(ledger.RangeThreeMonth, month("2025-07"), date(2025, time.July, 25)))
}
