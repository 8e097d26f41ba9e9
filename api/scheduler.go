/*
scheduler.go - Unpaid-payment reminder job

PURPOSE:
  A cron job that logs which salaries and fixed expenses are still unpaid
  for the current month. The schedule comes from configuration; an empty
  expression disables the job.

DESIGN:
  The reminder is advisory output only. It reuses the same guard queries
  the API serves, so the log line always matches what the dashboard shows.
*/
package api

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/econs/opsboard/ledger"
)

// StartReminder schedules the unpaid-payment reminder. Returns nil when
// the cron expression is empty. The caller owns stopping the returned
// cron instance on shutdown.
func StartReminder(h *Handler) (*cron.Cron, error) {
	if h.Cfg.ReminderCron == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(h.Cfg.ReminderCron, func() {
		if err := h.logUnpaidReminder(context.Background()); err != nil {
			logf("reminder: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("reminder schedule %q: %w", h.Cfg.ReminderCron, err)
	}
	c.Start()
	return c, nil
}

func (h *Handler) logUnpaidReminder(ctx context.Context) error {
	month := h.today().YearMonth()

	txs, err := h.Store.ListTransactions(ctx)
	if err != nil {
		return err
	}
	existing := ledger.RecurringPayments(txs)

	salaries := ledger.UnpaidTargets(ledger.Salary, month, h.Roster.PayrollTargets(month), existing)
	fixed := ledger.UnpaidTargets(ledger.FixedExpense, month, h.Cfg.FixedExpenseNames(), existing)

	if len(salaries) == 0 && len(fixed) == 0 {
		logf("reminder: all recurring payments recorded for %s", month)
		return nil
	}
	if len(salaries) > 0 {
		logf("reminder: unpaid salaries for %s: %v", month, salaries)
	}
	if len(fixed) > 0 {
		logf("reminder: unpaid fixed expenses for %s: %v", month, fixed)
	}
	return nil
}
