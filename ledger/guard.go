/*
guard.go - Monthly recurring-payment duplicate prevention

PURPOSE:
  Salary and fixed-expense payouts are at-most-once per (target, month).
  The guard computes which targets are still unpaid for a month and flags
  would-be duplicates before submission.

SOFT INVARIANT - READ THIS:
  The guard is evaluated against a snapshot of records fetched moments
  earlier, so "check then insert" is inherently race-prone under concurrent
  submissions. The guard is a best-effort pre-check and UX affordance, NOT
  a correctness guarantee. The store-level unique index on
  (kind, target, month) is the authority; see store/sqlite. Callers MUST
  still consult IsDuplicate before persisting, and MUST re-verify against
  the current record set every time eligibility is recomputed.

SEE ALSO:
  - types.go: RecurringPayment and how it is derived from transactions
  - store/sqlite/sqlite.go: The hard uniqueness constraint
*/
package ledger

import "github.com/econs/opsboard/schedule"

// =============================================================================
// RECURRING PAYMENT GUARD
// =============================================================================

// PaidTargets returns the distinct targets with a recorded payment of the
// given kind in the given month, in first-seen order.
func PaidTargets(kind PaymentKind, month schedule.YearMonth, existing []RecurringPayment) []string {
	seen := make(map[string]bool)
	var paid []string
	for _, rec := range existing {
		if rec.Kind != kind {
			continue
		}
		if !month.Contains(rec.Date) {
			continue
		}
		if seen[rec.Target] {
			continue
		}
		seen[rec.Target] = true
		paid = append(paid, rec.Target)
	}
	return paid
}

// UnpaidTargets returns allTargets minus the targets already paid for the
// month, preserving the order of allTargets.
func UnpaidTargets(kind PaymentKind, month schedule.YearMonth, allTargets []string, existing []RecurringPayment) []string {
	paid := make(map[string]bool)
	for _, target := range PaidTargets(kind, month, existing) {
		paid[target] = true
	}

	unpaid := make([]string, 0, len(allTargets))
	for _, target := range allTargets {
		if !paid[target] {
			unpaid = append(unpaid, target)
		}
	}
	return unpaid
}

// IsDuplicate reports whether target already has a payment of the given
// kind in the given month. Must be called, and must block submission,
// before any new recurring payment for (kind, target, month) is persisted.
func IsDuplicate(kind PaymentKind, target string, month schedule.YearMonth, existing []RecurringPayment) bool {
	for _, rec := range existing {
		if rec.Kind == kind && rec.Target == target && month.Contains(rec.Date) {
			return true
		}
	}
	return false
}
