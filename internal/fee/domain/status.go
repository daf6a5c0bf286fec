package domain

import "time"

// DeriveStatus computes a fee's status from immutable facts: the amount owed,
// the due date and the summed ledger. It is pure and safe to call anywhere.
//
// The persisted Fee.Status is only a write-refreshed cache of this function;
// a fee becomes overdue by the calendar alone, so any "as of now" decision
// must re-derive instead of trusting the stored value.
func DeriveStatus(amount int64, dueDate time.Time, totalPaid int64, today time.Time) Status {
	if totalPaid >= amount {
		return StatusPaid
	}
	if DateOnly(today).After(DateOnly(dueDate)) {
		return StatusOverdue
	}
	return StatusPending
}

// DateOnly truncates to midnight UTC. Due-date comparisons are date-only.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TotalPaid sums the full ledger. Totals are never kept as running counters.
func TotalPaid(payments []Payment) int64 {
	var total int64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

// LiveStatus derives the fee's status as of today from its attached ledger.
func (f *Fee) LiveStatus(today time.Time) Status {
	return DeriveStatus(f.Amount, f.DueDate, TotalPaid(f.Payments), today)
}
