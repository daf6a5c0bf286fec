package domain

import "time"

// Fees fall due on the 10th regardless of policy; the policy only decides
// which month the 10th lands in.
const dueDayOfMonth = 10

// DueDate returns the due date of the fee covering (month, year).
// Advance students pay during the covered month; pay-after-study students pay
// in the month after it.
func DueDate(policy FeePolicy, month time.Month, year int) time.Time {
	due := time.Date(year, month, dueDayOfMonth, 0, 0, 0, 0, time.UTC)
	if policy == FeePolicyPayAfterStudy {
		due = due.AddDate(0, 1, 0)
	}
	return due
}

// MonthBillable reports whether (month, year) may be billed for a student who
// enrolled on joinDate. A month that ended strictly before enrollment is
// never billed.
func MonthBillable(joinDate time.Time, month time.Month, year int) bool {
	endOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	join := time.Date(joinDate.Year(), joinDate.Month(), joinDate.Day(), 0, 0, 0, 0, time.UTC)
	return !endOfMonth.Before(join)
}

// FirstBilledMonth reports whether (month, year) is the student's first
// billable month, i.e. the month they enrolled in.
func FirstBilledMonth(joinDate time.Time, month time.Month, year int) bool {
	return joinDate.Month() == month && joinDate.Year() == year
}

// TargetPeriod returns the single month the scheduler should generate for a
// policy as of now: the current month for advance students, the previous
// month for pay-after-study students.
func TargetPeriod(policy FeePolicy, now time.Time) (time.Month, int) {
	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if policy == FeePolicyPayAfterStudy {
		target = target.AddDate(0, -1, 0)
	}
	return target.Month(), target.Year()
}
