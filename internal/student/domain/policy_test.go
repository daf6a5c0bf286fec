package domain_test

import (
	"testing"
	"time"

	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDueDate(t *testing.T) {
	t.Run("advance pays within the covered month", func(t *testing.T) {
		due := studentdomain.DueDate(studentdomain.FeePolicyAdvance, time.January, 2025)
		assert.Equal(t, date(2025, time.January, 10), due)
	})

	t.Run("pay after study pays in the following month", func(t *testing.T) {
		due := studentdomain.DueDate(studentdomain.FeePolicyPayAfterStudy, time.March, 2025)
		assert.Equal(t, date(2025, time.April, 10), due)
	})

	t.Run("pay after study december rolls into january", func(t *testing.T) {
		due := studentdomain.DueDate(studentdomain.FeePolicyPayAfterStudy, time.December, 2025)
		assert.Equal(t, date(2026, time.January, 10), due)
	})
}

func TestMonthBillable(t *testing.T) {
	join := date(2025, time.January, 15)

	assert.False(t, studentdomain.MonthBillable(join, time.December, 2024),
		"months that ended before enrollment are never billed")
	assert.True(t, studentdomain.MonthBillable(join, time.January, 2025),
		"the join month itself is billable")
	assert.True(t, studentdomain.MonthBillable(join, time.February, 2025))

	// Joining on the last day of a month still makes that month billable.
	assert.True(t, studentdomain.MonthBillable(date(2025, time.January, 31), time.January, 2025))
}

func TestFirstBilledMonth(t *testing.T) {
	join := date(2025, time.January, 15)

	assert.True(t, studentdomain.FirstBilledMonth(join, time.January, 2025))
	assert.False(t, studentdomain.FirstBilledMonth(join, time.February, 2025))
	assert.False(t, studentdomain.FirstBilledMonth(join, time.January, 2026))
}

func TestTargetPeriod(t *testing.T) {
	now := date(2025, time.March, 7)

	month, year := studentdomain.TargetPeriod(studentdomain.FeePolicyAdvance, now)
	assert.Equal(t, time.March, month)
	assert.Equal(t, 2025, year)

	month, year = studentdomain.TargetPeriod(studentdomain.FeePolicyPayAfterStudy, now)
	assert.Equal(t, time.February, month)
	assert.Equal(t, 2025, year)

	// January wraps to the previous December.
	month, year = studentdomain.TargetPeriod(studentdomain.FeePolicyPayAfterStudy, date(2025, time.January, 3))
	assert.Equal(t, time.December, month)
	assert.Equal(t, 2024, year)
}
