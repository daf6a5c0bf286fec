package domain_test

import (
	"testing"
	"time"

	feedomain "github.com/classbill/classbill/internal/fee/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	for _, name := range []string{"January", "january", "JANUARY", " january "} {
		m, err := feedomain.ParseMonth(name)
		require.NoError(t, err, name)
		assert.Equal(t, time.January, m)
	}

	_, err := feedomain.ParseMonth("Januar")
	assert.ErrorIs(t, err, feedomain.ErrInvalidPeriod)

	_, err = feedomain.ParseMonth("")
	assert.ErrorIs(t, err, feedomain.ErrInvalidPeriod)
}

func TestNewPeriod(t *testing.T) {
	p, err := feedomain.NewPeriod("March", 2025)
	require.NoError(t, err)
	assert.Equal(t, time.March, p.Month)
	assert.Equal(t, 2025, p.Year)

	_, err = feedomain.NewPeriod("March", 1999)
	assert.ErrorIs(t, err, feedomain.ErrInvalidPeriod)

	_, err = feedomain.NewPeriod("Marchuary", 2025)
	assert.ErrorIs(t, err, feedomain.ErrInvalidPeriod)
}

func TestPeriodNext(t *testing.T) {
	next := feedomain.Period{Month: time.January, Year: 2025}.Next()
	assert.Equal(t, feedomain.Period{Month: time.February, Year: 2025}, next)

	next = feedomain.Period{Month: time.December, Year: 2025}.Next()
	assert.Equal(t, feedomain.Period{Month: time.January, Year: 2026}, next)
}

func TestFeePeriod(t *testing.T) {
	fee := &feedomain.Fee{Type: feedomain.TypeMonthly, Month: "January", Year: 2025}
	p, err := fee.Period()
	require.NoError(t, err)
	assert.Equal(t, time.January, p.Month)

	oneTime := &feedomain.Fee{Type: feedomain.TypeOneTime}
	_, err = oneTime.Period()
	assert.ErrorIs(t, err, feedomain.ErrInvalidPeriod)
}
