package domain

import (
	"errors"
	"strings"
	"time"
)

// Period is one billable calendar month.
type Period struct {
	Month time.Month
	Year  int
}

var ErrInvalidPeriod = errors.New("invalid_period")

// ParseMonth resolves an English month name ("January") case-insensitively.
func ParseMonth(name string) (time.Month, error) {
	name = strings.TrimSpace(name)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, nil
		}
	}
	return 0, ErrInvalidPeriod
}

func NewPeriod(monthName string, year int) (Period, error) {
	m, err := ParseMonth(monthName)
	if err != nil {
		return Period{}, err
	}
	if year < 2000 || year > 2200 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Month: m, Year: year}, nil
}

// Next advances by exactly one calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Month: time.January, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

func (p Period) MonthName() string { return p.Month.String() }

// Period returns the billing month of a monthly fee.
func (f *Fee) Period() (Period, error) {
	if f.Type != TypeMonthly {
		return Period{}, ErrInvalidPeriod
	}
	return NewPeriod(f.Month, f.Year)
}
