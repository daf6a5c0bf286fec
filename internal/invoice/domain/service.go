package domain

import (
	"context"

	feedomain "github.com/classbill/classbill/internal/fee/domain"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"gorm.io/gorm"
)

type GenerateRequest struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

type GenerateResponse struct {
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Fees    []feedomain.Fee `json:"fees"`
}

type Service interface {
	// GeneratePeriod creates the monthly fee for every eligible student of
	// the calling tenant for one explicit period. Re-running it is a no-op
	// for already-billed students.
	GeneratePeriod(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	// GenerateForStudent is the idempotent core shared with the scheduler.
	// It reports whether a fee was created; an existing or join-gated period
	// yields (existing-or-nil, false, nil).
	GenerateForStudent(ctx context.Context, db *gorm.DB, student *studentdomain.Student, period feedomain.Period) (*feedomain.Fee, bool, error)
	// Rollover synthesizes the following month's fee after a monthly fee was
	// paid in full. It runs inside the caller's transaction and is idempotent.
	Rollover(ctx context.Context, db *gorm.DB, paid *feedomain.Fee) (*feedomain.Fee, error)
}
