package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListOptions struct {
	StudentID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, fee *Fee) error
	FindByID(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID) (*Fee, error)
	// FindMonthly is the generator's idempotency probe for one billing period.
	FindMonthly(ctx context.Context, db *gorm.DB, teacherID, studentID snowflake.ID, month string, year int) (*Fee, error)
	// List with teacherID 0 spans all tenants; callers gate that on the
	// superadmin role.
	List(ctx context.Context, db *gorm.DB, teacherID snowflake.ID, opts ListOptions) ([]*Fee, error)
	// TransitionToPaid conditionally marks the fee paid, stamping paid_on
	// only if unset. It reports whether this call performed the transition,
	// which is what keys rollover-once under concurrency.
	TransitionToPaid(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID, paidOn time.Time, now time.Time) (bool, error)
	// RefreshStatus updates the cached status of a not-yet-paid fee. A fee
	// concurrently marked paid is left alone; paid status never regresses.
	RefreshStatus(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID, to Status, now time.Time) error
	Delete(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID) error
}

type PaymentRepository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListByFee(ctx context.Context, db *gorm.DB, teacherID, feeID snowflake.ID) ([]Payment, error)
	ListByFees(ctx context.Context, db *gorm.DB, teacherID snowflake.ID, feeIDs []snowflake.ID) (map[snowflake.ID][]Payment, error)
	SumByFee(ctx context.Context, db *gorm.DB, teacherID, feeID snowflake.ID) (int64, error)
	DeleteByFee(ctx context.Context, db *gorm.DB, teacherID, feeID snowflake.ID) error
}
