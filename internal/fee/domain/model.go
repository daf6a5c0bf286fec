package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
	StatusPaid    Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOverdue, StatusPaid:
		return true
	default:
		return false
	}
}

type Type string

const (
	TypeMonthly  Type = "monthly"
	TypeOneTime  Type = "one_time"
	TypePackage  Type = "package"
	TypePerClass Type = "per_class"
	TypeCustom   Type = "custom"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMonthly, TypeOneTime, TypePackage, TypePerClass, TypeCustom:
		return true
	default:
		return false
	}
}

// Fee is one billable obligation for a student. Status is a denormalized
// cache over the payment ledger; readers re-derive it, writers refresh it.
type Fee struct {
	ID           snowflake.ID            `json:"id" gorm:"primaryKey"`
	TeacherID    snowflake.ID            `json:"teacher_id" gorm:"not null;index"`
	StudentID    snowflake.ID            `json:"student_id" gorm:"not null;index"`
	Amount       int64                   `json:"amount" gorm:"not null"`
	DueDate      time.Time               `json:"due_date" gorm:"type:date;not null"`
	Status       Status                  `json:"status" gorm:"type:varchar(16);not null"`
	Type         Type                    `json:"type" gorm:"type:varchar(16);not null"`
	Month        string                  `json:"month,omitempty" gorm:"type:varchar(16)"`
	Year         int                     `json:"year,omitempty"`
	FeePolicy    studentdomain.FeePolicy `json:"fee_policy" gorm:"type:varchar(32)"`
	IsFirstMonth bool                    `json:"is_first_month"`
	PaidOn       *time.Time              `json:"paid_on,omitempty" gorm:"type:date"`
	Metadata     datatypes.JSONMap       `json:"metadata,omitempty"`
	CreatedAt    time.Time               `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time               `json:"updated_at" gorm:"not null"`

	Payments []Payment `json:"payments,omitempty" gorm:"-"`
}

func (Fee) TableName() string { return "fees" }

// Payment is an immutable ledger entry against a fee. Payments are never
// edited; they are deleted only as a cascade when their non-paid fee is
// deleted.
type Payment struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	FeeID     snowflake.ID `json:"fee_id" gorm:"not null;index"`
	TeacherID snowflake.ID `json:"teacher_id" gorm:"not null;index"`
	Amount    int64        `json:"amount" gorm:"not null"`
	Date      time.Time    `json:"date" gorm:"type:date;not null"`
	Method    string       `json:"method" gorm:"type:varchar(32)"`
	Note      string       `json:"note,omitempty" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

var (
	ErrFeeNotFound              = errors.New("fee_not_found")
	ErrPaidFeeDeletionForbidden = errors.New("paid_fee_deletion_forbidden")
	// ErrPaidFeeImmutable rejects downgrading a paid fee back to
	// pending/overdue; there is no un-pay operation.
	ErrPaidFeeImmutable = errors.New("paid_fee_immutable")
	ErrDuplicateFee             = errors.New("duplicate_fee")
	ErrInvalidTenant            = errors.New("invalid_tenant")
	ErrInvalidStatus            = errors.New("invalid_status")
	ErrInvalidType              = errors.New("invalid_fee_type")
	ErrInvalidAmount            = errors.New("invalid_amount")
	ErrInvalidID                = errors.New("invalid_id")
)
