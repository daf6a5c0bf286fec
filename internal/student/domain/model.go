package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// FeePolicy controls which period a student is billed for and when it is due.
type FeePolicy string

const (
	// FeePolicyAdvance bills ahead of the study period.
	FeePolicyAdvance FeePolicy = "advance"
	// FeePolicyPayAfterStudy bills after the period has been studied.
	FeePolicyPayAfterStudy FeePolicy = "pay_after_study"
)

func (p FeePolicy) Valid() bool {
	return p == FeePolicyAdvance || p == FeePolicyPayAfterStudy
}

// Student is the billing profile of a student. The record itself is owned by
// the external student directory; this engine only reads the fields that
// drive invoice generation.
type Student struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	TeacherID  snowflake.ID `json:"teacher_id" gorm:"not null;index"`
	Name       string       `json:"name" gorm:"type:text;not null"`
	MonthlyFee *int64       `json:"monthly_fee"`
	FeePolicy  FeePolicy    `json:"fee_policy" gorm:"type:varchar(32)"`
	JoinDate   time.Time    `json:"join_date" gorm:"type:date"`
	IsActive   bool         `json:"is_active" gorm:"default:true"`
	Archived   bool         `json:"archived" gorm:"default:false"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null"`
}

func (Student) TableName() string { return "students" }

// Billable reports whether the student should receive monthly fees at all.
func (s *Student) Billable() bool {
	return s.IsActive && !s.Archived && s.MonthlyFee != nil && *s.MonthlyFee > 0
}

var (
	ErrStudentNotFound = errors.New("student_not_found")
	// ErrInvalidBillingConfig marks a student that should be billed but is
	// missing an amount or policy.
	ErrInvalidBillingConfig = errors.New("invalid_billing_configuration")
)
