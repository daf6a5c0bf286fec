package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, student *Student) error
	FindByID(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID) (*Student, error)
	ListBillable(ctx context.Context, db *gorm.DB, teacherID snowflake.ID) ([]*Student, error)
	// ListBillableAll spans every tenant; only the scheduler uses it.
	ListBillableAll(ctx context.Context, db *gorm.DB) ([]*Student, error)
}
