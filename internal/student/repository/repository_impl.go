package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() studentdomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, student *studentdomain.Student) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(student).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID) (*studentdomain.Student, error) {
	var s studentdomain.Student
	err := db.WithContext(ctx).
		Where("teacher_id = ? AND id = ?", teacherID, id).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ListBillable(ctx context.Context, db *gorm.DB, teacherID snowflake.ID) ([]*studentdomain.Student, error) {
	var items []*studentdomain.Student
	err := db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Where("is_active = ? AND archived = ?", true, false).
		Where("monthly_fee IS NOT NULL AND monthly_fee > 0").
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListBillableAll(ctx context.Context, db *gorm.DB) ([]*studentdomain.Student, error) {
	var items []*studentdomain.Student
	err := db.WithContext(ctx).
		Where("is_active = ? AND archived = ?", true, false).
		Where("monthly_fee IS NOT NULL AND monthly_fee > 0").
		Order("teacher_id asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
