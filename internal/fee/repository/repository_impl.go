package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() feedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, fee *feedomain.Fee) error {
	return db.WithContext(ctx).Create(fee).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID) (*feedomain.Fee, error) {
	var f feedomain.Fee
	err := db.WithContext(ctx).
		Where("teacher_id = ? AND id = ?", teacherID, id).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repo) FindMonthly(ctx context.Context, db *gorm.DB, teacherID, studentID snowflake.ID, month string, year int) (*feedomain.Fee, error) {
	var f feedomain.Fee
	err := db.WithContext(ctx).
		Where("teacher_id = ? AND student_id = ? AND month = ? AND year = ? AND type = ?",
			teacherID, studentID, month, year, feedomain.TypeMonthly).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, teacherID snowflake.ID, opts feedomain.ListOptions) ([]*feedomain.Fee, error) {
	query := db.WithContext(ctx).Model(&feedomain.Fee{})
	if teacherID != 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if opts.StudentID != 0 {
		query = query.Where("student_id = ?", opts.StudentID)
	}

	var items []*feedomain.Fee
	if err := query.Order("due_date asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) TransitionToPaid(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID, paidOn time.Time, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&feedomain.Fee{}).
		Where("teacher_id = ? AND id = ? AND status <> ?", teacherID, id, feedomain.StatusPaid).
		Updates(map[string]any{
			"status":     feedomain.StatusPaid,
			"paid_on":    gorm.Expr("COALESCE(paid_on, ?)", feedomain.DateOnly(paidOn)),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) RefreshStatus(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID, to feedomain.Status, now time.Time) error {
	return db.WithContext(ctx).Model(&feedomain.Fee{}).
		Where("teacher_id = ? AND id = ? AND status <> ?", teacherID, id, feedomain.StatusPaid).
		Updates(map[string]any{"status": to, "updated_at": now}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, teacherID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("teacher_id = ? AND id = ?", teacherID, id).
		Delete(&feedomain.Fee{}).Error
}
