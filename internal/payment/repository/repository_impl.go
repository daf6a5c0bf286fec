package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() feedomain.PaymentRepository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *feedomain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) ListByFee(ctx context.Context, db *gorm.DB, teacherID, feeID snowflake.ID) ([]feedomain.Payment, error) {
	var items []feedomain.Payment
	err := db.WithContext(ctx).
		Where("teacher_id = ? AND fee_id = ?", teacherID, feeID).
		Order("date asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByFees(ctx context.Context, db *gorm.DB, teacherID snowflake.ID, feeIDs []snowflake.ID) (map[snowflake.ID][]feedomain.Payment, error) {
	out := make(map[snowflake.ID][]feedomain.Payment, len(feeIDs))
	if len(feeIDs) == 0 {
		return out, nil
	}

	query := db.WithContext(ctx).Where("fee_id IN ?", feeIDs)
	if teacherID != 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}

	var items []feedomain.Payment
	if err := query.Order("date asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.FeeID] = append(out[p.FeeID], p)
	}
	return out, nil
}

func (r *repo) SumByFee(ctx context.Context, db *gorm.DB, teacherID, feeID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&feedomain.Payment{}).
		Where("teacher_id = ? AND fee_id = ?", teacherID, feeID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) DeleteByFee(ctx context.Context, db *gorm.DB, teacherID, feeID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("teacher_id = ? AND fee_id = ?", teacherID, feeID).
		Delete(&feedomain.Payment{}).Error
}
