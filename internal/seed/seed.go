package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	studentrepository "github.com/classbill/classbill/internal/student/repository"
	"gorm.io/gorm"
)

// DemoTeacherID is the tenant the demo roster belongs to. Fixed so repeated
// seeding targets the same tenant and local clients can hardcode the header.
const DemoTeacherID snowflake.ID = 1_000_001

func monthlyFee(v int64) *int64 { return &v }

// EnsureDemoRoster inserts a small roster for local development. Idempotent:
// students are matched by name within the demo tenant.
func EnsureDemoRoster(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	roster := []studentdomain.Student{
		{
			Name:       "Aisha Khan",
			MonthlyFee: monthlyFee(200_000),
			FeePolicy:  studentdomain.FeePolicyAdvance,
			JoinDate:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			IsActive:   true,
		},
		{
			Name:       "Bilal Ahmed",
			MonthlyFee: monthlyFee(150_000),
			FeePolicy:  studentdomain.FeePolicyPayAfterStudy,
			JoinDate:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			IsActive:   true,
		},
		{
			Name:       "Chen Wei",
			MonthlyFee: monthlyFee(250_000),
			FeePolicy:  studentdomain.FeePolicyAdvance,
			JoinDate:   time.Date(2024, time.September, 5, 0, 0, 0, 0, time.UTC),
			IsActive:   true,
		},
		{
			// Inactive students stay on the roster but are never billed.
			Name:       "Dmitri Volkov",
			MonthlyFee: monthlyFee(180_000),
			FeePolicy:  studentdomain.FeePolicyAdvance,
			JoinDate:   time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC),
			IsActive:   false,
		},
	}

	repo := studentrepository.Provide()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range roster {
			if err := ensureStudentTx(ctx, tx, repo, node, &roster[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureStudentTx(ctx context.Context, tx *gorm.DB, repo studentdomain.Repository, node *snowflake.Node, student *studentdomain.Student) error {
	var existing studentdomain.Student
	err := tx.WithContext(ctx).
		Where("teacher_id = ? AND name = ?", DemoTeacherID, student.Name).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	student.ID = node.Generate()
	student.TeacherID = DemoTeacherID
	student.CreatedAt = now
	student.UpdatedAt = now
	return repo.Upsert(ctx, tx, student)
}
