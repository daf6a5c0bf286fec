package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/classbill/classbill/internal/clock"
	"github.com/classbill/classbill/internal/config"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	feerepository "github.com/classbill/classbill/internal/fee/repository"
	invoiceservice "github.com/classbill/classbill/internal/invoice/service"
	"github.com/classbill/classbill/internal/scheduler"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	studentrepository "github.com/classbill/classbill/internal/student/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T, now time.Time) (*scheduler.Scheduler, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&studentdomain.Student{}, &feedomain.Fee{}, &feedomain.Payment{}))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fees_monthly_period
		ON fees (teacher_id, student_id, month, year) WHERE type = 'monthly'`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFixed(now)
	studentRepo := studentrepository.Provide()

	generator := invoiceservice.New(invoiceservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		FeeRepo:     feerepository.Provide(),
		StudentRepo: studentRepo,
	})

	s := scheduler.New(scheduler.Params{
		DB:          db,
		Log:         zap.NewNop(),
		Cfg:         config.Config{},
		Clock:       clk,
		StudentRepo: studentRepo,
		Generator:   generator,
	})
	return s, db, node
}

func seedStudent(t *testing.T, db *gorm.DB, node *snowflake.Node, teacher snowflake.ID, policy studentdomain.FeePolicy) *studentdomain.Student {
	t.Helper()
	amount := int64(2000)
	st := &studentdomain.Student{
		ID:         node.Generate(),
		TeacherID:  teacher,
		Name:       "Student",
		MonthlyFee: &amount,
		FeePolicy:  policy,
		JoinDate:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	}
	require.NoError(t, db.Create(st).Error)
	return st
}

func TestGenerateMonthlyFeesPass(t *testing.T) {
	now := time.Date(2025, time.March, 7, 9, 0, 0, 0, time.UTC)
	s, db, node := setup(t, now)

	// Two tenants; one pass covers both.
	advance := seedStudent(t, db, node, 1, studentdomain.FeePolicyAdvance)
	after := seedStudent(t, db, node, 2, studentdomain.FeePolicyPayAfterStudy)

	require.NoError(t, s.GenerateMonthlyFees(context.Background()))

	var advanceFee feedomain.Fee
	require.NoError(t, db.First(&advanceFee, "student_id = ?", advance.ID).Error)
	assert.Equal(t, "March", advanceFee.Month)
	assert.Equal(t, 2025, advanceFee.Year)

	// Pay-after-study students are billed for the month just studied.
	var afterFee feedomain.Fee
	require.NoError(t, db.First(&afterFee, "student_id = ?", after.ID).Error)
	assert.Equal(t, "February", afterFee.Month)
	assert.Equal(t, 2025, afterFee.Year)

	// A second pass on the same day creates nothing new.
	require.NoError(t, s.GenerateMonthlyFees(context.Background()))
	var count int64
	require.NoError(t, db.Model(&feedomain.Fee{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGenerateMonthlyFeesIsolatesStudentErrors(t *testing.T) {
	now := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	s, db, node := setup(t, now)

	healthy := seedStudent(t, db, node, 1, studentdomain.FeePolicyAdvance)

	// A corrupt policy fails generation for this student only.
	broken := seedStudent(t, db, node, 1, studentdomain.FeePolicy("sometimes"))

	require.NoError(t, s.GenerateMonthlyFees(context.Background()))

	var count int64
	require.NoError(t, db.Model(&feedomain.Fee{}).Where("student_id = ?", healthy.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&feedomain.Fee{}).Where("student_id = ?", broken.ID).Count(&count).Error)
	assert.Zero(t, count)
}
