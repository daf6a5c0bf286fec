package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/classbill/classbill/internal/clock"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	feerepository "github.com/classbill/classbill/internal/fee/repository"
	invoicedomain "github.com/classbill/classbill/internal/invoice/domain"
	"github.com/classbill/classbill/internal/invoice/service"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	studentrepository "github.com/classbill/classbill/internal/student/repository"
	"github.com/classbill/classbill/internal/tenantcontext"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const teacherID snowflake.ID = 42

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&studentdomain.Student{}, &feedomain.Fee{}, &feedomain.Payment{}))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fees_monthly_period
		ON fees (teacher_id, student_id, month, year) WHERE type = 'monthly'`).Error)
	return db
}

func newService(t *testing.T, db *gorm.DB, now time.Time) (invoicedomain.Service, *clock.Fixed) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFixed(now)
	svc := service.New(service.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		FeeRepo:     feerepository.Provide(),
		StudentRepo: studentrepository.Provide(),
	})
	return svc, clk
}

func monthlyFee(v int64) *int64 { return &v }

func seedStudent(t *testing.T, db *gorm.DB, node *snowflake.Node, s studentdomain.Student) *studentdomain.Student {
	t.Helper()
	if s.ID == 0 {
		s.ID = node.Generate()
	}
	s.TeacherID = teacherID
	require.NoError(t, db.Create(&s).Error)
	return &s
}

func TestGeneratePeriod(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2025, time.January, 3, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, db, now)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	seedStudent(t, db, node, studentdomain.Student{
		Name:       "Aisha",
		MonthlyFee: monthlyFee(2000),
		FeePolicy:  studentdomain.FeePolicyAdvance,
		JoinDate:   time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	})
	seedStudent(t, db, node, studentdomain.Student{
		Name:       "Bilal",
		MonthlyFee: monthlyFee(1500),
		FeePolicy:  studentdomain.FeePolicyPayAfterStudy,
		JoinDate:   time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	})
	// Inactive students are never billed.
	seedStudent(t, db, node, studentdomain.Student{
		Name:       "Chen",
		MonthlyFee: monthlyFee(1800),
		FeePolicy:  studentdomain.FeePolicyAdvance,
		JoinDate:   time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   false,
	})

	ctx := tenantcontext.WithTenantID(context.Background(), teacherID)

	resp, err := svc.GeneratePeriod(ctx, invoicedomain.GenerateRequest{Month: "January", Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 0, resp.Skipped)
	require.Len(t, resp.Fees, 2)

	for _, fee := range resp.Fees {
		assert.Equal(t, feedomain.StatusPending, fee.Status)
		assert.Equal(t, feedomain.TypeMonthly, fee.Type)
		assert.Equal(t, "January", fee.Month)
		assert.Equal(t, 2025, fee.Year)
	}

	// Policy decides the due date of the same covered month.
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), resp.Fees[0].DueDate)
	assert.Equal(t, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), resp.Fees[1].DueDate)

	// Re-running the same period creates nothing.
	resp, err = svc.GeneratePeriod(ctx, invoicedomain.GenerateRequest{Month: "January", Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 2, resp.Skipped)

	var count int64
	require.NoError(t, db.Model(&feedomain.Fee{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGeneratePeriodRequiresTenant(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, time.Now().UTC())

	_, err := svc.GeneratePeriod(context.Background(), invoicedomain.GenerateRequest{Month: "January", Year: 2025})
	assert.ErrorIs(t, err, feedomain.ErrInvalidTenant)
}

func TestGeneratePeriodRejectsBadPeriod(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, time.Now().UTC())
	ctx := tenantcontext.WithTenantID(context.Background(), teacherID)

	_, err := svc.GeneratePeriod(ctx, invoicedomain.GenerateRequest{Month: "Snowuary", Year: 2025})
	assert.ErrorIs(t, err, feedomain.ErrInvalidPeriod)

	_, err = svc.GeneratePeriod(ctx, invoicedomain.GenerateRequest{Month: "January", Year: 25})
	assert.ErrorIs(t, err, feedomain.ErrInvalidPeriod)
}

func TestGenerateForStudentJoinGate(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
	svc, _ := newService(t, db, now)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	st := seedStudent(t, db, node, studentdomain.Student{
		Name:       "Aisha",
		MonthlyFee: monthlyFee(2000),
		FeePolicy:  studentdomain.FeePolicyAdvance,
		JoinDate:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	})

	ctx := context.Background()

	// December 2024 ended before enrollment: nothing to bill, no error.
	fee, created, err := svc.GenerateForStudent(ctx, db, st, feedomain.Period{Month: time.December, Year: 2024})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, fee)

	// The join month is billable and flagged as the first month.
	fee, created, err = svc.GenerateForStudent(ctx, db, st, feedomain.Period{Month: time.January, Year: 2025})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, fee)
	assert.True(t, fee.IsFirstMonth)

	fee, created, err = svc.GenerateForStudent(ctx, db, st, feedomain.Period{Month: time.February, Year: 2025})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, fee.IsFirstMonth)
}

func TestGenerateForStudentInvalidProfile(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, time.Now().UTC())

	st := &studentdomain.Student{
		ID:        1,
		TeacherID: teacherID,
		FeePolicy: studentdomain.FeePolicy("sometimes"),
		JoinDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	_, _, err := svc.GenerateForStudent(context.Background(), db, st, feedomain.Period{Month: time.January, Year: 2025})
	assert.ErrorIs(t, err, studentdomain.ErrInvalidBillingConfig)
}

func TestRollover(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)
	svc, _ := newService(t, db, now)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	st := seedStudent(t, db, node, studentdomain.Student{
		Name:       "Aisha",
		MonthlyFee: monthlyFee(2000),
		FeePolicy:  studentdomain.FeePolicyAdvance,
		JoinDate:   time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	})

	ctx := context.Background()
	paid, created, err := svc.GenerateForStudent(ctx, db, st, feedomain.Period{Month: time.January, Year: 2025})
	require.NoError(t, err)
	require.True(t, created)

	next, err := svc.Rollover(ctx, db, paid)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "February", next.Month)
	assert.Equal(t, 2025, next.Year)
	assert.Equal(t, paid.Amount, next.Amount)
	assert.Equal(t, feedomain.StatusPending, next.Status)
	assert.False(t, next.IsFirstMonth)
	assert.Equal(t, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), next.DueDate)

	// Repeating the rollover returns the existing fee instead of a duplicate.
	again, err := svc.Rollover(ctx, db, paid)
	require.NoError(t, err)
	assert.Equal(t, next.ID, again.ID)

	// Non-monthly fees never roll over.
	oneTime := &feedomain.Fee{Type: feedomain.TypeOneTime, TeacherID: teacherID, StudentID: st.ID}
	got, err := svc.Rollover(ctx, db, oneTime)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRolloverDecemberWrapsYear(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	st := seedStudent(t, db, node, studentdomain.Student{
		Name:       "Aisha",
		MonthlyFee: monthlyFee(2000),
		FeePolicy:  studentdomain.FeePolicyAdvance,
		JoinDate:   time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	})

	ctx := context.Background()
	paid, _, err := svc.GenerateForStudent(ctx, db, st, feedomain.Period{Month: time.December, Year: 2025})
	require.NoError(t, err)

	next, err := svc.Rollover(ctx, db, paid)
	require.NoError(t, err)
	assert.Equal(t, "January", next.Month)
	assert.Equal(t, 2026, next.Year)
}
