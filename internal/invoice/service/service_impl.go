package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/classbill/classbill/internal/clock"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	invoicedomain "github.com/classbill/classbill/internal/invoice/domain"
	"github.com/classbill/classbill/internal/observability"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"github.com/classbill/classbill/internal/tenantcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	FeeRepo     feedomain.Repository
	StudentRepo studentdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	feeRepo     feedomain.Repository
	studentRepo studentdomain.Repository
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		feeRepo:     p.FeeRepo,
		studentRepo: p.StudentRepo,
	}
}

func (s *Service) GeneratePeriod(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.GenerateResponse, error) {
	teacherID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || teacherID == 0 {
		return nil, feedomain.ErrInvalidTenant
	}

	period, err := feedomain.NewPeriod(req.Month, req.Year)
	if err != nil {
		return nil, err
	}

	students, err := s.studentRepo.ListBillable(ctx, s.db, teacherID)
	if err != nil {
		return nil, err
	}

	resp := &invoicedomain.GenerateResponse{Fees: []feedomain.Fee{}}
	for _, st := range students {
		fee, created, err := s.GenerateForStudent(ctx, s.db, st, period)
		if err != nil {
			// One student's bad data must not abort the rest of the batch.
			observability.GenerationErrors.Inc()
			s.log.Warn("fee generation failed for student",
				zap.String("student_id", st.ID.String()),
				zap.String("month", period.MonthName()),
				zap.Int("year", period.Year),
				zap.Error(err))
			continue
		}
		if created {
			resp.Created++
			resp.Fees = append(resp.Fees, *fee)
		} else {
			resp.Skipped++
		}
	}

	s.log.Info("invoice generation finished",
		zap.String("teacher_id", teacherID.String()),
		zap.String("month", period.MonthName()),
		zap.Int("year", period.Year),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped))

	return resp, nil
}

func (s *Service) GenerateForStudent(ctx context.Context, db *gorm.DB, st *studentdomain.Student, period feedomain.Period) (*feedomain.Fee, bool, error) {
	if st.MonthlyFee == nil || *st.MonthlyFee <= 0 || !st.FeePolicy.Valid() {
		return nil, false, studentdomain.ErrInvalidBillingConfig
	}

	// No retroactive billing for months that ended before enrollment.
	if !studentdomain.MonthBillable(st.JoinDate, period.Month, period.Year) {
		return nil, false, nil
	}

	existing, err := s.feeRepo.FindMonthly(ctx, db, st.TeacherID, st.ID, period.MonthName(), period.Year)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		observability.FeesSkipped.Inc()
		return existing, false, nil
	}

	now := s.clock.Now(ctx)
	fee := &feedomain.Fee{
		ID:           s.genID.Generate(),
		TeacherID:    st.TeacherID,
		StudentID:    st.ID,
		Amount:       *st.MonthlyFee,
		DueDate:      studentdomain.DueDate(st.FeePolicy, period.Month, period.Year),
		Status:       feedomain.StatusPending,
		Type:         feedomain.TypeMonthly,
		Month:        period.MonthName(),
		Year:         period.Year,
		FeePolicy:    st.FeePolicy,
		IsFirstMonth: studentdomain.FirstBilledMonth(st.JoinDate, period.Month, period.Year),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.feeRepo.Insert(ctx, db, fee); err != nil {
		// A concurrent generator pass won the race; the unique index on
		// (teacher, student, month, year) makes that a deterministic skip.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.feeRepo.FindMonthly(ctx, db, st.TeacherID, st.ID, period.MonthName(), period.Year)
			if findErr != nil {
				return nil, false, findErr
			}
			observability.FeesSkipped.Inc()
			return existing, false, nil
		}
		return nil, false, err
	}

	observability.FeesGenerated.Inc()
	return fee, true, nil
}

func (s *Service) Rollover(ctx context.Context, db *gorm.DB, paid *feedomain.Fee) (*feedomain.Fee, error) {
	if paid.Type != feedomain.TypeMonthly {
		return nil, nil
	}

	period, err := paid.Period()
	if err != nil {
		return nil, err
	}
	next := period.Next()

	existing, err := s.feeRepo.FindMonthly(ctx, db, paid.TeacherID, paid.StudentID, next.MonthName(), next.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.clock.Now(ctx)
	fee := &feedomain.Fee{
		ID:           s.genID.Generate(),
		TeacherID:    paid.TeacherID,
		StudentID:    paid.StudentID,
		Amount:       paid.Amount,
		DueDate:      studentdomain.DueDate(paid.FeePolicy, next.Month, next.Year),
		Status:       feedomain.StatusPending,
		Type:         feedomain.TypeMonthly,
		Month:        next.MonthName(),
		Year:         next.Year,
		FeePolicy:    paid.FeePolicy,
		IsFirstMonth: false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.feeRepo.Insert(ctx, db, fee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.feeRepo.FindMonthly(ctx, db, paid.TeacherID, paid.StudentID, next.MonthName(), next.Year)
		}
		return nil, err
	}

	observability.FeesGenerated.Inc()
	s.log.Info("rolled over fee to next period",
		zap.String("student_id", paid.StudentID.String()),
		zap.String("month", next.MonthName()),
		zap.Int("year", next.Year))

	return fee, nil
}
