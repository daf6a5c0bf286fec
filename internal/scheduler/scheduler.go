package scheduler

import (
	"context"
	"time"

	"github.com/classbill/classbill/internal/clock"
	"github.com/classbill/classbill/internal/config"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	invoicedomain "github.com/classbill/classbill/internal/invoice/domain"
	"github.com/classbill/classbill/internal/observability"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	Clock       clock.Clock
	StudentRepo studentdomain.Repository
	Generator   invoicedomain.Service
}

type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	interval    time.Duration
	clock       clock.Clock
	studentRepo studentdomain.Repository
	generator   invoicedomain.Service
}

func New(p Params) *Scheduler {
	interval := p.Cfg.Scheduler.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler"),
		interval:    interval,
		clock:       p.Clock,
		studentRepo: p.StudentRepo,
		generator:   p.Generator,
	}
}

// RunForever runs one pass immediately, then again on every interval until
// the context is cancelled. Passes keep no bookkeeping between runs; the
// generator's existence check makes each one idempotent.
func (s *Scheduler) RunForever(ctx context.Context) {
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	if err := s.GenerateMonthlyFees(ctx); err != nil {
		s.log.Error("monthly fee pass failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if err := s.GenerateMonthlyFees(ctx); err != nil {
				s.log.Error("monthly fee pass failed", zap.Error(err))
			}
		}
	}
}

// GenerateMonthlyFees is one full pass: every billable student across all
// tenants gets the single fee their policy implies for the current date.
// A storage failure aborts the pass (next tick retries); a single student's
// error is isolated.
func (s *Scheduler) GenerateMonthlyFees(ctx context.Context) error {
	students, err := s.studentRepo.ListBillableAll(ctx, s.db)
	if err != nil {
		observability.SchedulerTickFailures.Inc()
		return err
	}

	now := s.clock.Now(ctx)
	var created, skipped, failed int
	for _, st := range students {
		month, year := studentdomain.TargetPeriod(st.FeePolicy, now)
		period := feedomain.Period{Month: month, Year: year}

		_, didCreate, err := s.generator.GenerateForStudent(ctx, s.db, st, period)
		if err != nil {
			failed++
			observability.GenerationErrors.Inc()
			s.log.Warn("skipping student after generation error",
				zap.String("teacher_id", st.TeacherID.String()),
				zap.String("student_id", st.ID.String()),
				zap.Error(err))
			continue
		}
		if didCreate {
			created++
		} else {
			skipped++
		}
	}

	observability.SchedulerTicks.Inc()
	s.log.Info("monthly fee pass finished",
		zap.Int("students", len(students)),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
	return nil
}
