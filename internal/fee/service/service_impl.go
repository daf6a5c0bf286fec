package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/classbill/classbill/internal/clock"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	invoicedomain "github.com/classbill/classbill/internal/invoice/domain"
	paymentdomain "github.com/classbill/classbill/internal/payment/domain"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"github.com/classbill/classbill/internal/tenantcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        feedomain.Repository
	PaymentRepo feedomain.PaymentRepository
	StudentRepo studentdomain.Repository
	InvoiceSvc  invoicedomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        feedomain.Repository
	paymentRepo feedomain.PaymentRepository
	studentRepo studentdomain.Repository
	invoiceSvc  invoicedomain.Service
}

func New(p Params) feedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("fee.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		paymentRepo: p.PaymentRepo,
		studentRepo: p.StudentRepo,
		invoiceSvc:  p.InvoiceSvc,
	}
}

func (s *Service) Create(ctx context.Context, req feedomain.CreateRequest) (*feedomain.Fee, error) {
	teacherID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || teacherID == 0 {
		return nil, feedomain.ErrInvalidTenant
	}

	studentID, err := snowflake.ParseString(strings.TrimSpace(req.StudentID))
	if err != nil {
		return nil, feedomain.ErrInvalidID
	}
	if req.Amount <= 0 {
		return nil, feedomain.ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return nil, feedomain.ErrInvalidType
	}

	student, err := s.studentRepo.FindByID(ctx, s.db, teacherID, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, studentdomain.ErrStudentNotFound
	}

	now := s.clock.Now(ctx)
	fee := &feedomain.Fee{
		ID:        s.genID.Generate(),
		TeacherID: teacherID,
		StudentID: studentID,
		Amount:    req.Amount,
		Type:      req.Type,
		FeePolicy: student.FeePolicy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Metadata != nil {
		fee.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if req.Type == feedomain.TypeMonthly {
		period, err := feedomain.NewPeriod(req.Month, req.Year)
		if err != nil {
			return nil, err
		}
		fee.Month = period.MonthName()
		fee.Year = period.Year
		fee.IsFirstMonth = studentdomain.FirstBilledMonth(student.JoinDate, period.Month, period.Year)
		fee.DueDate = studentdomain.DueDate(student.FeePolicy, period.Month, period.Year)

		existing, err := s.repo.FindMonthly(ctx, s.db, teacherID, studentID, fee.Month, fee.Year)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, feedomain.ErrDuplicateFee
		}
	} else {
		if req.DueDate.IsZero() {
			return nil, feedomain.ErrInvalidPeriod
		}
		fee.DueDate = feedomain.DateOnly(req.DueDate)
	}

	fee.Status = feedomain.DeriveStatus(fee.Amount, fee.DueDate, 0, now)

	if err := s.repo.Insert(ctx, s.db, fee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, feedomain.ErrDuplicateFee
		}
		return nil, err
	}
	return fee, nil
}

// List embeds each fee's ledger and re-derives the status live: a fee whose
// due date passed since the last write is reported overdue even though
// nothing was written.
func (s *Service) List(ctx context.Context, req feedomain.ListRequest) ([]feedomain.Fee, error) {
	teacherID, err := s.scope(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}

	opts := feedomain.ListOptions{}
	if sid := strings.TrimSpace(req.StudentID); sid != "" {
		id, err := snowflake.ParseString(sid)
		if err != nil {
			return nil, feedomain.ErrInvalidID
		}
		opts.StudentID = id
	}

	fees, err := s.repo.List(ctx, s.db, teacherID, opts)
	if err != nil {
		return nil, err
	}

	feeIDs := make([]snowflake.ID, 0, len(fees))
	for _, f := range fees {
		feeIDs = append(feeIDs, f.ID)
	}
	ledgers, err := s.paymentRepo.ListByFees(ctx, s.db, teacherID, feeIDs)
	if err != nil {
		return nil, err
	}

	today := s.clock.Now(ctx)
	out := make([]feedomain.Fee, 0, len(fees))
	for _, f := range fees {
		f.Payments = ledgers[f.ID]
		f.Status = f.LiveStatus(today)
		out = append(out, *f)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*feedomain.Fee, error) {
	teacherID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || teacherID == 0 {
		return nil, feedomain.ErrInvalidTenant
	}

	feeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, feedomain.ErrInvalidID
	}

	fee, err := s.repo.FindByID(ctx, s.db, teacherID, feeID)
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, feedomain.ErrFeeNotFound
	}

	payments, err := s.paymentRepo.ListByFee(ctx, s.db, teacherID, feeID)
	if err != nil {
		return nil, err
	}
	fee.Payments = payments
	fee.Status = fee.LiveStatus(s.clock.Now(ctx))
	return fee, nil
}

// Delete removes a non-paid fee and its ledger in one transaction. Paid fees
// are immutable history and may never be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	teacherID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || teacherID == 0 {
		return feedomain.ErrInvalidTenant
	}

	feeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return feedomain.ErrInvalidID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fee, err := s.repo.FindByID(ctx, tx, teacherID, feeID)
		if err != nil {
			return err
		}
		if fee == nil {
			return feedomain.ErrFeeNotFound
		}

		total, err := s.paymentRepo.SumByFee(ctx, tx, teacherID, feeID)
		if err != nil {
			return err
		}
		if fee.Status == feedomain.StatusPaid || total >= fee.Amount {
			return feedomain.ErrPaidFeeDeletionForbidden
		}

		if err := s.paymentRepo.DeleteByFee(ctx, tx, teacherID, feeID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, teacherID, feeID)
	})
}

// SetStatus is the manual override: a teacher marks a fee paid without an
// itemized payment. Marking paid settles the outstanding balance with a
// ledger entry so the derived status agrees, stamps paid_on and rolls over
// under the same conditional rule as an itemized payment. Paid fees are
// immutable history and cannot be downgraded.
func (s *Service) SetStatus(ctx context.Context, id string, status feedomain.Status) (*feedomain.Fee, error) {
	teacherID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || teacherID == 0 {
		return nil, feedomain.ErrInvalidTenant
	}
	if !status.Valid() {
		return nil, feedomain.ErrInvalidStatus
	}

	feeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, feedomain.ErrInvalidID
	}

	var out *feedomain.Fee
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fee, err := s.repo.FindByID(ctx, tx, teacherID, feeID)
		if err != nil {
			return err
		}
		if fee == nil {
			return feedomain.ErrFeeNotFound
		}

		now := s.clock.Now(ctx)
		if status == feedomain.StatusPaid {
			// The override is a degenerate payment covering the balance;
			// without it every live re-derivation would undo the override.
			total, err := s.paymentRepo.SumByFee(ctx, tx, teacherID, feeID)
			if err != nil {
				return err
			}
			if outstanding := fee.Amount - total; outstanding > 0 {
				settlement := &feedomain.Payment{
					ID:        s.genID.Generate(),
					FeeID:     fee.ID,
					TeacherID: teacherID,
					Amount:    outstanding,
					Date:      feedomain.DateOnly(now),
					Method:    paymentdomain.MethodOther,
					Note:      "settled by manual status override",
					CreatedAt: now,
				}
				if err := s.paymentRepo.Insert(ctx, tx, settlement); err != nil {
					return err
				}
			}

			becamePaid, err := s.repo.TransitionToPaid(ctx, tx, teacherID, feeID, now, now)
			if err != nil {
				return err
			}
			if becamePaid {
				if _, err := s.invoiceSvc.Rollover(ctx, tx, fee); err != nil {
					return err
				}
			}
		} else {
			if fee.Status == feedomain.StatusPaid {
				return feedomain.ErrPaidFeeImmutable
			}
			if err := s.repo.RefreshStatus(ctx, tx, teacherID, feeID, status, now); err != nil {
				return err
			}
		}

		out, err = s.repo.FindByID(ctx, tx, teacherID, feeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) scope(ctx context.Context, reqTeacherID string) (snowflake.ID, error) {
	if id, ok := tenantcontext.TenantIDFromContext(ctx); ok && id != 0 {
		return id, nil
	}
	if tenantcontext.IsSuperadmin(ctx) {
		if tid := strings.TrimSpace(reqTeacherID); tid != "" {
			id, err := snowflake.ParseString(tid)
			if err != nil {
				return 0, feedomain.ErrInvalidID
			}
			return id, nil
		}
		return 0, nil
	}
	return 0, feedomain.ErrInvalidTenant
}
