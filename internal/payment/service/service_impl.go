package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/classbill/classbill/internal/clock"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	invoicedomain "github.com/classbill/classbill/internal/invoice/domain"
	"github.com/classbill/classbill/internal/observability"
	paymentdomain "github.com/classbill/classbill/internal/payment/domain"
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
	PaymentRepo feedomain.PaymentRepository
	InvoiceSvc  invoicedomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	feeRepo     feedomain.Repository
	paymentRepo feedomain.PaymentRepository
	invoiceSvc  invoicedomain.Service
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		feeRepo:     p.FeeRepo,
		paymentRepo: p.PaymentRepo,
		invoiceSvc:  p.InvoiceSvc,
	}
}

// Record appends a payment and refreshes the fee as one unit of work. The
// ledger insert, the status recomputation and the rollover all commit or
// roll back together.
func (s *Service) Record(ctx context.Context, req paymentdomain.RecordRequest) (*paymentdomain.RecordResponse, error) {
	teacherID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok || teacherID == 0 {
		return nil, feedomain.ErrInvalidTenant
	}

	feeID, err := snowflake.ParseString(strings.TrimSpace(req.FeeID))
	if err != nil {
		return nil, feedomain.ErrInvalidID
	}
	if req.Amount <= 0 {
		return nil, feedomain.ErrInvalidAmount
	}

	date := req.Date
	if date.IsZero() {
		date = s.clock.Now(ctx)
	}
	date = feedomain.DateOnly(date)

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = paymentdomain.MethodOther
	}

	var resp *paymentdomain.RecordResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fee, err := s.feeRepo.FindByID(ctx, tx, teacherID, feeID)
		if err != nil {
			return err
		}
		if fee == nil {
			return feedomain.ErrFeeNotFound
		}

		now := s.clock.Now(ctx)
		p := &feedomain.Payment{
			ID:        s.genID.Generate(),
			FeeID:     fee.ID,
			TeacherID: teacherID,
			Amount:    req.Amount,
			Date:      date,
			Method:    method,
			Note:      strings.TrimSpace(req.Note),
			CreatedAt: now,
		}
		if err := s.paymentRepo.Insert(ctx, tx, p); err != nil {
			return err
		}

		// Re-sum the whole ledger rather than adding to a counter, so a
		// concurrent partial payment committed in between is never lost.
		total, err := s.paymentRepo.SumByFee(ctx, tx, teacherID, fee.ID)
		if err != nil {
			return err
		}

		newStatus := feedomain.DeriveStatus(fee.Amount, fee.DueDate, total, now)
		if newStatus == feedomain.StatusPaid {
			becamePaid, err := s.feeRepo.TransitionToPaid(ctx, tx, teacherID, fee.ID, date, now)
			if err != nil {
				return err
			}
			// Rollover fires only on the not-paid -> paid transition this
			// call performed; an overpayment on an already-paid fee never
			// re-triggers it.
			if becamePaid {
				if _, err := s.invoiceSvc.Rollover(ctx, tx, fee); err != nil {
					return err
				}
			}
		} else {
			if err := s.feeRepo.RefreshStatus(ctx, tx, teacherID, fee.ID, newStatus, now); err != nil {
				return err
			}
		}

		updated, err := s.feeRepo.FindByID(ctx, tx, teacherID, fee.ID)
		if err != nil {
			return err
		}
		payments, err := s.paymentRepo.ListByFee(ctx, tx, teacherID, fee.ID)
		if err != nil {
			return err
		}
		updated.Payments = payments

		resp = &paymentdomain.RecordResponse{Payment: *p, Fee: *updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.PaymentsRecorded.Inc()
	s.log.Info("payment recorded",
		zap.String("fee_id", resp.Fee.ID.String()),
		zap.Int64("amount", resp.Payment.Amount),
		zap.String("status", string(resp.Fee.Status)))

	return resp, nil
}
