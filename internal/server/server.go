package server

import (
	"context"
	"net/http"

	"github.com/classbill/classbill/internal/config"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	invoicedomain "github.com/classbill/classbill/internal/invoice/domain"
	paymentdomain "github.com/classbill/classbill/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(Start),
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Redis      *redis.Client `optional:"true"`
	FeeSvc     feedomain.Service
	PaymentSvc paymentdomain.Service
	InvoiceSvc invoicedomain.Service
}

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	rdb        *redis.Client
	feeSvc     feedomain.Service
	paymentSvc paymentdomain.Service
	invoiceSvc invoicedomain.Service
}

func New(p Params) *Server {
	return &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		rdb:        p.Redis,
		feeSvc:     p.FeeSvc,
		paymentSvc: p.PaymentSvc,
		invoiceSvc: p.InvoiceSvc,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(s.tenantAuth())
	v1.Use(s.idempotency())

	v1.POST("/invoices/generate", s.GenerateInvoices)
	v1.GET("/fees", s.ListFees)
	v1.POST("/fees", s.CreateFee)
	v1.GET("/fees/:id", s.GetFee)
	v1.DELETE("/fees/:id", s.DeleteFee)
	v1.PATCH("/fees/:id/status", s.SetFeeStatus)
	v1.POST("/fees/:id/payments", s.RecordPayment)

	return r
}

func Start(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
