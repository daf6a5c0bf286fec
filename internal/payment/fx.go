package payment

import (
	"github.com/classbill/classbill/internal/payment/repository"
	"github.com/classbill/classbill/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
