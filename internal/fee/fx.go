package fee

import (
	"github.com/classbill/classbill/internal/fee/repository"
	"github.com/classbill/classbill/internal/fee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
