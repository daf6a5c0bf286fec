package migration

import (
	"context"

	"github.com/classbill/classbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(func(db *gorm.DB, cfg config.Config, log *zap.Logger) error {
		return Run(context.Background(), db, cfg, log)
	}),
)
