package store

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"order-fulfillment/order-processing/config"
)

var Module = fx.Module("store",
	fx.Provide(Open),
	fx.Provide(NewOrderRepository),
	fx.Provide(NewSettingsStore),
)

// Open connects to the order database and closes the pool on shutdown
func Open(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("store: DATABASE_URL is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info("closing order database")
			return sqlDB.Close()
		},
	})
	return db, nil
}

// Migrate creates the tables read by the pipeline
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&OrderRow{}, &OrderItemRow{}, &ShopRow{})
}
