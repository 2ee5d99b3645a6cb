package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"material-tracker/internal/domain/presence"
	"material-tracker/internal/domain/reference"
	"material-tracker/internal/domain/requester"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/infrastructure/logger"
)

// Dialector picks the GORM driver for DB_DRIVER.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

func OpenGorm(driver, dsn string, log *zap.Logger, level gormlogger.LogLevel, slow time.Duration) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := OpenGormWithDialector(dial, &gorm.Config{
		Logger:         logger.NewGormLogger(log, level, slow),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	log.Info("gorm: connected", zap.String("driver", driver))
	return db, nil
}

// OpenGormWithDialector opens, tunes the pool and pings exactly once.
func OpenGormWithDialector(dial gorm.Dialector, cfg ...*gorm.Config) (*gorm.DB, error) {
	c := &gorm.Config{Logger: gormlogger.Discard}
	if len(cfg) > 0 && cfg[0] != nil {
		c = cfg[0]
	}
	c.DisableAutomaticPing = true
	db, err := gorm.Open(dial, c)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&transaction.Transaction{},
		&reference.ReferenceNumber{},
		&requester.Requester{},
		&presence.AdminStatus{},
	)
}
