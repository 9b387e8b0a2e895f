// Package repository contains the repository layer for the WCIF History API
package repository

import (
	"fmt"

	"github.com/cubetrack/wcifhistoryapi/internal/config"
	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/zaplogger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres connects to a Postgres database and returns a GORM database object
func ConnectPostgres(cfg *config.Config) (*gorm.DB, error) {
	// Set up GORM logger
	var logLevel logger.LogLevel
	switch cfg.PostgresLogLevel {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	case "info":
		logLevel = logger.Info
	default:
		logLevel = logger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	// Open database connection
	db, err := gorm.Open(postgres.Open(cfg.PostgresDsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %v", err)
	}

	// AutoMigrate will create tables and add/modify columns
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %v", err)
	}

	return db, nil
}

// AutoMigrate migrates all application tables. Users must be migrated
// before sessions and saves so the foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{models.UsersTableName, &models.UserModel{}},
		{models.SessionsTableName, &models.SessionModel{}},
		{models.SnapshotsTableName, &models.SnapshotModel{}},
	}

	for _, table := range tables {
		err := db.AutoMigrate(table.model)
		if err != nil {
			return fmt.Errorf("failed to auto migrate table: %s, err:%v", table.name, err)
		}
		zaplogger.Debug("migrated table", zaplogger.Fields{"table": table.name})
	}

	return nil
}
