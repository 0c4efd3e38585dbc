// Package datasources opens the record store selected by configuration.
package datasources

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"aeroapi.backend/internal/config"
	"aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/internal/infrastructure/filestore"
	gormrepos "aeroapi.backend/internal/infrastructure/repositories"
)

var openGorm = func(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		PrepareStmt: false,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// Store is an open record store and the function that releases it
type Store struct {
	repositories.RecordStore
	Close func() error
}

// Open connects the configured driver and migrates relational schemas
func Open(storeCfg config.StoreConfig, dbCfg config.DatabaseConfig) (*Store, error) {
	switch storeCfg.Driver {
	case config.StoreDriverFile:
		fs, err := filestore.Open(storeCfg.FilePath, storeCfg.ApiKeyPrefix)
		if err != nil {
			return nil, err
		}
		return &Store{RecordStore: fs, Close: fs.Close}, nil

	case config.StoreDriverSQLite:
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		dsn := storeCfg.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000"
		return openRelational(sqlite.Open(dsn), storeCfg.ApiKeyPrefix, 1)

	case config.StoreDriverPostgres:
		return openRelational(postgres.New(postgres.Config{
			DSN:                  dbCfg.DSN(),
			PreferSimpleProtocol: true,
		}), storeCfg.ApiKeyPrefix, 0)
	}
	return nil, fmt.Errorf("unknown store driver %q", storeCfg.Driver)
}

func openRelational(dialector gorm.Dialector, keyPrefix string, maxOpenConns int) (*Store, error) {
	db, err := openGorm(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get generic database object: %w", err)
	}
	if maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := gormrepos.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{
		RecordStore: gormrepos.NewRecordStore(db, keyPrefix),
		Close:       sqlDB.Close,
	}, nil
}
