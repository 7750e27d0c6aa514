package psql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"haven/haven/config"
	"haven/haven/sources/psql/models"
	"haven/haven/utils/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		connStr := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBSSLMode,
		)
		logging.AppLogger.Info("connecting to database",
			zap.String("driver", cfg.DBDriver),
			zap.String("host", cfg.DBHost),
			zap.String("dbname", cfg.DBName),
		)
		return open(ctx, postgres.Open(connStr), false)
	default:
		logging.AppLogger.Info("connecting to database",
			zap.String("driver", cfg.DBDriver),
			zap.String("path", cfg.DBPath),
		)
		return OpenSQLite(ctx, cfg.DBPath)
	}
}

// OpenSQLite opens a SQLite file with foreign keys enforced. The pool is held
// to one connection so writers queue instead of failing with "database is
// locked".
func OpenSQLite(ctx context.Context, path string) (*Database, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return open(ctx, sqlite.Open(path+sep+"_foreign_keys=on"), true)
}

func open(ctx context.Context, dialector gorm.Dialector, singleConn bool) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger: logger.New(zap.NewStdLog(logging.AppLogger), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}
	if singleConn {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto-migrate models (automatic schema creation)
	err = db.WithContext(ctx).
		AutoMigrate(
			&models.Conversation{},
			&models.Message{},
		)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return &Database{DB: db}, nil
}

func (db *Database) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}

func (db *Database) PingContext(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
