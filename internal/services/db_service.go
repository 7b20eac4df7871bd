package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBService handles database connection and lifecycle management
type DBService interface {
	GetDB() *gorm.DB
	Close() error
}

type dbService struct {
	db *gorm.DB
}

func newGormConfig() *gorm.Config {
	// Only log errors and slow queries
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{Logger: gormLogger, TranslateError: true}
}

// NewSqliteDBService creates a new DBService backed by SQLite. ":memory:" keeps everything in process.
func NewSqliteDBService(dbPath string) (DBService, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return newDBService(db)
}

// NewPostgresDBService creates a new DBService connected to the Postgres database at dsn.
func NewPostgresDBService(dsn string) (DBService, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database url cannot be empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return newDBService(db)
}

func newDBService(db *gorm.DB) (DBService, error) {
	service := &dbService{db: db}
	if err := service.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return service, nil
}

// GetDB returns the underlying GORM database instance
func (s *dbService) GetDB() *gorm.DB {
	return s.db
}

// inFlightIndex allows one submitting or confirming session per account and action group, also
// across processes sharing the database.
const inFlightIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_transaction_sessions_in_flight
ON transaction_sessions (account, action_group)
WHERE status IN ('submitting', 'confirming')`

// backfillActionGroup fills the group of rows written before the column existed.
const backfillActionGroup = `UPDATE transaction_sessions
SET action_group = CASE WHEN action = 'claim' THEN 'claim' ELSE 'funding' END
WHERE action_group IS NULL OR action_group = ''`

func (s *dbService) migrate() error {
	err := s.db.AutoMigrate(
		&models.Chain{},
		&models.TokenRecord{},
		&models.TransactionSession{},
	)
	if err != nil {
		return err
	}
	if err := s.db.Exec(backfillActionGroup).Error; err != nil {
		return fmt.Errorf("failed to backfill action groups: %w", err)
	}
	return s.db.Exec(inFlightIndex).Error
}

// Close closes the database connection
func (s *dbService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
