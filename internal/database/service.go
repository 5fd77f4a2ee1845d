package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/consensuslabs/festival/backend/internal/config"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DatabaseService implements the Service interface
type DatabaseService struct {
	config *config.DatabaseConfig
	logger Logger
	db     *gorm.DB
}

// NewDatabaseService creates a new database service instance
func NewDatabaseService(config *config.DatabaseConfig, logger Logger) *DatabaseService {
	return &DatabaseService{
		config: config,
		logger: logger,
	}
}

// Connect establishes a connection to the database
func (s *DatabaseService) Connect() (*gorm.DB, error) {
	dialector, err := s.dialector()
	if err != nil {
		return nil, err
	}

	slow := s.config.SlowThreshold
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  NewGormLogger(s.logger, slow),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if s.config.Driver == config.DriverSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent uploads
		sqlDB.SetMaxOpenConns(1)
	} else {
		if s.config.Pool.MaxOpen > 0 {
			sqlDB.SetMaxOpenConns(s.config.Pool.MaxOpen)
		}
		if s.config.Pool.MaxIdle > 0 {
			sqlDB.SetMaxIdleConns(s.config.Pool.MaxIdle)
		}
	}

	s.logger.LogInfo("Connected to database", map[string]interface{}{
		"driver": s.config.Driver,
		"dbname": s.config.Dbname,
		"host":   s.config.Host,
	})
	s.db = db
	return db, nil
}

func (s *DatabaseService) dialector() (gorm.Dialector, error) {
	switch s.config.Driver {
	case config.DriverPostgres, "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			s.config.Host,
			s.config.User,
			s.config.Password,
			s.config.Dbname,
			s.config.Port,
			s.config.Sslmode,
			s.config.Timezone,
		)
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		dsn := s.config.Path
		if !strings.Contains(dsn, "_pragma=foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", s.config.Driver)
}

// Ping checks that the connection is alive
func (s *DatabaseService) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database is not connected")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *DatabaseService) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}
	return nil
}
