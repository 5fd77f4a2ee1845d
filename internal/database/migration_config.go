package database

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MigrationConfig decides whether migrations may run and records the ones
// that did.
type MigrationConfig struct {
	Environment string
	ForceRun    bool
	db          *gorm.DB
	batchNo     int
}

// NewMigrationConfig creates a new migration configuration
func NewMigrationConfig(db *gorm.DB, environment string, force bool) *MigrationConfig {
	if environment == "" {
		environment = "development"
	}
	return &MigrationConfig{
		Environment: environment,
		ForceRun:    force,
		db:          db,
	}
}

// InitializeMigrationTable creates the migrations tracking table
func (c *MigrationConfig) InitializeMigrationTable() error {
	if err := c.db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// CheckEnvironment refuses to migrate production without the force flag
func (c *MigrationConfig) CheckEnvironment() error {
	if c.Environment == "production" && !c.ForceRun {
		return errors.New("migrations are disabled in production, rerun with --force to override")
	}
	return nil
}

// HasMigrationBeenApplied checks if a specific migration has been applied
func (c *MigrationConfig) HasMigrationBeenApplied(name string) (bool, error) {
	var count int64
	if err := c.db.Model(&MigrationRecord{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordMigration records a successful migration
func (c *MigrationConfig) RecordMigration(name string, content string) error {
	hash := sha256.Sum256([]byte(content))

	if c.batchNo == 0 {
		var batchNo int
		err := c.db.Model(&MigrationRecord{}).Select("COALESCE(MAX(batch_no), 0) + 1").Row().Scan(&batchNo)
		if err != nil {
			return fmt.Errorf("failed to determine batch number: %w", err)
		}
		c.batchNo = batchNo
	}

	return c.db.Create(&MigrationRecord{
		Name:      name,
		Hash:      hex.EncodeToString(hash[:]),
		AppliedAt: time.Now().UTC(),
		BatchNo:   c.batchNo,
	}).Error
}

// RemoveMigration forgets a migration once it has been rolled back
func (c *MigrationConfig) RemoveMigration(name string) error {
	return c.db.Where("name = ?", name).Delete(&MigrationRecord{}).Error
}

// GetAppliedMigrations returns a list of all applied migrations
func (c *MigrationConfig) GetAppliedMigrations() ([]MigrationRecord, error) {
	var migrations []MigrationRecord
	err := c.db.Order("id").Find(&migrations).Error
	return migrations, err
}
