package database

import "time"

// MigrationRecord tracks which migrations have been executed
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Hash      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
	// migrations applied by one run share a batch number
	BatchNo int `gorm:"not null"`
}

// TableName specifies the table name for migration records
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}
