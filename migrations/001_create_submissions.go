package migrations

import (
	"github.com/consensuslabs/festival/backend/internal/submission"
	"gorm.io/gorm"
)

// SubmissionsMigration creates the submission tables.
type SubmissionsMigration struct {
	db *gorm.DB
}

func NewSubmissionsMigration(db *gorm.DB) *SubmissionsMigration {
	return &SubmissionsMigration{db: db}
}

func (m *SubmissionsMigration) Up() error {
	return m.db.AutoMigrate(submission.Models()...)
}

func (m *SubmissionsMigration) Down() error {
	// Children first
	models := submission.Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			return err
		}
	}
	return nil
}
