package migrations

import (
	"github.com/consensuslabs/festival/backend/internal/edittoken"
	"gorm.io/gorm"
)

type EditTokensMigration struct {
	db *gorm.DB
}

func NewEditTokensMigration(db *gorm.DB) *EditTokensMigration {
	return &EditTokensMigration{db: db}
}

func (m *EditTokensMigration) Up() error {
	return m.db.AutoMigrate(&edittoken.EditToken{})
}

func (m *EditTokensMigration) Down() error {
	return m.db.Migrator().DropTable(&edittoken.EditToken{})
}
