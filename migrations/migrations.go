package migrations

import (
	"fmt"

	"github.com/consensuslabs/festival/backend/internal/database"
	"github.com/consensuslabs/festival/backend/internal/logger"
	"gorm.io/gorm"
)

// Direction selects which way RunMigrations moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrator is one reversible schema step.
type Migrator interface {
	Up() error
	Down() error
}

type migration struct {
	Name     string
	Migrator Migrator
}

func all(db *gorm.DB) []migration {
	return []migration{
		{"001_create_submissions", NewSubmissionsMigration(db)},
		{"002_create_edit_tokens", NewEditTokensMigration(db)},
	}
}

// Options controls a migration run.
type Options struct {
	Environment string
	Force       bool
}

// RunMigrations applies or rolls back every known migration. Applied
// migrations are skipped going up; going down only touches applied ones.
func RunMigrations(db *gorm.DB, direction Direction, opts Options, log logger.Logger) error {
	migrationConfig := database.NewMigrationConfig(db, opts.Environment, opts.Force)

	log.LogInfo("Migration Configuration", map[string]interface{}{
		"environment":     migrationConfig.Environment,
		"direction":       direction,
		"force_migration": migrationConfig.ForceRun,
	})

	if err := migrationConfig.CheckEnvironment(); err != nil {
		return err
	}
	if err := migrationConfig.InitializeMigrationTable(); err != nil {
		return err
	}

	migrations := all(db)
	switch direction {
	case Up:
		for i, m := range migrations {
			applied, err := migrationConfig.HasMigrationBeenApplied(m.Name)
			if err != nil {
				return fmt.Errorf("failed to check migration status: %w", err)
			}
			if applied {
				log.LogInfo("Migration already applied", map[string]interface{}{"migration": m.Name})
				continue
			}

			log.LogInfo("Running migration up", map[string]interface{}{"index": i + 1, "name": m.Name})
			if err := m.Migrator.Up(); err != nil {
				return fmt.Errorf("failed to run migration %s up: %w", m.Name, err)
			}
			if err := migrationConfig.RecordMigration(m.Name, fmt.Sprintf("Migration %s executed successfully", m.Name)); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", m.Name, err)
			}
		}
	case Down:
		for i := len(migrations) - 1; i >= 0; i-- {
			m := migrations[i]
			applied, err := migrationConfig.HasMigrationBeenApplied(m.Name)
			if err != nil {
				return fmt.Errorf("failed to check migration status: %w", err)
			}
			if !applied {
				continue
			}

			log.LogInfo("Running migration down", map[string]interface{}{"index": i + 1, "name": m.Name})
			if err := m.Migrator.Down(); err != nil {
				return fmt.Errorf("failed to run migration %s down: %w", m.Name, err)
			}
			if err := migrationConfig.RemoveMigration(m.Name); err != nil {
				return fmt.Errorf("failed to forget migration %s: %w", m.Name, err)
			}
		}
	default:
		return fmt.Errorf("invalid migration direction: %s", direction)
	}

	return nil
}
