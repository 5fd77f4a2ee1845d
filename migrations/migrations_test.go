package migrations

import (
	"testing"

	"github.com/consensuslabs/festival/backend/internal/database"
	"github.com/consensuslabs/festival/backend/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsUpAndDown(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	log := testhelper.NewTestLogger(false)

	require.NoError(t, RunMigrations(db, Up, Options{Environment: "test"}, log))
	for _, table := range []string{"submissions", "submission_files", "submission_tags", "edit_tokens"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var records []database.MigrationRecord
	require.NoError(t, db.Order("id").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, "001_create_submissions", records[0].Name)
	assert.Equal(t, records[0].BatchNo, records[1].BatchNo)

	// A second run is a no-op.
	require.NoError(t, RunMigrations(db, Up, Options{Environment: "test"}, log))
	var count int64
	require.NoError(t, db.Model(&database.MigrationRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, RunMigrations(db, Down, Options{Environment: "test"}, log))
	assert.False(t, db.Migrator().HasTable("submissions"))
	assert.False(t, db.Migrator().HasTable("edit_tokens"))
	require.NoError(t, db.Model(&database.MigrationRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRunMigrationsProductionNeedsForce(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	log := testhelper.NewTestLogger(false)

	assert.Error(t, RunMigrations(db, Up, Options{Environment: "production"}, log))
	assert.False(t, db.Migrator().HasTable("submissions"))

	require.NoError(t, RunMigrations(db, Up, Options{Environment: "production", Force: true}, log))
	assert.True(t, db.Migrator().HasTable("submissions"))
}

func TestRunMigrationsInvalidDirection(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	assert.Error(t, RunMigrations(db, Direction("sideways"), Options{}, testhelper.NewTestLogger(false)))
}
