package main

import (
	"github.com/consensuslabs/festival/backend/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(migrations.Up), string(migrations.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			return migrations.RunMigrations(db, migrations.Direction(args[0]), migrations.Options{
				Environment: ctx.config.Environment,
				Force:       force,
			}, ctx.logger)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Allow migrations in production")
	return cmd
}
