package main

import (
	"fmt"
	"time"

	"github.com/consensuslabs/festival/backend/internal/edittoken"
	"github.com/consensuslabs/festival/backend/internal/submission"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newEditTokenCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit-token",
		Short: "Manage edit link tokens",
	}
	cmd.AddCommand(newEditTokenIssueCommand(ctx))
	cmd.AddCommand(newEditTokenPruneCommand(ctx))
	return cmd
}

func newEditTokenIssueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "issue <submission-id>",
		Short: "Issue a single-use edit token for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid submission id %q: %w", args[0], err)
			}

			db, closeDB, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			if _, err := submission.NewRepository(db).GetByID(cmd.Context(), id); err != nil {
				return err
			}
			svc, err := edittoken.NewService(db, &ctx.config.EditToken, ctx.logger)
			if err != nil {
				return err
			}
			token, record, err := svc.Issue(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(out, "expires %s\n", record.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newEditTokenPruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired edit tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			svc, err := edittoken.NewService(db, &ctx.config.EditToken, ctx.logger)
			if err != nil {
				return err
			}
			n, err := svc.DeleteExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired tokens\n", n)
			return nil
		},
	}
}
