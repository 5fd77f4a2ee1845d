package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/transport"
	"github.com/spf13/cobra"
)

func newAmendCommand(ctx *commandContext) *cobra.Command {
	var editToken string
	var draftPath string
	var verification string

	cmd := &cobra.Command{
		Use:   "amend",
		Short: "Amend a stored submission through its edit link token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			stored, err := client.OpenEdit(cmd.Context(), editToken)
			if err != nil {
				return describeEditError(err)
			}

			c := ctx.newController()
			defer c.Close()

			stderr := cmd.ErrOrStderr()
			if err := stored.Apply(c); err != nil {
				return fmt.Errorf("load stored submission: %w", err)
			}
			if draftPath != "" {
				df, err := loadDraftFile(draftPath)
				if err != nil {
					return err
				}
				if err := df.apply(cmd.Context(), c, openLocal); err != nil {
					return reportFailure(stderr, c, err)
				}
			}
			for c.Step() != draft.Step3 {
				if err := c.Next(); err != nil {
					return reportFailure(stderr, c, err)
				}
			}
			if err := c.SetVerificationToken(verification); err != nil {
				return err
			}

			d := c.Draft()
			if err := d.Consent.Verification.Check(time.Now()); err != nil {
				return err
			}
			receipt, err := client.Amend(cmd.Context(), editToken, d.Normalized())
			if err != nil {
				if isEditTokenError(err) {
					return describeEditError(err)
				}
				return reportFailure(stderr, c, err)
			}
			printReceipt(cmd.OutOrStdout(), receipt)
			return nil
		},
	}

	cmd.Flags().StringVarP(&editToken, "edit-token", "e", "", "Edit link token")
	cmd.Flags().StringVarP(&draftPath, "draft", "d", "", "YAML draft applied over the stored values")
	cmd.Flags().StringVarP(&verification, "token", "t", "", "Human verification response")
	_ = cmd.MarkFlagRequired("edit-token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func describeEditError(err error) error {
	switch {
	case errors.Is(err, transport.ErrEditTokenExpired):
		return fmt.Errorf("the edit link has expired, ask the festival for a new one: %w", err)
	case errors.Is(err, transport.ErrEditTokenUsed):
		return fmt.Errorf("the edit link was already used: %w", err)
	case errors.Is(err, transport.ErrEditTokenInvalid):
		return fmt.Errorf("the edit link is not valid: %w", err)
	}
	return err
}

func isEditTokenError(err error) bool {
	return errors.Is(err, transport.ErrEditTokenInvalid) ||
		errors.Is(err, transport.ErrEditTokenExpired) ||
		errors.Is(err, transport.ErrEditTokenUsed)
}
