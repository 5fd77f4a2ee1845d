package main

import (
	"time"

	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var draftPath string
	var verification string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate a draft file and submit it",
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := loadDraftFile(draftPath)
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			c := ctx.newController()
			defer c.Close()

			stderr := cmd.ErrOrStderr()
			if err := df.apply(cmd.Context(), c, openLocal); err != nil {
				return reportFailure(stderr, c, err)
			}
			for c.Step() != draft.Step3 {
				if err := c.Next(); err != nil {
					return reportFailure(stderr, c, err)
				}
			}
			if err := c.SetVerificationToken(verification); err != nil {
				return err
			}

			started := time.Now()
			receipt, err := c.Submit(cmd.Context(), client)
			if err != nil {
				return reportFailure(stderr, c, err)
			}
			ctx.logger.LogInfo("Draft submitted", map[string]interface{}{
				"id":       receipt.ID,
				"duration": time.Since(started).String(),
			})
			printReceipt(cmd.OutOrStdout(), receipt)
			return nil
		},
	}

	cmd.Flags().StringVarP(&draftPath, "draft", "d", "", "Path to the YAML draft")
	cmd.Flags().StringVarP(&verification, "token", "t", "", "Human verification response")
	_ = cmd.MarkFlagRequired("draft")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
