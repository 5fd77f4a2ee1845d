package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configDir string
	var envFile string

	ctx := newCommandContext(&configDir, &envFile)

	rootCmd := &cobra.Command{
		Use:           "festivalctl",
		Short:         "Festival submission client and operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory holding config.yaml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the configuration")

	rootCmd.AddCommand(newSubmitCommand(ctx))
	rootCmd.AddCommand(newAmendCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newEditTokenCommand(ctx))

	return rootCmd
}
